// Package present maps stored enum values to the labels and style tokens
// the pages render. Unknown values fall back to the raw string.
package present

import (
	"html/template"
	"strconv"

	"earnhub/internal/domain"
)

// Badge is a display label plus a CSS tone token.
type Badge struct {
	Label string
	Style string
	Desc  string
}

type CategoryTile struct {
	Key   domain.Category
	Label string
	Blurb string
}

var categoryLabels = map[domain.Category]string{
	domain.CategorySignupsRewards:   "Signups & Rewards",
	domain.CategoryOnlineSurveys:    "Online Surveys",
	domain.CategoryLearnAndEarn:     "Learn & Earn",
	domain.CategoryCryptoNFTGaming:  "Crypto & NFT Gaming",
	domain.CategoryCashbackCoupons:  "Cashback & Coupons",
	domain.CategoryReferralPrograms: "Referral Programs",
	domain.CategoryPassiveIncome:    "Passive Income",
}

var categoryBlurbs = map[domain.Category]string{
	domain.CategorySignupsRewards:   "Welcome bonuses & incentives",
	domain.CategoryOnlineSurveys:    "Paid surveys & market research",
	domain.CategoryLearnAndEarn:     "Get paid to learn new skills",
	domain.CategoryCryptoNFTGaming:  "Play-to-earn & blockchain rewards",
	domain.CategoryCashbackCoupons:  "Save money while spending",
	domain.CategoryReferralPrograms: "Earn by sharing with friends",
	domain.CategoryPassiveIncome:    "Set it and forget it streams",
}

// Cards use shorter wording than the detail page for two tiers.
var cardRecommendations = map[domain.Recommendation]Badge{
	domain.RecommendationHighly:      {Label: "Top Pick", Style: "green"},
	domain.RecommendationRecommended: {Label: "Recommended", Style: "blue"},
	domain.RecommendationDecent:      {Label: "Decent", Style: "yellow"},
	domain.RecommendationNot:         {Label: "Skip", Style: "red"},
}

var detailRecommendations = map[domain.Recommendation]Badge{
	domain.RecommendationHighly:      {Label: "Top Pick", Style: "green", Desc: "Highly recommended, one of the best!"},
	domain.RecommendationRecommended: {Label: "Recommended", Style: "blue", Desc: "A solid opportunity worth trying."},
	domain.RecommendationDecent:      {Label: "Decent", Style: "yellow", Desc: "Okay option, but don't expect too much."},
	domain.RecommendationNot:         {Label: "Not Recommended", Style: "red", Desc: "I'd skip this one, not worth the time."},
}

var difficultyBadges = map[domain.Difficulty]Badge{
	domain.DifficultyEasy:   {Label: "Easy", Style: "green"},
	domain.DifficultyMedium: {Label: "Medium", Style: "yellow"},
	domain.DifficultyHard:   {Label: "Hard", Style: "red"},
}

func CategoryLabel(c domain.Category) string {
	if l, ok := categoryLabels[c]; ok {
		return l
	}
	return string(c)
}

func CardRecommendation(r domain.Recommendation) Badge {
	return lookup(cardRecommendations, r, string(r))
}

func DetailRecommendation(r domain.Recommendation) Badge {
	return lookup(detailRecommendations, r, string(r))
}

func DifficultyBadge(d domain.Difficulty) Badge {
	return lookup(difficultyBadges, d, string(d))
}

func lookup[K comparable](m map[K]Badge, k K, raw string) Badge {
	if b, ok := m[k]; ok {
		return b
	}
	return Badge{Label: raw}
}

// RecommendationOption labels a recommendation for select inputs.
func RecommendationOption(r domain.Recommendation) string {
	return DetailRecommendation(r).Label
}

// Categories lists the home grid tiles in enum order.
func Categories() []CategoryTile {
	out := make([]CategoryTile, 0, len(domain.Categories))
	for _, c := range domain.Categories {
		out = append(out, CategoryTile{Key: c, Label: categoryLabels[c], Blurb: categoryBlurbs[c]})
	}
	return out
}

// Rating formats a stored rating; 0 renders as empty.
func Rating(r float64) string {
	if r == 0 {
		return ""
	}
	return strconv.FormatFloat(r, 'f', -1, 64)
}

// Plural picks the singular or plural noun for n.
func Plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// Funcs is the template function set registered on the view engine.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"categoryLabel":        CategoryLabel,
		"cardRecommendation":   CardRecommendation,
		"detailRecommendation": DetailRecommendation,
		"difficultyBadge":      DifficultyBadge,
		"recommendationOption": RecommendationOption,
		"categoryTiles":        Categories,
		"rating":               Rating,
		"plural":               Plural,
		"allCategories":        func() []domain.Category { return domain.Categories },
		"allDifficulties":      func() []domain.Difficulty { return domain.Difficulties },
		"allRecommendations":   func() []domain.Recommendation { return domain.Recommendations },
	}
}
