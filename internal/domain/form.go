package domain

import (
	"math"
	"strconv"
	"strings"
)

// OpportunityForm holds admin editor input. Rating stays raw text until
// save; evidence images are one URL per line.
type OpportunityForm struct {
	Title            string
	Category         Category
	Description      string
	EarningPotential string
	TimeInvestment   string
	Difficulty       Difficulty
	Recommendation   Recommendation
	Rating           string
	Tips             string
	ReferralLink     string
	PlatformURL      string
	CouponCode       string
	ImageURL         string
	EvidenceImages   string
	IsFeatured       bool
	IsActive         bool
}

// NewForm returns the defaults used when opening a blank editor.
func NewForm() OpportunityForm {
	return OpportunityForm{
		Category:       Categories[0],
		Difficulty:     DifficultyEasy,
		Recommendation: RecommendationRecommended,
		Rating:         "4",
		IsActive:       true,
	}
}

// FormFrom loads a stored record into the editor.
func FormFrom(o Opportunity) OpportunityForm {
	f := NewForm()
	f.Title = o.Title
	f.Description = o.Description
	f.EarningPotential = o.EarningPotential
	f.TimeInvestment = o.TimeInvestment
	f.Tips = o.Tips
	f.ReferralLink = o.ReferralLink
	f.PlatformURL = o.PlatformURL
	f.CouponCode = o.CouponCode
	f.ImageURL = o.ImageURL
	f.EvidenceImages = strings.Join(o.EvidenceImages, "\n")
	f.IsFeatured = o.IsFeatured
	f.IsActive = o.IsActive
	if o.Category != "" {
		f.Category = o.Category
	}
	if o.Difficulty != "" {
		f.Difficulty = o.Difficulty
	}
	if o.Recommendation != "" {
		f.Recommendation = o.Recommendation
	}
	f.Rating = strconv.FormatFloat(o.Rating, 'f', -1, 64)
	return f
}

// Complete reports whether the required text fields are filled in.
func (f OpportunityForm) Complete() bool {
	return strings.TrimSpace(f.Title) != "" && strings.TrimSpace(f.Description) != ""
}

// Record coerces the form into a validated Opportunity.
func (f OpportunityForm) Record() (Opportunity, error) {
	o := Opportunity{
		Title:            strings.TrimSpace(f.Title),
		Category:         f.Category,
		Description:      strings.TrimSpace(f.Description),
		EarningPotential: strings.TrimSpace(f.EarningPotential),
		TimeInvestment:   strings.TrimSpace(f.TimeInvestment),
		Difficulty:       f.Difficulty,
		Recommendation:   f.Recommendation,
		Rating:           CoerceRating(f.Rating),
		Tips:             strings.TrimSpace(f.Tips),
		ReferralLink:     strings.TrimSpace(f.ReferralLink),
		PlatformURL:      strings.TrimSpace(f.PlatformURL),
		CouponCode:       strings.TrimSpace(f.CouponCode),
		ImageURL:         strings.TrimSpace(f.ImageURL),
		EvidenceImages:   splitLines(f.EvidenceImages),
		IsFeatured:       f.IsFeatured,
		IsActive:         f.IsActive,
	}
	if err := o.Validate(); err != nil {
		return Opportunity{}, err
	}
	return o, nil
}

// CoerceRating parses rating input. Anything non-numeric becomes 0
// (unrated); other values are clamped to [1,5].
func CoerceRating(s string) float64 {
	r, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(r) || math.IsInf(r, 0) {
		return 0
	}
	return ClampRating(r)
}

// ClampRating keeps 0 as "unrated" and pins everything else into [1,5].
func ClampRating(r float64) float64 {
	switch {
	case r == 0 || math.IsNaN(r):
		return 0
	case r < 1:
		return 1
	case r > 5:
		return 5
	}
	return r
}

func splitLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}
