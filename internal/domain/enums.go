package domain

// Category groups opportunities on the home grid and the browse filter.
type Category string

const (
	CategorySignupsRewards   Category = "signups_rewards"
	CategoryOnlineSurveys    Category = "online_surveys"
	CategoryLearnAndEarn     Category = "learn_and_earn"
	CategoryCryptoNFTGaming  Category = "crypto_nft_gaming"
	CategoryCashbackCoupons  Category = "cashback_coupons"
	CategoryReferralPrograms Category = "referral_programs"
	CategoryPassiveIncome    Category = "passive_income"
)

// Categories is ordered; the first entry is the default for new records.
var Categories = []Category{
	CategorySignupsRewards,
	CategoryOnlineSurveys,
	CategoryLearnAndEarn,
	CategoryCryptoNFTGaming,
	CategoryCashbackCoupons,
	CategoryReferralPrograms,
	CategoryPassiveIncome,
}

func (c Category) Valid() bool {
	for _, v := range Categories {
		if v == c {
			return true
		}
	}
	return false
}

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

var Difficulties = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}

func (d Difficulty) Valid() bool {
	for _, v := range Difficulties {
		if v == d {
			return true
		}
	}
	return false
}

// Recommendation is the editorial endorsement tier, strongest first.
type Recommendation string

const (
	RecommendationHighly      Recommendation = "highly_recommended"
	RecommendationRecommended Recommendation = "recommended"
	RecommendationDecent      Recommendation = "decent"
	RecommendationNot         Recommendation = "not_recommended"
)

var Recommendations = []Recommendation{
	RecommendationHighly,
	RecommendationRecommended,
	RecommendationDecent,
	RecommendationNot,
}

func (r Recommendation) Valid() bool {
	for _, v := range Recommendations {
		if v == r {
			return true
		}
	}
	return false
}
