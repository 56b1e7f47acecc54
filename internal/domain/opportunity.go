package domain

import (
	"errors"
	"time"
)

var ErrInvalidForm = errors.New("invalid opportunity")

// Opportunity is the single catalogued entity. ID and CreatedDate are
// assigned by the store.
type Opportunity struct {
	ID               string         `json:"id"`
	Title            string         `json:"title" validate:"required,max=200"`
	Category         Category       `json:"category" validate:"category"`
	Description      string         `json:"description" validate:"required"`
	EarningPotential string         `json:"earning_potential,omitempty" validate:"max=100"`
	TimeInvestment   string         `json:"time_investment,omitempty" validate:"max=100"`
	Difficulty       Difficulty     `json:"difficulty,omitempty" validate:"omitempty,difficulty"`
	Recommendation   Recommendation `json:"recommendation,omitempty" validate:"omitempty,recommendation"`
	Rating           float64        `json:"rating,omitempty" validate:"omitempty,min=1,max=5"`
	Tips             string         `json:"tips,omitempty"`
	ReferralLink     string         `json:"referral_link,omitempty" validate:"omitempty,url"`
	PlatformURL      string         `json:"platform_url,omitempty" validate:"omitempty,url"`
	CouponCode       string         `json:"coupon_code,omitempty" validate:"max=64"`
	ImageURL         string         `json:"image_url,omitempty" validate:"omitempty,url"`
	EvidenceImages   []string       `json:"evidence_images,omitempty" validate:"dive,url"`
	IsFeatured       bool           `json:"is_featured"`
	IsActive         bool           `json:"is_active"`
	CreatedDate      time.Time      `json:"created_date"`
	UpdatedDate      time.Time      `json:"updated_date,omitempty"`
}

// FeaturedVisible reports whether the record belongs on the home page.
func (o Opportunity) FeaturedVisible() bool { return o.IsFeatured && o.IsActive }

// Validate checks enum membership, URLs and required text.
func (o Opportunity) Validate() error { return validateStruct(o) }

// Ref returns a pointer to v, for building predicates and patches.
func Ref[T any](v T) *T { return &v }

// Predicate is an exact-match filter. Nil fields are not constrained.
type Predicate struct {
	ID             *string
	Category       *Category
	Recommendation *Recommendation
	IsActive       *bool
	IsFeatured     *bool
}

func (p Predicate) Matches(o Opportunity) bool {
	switch {
	case p.ID != nil && *p.ID != o.ID:
		return false
	case p.Category != nil && *p.Category != o.Category:
		return false
	case p.Recommendation != nil && *p.Recommendation != o.Recommendation:
		return false
	case p.IsActive != nil && *p.IsActive != o.IsActive:
		return false
	case p.IsFeatured != nil && *p.IsFeatured != o.IsFeatured:
		return false
	}
	return true
}

// OpportunityPatch is a partial update; nil fields are left untouched.
type OpportunityPatch struct {
	Title            *string
	Category         *Category
	Description      *string
	EarningPotential *string
	TimeInvestment   *string
	Difficulty       *Difficulty
	Recommendation   *Recommendation
	Rating           *float64
	Tips             *string
	ReferralLink     *string
	PlatformURL      *string
	CouponCode       *string
	ImageURL         *string
	EvidenceImages   *[]string
	IsFeatured       *bool
	IsActive         *bool
}

// PatchFrom builds a patch that overwrites every editable field of o.
func PatchFrom(o Opportunity) OpportunityPatch {
	return OpportunityPatch{
		Title:            Ref(o.Title),
		Category:         Ref(o.Category),
		Description:      Ref(o.Description),
		EarningPotential: Ref(o.EarningPotential),
		TimeInvestment:   Ref(o.TimeInvestment),
		Difficulty:       Ref(o.Difficulty),
		Recommendation:   Ref(o.Recommendation),
		Rating:           Ref(o.Rating),
		Tips:             Ref(o.Tips),
		ReferralLink:     Ref(o.ReferralLink),
		PlatformURL:      Ref(o.PlatformURL),
		CouponCode:       Ref(o.CouponCode),
		ImageURL:         Ref(o.ImageURL),
		EvidenceImages:   Ref(append([]string(nil), o.EvidenceImages...)),
		IsFeatured:       Ref(o.IsFeatured),
		IsActive:         Ref(o.IsActive),
	}
}

// Apply returns o with the patch applied. Rating is re-clamped.
func (p OpportunityPatch) Apply(o Opportunity) Opportunity {
	setStr := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	setStr(&o.Title, p.Title)
	setStr(&o.Description, p.Description)
	setStr(&o.EarningPotential, p.EarningPotential)
	setStr(&o.TimeInvestment, p.TimeInvestment)
	setStr(&o.Tips, p.Tips)
	setStr(&o.ReferralLink, p.ReferralLink)
	setStr(&o.PlatformURL, p.PlatformURL)
	setStr(&o.CouponCode, p.CouponCode)
	setStr(&o.ImageURL, p.ImageURL)
	if p.Category != nil {
		o.Category = *p.Category
	}
	if p.Difficulty != nil {
		o.Difficulty = *p.Difficulty
	}
	if p.Recommendation != nil {
		o.Recommendation = *p.Recommendation
	}
	if p.Rating != nil {
		o.Rating = ClampRating(*p.Rating)
	}
	if p.EvidenceImages != nil {
		o.EvidenceImages = append([]string(nil), (*p.EvidenceImages)...)
	}
	if p.IsFeatured != nil {
		o.IsFeatured = *p.IsFeatured
	}
	if p.IsActive != nil {
		o.IsActive = *p.IsActive
	}
	return o
}
