package repos

import (
	"context"
	"fmt"
	"os"

	"earnhub/internal/domain"

	"gopkg.in/yaml.v3"
)

type seedFile struct {
	Opportunities []seedOpportunity `yaml:"opportunities"`
}

type seedOpportunity struct {
	Title            string   `yaml:"title"`
	Category         string   `yaml:"category"`
	Description      string   `yaml:"description"`
	EarningPotential string   `yaml:"earning_potential"`
	TimeInvestment   string   `yaml:"time_investment"`
	Difficulty       string   `yaml:"difficulty"`
	Recommendation   string   `yaml:"recommendation"`
	Rating           float64  `yaml:"rating"`
	Tips             string   `yaml:"tips"`
	ReferralLink     string   `yaml:"referral_link"`
	PlatformURL      string   `yaml:"platform_url"`
	CouponCode       string   `yaml:"coupon_code"`
	ImageURL         string   `yaml:"image_url"`
	EvidenceImages   []string `yaml:"evidence_images"`
	IsFeatured       bool     `yaml:"is_featured"`
	IsActive         *bool    `yaml:"is_active"`
}

// ParseSeed decodes and validates a YAML catalog. is_active defaults to true.
func ParseSeed(data []byte) ([]domain.Opportunity, error) {
	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}
	out := make([]domain.Opportunity, 0, len(f.Opportunities))
	for i, s := range f.Opportunities {
		o := domain.Opportunity{
			Title:            s.Title,
			Category:         domain.Category(s.Category),
			Description:      s.Description,
			EarningPotential: s.EarningPotential,
			TimeInvestment:   s.TimeInvestment,
			Difficulty:       domain.Difficulty(s.Difficulty),
			Recommendation:   domain.Recommendation(s.Recommendation),
			Rating:           domain.ClampRating(s.Rating),
			Tips:             s.Tips,
			ReferralLink:     s.ReferralLink,
			PlatformURL:      s.PlatformURL,
			CouponCode:       s.CouponCode,
			ImageURL:         s.ImageURL,
			EvidenceImages:   s.EvidenceImages,
			IsFeatured:       s.IsFeatured,
			IsActive:         s.IsActive == nil || *s.IsActive,
		}
		if err := o.Validate(); err != nil {
			return nil, fmt.Errorf("seed entry %d (%q): %w", i, s.Title, err)
		}
		out = append(out, o)
	}
	return out, nil
}

// SeedIfEmpty inserts items only into an empty store. Items are created
// last-to-first so the newest-first listing matches file order.
func SeedIfEmpty(ctx context.Context, store OpportunityStore, items []domain.Opportunity) (int, error) {
	existing, err := store.List(ctx, DefaultSort, 1)
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		return 0, nil
	}
	for i := len(items) - 1; i >= 0; i-- {
		if _, err := store.Create(ctx, items[i]); err != nil {
			return len(items) - 1 - i, err
		}
	}
	return len(items), nil
}

// SeedFromFile is a no-op when path is empty or missing.
func SeedFromFile(ctx context.Context, store OpportunityStore, path string) (int, error) {
	if path == "" {
		return 0, nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	items, err := ParseSeed(data)
	if err != nil {
		return 0, err
	}
	return SeedIfEmpty(ctx, store, items)
}
