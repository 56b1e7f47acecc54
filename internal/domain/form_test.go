package domain_test

import (
	"errors"
	"testing"

	"earnhub/internal/domain"
)

func TestCoerceRating(t *testing.T) {
	cases := map[string]float64{
		"abc": 0,
		"":    0,
		" 4 ": 4,
		"3.5": 3.5,
		"7":   5,
		"0.4": 1,
		"-2":  1,
		"0":   0,
		"NaN": 0,
	}
	for in, want := range cases {
		if got := domain.CoerceRating(in); got != want {
			t.Errorf("CoerceRating(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewFormDefaults(t *testing.T) {
	f := domain.NewForm()
	if f.Category != domain.CategorySignupsRewards {
		t.Fatalf("category default = %q", f.Category)
	}
	if f.Difficulty != domain.DifficultyEasy || f.Recommendation != domain.RecommendationRecommended {
		t.Fatalf("bad enum defaults: %+v", f)
	}
	if f.Rating != "4" || !f.IsActive || f.IsFeatured {
		t.Fatalf("bad defaults: %+v", f)
	}
	if f.Complete() {
		t.Fatal("blank form must not be complete")
	}
}

func TestFormRecordCoercesRating(t *testing.T) {
	f := domain.NewForm()
	f.Title = "Swagbucks"
	f.Description = "Paid surveys"
	f.Rating = "abc"
	f.EvidenceImages = "https://img.example.com/a.png\n\n  https://img.example.com/b.png "

	o, err := f.Record()
	if err != nil {
		t.Fatal(err)
	}
	if o.Rating != 0 {
		t.Fatalf("rating = %v, want 0", o.Rating)
	}
	if len(o.EvidenceImages) != 2 || o.EvidenceImages[1] != "https://img.example.com/b.png" {
		t.Fatalf("evidence images = %#v", o.EvidenceImages)
	}
}

func TestFormRecordRejectsBadInput(t *testing.T) {
	base := domain.NewForm()
	base.Title = "x"
	base.Description = "y"

	bad := []func(*domain.OpportunityForm){
		func(f *domain.OpportunityForm) { f.Category = "lottery" },
		func(f *domain.OpportunityForm) { f.Difficulty = "extreme" },
		func(f *domain.OpportunityForm) { f.Recommendation = "meh" },
		func(f *domain.OpportunityForm) { f.ReferralLink = "not a url" },
		func(f *domain.OpportunityForm) { f.EvidenceImages = "nope" },
		func(f *domain.OpportunityForm) { f.Title = "   " },
	}
	for i, mut := range bad {
		f := base
		mut(&f)
		if _, err := f.Record(); !errors.Is(err, domain.ErrInvalidForm) {
			t.Errorf("case %d: want ErrInvalidForm, got %v", i, err)
		}
	}
}

func TestFormRoundTripKeepsFields(t *testing.T) {
	o := domain.Opportunity{
		ID:             "opp-1",
		Title:          "Crypto Game",
		Category:       domain.CategoryCryptoNFTGaming,
		Description:    "Play to earn",
		Difficulty:     domain.DifficultyHard,
		Recommendation: domain.RecommendationDecent,
		Rating:         2.5,
		EvidenceImages: []string{"https://img.example.com/1.png"},
		IsActive:       false,
		IsFeatured:     true,
	}
	got, err := domain.FormFrom(o).Record()
	if err != nil {
		t.Fatal(err)
	}
	if got.Title != o.Title || got.Category != o.Category || got.Rating != 2.5 ||
		got.IsActive || !got.IsFeatured || got.Difficulty != domain.DifficultyHard {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestPredicateAndPatch(t *testing.T) {
	o := domain.Opportunity{ID: "1", Category: domain.CategoryOnlineSurveys, IsActive: true, IsFeatured: true}
	p := domain.Predicate{IsFeatured: domain.Ref(true), IsActive: domain.Ref(true)}
	if !p.Matches(o) {
		t.Fatal("featured predicate should match")
	}
	if (domain.Predicate{Category: domain.Ref(domain.CategoryPassiveIncome)}).Matches(o) {
		t.Fatal("category predicate should not match")
	}

	patched := domain.OpportunityPatch{IsActive: domain.Ref(false), Rating: domain.Ref(9.0)}.Apply(o)
	if patched.IsActive || patched.Rating != 5 || patched.Category != o.Category {
		t.Fatalf("patch applied wrong: %+v", patched)
	}
	if patched.FeaturedVisible() {
		t.Fatal("inactive record must not be featured-visible")
	}
}
