package present

import (
	"testing"

	"earnhub/internal/domain"
)

func TestLabelsFallBackToRawValue(t *testing.T) {
	if got := CategoryLabel(domain.CategoryCryptoNFTGaming); got != "Crypto & NFT Gaming" {
		t.Fatalf("category label = %q", got)
	}
	if got := CategoryLabel("mystery_box"); got != "mystery_box" {
		t.Fatalf("unknown category = %q", got)
	}
	if b := CardRecommendation("legacy_tier"); b.Label != "legacy_tier" || b.Style != "" {
		t.Fatalf("unknown recommendation = %+v", b)
	}
	if b := DifficultyBadge(""); b.Label != "" || b.Style != "" {
		t.Fatalf("missing difficulty = %+v", b)
	}
}

func TestCardAndDetailWordingDiffer(t *testing.T) {
	card := CardRecommendation(domain.RecommendationNot)
	detail := DetailRecommendation(domain.RecommendationNot)
	if card.Label != "Skip" || detail.Label != "Not Recommended" || detail.Desc == "" {
		t.Fatalf("card=%+v detail=%+v", card, detail)
	}
	if card.Style != detail.Style {
		t.Fatalf("styles differ: %q vs %q", card.Style, detail.Style)
	}
}

func TestCategoriesCoverEnum(t *testing.T) {
	tiles := Categories()
	if len(tiles) != len(domain.Categories) {
		t.Fatalf("tiles = %d", len(tiles))
	}
	for i, tile := range tiles {
		if tile.Key != domain.Categories[i] || tile.Label == "" || tile.Blurb == "" {
			t.Errorf("tile %d = %+v", i, tile)
		}
	}
}

func TestRatingAndPlural(t *testing.T) {
	if Rating(0) != "" || Rating(4.5) != "4.5" || Rating(5) != "5" {
		t.Fatal("rating formatting")
	}
	if Plural(1, "opportunity", "opportunities") != "opportunity" || Plural(0, "a", "b") != "b" {
		t.Fatal("plural")
	}
}
