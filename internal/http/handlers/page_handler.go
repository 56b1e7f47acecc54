package handlers

import (
	"fmt"

	"earnhub/internal/domain"
	"earnhub/internal/log"
	"earnhub/internal/present"
	"earnhub/internal/services"
	"earnhub/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type PageHandler struct {
	Catalog *services.CatalogService
}

// GET /
func (h *PageHandler) Home(c *fiber.Ctx) error {
	items, err := h.Catalog.Featured(c.UserContext())
	if err != nil {
		log.Error(c, "catalog.featured.fail", err, nil)
	}
	featured := services.Degrade(items, err)
	return render(c, "home", fiber.Map{
		"Featured":   featured,
		"Categories": present.Categories(),
	})
}

// GET /browse?q=&category=&recommendation=
func (h *PageHandler) Browse(c *fiber.Ctx) error {
	crit, ok := criteriaFrom(c)
	if !ok {
		return render(c.Status(fiber.StatusBadRequest), "browse", fiber.Map{
			"Items":         []domain.Opportunity{},
			"Count":         0,
			"Criteria":      crit,
			"ActiveFilters": crit.ActiveFilters(),
			"Filtered":      true,
			"QueryErr":      queryTooLong,
		})
	}
	items, err := h.Catalog.Browse(c.UserContext())
	if err != nil {
		log.Error(c, "catalog.browse.fail", err, nil)
	}
	all := services.Degrade(items, err)
	shown := services.Filter(all.Items, crit)
	return render(c, "browse", fiber.Map{
		"Items":         shown,
		"Count":         len(shown),
		"LoadFailed":    all.LoadFailed,
		"Criteria":      crit,
		"ActiveFilters": crit.ActiveFilters(),
		"Filtered":      crit.Query != "" || crit.ActiveFilters() > 0,
	})
}

var queryTooLong = fmt.Sprintf("Search is limited to %d characters.", validate.MaxQuery)

// criteriaFrom reads the browse criteria. Unknown selector values mean "all";
// ok is false when the query is too long to search for.
func criteriaFrom(c *fiber.Ctx) (services.Criteria, bool) {
	q, ok := validate.Q(c.Query("q"))
	return services.Criteria{
		Query:          q,
		Category:       validate.CategorySelector(c.Query("category")),
		Recommendation: validate.RecommendationSelector(c.Query("recommendation")),
	}.Normalize(), ok
}

// GET /opportunity?id=
func (h *PageHandler) Detail(c *fiber.Ctx) error {
	back := PageURL(PageBrowse)
	id, ok := validate.ID(c.Query("id"))
	if !ok {
		return renderStatus(c, fiber.StatusNotFound, "Opportunity not found.", back)
	}
	o, err := h.Catalog.Detail(c.UserContext(), id)
	if err != nil {
		log.Error(c, "catalog.detail.fail", err, map[string]any{"id": id})
		return renderStatus(c, fiber.StatusBadGateway, "Could not load this opportunity. Please try again.", back)
	}
	if o == nil || (!o.IsActive && !currentUser(c).IsAdmin()) {
		return renderStatus(c, fiber.StatusNotFound, "Opportunity not found.", back)
	}
	return render(c, "opportunity", fiber.Map{
		"Opp":            o,
		"Recommendation": present.DetailRecommendation(o.Recommendation),
		"Difficulty":     present.DifficultyBadge(o.Difficulty),
	})
}
