package handlers

import (
	"errors"
	"strings"

	"earnhub/internal/domain"
	applog "earnhub/internal/log"
	"earnhub/internal/repos"
	"earnhub/internal/services"
	"earnhub/internal/token"
	"earnhub/internal/validate"

	"github.com/gofiber/fiber/v2"
)

// APIHandler serves the JSON API. Each write runs through its own editor,
// so API writes get the same coercion and validation as the HTML panel.
type APIHandler struct {
	Catalog *services.CatalogService
	Auth    *services.AuthService
	Tokens  *token.Issuer
}

type listResponse struct {
	Items []domain.Opportunity `json:"items"`
	Count int                  `json:"count"`
}

func listJSON(items []domain.Opportunity) listResponse {
	if items == nil {
		items = []domain.Opportunity{}
	}
	return listResponse{Items: items, Count: len(items)}
}

// GET /api/v1/opportunities?q=&category=&recommendation=
func (h *APIHandler) List(c *fiber.Ctx) error {
	crit, ok := criteriaFrom(c)
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, queryTooLong)
	}
	items, err := h.Catalog.Browse(c.UserContext())
	if err != nil {
		applog.Error(c, "api.list.fail", err, nil)
		return jsonError(c, fiber.StatusBadGateway, "could not load opportunities")
	}
	return c.JSON(listJSON(services.Filter(items, crit)))
}

// GET /api/v1/opportunities/featured
func (h *APIHandler) Featured(c *fiber.Ctx) error {
	items, err := h.Catalog.Featured(c.UserContext())
	if err != nil {
		applog.Error(c, "api.featured.fail", err, nil)
		return jsonError(c, fiber.StatusBadGateway, "could not load opportunities")
	}
	return c.JSON(listJSON(items))
}

// GET /api/v1/opportunities/:id
func (h *APIHandler) Get(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return jsonError(c, fiber.StatusNotFound, "opportunity not found")
	}
	o, err := h.Catalog.Detail(c.UserContext(), id)
	if err != nil {
		applog.Error(c, "api.detail.fail", err, map[string]any{"id": id})
		return jsonError(c, fiber.StatusBadGateway, "could not load opportunity")
	}
	if o == nil || (!o.IsActive && !h.bearerIsAdmin(c)) {
		return jsonError(c, fiber.StatusNotFound, "opportunity not found")
	}
	return c.JSON(o)
}

// bearerIsAdmin reports whether an optional bearer token on a public route
// belongs to an admin. Bad tokens count as anonymous.
func (h *APIHandler) bearerIsAdmin(c *fiber.Ctx) bool {
	s, ok := strings.CutPrefix(c.Get(fiber.HeaderAuthorization), "Bearer ")
	if !ok {
		return false
	}
	claims, err := h.Tokens.Parse(strings.TrimSpace(s))
	return err == nil && claims.IsAdmin()
}

type tokenRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// POST /api/v1/token
func (h *APIHandler) Token(c *fiber.Ctx) error {
	var req tokenRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	u, err := h.Auth.Verify(c.UserContext(), req.Email, req.Password)
	if err != nil {
		applog.Security(c, "api.token.fail", map[string]any{"email": req.Email})
		return jsonError(c, fiber.StatusUnauthorized, "invalid email or password")
	}
	s, exp, err := h.Tokens.Sign(u)
	if err != nil {
		applog.Error(c, "api.token.sign.fail", err, nil)
		return jsonError(c, fiber.StatusInternalServerError, "could not issue token")
	}
	applog.Audit(c, "api.token.issued", map[string]any{"email": u.Email, "role": u.Role})
	return c.JSON(fiber.Map{"token": s, "token_type": "Bearer", "expires_at": exp.UTC()})
}

// editor returns a fresh editor for one API call. Requests never share form
// state, even with the same token.
func (h *APIHandler) editor() *services.Editor {
	return services.NewEditor(h.Catalog.Store)
}

// GET /api/v1/admin/opportunities lists every record, inactive included.
func (h *APIHandler) AdminList(c *fiber.Ctx) error {
	items, err := h.Catalog.AdminList(c.UserContext())
	if err != nil {
		applog.Error(c, "api.admin.list.fail", err, nil)
		return jsonError(c, fiber.StatusBadGateway, "could not load opportunities")
	}
	return c.JSON(listJSON(items))
}

// POST /api/v1/admin/opportunities
func (h *APIHandler) Create(c *fiber.Ctx) error {
	in := domain.Opportunity{IsActive: true}
	if err := c.BodyParser(&in); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	saved, err := h.editor().Submit(c.UserContext(), "", domain.FormFrom(in))
	if err != nil {
		return h.writeFail(c, "api.opportunity.create", err)
	}
	applog.Audit(c, "api.opportunity.create", map[string]any{"id": saved.ID})
	return c.Status(fiber.StatusCreated).JSON(saved)
}

// opportunityPatch is the JSON shape of a partial update.
type opportunityPatch struct {
	Title            *string                `json:"title"`
	Category         *domain.Category       `json:"category"`
	Description      *string                `json:"description"`
	EarningPotential *string                `json:"earning_potential"`
	TimeInvestment   *string                `json:"time_investment"`
	Difficulty       *domain.Difficulty     `json:"difficulty"`
	Recommendation   *domain.Recommendation `json:"recommendation"`
	Rating           *float64               `json:"rating"`
	Tips             *string                `json:"tips"`
	ReferralLink     *string                `json:"referral_link"`
	PlatformURL      *string                `json:"platform_url"`
	CouponCode       *string                `json:"coupon_code"`
	ImageURL         *string                `json:"image_url"`
	EvidenceImages   *[]string              `json:"evidence_images"`
	IsFeatured       *bool                  `json:"is_featured"`
	IsActive         *bool                  `json:"is_active"`
}

func (p opportunityPatch) toDomain() domain.OpportunityPatch {
	return domain.OpportunityPatch{
		Title:            p.Title,
		Category:         p.Category,
		Description:      p.Description,
		EarningPotential: p.EarningPotential,
		TimeInvestment:   p.TimeInvestment,
		Difficulty:       p.Difficulty,
		Recommendation:   p.Recommendation,
		Rating:           p.Rating,
		Tips:             p.Tips,
		ReferralLink:     p.ReferralLink,
		PlatformURL:      p.PlatformURL,
		CouponCode:       p.CouponCode,
		ImageURL:         p.ImageURL,
		EvidenceImages:   p.EvidenceImages,
		IsFeatured:       p.IsFeatured,
		IsActive:         p.IsActive,
	}
}

// PATCH /api/v1/admin/opportunities/:id
func (h *APIHandler) Update(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return jsonError(c, fiber.StatusNotFound, "opportunity not found")
	}
	var in opportunityPatch
	if err := c.BodyParser(&in); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	ed := h.editor()
	if err := ed.OpenEdit(c.UserContext(), id); err != nil {
		return h.writeFail(c, "api.opportunity.update", err)
	}
	cur, err := ed.View().Form.Record()
	if err != nil {
		return h.writeFail(c, "api.opportunity.update", err)
	}
	saved, err := ed.Submit(c.UserContext(), id, domain.FormFrom(in.toDomain().Apply(cur)))
	if err != nil {
		return h.writeFail(c, "api.opportunity.update", err)
	}
	applog.Audit(c, "api.opportunity.update", map[string]any{"id": saved.ID})
	return c.JSON(saved)
}

// DELETE /api/v1/admin/opportunities/:id. The request itself is the
// confirmation.
func (h *APIHandler) Delete(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return jsonError(c, fiber.StatusNotFound, "opportunity not found")
	}
	o, err := h.Catalog.Detail(c.UserContext(), id)
	if err != nil {
		return h.writeFail(c, "api.opportunity.delete", err)
	}
	if o == nil {
		return jsonError(c, fiber.StatusNotFound, "opportunity not found")
	}
	ed := h.editor()
	if err := ed.RequestDelete(id); err != nil {
		return h.writeFail(c, "api.opportunity.delete", err)
	}
	if err := ed.ConfirmDelete(c.UserContext()); err != nil {
		return h.writeFail(c, "api.opportunity.delete", err)
	}
	applog.Audit(c, "api.opportunity.delete", map[string]any{"id": id})
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandler) writeFail(c *fiber.Ctx, action string, err error) error {
	status := statusFor(err)
	if status >= fiber.StatusInternalServerError {
		applog.Error(c, action+".fail", err, nil)
		return jsonError(c, status, "could not reach the data store")
	}
	msg := userMessage(err)
	if errors.Is(err, domain.ErrInvalidForm) || errors.Is(err, repos.ErrNotFound) {
		msg = err.Error()
	}
	return jsonError(c, status, msg)
}
