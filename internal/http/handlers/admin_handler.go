package handlers

import (
	"errors"

	"earnhub/internal/domain"
	applog "earnhub/internal/log"
	"earnhub/internal/repos"
	"earnhub/internal/services"
	"earnhub/internal/validate"

	"github.com/gofiber/fiber/v2"
)

// AdminHandler serves the opportunity CRUD panel. Each admin session gets
// its own editor from the registry.
type AdminHandler struct {
	Editors *services.EditorRegistry
}

func (h *AdminHandler) editor(c *fiber.Ctx) *services.Editor {
	return h.Editors.Get(c.Cookies("sid"))
}

func (h *AdminHandler) page(c *fiber.Ctx, status int, msg string) error {
	ed := h.editor(c)
	if err := ed.Load(c.UserContext()); err != nil {
		applog.Error(c, "admin.list.fail", err, nil)
	}
	v := ed.View()
	errMsg := msg
	if errMsg == "" && v.Err != nil {
		errMsg = userMessage(v.Err)
	}
	return render(c.Status(status), "admin", fiber.Map{
		"View":     v,
		"Err":      errMsg,
		"Pending":  v.Deleting(),
		"FormOpen": v.FormOpen(),
	})
}

func (h *AdminHandler) back(c *fiber.Ctx) error {
	return c.Redirect(PageURL(PageAdmin), fiber.StatusSeeOther)
}

// GET /admin
func (h *AdminHandler) List(c *fiber.Ctx) error {
	return h.page(c, fiber.StatusOK, "")
}

// GET /admin/new
func (h *AdminHandler) New(c *fiber.Ctx) error {
	if err := h.editor(c).OpenNew(); err != nil {
		return h.fail(c, "admin.opportunity.open", err)
	}
	return h.back(c)
}

// GET /admin/edit?id=
func (h *AdminHandler) Edit(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Query("id"))
	if !ok {
		return h.page(c, fiber.StatusBadRequest, "Invalid opportunity id.")
	}
	if err := h.editor(c).OpenEdit(c.UserContext(), id); err != nil {
		return h.fail(c, "admin.opportunity.open", err)
	}
	return h.back(c)
}

// POST /admin/save. The hidden id says which record the form belongs to,
// so a save works even when this session's editor moved on (another tab, a
// restart).
func (h *AdminHandler) Save(c *fiber.Ctx) error {
	id := ""
	if raw := c.FormValue("id"); raw != "" {
		var ok bool
		if id, ok = validate.ID(raw); !ok {
			return h.page(c, fiber.StatusBadRequest, "Invalid opportunity id.")
		}
	}

	saved, err := h.editor(c).Submit(c.UserContext(), id, formFromRequest(c))
	if err != nil {
		return h.fail(c, "admin.opportunity.save", err)
	}
	action := "admin.opportunity.create"
	if id != "" {
		action = "admin.opportunity.update"
	}
	applog.Audit(c, action, map[string]any{"id": saved.ID, "title": saved.Title})
	return h.back(c)
}

// POST /admin/cancel closes the form or the delete confirmation.
func (h *AdminHandler) Cancel(c *fiber.Ctx) error {
	if err := h.editor(c).Cancel(); err != nil {
		return h.fail(c, "admin.opportunity.cancel", err)
	}
	return h.back(c)
}

// GET /admin/delete?id= asks for confirmation.
func (h *AdminHandler) ConfirmDelete(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Query("id"))
	if !ok {
		return h.page(c, fiber.StatusBadRequest, "Invalid opportunity id.")
	}
	if err := h.editor(c).RequestDelete(id); err != nil {
		return h.fail(c, "admin.opportunity.delete", err)
	}
	return h.back(c)
}

// POST /admin/delete?id= deletes after confirmation. A post for a record
// that is not awaiting confirmation only opens the confirmation.
func (h *AdminHandler) Delete(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Query("id", c.FormValue("id")))
	if !ok {
		return h.page(c, fiber.StatusBadRequest, "Invalid opportunity id.")
	}
	ed := h.editor(c)
	if v := ed.View(); v.State != services.StateConfirmingDelete || v.DeleteID != id {
		if err := ed.RequestDelete(id); err != nil {
			return h.fail(c, "admin.opportunity.delete", err)
		}
		return h.back(c)
	}
	if err := ed.ConfirmDelete(c.UserContext()); err != nil {
		return h.fail(c, "admin.opportunity.delete", err)
	}
	applog.Audit(c, "admin.opportunity.delete", map[string]any{"id": id})
	return h.back(c)
}

// fail logs err and re-renders the panel with a matching status.
func (h *AdminHandler) fail(c *fiber.Ctx, action string, err error) error {
	status := statusFor(err)
	if status >= fiber.StatusInternalServerError {
		applog.Error(c, action+".fail", err, nil)
	} else {
		applog.Info(c, action+".rejected", map[string]any{"reason": err.Error()})
	}
	return h.page(c, status, userMessage(err))
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrSaveDisabled), errors.Is(err, domain.ErrInvalidForm):
		return fiber.StatusBadRequest
	case errors.Is(err, repos.ErrNotFound), errors.Is(err, services.ErrNoSelection):
		return fiber.StatusNotFound
	case errors.Is(err, services.ErrSaveInFlight), errors.Is(err, services.ErrBadState):
		return fiber.StatusConflict
	}
	return fiber.StatusBadGateway
}

// userMessage never exposes store internals.
func userMessage(err error) string {
	switch {
	case errors.Is(err, services.ErrSaveDisabled):
		return "Title and description are required."
	case errors.Is(err, domain.ErrInvalidForm):
		return err.Error()
	case errors.Is(err, repos.ErrNotFound):
		return "Opportunity not found."
	case errors.Is(err, services.ErrNoSelection):
		return "Nothing selected."
	case errors.Is(err, services.ErrSaveInFlight):
		return "Still working on the previous request. Please wait."
	case errors.Is(err, services.ErrBadState):
		return "Close the open form first."
	}
	return "Could not reach the data store. Please try again."
}

func formFromRequest(c *fiber.Ctx) domain.OpportunityForm {
	return domain.OpportunityForm{
		Title:            c.FormValue("title"),
		Category:         domain.Category(c.FormValue("category")),
		Description:      c.FormValue("description"),
		EarningPotential: c.FormValue("earning_potential"),
		TimeInvestment:   c.FormValue("time_investment"),
		Difficulty:       domain.Difficulty(c.FormValue("difficulty")),
		Recommendation:   domain.Recommendation(c.FormValue("recommendation")),
		Rating:           c.FormValue("rating"),
		Tips:             c.FormValue("tips"),
		ReferralLink:     c.FormValue("referral_link"),
		PlatformURL:      c.FormValue("platform_url"),
		CouponCode:       c.FormValue("coupon_code"),
		ImageURL:         c.FormValue("image_url"),
		EvidenceImages:   c.FormValue("evidence_images"),
		IsFeatured:       c.FormValue("is_featured") != "",
		IsActive:         c.FormValue("is_active") != "",
	}
}
