package handlers

import (
	"time"

	"earnhub/internal/log"
	"earnhub/internal/services"
	"earnhub/internal/validate"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type AuthHandler struct {
	Auth         *services.AuthService
	Editors      *services.EditorRegistry
	CookieSecure bool
}

func (h *AuthHandler) setSID(c *fiber.Ctx, sid string) {
	c.Cookie(&fiber.Cookie{
		Name:     "sid",
		Value:    sid,
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Secure:   h.CookieSecure,
	})
}

func (h *AuthHandler) LoginForm(c *fiber.Ctx) error {
	if currentUser(c) != nil {
		return c.Redirect(validate.NextPath(c.Query("next")))
	}
	return render(c, "login", fiber.Map{"Err": "", "Next": validate.NextPath(c.Query("next"))})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	email := c.FormValue("email")
	pass := c.FormValue("password")
	next := validate.NextPath(c.FormValue("next"))
	fail := func(reason string) error {
		fields := map[string]any{"email": email}
		if reason != "" {
			fields["reason"] = reason
		}
		log.Security(c, "auth.login.fail", fields)
		return render(c.Status(fiber.StatusUnauthorized), "login", fiber.Map{
			"Err": "Invalid email or password", "Email": email, "Next": next,
		})
	}
	if _, ok := validate.Email(email); !ok {
		return fail("bad_format")
	}
	if !validate.Password(pass) {
		return fail("bad_password_format")
	}

	// Every login gets a fresh sid. The old one is unbound and its editor
	// dropped only once the new session exists.
	sid := uuid.NewString()
	if _, err := h.Auth.Login(c.UserContext(), sid, email, pass); err != nil {
		return fail("")
	}
	if old := c.Cookies("sid"); old != "" {
		if err := h.Auth.Logout(c.UserContext(), old); err != nil {
			log.Error(c, "auth.session.unbind.fail", err, nil)
		}
		if h.Editors != nil {
			h.Editors.Release(old)
		}
	}
	h.setSID(c, sid)

	log.Audit(c, "auth.login.success", map[string]any{"email": email})
	return c.Redirect(next)
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	sid := c.Cookies("sid")
	if sid != "" {
		_ = h.Auth.Logout(c.UserContext(), sid)
		if h.Editors != nil {
			h.Editors.Release(sid)
		}
	}
	c.Cookie(&fiber.Cookie{
		Name:     "sid",
		Value:    "",
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Secure:   h.CookieSecure,
		Expires:  time.Now().Add(-1 * time.Hour),
	})
	log.Audit(c, "auth.logout", nil)
	return c.Redirect(PageURL(PageHome))
}
