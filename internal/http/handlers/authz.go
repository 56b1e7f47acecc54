package handlers

import (
	"net/url"
	"strings"

	applog "earnhub/internal/log"
	"earnhub/internal/services"
	"earnhub/internal/token"

	"github.com/gofiber/fiber/v2"
)

// AttachUser puts the signed-in user, if any, into Locals("user").
func AttachUser(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if sid := c.Cookies("sid"); sid != "" {
			if u, err := auth.Me(c.UserContext(), sid); err == nil && u != nil {
				c.Locals("user", u)
			}
		}
		return c.Next()
	}
}

// RedirectToLogin sends the browser to the login page, remembering where
// it was going.
func RedirectToLogin(c *fiber.Ctx) error {
	return c.Redirect(PageURL(PageLogin) + "?next=" + url.QueryEscape(c.OriginalURL()))
}

func RequireAdmin(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sid := c.Cookies("sid")
		if sid == "" {
			return RedirectToLogin(c)
		}
		u, err := auth.Me(c.UserContext(), sid)
		if err != nil || u == nil {
			return RedirectToLogin(c)
		}
		if !u.IsAdmin() {
			applog.Security(c, "access.denied.admin", map[string]any{"user_id": u.ID})
			c.Locals("user", u)
			return renderStatus(c, fiber.StatusForbidden, "Access denied", PageURL(PageHome))
		}
		c.Locals("user", u)
		return c.Next()
	}
}

// RequireAdminToken guards the JSON write API with a bearer token carrying
// the admin role. Claims are stored in Locals("claims").
func RequireAdminToken(tokens *token.Issuer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := c.Get(fiber.HeaderAuthorization)
		s, ok := strings.CutPrefix(raw, "Bearer ")
		if !ok || strings.TrimSpace(s) == "" {
			applog.Security(c, "api.auth.missing", nil)
			return jsonError(c, fiber.StatusUnauthorized, "missing bearer token")
		}
		claims, err := tokens.Parse(strings.TrimSpace(s))
		if err != nil {
			applog.Security(c, "api.auth.invalid", map[string]any{"reason": err.Error()})
			return jsonError(c, fiber.StatusUnauthorized, err.Error())
		}
		if !claims.IsAdmin() {
			applog.Security(c, "access.denied.api", map[string]any{"user_id": claims.Subject})
			return jsonError(c, fiber.StatusForbidden, "admin role required")
		}
		c.Locals("claims", claims)
		return c.Next()
	}
}

func jsonError(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"error": msg})
}
