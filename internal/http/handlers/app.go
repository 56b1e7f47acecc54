package handlers

import (
	"errors"
	"strings"
	"time"

	applog "earnhub/internal/log"
	"earnhub/internal/tracing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

type AppOptions struct {
	Views        fiber.Views
	StaticDir    string
	CookieSecure bool
	// Requests per minute per IP; 0 uses the defaults.
	RateLimit  int
	LoginLimit int
	AccessLog  bool
}

// NewApp builds the Fiber app with middleware and every route.
func NewApp(d *Deps, opts AppOptions) *fiber.App {
	if opts.RateLimit <= 0 {
		opts.RateLimit = 120
	}
	if opts.LoginLimit <= 0 {
		opts.LoginLimit = 5
	}

	app := fiber.New(fiber.Config{
		Views:        opts.Views,
		ErrorHandler: ErrorHandler,
	})
	// Global body size guard
	app.Server().MaxRequestBodySize = 1 << 20 // 1 MiB

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	if opts.AccessLog {
		app.Use(logger.New())
	}
	// Opportunity images are hotlinked from partner sites.
	app.Use(helmet.New(helmet.Config{CrossOriginEmbedderPolicy: "unsafe-none"}))
	app.Use(tracing.Middleware())
	app.Use(AttachUser(d.Auth))
	app.Use(applog.Middleware())
	app.Use(limiter.New(limiter.Config{
		Max:        opts.RateLimit,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return strings.HasPrefix(c.Path(), "/static/")
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.global.hit", nil)
			return c.SendStatus(fiber.StatusTooManyRequests)
		},
	}))
	app.Use(csrf.New(csrf.Config{
		KeyLookup:      "form:csrf",
		CookieName:     "csrf_",
		CookieSameSite: "Lax",
		CookieSecure:   opts.CookieSecure,
		ContextKey:     "csrf",
		// The JSON API authenticates with bearer tokens, not cookies.
		Next: func(c *fiber.Ctx) bool {
			return strings.HasPrefix(c.Path(), "/api/")
		},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Security(c, "csrf.fail", map[string]any{"reason": err.Error()})
			return renderStatus(c, fiber.StatusForbidden, "Security check failed. Please refresh and try again.", "")
		},
	}))
	app.Use(func(c *fiber.Ctx) error {
		if tok, ok := c.Locals("csrf").(string); ok {
			c.Locals("CSRFToken", tok)
		}
		return c.Next()
	})

	if opts.StaticDir != "" {
		app.Static("/static", opts.StaticDir)
	}

	// ---------- Pages ----------
	app.Get(PageURL(PageHome), d.PageHandler.Home)
	app.Get(PageURL(PageBrowse), d.PageHandler.Browse)
	app.Get(PageURL(PageOpportunityDetail), d.PageHandler.Detail)

	// ---------- Auth ----------
	app.Get(PageURL(PageLogin), d.AuthHandler.LoginForm)
	app.Post(PageURL(PageLogin), limiter.New(limiter.Config{
		Max:        opts.LoginLimit,
		Expiration: 10 * time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			return render(c.Status(fiber.StatusTooManyRequests), "login", fiber.Map{"Err": "Too many attempts. Please try again later."})
		},
	}), d.AuthHandler.Login)
	app.Post("/logout", d.AuthHandler.Logout)

	// ---------- Admin ----------
	admin := app.Group(PageURL(PageAdmin), RequireAdmin(d.Auth))
	admin.Get("/", d.AdminHandler.List)
	admin.Get("/new", d.AdminHandler.New)
	admin.Get("/edit", d.AdminHandler.Edit)
	admin.Post("/save", d.AdminHandler.Save)
	admin.Post("/cancel", d.AdminHandler.Cancel)
	admin.Get("/delete", d.AdminHandler.ConfirmDelete)
	admin.Post("/delete", d.AdminHandler.Delete)

	// ---------- API ----------
	api := app.Group("/api/v1")
	api.Get("/opportunities", d.APIHandler.List)
	api.Get("/opportunities/featured", d.APIHandler.Featured)
	api.Get("/opportunities/:id", d.APIHandler.Get)
	api.Post("/token", limiter.New(limiter.Config{
		Max:        opts.LoginLimit,
		Expiration: 10 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() + "|token"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.token.hit", nil)
			return jsonError(c, fiber.StatusTooManyRequests, "rate limit exceeded, retry later")
		},
	}), d.APIHandler.Token)

	apiAdmin := api.Group("/admin", RequireAdminToken(d.Tokens))
	apiAdmin.Get("/opportunities", d.APIHandler.AdminList)
	apiAdmin.Post("/opportunities", d.APIHandler.Create)
	apiAdmin.Patch("/opportunities/:id", d.APIHandler.Update)
	apiAdmin.Delete("/opportunities/:id", d.APIHandler.Delete)

	// Health & 404
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	app.Use(func(c *fiber.Ctx) error {
		if strings.HasPrefix(c.Path(), "/api/") {
			return jsonError(c, fiber.StatusNotFound, "not found")
		}
		return renderStatus(c, fiber.StatusNotFound, "Page not found", PageURL(PageHome))
	})

	return app
}

// ErrorHandler logs the error and shows a friendly page without internals.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) && fe.Code < fiber.StatusInternalServerError {
		code = fe.Code
	}
	applog.Error(c, "server.error", err, map[string]any{"status": code})
	msg := "Something went wrong. Please try again."
	if code == fiber.StatusNotFound {
		msg = "Page not found"
	}
	if rerr := renderStatus(c, code, msg, PageURL(PageHome)); rerr != nil {
		return c.Status(code).SendString(msg)
	}
	return nil
}
