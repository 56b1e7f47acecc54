package handlers

import (
	"earnhub/internal/domain"
	"earnhub/internal/present"

	"github.com/gofiber/fiber/v2"
	html "github.com/gofiber/template/html/v2"
)

// Page names used by navigation and redirects.
const (
	PageHome              = "Home"
	PageBrowse            = "Browse"
	PageOpportunityDetail = "OpportunityDetail"
	PageAdmin             = "Admin"
	PageLogin             = "Login"
)

var pagePaths = map[string]string{
	PageHome:              "/",
	PageBrowse:            "/browse",
	PageOpportunityDetail: "/opportunity",
	PageAdmin:             "/admin",
	PageLogin:             "/login",
}

// PageURL maps a page name to its path. Unknown names go home.
func PageURL(name string) string {
	if p, ok := pagePaths[name]; ok {
		return p
	}
	return "/"
}

type navItem struct {
	Name   string
	URL    string
	Active bool
}

// nav lists the header links. The Admin link is only shown to admins; the
// /admin routes check the role again.
func nav(c *fiber.Ctx, u *domain.User) []navItem {
	names := []string{PageHome, PageBrowse}
	if u.IsAdmin() {
		names = append(names, PageAdmin)
	}
	out := make([]navItem, 0, len(names))
	for _, n := range names {
		out = append(out, navItem{Name: n, URL: PageURL(n), Active: c.Path() == PageURL(n)})
	}
	return out
}

// NewViews builds the template engine with the presenter functions
// registered. Funcs must be added before the engine loads.
func NewViews(dir string) *html.Engine {
	engine := html.New(dir, ".html")
	engine.AddFuncMap(present.Funcs())
	engine.AddFunc("pageURL", PageURL)
	return engine
}

func currentUser(c *fiber.Ctx) *domain.User {
	u, _ := c.Locals("user").(*domain.User)
	return u
}

func render(c *fiber.Ctx, tmpl string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	u := currentUser(c)
	if u != nil {
		data["User"] = u
	}
	data["IsAdmin"] = u.IsAdmin()
	data["Nav"] = nav(c, u)
	// Locals is empty on requests the CSRF middleware skips; the cookie
	// holds the same token.
	tok, _ := c.Locals("CSRFToken").(string)
	if tok == "" {
		tok = c.Cookies("csrf_")
	}
	data["CSRFToken"] = tok
	return c.Render(tmpl, data)
}

// renderStatus renders the shared message page.
func renderStatus(c *fiber.Ctx, status int, msg string, back string) error {
	return render(c.Status(status), "notfound", fiber.Map{"Message": msg, "Back": back})
}
