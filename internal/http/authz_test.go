package handlers_test

import (
	"net/http"
	"strings"
	"testing"

	"earnhub/internal/http/handlers"
)

func TestAdminGuard(t *testing.T) {
	e := newTestEnv(t, handlers.AppOptions{})
	e.session(t, "sid-admin", "u-admin")
	e.session(t, "sid-alice", "u-alice")

	resp, _ := e.get(t, "/admin", "")
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("anonymous /admin = %d, want 302", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); !strings.HasPrefix(loc, "/login?next=") {
		t.Fatalf("redirect = %q", loc)
	}

	resp, body := e.get(t, "/admin", "sid-alice")
	if resp.StatusCode != http.StatusForbidden || !strings.Contains(body, "Access denied") {
		t.Fatalf("user /admin = %d", resp.StatusCode)
	}

	resp, body = e.get(t, "/admin", "sid-admin")
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, "Admin Panel") {
		t.Fatalf("admin /admin = %d", resp.StatusCode)
	}
}

func TestAdminGuardCoversSubroutes(t *testing.T) {
	e := newTestEnv(t, handlers.AppOptions{})
	e.session(t, "sid-alice", "u-alice")

	for _, path := range []string{"/admin/new", "/admin/edit?id=1", "/admin/delete?id=1"} {
		resp, _ := e.get(t, path, "sid-alice")
		if resp.StatusCode != http.StatusForbidden {
			t.Errorf("%s as user = %d, want 403", path, resp.StatusCode)
		}
	}
}

func TestAdminNavOnlyForAdmins(t *testing.T) {
	e := newTestEnv(t, handlers.AppOptions{})
	e.session(t, "sid-admin", "u-admin")
	e.session(t, "sid-alice", "u-alice")

	link := `href="/admin"`
	if _, body := e.get(t, "/", ""); strings.Contains(body, link) {
		t.Error("anonymous nav shows Admin")
	}
	if _, body := e.get(t, "/", "sid-alice"); strings.Contains(body, link) {
		t.Error("user nav shows Admin")
	}
	if _, body := e.get(t, "/", "sid-admin"); !strings.Contains(body, link) {
		t.Error("admin nav hides Admin")
	}
}
