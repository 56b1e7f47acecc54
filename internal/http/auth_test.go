package handlers_test

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"earnhub/internal/http/handlers"
)

func loginForm(email, password, next string) url.Values {
	return url.Values{"email": {email}, "password": {password}, "next": {next}}
}

func TestLoginLogsFailureAndSuccess(t *testing.T) {
	e := newTestEnv(t, handlers.AppOptions{})
	tok := e.csrf(t)

	var resp *http.Response
	entries := captureLogs(t, func() {
		resp, _ = e.postForm(t, "/login", "", tok, loginForm("admin@earnhub.test", "Wr0ngPass!", "/admin"))
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("bad password = %d", resp.StatusCode)
	}
	ev := findLog(entries, "auth.login.fail")
	if ev == nil || ev.Fields["email"] != "admin@earnhub.test" {
		t.Fatalf("fail event = %+v", ev)
	}

	entries = captureLogs(t, func() {
		resp, _ = e.postForm(t, "/login", "", tok, loginForm("admin@earnhub.test", "Passw0rd!", "/admin"))
	})
	if resp.StatusCode != http.StatusFound || resp.Header.Get("Location") != "/admin" {
		t.Fatalf("login = %d %q", resp.StatusCode, resp.Header.Get("Location"))
	}
	if findLog(entries, "auth.login.success") == nil {
		t.Fatal("success event missing")
	}

	sid := cookieValue(resp, "sid")
	if sid == "" {
		t.Fatal("no session cookie")
	}
	if resp, _ := e.get(t, "/admin", sid); resp.StatusCode != http.StatusOK {
		t.Fatalf("admin after login = %d", resp.StatusCode)
	}
}

func TestLoginIgnoresForeignNext(t *testing.T) {
	e := newTestEnv(t, handlers.AppOptions{})
	tok := e.csrf(t)

	resp, _ := e.postForm(t, "/login", "", tok, loginForm("alice@earnhub.test", "Passw0rd!", "https://evil.example/"))
	if resp.StatusCode != http.StatusFound || resp.Header.Get("Location") != "/" {
		t.Fatalf("login = %d %q", resp.StatusCode, resp.Header.Get("Location"))
	}
}

func TestLoginRotatesSession(t *testing.T) {
	e := newTestEnv(t, handlers.AppOptions{})
	tok := e.csrf(t)

	resp, _ := e.postForm(t, "/login", "planted-sid", tok, loginForm("admin@earnhub.test", "Passw0rd!", "/"))
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("login = %d", resp.StatusCode)
	}
	sid := cookieValue(resp, "sid")
	if sid == "" || sid == "planted-sid" {
		t.Fatalf("session not rotated: %q", sid)
	}
	if resp, _ := e.get(t, "/admin", "planted-sid"); resp.StatusCode != http.StatusFound {
		t.Fatalf("planted sid reached admin: %d", resp.StatusCode)
	}
}

func TestLogoutEndsSession(t *testing.T) {
	e := newTestEnv(t, handlers.AppOptions{})
	e.session(t, "sid-admin", "u-admin")
	tok := e.csrf(t)

	var resp *http.Response
	entries := captureLogs(t, func() {
		resp, _ = e.postForm(t, "/logout", "sid-admin", tok, url.Values{})
	})
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("logout = %d", resp.StatusCode)
	}
	if findLog(entries, "auth.logout") == nil {
		t.Fatal("logout event missing")
	}
	if resp, _ := e.get(t, "/admin", "sid-admin"); resp.StatusCode != http.StatusFound {
		t.Fatalf("admin after logout = %d", resp.StatusCode)
	}
}

func TestLoginRateLimit(t *testing.T) {
	e := newTestEnv(t, handlers.AppOptions{LoginLimit: 2})
	tok := e.csrf(t)

	for i := 0; i < 3; i++ {
		resp, _ := e.postForm(t, "/login", "", tok, loginForm("admin@earnhub.test", "Wr0ngPass!", "/"))
		if i < 2 && resp.StatusCode == http.StatusTooManyRequests {
			t.Fatalf("limited too early at %d", i)
		}
		if i == 2 && resp.StatusCode != http.StatusTooManyRequests {
			t.Fatalf("expected 429, got %d", resp.StatusCode)
		}
	}
}

func TestBodySizeLimit(t *testing.T) {
	e := newTestEnv(t, handlers.AppOptions{})
	tok := e.csrf(t)

	oversize := bytes.Repeat([]byte("A"), (1<<20)+10)
	req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader(oversize))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(&http.Cookie{Name: "csrf_", Value: tok})
	resp, err := e.app.Test(req, -1)
	// fasthttp may drop the connection instead of answering.
	if err != nil {
		if strings.Contains(err.Error(), "body size exceeds") || strings.Contains(err.Error(), "too large") {
			return
		}
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusRequestEntityTooLarge {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("expected 413, got %d body=%s", resp.StatusCode, body)
	}
}

func TestLoginReleasesPreviousSession(t *testing.T) {
	e := newTestEnv(t, handlers.AppOptions{})
	e.session(t, "sid-old", "u-alice")
	tok := e.csrf(t)
	oldEditor := e.deps.Editors.Get("sid-old")

	resp, _ := e.postForm(t, "/login", "sid-old", tok, loginForm("admin@earnhub.test", "Passw0rd!", "/"))
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("login = %d", resp.StatusCode)
	}
	if sid := cookieValue(resp, "sid"); sid == "" || sid == "sid-old" {
		t.Fatalf("new sid = %q", sid)
	}
	if e.deps.Auth.IsAuthenticated(context.Background(), "sid-old") {
		t.Fatal("old sid still bound")
	}
	if e.deps.Editors.Get("sid-old") == oldEditor {
		t.Fatal("old editor not released")
	}
}

func TestFailedLoginKeepsSession(t *testing.T) {
	e := newTestEnv(t, handlers.AppOptions{})
	e.session(t, "sid-alice", "u-alice")
	tok := e.csrf(t)

	resp, _ := e.postForm(t, "/login", "sid-alice", tok, loginForm("admin@earnhub.test", "Wr0ngPass!", "/"))
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("login = %d", resp.StatusCode)
	}
	if !e.deps.Auth.IsAuthenticated(context.Background(), "sid-alice") {
		t.Fatal("failed login ended the existing session")
	}
}
