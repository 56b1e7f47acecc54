package handlers_test

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	"earnhub/internal/http/handlers"
)

func TestErrorHandlerHidesInternals(t *testing.T) {
	app := fiber.New(fiber.Config{
		Views:        handlers.NewViews("../../web/templates"),
		ErrorHandler: handlers.ErrorHandler,
	})
	app.Get("/boom", func(c *fiber.Ctx) error {
		return errors.New("sqlite: no such table opportunities")
	})
	app.Get("/gone", func(c *fiber.Ctx) error {
		return fiber.ErrNotFound
	})

	var resp *http.Response
	entries := captureLogs(t, func() {
		var err error
		resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/boom", nil))
		if err != nil {
			t.Fatal(err)
		}
	})
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if strings.Contains(string(body), "no such table") || !strings.Contains(string(body), "Something went wrong") {
		t.Fatalf("body leaked or missing message: %s", body)
	}
	if ev := findLog(entries, "server.error"); ev == nil || ev.Level != "error" {
		t.Fatalf("error not logged: %+v", entries)
	}

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/gone", nil))
	if err != nil {
		t.Fatal(err)
	}
	body, _ = io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusNotFound || !strings.Contains(string(body), "Page not found") {
		t.Fatalf("404 = %d %s", resp.StatusCode, body)
	}
}

func TestUnknownRoutes(t *testing.T) {
	e := newTestEnv(t, handlers.AppOptions{})

	resp, body := e.get(t, "/nowhere", "")
	if resp.StatusCode != http.StatusNotFound || !strings.Contains(body, "Page not found") {
		t.Fatalf("html 404 = %d", resp.StatusCode)
	}
	resp, body = e.get(t, "/api/v1/nowhere", "")
	if resp.StatusCode != http.StatusNotFound || !strings.Contains(resp.Header.Get("Content-Type"), "application/json") {
		t.Fatalf("api 404 = %d %s", resp.StatusCode, body)
	}
	if resp, _ := e.get(t, "/healthz", ""); resp.StatusCode != http.StatusOK {
		t.Fatalf("healthz = %d", resp.StatusCode)
	}
}
