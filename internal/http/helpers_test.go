package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"earnhub/internal/cache"
	"earnhub/internal/domain"
	"earnhub/internal/http/handlers"
	"earnhub/internal/repos"
	"earnhub/internal/token"
)

type testEnv struct {
	app   *fiber.App
	deps  *handlers.Deps
	users *repos.UserRepo
	store repos.OpportunityStore
	flaky *flakyStore
}

// flakyStore fails reads on demand; writes always pass through.
type flakyStore struct {
	repos.OpportunityStore
	failReads atomic.Bool
}

var errStoreDown = errors.New("store unreachable")

func (f *flakyStore) List(ctx context.Context, sort string, limit int) ([]domain.Opportunity, error) {
	if f.failReads.Load() {
		return nil, errStoreDown
	}
	return f.OpportunityStore.List(ctx, sort, limit)
}

func (f *flakyStore) Filter(ctx context.Context, p domain.Predicate, sort string, limit int) ([]domain.Opportunity, error) {
	if f.failReads.Load() {
		return nil, errStoreDown
	}
	return f.OpportunityStore.Filter(ctx, p, sort, limit)
}

func newTestEnv(t *testing.T, opts handlers.AppOptions) *testEnv {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	store := repos.NewCachedOpportunityRepo(repos.NewOpportunityRepo(db), cache.NewInMemoryCache(), time.Minute)
	flaky := &flakyStore{OpportunityStore: store}
	users := repos.NewUserRepo(db)
	deps := handlers.NewDeps(flaky, users, token.NewIssuer("test-secret", time.Hour), false)

	opts.Views = handlers.NewViews("../../web/templates")
	return &testEnv{app: handlers.NewApp(deps, opts), deps: deps, users: users, store: store, flaky: flaky}
}

// session binds a fresh sid to userID, e.g. "u-admin" or "u-alice".
func (e *testEnv) session(t *testing.T, sid, userID string) {
	t.Helper()
	if err := e.users.BindSession(context.Background(), sid, userID); err != nil {
		t.Fatal(err)
	}
}

func (e *testEnv) create(t *testing.T, o domain.Opportunity) domain.Opportunity {
	t.Helper()
	got, err := e.store.Create(context.Background(), o)
	if err != nil {
		t.Fatal(err)
	}
	return got
}

func (e *testEnv) all(t *testing.T) []domain.Opportunity {
	t.Helper()
	list, err := e.store.List(context.Background(), repos.DefaultSort, 100)
	if err != nil {
		t.Fatal(err)
	}
	return list
}

func (e *testEnv) do(t *testing.T, req *http.Request) (*http.Response, string) {
	t.Helper()
	resp, err := e.app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", req.Method, req.URL, err)
	}
	b, _ := io.ReadAll(resp.Body)
	return resp, string(b)
}

func (e *testEnv) get(t *testing.T, path, sid string) (*http.Response, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if sid != "" {
		req.AddCookie(&http.Cookie{Name: "sid", Value: sid})
	}
	return e.do(t, req)
}

// csrf fetches a page and returns the CSRF cookie value.
func (e *testEnv) csrf(t *testing.T) string {
	t.Helper()
	resp, _ := e.get(t, "/login", "")
	tok := cookieValue(resp, "csrf_")
	if tok == "" {
		t.Fatal("csrf token missing")
	}
	return tok
}

func (e *testEnv) postForm(t *testing.T, path, sid, csrfTok string, vals url.Values) (*http.Response, string) {
	t.Helper()
	if csrfTok != "" {
		vals.Set("csrf", csrfTok)
	}
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(vals.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if sid != "" {
		req.AddCookie(&http.Cookie{Name: "sid", Value: sid})
	}
	if csrfTok != "" {
		req.AddCookie(&http.Cookie{Name: "csrf_", Value: csrfTok})
	}
	return e.do(t, req)
}

func (e *testEnv) json(t *testing.T, method, path, bearer string, body any) (*http.Response, string) {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	return e.do(t, req)
}

func cookieValue(resp *http.Response, name string) string {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

type logEntry struct {
	Level  string         `json:"level"`
	ReqID  string         `json:"req_id"`
	Action string         `json:"action"`
	UserID string         `json:"user_id"`
	Fields map[string]any `json:"fields"`
}

type lockedWriter struct {
	w  *bytes.Buffer
	mu *sync.Mutex
}

func (lw *lockedWriter) Write(p []byte) (int, error) {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	return lw.w.Write(p)
}

// captureLogs swaps the standard logger output while fn runs.
func captureLogs(t *testing.T, fn func()) []logEntry {
	t.Helper()
	var buf bytes.Buffer
	var mu sync.Mutex
	oldW := log.Writer()
	oldFlags := log.Flags()
	log.SetOutput(&lockedWriter{w: &buf, mu: &mu})
	log.SetFlags(0)
	defer func() {
		log.SetOutput(oldW)
		log.SetFlags(oldFlags)
	}()

	fn()

	var entries []logEntry
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var e logEntry
		if err := json.Unmarshal([]byte(strings.TrimSpace(line)), &e); err == nil {
			entries = append(entries, e)
		}
	}
	return entries
}

func findLog(entries []logEntry, action string) *logEntry {
	for i := range entries {
		if entries[i].Action == action {
			return &entries[i]
		}
	}
	return nil
}
