package log

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"earnhub/internal/domain"

	"github.com/gofiber/fiber/v2"
	"go.opentelemetry.io/otel/trace"
)

type entry struct {
	TS      string         `json:"ts"`
	Level   string         `json:"level"`
	ReqID   string         `json:"req_id,omitempty"`
	TraceID string         `json:"trace_id,omitempty"`
	IP      string         `json:"ip,omitempty"`
	Method  string         `json:"method,omitempty"`
	Path    string         `json:"path,omitempty"`
	UserID  string         `json:"user_id,omitempty"`
	Role    string         `json:"role,omitempty"`
	Action  string         `json:"action,omitempty"`
	Status  int            `json:"status,omitempty"`
	Err     string         `json:"err,omitempty"`
	Fields  map[string]any `json:"fields,omitempty"`
}

// write emits one JSON line. c may be nil for events outside a request.
func write(level string, c *fiber.Ctx, action string, err error, fields map[string]any) {
	e := entry{TS: time.Now().UTC().Format(time.RFC3339), Level: level, Action: action, Fields: fields}
	if c != nil {
		e.IP = c.IP()
		e.Method = c.Method()
		e.Path = c.Path()
		e.Status = c.Response().StatusCode()
		if rid, ok := c.Locals("requestid").(string); ok && rid != "" {
			e.ReqID = rid
		}
		if u, ok := c.Locals("user").(*domain.User); ok && u != nil {
			e.UserID = u.ID
			e.Role = u.Role
		}
		if sc := trace.SpanContextFromContext(c.UserContext()); sc.HasTraceID() {
			e.TraceID = sc.TraceID().String()
		}
	}
	emit(e, err)
}

func emit(e entry, err error) {
	if err != nil {
		e.Err = err.Error()
	}
	b, _ := json.Marshal(e)
	log.Println(string(b))
}

type ctxKey struct{}

// request is the slice of a request's identity that code below the handlers
// can still log with.
type request struct {
	ReqID, IP, Method, Path, UserID, Role string
}

// Middleware copies the request id, client and user into c.UserContext()
// for ErrorCtx. Mount it after the user is attached.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		r := request{IP: c.IP(), Method: c.Method(), Path: c.Path()}
		if rid, ok := c.Locals("requestid").(string); ok {
			r.ReqID = rid
		}
		if u, ok := c.Locals("user").(*domain.User); ok && u != nil {
			r.UserID = u.ID
			r.Role = u.Role
		}
		c.SetUserContext(context.WithValue(c.UserContext(), ctxKey{}, r))
		return c.Next()
	}
}

// ErrorCtx logs an error from code that only has the request context.
func ErrorCtx(ctx context.Context, action string, err error, fields map[string]any) {
	e := entry{TS: time.Now().UTC().Format(time.RFC3339), Level: "error", Action: action, Fields: fields}
	if ctx != nil {
		if r, ok := ctx.Value(ctxKey{}).(request); ok {
			e.ReqID, e.IP, e.Method, e.Path = r.ReqID, r.IP, r.Method, r.Path
			e.UserID, e.Role = r.UserID, r.Role
		}
		if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
			e.TraceID = sc.TraceID().String()
		}
	}
	emit(e, err)
}

func Info(c *fiber.Ctx, action string, fields map[string]any) { write("info", c, action, nil, fields) }
func Audit(c *fiber.Ctx, action string, fields map[string]any) {
	write("audit", c, action, nil, fields)
}
func Security(c *fiber.Ctx, action string, fields map[string]any) {
	write("warn", c, action, nil, fields)
}
func Error(c *fiber.Ctx, action string, err error, fields map[string]any) {
	write("error", c, action, err, fields)
}
