package tracing

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	tracesdk "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

type Config struct {
	Enabled     bool
	Endpoint    string // Jaeger collector, e.g. http://localhost:14268/api/traces
	ServiceName string
	Environment string
}

type Tracer struct {
	tracer trace.Tracer
}

var globalTracer *Tracer

// Init installs the global tracer. Disabled tracing yields a no-op tracer so
// call sites never branch.
func Init(cfg Config) (*Tracer, error) {
	if !cfg.Enabled {
		globalTracer = &Tracer{tracer: noop.NewTracerProvider().Tracer("noop")}
		return globalTracer, nil
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = "earnhub"
	}

	exp, err := jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(cfg.Endpoint)))
	if err != nil {
		return nil, fmt.Errorf("create jaeger exporter: %w", err)
	}
	res := resource.NewSchemaless(
		attribute.String("service.name", cfg.ServiceName),
		attribute.String("deployment.environment", cfg.Environment),
	)
	tp := tracesdk.NewTracerProvider(
		tracesdk.WithBatcher(exp),
		tracesdk.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	globalTracer = &Tracer{tracer: otel.Tracer(cfg.ServiceName)}
	return globalTracer, nil
}

func (t *Tracer) StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, name, opts...)
}

// Get returns the installed tracer, or a no-op one before Init.
func Get() *Tracer {
	if globalTracer == nil {
		return &Tracer{tracer: noop.NewTracerProvider().Tracer("noop")}
	}
	return globalTracer
}

func Shutdown(ctx context.Context) error {
	if tp, ok := otel.GetTracerProvider().(*tracesdk.TracerProvider); ok {
		return tp.Shutdown(ctx)
	}
	return nil
}

// Middleware opens a server span per request and hands its context to
// handlers through c.UserContext().
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := otel.GetTextMapPropagator().Extract(c.UserContext(), propagation.HeaderCarrier(http.Header(c.GetReqHeaders())))
		ctx, span := Get().StartSpan(ctx, c.Method()+" "+c.Path(), trace.WithSpanKind(trace.SpanKindServer))
		defer span.End()
		c.SetUserContext(ctx)

		err := c.Next()
		span.SetAttributes(
			attribute.String("http.method", c.Method()),
			attribute.String("http.path", c.Path()),
			attribute.Int("http.status_code", c.Response().StatusCode()),
		)
		if err != nil {
			span.RecordError(err)
		}
		return err
	}
}
