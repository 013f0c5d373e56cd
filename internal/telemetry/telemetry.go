// Package telemetry installs OpenTelemetry tracing.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/budgetbolt/backend/internal/config"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// ServiceName identifies this process in traces.
const ServiceName = "budgetbolt-backend"

// Shutdown flushes and stops the tracer provider.
type Shutdown func(context.Context) error

// Setup installs a global tracer provider for mode, one of the
// config.Tracing* values. With TracingNone the global no-op provider stays.
func Setup(ctx context.Context, mode string) (Shutdown, error) {
	var (
		exporter sdktrace.SpanExporter
		err      error
	)
	switch mode {
	case config.TracingNone, "":
		return func(context.Context) error { return nil }, nil
	case config.TracingStdout:
		exporter, err = stdouttrace.New(stdouttrace.WithPrettyPrint())
	case config.TracingOTLP:
		// endpoint and headers come from OTEL_EXPORTER_OTLP_* variables
		exporter, err = otlptracehttp.New(ctx)
	default:
		return nil, fmt.Errorf("unknown tracing mode %q", mode)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create %s exporter: %w", mode, err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewSchemaless(
			attribute.String("service.name", ServiceName),
		)),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return func(ctx context.Context) error {
		return errors.Join(tp.ForceFlush(ctx), tp.Shutdown(ctx))
	}, nil
}

// Tracer returns the tracer used by application packages.
func Tracer() trace.Tracer {
	return otel.Tracer("github.com/budgetbolt/backend")
}

// Handler wraps h so every request gets a server span.
func Handler(h http.Handler) http.Handler {
	return otelhttp.NewHandler(h, "budgetbolt",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	)
}
