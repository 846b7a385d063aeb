// internal/telemetry/tracer.go
//
// OpenTelemetry tracer provider.
//
// Context
// -------
// Views open spans through the global otel tracer (see
// internal/resource/handler.go) and the HTTP stack is wrapped with otelhttp.
// Until Init runs the global provider is otel's no-op, so spans cost nothing
// in tests and when telemetry is disabled.
//
// Notes
// -----
// • The exporter is stdouttrace.  Point Writer at a file or io.Discard to
//   keep traces off the console.
// • Callers must invoke the returned shutdown func on exit to flush the
//   batcher.
package telemetry

import (
	"context"
	"io"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.uber.org/zap"
)

// Options configures Init.
type Options struct {
	ServiceName string
	Writer      io.Writer // nil means stdout
	PrettyPrint bool
}

// Shutdown flushes and stops the provider.
type Shutdown func(context.Context) error

// Init installs a global tracer provider and W3C trace-context propagation.
func Init(opts Options) (Shutdown, error) {
	w := opts.Writer
	if w == nil {
		w = os.Stdout
	}
	exOpts := []stdouttrace.Option{stdouttrace.WithWriter(w)}
	if opts.PrettyPrint {
		exOpts = append(exOpts, stdouttrace.WithPrettyPrint())
	}
	exporter, err := stdouttrace.New(exOpts...)
	if err != nil {
		return nil, err
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes("", semconv.ServiceName(opts.ServiceName)),
	)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, propagation.Baggage{},
	))

	zap.L().Info("telemetry online", zap.String("service", opts.ServiceName))
	return tp.Shutdown, nil
}

// Noop is the Shutdown returned when telemetry is disabled.
func Noop(context.Context) error { return nil }
