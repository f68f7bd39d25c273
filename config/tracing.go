package config

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.34.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// ShutdownFunc flushes pending spans and stops the tracer provider.
type ShutdownFunc func(ctx context.Context) error

// SetupTracing creates a tracer provider exporting via OTLP/HTTP and registers it globally.
// Without an endpoint it returns a noop provider and registers nothing.
func SetupTracing(ctx context.Context, c TracingConfig) (trace.TracerProvider, ShutdownFunc, error) {
	noopShutdown := func(context.Context) error { return nil }

	if c.OTLPEndpoint == "" {
		return noop.NewTracerProvider(), noopShutdown, nil
	}

	exporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(c.OTLPEndpoint))
	if err != nil {
		return nil, noopShutdown, err
	}

	res, err := resource.New(ctx, resource.WithAttributes(semconv.ServiceName(c.ServiceName)))
	if err != nil {
		return nil, noopShutdown, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	return tp, tp.Shutdown, nil
}
