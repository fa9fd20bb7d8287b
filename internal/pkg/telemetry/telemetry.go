package telemetry

import (
	"context"
	"fmt"
	"strings"

	"libris/internal/config"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Provider owns the tracer provider for the process lifetime
type Provider struct {
	tp       trace.TracerProvider
	shutdown func(context.Context) error
}

// Init sets up OTLP/HTTP trace export. Without an endpoint it returns a
// no-op provider so spans cost nothing.
func Init(ctx context.Context, cfg config.TelemetryConfig) (*Provider, error) {
	if cfg.OTLPEndpoint == "" {
		return NewNoop(), nil
	}

	opts := []otlptracehttp.Option{}
	if strings.Contains(cfg.OTLPEndpoint, "://") {
		opts = append(opts, otlptracehttp.WithEndpointURL(cfg.OTLPEndpoint))
	} else {
		opts = append(opts, otlptracehttp.WithEndpoint(cfg.OTLPEndpoint))
	}
	if cfg.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}

	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create otlp exporter: %w", err)
	}

	res, err := resource.Merge(resource.Default(), resource.NewSchemaless(
		attribute.String("service.name", cfg.ServiceName),
	))
	if err != nil {
		return nil, fmt.Errorf("build resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	return &Provider{tp: tp, shutdown: tp.Shutdown}, nil
}

// NewNoop returns a provider whose spans are discarded
func NewNoop() *Provider {
	return &Provider{
		tp:       noop.NewTracerProvider(),
		shutdown: func(context.Context) error { return nil },
	}
}

// FromTracerProvider wraps an existing provider, used by tests
func FromTracerProvider(tp trace.TracerProvider) *Provider {
	return &Provider{tp: tp, shutdown: func(context.Context) error { return nil }}
}

// Tracer returns a named tracer
func (p *Provider) Tracer(name string) trace.Tracer {
	return p.tp.Tracer(name)
}

// Shutdown flushes pending spans
func (p *Provider) Shutdown(ctx context.Context) error {
	return p.shutdown(ctx)
}
