package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/llmkit/logger"
)

// InitMeter installs a global meter provider exporting over OTLP/HTTP.
// The caller must shut the provider down on exit.
func InitMeter(ctx context.Context, cfg Config) (*sdkmetric.MeterProvider, error) {
	cfg.ApplyDefaults()
	opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}
	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(cfg.MetricInterval))),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(mp)

	logger.Get("observability").Info("meter initialized", logger.Fields(
		"endpoint", cfg.Endpoint,
		"interval", cfg.MetricInterval.String(),
	))
	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Metrics holds the instruments recorded around each generate call.
type Metrics struct {
	generateTotal    metric.Int64Counter
	generateDuration metric.Float64Histogram
	generateActive   metric.Int64UpDownCounter
	errorTotal       metric.Int64Counter
}

// NewMetrics creates metric instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	generateTotal, err := meter.Int64Counter("llm.generate.total",
		metric.WithDescription("Total number of generate calls"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating llm.generate.total counter: %w", err)
	}

	generateDuration, err := meter.Float64Histogram("llm.generate.duration",
		metric.WithDescription("Duration of generate calls in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating llm.generate.duration histogram: %w", err)
	}

	generateActive, err := meter.Int64UpDownCounter("llm.generate.active",
		metric.WithDescription("Number of in-flight generate calls"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating llm.generate.active counter: %w", err)
	}

	errorTotal, err := meter.Int64Counter("llm.error.total",
		metric.WithDescription("Failed generate calls by error kind"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating llm.error.total counter: %w", err)
	}

	return &Metrics{
		generateTotal:    generateTotal,
		generateDuration: generateDuration,
		generateActive:   generateActive,
		errorTotal:       errorTotal,
	}, nil
}

// RecordStart increments the in-flight count.
func (m *Metrics) RecordStart(ctx context.Context, provider string) {
	m.generateActive.Add(ctx, 1, metric.WithAttributes(attribute.String("provider", provider)))
}

// RecordEnd decrements the in-flight count and records the finished call.
func (m *Metrics) RecordEnd(ctx context.Context, provider, status string, duration time.Duration) {
	m.generateActive.Add(ctx, -1, metric.WithAttributes(attribute.String("provider", provider)))
	m.generateTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("provider", provider),
		attribute.String("status", status),
	))
	m.generateDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("provider", provider),
	))
}

// RecordError counts a failure of the given kind.
func (m *Metrics) RecordError(ctx context.Context, provider, kind string) {
	m.errorTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("provider", provider),
		attribute.String("kind", kind),
	))
}
