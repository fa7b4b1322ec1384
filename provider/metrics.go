package provider

import (
	"context"
	"time"

	"github.com/kbukum/llmkit/observability"
)

// WithMetrics returns a Middleware that records call counts, durations and
// error kinds on the given instruments.
func WithMetrics[I, O any](metrics *observability.Metrics) Middleware[I, O] {
	return func(inner RequestResponse[I, O]) RequestResponse[I, O] {
		return &metricsRR[I, O]{inner: inner, metrics: metrics}
	}
}

type metricsRR[I, O any] struct {
	inner   RequestResponse[I, O]
	metrics *observability.Metrics
}

func (m *metricsRR[I, O]) Name() string                         { return m.inner.Name() }
func (m *metricsRR[I, O]) IsAvailable(ctx context.Context) bool { return m.inner.IsAvailable(ctx) }

func (m *metricsRR[I, O]) Execute(ctx context.Context, input I) (O, error) {
	name := m.inner.Name()
	m.metrics.RecordStart(ctx, name)
	start := time.Now()
	output, err := m.inner.Execute(ctx, input)

	status := "ok"
	if err != nil {
		status = "error"
		m.metrics.RecordError(ctx, name, ErrorKind(err))
	}
	m.metrics.RecordEnd(ctx, name, status, time.Since(start))
	return output, err
}
