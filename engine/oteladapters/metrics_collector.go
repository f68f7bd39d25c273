package oteladapters

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/AntonStoeckl/process-engine-kernel/engine"
)

// MetricsCollector implements engine.ContextualMetricsCollector with the OpenTelemetry metrics API.
//
// Instruments are created lazily per metric name:
//   - RecordDuration -> Float64Histogram in seconds
//   - IncrementCounter -> Int64Counter
//   - RecordValue -> Float64Gauge
//
// Instrument creation errors go to the global OpenTelemetry error handler and the measurement is dropped.
type MetricsCollector struct {
	meter metric.Meter

	mu         sync.RWMutex
	histograms map[string]metric.Float64Histogram
	counters   map[string]metric.Int64Counter
	gauges     map[string]metric.Float64Gauge
}

// NewMetricsCollector creates a collector using meter, usually obtained from a MeterProvider.
func NewMetricsCollector(meter metric.Meter) *MetricsCollector {
	return &MetricsCollector{
		meter:      meter,
		histograms: make(map[string]metric.Float64Histogram),
		counters:   make(map[string]metric.Int64Counter),
		gauges:     make(map[string]metric.Float64Gauge),
	}
}

func (m *MetricsCollector) RecordDuration(metricName string, duration time.Duration, labels map[string]string) {
	m.RecordDurationContext(context.Background(), metricName, duration, labels)
}

func (m *MetricsCollector) RecordDurationContext(
	ctx context.Context,
	metricName string,
	duration time.Duration,
	labels map[string]string,
) {

	histogram, ok := instrument(m, m.histograms, metricName, func() (metric.Float64Histogram, error) {
		return m.meter.Float64Histogram(
			metricName,
			metric.WithDescription("Process engine operation duration"),
			metric.WithUnit("s"),
		)
	})
	if !ok {
		return
	}

	histogram.Record(ctx, duration.Seconds(), metric.WithAttributes(toAttributes(labels)...))
}

func (m *MetricsCollector) IncrementCounter(metricName string, labels map[string]string) {
	m.IncrementCounterContext(context.Background(), metricName, labels)
}

func (m *MetricsCollector) IncrementCounterContext(ctx context.Context, metricName string, labels map[string]string) {
	counter, ok := instrument(m, m.counters, metricName, func() (metric.Int64Counter, error) {
		return m.meter.Int64Counter(metricName, metric.WithDescription("Process engine operation counter"))
	})
	if !ok {
		return
	}

	counter.Add(ctx, 1, metric.WithAttributes(toAttributes(labels)...))
}

func (m *MetricsCollector) RecordValue(metricName string, value float64, labels map[string]string) {
	m.RecordValueContext(context.Background(), metricName, value, labels)
}

func (m *MetricsCollector) RecordValueContext(
	ctx context.Context,
	metricName string,
	value float64,
	labels map[string]string,
) {

	gauge, ok := instrument(m, m.gauges, metricName, func() (metric.Float64Gauge, error) {
		return m.meter.Float64Gauge(metricName, metric.WithDescription("Process engine current value"))
	})
	if !ok {
		return
	}

	gauge.Record(ctx, value, metric.WithAttributes(toAttributes(labels)...))
}

// instrument returns the cached instrument for name or creates it.
func instrument[T any](m *MetricsCollector, cache map[string]T, name string, create func() (T, error)) (T, bool) {
	m.mu.RLock()
	cached, exists := cache[name]
	m.mu.RUnlock()

	if exists {
		return cached, true
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if cached, exists = cache[name]; exists {
		return cached, true
	}

	created, err := create()
	if err != nil {
		otel.Handle(err)

		var zero T
		return zero, false
	}

	cache[name] = created

	return created, true
}

func toAttributes(labels map[string]string) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, len(labels))
	for key, value := range labels {
		attrs = append(attrs, attribute.String(key, value))
	}

	return attrs
}

var _ engine.ContextualMetricsCollector = (*MetricsCollector)(nil)
