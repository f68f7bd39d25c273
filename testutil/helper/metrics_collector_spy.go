package helper

import (
	"context"
	"maps"
	"sync"
	"time"
)

// MetricsCollectorSpy is an engine.ContextualMetricsCollector that captures all calls.
type MetricsCollectorSpy struct {
	mu              sync.Mutex
	durationRecords []SpyMetricRecord
	counterRecords  []SpyMetricRecord
	valueRecords    []SpyMetricRecord
}

// SpyMetricRecord is one captured metrics call. Duration is set for durations, Value for values.
type SpyMetricRecord struct {
	Metric   string
	Duration time.Duration
	Value    float64
	Labels   map[string]string
	HasCtx   bool
}

func NewMetricsCollectorSpy() *MetricsCollectorSpy {
	return &MetricsCollectorSpy{}
}

func (s *MetricsCollectorSpy) RecordDuration(metric string, duration time.Duration, labels map[string]string) {
	s.add(&s.durationRecords, SpyMetricRecord{Metric: metric, Duration: duration, Labels: maps.Clone(labels)})
}

func (s *MetricsCollectorSpy) IncrementCounter(metric string, labels map[string]string) {
	s.add(&s.counterRecords, SpyMetricRecord{Metric: metric, Labels: maps.Clone(labels)})
}

func (s *MetricsCollectorSpy) RecordValue(metric string, value float64, labels map[string]string) {
	s.add(&s.valueRecords, SpyMetricRecord{Metric: metric, Value: value, Labels: maps.Clone(labels)})
}

func (s *MetricsCollectorSpy) RecordDurationContext(
	_ context.Context,
	metric string,
	duration time.Duration,
	labels map[string]string,
) {

	s.add(&s.durationRecords, SpyMetricRecord{Metric: metric, Duration: duration, Labels: maps.Clone(labels), HasCtx: true})
}

func (s *MetricsCollectorSpy) IncrementCounterContext(_ context.Context, metric string, labels map[string]string) {
	s.add(&s.counterRecords, SpyMetricRecord{Metric: metric, Labels: maps.Clone(labels), HasCtx: true})
}

func (s *MetricsCollectorSpy) RecordValueContext(_ context.Context, metric string, value float64, labels map[string]string) {
	s.add(&s.valueRecords, SpyMetricRecord{Metric: metric, Value: value, Labels: maps.Clone(labels), HasCtx: true})
}

func (s *MetricsCollectorSpy) add(records *[]SpyMetricRecord, record SpyMetricRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	*records = append(*records, record)
}

func (s *MetricsCollectorSpy) DurationRecords() []SpyMetricRecord {
	return s.snapshot(&s.durationRecords)
}
func (s *MetricsCollectorSpy) CounterRecords() []SpyMetricRecord {
	return s.snapshot(&s.counterRecords)
}
func (s *MetricsCollectorSpy) ValueRecords() []SpyMetricRecord { return s.snapshot(&s.valueRecords) }

func (s *MetricsCollectorSpy) snapshot(records *[]SpyMetricRecord) []SpyMetricRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]SpyMetricRecord, len(*records))
	copy(out, *records)

	return out
}

// MetricRecordMatcher provides a fluent interface for checking metric records.
type MetricRecordMatcher struct {
	candidates []SpyMetricRecord
}

// HasDurationRecordForMetric starts a fluent chain to check a duration record.
func (s *MetricsCollectorSpy) HasDurationRecordForMetric(metric string) *MetricRecordMatcher {
	return newMatcher(s.DurationRecords(), metric)
}

// HasCounterRecordForMetric starts a fluent chain to check a counter record.
func (s *MetricsCollectorSpy) HasCounterRecordForMetric(metric string) *MetricRecordMatcher {
	return newMatcher(s.CounterRecords(), metric)
}

// HasValueRecordForMetric starts a fluent chain to check a value record.
func (s *MetricsCollectorSpy) HasValueRecordForMetric(metric string) *MetricRecordMatcher {
	return newMatcher(s.ValueRecords(), metric)
}

func newMatcher(records []SpyMetricRecord, metric string) *MetricRecordMatcher {
	m := &MetricRecordMatcher{}
	for _, r := range records {
		if r.Metric == metric {
			m.candidates = append(m.candidates, r)
		}
	}

	return m
}

// WithOperation keeps only records with the given operation label.
func (m *MetricRecordMatcher) WithOperation(operation string) *MetricRecordMatcher {
	return m.WithLabel("operation", operation)
}

// WithStatus keeps only records with the given status label.
func (m *MetricRecordMatcher) WithStatus(status string) *MetricRecordMatcher {
	return m.WithLabel("status", status)
}

// WithLabel keeps only records carrying the label with the given value.
func (m *MetricRecordMatcher) WithLabel(key, value string) *MetricRecordMatcher {
	kept := m.candidates[:0:0]
	for _, r := range m.candidates {
		if r.Labels[key] == value {
			kept = append(kept, r)
		}
	}

	m.candidates = kept

	return m
}

// Assert reports whether at least one record met all conditions of the chain.
func (m *MetricRecordMatcher) Assert() bool {
	return len(m.candidates) > 0
}

// Count returns how many records met all conditions of the chain.
func (m *MetricRecordMatcher) Count() int {
	return len(m.candidates)
}
