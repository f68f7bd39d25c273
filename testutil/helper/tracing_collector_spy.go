package helper

import (
	"context"
	"maps"
	"sync"

	"github.com/AntonStoeckl/process-engine-kernel/engine"
)

// SpySpanContext is the engine.SpanContext handed out by TracingCollectorSpy.
type SpySpanContext struct {
	mu         sync.Mutex
	status     string
	attributes map[string]string
}

func (c *SpySpanContext) SetStatus(status string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.status = status
}

func (c *SpySpanContext) AddAttribute(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.attributes[key] = value
}

// SpySpanRecord is one captured span.
type SpySpanRecord struct {
	Name            string
	StartAttributes map[string]string
	EndAttributes   map[string]string
	Status          string
	Finished        bool
}

// TracingCollectorSpy is an engine.TracingCollector that captures spans.
type TracingCollectorSpy struct {
	mu      sync.Mutex
	records []*SpySpanRecord
	spans   map[*SpySpanContext]*SpySpanRecord
}

func NewTracingCollectorSpy() *TracingCollectorSpy {
	return &TracingCollectorSpy{spans: make(map[*SpySpanContext]*SpySpanRecord)}
}

func (s *TracingCollectorSpy) StartSpan(
	ctx context.Context,
	name string,
	attrs map[string]string,
) (context.Context, engine.SpanContext) {

	s.mu.Lock()
	defer s.mu.Unlock()

	spanCtx := &SpySpanContext{attributes: make(map[string]string)}
	record := &SpySpanRecord{Name: name, StartAttributes: maps.Clone(attrs)}
	s.records = append(s.records, record)
	s.spans[spanCtx] = record

	return ctx, spanCtx
}

func (s *TracingCollectorSpy) FinishSpan(spanCtx engine.SpanContext, status string, attrs map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	spyCtx, ok := spanCtx.(*SpySpanContext)
	if !ok {
		return
	}

	record, ok := s.spans[spyCtx]
	if !ok {
		return
	}

	spyCtx.mu.Lock()
	endAttrs := maps.Clone(spyCtx.attributes)
	spyCtx.mu.Unlock()
	maps.Copy(endAttrs, attrs)

	record.Status = status
	record.EndAttributes = endAttrs
	record.Finished = true
}

// SpanRecords returns copies of the captured spans in start order.
func (s *TracingCollectorSpy) SpanRecords() []SpySpanRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]SpySpanRecord, 0, len(s.records))
	for _, r := range s.records {
		out = append(out, *r)
	}

	return out
}

// HasSpanWithStatus reports whether a finished span with the name and status exists.
func (s *TracingCollectorSpy) HasSpanWithStatus(name, status string) bool {
	for _, r := range s.SpanRecords() {
		if r.Name == name && r.Finished && r.Status == status {
			return true
		}
	}

	return false
}
