package testdoubles

import (
	"context"
	"sync"

	"github.com/openshelf/lending-engine-go/lending"
)

// SpySpan is a SpanContext implementation that records status and attribute
// updates for inspection.
type SpySpan struct {
	Name       string
	Status     string
	Attributes map[string]string
	Finished   bool
	mu         sync.Mutex
}

// SetStatus implements the SpanContext interface for testing.
func (s *SpySpan) SetStatus(status string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Status = status
}

// AddAttribute implements the SpanContext interface for testing.
func (s *SpySpan) AddAttribute(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Attributes[key] = value
}

// TracingCollectorSpy is a TracingCollector implementation that captures
// started and finished spans for testing.
type TracingCollectorSpy struct {
	spans []*SpySpan
	mu    sync.Mutex
}

// NewTracingCollectorSpy creates a new TracingCollectorSpy instance.
func NewTracingCollectorSpy() *TracingCollectorSpy {
	return &TracingCollectorSpy{}
}

// StartSpan implements the TracingCollector interface for testing.
func (s *TracingCollectorSpy) StartSpan(ctx context.Context, name string, attrs map[string]string) (context.Context, lending.SpanContext) {
	span := &SpySpan{
		Name:       name,
		Attributes: copyLabels(attrs),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.spans = append(s.spans, span)

	return ctx, span
}

// FinishSpan implements the TracingCollector interface for testing.
func (s *TracingCollectorSpy) FinishSpan(spanCtx lending.SpanContext, status string, attrs map[string]string) {
	span, ok := spanCtx.(*SpySpan)
	if !ok {
		return
	}

	span.mu.Lock()
	defer span.mu.Unlock()

	span.Status = status
	for k, v := range attrs {
		span.Attributes[k] = v
	}
	span.Finished = true
}

// Spans returns a copy of all captured spans.
func (s *TracingCollectorSpy) Spans() []*SpySpan {
	s.mu.Lock()
	defer s.mu.Unlock()

	spans := make([]*SpySpan, len(s.spans))
	copy(spans, s.spans)

	return spans
}

// SpansWithName returns the captured spans with the given name.
func (s *TracingCollectorSpy) SpansWithName(name string) []*SpySpan {
	s.mu.Lock()
	defer s.mu.Unlock()

	var filtered []*SpySpan
	for _, span := range s.spans {
		if span.Name == name {
			filtered = append(filtered, span)
		}
	}

	return filtered
}
