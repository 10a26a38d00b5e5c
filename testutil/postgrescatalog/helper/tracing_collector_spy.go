package helper

import (
	"context"
	"sync"

	"github.com/sharedshelf/catalog-store-go/catalog"
)

// TracingCollectorSpy captures span lifecycle calls for assertions.
type TracingCollectorSpy struct {
	startedSpans  []SpyStartedSpan
	finishedSpans []SpyFinishedSpan
	mu            sync.Mutex
}

// SpyStartedSpan is one captured StartSpan call.
type SpyStartedSpan struct {
	Name  string
	Attrs map[string]string
}

// SpyFinishedSpan is one captured FinishSpan call.
type SpyFinishedSpan struct {
	Name   string
	Status string
	Attrs  map[string]string
}

// spySpanContext is the SpanContext handed out by the spy.
type spySpanContext struct {
	name       string
	attributes map[string]string
	mu         sync.Mutex
}

// SetStatus records the status on the span context.
func (s *spySpanContext) SetStatus(status string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attributes["status"] = status
}

// AddAttribute records an attribute on the span context.
func (s *spySpanContext) AddAttribute(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attributes[key] = value
}

// NewTracingCollectorSpy creates a new TracingCollectorSpy.
func NewTracingCollectorSpy() *TracingCollectorSpy {
	return &TracingCollectorSpy{
		startedSpans:  make([]SpyStartedSpan, 0),
		finishedSpans: make([]SpyFinishedSpan, 0),
	}
}

// StartSpan captures the span start and returns a spy span context.
func (s *TracingCollectorSpy) StartSpan(ctx context.Context, name string, attrs map[string]string) (context.Context, catalog.SpanContext) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.startedSpans = append(s.startedSpans, SpyStartedSpan{
		Name:  name,
		Attrs: copyLabels(attrs),
	})

	return ctx, &spySpanContext{name: name, attributes: make(map[string]string)}
}

// FinishSpan captures the span finish together with its status.
func (s *TracingCollectorSpy) FinishSpan(spanCtx catalog.SpanContext, status string, attrs map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := ""
	if spy, ok := spanCtx.(*spySpanContext); ok {
		name = spy.name
	}

	s.finishedSpans = append(s.finishedSpans, SpyFinishedSpan{
		Name:   name,
		Status: status,
		Attrs:  copyLabels(attrs),
	})
}

// StartedSpans returns a copy of the captured span starts.
func (s *TracingCollectorSpy) StartedSpans() []SpyStartedSpan {
	s.mu.Lock()
	defer s.mu.Unlock()

	spans := make([]SpyStartedSpan, len(s.startedSpans))
	copy(spans, s.startedSpans)

	return spans
}

// FinishedSpans returns a copy of the captured span finishes.
func (s *TracingCollectorSpy) FinishedSpans() []SpyFinishedSpan {
	s.mu.Lock()
	defer s.mu.Unlock()

	spans := make([]SpyFinishedSpan, len(s.finishedSpans))
	copy(spans, s.finishedSpans)

	return spans
}

// HasFinishedSpan reports whether a span with the given name and status finished.
func (s *TracingCollectorSpy) HasFinishedSpan(name string, status string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, span := range s.finishedSpans {
		if span.Name == name && span.Status == status {
			return true
		}
	}

	return false
}

// Reset clears all captured spans.
func (s *TracingCollectorSpy) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.startedSpans = s.startedSpans[:0]
	s.finishedSpans = s.finishedSpans[:0]
}
