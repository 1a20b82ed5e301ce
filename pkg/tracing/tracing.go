// Package tracing records OpenTelemetry spans for notification passes and
// observation sessions.
package tracing

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/cellstore/pkg/reactive"
)

// Default tracer name.
const defaultTracerName = "cellstore"

// Config configures the tracer.
type Config struct {
	// TracerName is the name of the tracer (default: "cellstore").
	TracerName string

	// Provider supplies the tracer. If nil, the global provider is used.
	Provider trace.TracerProvider

	// Filter determines which cells' writes are traced.
	// If nil, all writes are traced.
	Filter func(cell string) bool

	// TraceSessions records one span per observation session.
	// Enabled by default.
	TraceSessions bool
}

// Option configures the tracer.
type Option func(*Config)

// WithTracerName sets the tracer name.
func WithTracerName(name string) Option {
	return func(c *Config) {
		c.TracerName = name
	}
}

// WithTracerProvider sets the tracer provider.
func WithTracerProvider(p trace.TracerProvider) Option {
	return func(c *Config) {
		c.Provider = p
	}
}

// WithCellFilter sets a filter for traced cells.
func WithCellFilter(filter func(cell string) bool) Option {
	return func(c *Config) {
		c.Filter = filter
	}
}

// WithSessions enables or disables per-session spans.
func WithSessions(enabled bool) Option {
	return func(c *Config) {
		c.TraceSessions = enabled
	}
}

func defaultConfig() Config {
	return Config{
		TracerName:    defaultTracerName,
		TraceSessions: true,
	}
}

// Tracer implements reactive.Instrumentation with OpenTelemetry spans.
type Tracer struct {
	config Config
	tracer trace.Tracer

	mu       sync.Mutex
	sessions map[string]trace.Span
}

var _ reactive.Instrumentation = (*Tracer)(nil)

// New creates a Tracer.
//
// Spans recorded:
//   - "cellstore.notify <cell>" for every write, covering both fan-outs
//   - "cellstore.session" from Observe to Dispose
//   - "cellstore.poison <cell>" with error status when a cell is poisoned
//
// Configure the global provider in main() before creating the tracer, or
// pass WithTracerProvider.
func New(opts ...Option) *Tracer {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}

	provider := config.Provider
	if provider == nil {
		provider = otel.GetTracerProvider()
	}

	return &Tracer{
		config:   config,
		tracer:   provider.Tracer(config.TracerName),
		sessions: make(map[string]trace.Span),
	}
}

func (t *Tracer) traced(cell string) bool {
	return t.config.Filter == nil || t.config.Filter(cell)
}

// CellCreated implements reactive.Instrumentation.
func (t *Tracer) CellCreated(string) {}

// Notified implements reactive.Instrumentation.
func (t *Tracer) Notified(stats reactive.NotifyStats) {
	if !t.traced(stats.Cell) {
		return
	}
	_, span := t.tracer.Start(
		context.Background(),
		fmt.Sprintf("cellstore.notify %s", stats.Cell),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithTimestamp(stats.Start),
		trace.WithAttributes(
			attribute.String("cellstore.cell", stats.Cell),
			attribute.Int("cellstore.explicit", stats.Explicit),
			attribute.Int("cellstore.implicit", stats.Implicit),
			attribute.Int("cellstore.pruned", stats.Pruned),
		),
	)
	span.SetStatus(codes.Ok, "")
	span.End(trace.WithTimestamp(stats.Start.Add(stats.Duration)))
}

// ObserverInstalled implements reactive.Instrumentation.
func (t *Tracer) ObserverInstalled(id string) {
	if !t.config.TraceSessions {
		return
	}
	_, span := t.tracer.Start(
		context.Background(),
		"cellstore.session",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithTimestamp(time.Now()),
		trace.WithAttributes(attribute.String("cellstore.session_id", id)),
	)
	t.mu.Lock()
	t.sessions[id] = span
	t.mu.Unlock()
}

// ObserverDisposed implements reactive.Instrumentation.
func (t *Tracer) ObserverDisposed(id string, invalidations uint64) {
	t.mu.Lock()
	span, ok := t.sessions[id]
	delete(t.sessions, id)
	t.mu.Unlock()
	if !ok {
		return
	}
	span.SetAttributes(attribute.Int64("cellstore.invalidations", int64(invalidations)))
	span.End()
}

// Poisoned implements reactive.Instrumentation.
func (t *Tracer) Poisoned(cell string, cause any) {
	_, span := t.tracer.Start(
		context.Background(),
		fmt.Sprintf("cellstore.poison %s", cell),
		trace.WithAttributes(attribute.String("cellstore.cell", cell)),
	)
	err := fmt.Errorf("%w: %v", reactive.ErrPoisoned, cause)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	span.End()
}

// OpenSessions returns the number of sessions with an open span.
func (t *Tracer) OpenSessions() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.sessions)
}
