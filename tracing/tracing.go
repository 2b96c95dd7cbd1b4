// Package tracing records scheduler flushes as OpenTelemetry spans.
//
// The tracer uses the global OpenTelemetry tracer provider unless one is given:
//
//	microsig.Configure(microsig.WithObserver(tracing.New(
//	    tracing.WithTracerName("my-app"),
//	)))
package tracing

import (
	"context"
	"fmt"

	"github.com/AnatoleLucet/microsig"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const defaultTracerName = "microsig"

// SpanName is the name of flush spans.
const SpanName = "microsig.flush"

// Config configures the flush tracer.
type Config struct {
	// TracerName is the name of the tracer (default: "microsig").
	TracerName string

	// Provider is the tracer provider (default: the global provider).
	Provider trace.TracerProvider

	// Parent is the context flush spans are started from.
	Parent context.Context
}

// Option configures the flush tracer.
type Option func(*Config)

// WithTracerName sets the tracer name.
func WithTracerName(name string) Option {
	return func(c *Config) {
		c.TracerName = name
	}
}

// WithTracerProvider sets the tracer provider.
func WithTracerProvider(provider trace.TracerProvider) Option {
	return func(c *Config) {
		c.Provider = provider
	}
}

// WithParent makes flush spans children of the span in ctx.
func WithParent(ctx context.Context) Option {
	return func(c *Config) {
		c.Parent = ctx
	}
}

func defaultConfig() Config {
	return Config{
		TracerName: defaultTracerName,
		Parent:     context.Background(),
	}
}

// Tracer is a flush observer starting one span per flush.
type Tracer struct {
	tracer trace.Tracer
	parent context.Context
}

func New(opts ...Option) *Tracer {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}

	if config.Provider == nil {
		config.Provider = otel.GetTracerProvider()
	}

	return &Tracer{
		tracer: config.Provider.Tracer(config.TracerName),
		parent: config.Parent,
	}
}

// BeginFlush implements microsig.Observer.
func (t *Tracer) BeginFlush(pending int) func(microsig.FlushStats) {
	_, span := t.tracer.Start(
		t.parent,
		SpanName,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.Int("microsig.pending", pending)),
	)

	return func(stats microsig.FlushStats) {
		defer span.End()

		span.SetAttributes(
			attribute.Int("microsig.ran", stats.Ran),
			attribute.Int("microsig.errors", len(stats.Errors)),
			attribute.Int64("microsig.duration_us", stats.Duration.Microseconds()),
		)

		for _, err := range stats.Errors {
			span.RecordError(err)
		}

		if n := len(stats.Errors); n > 0 {
			span.SetStatus(codes.Error, fmt.Sprintf("%d effects failed", n))
		} else {
			span.SetStatus(codes.Ok, "")
		}
	}
}
