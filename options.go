package microsig

import (
	"log/slog"

	"github.com/AnatoleLucet/microsig/internal"
)

// Host runs the engine's flushes at the next microtask boundary.
type Host = internal.Host

// Observer is notified around every flush.
type Observer = internal.Observer

// FlushStats describes a finished flush.
type FlushStats = internal.FlushStats

// Option configures the runtime of the calling goroutine.
type Option func(*internal.Config)

// WithLogger sets the logger used for flush diagnostics and unhandled effect failures.
func WithLogger(logger *slog.Logger) Option {
	return func(c *internal.Config) {
		c.Logger = logger
	}
}

// WithErrorHandler sets the handler of effect failures that no scope handled.
func WithErrorHandler(fn func(error)) Option {
	return func(c *internal.Config) {
		c.ErrorHandler = fn
	}
}

// WithObserver adds a flush observer.
func WithObserver(o Observer) Option {
	return func(c *internal.Config) {
		switch existing := c.Observer.(type) {
		case nil:
			c.Observer = o
		case internal.MultiObserver:
			c.Observer = append(existing, o)
		default:
			c.Observer = internal.MultiObserver{existing, o}
		}
	}
}

// WithHost makes the runtime request its flushes from h instead of its own queue.
// Passing nil restores the default queue drained by Tick.
func WithHost(h Host) Option {
	return func(c *internal.Config) {
		c.Host = h
	}
}

// WithMaxMicrotasks bounds the microtasks one Tick may run.
func WithMaxMicrotasks(n int) Option {
	return func(c *internal.Config) {
		c.MaxMicrotasks = n
	}
}

// Configure applies opts to the runtime of the calling goroutine.
func Configure(opts ...Option) {
	r := internal.GetRuntime()

	cfg := r.Config()
	for _, opt := range opts {
		opt(&cfg)
	}
	r.Configure(cfg)
}
