// Package metrics exports flush statistics of a reactive runtime to Prometheus.
//
//	c := metrics.New(metrics.WithRegistry(reg))
//	microsig.Configure(microsig.WithObserver(c))
//
// Metrics collected:
//   - microsig_flushes_total: Counter of scheduler flushes
//   - microsig_effect_runs_total: Counter of effect re-runs
//   - microsig_effects_skipped_total: Counter of effects stopped while pending
//   - microsig_effect_errors_total: Counter of failed effect re-runs by error type
//   - microsig_flush_duration_seconds: Histogram of flush duration
//   - microsig_flush_batch_size: Histogram of pending effects per flush
//   - microsig_flushes_in_progress: Gauge of running flushes
package metrics

import (
	"errors"

	"github.com/AnatoleLucet/microsig"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Config configures the Prometheus collector.
type Config struct {
	// Namespace is the metrics namespace (default: "microsig").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for flush duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// Option configures the Prometheus collector.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) Option {
	return func(c *Config) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the flush duration histogram buckets.
func WithBuckets(buckets []float64) Option {
	return func(c *Config) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

func defaultConfig() Config {
	return Config{
		Namespace: "microsig",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Collector is a flush observer recording Prometheus metrics.
// Safe to share between the runtimes of several goroutines.
type Collector struct {
	flushesTotal     prometheus.Counter
	effectRuns       prometheus.Counter
	effectsSkipped   prometheus.Counter
	effectErrors     *prometheus.CounterVec
	flushDuration    prometheus.Histogram
	flushBatchSize   prometheus.Histogram
	flushesInProcess prometheus.Gauge
}

// New creates a collector and registers its metrics.
// It panics if the metrics are already registered, like promauto does.
func New(opts ...Option) *Collector {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}

	factory := promauto.With(config.Registry)

	return &Collector{
		flushesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "flushes_total",
			Help:        "Total number of scheduler flushes",
			ConstLabels: config.ConstLabels,
		}),

		effectRuns: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "effect_runs_total",
			Help:        "Total number of scheduled effect runs",
			ConstLabels: config.ConstLabels,
		}),

		effectsSkipped: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "effects_skipped_total",
			Help:        "Total number of pending effects stopped before their flush",
			ConstLabels: config.ConstLabels,
		}),

		effectErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "effect_errors_total",
			Help:        "Total number of failed effect runs",
			ConstLabels: config.ConstLabels,
		}, []string{"error_type"}),

		flushDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "flush_duration_seconds",
			Help:        "Flush duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		flushBatchSize: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "flush_batch_size",
			Help:        "Number of pending effects per flush",
			ConstLabels: config.ConstLabels,
			Buckets:     prometheus.ExponentialBuckets(1, 2, 10), // 1 to 512
		}),

		flushesInProcess: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "flushes_in_progress",
			Help:        "Number of flushes currently running",
			ConstLabels: config.ConstLabels,
		}),
	}
}

// BeginFlush implements microsig.Observer.
func (c *Collector) BeginFlush(pending int) func(microsig.FlushStats) {
	c.flushesInProcess.Inc()
	c.flushBatchSize.Observe(float64(pending))

	return func(stats microsig.FlushStats) {
		c.flushesInProcess.Dec()
		c.flushesTotal.Inc()
		c.flushDuration.Observe(stats.Duration.Seconds())

		c.effectRuns.Add(float64(stats.Ran))
		c.effectsSkipped.Add(float64(stats.Pending - stats.Ran))

		for _, err := range stats.Errors {
			c.effectErrors.WithLabelValues(errorType(err)).Inc()
		}
	}
}

// errorType classifies a failure: "error" for effects panicking with an error
// value, "panic" for any other panic value.
func errorType(err error) string {
	var evalErr *microsig.EvaluatorError
	if errors.As(err, &evalErr) {
		if _, ok := evalErr.Value.(error); !ok {
			return "panic"
		}
	}
	return "error"
}
