package internal

import (
	"log/slog"
	"time"
)

// DefaultMaxMicrotasks bounds the microtasks a single Tick may run.
const DefaultMaxMicrotasks = 10000

// Config holds the tunable parts of a runtime.
type Config struct {
	Logger *slog.Logger

	// ErrorHandler receives effect failures not handled by a scope.
	// nil logs them with Logger.
	ErrorHandler func(error)

	// Observer is notified around every flush, may be nil.
	Observer Observer

	// Host runs the scheduler's flush requests. nil uses the runtime's own microtask queue.
	Host Host

	MaxMicrotasks int
}

// Runtime is the coordinator of a reactive graph: tracking context,
// scope registry, scheduler and microtask host.
type Runtime struct {
	tracker    *Tracker
	batcher    *Batcher
	scheduler  *Scheduler
	microtasks *MicrotaskQueue

	config Config
}

func NewRuntime() *Runtime {
	r := &Runtime{
		tracker:    NewTracker(),
		batcher:    NewBatcher(),
		scheduler:  NewScheduler(),
		microtasks: NewMicrotaskQueue(),
	}
	r.Configure(Config{})

	return r
}

// Config returns the current configuration.
func (r *Runtime) Config() Config {
	return r.config
}

// Configure replaces the configuration, filling in defaults for zero fields.
func (r *Runtime) Configure(cfg Config) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Host == nil {
		cfg.Host = r.microtasks
	}
	if cfg.MaxMicrotasks <= 0 {
		cfg.MaxMicrotasks = DefaultMaxMicrotasks
	}

	r.config = cfg
}

func (r *Runtime) Logger() *slog.Logger {
	return r.config.Logger
}

func (r *Runtime) Scheduler() *Scheduler {
	return r.scheduler
}

// propagate walks the subscribers reachable from source, marking computeds
// dirty and enqueuing effects. Each node is visited at most once.
func (r *Runtime) propagate(source *ReactiveNode) {
	visited := make(map[*ReactiveNode]struct{})

	var walk func(n *ReactiveNode)
	walk = func(n *ReactiveNode) {
		for sub := range n.Subs() {
			if _, seen := visited[sub]; seen {
				continue
			}
			visited[sub] = struct{}{}

			switch sub.kind {
			case KindComputed:
				if !sub.HasFlag(FlagDirty) {
					sub.AddFlag(FlagDirty)
					walk(sub)
				}
			case KindEffect:
				r.enqueue(sub.effect)
			}
		}
	}

	walk(source)
}

func (r *Runtime) enqueue(e *Effect) {
	// an open batch settles by itself when it closes
	if r.scheduler.Enqueue(e) && !r.batcher.IsBatching() {
		r.config.Host.QueueMicrotask(r.Flush)
	}
}

// Flush re-runs every pending effect once, in first-enqueue order.
// A failing effect is reported and does not stop the rest of the batch.
func (r *Runtime) Flush() {
	batch := r.scheduler.Take()
	if len(batch) == 0 {
		return
	}

	observer := r.config.Observer
	if observer == nil {
		observer = nopObserver{}
	}

	done := observer.BeginFlush(len(batch))
	start := time.Now()
	stats := FlushStats{Pending: len(batch)}

	for _, e := range batch {
		if !e.Active() {
			continue
		}

		stats.Ran++
		if err := e.rerun(); err != nil {
			stats.Errors = append(stats.Errors, err)
			r.reportEffectError(e, err)
		}
	}

	stats.Duration = time.Since(start)
	done(stats)

	r.config.Logger.Debug("microsig: flush",
		"effects", stats.Ran,
		"errors", len(stats.Errors),
		"duration", stats.Duration,
	)
}

// Tick drains the runtime's own microtask queue: pending flushes run, and so
// do the flushes they cause, until nothing is left.
func (r *Runtime) Tick() {
	if _, exhausted := r.microtasks.Drain(r.config.MaxMicrotasks); exhausted {
		r.reportError(ErrRunawayFlush)
	}
}

// Settle flushes synchronously regardless of the host, then drains the microtask queue.
func (r *Runtime) Settle() {
	r.Flush()
	r.Tick()
}

// Untrack runs fn without registering dependencies on the current frame.
func (r *Runtime) Untrack(fn func()) {
	r.tracker.RunUntracked(fn)
}

// OnCleanup registers fn on the running effect, or else on the active scope.
func (r *Runtime) OnCleanup(fn func()) {
	if e := r.tracker.CurrentEffect(); e != nil {
		e.OnCleanup(fn)
		return
	}

	if scope := r.tracker.CurrentScope(); scope != nil {
		scope.OnCleanup(fn)
	}
}

func (r *Runtime) reportEffectError(e *Effect, err error) {
	if e.scope != nil && e.scope.handleError(err) {
		return
	}
	r.reportError(err)
}

func (r *Runtime) reportError(err error) {
	if r.config.ErrorHandler != nil {
		r.config.ErrorHandler(err)
		return
	}

	r.config.Logger.Error("microsig: effect failed", "err", err)
}
