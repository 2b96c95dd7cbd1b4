package microsig

import "github.com/AnatoleLucet/microsig/internal"

func as[T any](v any) T {
	if v == nil {
		var zero T
		return zero
	}

	return v.(T)
}

// ErrCircularDependency is the panic value of a computed that reads itself while evaluating.
var ErrCircularDependency = internal.ErrCircularDependency

// ErrRunawayFlush is reported when a Tick stops early because effects keep re-triggering.
var ErrRunawayFlush = internal.ErrRunawayFlush

// EvaluatorError wraps the value recovered from a panicking effect during a flush.
type EvaluatorError = internal.EvaluatorError

type Signal[T any] struct {
	signal *internal.Signal
}

// SignalOption configures a signal.
type SignalOption[T any] func(*Signal[T])

// WithEquals makes the signal use fn to decide whether a write changes its value.
func WithEquals[T any](fn func(a, b T) bool) SignalOption[T] {
	return func(s *Signal[T]) {
		s.signal.SetEquals(func(a, b any) bool {
			return fn(as[T](a), as[T](b))
		})
	}
}

// NewSignal creates your typical read/write signal.
func NewSignal[T any](initial T, opts ...SignalOption[T]) *Signal[T] {
	s := &Signal[T]{
		internal.GetRuntime().NewSignal(initial),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Read the current value of the signal, tracking the dependency if within a reactive context.
func (s *Signal[T]) Read() T {
	return as[T](s.signal.Read())
}

// Peek reads the current value without tracking.
func (s *Signal[T]) Peek() T {
	return as[T](s.signal.Peek())
}

// Write a new value to the signal. Dependent effects re-run at the next flush,
// writing an equal value does nothing.
func (s *Signal[T]) Write(v T) {
	s.signal.Write(v)
}

// Update writes fn applied to the current (untracked) value.
func (s *Signal[T]) Update(fn func(T) T) {
	s.Write(fn(s.Peek()))
}

type Computed[T any] struct {
	computed *internal.Computed
}

// NewComputed creates a lazily evaluated, cached value derived from other signals (a memo).
// compute first runs on the first Read, then again only when a Read follows a dependency change.
func NewComputed[T any](compute func() T) *Computed[T] {
	return &Computed[T]{
		internal.GetRuntime().NewComputed(func() any {
			return compute()
		}),
	}
}

// Read the current value of the computed signal, tracking the dependency if within a reactive context.
// Panics from compute, including ErrCircularDependency, propagate to the caller.
func (c *Computed[T]) Read() T {
	return as[T](c.computed.Read())
}

type Effect struct {
	effect *internal.Effect
}

// NewEffect creates a reactive effect. fn runs once before NewEffect returns,
// then again after every flush following a change of what it read.
func NewEffect(fn func()) *Effect {
	return &Effect{
		internal.GetRuntime().NewEffect(fn),
	}
}

// Stop the effect. It won't run again. Safe to call more than once.
func (e *Effect) Stop() { e.effect.Stop() }

// Active reports whether the effect has not been stopped.
func (e *Effect) Active() bool { return e.effect.Active() }

type EffectScope struct {
	scope *internal.EffectScope
}

// NewEffectScope creates a scope and, if fn is not nil, runs it right away.
// Effects created while fn runs are owned by the scope and stop with it.
// A panic in fn propagates once the scope is no longer active.
func NewEffectScope(fn func()) *EffectScope {
	s := &EffectScope{
		internal.GetRuntime().NewEffectScope(),
	}
	s.scope.Run(fn)

	return s
}

// Run fn within the scope again. Does nothing once the scope is stopped.
func (s *EffectScope) Run(fn func()) { s.scope.Run(fn) }

// Stop every effect and child scope of this scope. Safe to call more than once.
func (s *EffectScope) Stop() { s.scope.Stop() }

// Active reports whether the scope has not been stopped.
func (s *EffectScope) Active() bool { return s.scope.Active() }

// OnCleanup adds a function called when the scope stops.
func (s *EffectScope) OnCleanup(fn func()) { s.scope.OnCleanup(fn) }

// OnError adds a handler for panics of the scope's effects during a flush.
// Without handlers, failures go to the runtime error handler.
func (s *EffectScope) OnError(fn func(error)) { s.scope.OnError(fn) }

// Untrack runs the given function without tracking any reactive dependencies.
func Untrack[T any](fn func() T) T {
	var result T
	internal.GetRuntime().Untrack(func() { result = fn() })
	return result
}

// OnCleanup registers a function to be called before the current effect re-runs or stops.
// Outside an effect it is attached to the active scope.
func OnCleanup(fn func()) {
	internal.GetRuntime().OnCleanup(fn)
}

// Tick drains the pending microtasks of the current goroutine: every pending
// flush runs, including the ones triggered by effects of that flush.
// It is the equivalent of awaiting one turn of the event loop.
func Tick() {
	internal.GetRuntime().Tick()
}

// Batch runs fn and flushes synchronously once the outermost batch returns.
func Batch(fn func()) {
	internal.GetRuntime().Batch(fn)
}
