package internal

import "slices"

type Effect struct {
	*ReactiveNode

	fn       func()
	cleanups []func()

	scope *EffectScope
}

// NewEffect creates an effect, registers it with the active scope and runs it once.
// A panic during that first run stops the effect and propagates to the caller.
func (r *Runtime) NewEffect(fn func()) *Effect {
	e := &Effect{
		ReactiveNode: r.newNode(KindEffect),
		fn:           fn,
	}
	e.effect = e

	if scope := r.tracker.CurrentScope(); scope != nil {
		scope.addEffect(e)
	}

	func() {
		defer func() {
			if rec := recover(); rec != nil {
				e.Stop()
				panic(rec)
			}
		}()

		e.run()
	}()

	// an effect can't outlive a scope stopped while it was being created
	if e.scope != nil && !e.scope.Active() {
		e.Stop()
	}

	return e
}

func (e *Effect) Active() bool {
	return !e.HasFlag(FlagStopped)
}

// OnCleanup adds a function to run before the next execution and on stop.
func (e *Effect) OnCleanup(fn func()) {
	if !e.Active() {
		fn()
		return
	}
	e.cleanups = append(e.cleanups, fn)
}

// Stop detaches the effect from the graph and the scheduler. Idempotent.
func (e *Effect) Stop() {
	if !e.Active() {
		return
	}
	e.AddFlag(FlagStopped)

	e.ClearDeps()
	e.rt.scheduler.Remove(e)

	if e.scope != nil {
		e.scope.removeEffect(e)
	}

	e.runCleanups()
}

// run re-evaluates the effect: old dependencies are dropped and the ones read
// by fn become the new set.
func (e *Effect) run() {
	e.runCleanups()
	e.ClearDeps()

	e.rt.tracker.RunWithNode(e.ReactiveNode, e.fn)
}

// rerun is the scheduled execution, run inside the effect's owning scope.
func (e *Effect) rerun() (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = NewEvaluatorError(rec)
		}
	}()

	if e.scope != nil {
		e.rt.tracker.RunWithScope(e.scope, e.run)
	} else {
		e.run()
	}

	return nil
}

func (e *Effect) runCleanups() {
	cleanups := e.cleanups
	e.cleanups = nil

	// last registered runs first
	for _, cleanup := range slices.Backward(cleanups) {
		cleanup()
	}
}
