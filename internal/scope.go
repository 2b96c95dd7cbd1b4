package internal

import "slices"

// EffectScope is a disposal group. It owns the effects and child scopes
// created while it is the active scope.
type EffectScope struct {
	rt *Runtime

	parent   *EffectScope
	children []*EffectScope

	// owned effects, in creation order
	effects []*Effect

	// cleanup functions to be called when the scope is stopped
	cleanups []func()

	// effect failure handlers
	catchers []func(error)

	active bool
}

// NewEffectScope creates a scope. A scope created while another one is active becomes its child.
func (r *Runtime) NewEffectScope() *EffectScope {
	s := &EffectScope{
		rt:     r,
		active: true,
	}

	if parent := r.tracker.CurrentScope(); parent != nil && parent.active {
		s.parent = parent
		parent.children = append(parent.children, s)
	}

	return s
}

func (s *EffectScope) Active() bool {
	return s.active
}

// Run calls fn with this scope active. Effects created during fn belong to the scope.
// A stopped scope does not run fn. Panics propagate after the scope is popped.
func (s *EffectScope) Run(fn func()) {
	if !s.active || fn == nil {
		return
	}

	s.rt.tracker.RunWithScope(s, fn)
}

// Stop stops every owned effect and child scope, then runs the cleanups. Idempotent.
func (s *EffectScope) Stop() {
	if !s.active {
		return
	}
	s.active = false

	for _, e := range slices.Clone(s.effects) {
		e.Stop()
	}
	s.effects = nil

	for _, child := range slices.Clone(s.children) {
		child.Stop()
	}
	s.children = nil

	cleanups := s.cleanups
	s.cleanups = nil
	for _, cleanup := range slices.Backward(cleanups) {
		cleanup()
	}

	if s.parent != nil {
		s.parent.removeChild(s)
		s.parent = nil
	}
}

// OnCleanup adds a function to run when the scope stops.
// On a stopped scope fn runs immediately.
func (s *EffectScope) OnCleanup(fn func()) {
	if !s.active {
		fn()
		return
	}
	s.cleanups = append(s.cleanups, fn)
}

// OnError adds a handler for effects of this scope (or its children) failing during a flush.
func (s *EffectScope) OnError(fn func(error)) {
	s.catchers = append(s.catchers, fn)
}

// handleError hands err to the nearest scope with handlers.
func (s *EffectScope) handleError(err error) bool {
	for scope := s; scope != nil; scope = scope.parent {
		if len(scope.catchers) == 0 {
			continue
		}

		for _, catcher := range scope.catchers {
			catcher(err)
		}
		return true
	}

	return false
}

func (s *EffectScope) addEffect(e *Effect) {
	e.scope = s
	s.effects = append(s.effects, e)
}

func (s *EffectScope) removeEffect(e *Effect) {
	if i := slices.Index(s.effects, e); i >= 0 {
		s.effects = slices.Delete(s.effects, i, i+1)
	}
}

func (s *EffectScope) removeChild(child *EffectScope) {
	if i := slices.Index(s.children, child); i >= 0 {
		s.children = slices.Delete(s.children, i, i+1)
	}
}
