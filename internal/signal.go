package internal

type Signal struct {
	*ReactiveNode

	value  any
	equals func(a, b any) bool
}

func (r *Runtime) NewSignal(initial any) *Signal {
	return &Signal{
		ReactiveNode: r.newNode(KindSignal),
		value:        initial,
		equals:       IsEqual,
	}
}

// SetEquals replaces the equality policy used by Write.
func (s *Signal) SetEquals(equals func(a, b any) bool) {
	if equals == nil {
		equals = IsEqual
	}
	s.equals = equals
}

// Read returns the current value, tracking the dependency if within a reactive context.
func (s *Signal) Read() any {
	s.rt.tracker.Track(s.ReactiveNode)
	return s.value
}

// Peek returns the current value without tracking.
func (s *Signal) Peek() any {
	return s.value
}

// Write stores v and notifies dependents, unless v equals the current value.
// Dependent effects run at the next flush, never during Write.
func (s *Signal) Write(v any) {
	if s.equals(s.value, v) {
		return
	}

	s.value = v
	s.rt.propagate(s.ReactiveNode)
}
