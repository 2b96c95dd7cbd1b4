package microsig

// CreateSignal returns the reader and the writer of a new signal.
func CreateSignal[T any](initial T) (func() T, func(T)) {
	s := NewSignal(initial)
	return s.Read, s.Write
}

// CreateComputed returns the reader of a new computed.
func CreateComputed[T any](fn func() T) func() T {
	return NewComputed(fn).Read
}

// CreateEffect runs fn as an effect and returns its stop function.
func CreateEffect(fn func()) func() {
	return NewEffect(fn).Stop
}

// CreateEffectScope runs fn, if any, in a new scope and returns the scope's stop function.
func CreateEffectScope(fn func()) func() {
	return NewEffectScope(fn).Stop
}
