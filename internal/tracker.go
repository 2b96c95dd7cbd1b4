package internal

// Tracker is the tracking context and the scope registry of a runtime.
type Tracker struct {
	// evaluation stack, a nil frame marks an untracked region
	frames []*ReactiveNode

	// active effect scopes, innermost last
	scopes []*EffectScope
}

func NewTracker() *Tracker {
	return &Tracker{
		frames: make([]*ReactiveNode, 0, 8),
	}
}

// RunWithNode runs fn with node as the current tracking frame.
func (t *Tracker) RunWithNode(node *ReactiveNode, fn func()) {
	depth := len(t.frames)
	t.frames = append(t.frames, node)
	defer func() { t.frames = t.frames[:depth] }()

	fn()
}

// RunUntracked runs fn with dependency tracking suspended.
// Nodes evaluated inside fn still track their own dependencies.
func (t *Tracker) RunUntracked(fn func()) {
	t.RunWithNode(nil, fn)
}

// RunWithScope runs fn with scope as the active effect scope.
func (t *Tracker) RunWithScope(scope *EffectScope, fn func()) {
	depth := len(t.scopes)
	t.scopes = append(t.scopes, scope)
	defer func() { t.scopes = t.scopes[:depth] }()

	fn()
}

// Current returns the top tracking frame, nil when untracked.
func (t *Tracker) Current() *ReactiveNode {
	if len(t.frames) == 0 {
		return nil
	}
	return t.frames[len(t.frames)-1]
}

func (t *Tracker) ShouldTrack() bool {
	sub := t.Current()
	return sub != nil && !sub.HasFlag(FlagStopped)
}

// Track links dep to the current frame.
func (t *Tracker) Track(dep *ReactiveNode) {
	if t.ShouldTrack() {
		t.Current().Link(dep)
	}
}

// CurrentEffect returns the innermost running effect, ignoring untracked markers.
func (t *Tracker) CurrentEffect() *Effect {
	for i := len(t.frames) - 1; i >= 0; i-- {
		if node := t.frames[i]; node != nil && node.kind == KindEffect {
			return node.effect
		}
	}
	return nil
}

func (t *Tracker) CurrentScope() *EffectScope {
	if len(t.scopes) == 0 {
		return nil
	}
	return t.scopes[len(t.scopes)-1]
}
