package internal

type Computed struct {
	*ReactiveNode

	value   any
	compute func() any
}

// NewComputed creates a lazy computed. compute does not run until the first Read.
func (r *Runtime) NewComputed(compute func() any) *Computed {
	c := &Computed{
		ReactiveNode: r.newNode(KindComputed),
		compute:      compute,
	}
	c.computed = c
	c.AddFlag(FlagDirty)

	return c
}

// Read returns the cached value, recomputing it first if it is dirty.
func (c *Computed) Read() any {
	if c.HasFlag(FlagDirty) {
		c.evaluate()
	}

	c.rt.tracker.Track(c.ReactiveNode)
	return c.value
}

func (c *Computed) IsDirty() bool {
	return c.HasFlag(FlagDirty)
}

func (c *Computed) evaluate() {
	if c.HasFlag(FlagEvaluating) {
		panic(ErrCircularDependency)
	}
	c.AddFlag(FlagEvaluating)

	done := false
	defer func() {
		c.RemoveFlag(FlagEvaluating)
		if !done {
			// drop the partial dependency set so the next read starts clean
			c.ClearDeps()
			c.AddFlag(FlagDirty)
		}
	}()

	// cleared first: a write to a dependency during compute re-dirties the node
	c.RemoveFlag(FlagDirty)
	c.ClearDeps()

	var value any
	c.rt.tracker.RunWithNode(c.ReactiveNode, func() {
		value = c.compute()
	})

	c.value = value
	done = true
}
