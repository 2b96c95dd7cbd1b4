package internal

// Batcher groups writes. While a batch is open the runtime does not ask its
// host for a flush: the outermost batch flushes synchronously when it closes.
type Batcher struct {
	// each nested batch increases the depth by 1
	depth int
}

func NewBatcher() *Batcher {
	return &Batcher{}
}

func (b *Batcher) IsBatching() bool {
	return b.depth > 0
}

func (b *Batcher) open() {
	b.depth++
}

// close reports whether the outermost batch just closed.
func (b *Batcher) close() bool {
	b.depth--
	return b.depth == 0
}

// Batch runs fn, then flushes once the outermost batch completes,
// including when fn panics.
func (r *Runtime) Batch(fn func()) {
	r.batcher.open()
	defer func() {
		if r.batcher.close() {
			r.Settle()
		}
	}()

	fn()
}
