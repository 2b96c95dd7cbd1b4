package internal

// NodeFlags holds the state bits of a reactive node.
type NodeFlags uint8

const (
	FlagDirty      NodeFlags = 1 << iota // computed value is stale
	FlagEvaluating                       // computed is on the evaluation stack
	FlagPending                          // effect is in the scheduler's pending set
	FlagStopped                          // effect no longer reacts
)

func (n *ReactiveNode) HasFlag(flag NodeFlags) bool {
	return n.flags&flag != 0
}

func (n *ReactiveNode) AddFlag(flag NodeFlags) {
	n.flags |= flag
}

func (n *ReactiveNode) RemoveFlag(flag NodeFlags) {
	n.flags &^= flag
}
