package internal

import "iter"

type NodeKind uint8

const (
	KindSignal NodeKind = iota
	KindComputed
	KindEffect
)

func (k NodeKind) String() string {
	switch k {
	case KindSignal:
		return "signal"
	case KindComputed:
		return "computed"
	case KindEffect:
		return "effect"
	}
	return "unknown"
}

// ReactiveNode is a vertex of the dependency graph.
// Signals only have subscribers, effects only have dependencies,
// computeds have both.
type ReactiveNode struct {
	rt *Runtime

	kind  NodeKind
	flags NodeFlags

	// back references used by propagation, only one is set
	computed *Computed
	effect   *Effect

	depsHead *DependencyLink
	depsTail *DependencyLink

	subsHead *DependencyLink
	subsTail *DependencyLink
}

func (r *Runtime) newNode(kind NodeKind) *ReactiveNode {
	return &ReactiveNode{rt: r, kind: kind}
}

func (n *ReactiveNode) Kind() NodeKind {
	return n.kind
}

// Link creates a bidirectional dependency link between this node (subscriber) and the given node (dependency).
func (n *ReactiveNode) Link(dep *ReactiveNode) {
	if n == dep || n.hasDep(dep) {
		return
	}

	link := &DependencyLink{dep: dep, sub: n}

	n.addDepLink(link)
	dep.addSubLink(link)
}

// ClearDeps removes every dependency edge of this node.
func (n *ReactiveNode) ClearDeps() {
	for link := n.depsHead; link != nil; {
		next := link.nextDep
		link.dep.removeSubLink(link)
		link.prevDep = nil
		link.nextDep = nil
		link = next
	}

	n.depsHead = nil
	n.depsTail = nil
}

// Deps returns an iterator over all dependencies
func (n *ReactiveNode) Deps() iter.Seq[*ReactiveNode] {
	return func(yield func(*ReactiveNode) bool) {
		for link := n.depsHead; link != nil; link = link.nextDep {
			if !yield(link.dep) {
				return
			}
		}
	}
}

// Subs returns an iterator over all subscribers
func (n *ReactiveNode) Subs() iter.Seq[*ReactiveNode] {
	return func(yield func(*ReactiveNode) bool) {
		for link := n.subsHead; link != nil; link = link.nextSub {
			if !yield(link.sub) {
				return
			}
		}
	}
}

func (n *ReactiveNode) hasDep(dep *ReactiveNode) bool {
	// most reads repeat the last dependency
	if n.depsTail != nil && n.depsTail.dep == dep {
		return true
	}

	// linear; dependency lists are short
	for d := range n.Deps() {
		if d == dep {
			return true
		}
	}

	return false
}
