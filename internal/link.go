package internal

// DependencyLink is one edge of the graph. It lives in two doubly linked
// lists at once: the subscriber's dependencies and the dependency's subscribers.
type DependencyLink struct {
	dep *ReactiveNode
	sub *ReactiveNode

	prevDep *DependencyLink
	nextDep *DependencyLink

	prevSub *DependencyLink
	nextSub *DependencyLink
}

func (n *ReactiveNode) addDepLink(link *DependencyLink) {
	link.prevDep = n.depsTail
	link.nextDep = nil

	if n.depsTail != nil {
		n.depsTail.nextDep = link
	} else {
		n.depsHead = link
	}
	n.depsTail = link
}

func (n *ReactiveNode) addSubLink(link *DependencyLink) {
	link.prevSub = n.subsTail
	link.nextSub = nil

	if n.subsTail != nil {
		n.subsTail.nextSub = link
	} else {
		n.subsHead = link
	}
	n.subsTail = link
}

func (n *ReactiveNode) removeSubLink(link *DependencyLink) {
	if link.prevSub != nil {
		link.prevSub.nextSub = link.nextSub
	} else {
		n.subsHead = link.nextSub
	}

	if link.nextSub != nil {
		link.nextSub.prevSub = link.prevSub
	} else {
		n.subsTail = link.prevSub
	}

	link.prevSub = nil
	link.nextSub = nil
}
