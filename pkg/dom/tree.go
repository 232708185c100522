package dom

// AppendChild inserts child as the last child of n.
// If child is a fragment, its children are moved instead.
func (n *Node) AppendChild(child *Node) error {
	return n.InsertBefore(child, nil)
}

// InsertBefore inserts child before ref, or last when ref is nil.
// If child is a fragment, its children are moved instead. A child attached
// elsewhere is removed from its old parent first; a child from another
// document is adopted.
func (n *Node) InsertBefore(child, ref *Node) error {
	if err := n.checkInsert(child); err != nil {
		return err
	}
	if ref != nil && ref.parent != n {
		return notFoundError()
	}
	if ref == child {
		ref = child.NextSibling()
	}

	var nodes []*Node
	if child.IsContainer() {
		nodes = child.Children()
		if len(nodes) == 0 {
			return nil
		}
		for len(child.children) > 0 {
			child.removeAt(0)
		}
		queueRecord(child, MutationRecord{Type: RecordChildList, Target: child, RemovedNodes: nodes})
	} else {
		nodes = []*Node{child}
		if old := child.parent; old != nil {
			old.removeAt(old.indexOf(child))
			queueRecord(old, MutationRecord{Type: RecordChildList, Target: old, RemovedNodes: nodes})
		}
	}

	doc := n.OwnerDocument()
	for _, c := range nodes {
		adopt(c, doc)
		c.parent = n
	}
	at := len(n.children)
	if ref != nil {
		at = n.indexOf(ref)
	}
	n.children = append(n.children[:at], append(append([]*Node(nil), nodes...), n.children[at:]...)...)

	queueRecord(n, MutationRecord{Type: RecordChildList, Target: n, AddedNodes: nodes})
	return nil
}

// RemoveChild detaches child from n.
func (n *Node) RemoveChild(child *Node) error {
	if child == nil || child.parent != n {
		return notFoundError()
	}
	n.removeAt(n.indexOf(child))
	queueRecord(n, MutationRecord{Type: RecordChildList, Target: n, RemovedNodes: []*Node{child}})
	return nil
}

// ReplaceChild replaces oldChild with newChild. If newChild is a fragment,
// its children take oldChild's place.
func (n *Node) ReplaceChild(newChild, oldChild *Node) error {
	if oldChild == nil || oldChild.parent != n {
		return notFoundError()
	}
	if newChild == oldChild {
		return nil
	}
	if err := n.checkInsert(newChild); err != nil {
		return err
	}
	ref := oldChild.NextSibling()
	if ref == newChild {
		ref = newChild.NextSibling()
	}
	if err := n.RemoveChild(oldChild); err != nil {
		return err
	}
	return n.InsertBefore(newChild, ref)
}

// SetAttribute sets an attribute value, recording the previous value.
func (n *Node) SetAttribute(name, value string) {
	old, _ := n.GetAttribute(name)
	set := false
	for i := range n.attrs {
		if n.attrs[i].Key == name {
			n.attrs[i].Value = value
			set = true
			break
		}
	}
	if !set {
		n.attrs = append(n.attrs, Attr{Key: name, Value: value})
	}
	queueRecord(n, MutationRecord{Type: RecordAttributes, Target: n, AttributeName: name, OldValue: old})
}

// RemoveAttribute removes an attribute. Removing an unset attribute is a no-op.
func (n *Node) RemoveAttribute(name string) {
	for i := range n.attrs {
		if n.attrs[i].Key == name {
			old := n.attrs[i].Value
			n.attrs = append(n.attrs[:i], n.attrs[i+1:]...)
			queueRecord(n, MutationRecord{Type: RecordAttributes, Target: n, AttributeName: name, OldValue: old})
			return
		}
	}
}

func (n *Node) checkInsert(child *Node) error {
	if child == nil {
		return notFoundError()
	}
	switch n.Kind {
	case KindElement, KindFragment, KindDocument:
	default:
		return hierarchyError(n, child)
	}
	if child.Kind == KindDocument {
		return hierarchyError(n, child)
	}
	if child.Contains(n) {
		return cycleError()
	}
	return nil
}

func (n *Node) removeAt(i int) {
	if i < 0 {
		return
	}
	child := n.children[i]
	copy(n.children[i:], n.children[i+1:])
	n.children[len(n.children)-1] = nil
	n.children = n.children[:len(n.children)-1]
	child.parent = nil
}
