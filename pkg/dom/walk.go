package dom

// Walk visits n and its descendants in document order. Returning false from
// fn skips the children of the node just visited.
func Walk(n *Node, fn func(*Node) bool) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for _, c := range n.children {
		Walk(c, fn)
	}
}

// AllNodes returns n and all of its current descendants in document order.
// A container is not returned itself, only its descendants.
func AllNodes(n *Node) []*Node {
	if n == nil {
		return nil
	}
	var out []*Node
	Walk(n, func(c *Node) bool {
		if c != n || !n.IsContainer() {
			out = append(out, c)
		}
		return true
	})
	return out
}

// Flatten returns the concrete nodes n stands for: its children when n is
// a container, otherwise n itself.
func Flatten(n *Node) []*Node {
	if n == nil {
		return nil
	}
	if n.IsContainer() {
		return n.Children()
	}
	return []*Node{n}
}
