package dom

// Predicate selects nodes during a tree query.
type Predicate func(n *Node) bool

// FindAll returns every descendant of root (root excluded) matching pred,
// in document order.
func FindAll(root *Node, pred Predicate) []*Node {
	var out []*Node
	walk(root, func(n *Node) {
		if pred(n) {
			out = append(out, n)
		}
	})
	return out
}

// FindFirst returns the first descendant of root matching pred, or nil.
func FindFirst(root *Node, pred Predicate) *Node {
	if root == nil {
		return nil
	}
	for _, c := range root.Children {
		if pred(c) {
			return c
		}
		if found := FindFirst(c, pred); found != nil {
			return found
		}
	}
	return nil
}

// Children returns the direct children of n matching pred. It never
// descends further.
func Children(n *Node, pred Predicate) []*Node {
	if n == nil {
		return nil
	}
	var out []*Node
	for _, c := range n.Children {
		if pred(c) {
			out = append(out, c)
		}
	}
	return out
}

// HasTag is a Predicate matching elements with the given tag.
func HasTag(tag string) Predicate {
	return func(n *Node) bool { return n.IsElement(tag) }
}

// And combines predicates; all must hold.
func And(preds ...Predicate) Predicate {
	return func(n *Node) bool {
		for _, p := range preds {
			if !p(n) {
				return false
			}
		}
		return true
	}
}

func walk(root *Node, visit func(*Node)) {
	if root == nil {
		return
	}
	for _, c := range root.Children {
		visit(c)
		walk(c, visit)
	}
}
