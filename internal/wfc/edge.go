package wfc

// EdgeKey identifies an edge independently of which endpoint is named first.
type EdgeKey struct {
	Low, High Coordinate
}

// Edge is an undirected connection between two nodes. Each endpoint has its
// own set of labels it may still present across the edge.
type Edge struct {
	a, b    *Node
	aLabels LabelSet
	bLabels LabelSet
}

// newEdge creates an edge with both sides offering every label in all.
func newEdge(a, b *Node, all LabelSet) *Edge {
	return &Edge{
		a:       a,
		b:       b,
		aLabels: copyLabels(all),
		bLabels: copyLabels(all),
	}
}

// Nodes returns both endpoints in creation order.
func (e *Edge) Nodes() (*Node, *Node) {
	return e.a, e.b
}

// Key returns the order-independent identity of the edge.
func (e *Edge) Key() EdgeKey {
	ca, cb := e.a.Coordinate(), e.b.Coordinate()
	if cb.Less(ca) {
		ca, cb = cb, ca
	}
	return EdgeKey{Low: ca, High: cb}
}

// Equal reports whether both edges join the same pair of nodes.
func (e *Edge) Equal(o *Edge) bool {
	if e == nil || o == nil {
		return e == o
	}
	return (e.a == o.a && e.b == o.b) || (e.a == o.b && e.b == o.a)
}

// Has reports whether n is an endpoint.
func (e *Edge) Has(n *Node) bool {
	return n != nil && (n == e.a || n == e.b)
}

// OtherNode returns the endpoint that is not n. ok is false if n is not on
// this edge.
func (e *Edge) OtherNode(n *Node) (other *Node, ok bool) {
	switch n {
	case nil:
		return nil, false
	case e.a:
		return e.b, true
	case e.b:
		return e.a, true
	default:
		return nil, false
	}
}

// ConnectionsFor returns the labels n currently offers across this edge.
func (e *Edge) ConnectionsFor(n *Node) (LabelSet, bool) {
	switch n {
	case nil:
		return LabelSet{}, false
	case e.a:
		return e.aLabels, true
	case e.b:
		return e.bLabels, true
	default:
		return LabelSet{}, false
	}
}

// ConnectionsForOther returns the labels offered by the endpoint that is not
// n. This is what a candidate rotation at n is checked against.
func (e *Edge) ConnectionsForOther(n *Node) (LabelSet, bool) {
	switch n {
	case nil:
		return LabelSet{}, false
	case e.a:
		return e.bLabels, true
	case e.b:
		return e.aLabels, true
	default:
		return LabelSet{}, false
	}
}

// SetConnectionsFor replaces the labels offered by n and reports whether the
// set changed. It does nothing and returns false if n is not an endpoint.
func (e *Edge) SetConnectionsFor(n *Node, labels LabelSet) bool {
	switch n {
	case nil:
		return false
	case e.a:
		changed := !labelsEqual(e.aLabels, labels)
		e.aLabels = copyLabels(labels)
		return changed
	case e.b:
		changed := !labelsEqual(e.bLabels, labels)
		e.bLabels = copyLabels(labels)
		return changed
	default:
		return false
	}
}
