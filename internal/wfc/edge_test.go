package wfc

import "testing"

func newPairMap(t *testing.T, compat Compatibility) (*Map, *Node, *Node) {
	t.Helper()
	m := NewMap(MapOptions{Topology: pairTopology{}, Compatibility: compat})
	if err := m.CreateNodes(); err != nil {
		t.Fatalf("CreateNodes() failed: %v", err)
	}
	a, _ := m.NodeAt(Coordinate{})
	b, _ := m.NodeAt(Coordinate{X: 1})
	return m, a, b
}

func TestEdgeOtherNodeSymmetry(t *testing.T) {
	_, a, b := newPairMap(t, openCompat("a"))

	e := a.EdgeTo(b)
	if e == nil {
		t.Fatal("expected an edge between the pair")
	}

	if got, ok := e.OtherNode(a); !ok || got != b {
		t.Errorf("OtherNode(a) = %v, %v, want b", got, ok)
	}
	if got, ok := e.OtherNode(b); !ok || got != a {
		t.Errorf("OtherNode(b) = %v, %v, want a", got, ok)
	}

	stranger := newNode(Coordinate{X: 9}, nil, nil)
	if _, ok := e.OtherNode(stranger); ok {
		t.Error("OtherNode should report not-found for a node off the edge")
	}
}

func TestCreateEdgeToReturnsExistingEdge(t *testing.T) {
	_, a, b := newPairMap(t, openCompat("a"))

	first := a.EdgeTo(b)
	again := a.CreateEdgeTo(b)
	reverse := b.CreateEdgeTo(a)

	if again != first || reverse != first {
		t.Error("creating an edge twice should return the same edge instance")
	}
	if len(a.Edges()) != 1 || len(b.Edges()) != 1 {
		t.Errorf("edge counts = %d, %d, want 1, 1", len(a.Edges()), len(b.Edges()))
	}
}

func TestEdgeKeyIsOrderIndependent(t *testing.T) {
	_, a, b := newPairMap(t, openCompat("a"))

	forward := newEdge(a, b, NewLabelSet())
	backward := newEdge(b, a, NewLabelSet())

	if forward.Key() != backward.Key() {
		t.Errorf("Key() differs: %v vs %v", forward.Key(), backward.Key())
	}
	if !forward.Equal(backward) || !backward.Equal(forward) {
		t.Error("edges over the same pair should be equal in both directions")
	}
}

func TestEdgeStartsWithAllLabels(t *testing.T) {
	_, a, b := newPairMap(t, openCompat("a", "b", "c"))
	e := a.EdgeTo(b)

	for _, n := range []*Node{a, b} {
		labels, ok := e.ConnectionsFor(n)
		if !ok {
			t.Fatal("ConnectionsFor should find an endpoint")
		}
		if got := SortedLabels(labels); len(got) != 3 {
			t.Errorf("initial labels = %v, want all three", got)
		}
	}
}

func TestEdgeSetConnectionsFor(t *testing.T) {
	_, a, b := newPairMap(t, openCompat("a", "b"))
	e := a.EdgeTo(b)

	if !e.SetConnectionsFor(a, NewLabelSet("a")) {
		t.Error("narrowing the set should report a change")
	}
	if e.SetConnectionsFor(a, NewLabelSet("a")) {
		t.Error("setting an equal set should report no change")
	}

	own, _ := e.ConnectionsFor(a)
	if !own.Has("a") || own.Size() != 1 {
		t.Errorf("ConnectionsFor(a) = %v, want [a]", SortedLabels(own))
	}

	other, _ := e.ConnectionsForOther(b)
	if !other.Has("a") || other.Size() != 1 {
		t.Errorf("ConnectionsForOther(b) = %v, want [a]", SortedLabels(other))
	}

	untouched, _ := e.ConnectionsFor(b)
	if untouched.Size() != 2 {
		t.Errorf("ConnectionsFor(b) = %v, want both labels", SortedLabels(untouched))
	}
}

func TestEdgeSetConnectionsForNonEndpoint(t *testing.T) {
	_, a, b := newPairMap(t, openCompat("a", "b"))
	e := a.EdgeTo(b)
	stranger := newNode(Coordinate{X: 5}, nil, nil)

	if e.SetConnectionsFor(stranger, NewLabelSet("a")) {
		t.Error("SetConnectionsFor on a non-endpoint should report unchanged")
	}
	if _, ok := e.ConnectionsFor(stranger); ok {
		t.Error("ConnectionsFor on a non-endpoint should report not-found")
	}
	if _, ok := e.ConnectionsForOther(stranger); ok {
		t.Error("ConnectionsForOther on a non-endpoint should report not-found")
	}
}

func TestEdgeSetConnectionsForCopiesInput(t *testing.T) {
	_, a, b := newPairMap(t, openCompat("a", "b"))
	e := a.EdgeTo(b)

	input := NewLabelSet("a")
	e.SetConnectionsFor(a, input)
	input.Put("b")

	got, _ := e.ConnectionsFor(a)
	if got.Has("b") {
		t.Error("edge should keep its own copy of the label set")
	}
}

func TestRemoveEdgeTo(t *testing.T) {
	_, a, b := newPairMap(t, openCompat("a"))

	if !a.RemoveEdgeTo(b) {
		t.Fatal("RemoveEdgeTo should succeed for linked nodes")
	}
	if a.EdgeTo(b) != nil || b.EdgeTo(a) != nil {
		t.Error("edge should be gone from both endpoints")
	}
	if a.RemoveEdgeTo(b) {
		t.Error("removing a missing edge should return false")
	}
}
