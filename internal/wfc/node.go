package wfc

import (
	"fmt"

	"github.com/zyedidia/generic/mapset"
)

// Node is a vertex of the map graph. It starts uncollapsed with a set of
// possible tiles and ends collapsed with exactly one resolved tile.
type Node struct {
	coordinate Coordinate
	owner      *Map

	edges []*Edge

	// ordered caches the topology's edge ordering; orderedCount is the edge
	// count it was computed for. Equal-count add/remove pairs between calls
	// leave the cache stale.
	ordered      []*Edge
	orderedCount int

	possible  []*PossibleTile
	collapsed bool
	tile      Tile
}

func newNode(coordinate Coordinate, owner *Map, possible []*PossibleTile) *Node {
	return &Node{
		coordinate:   coordinate,
		owner:        owner,
		possible:     possible,
		orderedCount: -1,
	}
}

// Coordinate returns the node's coordinate
func (n *Node) Coordinate() Coordinate { return n.coordinate }

// Collapsed reports whether a tile has been chosen
func (n *Node) Collapsed() bool { return n.collapsed }

// Tile returns the resolved tile, or nil while uncollapsed
func (n *Node) Tile() Tile { return n.tile }

// PossibleTiles returns the tiles this node could still become. Empty once
// the node is collapsed.
func (n *Node) PossibleTiles() []*PossibleTile {
	out := make([]*PossibleTile, len(n.possible))
	copy(out, n.possible)
	return out
}

// Edges returns the node's edges in the order they were attached
func (n *Node) Edges() []*Edge {
	out := make([]*Edge, len(n.edges))
	copy(out, n.edges)
	return out
}

// Neighbors returns the nodes at the other end of every edge
func (n *Node) Neighbors() []*Node {
	out := make([]*Node, 0, len(n.edges))
	for _, e := range n.edges {
		if other, ok := e.OtherNode(n); ok {
			out = append(out, other)
		}
	}
	return out
}

// EdgeTo returns the edge joining n and other, or nil if there is none.
func (n *Node) EdgeTo(other *Node) *Edge {
	for _, e := range n.edges {
		if o, ok := e.OtherNode(n); ok && o == other {
			return e
		}
	}
	return nil
}

// CreateEdgeTo links n and other. If they are already linked the existing edge
// is returned instead of a duplicate.
func (n *Node) CreateEdgeTo(other *Node) *Edge {
	if e := n.EdgeTo(other); e != nil {
		return e
	}

	e := newEdge(n, other, n.allLabels())
	n.edges = append(n.edges, e)
	other.edges = append(other.edges, e)
	return e
}

// RemoveEdgeTo detaches the edge between n and other from both nodes.
// Returns false if they were not linked.
func (n *Node) RemoveEdgeTo(other *Node) bool {
	e := n.EdgeTo(other)
	if e == nil {
		return false
	}
	n.removeEdge(e)
	other.removeEdge(e)
	return true
}

func (n *Node) removeEdge(e *Edge) {
	for i, existing := range n.edges {
		if existing == e {
			n.edges = append(n.edges[:i], n.edges[i+1:]...)
			return
		}
	}
}

// OrderedEdges returns the node's edges in topology side order, with nil where
// a side has no neighbour. The result is cached until the edge count changes.
func (n *Node) OrderedEdges() []*Edge {
	if n.ordered == nil || n.orderedCount != len(n.edges) {
		n.ordered = n.owner.OrderEdgesFor(n)
		n.orderedCount = len(n.edges)
	}
	return n.ordered
}

// Entropy sums the entropy of every possible tile. Lower means fewer states.
func (n *Node) Entropy() int {
	total := 0
	for _, t := range n.possible {
		total += t.Entropy()
	}
	return total
}

// Collapse picks one possible tile weighted by probability and one of its
// valid rotations uniformly, locks it, and propagates the consequences.
func (n *Node) Collapse(rng Source) error {
	if n.collapsed {
		return fmt.Errorf("%w: %s", ErrAlreadyCollapsed, n.coordinate)
	}

	weights := make([]int, len(n.possible))
	for i, t := range n.possible {
		weights[i] = t.Probability()
	}

	idx := PickWeighted(rng, weights)
	if idx < 0 {
		return &GenerationError{Coordinate: n.coordinate, Kind: FailureNoWeightedChoice}
	}
	chosen := n.possible[idx]

	rotations := chosen.ValidRotations()
	if len(rotations) == 0 {
		return &GenerationError{Coordinate: n.coordinate, Kind: FailureContradiction}
	}
	if _, err := chosen.RotateToAndLock(rotations[PickUniform(rng, len(rotations))]); err != nil {
		return err
	}

	return n.resolve(chosen)
}

// ForceSet places preset on the node regardless of its surroundings.
func (n *Node) ForceSet(preset *PresetTile) error {
	if n.collapsed {
		return fmt.Errorf("%w: %s", ErrAlreadyCollapsed, n.coordinate)
	}
	return n.resolve(preset)
}

// resolve marks the node collapsed with t, adjusts neighbour probabilities,
// pushes t's labels onto the edges and propagates to every neighbour whose
// view of this node changed.
func (n *Node) resolve(t Tile) error {
	n.collapsed = true
	n.tile = t

	modifiers := t.ProbabilityModifiers()
	for _, neighbor := range n.Neighbors() {
		neighbor.applyModifiers(modifiers)
	}

	n.possible = nil

	conns := t.Connections()
	singletons := make([]LabelSet, len(conns))
	for i, label := range conns {
		singletons[i] = mapset.Of(label)
	}

	changed, err := n.pushConnections(singletons)
	if err != nil {
		return err
	}

	w := newWave(n.owner)
	w.push(changed...)
	return w.run()
}

// applyModifiers adjusts the probability of every possible tile named in modifiers.
func (n *Node) applyModifiers(modifiers map[string]int) {
	if len(modifiers) == 0 {
		return
	}
	for _, t := range n.possible {
		if delta, ok := modifiers[t.Name()]; ok {
			t.ModifyProbability(delta)
		}
	}
}

// pushConnections writes labels onto the ordered edges, one set per side, and
// returns the neighbours whose edge labels changed.
func (n *Node) pushConnections(labels []LabelSet) ([]*Node, error) {
	edges := n.OrderedEdges()
	if len(edges) != len(labels) {
		return nil, fmt.Errorf("%w: node %s has %d ordered edges, got %d label sets", ErrSideMismatch, n.coordinate, len(edges), len(labels))
	}

	var changed []*Node
	for i, e := range edges {
		if e == nil {
			continue
		}
		if e.SetConnectionsFor(n, labels[i]) {
			if other, ok := e.OtherNode(n); ok {
				changed = append(changed, other)
			}
		}
	}
	return changed, nil
}

// propagate re-evaluates every possible tile against the node's current edge
// labels, drops tiles with no valid rotation and pushes the narrowed labels
// outward. It returns the neighbours that must be re-evaluated in turn.
func (n *Node) propagate() ([]*Node, error) {
	if n.collapsed {
		return nil, nil
	}

	edges := n.OrderedEdges()
	compat := n.owner.Compatibility()

	union := make([]LabelSet, len(edges))
	for i := range union {
		union[i] = mapset.New[string]()
	}

	kept := make([]*PossibleTile, 0, len(n.possible))
	for _, t := range n.possible {
		sides, err := t.FindValidRotations(n, edges, compat)
		if err != nil {
			return nil, err
		}
		if t.Entropy() == 0 {
			continue
		}
		kept = append(kept, t)
		for i, s := range sides {
			s.Each(union[i].Put)
		}
	}
	n.possible = kept

	if len(n.possible) == 0 {
		return nil, &GenerationError{Coordinate: n.coordinate, Kind: FailureContradiction}
	}

	return n.pushConnections(union)
}

// allLabels is the label set a new edge starts with on both sides.
func (n *Node) allLabels() LabelSet {
	if n.owner == nil {
		return mapset.New[string]()
	}
	return n.owner.Compatibility().Labels()
}
