package wfc

import (
	"fmt"
	"sort"
)

// Topology decides which nodes a map has, how they are linked, and the side
// order every tile's connection labels follow.
type Topology interface {
	// Key is the shape name maps refer to, e.g. "Ring".
	Key() string
	// Sides is the length of every ordered edge list and of every tile's
	// connection sequence.
	Sides() int
	// Build adds nodes to m, each with a fresh set of possible tiles from
	// newTiles, and links neighbours.
	Build(m *Map, newTiles func() []*PossibleTile, primarySize, secondarySize int) error
	// OrderEdges returns n's edges in side order, nil where a side has no
	// neighbour. The result always has Sides() entries.
	OrderEdges(m *Map, n *Node) []*Edge
}

// Registry maps shape keys to topologies.
type Registry struct {
	topologies map[string]Topology
}

// NewRegistry creates a registry holding the given topologies.
func NewRegistry(topologies ...Topology) *Registry {
	r := &Registry{topologies: make(map[string]Topology, len(topologies))}
	for _, t := range topologies {
		r.topologies[t.Key()] = t
	}
	return r
}

// DefaultRegistry holds every built-in topology.
func DefaultRegistry() *Registry {
	return NewRegistry(HexRing{}, SquareGrid{})
}

// Lookup returns the topology registered under key.
func (r *Registry) Lookup(key string) (Topology, error) {
	t, ok := r.topologies[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTopology, key)
	}
	return t, nil
}

// Keys returns the registered shape keys in lexical order.
func (r *Registry) Keys() []string {
	keys := make([]string, 0, len(r.topologies))
	for k := range r.topologies {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// orderByOffsets is the shared edge-ordering walk: one slot per offset, filled
// with the edge to the node at that offset.
func orderByOffsets(m *Map, n *Node, offsets []Coordinate) []*Edge {
	ordered := make([]*Edge, len(offsets))
	for i, off := range offsets {
		target, ok := m.NodeAt(n.Coordinate().Add(off))
		if !ok {
			continue
		}
		ordered[i] = n.EdgeTo(target)
	}
	return ordered
}

// linkByOffsets creates an edge from every node to each existing node at one
// of offsets.
func linkByOffsets(m *Map, offsets []Coordinate) {
	for _, n := range m.Nodes() {
		for _, off := range offsets {
			if target, ok := m.NodeAt(n.Coordinate().Add(off)); ok {
				n.CreateEdgeTo(target)
			}
		}
	}
}
