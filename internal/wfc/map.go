package wfc

import "fmt"

// TileSource produces a fresh set of possible tiles for one node. Every call
// must return new instances; nodes mutate their tiles independently.
type TileSource interface {
	PossibleTiles() []*PossibleTile
}

// TileSourceFunc adapts a function to TileSource.
type TileSourceFunc func() []*PossibleTile

// PossibleTiles calls f.
func (f TileSourceFunc) PossibleTiles() []*PossibleTile { return f() }

// MapOptions configures a Map.
type MapOptions struct {
	Topology      Topology
	Tiles         TileSource
	Compatibility Compatibility
	Presets       []*PresetTile
	PrimarySize   int
	SecondarySize int
}

// Stats counts the work done by a generation run.
type Stats struct {
	Steps        int // nodes collapsed by the main loop
	Forced       int // presets applied
	Propagations int // node re-evaluations across all cascades
}

// Placement is one entry of the generated output.
type Placement struct {
	Coordinate Coordinate
	Tile       Tile // nil if the node was never resolved
}

// Map owns the node graph, the compatibility table and the preset placements.
type Map struct {
	topology      Topology
	tiles         TileSource
	compat        Compatibility
	presets       []*PresetTile
	primarySize   int
	secondarySize int

	nodes map[Coordinate]*Node
	order []*Node
	stats Stats
}

// NewMap creates a map with no nodes. Call CreateNodes to build the graph.
func NewMap(opts MapOptions) *Map {
	compat := opts.Compatibility
	if compat == nil {
		compat = Compatibility{}
	}
	presets := make([]*PresetTile, len(opts.Presets))
	copy(presets, opts.Presets)

	return &Map{
		topology:      opts.Topology,
		tiles:         opts.Tiles,
		compat:        compat,
		presets:       presets,
		primarySize:   opts.PrimarySize,
		secondarySize: opts.SecondarySize,
		nodes:         make(map[Coordinate]*Node),
	}
}

// Topology returns the map's topology
func (m *Map) Topology() Topology { return m.topology }

// Compatibility returns the compatibility table
func (m *Map) Compatibility() Compatibility { return m.compat }

// Stats returns counters for the work done on this map so far
func (m *Map) Stats() Stats { return m.stats }

// Presets returns the preset placements
func (m *Map) Presets() []*PresetTile {
	out := make([]*PresetTile, len(m.presets))
	copy(out, m.presets)
	return out
}

// CreateNodes builds the node graph with the map's topology. Any previous
// graph is discarded.
func (m *Map) CreateNodes() error {
	if m.topology == nil {
		return fmt.Errorf("%w: no topology configured", ErrUnknownTopology)
	}

	m.nodes = make(map[Coordinate]*Node)
	m.order = nil
	m.stats = Stats{}

	newTiles := func() []*PossibleTile { return nil }
	if m.tiles != nil {
		newTiles = m.tiles.PossibleTiles
	}

	return m.topology.Build(m, newTiles, m.primarySize, m.secondarySize)
}

// AddNode inserts a node at c with the given possible tiles. Topologies call
// this while building.
func (m *Map) AddNode(c Coordinate, possible []*PossibleTile) (*Node, error) {
	if _, exists := m.nodes[c]; exists {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateNode, c)
	}
	n := newNode(c, m, possible)
	m.nodes[c] = n
	m.order = append(m.order, n)
	return n, nil
}

// NodeAt returns the node at c.
func (m *Map) NodeAt(c Coordinate) (*Node, bool) {
	n, ok := m.nodes[c]
	return n, ok
}

// Nodes returns every node in insertion order
func (m *Map) Nodes() []*Node {
	out := make([]*Node, len(m.order))
	copy(out, m.order)
	return out
}

// Len returns the number of nodes
func (m *Map) Len() int { return len(m.order) }

// OrderEdgesFor returns n's edges in the topology's side order.
func (m *Map) OrderEdgesFor(n *Node) []*Edge {
	if m.topology == nil {
		return nil
	}
	return m.topology.OrderEdges(m, n)
}

// NextNodeToCollapse returns the uncollapsed node with the lowest entropy, or
// nil when every node is collapsed. Ties go to the node inserted first.
func (m *Map) NextNodeToCollapse() *Node {
	var next *Node
	best := 0
	for _, n := range m.order {
		if n.collapsed {
			continue
		}
		e := n.Entropy()
		if next == nil || e < best {
			next = n
			best = e
		}
	}
	return next
}

// Remaining returns the number of uncollapsed nodes
func (m *Map) Remaining() int {
	count := 0
	for _, n := range m.order {
		if !n.collapsed {
			count++
		}
	}
	return count
}

// Placements returns the resolved tile of every node in insertion order.
func (m *Map) Placements() []Placement {
	out := make([]Placement, 0, len(m.order))
	for _, n := range m.order {
		out = append(out, Placement{Coordinate: n.coordinate, Tile: n.tile})
	}
	return out
}
