package wfc

import "math/rand"

// sequenceSource replays fixed values, reduced modulo n.
type sequenceSource struct {
	values []int
	pos    int
}

func (s *sequenceSource) Intn(n int) int {
	if len(s.values) == 0 {
		return 0
	}
	v := s.values[s.pos%len(s.values)]
	s.pos++
	return v % n
}

func seeded(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// tileDef describes a possible tile for test maps.
type tileDef struct {
	name        string
	connections []string
	probability int
	modifiers   map[string]int
}

func sourceOf(defs ...tileDef) TileSource {
	return TileSourceFunc(func() []*PossibleTile {
		tiles := make([]*PossibleTile, 0, len(defs))
		for _, s := range defs {
			tiles = append(tiles, NewPossibleTile(s.name, nil, s.connections, s.modifiers, s.probability))
		}
		return tiles
	})
}

func repeat(label string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = label
	}
	return out
}

// pairTopology is two nodes, (0,0,0) and (1,0,0), each with a single side
// facing the other.
type pairTopology struct{}

func (pairTopology) Key() string { return "Pair" }
func (pairTopology) Sides() int  { return 1 }

func (pairTopology) Build(m *Map, newTiles func() []*PossibleTile, primarySize, secondarySize int) error {
	a, err := m.AddNode(Coordinate{}, newTiles())
	if err != nil {
		return err
	}
	b, err := m.AddNode(Coordinate{X: 1}, newTiles())
	if err != nil {
		return err
	}
	a.CreateEdgeTo(b)
	return nil
}

func (pairTopology) OrderEdges(m *Map, n *Node) []*Edge {
	edges := n.Edges()
	if len(edges) == 0 {
		return []*Edge{nil}
	}
	return []*Edge{edges[0]}
}

// openCompat lets every label face every label.
func openCompat(labels ...string) Compatibility {
	table := make(map[string][]string, len(labels))
	for _, l := range labels {
		table[l] = labels
	}
	return NewCompatibility(table)
}

// strictCompat lets each label face only itself.
func strictCompat(labels ...string) Compatibility {
	table := make(map[string][]string, len(labels))
	for _, l := range labels {
		table[l] = []string{l}
	}
	return NewCompatibility(table)
}
