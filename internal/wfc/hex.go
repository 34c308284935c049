package wfc

// HexRing lays pointy-top hexes out in concentric rings around a centre hex.
// Coordinates are cube coordinates shifted by the ring count so X and Y are
// never negative; Z = -X-Y. Side order is NE, E, SE, SW, W, NW.
type HexRing struct{}

// Key returns the shape name of the hex ring layout
func (HexRing) Key() string { return "Ring" }

// Sides returns six, one per hex neighbour
func (HexRing) Sides() int { return 6 }

// Build creates every hex within primarySize steps of the centre. secondarySize
// is unused.
func (HexRing) Build(m *Map, newTiles func() []*PossibleTile, primarySize, secondarySize int) error {
	if primarySize < 0 {
		primarySize = 0
	}

	for q := -primarySize; q <= primarySize; q++ {
		r1 := max(-primarySize, -q-primarySize)
		r2 := min(primarySize, -q+primarySize)
		for r := r1; r <= r2; r++ {
			x := q + primarySize
			y := r + primarySize
			if _, err := m.AddNode(Coordinate{X: x, Y: y, Z: -x - y}, newTiles()); err != nil {
				return err
			}
		}
	}

	linkByOffsets(m, hexOffsets[:])
	return nil
}

// OrderEdges returns n's edges in NE, E, SE, SW, W, NW order
func (HexRing) OrderEdges(m *Map, n *Node) []*Edge {
	return orderByOffsets(m, n, hexOffsets[:])
}

// HexRingNodeCount returns the number of hexes in a ring layout of the given size.
func HexRingNodeCount(primarySize int) int {
	if primarySize < 0 {
		return 1
	}
	return 3*primarySize*(primarySize+1) + 1
}
