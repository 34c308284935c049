package wfc

// SquareGrid is a width x height grid of square cells with four sides in
// North, East, South, West order. Y grows southwards and Z is always 0.
type SquareGrid struct{}

// Key returns the shape name of the square grid layout
func (SquareGrid) Key() string { return "Grid" }

// Sides returns four, one per cardinal direction
func (SquareGrid) Sides() int { return 4 }

// Build creates primarySize columns and secondarySize rows. A non-positive
// secondarySize makes the grid square.
func (SquareGrid) Build(m *Map, newTiles func() []*PossibleTile, primarySize, secondarySize int) error {
	width, height := primarySize, secondarySize
	if height <= 0 {
		height = width
	}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if _, err := m.AddNode(Coordinate{X: x, Y: y}, newTiles()); err != nil {
				return err
			}
		}
	}

	linkByOffsets(m, gridOffsets())
	return nil
}

// OrderEdges returns n's edges in North, East, South, West order
func (SquareGrid) OrderEdges(m *Map, n *Node) []*Edge {
	return orderByOffsets(m, n, gridOffsets())
}

func gridOffsets() []Coordinate {
	dirs := AllDirections()
	offsets := make([]Coordinate, len(dirs))
	for i, d := range dirs {
		offsets[i] = d.Offset()
	}
	return offsets
}
