package wfc

import "fmt"

// Coordinate addresses a node. No two nodes on a map share a coordinate, so it
// also serves as the node's identity.
type Coordinate struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
	Z int `json:"z" yaml:"z"`
}

// Add returns the component-wise sum of c and o.
func (c Coordinate) Add(o Coordinate) Coordinate {
	return Coordinate{X: c.X + o.X, Y: c.Y + o.Y, Z: c.Z + o.Z}
}

// Less orders coordinates by X, then Y, then Z.
func (c Coordinate) Less(o Coordinate) bool {
	if c.X != o.X {
		return c.X < o.X
	}
	if c.Y != o.Y {
		return c.Y < o.Y
	}
	return c.Z < o.Z
}

func (c Coordinate) String() string {
	return fmt.Sprintf("(%d, %d, %d)", c.X, c.Y, c.Z)
}

// Direction represents a cardinal direction on a square grid
type Direction int

const (
	North Direction = iota
	East
	South
	West
)

// String returns the string representation of a Direction
func (d Direction) String() string {
	switch d {
	case North:
		return "north"
	case East:
		return "east"
	case South:
		return "south"
	case West:
		return "west"
	default:
		return "unknown"
	}
}

// Opposite returns the opposite direction
func (d Direction) Opposite() Direction {
	switch d {
	case North:
		return South
	case East:
		return West
	case South:
		return North
	case West:
		return East
	default:
		return d
	}
}

// Offset returns the coordinate step for moving one cell in d.
func (d Direction) Offset() Coordinate {
	switch d {
	case North:
		return Coordinate{Y: -1}
	case East:
		return Coordinate{X: 1}
	case South:
		return Coordinate{Y: 1}
	case West:
		return Coordinate{X: -1}
	default:
		return Coordinate{}
	}
}

// AllDirections returns all four cardinal directions in side order
func AllDirections() []Direction {
	return []Direction{North, East, South, West}
}

// HexDirection is one of the six neighbour directions of a pointy-top hex.
type HexDirection int

const (
	HexNorthEast HexDirection = iota
	HexEast
	HexSouthEast
	HexSouthWest
	HexWest
	HexNorthWest
)

var hexOffsets = [...]Coordinate{
	HexNorthEast: {X: 1, Y: -1, Z: 0},
	HexEast:      {X: 1, Y: 0, Z: -1},
	HexSouthEast: {X: 0, Y: 1, Z: -1},
	HexSouthWest: {X: -1, Y: 1, Z: 0},
	HexWest:      {X: -1, Y: 0, Z: 1},
	HexNorthWest: {X: 0, Y: -1, Z: 1},
}

// String returns the string representation of a HexDirection
func (d HexDirection) String() string {
	switch d {
	case HexNorthEast:
		return "north_east"
	case HexEast:
		return "east"
	case HexSouthEast:
		return "south_east"
	case HexSouthWest:
		return "south_west"
	case HexWest:
		return "west"
	case HexNorthWest:
		return "north_west"
	default:
		return "unknown"
	}
}

// Opposite returns the direction three steps around the hex.
func (d HexDirection) Opposite() HexDirection {
	return (d + 3) % 6
}

// Offset returns the cube-coordinate step for d.
func (d HexDirection) Offset() Coordinate {
	if d < 0 || int(d) >= len(hexOffsets) {
		return Coordinate{}
	}
	return hexOffsets[d]
}

// AllHexDirections returns the six hex directions in side order.
func AllHexDirections() []HexDirection {
	return []HexDirection{HexNorthEast, HexEast, HexSouthEast, HexSouthWest, HexWest, HexNorthWest}
}
