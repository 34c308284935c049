package wfc

import (
	"fmt"
	"sort"

	"github.com/zyedidia/generic/mapset"
)

// Tile is the read-only view of a tile that can be placed on a node. Both
// preset tiles and negotiable possible tiles satisfy it.
type Tile interface {
	// Name identifies the tile definition. Several instances share a name.
	Name() string
	// Tags returns the descriptive tags in lexical order.
	Tags() []string
	// Connections returns the connection label for each side, in the side
	// order used by the map's topology, with the current rotation applied.
	Connections() []string
	// Rotation is the number of one-step rotations applied, in [0, Sides()).
	Rotation() int
	// Sides is the number of connection labels.
	Sides() int
	// ProbabilityModifiers maps tile names to the probability delta applied to
	// neighbouring possible tiles when this tile is placed.
	ProbabilityModifiers() map[string]int
}

// baseTile holds the fields shared by every tile kind.
type baseTile struct {
	name        string
	tags        mapset.Set[string]
	connections []string
	rotation    int
	modifiers   map[string]int
}

func newBaseTile(name string, tags []string, connections []string, modifiers map[string]int) baseTile {
	conns := make([]string, len(connections))
	copy(conns, connections)

	mods := make(map[string]int, len(modifiers))
	for k, v := range modifiers {
		mods[k] = v
	}

	return baseTile{
		name:        name,
		tags:        mapset.Of(tags...),
		connections: conns,
		modifiers:   mods,
	}
}

func (t *baseTile) Name() string { return t.name }
func (t *baseTile) Rotation() int { return t.rotation }
func (t *baseTile) Sides() int { return len(t.connections) }

func (t *baseTile) Tags() []string {
	out := make([]string, 0, t.tags.Size())
	t.tags.Each(func(tag string) {
		out = append(out, tag)
	})
	sort.Strings(out)
	return out
}

// HasTag reports whether the tile carries tag.
func (t *baseTile) HasTag(tag string) bool {
	return t.tags.Has(tag)
}

func (t *baseTile) Connections() []string {
	out := make([]string, len(t.connections))
	copy(out, t.connections)
	return out
}

func (t *baseTile) ProbabilityModifiers() map[string]int {
	out := make(map[string]int, len(t.modifiers))
	for k, v := range t.modifiers {
		out[k] = v
	}
	return out
}

// shiftLeft moves every label one side towards index 0, wrapping the first
// label to the end.
func (t *baseTile) shiftLeft() {
	if len(t.connections) == 0 {
		return
	}
	first := t.connections[0]
	copy(t.connections, t.connections[1:])
	t.connections[len(t.connections)-1] = first
	t.rotation = (t.rotation + 1) % len(t.connections)
}

// PresetTile is a tile pinned to a coordinate with a fixed rotation. It is
// placed before generation starts and is never rotated afterwards.
type PresetTile struct {
	baseTile
	coordinate Coordinate
}

// NewPresetTile creates a preset tile. The connection labels are given in
// their unrotated order and rotated to rotation here.
func NewPresetTile(name string, tags []string, connections []string, modifiers map[string]int, coordinate Coordinate, rotation int) (*PresetTile, error) {
	if rotation < 0 || rotation >= len(connections) {
		return nil, fmt.Errorf("%w: preset %q rotation %d, valid 0-%d", ErrRotationOutOfRange, name, rotation, len(connections)-1)
	}

	p := &PresetTile{
		baseTile:   newBaseTile(name, tags, connections, modifiers),
		coordinate: coordinate,
	}
	for p.rotation != rotation {
		p.shiftLeft()
	}
	return p, nil
}

// Coordinate returns where the preset is placed.
func (p *PresetTile) Coordinate() Coordinate {
	return p.coordinate
}

// PossibleTile is a candidate for an uncollapsed node. Its rotation and set of
// valid rotations change during propagation until it is locked.
type PossibleTile struct {
	baseTile
	probability    int
	validRotations mapset.Set[int]
	locked         bool
}

// NewPossibleTile creates a candidate tile with every rotation considered valid.
func NewPossibleTile(name string, tags []string, connections []string, modifiers map[string]int, probability int) *PossibleTile {
	t := &PossibleTile{
		baseTile:       newBaseTile(name, tags, connections, modifiers),
		probability:    probability,
		validRotations: mapset.New[int](),
	}
	for i := range connections {
		t.validRotations.Put(i)
	}
	return t
}

// Probability is the current selection weight. It may be zero or negative.
func (t *PossibleTile) Probability() int {
	return t.probability
}

// Locked reports whether the rotation is permanent.
func (t *PossibleTile) Locked() bool {
	return t.locked
}

// ValidRotations returns the rotations still considered valid, ascending.
func (t *PossibleTile) ValidRotations() []int {
	out := make([]int, 0, t.validRotations.Size())
	t.validRotations.Each(func(r int) {
		out = append(out, r)
	})
	sort.Ints(out)
	return out
}

// Entropy is the number of valid rotations. Lower means more constrained.
func (t *PossibleTile) Entropy() int {
	return t.validRotations.Size()
}

// ModifyProbability adds delta to the probability. A non-positive result keeps
// the tile out of weighted selection but does not remove it from its node.
func (t *PossibleTile) ModifyProbability(delta int) {
	t.probability += delta
}

// Rotate turns the tile by one side. Returns false if the rotation is locked.
func (t *PossibleTile) Rotate() bool {
	if t.locked || len(t.connections) == 0 {
		return false
	}
	t.shiftLeft()
	return true
}

// RotateTo rotates until Rotation() equals target. Returns false if locked.
func (t *PossibleTile) RotateTo(target int) (bool, error) {
	if target < 0 || target >= len(t.connections) {
		return false, fmt.Errorf("%w: tile %q rotation %d, valid 0-%d", ErrRotationOutOfRange, t.name, target, len(t.connections)-1)
	}
	if t.locked {
		return false, nil
	}
	for t.rotation != target {
		if !t.Rotate() {
			return false, nil
		}
	}
	return true, nil
}

// RotateToAndLock rotates to target and makes the rotation permanent.
// Returns false if the tile was already locked.
func (t *PossibleTile) RotateToAndLock(target int) (bool, error) {
	if t.locked {
		return false, nil
	}
	ok, err := t.RotateTo(target)
	if err != nil || !ok {
		return false, err
	}
	t.locked = true
	return true, nil
}

// FindValidRotations tries every rotation of the tile against what each
// neighbour currently offers across orderedEdges. It replaces the set of valid
// rotations with the ones that fit and returns, per side, every label the tile
// could present there across those rotations. Nil edges are skipped. The tile
// ends at the rotation it started at.
func (t *PossibleTile) FindValidRotations(node *Node, orderedEdges []*Edge, compat Compatibility) ([]LabelSet, error) {
	sides := len(t.connections)
	if len(orderedEdges) != sides {
		return nil, fmt.Errorf("%w: %d edges, tile %q has %d sides", ErrSideMismatch, len(orderedEdges), t.name, sides)
	}

	possible := make([]LabelSet, sides)
	for i := range possible {
		possible[i] = mapset.New[string]()
	}

	t.validRotations.Clear()

	record := func() {
		if !t.fits(node, orderedEdges, compat) {
			return
		}
		t.validRotations.Put(t.rotation)
		for side, label := range t.connections {
			possible[side].Put(label)
		}
	}

	if t.locked {
		record()
		return possible, nil
	}

	initial := t.rotation
	for {
		record()
		t.Rotate()
		if t.rotation == initial {
			break
		}
	}

	return possible, nil
}

// fits checks the current rotation against every present neighbour.
func (t *PossibleTile) fits(node *Node, orderedEdges []*Edge, compat Compatibility) bool {
	for side, edge := range orderedEdges {
		if edge == nil {
			continue
		}
		offered, ok := edge.ConnectionsForOther(node)
		if !ok {
			return false
		}
		if !compat.Allows(t.connections[side], offered) {
			return false
		}
	}
	return true
}
