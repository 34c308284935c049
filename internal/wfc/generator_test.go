package wfc

import (
	"errors"
	"testing"
)

// roadCompat forbids two b labels from facing each other.
func roadCompat() Compatibility {
	return NewCompatibility(map[string][]string{
		"a": {"a", "b"},
		"b": {"a"},
	})
}

func roadTiles() TileSource {
	return sourceOf(
		tileDef{name: "plain", connections: repeat("a", 6), probability: 1},
		tileDef{name: "mixed", connections: []string{"a", "b", "a", "b", "a", "b"}, probability: 1},
	)
}

func sideFacing(n *Node, e *Edge) int {
	for i, candidate := range n.OrderedEdges() {
		if candidate == e {
			return i
		}
	}
	return -1
}

// assertConsistent checks every pair of adjacent resolved tiles.
func assertConsistent(t *testing.T, m *Map) {
	t.Helper()
	compat := m.Compatibility()
	for _, n := range m.Nodes() {
		if !n.Collapsed() || n.Tile() == nil {
			t.Errorf("node %s is not resolved", n.Coordinate())
			continue
		}
		for side, e := range n.OrderedEdges() {
			if e == nil {
				continue
			}
			other, _ := e.OtherNode(n)
			otherSide := sideFacing(other, e)
			if otherSide < 0 || other.Tile() == nil {
				t.Errorf("node %s side %d has no resolved counterpart", n.Coordinate(), side)
				continue
			}
			mine := n.Tile().Connections()[side]
			theirs := other.Tile().Connections()[otherSide]
			if !compat.CanConnect(mine, theirs) {
				t.Errorf("%s side %d (%s) cannot face %s side %d (%s)",
					n.Coordinate(), side, mine, other.Coordinate(), otherSide, theirs)
			}
		}
	}
}

func TestGenerateHexRing(t *testing.T) {
	for seed := int64(1); seed <= 5; seed++ {
		m := NewMap(MapOptions{
			Topology:      HexRing{},
			Tiles:         roadTiles(),
			Compatibility: roadCompat(),
			PrimarySize:   1,
		})

		if err := NewGenerator(seeded(seed)).Generate(m); err != nil {
			t.Fatalf("seed %d: Generate() failed: %v", seed, err)
		}

		if m.Len() != 7 {
			t.Fatalf("seed %d: Len() = %d, want 7", seed, m.Len())
		}
		if m.Remaining() != 0 {
			t.Errorf("seed %d: Remaining() = %d, want 0", seed, m.Remaining())
		}
		if m.Stats().Steps != 7 {
			t.Errorf("seed %d: Steps = %d, want 7", seed, m.Stats().Steps)
		}
		assertConsistent(t, m)
	}
}

func TestGenerateSameSeedSameResult(t *testing.T) {
	run := func() []Placement {
		m := NewMap(MapOptions{
			Topology:      HexRing{},
			Tiles:         roadTiles(),
			Compatibility: roadCompat(),
			PrimarySize:   2,
		})
		if err := NewGenerator(seeded(42)).Generate(m); err != nil {
			t.Fatalf("Generate() failed: %v", err)
		}
		return m.Placements()
	}

	first, second := run(), run()
	if len(first) != len(second) {
		t.Fatalf("placement counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		a, b := first[i], second[i]
		if a.Coordinate != b.Coordinate || a.Tile.Name() != b.Tile.Name() || a.Tile.Rotation() != b.Tile.Rotation() {
			t.Errorf("placement %d differs: %s %s/%d vs %s %s/%d", i,
				a.Coordinate, a.Tile.Name(), a.Tile.Rotation(),
				b.Coordinate, b.Tile.Name(), b.Tile.Rotation())
		}
	}
}

func TestGeneratePresetPrecedence(t *testing.T) {
	first := mustPreset(t, "plain", repeat("a", 6), nil, hexCentre, 0)
	second := mustPreset(t, "mixed", []string{"a", "b", "a", "b", "a", "b"}, nil, hexCentre, 1)
	offMap := mustPreset(t, "plain", repeat("a", 6), nil, Coordinate{X: 40, Y: 40, Z: -80}, 0)

	m := NewMap(MapOptions{
		Topology:      HexRing{},
		Tiles:         roadTiles(),
		Compatibility: roadCompat(),
		Presets:       []*PresetTile{first, nil, second, offMap},
		PrimarySize:   1,
	})

	if err := NewGenerator(seeded(3)).Generate(m); err != nil {
		t.Fatalf("Generate() failed: %v", err)
	}

	centre, _ := m.NodeAt(hexCentre)
	if centre.Tile() != Tile(first) {
		t.Errorf("centre tile = %v, want the first preset", centre.Tile().Name())
	}
	if m.Stats().Forced != 1 {
		t.Errorf("Forced = %d, want 1", m.Stats().Forced)
	}
	if m.Stats().Steps != 6 {
		t.Errorf("Steps = %d, want 6", m.Stats().Steps)
	}
	assertConsistent(t, m)
}

func TestGenerateContradictionFromPreset(t *testing.T) {
	preset := mustPreset(t, "X", repeat("x", 6), nil, hexCentre, 0)
	m := NewMap(MapOptions{
		Topology:      HexRing{},
		Tiles:         sourceOf(tileDef{name: "Y", connections: repeat("y", 6), probability: 1}),
		Compatibility: strictCompat("x", "y"),
		Presets:       []*PresetTile{preset},
		PrimarySize:   1,
	})

	err := NewGenerator(seeded(1)).Generate(m)
	var genErr *GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("Generate() error = %v, want *GenerationError", err)
	}
	if genErr.Kind != FailureContradiction || genErr.Coordinate != hexNorthEast {
		t.Errorf("got %v at %v, want contradiction at %v", genErr.Kind, genErr.Coordinate, hexNorthEast)
	}
	if !errors.Is(err, ErrGenerationFailed) {
		t.Error("error should match ErrGenerationFailed")
	}
}

func TestGenerateContradictionOnPair(t *testing.T) {
	preset := mustPreset(t, "X", []string{"x"}, nil, Coordinate{}, 0)
	m := NewMap(MapOptions{
		Topology:      pairTopology{},
		Tiles:         sourceOf(tileDef{name: "Y", connections: []string{"y"}, probability: 1}),
		Compatibility: strictCompat("x", "y"),
		Presets:       []*PresetTile{preset},
	})

	err := NewGenerator(seeded(1)).Generate(m)
	var genErr *GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("Generate() error = %v, want *GenerationError", err)
	}
	if genErr.Coordinate != (Coordinate{X: 1}) {
		t.Errorf("Coordinate = %v, want (1, 0, 0)", genErr.Coordinate)
	}
}

func TestGenerateNoWeightedChoice(t *testing.T) {
	m := NewMap(MapOptions{
		Topology:      HexRing{},
		Tiles:         sourceOf(tileDef{name: "plain", connections: repeat("a", 6), probability: 0}),
		Compatibility: strictCompat("a"),
		PrimarySize:   1,
	})

	err := NewGenerator(seeded(1)).Generate(m)
	var genErr *GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("Generate() error = %v, want *GenerationError", err)
	}
	if genErr.Kind != FailureNoWeightedChoice {
		t.Errorf("Kind = %v, want no_weighted_choice", genErr.Kind)
	}
	// Every node ties on entropy, so the first inserted node is tried first.
	if want := (Coordinate{X: 0, Y: 1, Z: -1}); genErr.Coordinate != want {
		t.Errorf("Coordinate = %v, want %v", genErr.Coordinate, want)
	}
}

func TestGenerateSquareGrid(t *testing.T) {
	m := NewMap(MapOptions{
		Topology:      SquareGrid{},
		Tiles:         sourceOf(tileDef{name: "floor", connections: repeat("a", 4), probability: 1}),
		Compatibility: strictCompat("a"),
		PrimarySize:   3,
		SecondarySize: 2,
	})

	if err := NewGenerator(seeded(9)).Generate(m); err != nil {
		t.Fatalf("Generate() failed: %v", err)
	}
	for _, p := range m.Placements() {
		if p.Tile == nil || p.Tile.Name() != "floor" {
			t.Errorf("%s resolved to %v", p.Coordinate, p.Tile)
		}
	}
	assertConsistent(t, m)
}

func TestGenerateNotifiesObservers(t *testing.T) {
	preset := mustPreset(t, "plain", repeat("a", 6), nil, hexCentre, 0)
	m := NewMap(MapOptions{
		Topology:      HexRing{},
		Tiles:         roadTiles(),
		Compatibility: roadCompat(),
		Presets:       []*PresetTile{preset},
		PrimarySize:   1,
	})

	var events []Event
	gen := NewGenerator(seeded(5), WithObserver(ObserverFunc(func(e Event) {
		events = append(events, e)
	})), WithObserver(nil))

	if err := gen.Generate(m); err != nil {
		t.Fatalf("Generate() failed: %v", err)
	}

	if len(events) != 7 {
		t.Fatalf("got %d events, want 7", len(events))
	}
	if !events[0].Forced || events[0].Coordinate != hexCentre || events[0].Tile != "plain" {
		t.Errorf("first event = %+v, want the forced centre preset", events[0])
	}
	for i, e := range events {
		if e.Step != i+1 {
			t.Errorf("event %d has step %d", i, e.Step)
		}
		if i > 0 && e.Forced {
			t.Errorf("event %d should not be forced", i)
		}
		if e.Remaining != 6-i {
			t.Errorf("event %d remaining = %d, want %d", i, e.Remaining, 6-i)
		}
	}
}

func TestGenerateRebuildsGraph(t *testing.T) {
	m := NewMap(MapOptions{
		Topology:      HexRing{},
		Tiles:         roadTiles(),
		Compatibility: roadCompat(),
		PrimarySize:   1,
	})
	gen := NewGenerator(seeded(11))

	if err := gen.Generate(m); err != nil {
		t.Fatalf("first Generate() failed: %v", err)
	}
	if err := gen.Generate(m); err != nil {
		t.Fatalf("second Generate() failed: %v", err)
	}
	if m.Stats().Steps != 7 {
		t.Errorf("Steps = %d, want 7 after a fresh run", m.Stats().Steps)
	}
}
