package wfc

import (
	"errors"
	"reflect"
	"testing"
)

func TestPossibleTileRotate(t *testing.T) {
	tile := NewPossibleTile("road", nil, []string{"a", "b", "c", "d", "e", "f"}, nil, 1)

	if !tile.Rotate() {
		t.Fatal("Rotate() on an unlocked tile should succeed")
	}
	if tile.Rotation() != 1 {
		t.Errorf("Rotation() = %d, want 1", tile.Rotation())
	}
	want := []string{"b", "c", "d", "e", "f", "a"}
	if got := tile.Connections(); !reflect.DeepEqual(got, want) {
		t.Errorf("Connections() = %v, want %v", got, want)
	}
}

func TestPossibleTileFullCycleRestoresLabels(t *testing.T) {
	tests := []struct {
		name        string
		connections []string
	}{
		{"hex", []string{"a", "b", "c", "d", "e", "f"}},
		{"square", []string{"n", "e", "s", "w"}},
		{"single", []string{"x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tile := NewPossibleTile(tt.name, nil, tt.connections, nil, 1)
			for i := 0; i < len(tt.connections); i++ {
				tile.Rotate()
			}
			if tile.Rotation() != 0 {
				t.Errorf("Rotation() after full cycle = %d, want 0", tile.Rotation())
			}
			if got := tile.Connections(); !reflect.DeepEqual(got, tt.connections) {
				t.Errorf("Connections() after full cycle = %v, want %v", got, tt.connections)
			}
		})
	}
}

func TestPossibleTileRotateTo(t *testing.T) {
	tile := NewPossibleTile("corner", nil, []string{"a", "b", "c", "d"}, nil, 1)

	ok, err := tile.RotateTo(3)
	if err != nil || !ok {
		t.Fatalf("RotateTo(3) = %v, %v", ok, err)
	}
	if got := tile.Connections(); !reflect.DeepEqual(got, []string{"d", "a", "b", "c"}) {
		t.Errorf("Connections() = %v", got)
	}

	ok, err = tile.RotateTo(1)
	if err != nil || !ok {
		t.Fatalf("RotateTo(1) = %v, %v", ok, err)
	}
	if tile.Rotation() != 1 {
		t.Errorf("Rotation() = %d, want 1", tile.Rotation())
	}
}

func TestPossibleTileRotateToOutOfRange(t *testing.T) {
	tile := NewPossibleTile("corner", nil, []string{"a", "b", "c", "d"}, nil, 1)

	for _, target := range []int{-1, 4, 10} {
		if _, err := tile.RotateTo(target); !errors.Is(err, ErrRotationOutOfRange) {
			t.Errorf("RotateTo(%d) error = %v, want ErrRotationOutOfRange", target, err)
		}
	}
	if tile.Rotation() != 0 {
		t.Errorf("failed RotateTo changed the rotation to %d", tile.Rotation())
	}
}

func TestPossibleTileLockIsPermanent(t *testing.T) {
	tile := NewPossibleTile("corner", nil, []string{"a", "b", "c", "d"}, nil, 1)

	ok, err := tile.RotateToAndLock(2)
	if err != nil || !ok {
		t.Fatalf("RotateToAndLock(2) = %v, %v", ok, err)
	}
	if !tile.Locked() {
		t.Fatal("tile should be locked")
	}

	if tile.Rotate() {
		t.Error("Rotate() on a locked tile should fail")
	}
	if ok, _ := tile.RotateTo(0); ok {
		t.Error("RotateTo on a locked tile should fail")
	}
	if ok, _ := tile.RotateToAndLock(1); ok {
		t.Error("RotateToAndLock on a locked tile should fail")
	}
	if tile.Rotation() != 2 {
		t.Errorf("locked rotation changed to %d", tile.Rotation())
	}
	if got := tile.Connections(); !reflect.DeepEqual(got, []string{"c", "d", "a", "b"}) {
		t.Errorf("locked connections changed to %v", got)
	}
}

func TestNewPossibleTileStartsWithEveryRotation(t *testing.T) {
	tile := NewPossibleTile("plain", nil, repeat("a", 6), nil, 3)

	if tile.Entropy() != 6 {
		t.Errorf("Entropy() = %d, want 6", tile.Entropy())
	}
	if got := tile.ValidRotations(); !reflect.DeepEqual(got, []int{0, 1, 2, 3, 4, 5}) {
		t.Errorf("ValidRotations() = %v", got)
	}
	if tile.Probability() != 3 {
		t.Errorf("Probability() = %d, want 3", tile.Probability())
	}
}

func TestModifyProbability(t *testing.T) {
	tile := NewPossibleTile("plain", nil, repeat("a", 6), nil, 3)

	tile.ModifyProbability(-5)
	if tile.Probability() != -2 {
		t.Errorf("Probability() = %d, want -2", tile.Probability())
	}
	tile.ModifyProbability(4)
	if tile.Probability() != 2 {
		t.Errorf("Probability() = %d, want 2", tile.Probability())
	}
}

func TestTileCopiesInputs(t *testing.T) {
	conns := []string{"a", "b", "c", "d"}
	mods := map[string]int{"forest": 2}
	tile := NewPossibleTile("plain", []string{"open", "flat"}, conns, mods, 1)

	conns[0] = "z"
	mods["forest"] = 99

	if tile.Connections()[0] != "a" {
		t.Error("tile should not share the caller's connection slice")
	}
	if tile.ProbabilityModifiers()["forest"] != 2 {
		t.Error("tile should not share the caller's modifier map")
	}

	tile.Connections()[1] = "z"
	if tile.Connections()[1] != "b" {
		t.Error("Connections() should return a copy")
	}

	if got := tile.Tags(); !reflect.DeepEqual(got, []string{"flat", "open"}) {
		t.Errorf("Tags() = %v, want sorted tags", got)
	}
	if !tile.HasTag("open") || tile.HasTag("water") {
		t.Error("HasTag() reported the wrong membership")
	}
}

func TestNewPresetTileAppliesRotation(t *testing.T) {
	preset, err := NewPresetTile("gate", nil, []string{"a", "b", "c", "d"}, nil, Coordinate{X: 1}, 2)
	if err != nil {
		t.Fatalf("NewPresetTile() failed: %v", err)
	}

	if preset.Rotation() != 2 {
		t.Errorf("Rotation() = %d, want 2", preset.Rotation())
	}
	if got := preset.Connections(); !reflect.DeepEqual(got, []string{"c", "d", "a", "b"}) {
		t.Errorf("Connections() = %v", got)
	}
	if preset.Coordinate() != (Coordinate{X: 1}) {
		t.Errorf("Coordinate() = %v", preset.Coordinate())
	}
}

func TestNewPresetTileRotationOutOfRange(t *testing.T) {
	for _, rotation := range []int{-1, 6, 7} {
		_, err := NewPresetTile("gate", nil, repeat("a", 6), nil, Coordinate{}, rotation)
		if !errors.Is(err, ErrRotationOutOfRange) {
			t.Errorf("rotation %d: error = %v, want ErrRotationOutOfRange", rotation, err)
		}
	}
}

func TestFindValidRotationsSideMismatch(t *testing.T) {
	tile := NewPossibleTile("plain", nil, repeat("a", 6), nil, 1)
	node := newNode(Coordinate{}, nil, nil)

	_, err := tile.FindValidRotations(node, make([]*Edge, 4), strictCompat("a"))
	if !errors.Is(err, ErrSideMismatch) {
		t.Errorf("error = %v, want ErrSideMismatch", err)
	}
}

func TestFindValidRotationsAgainstNeighbour(t *testing.T) {
	m := NewMap(MapOptions{Topology: HexRing{}, Compatibility: strictCompat("a", "b"), PrimarySize: 1})
	if err := m.CreateNodes(); err != nil {
		t.Fatalf("CreateNodes() failed: %v", err)
	}

	centre, _ := m.NodeAt(Coordinate{X: 1, Y: 1, Z: -2})
	ne, _ := m.NodeAt(Coordinate{X: 2, Y: 0, Z: -2})

	// The centre sits on the neighbour's south-west side (index 3).
	edge := centre.EdgeTo(ne)
	edge.SetConnectionsFor(centre, NewLabelSet("a"))

	tile := NewPossibleTile("half", nil, []string{"a", "a", "a", "b", "b", "b"}, nil, 1)
	sides, err := tile.FindValidRotations(ne, ne.OrderedEdges(), m.Compatibility())
	if err != nil {
		t.Fatalf("FindValidRotations() failed: %v", err)
	}

	if got := tile.ValidRotations(); !reflect.DeepEqual(got, []int{3, 4, 5}) {
		t.Errorf("ValidRotations() = %v, want [3 4 5]", got)
	}
	if tile.Rotation() != 0 {
		t.Errorf("tile should end at its starting rotation, got %d", tile.Rotation())
	}
	if got := SortedLabels(sides[3]); !reflect.DeepEqual(got, []string{"a"}) {
		t.Errorf("side 3 labels = %v, want [a]", got)
	}
	if got := SortedLabels(sides[0]); !reflect.DeepEqual(got, []string{"b"}) {
		t.Errorf("side 0 labels = %v, want [b]", got)
	}
	if got := SortedLabels(sides[1]); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("side 1 labels = %v, want [a b]", got)
	}
}

func TestFindValidRotationsLockedTileChecksOnlyItsRotation(t *testing.T) {
	m := NewMap(MapOptions{Topology: HexRing{}, Compatibility: strictCompat("a", "b"), PrimarySize: 1})
	if err := m.CreateNodes(); err != nil {
		t.Fatalf("CreateNodes() failed: %v", err)
	}
	centre, _ := m.NodeAt(Coordinate{X: 1, Y: 1, Z: -2})

	tile := NewPossibleTile("half", nil, []string{"a", "a", "a", "b", "b", "b"}, nil, 1)
	if _, err := tile.RotateToAndLock(4); err != nil {
		t.Fatalf("RotateToAndLock() failed: %v", err)
	}

	if _, err := tile.FindValidRotations(centre, centre.OrderedEdges(), m.Compatibility()); err != nil {
		t.Fatalf("FindValidRotations() failed: %v", err)
	}
	if got := tile.ValidRotations(); !reflect.DeepEqual(got, []int{4}) {
		t.Errorf("ValidRotations() = %v, want [4]", got)
	}
}
