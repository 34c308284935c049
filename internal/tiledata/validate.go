package tiledata

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/lawnchairsociety/tilegen/internal/wfc"
)

// ErrInvalidDefinition is matched by every *ValidationError.
var ErrInvalidDefinition = errors.New("tiledata: invalid definition")

// ValidationError lists every problem found in a definition.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("tiledata: invalid definition: %s", strings.Join(e.Issues, "; "))
}

// Unwrap lets callers match with errors.Is(err, ErrInvalidDefinition).
func (e *ValidationError) Unwrap() error {
	return ErrInvalidDefinition
}

// Validate checks a definition against the topologies in reg. It reports all
// problems at once rather than stopping at the first.
func Validate(def *Definition, reg *wfc.Registry) error {
	var issues []string
	addf := func(format string, args ...any) {
		issues = append(issues, fmt.Sprintf(format, args...))
	}

	sides := 0
	topo, err := reg.Lookup(def.Map.MapShape)
	if err != nil {
		addf("unknown map shape %q (known: %s)", def.Map.MapShape, strings.Join(reg.Keys(), ", "))
	} else {
		sides = topo.Sides()
	}

	if def.Map.PrimarySize < 0 {
		addf("primary size %d is negative", def.Map.PrimarySize)
	}
	if topo != nil && topo.Key() == (wfc.SquareGrid{}).Key() && def.Map.PrimarySize == 0 {
		addf("grid maps need a primary size of at least 1")
	}

	if len(def.Tiles) == 0 {
		addf("no tiles defined")
	}
	if len(def.Connections) == 0 {
		addf("connection table is empty")
	}

	compat := def.Compatibility()
	for label, allowed := range def.Connections {
		for _, other := range allowed {
			if _, ok := compat[other]; !ok {
				addf("connection %q allows undefined label %q", label, other)
			}
		}
	}

	seen := make(map[string]bool, len(def.Tiles))
	selectable := false
	for _, t := range def.Tiles {
		if t.Name == "" {
			addf("tile with no name")
			continue
		}
		if seen[t.Name] {
			addf("tile %q defined more than once", t.Name)
		}
		seen[t.Name] = true

		if t.Probability > 0 {
			selectable = true
		}
		if sides > 0 && len(t.Connections) != sides {
			addf("tile %q has %d connections, %s maps need %d", t.Name, len(t.Connections), def.Map.MapShape, sides)
		}
		for _, label := range t.Connections {
			if _, ok := compat[label]; !ok {
				addf("tile %q uses label %q missing from the connection table", t.Name, label)
			}
		}
	}
	if len(def.Tiles) > 0 && !selectable {
		addf("no tile has a positive probability")
	}

	for _, t := range def.Tiles {
		for _, target := range sortedKeys(t.ProbabilityModifiers) {
			if !seen[target] {
				addf("tile %q modifies unknown tile %q", t.Name, target)
			}
		}
	}

	for _, p := range def.Presets {
		tile, ok := def.Tile(p.Name)
		if !ok {
			addf("preset at %s uses unknown tile %q", p.Coordinate, p.Name)
			continue
		}
		if p.Rotation < 0 || p.Rotation >= len(tile.Connections) {
			addf("preset %q at %s has rotation %d, valid 0-%d", p.Name, p.Coordinate, p.Rotation, len(tile.Connections)-1)
		}
	}

	if len(issues) > 0 {
		return &ValidationError{Issues: issues}
	}
	return nil
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
