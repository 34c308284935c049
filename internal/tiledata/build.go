package tiledata

import (
	"fmt"

	"github.com/lawnchairsociety/tilegen/internal/wfc"
)

// NewMap validates def and builds an engine map from it. The map's nodes are
// created by the generator.
func NewMap(def *Definition, reg *wfc.Registry) (*wfc.Map, error) {
	if err := Validate(def, reg); err != nil {
		return nil, err
	}

	topo, err := reg.Lookup(def.Map.MapShape)
	if err != nil {
		return nil, err
	}

	factory := NewFactory(def.Tiles)
	presets, err := factory.CreatePresets(def.Presets)
	if err != nil {
		return nil, fmt.Errorf("failed to create presets: %w", err)
	}

	return wfc.NewMap(wfc.MapOptions{
		Topology:      topo,
		Tiles:         factory,
		Compatibility: def.Compatibility(),
		Presets:       presets,
		PrimarySize:   def.Map.PrimarySize,
		SecondarySize: def.Map.SecondarySize,
	}), nil
}
