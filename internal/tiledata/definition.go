// Package tiledata loads tile-map definitions from YAML and turns them into
// generator input.
package tiledata

import "github.com/lawnchairsociety/tilegen/internal/wfc"

// MapData describes one map: which tile list, connection table and preset
// file it uses, plus its shape and size.
type MapData struct {
	TileList        string `yaml:"tile_list"`
	TileConnections string `yaml:"tile_connections"`
	PresetTiles     string `yaml:"preset_tiles,omitempty"`
	PrimarySize     int    `yaml:"primary_size"`
	SecondarySize   int    `yaml:"secondary_size,omitempty"`
	MapShape        string `yaml:"map_shape"`
}

// TileData is the definition of a single tile.
type TileData struct {
	Name                 string         `yaml:"name"`
	Tags                 []string       `yaml:"tags,omitempty"`
	Connections          []string       `yaml:"connections"`
	Probability          int            `yaml:"probability"`
	ProbabilityModifiers map[string]int `yaml:"probability_modifiers,omitempty"`
}

// PresetData pins a tile to a coordinate with a fixed rotation.
type PresetData struct {
	Name       string         `yaml:"name"`
	Coordinate wfc.Coordinate `yaml:"coordinate"`
	Rotation   int            `yaml:"rotation"`
}

// Definition is everything needed to generate one map.
type Definition struct {
	Name        string              `yaml:"name"`
	Map         MapData             `yaml:"map"`
	Tiles       []TileData          `yaml:"tiles"`
	Connections map[string][]string `yaml:"connections"`
	Presets     []PresetData        `yaml:"presets,omitempty"`
}

// tileListFile is the on-disk layout of tiles/lists/<list>.yaml
type tileListFile struct {
	Names []string `yaml:"names"`
}

// connectionsFile is the on-disk layout of tiles/connections/<name>.yaml
type connectionsFile struct {
	Connections map[string][]string `yaml:"connections"`
}

// presetsFile is the on-disk layout of tiles/presets/<name>.yaml
type presetsFile struct {
	PresetTiles []PresetData `yaml:"preset_tiles"`
}

// Tile returns the definition of the named tile.
func (d *Definition) Tile(name string) (TileData, bool) {
	for _, t := range d.Tiles {
		if t.Name == name {
			return t, true
		}
	}
	return TileData{}, false
}

// Compatibility converts the connection table for the engine.
func (d *Definition) Compatibility() wfc.Compatibility {
	return wfc.NewCompatibility(d.Connections)
}

// NodeCount returns how many nodes the map's shape and size produce, or 0 for
// an unknown shape.
func (d *Definition) NodeCount() int {
	switch d.Map.MapShape {
	case wfc.HexRing{}.Key():
		return wfc.HexRingNodeCount(d.Map.PrimarySize)
	case wfc.SquareGrid{}.Key():
		width, height := d.Map.PrimarySize, d.Map.SecondarySize
		if height <= 0 {
			height = width
		}
		return max(width, 0) * max(height, 0)
	default:
		return 0
	}
}
