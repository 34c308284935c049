package tiledata

import (
	"errors"
	"fmt"
	"sort"

	"github.com/lawnchairsociety/tilegen/internal/wfc"
)

// ErrUnknownTile is returned when a tile name has no definition.
var ErrUnknownTile = errors.New("tiledata: unknown tile")

// Factory creates engine tiles from tile definitions. It satisfies
// wfc.TileSource, handing every node its own fresh set of possible tiles.
type Factory struct {
	tiles map[string]TileData
	names []string
}

// NewFactory indexes tiles by name. A later definition with the same name
// replaces an earlier one.
func NewFactory(tiles []TileData) *Factory {
	f := &Factory{tiles: make(map[string]TileData, len(tiles))}
	for _, t := range tiles {
		f.tiles[t.Name] = t
	}
	f.names = make([]string, 0, len(f.tiles))
	for name := range f.tiles {
		f.names = append(f.names, name)
	}
	sort.Strings(f.names)
	return f
}

// Names returns every known tile name, sorted
func (f *Factory) Names() []string {
	out := make([]string, len(f.names))
	copy(out, f.names)
	return out
}

func (f *Factory) lookup(name string) (TileData, error) {
	data, ok := f.tiles[name]
	if !ok {
		return TileData{}, fmt.Errorf("%w: %q", ErrUnknownTile, name)
	}
	return data, nil
}

// CreateTile returns an unrotated read-only view of the named tile.
func (f *Factory) CreateTile(name string) (wfc.Tile, error) {
	data, err := f.lookup(name)
	if err != nil {
		return nil, err
	}
	return wfc.NewPossibleTile(data.Name, data.Tags, data.Connections, data.ProbabilityModifiers, data.Probability), nil
}

// CreatePresetTile creates the named tile pinned at c with the given rotation.
func (f *Factory) CreatePresetTile(name string, c wfc.Coordinate, rotation int) (*wfc.PresetTile, error) {
	data, err := f.lookup(name)
	if err != nil {
		return nil, err
	}
	return wfc.NewPresetTile(data.Name, data.Tags, data.Connections, data.ProbabilityModifiers, c, rotation)
}

// CreatePossibleTile creates a fresh candidate for the named tile.
func (f *Factory) CreatePossibleTile(name string) (*wfc.PossibleTile, error) {
	data, err := f.lookup(name)
	if err != nil {
		return nil, err
	}
	return wfc.NewPossibleTile(data.Name, data.Tags, data.Connections, data.ProbabilityModifiers, data.Probability), nil
}

// PossibleTiles creates one candidate per known tile, in name order.
func (f *Factory) PossibleTiles() []*wfc.PossibleTile {
	out := make([]*wfc.PossibleTile, 0, len(f.names))
	for _, name := range f.names {
		data := f.tiles[name]
		out = append(out, wfc.NewPossibleTile(data.Name, data.Tags, data.Connections, data.ProbabilityModifiers, data.Probability))
	}
	return out
}

// CreatePresets turns preset placements into engine presets.
func (f *Factory) CreatePresets(presets []PresetData) ([]*wfc.PresetTile, error) {
	out := make([]*wfc.PresetTile, 0, len(presets))
	for _, p := range presets {
		tile, err := f.CreatePresetTile(p.Name, p.Coordinate, p.Rotation)
		if err != nil {
			return nil, fmt.Errorf("failed to create preset at %s: %w", p.Coordinate, err)
		}
		out = append(out, tile)
	}
	return out, nil
}
