package tiledata

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Directory layout below the data root.
const (
	MapsDir        = "maps"
	TileListsDir   = "tiles/lists"
	TileDataDir    = "tiles/data"
	ConnectionsDir = "tiles/connections"
	PresetsDir     = "tiles/presets"
)

// Loader reads the split definition layout from a data directory.
type Loader struct {
	root string
}

// NewLoader creates a loader rooted at dataDir.
func NewLoader(dataDir string) *Loader {
	return &Loader{root: dataDir}
}

// Root returns the data directory
func (l *Loader) Root() string {
	return l.root
}

// LoadMap reads a map descriptor and everything it references.
func (l *Loader) LoadMap(name string) (*Definition, error) {
	mapData, err := l.LoadMapData(name)
	if err != nil {
		return nil, err
	}

	tiles, err := l.LoadTileData(mapData.TileList)
	if err != nil {
		return nil, err
	}

	connections, err := l.LoadConnections(mapData.TileConnections)
	if err != nil {
		return nil, err
	}

	var presets []PresetData
	if mapData.PresetTiles != "" {
		presets, err = l.LoadPresets(mapData.PresetTiles)
		if err != nil {
			return nil, err
		}
	}

	return &Definition{
		Name:        trimExt(name),
		Map:         mapData,
		Tiles:       tiles,
		Connections: connections,
		Presets:     presets,
	}, nil
}

// LoadMapData reads maps/<name>.yaml
func (l *Loader) LoadMapData(name string) (MapData, error) {
	var data MapData
	if err := readYAML(l.path(MapsDir, name), &data); err != nil {
		return MapData{}, fmt.Errorf("failed to load map %q: %w", name, err)
	}
	return data, nil
}

// LoadTileNames reads tiles/lists/<list>.yaml
func (l *Loader) LoadTileNames(list string) ([]string, error) {
	var file tileListFile
	if err := readYAML(l.path(TileListsDir, list), &file); err != nil {
		return nil, fmt.Errorf("failed to load tile list %q: %w", list, err)
	}
	return file.Names, nil
}

// LoadTileData reads the tile list and then tiles/data/<tile>.yaml for every
// name on it, in list order. A tile file without a name takes the list name.
func (l *Loader) LoadTileData(list string) ([]TileData, error) {
	names, err := l.LoadTileNames(list)
	if err != nil {
		return nil, err
	}

	tiles := make([]TileData, 0, len(names))
	for _, name := range names {
		var tile TileData
		if err := readYAML(l.path(TileDataDir, name), &tile); err != nil {
			return nil, fmt.Errorf("failed to load tile %q: %w", name, err)
		}
		if tile.Name == "" {
			tile.Name = name
		}
		tiles = append(tiles, tile)
	}
	return tiles, nil
}

// LoadConnections reads tiles/connections/<name>.yaml
func (l *Loader) LoadConnections(name string) (map[string][]string, error) {
	var file connectionsFile
	if err := readYAML(l.path(ConnectionsDir, name), &file); err != nil {
		return nil, fmt.Errorf("failed to load connections %q: %w", name, err)
	}
	return file.Connections, nil
}

// LoadPresets reads tiles/presets/<name>.yaml
func (l *Loader) LoadPresets(name string) ([]PresetData, error) {
	var file presetsFile
	if err := readYAML(l.path(PresetsDir, name), &file); err != nil {
		return nil, fmt.Errorf("failed to load presets %q: %w", name, err)
	}
	return file.PresetTiles, nil
}

// ListMaps returns the names of every map descriptor, sorted.
func (l *Loader) ListMaps() ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(l.root, MapsDir))
	if err != nil {
		return nil, fmt.Errorf("failed to read maps directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		names = append(names, trimExt(entry.Name()))
	}
	sort.Strings(names)
	return names, nil
}

func (l *Loader) path(dir, name string) string {
	if filepath.Ext(name) == "" {
		name += ".yaml"
	}
	return filepath.Join(l.root, dir, name)
}

// LoadDefinitionFile reads a single bundled definition file.
func LoadDefinitionFile(path string) (*Definition, error) {
	var def Definition
	if err := readYAML(path, &def); err != nil {
		return nil, fmt.Errorf("failed to load definition: %w", err)
	}
	if def.Name == "" {
		def.Name = trimExt(filepath.Base(path))
	}
	return &def, nil
}

// SaveDefinitionFile writes def as a single bundled definition file.
func SaveDefinitionFile(path string, def *Definition) error {
	data, err := yaml.Marshal(def)
	if err != nil {
		return fmt.Errorf("failed to marshal definition: %w", err)
	}

	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write definition: %w", err)
	}
	return nil
}

func readYAML(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	return nil
}

func trimExt(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}
