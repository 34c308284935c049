package render

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/lawnchairsociety/tilegen/internal/wfc"
)

// ResultStats mirrors wfc.Stats in the result document.
type ResultStats struct {
	Steps        int `yaml:"steps"`
	Forced       int `yaml:"forced"`
	Propagations int `yaml:"propagations"`
}

// MapResult is the YAML document written for a generated map.
type MapResult struct {
	Map         string       `yaml:"map"`
	Shape       string       `yaml:"shape"`
	Fingerprint string       `yaml:"fingerprint,omitempty"`
	Seed        int64        `yaml:"seed"`
	Attempt     int          `yaml:"attempt"`
	Stats       ResultStats  `yaml:"stats"`
	Tiles       []PlacedTile `yaml:"tiles"`
}

// NewMapResult captures m's shape, stats and placements. The caller fills in
// the run identity fields.
func NewMapResult(m *wfc.Map) *MapResult {
	stats := m.Stats()
	result := &MapResult{
		Stats: ResultStats{
			Steps:        stats.Steps,
			Forced:       stats.Forced,
			Propagations: stats.Propagations,
		},
		Tiles: PlacedTiles(m.Placements()),
	}
	if t := m.Topology(); t != nil {
		result.Shape = t.Key()
	}
	return result
}

// Text draws the result with Text.
func (r *MapResult) Text(w io.Writer, opts Options) error {
	return Text(w, r.Shape, r.Tiles, opts)
}

// WriteYAML encodes r to w.
func (r *MapResult) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("failed to encode map result: %w", err)
	}
	return enc.Close()
}

// SaveMapResult writes r to path, creating parent directories.
func SaveMapResult(path string, r *MapResult) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := r.WriteYAML(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// LoadMapResult reads a document written by SaveMapResult.
func LoadMapResult(path string) (*MapResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read map result: %w", err)
	}

	var r MapResult
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to parse map result: %w", err)
	}
	return &r, nil
}
