// Package render turns resolved maps into text and YAML documents.
package render

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/lawnchairsociety/tilegen/internal/wfc"
)

var ErrUnknownShape = errors.New("render: unknown map shape")

const (
	unresolvedSymbol = '?'
	fallbackSymbols  = "0123456789#%&*+=@$"
)

// PlacedTile is one cell of a rendered map. An empty Tile marks a node that
// was never resolved.
type PlacedTile struct {
	Coordinate wfc.Coordinate `yaml:"coordinate,flow"`
	Tile       string         `yaml:"tile,omitempty"`
	Rotation   int            `yaml:"rotation"`
}

// PlacedTiles converts map output, keeping unresolved nodes.
func PlacedTiles(placements []wfc.Placement) []PlacedTile {
	out := make([]PlacedTile, 0, len(placements))
	for _, p := range placements {
		pt := PlacedTile{Coordinate: p.Coordinate}
		if p.Tile != nil {
			pt.Tile = p.Tile.Name()
			pt.Rotation = p.Tile.Rotation()
		}
		out = append(out, pt)
	}
	return out
}

// Legend maps tile names to the single character drawn for them.
type Legend map[string]rune

// NewLegend assigns each name the first letter of it not already taken,
// trying lower case then upper case, and falls back to digits and symbols.
// Names are processed in sorted order so the result is stable.
func NewLegend(names []string) Legend {
	sorted := append([]string(nil), names...)
	sort.Strings(sorted)

	legend := make(Legend, len(sorted))
	used := map[rune]bool{unresolvedSymbol: true}

	for _, name := range sorted {
		if _, ok := legend[name]; ok || name == "" {
			continue
		}
		symbol, ok := pickSymbol(name, used)
		if !ok {
			symbol = unresolvedSymbol
		}
		used[symbol] = true
		legend[name] = symbol
	}
	return legend
}

func pickSymbol(name string, used map[rune]bool) (rune, bool) {
	for _, fold := range []func(rune) rune{unicode.ToLower, unicode.ToUpper} {
		for _, r := range name {
			if !unicode.IsLetter(r) {
				continue
			}
			if c := fold(r); !used[c] {
				return c, true
			}
		}
	}
	for _, c := range fallbackSymbols {
		if !used[c] {
			return c, true
		}
	}
	return 0, false
}

// Symbol returns the character for tile, or '?' for an unresolved cell.
func (l Legend) Symbol(tile string) rune {
	if r, ok := l[tile]; ok {
		return r
	}
	return unresolvedSymbol
}

// Write prints one "symbol  name" line per tile in name order.
func (l Legend) Write(w io.Writer) error {
	names := make([]string, 0, len(l))
	for name := range l {
		names = append(names, name)
	}
	sort.Strings(names)

	bw := bufio.NewWriter(w)
	for _, name := range names {
		fmt.Fprintf(bw, "%c  %s\n", l[name], name)
	}
	return bw.Flush()
}

// Options controls text rendering.
type Options struct {
	// ShowRotation draws each cell's rotation digit after its symbol.
	ShowRotation bool
	// Legend overrides the generated legend.
	Legend Legend
}

// Text draws tiles for the given shape key. Hex rings are drawn as offset
// rows; square grids as a plain matrix.
func Text(w io.Writer, shape string, tiles []PlacedTile, opts Options) error {
	legend := opts.Legend
	if legend == nil {
		legend = NewLegend(tileNames(tiles))
	}

	var column func(c wfc.Coordinate) int
	switch shape {
	case wfc.HexRing{}.Key():
		// Each hex sits half a cell right of the one above-left of it.
		column = func(c wfc.Coordinate) int { return 2*c.X + c.Y }
	case wfc.SquareGrid{}.Key():
		column = func(c wfc.Coordinate) int { return 2 * c.X }
	default:
		return fmt.Errorf("%w: %q", ErrUnknownShape, shape)
	}

	if len(tiles) == 0 {
		return nil
	}

	width := 1
	if opts.ShowRotation {
		width = 2
	}

	minCol, minRow, maxRow := column(tiles[0].Coordinate), tiles[0].Coordinate.Y, tiles[0].Coordinate.Y
	for _, t := range tiles {
		minCol = min(minCol, column(t.Coordinate))
		minRow = min(minRow, t.Coordinate.Y)
		maxRow = max(maxRow, t.Coordinate.Y)
	}

	rows := make([][]rune, maxRow-minRow+1)
	for _, t := range tiles {
		row := t.Coordinate.Y - minRow
		pos := (column(t.Coordinate) - minCol) * width
		for len(rows[row]) < pos+width {
			rows[row] = append(rows[row], ' ')
		}
		if t.Tile == "" {
			rows[row][pos] = unresolvedSymbol
			continue
		}
		rows[row][pos] = legend.Symbol(t.Tile)
		if opts.ShowRotation {
			rows[row][pos+1] = rotationDigit(t.Rotation)
		}
	}

	bw := bufio.NewWriter(w)
	for _, row := range rows {
		bw.WriteString(strings.TrimRight(string(row), " "))
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

func rotationDigit(rotation int) rune {
	s := strconv.Itoa(rotation)
	if len(s) != 1 {
		return '+'
	}
	return rune(s[0])
}

func tileNames(tiles []PlacedTile) []string {
	seen := make(map[string]bool)
	var names []string
	for _, t := range tiles {
		if t.Tile != "" && !seen[t.Tile] {
			seen[t.Tile] = true
			names = append(names, t.Tile)
		}
	}
	return names
}
