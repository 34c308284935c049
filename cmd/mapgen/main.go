// mapgen draws one or more saved map results as text.
package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/lawnchairsociety/tilegen/internal/render"
)

func main() {
	outputFile := flag.String("output", "", "Output file (empty for stdout)")
	showLegend := flag.Bool("legend", true, "Show legend")
	showCounts := flag.Bool("counts", false, "Show how often each tile was placed")
	showRotation := flag.Bool("rotations", false, "Show tile rotations")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] result.yaml [result.yaml ...]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	var output strings.Builder
	for i, path := range flag.Args() {
		result, err := render.LoadMapResult(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if i > 0 {
			output.WriteString("\n")
		}
		opts := view{legend: *showLegend, counts: *showCounts, rotations: *showRotation}
		if err := opts.render(&output, result); err != nil {
			fmt.Fprintf(os.Stderr, "Error rendering %s: %v\n", path, err)
			os.Exit(1)
		}
	}

	if *outputFile != "" {
		if err := os.WriteFile(*outputFile, []byte(output.String()), 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing output file: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Map written to %s\n", *outputFile)
	} else {
		fmt.Print(output.String())
	}
}

type view struct {
	legend    bool
	counts    bool
	rotations bool
}

func (v view) render(output *strings.Builder, result *render.MapResult) error {
	output.WriteString(fmt.Sprintf("Map %s (%s, seed %d, attempt %d)\n", result.Map, result.Shape, result.Seed, result.Attempt))
	output.WriteString(fmt.Sprintf("Steps: %d, forced: %d, propagations: %d\n",
		result.Stats.Steps, result.Stats.Forced, result.Stats.Propagations))
	output.WriteString(strings.Repeat("=", 60) + "\n\n")

	names := make([]string, 0, len(result.Tiles))
	for _, t := range result.Tiles {
		names = append(names, t.Tile)
	}
	legend := render.NewLegend(names)

	if err := result.Text(output, render.Options{Legend: legend, ShowRotation: v.rotations}); err != nil {
		return err
	}

	if v.legend {
		output.WriteString("\nLegend:\n")
		if err := legend.Write(output); err != nil {
			return err
		}
	}
	if v.counts {
		output.WriteString("\n")
		writeCounts(output, names)
	}
	return nil
}

// writeCounts lists tiles by how often they were placed, most frequent first.
// Unresolved cells are not counted.
func writeCounts(output *strings.Builder, names []string) {
	counts := make(map[string]int)
	for _, name := range names {
		if name != "" {
			counts[name]++
		}
	}
	tiles := make([]string, 0, len(counts))
	for name := range counts {
		tiles = append(tiles, name)
	}
	sort.Slice(tiles, func(i, j int) bool {
		if counts[tiles[i]] != counts[tiles[j]] {
			return counts[tiles[i]] > counts[tiles[j]]
		}
		return tiles[i] < tiles[j]
	})

	output.WriteString("Placements:\n")
	for _, name := range tiles {
		output.WriteString(fmt.Sprintf("  %-16s %d\n", name, counts[name]))
	}
}
