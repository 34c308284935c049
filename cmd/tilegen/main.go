package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/lawnchairsociety/tilegen/internal/config"
	"github.com/lawnchairsociety/tilegen/internal/database"
	"github.com/lawnchairsociety/tilegen/internal/logger"
	"github.com/lawnchairsociety/tilegen/internal/render"
	"github.com/lawnchairsociety/tilegen/internal/stream"
	"github.com/lawnchairsociety/tilegen/internal/tiledata"
)

func main() {
	configFile := flag.String("config", "tilegen.yaml", "Path to config YAML file")
	dataDir := flag.String("data", "", "Path to data directory (overrides config)")
	mapName := flag.String("map", "", "Map to generate (overrides config)")
	seed := flag.Int64("seed", 0, "Generation seed (default: random based on current time)")
	attempts := flag.Int("attempts", 0, "Maximum generation attempts (overrides config)")
	format := flag.String("format", "", "Output format: text or yaml (overrides config)")
	output := flag.String("output", "", "Output file (empty for stdout)")
	dbFile := flag.String("db", "", "Record runs in this SQLite database")
	serve := flag.String("serve", "", "Stream generation to WebSocket viewers on this address and keep serving")
	list := flag.Bool("list", false, "List available maps and exit")
	history := flag.Int("history", 0, "Print the most recent N recorded runs and exit")
	reuse := flag.Bool("reuse", false, "Reuse a recorded run for the same map definition and seed")
	showRotation := flag.Bool("rotations", false, "Show tile rotations in text output")
	flag.Parse()

	// Initialize logger first (before any logging)
	logConfig, _ := logger.LoadConfig(*configFile)
	if err := logger.Initialize(logConfig); err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to initialize logging: %v\n", err)
		os.Exit(1)
	}
	defer logger.Close()

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		logger.Warning("Failed to load config, using defaults", "path", *configFile, "error", err)
		cfg = config.DefaultConfig()
	}

	// Flags override the file only when given
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "data":
			cfg.Generation.DataDir = *dataDir
		case "map":
			cfg.Generation.Map = *mapName
		case "seed":
			cfg.Generation.Seed = *seed
		case "attempts":
			cfg.Generation.MaxAttempts = *attempts
		case "format":
			cfg.Output.Format = *format
		case "output":
			cfg.Output.Path = *output
		case "db":
			cfg.Database.Enabled = true
			cfg.Database.Driver = "sqlite"
			cfg.Database.SQLitePath = *dbFile
		case "serve":
			cfg.Stream.Enabled = true
			cfg.Stream.Address = *serve
		}
	})

	if err := cfg.Validate(); err != nil {
		fatal("Invalid configuration", err)
	}

	loader := tiledata.NewLoader(cfg.Generation.DataDir)

	if *list {
		maps, err := loader.ListMaps()
		if err != nil {
			fatal("Failed to list maps", err)
		}
		for _, name := range maps {
			fmt.Println(name)
		}
		return
	}

	var db *database.Database
	if cfg.Database.Enabled {
		db, err = database.OpenWithConfig(databaseConfig(cfg.Database))
		if err != nil {
			fatal("Failed to open database", err)
		}
		defer db.Close()
		logger.Info("Run history enabled", "driver", cfg.Database.Driver)
	}

	if *history > 0 {
		if db == nil {
			fatal("Run history requires a database", fmt.Errorf("use -db or enable database in %s", *configFile))
		}
		if err := printHistory(os.Stdout, db, *mapName, *history); err != nil {
			fatal("Failed to list runs", err)
		}
		return
	}

	def, err := loader.LoadMap(cfg.Generation.Map)
	if err != nil {
		fatal("Failed to load map", err)
	}
	logger.Info("Map loaded",
		"map", def.Name,
		"shape", def.Map.MapShape,
		"tiles", len(def.Tiles),
		"presets", len(def.Presets))

	r, err := newRunner(def, cfg.Generation.MaxAttempts)
	if err != nil {
		fatal("Failed to prepare generation", err)
	}
	r.db = db

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	if cfg.Stream.Enabled {
		r.hub = stream.NewHub(cfg.Stream)
		if len(cfg.Stream.AllowedOrigins) == 0 {
			logger.Info("Stream CORS policy", "mode", "same-origin")
		} else if len(cfg.Stream.AllowedOrigins) == 1 && cfg.Stream.AllowedOrigins[0] == "*" {
			logger.Warning("Stream CORS allows all origins (not recommended for production)")
		} else {
			logger.Info("Stream CORS policy", "allowed_origins", cfg.Stream.AllowedOrigins)
		}
		go func() {
			serveErr <- r.hub.ListenAndServe(ctx, cfg.Stream.Address)
		}()
	}

	// Use provided seed or generate from time
	runSeed := cfg.Generation.Seed
	if runSeed == 0 {
		runSeed = time.Now().UnixNano()
		logger.Info("Seed selected", "seed", runSeed, "random", true)
	} else {
		logger.Info("Seed selected", "seed", runSeed, "random", false)
	}

	var result *render.MapResult
	if *reuse {
		result, err = r.stored(runSeed)
		if err != nil {
			fatal("Failed to look up recorded run", err)
		}
		if result != nil {
			logger.Info("Reusing recorded run", "map", result.Map, "seed", result.Seed)
		}
	}
	if result == nil {
		result, err = r.run(runSeed)
		if err != nil {
			fatal("Generation failed", err)
		}
	}

	if err := writeResult(cfg.Output, result, render.Options{ShowRotation: *showRotation}); err != nil {
		fatal("Failed to write output", err)
	}

	logger.Always("Map generated",
		"map", result.Map,
		"seed", result.Seed,
		"attempt", result.Attempt,
		"tiles", len(result.Tiles),
		"steps", result.Stats.Steps,
		"forced", result.Stats.Forced,
		"propagations", result.Stats.Propagations)

	if cfg.Stream.Enabled {
		logger.Info("Streaming to viewers, press Ctrl+C to stop", "address", cfg.Stream.Address)
		if err := <-serveErr; err != nil {
			fatal("Stream server error", err)
		}
		logger.Info("Stream server stopped")
	}
}

// databaseConfig converts the tool's database settings for the database package.
func databaseConfig(c config.DatabaseConfig) database.Config {
	pg := database.DefaultPostgresConfig()
	if c.Postgres.Host != "" {
		pg.Host = c.Postgres.Host
	}
	if c.Postgres.Port != 0 {
		pg.Port = c.Postgres.Port
	}
	if c.Postgres.SSLMode != "" {
		pg.SSLMode = c.Postgres.SSLMode
	}
	pg.User = c.Postgres.User
	pg.Password = c.Postgres.Password
	pg.Database = c.Postgres.Database

	return database.Config{
		Driver:     c.Driver,
		SQLitePath: c.SQLitePath,
		Postgres:   pg,
	}
}

// writeResult writes the result in the configured format to the configured
// path, or stdout when no path is set.
func writeResult(out config.OutputConfig, result *render.MapResult, opts render.Options) error {
	if out.Format == config.FormatYAML && out.Path != "" {
		if err := render.SaveMapResult(out.Path, result); err != nil {
			return err
		}
		fmt.Printf("Map written to %s\n", out.Path)
		return nil
	}

	var w io.Writer = os.Stdout
	if out.Path != "" {
		f, err := os.Create(out.Path)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", out.Path, err)
		}
		defer f.Close()
		w = f
	}

	if out.Format == config.FormatYAML {
		return result.WriteYAML(w)
	}
	if err := writeText(w, result, opts); err != nil {
		return err
	}
	if out.Path != "" {
		fmt.Printf("Map written to %s\n", out.Path)
	}
	return nil
}

// writeText draws the map followed by its legend.
func writeText(w io.Writer, result *render.MapResult, opts render.Options) error {
	fmt.Fprintf(w, "Map %s (%s, seed %d, attempt %d)\n", result.Map, result.Shape, result.Seed, result.Attempt)
	fmt.Fprintln(w, strings.Repeat("=", 40))

	names := make([]string, 0, len(result.Tiles))
	for _, t := range result.Tiles {
		names = append(names, t.Tile)
	}
	if opts.Legend == nil {
		opts.Legend = render.NewLegend(names)
	}

	if err := result.Text(w, opts); err != nil {
		return err
	}
	fmt.Fprintln(w)
	return opts.Legend.Write(w)
}

// printHistory lists recorded runs, newest first.
func printHistory(w io.Writer, db *database.Database, mapName string, limit int) error {
	runs, err := db.ListRuns(mapName, limit)
	if err != nil {
		return err
	}
	succeeded, err := db.CountRuns(database.RunSucceeded)
	if err != nil {
		return err
	}
	total, err := db.CountRuns("")
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "%d of %d recorded runs succeeded\n", succeeded, total)
	for _, run := range runs {
		line := fmt.Sprintf("#%d  %s  %-10s seed=%d attempt=%d status=%s steps=%d duration=%s",
			run.ID, run.CreatedAt.Format("2006-01-02 15:04:05"), run.MapName, run.Seed,
			run.Attempt, run.Status, run.Steps, run.Duration)
		if run.FailureKind != "" {
			line += " failure=" + run.FailureKind
		}
		fmt.Fprintln(w, line)
	}
	return nil
}

func fatal(msg string, err error) {
	logger.Error(msg, "error", err)
	fmt.Fprintf(os.Stderr, "Error: %s: %v\n", msg, err)
	os.Exit(1)
}
