package main

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/lawnchairsociety/tilegen/internal/database"
	"github.com/lawnchairsociety/tilegen/internal/logger"
	"github.com/lawnchairsociety/tilegen/internal/render"
	"github.com/lawnchairsociety/tilegen/internal/stream"
	"github.com/lawnchairsociety/tilegen/internal/tiledata"
	"github.com/lawnchairsociety/tilegen/internal/wfc"
)

var errAttemptsExhausted = errors.New("every generation attempt failed")

// runner drives generation attempts for one map definition. The database and
// hub are optional.
type runner struct {
	def         *tiledata.Definition
	registry    *wfc.Registry
	fingerprint string
	maxAttempts int

	db  *database.Database
	hub *stream.Hub
}

func newRunner(def *tiledata.Definition, maxAttempts int) (*runner, error) {
	fingerprint, err := tiledata.Fingerprint(def)
	if err != nil {
		return nil, err
	}
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &runner{
		def:         def,
		registry:    wfc.DefaultRegistry(),
		fingerprint: fingerprint,
		maxAttempts: maxAttempts,
	}, nil
}

// run tries seed, seed+1, ... until an attempt succeeds or maxAttempts runs
// fail. Every attempt is recorded when a database is attached. Errors other
// than a generation failure abort immediately.
func (r *runner) run(seed int64) (*render.MapResult, error) {
	var lastErr error
	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		attemptSeed := seed + int64(attempt-1)
		log := logger.With("map", r.def.Name, "seed", attemptSeed, "attempt", attempt)

		result, err := r.attempt(attemptSeed, attempt)
		var genErr *wfc.GenerationError
		if errors.As(err, &genErr) {
			log.Warn("Generation attempt failed",
				"kind", genErr.Kind.String(),
				"coordinate", genErr.Coordinate.String())
			lastErr = err
			continue
		}
		if err != nil {
			return nil, err
		}

		log.Info("Generation attempt succeeded",
			"steps", result.Stats.Steps,
			"forced", result.Stats.Forced,
			"propagations", result.Stats.Propagations)
		return result, nil
	}
	return nil, fmt.Errorf("%w (%d attempts): %w", errAttemptsExhausted, r.maxAttempts, lastErr)
}

func (r *runner) attempt(seed int64, attempt int) (*render.MapResult, error) {
	m, err := tiledata.NewMap(r.def, r.registry)
	if err != nil {
		return nil, err
	}

	var opts []wfc.Option
	if r.hub != nil {
		opts = append(opts, wfc.WithObserver(r.hub))
		r.hub.RunStarted(stream.RunInfo{
			Map:         r.def.Name,
			Fingerprint: r.fingerprint,
			Shape:       r.def.Map.MapShape,
			Seed:        seed,
			Attempt:     attempt,
			Nodes:       r.def.NodeCount(),
		})
	}

	start := time.Now()
	genErr := wfc.NewGenerator(rand.New(rand.NewSource(seed)), opts...).Generate(m)
	elapsed := time.Since(start)

	var failure *wfc.GenerationError
	if genErr != nil && !errors.As(genErr, &failure) {
		return nil, genErr
	}

	stats := m.Stats()
	record := &database.Run{
		MapName:      r.def.Name,
		Fingerprint:  r.fingerprint,
		Seed:         seed,
		Attempt:      attempt,
		Status:       database.RunSucceeded,
		Steps:        stats.Steps,
		Forced:       stats.Forced,
		Propagations: stats.Propagations,
		Duration:     elapsed,
	}
	finished := stream.RunResult{
		Status:       string(database.RunSucceeded),
		Steps:        stats.Steps,
		Forced:       stats.Forced,
		Propagations: stats.Propagations,
	}
	if failure != nil {
		record.Status = database.RunFailed
		record.FailureKind = failure.Kind.String()
		record.FailureReason = failure.Error()
		finished.Status = string(database.RunFailed)
		finished.FailureKind = failure.Kind.String()
		finished.Error = failure.Error()
	} else {
		record.Placements = database.PlacementsFromMap(m.Placements())
	}

	if r.hub != nil {
		r.hub.RunFinished(finished)
	}
	if r.db != nil {
		if err := r.db.SaveRun(record); err != nil {
			return nil, fmt.Errorf("failed to record run: %w", err)
		}
	}

	if failure != nil {
		return nil, failure
	}

	result := render.NewMapResult(m)
	result.Map = r.def.Name
	result.Fingerprint = r.fingerprint
	result.Seed = seed
	result.Attempt = attempt
	return result, nil
}

// stored returns the most recent successful run recorded for this definition
// and seed, or nil if there is none.
func (r *runner) stored(seed int64) (*render.MapResult, error) {
	if r.db == nil {
		return nil, nil
	}
	run, err := r.db.FindRun(r.fingerprint, seed)
	if errors.Is(err, database.ErrRunNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return resultFromRun(run, r.def.Map.MapShape), nil
}

// resultFromRun rebuilds a result document from a stored run.
func resultFromRun(run *database.Run, shape string) *render.MapResult {
	result := &render.MapResult{
		Map:         run.MapName,
		Shape:       shape,
		Fingerprint: run.Fingerprint,
		Seed:        run.Seed,
		Attempt:     run.Attempt,
		Stats: render.ResultStats{
			Steps:        run.Steps,
			Forced:       run.Forced,
			Propagations: run.Propagations,
		},
		Tiles: make([]render.PlacedTile, 0, len(run.Placements)),
	}
	for _, p := range run.Placements {
		result.Tiles = append(result.Tiles, render.PlacedTile{
			Coordinate: p.Coordinate(),
			Tile:       p.Tile,
			Rotation:   p.Rotation,
		})
	}
	return result
}
