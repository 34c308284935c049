package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lawnchairsociety/tilegen/internal/wfc"
)

var (
	ErrRunNotFound        = errors.New("run not found")
	ErrDuplicatePlacement = errors.New("placement already recorded for coordinate")
)

// RunStatus is the outcome of a generation attempt.
type RunStatus string

const (
	RunSucceeded RunStatus = "succeeded"
	RunFailed    RunStatus = "failed"
)

// Placement is one resolved tile of a stored run.
type Placement struct {
	X        int
	Y        int
	Z        int
	Tile     string
	Rotation int
}

// Coordinate returns the placement's map coordinate.
func (p Placement) Coordinate() wfc.Coordinate {
	return wfc.Coordinate{X: p.X, Y: p.Y, Z: p.Z}
}

// Run is one recorded generation attempt.
type Run struct {
	ID            int64
	MapName       string
	Fingerprint   string
	Seed          int64
	Attempt       int
	Status        RunStatus
	FailureKind   string
	FailureReason string
	Steps         int
	Forced        int
	Propagations  int
	Duration      time.Duration
	CreatedAt     time.Time
	Placements    []Placement
}

// PlacementsFromMap converts resolved map output into stored placements.
// Nodes that were never resolved are skipped.
func PlacementsFromMap(placements []wfc.Placement) []Placement {
	out := make([]Placement, 0, len(placements))
	for _, p := range placements {
		if p.Tile == nil {
			continue
		}
		out = append(out, Placement{
			X:        p.Coordinate.X,
			Y:        p.Coordinate.Y,
			Z:        p.Coordinate.Z,
			Tile:     p.Tile.Name(),
			Rotation: p.Tile.Rotation(),
		})
	}
	return out
}

// SaveRun inserts run and its placements in one transaction and fills in
// run.ID. A zero CreatedAt is set to the current time.
func (d *Database) SaveRun(run *Run) error {
	if run.Status == "" {
		run.Status = RunSucceeded
	}
	if run.Attempt == 0 {
		run.Attempt = 1
	}
	createdAt := run.CreatedAt.UTC()
	if run.CreatedAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := d.qb.BuildWithReturning(`
		INSERT INTO generation_runs (map_name, fingerprint, seed, attempt, status, failure_kind,
			failure_reason, steps, forced, propagations, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, "id")
	args := []any{
		run.MapName, run.Fingerprint, run.Seed, run.Attempt, string(run.Status), run.FailureKind,
		run.FailureReason, run.Steps, run.Forced, run.Propagations, run.Duration.Milliseconds(), createdAt,
	}

	var id int64
	if d.dialect.SupportsLastInsertID() {
		result, err := tx.Exec(query, args...)
		if err != nil {
			return fmt.Errorf("failed to insert run: %w", err)
		}
		id, err = result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get run id: %w", err)
		}
	} else {
		if err := tx.QueryRow(query, args...).Scan(&id); err != nil {
			return fmt.Errorf("failed to insert run: %w", err)
		}
	}

	insert := d.qb.Build(`INSERT INTO run_placements (run_id, x, y, z, tile, rotation) VALUES (?, ?, ?, ?, ?, ?)`)
	for _, p := range run.Placements {
		if _, err := tx.Exec(insert, id, p.X, p.Y, p.Z, p.Tile, p.Rotation); err != nil {
			if d.dialect.IsDuplicateKeyError(err) {
				return fmt.Errorf("%w: (%d, %d, %d)", ErrDuplicatePlacement, p.X, p.Y, p.Z)
			}
			return fmt.Errorf("failed to insert placement: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}

	run.ID = id
	run.CreatedAt = createdAt
	return nil
}

const runColumns = `id, map_name, fingerprint, seed, attempt, status, failure_kind, failure_reason,
	steps, forced, propagations, duration_ms, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	run := &Run{}
	var status string
	var durationMS int64
	err := row.Scan(&run.ID, &run.MapName, &run.Fingerprint, &run.Seed, &run.Attempt, &status,
		&run.FailureKind, &run.FailureReason, &run.Steps, &run.Forced, &run.Propagations,
		&durationMS, &run.CreatedAt)
	if err != nil {
		return nil, err
	}
	run.Status = RunStatus(status)
	run.Duration = time.Duration(durationMS) * time.Millisecond
	return run, nil
}

// GetRun returns the run with the given ID, including its placements.
func (d *Database) GetRun(id int64) (*Run, error) {
	row := d.db.QueryRow(d.qb.Build(`SELECT `+runColumns+` FROM generation_runs WHERE id = ?`), id)
	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	run.Placements, err = d.placements(run.ID)
	if err != nil {
		return nil, err
	}
	return run, nil
}

// FindRun returns the most recent successful run for a definition fingerprint
// and seed, including its placements.
func (d *Database) FindRun(fingerprint string, seed int64) (*Run, error) {
	row := d.db.QueryRow(d.qb.Build(`
		SELECT `+runColumns+`
		FROM generation_runs
		WHERE fingerprint = ? AND seed = ? AND status = ?
		ORDER BY id DESC
		LIMIT 1`), fingerprint, seed, string(RunSucceeded))
	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find run: %w", err)
	}

	run.Placements, err = d.placements(run.ID)
	if err != nil {
		return nil, err
	}
	return run, nil
}

// ListRuns returns runs newest first without placements. An empty mapName
// lists every map; a limit of zero or less means no limit.
func (d *Database) ListRuns(mapName string, limit int) ([]*Run, error) {
	query := `SELECT ` + runColumns + ` FROM generation_runs`
	var args []any
	if mapName != "" {
		query += ` WHERE map_name = ?`
		args = append(args, mapName)
	}
	query += ` ORDER BY id DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := d.db.Query(d.qb.Build(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// CountRuns returns the number of recorded runs with the given status, or all
// runs when status is empty.
func (d *Database) CountRuns(status RunStatus) (int, error) {
	var count int
	var err error
	if status == "" {
		err = d.db.QueryRow(`SELECT COUNT(*) FROM generation_runs`).Scan(&count)
	} else {
		err = d.db.QueryRow(d.qb.Build(`SELECT COUNT(*) FROM generation_runs WHERE status = ?`), string(status)).Scan(&count)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to count runs: %w", err)
	}
	return count, nil
}

// DeleteRun removes a run and, by cascade, its placements.
func (d *Database) DeleteRun(id int64) error {
	result, err := d.db.Exec(d.qb.Build(`DELETE FROM generation_runs WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrRunNotFound
	}
	return nil
}

func (d *Database) placements(runID int64) ([]Placement, error) {
	rows, err := d.db.Query(d.qb.Build(`
		SELECT x, y, z, tile, rotation
		FROM run_placements
		WHERE run_id = ?
		ORDER BY x, y, z`), runID)
	if err != nil {
		return nil, fmt.Errorf("failed to load placements: %w", err)
	}
	defer rows.Close()

	var out []Placement
	for rows.Next() {
		var p Placement
		if err := rows.Scan(&p.X, &p.Y, &p.Z, &p.Tile, &p.Rotation); err != nil {
			return nil, fmt.Errorf("failed to scan placement: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
