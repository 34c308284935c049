// migrate-to-postgres copies recorded generation runs from a SQLite run
// history into PostgreSQL.
//
// Usage:
//
//	go run ./cmd/migrate-to-postgres \
//	    -sqlite data/runs.db \
//	    -pg-host localhost \
//	    -pg-port 5432 \
//	    -pg-user tilegen \
//	    -pg-password tilegen \
//	    -pg-database tilegen
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"

	"github.com/lawnchairsociety/tilegen/internal/database"
)

var errTargetNotEmpty = errors.New("target database already holds runs")

func main() {
	sqlitePath := flag.String("sqlite", "data/runs.db", "Path to SQLite database")
	pgHost := flag.String("pg-host", "localhost", "PostgreSQL host")
	pgPort := flag.Int("pg-port", 5432, "PostgreSQL port")
	pgUser := flag.String("pg-user", "tilegen", "PostgreSQL user")
	pgPassword := flag.String("pg-password", "tilegen", "PostgreSQL password")
	pgDatabase := flag.String("pg-database", "tilegen", "PostgreSQL database name")
	pgSSLMode := flag.String("pg-sslmode", "disable", "PostgreSQL SSL mode")
	mapName := flag.String("map", "", "Only migrate runs of this map")
	appendRuns := flag.Bool("append", false, "Allow migrating into a database that already holds runs")
	dryRun := flag.Bool("dry-run", false, "Show what would be migrated without making changes")
	flag.Parse()

	log.Println("Run History Migration Tool")
	log.Println("==========================")

	log.Printf("Opening SQLite database: %s", *sqlitePath)
	src, err := database.Open(*sqlitePath)
	if err != nil {
		log.Fatalf("Failed to open SQLite database: %v", err)
	}
	defer src.Close()

	pg := database.DefaultPostgresConfig()
	pg.Host = *pgHost
	pg.Port = *pgPort
	pg.User = *pgUser
	pg.Password = *pgPassword
	pg.Database = *pgDatabase
	pg.SSLMode = *pgSSLMode

	log.Printf("Opening PostgreSQL database: %s@%s:%d/%s", *pgUser, *pgHost, *pgPort, *pgDatabase)
	dst, err := database.OpenWithConfig(database.Config{Driver: "postgres", Postgres: pg})
	if err != nil {
		log.Fatalf("Failed to open PostgreSQL database: %v", err)
	}
	defer dst.Close()

	if *dryRun {
		log.Println("DRY RUN MODE - No changes will be made")
	}

	stats, err := migrateRuns(src, dst, options{mapName: *mapName, appendRuns: *appendRuns, dryRun: *dryRun})
	if err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	log.Println("==========================")
	log.Printf("Migration complete! Runs: %d, placements: %d", stats.runs, stats.placements)
	if *dryRun {
		log.Println("(DRY RUN - No actual changes were made)")
	}
}

type options struct {
	mapName    string
	appendRuns bool
	dryRun     bool
}

type migrationStats struct {
	runs       int
	placements int
}

// migrateRuns copies runs oldest first so the target keeps their order.
// Run IDs are reassigned by the target.
func migrateRuns(src, dst *database.Database, opts options) (migrationStats, error) {
	var stats migrationStats

	if !opts.appendRuns {
		existing, err := dst.CountRuns("")
		if err != nil {
			return stats, err
		}
		if existing > 0 {
			return stats, fmt.Errorf("%w (%d runs), use -append to add to them", errTargetNotEmpty, existing)
		}
	}

	runs, err := src.ListRuns(opts.mapName, 0)
	if err != nil {
		return stats, err
	}

	for i := len(runs) - 1; i >= 0; i-- {
		run, err := src.GetRun(runs[i].ID)
		if err != nil {
			return stats, fmt.Errorf("failed to load run %d: %w", runs[i].ID, err)
		}

		if !opts.dryRun {
			sourceID := run.ID
			if err := dst.SaveRun(run); err != nil {
				return stats, fmt.Errorf("failed to copy run %d: %w", sourceID, err)
			}
		}

		stats.runs++
		stats.placements += len(run.Placements)
		if stats.runs%100 == 0 {
			log.Printf("  Migrated %d runs", stats.runs)
		}
	}
	return stats, nil
}
