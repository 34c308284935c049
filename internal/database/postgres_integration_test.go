package database

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"
)

// getPostgresTestConfig returns PostgreSQL config if available, nil otherwise.
// Set these environment variables to run PostgreSQL tests:
//
//	TILEGEN_TEST_POSTGRES (any value enables the tests)
//	TILEGEN_TEST_POSTGRES_HOST (default: localhost)
//	TILEGEN_TEST_POSTGRES_PORT (default: 5435)
//	TILEGEN_TEST_POSTGRES_USER (default: tilegen)
//	TILEGEN_TEST_POSTGRES_PASSWORD (default: tilegen)
//	TILEGEN_TEST_POSTGRES_DATABASE (default: tilegen_test)
func getPostgresTestConfig() *Config {
	if os.Getenv("TILEGEN_TEST_POSTGRES") == "" {
		return nil
	}

	host := os.Getenv("TILEGEN_TEST_POSTGRES_HOST")
	if host == "" {
		host = "localhost"
	}

	port := 5435
	if portStr := os.Getenv("TILEGEN_TEST_POSTGRES_PORT"); portStr != "" {
		fmt.Sscanf(portStr, "%d", &port)
	}

	user := os.Getenv("TILEGEN_TEST_POSTGRES_USER")
	if user == "" {
		user = "tilegen"
	}

	password := os.Getenv("TILEGEN_TEST_POSTGRES_PASSWORD")
	if password == "" {
		password = "tilegen"
	}

	database := os.Getenv("TILEGEN_TEST_POSTGRES_DATABASE")
	if database == "" {
		database = "tilegen_test"
	}

	return &Config{
		Driver: "postgres",
		Postgres: PostgresConfig{
			Host:            host,
			Port:            port,
			User:            user,
			Password:        password,
			Database:        database,
			SSLMode:         "disable",
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: 1 * time.Minute,
		},
	}
}

// skipIfNoPostgres skips the test if PostgreSQL is not available
func skipIfNoPostgres(t *testing.T) *Config {
	cfg := getPostgresTestConfig()
	if cfg == nil {
		t.Skip("Skipping PostgreSQL test: TILEGEN_TEST_POSTGRES not set")
	}
	return cfg
}

// setupPostgresTestDB opens a PostgreSQL connection for testing and clears test data
func setupPostgresTestDB(t *testing.T, cfg *Config) *Database {
	db, err := OpenWithConfig(*cfg)
	if err != nil {
		t.Fatalf("Failed to open PostgreSQL database: %v", err)
	}

	// Clean up test data (in reverse dependency order)
	tables := []string{"run_placements", "generation_runs"}
	for _, table := range tables {
		if _, err := db.db.Exec(fmt.Sprintf("DELETE FROM %s", table)); err != nil {
			t.Logf("Note: Could not clean table %s: %v", table, err)
		}
	}

	t.Cleanup(func() {
		for _, table := range tables {
			db.db.Exec(fmt.Sprintf("DELETE FROM %s", table))
		}
		db.Close()
	})

	return db
}

func TestPostgres_OpenWithConfig(t *testing.T) {
	cfg := skipIfNoPostgres(t)

	db, err := OpenWithConfig(*cfg)
	if err != nil {
		t.Fatalf("Failed to open PostgreSQL database: %v", err)
	}
	defer db.Close()

	var result int
	if err := db.db.QueryRow("SELECT 1").Scan(&result); err != nil {
		t.Fatalf("Failed to query PostgreSQL: %v", err)
	}
	if result != 1 {
		t.Errorf("Expected 1, got %d", result)
	}

	if _, ok := db.Dialect().(*PostgresDialect); !ok {
		t.Errorf("Dialect() = %T, want *PostgresDialect", db.Dialect())
	}
}

func TestPostgres_ConnectionPoolSettings(t *testing.T) {
	cfg := skipIfNoPostgres(t)

	db, err := OpenWithConfig(*cfg)
	if err != nil {
		t.Fatalf("Failed to open PostgreSQL database: %v", err)
	}
	defer db.Close()

	stats := db.db.Stats()
	if stats.MaxOpenConnections != cfg.Postgres.MaxOpenConns {
		t.Errorf("MaxOpenConnections = %d, want %d", stats.MaxOpenConnections, cfg.Postgres.MaxOpenConns)
	}
}

func TestPostgres_SaveAndFindRun(t *testing.T) {
	cfg := skipIfNoPostgres(t)
	db := setupPostgresTestDB(t, cfg)

	run := sampleRun("meadow", 11)
	if err := db.SaveRun(run); err != nil {
		t.Fatalf("SaveRun() error = %v", err)
	}
	if run.ID == 0 {
		t.Fatal("SaveRun() did not set ID via RETURNING")
	}

	got, err := db.FindRun(run.Fingerprint, run.Seed)
	if err != nil {
		t.Fatalf("FindRun() error = %v", err)
	}
	if got.ID != run.ID {
		t.Errorf("FindRun() ID = %d, want %d", got.ID, run.ID)
	}
	if len(got.Placements) != len(run.Placements) {
		t.Errorf("len(Placements) = %d, want %d", len(got.Placements), len(run.Placements))
	}
}

func TestPostgres_DuplicatePlacement(t *testing.T) {
	cfg := skipIfNoPostgres(t)
	db := setupPostgresTestDB(t, cfg)

	run := sampleRun("meadow", 1)
	run.Placements = append(run.Placements, run.Placements[0])

	if err := db.SaveRun(run); !errors.Is(err, ErrDuplicatePlacement) {
		t.Fatalf("SaveRun() error = %v, want ErrDuplicatePlacement", err)
	}

	count, err := db.CountRuns("")
	if err != nil {
		t.Fatalf("CountRuns() error = %v", err)
	}
	if count != 0 {
		t.Errorf("CountRuns() = %d after rollback, want 0", count)
	}
}

func TestPostgres_DeleteRunCascades(t *testing.T) {
	cfg := skipIfNoPostgres(t)
	db := setupPostgresTestDB(t, cfg)

	run := sampleRun("meadow", 2)
	if err := db.SaveRun(run); err != nil {
		t.Fatalf("SaveRun() error = %v", err)
	}
	if err := db.DeleteRun(run.ID); err != nil {
		t.Fatalf("DeleteRun() error = %v", err)
	}

	var count int
	query := db.qb.Build("SELECT COUNT(*) FROM run_placements WHERE run_id = ?")
	if err := db.db.QueryRow(query, run.ID).Scan(&count); err != nil {
		t.Fatalf("count placements: %v", err)
	}
	if count != 0 {
		t.Errorf("placements after delete = %d, want 0", count)
	}
}

func TestPostgres_ConcurrentSaves(t *testing.T) {
	cfg := skipIfNoPostgres(t)
	db := setupPostgresTestDB(t, cfg)

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			errs <- db.SaveRun(sampleRun("meadow", seed))
		}(int64(i))
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Errorf("SaveRun() error = %v", err)
		}
	}

	count, err := db.CountRuns(RunSucceeded)
	if err != nil {
		t.Fatalf("CountRuns() error = %v", err)
	}
	if count != workers {
		t.Errorf("CountRuns() = %d, want %d", count, workers)
	}
}
