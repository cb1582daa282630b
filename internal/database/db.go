package database

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// DB wraps the sqlite connection holding the historical trips dataset.
type DB struct {
	*sqlx.DB
}

// NewDB opens (creating if needed) the trips database under dataDir.
func NewDB(dataDir string) (*DB, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "tripsense.db")
	connStr := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000", dbPath)

	db, err := sqlx.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	database := &DB{DB: db}
	if err := database.migrate(); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	slog.Info("Trips database initialized", "path", dbPath)
	return database, nil
}

// NewMemoryDB opens an in-memory database, used by tests.
func NewMemoryDB() (*DB, error) {
	db, err := sqlx.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory database: %w", err)
	}
	database := &DB{DB: db}
	if err := database.migrate(); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return database, nil
}

// migrate creates the trips schema.
func (db *DB) migrate() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS fact_trips (
			trip_id TEXT PRIMARY KEY,
			city TEXT NOT NULL DEFAULT '',
			trip_date TEXT NOT NULL DEFAULT '',
			passenger_type TEXT NOT NULL DEFAULT '',
			distance_km REAL,
			fare_amount REAL,
			passenger_rating REAL,
			driver_rating REAL
		)`,

		// Cohort lookups filter on distance and fare windows.
		`CREATE INDEX IF NOT EXISTS idx_fact_trips_distance_fare ON fact_trips(distance_km, fare_amount)`,
		`CREATE INDEX IF NOT EXISTS idx_fact_trips_city ON fact_trips(city)`,
		`CREATE INDEX IF NOT EXISTS idx_fact_trips_date ON fact_trips(trip_date)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("failed to execute migration: %w", err)
		}
	}
	return nil
}
