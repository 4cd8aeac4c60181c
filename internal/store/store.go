// Package store provides the SQLite storage layer for the recipe catalog.
//
// The catalog backs example generation and constraint-filtered lookup: rows
// are imported from CSV exports, queried with the numeric bounds and tag
// filters a parsed constraint set implies, and sampled randomly when a
// generator needs plausible result listings.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// DefaultDBPath is the default database location.
const DefaultDBPath = "~/.mealparse/catalog.db"

// StoreConfig holds configuration for NewStore.
type StoreConfig struct {
	DBPath string
}

// Store defines the catalog storage interface.
type Store interface {
	AddRecipe(ctx context.Context, r *Recipe) (int64, error)
	GetRecipe(ctx context.Context, recipeID string) (*Recipe, error)
	ImportCSV(ctx context.Context, path string) (int, error)
	Filter(ctx context.Context, f Filter) ([]*Recipe, error)
	Sample(ctx context.Context, f Filter, n int) ([]*Recipe, error)
	Count(ctx context.Context) (int64, error)
	Close() error
}

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
}

// NewStore creates a new SQLite-backed Store.
// Pass ":memory:" for in-memory databases (testing).
func NewStore(cfg StoreConfig) (Store, error) {
	if cfg.DBPath == "" {
		cfg.DBPath = expandPath(DefaultDBPath)
	}

	if cfg.DBPath != ":memory:" {
		dir := filepath.Dir(cfg.DBPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	// Enable WAL mode and foreign keys
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("setting pragma %q: %w", p, err)
		}
	}

	s := &SQLiteStore{db: db, dbPath: cfg.DBPath}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// migrate creates the catalog tables if they don't exist.
func (s *SQLiteStore) migrate() error {
	ddl := `
CREATE TABLE IF NOT EXISTS recipes (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	recipe_id       TEXT NOT NULL UNIQUE,
	title           TEXT NOT NULL,
	tags            TEXT NOT NULL DEFAULT '',
	serves          TEXT NOT NULL DEFAULT '',
	average_rating  REAL,
	calories        REAL,
	protein_g       REAL,
	sodium_mg       REAL,
	carbs_g         REAL,
	sugars_g        REAL,
	total_fat_g     REAL,
	saturated_fat_g REAL,
	duration_min    REAL
);

CREATE INDEX IF NOT EXISTS idx_recipes_calories ON recipes(calories);
CREATE INDEX IF NOT EXISTS idx_recipes_duration ON recipes(duration_min);
`
	if _, err := s.db.Exec(ddl); err != nil {
		return fmt.Errorf("creating recipes table: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// expandPath expands ~ to home directory.
func expandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[1:])
	}
	return path
}
