package store

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"

	_ "modernc.org/sqlite"

	"clipforge/internal/config"
)

// Store manages pipeline persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the clipforge database and verifies the
// schema.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := filepath.Join(cfg.Paths.LogDir, "clipforge.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Stats returns row counts used by the status command.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var stats Stats
	counts := []struct {
		dest  *int64
		query string
		args  []any
	}{
		{&stats.Episodes, "SELECT COUNT(1) FROM episodes", nil},
		{&stats.ClipsReady, "SELECT COUNT(1) FROM clips WHERE status = ?", []any{ClipReady}},
		{&stats.ClipsPublished, "SELECT COUNT(1) FROM clips WHERE status = ?", []any{ClipPublished}},
		{&stats.UploadsScheduled, "SELECT COUNT(1) FROM uploads WHERE status = ?", []any{UploadScheduled}},
		{&stats.UploadsUploaded, "SELECT COUNT(1) FROM uploads WHERE status = ?", []any{UploadUploaded}},
		{&stats.UploadsFailed, "SELECT COUNT(1) FROM uploads WHERE status = ?", []any{UploadFailed}},
	}
	for _, count := range counts {
		if err := s.db.QueryRowContext(ctx, count.query, count.args...).Scan(count.dest); err != nil {
			return Stats{}, fmt.Errorf("count rows: %w", err)
		}
	}
	return stats, nil
}
