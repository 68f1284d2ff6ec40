package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "modernc.org/sqlite"
)

// timeLayout is RFC 3339 with fixed-width nanoseconds. RFC3339Nano
// trims trailing zeros, which breaks lexicographic ORDER BY on the
// stored strings.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Config holds the SQLite store configuration.
type Config struct {
	// Path is a file path or ":memory:".
	Path string
}

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id         TEXT PRIMARY KEY,
	email      TEXT UNIQUE NOT NULL,
	password   TEXT NOT NULL,
	name       TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS workorders (
	id             TEXT PRIMARY KEY,
	project        TEXT NOT NULL,
	wo             TEXT NOT NULL,
	po             TEXT NOT NULL DEFAULT '',
	state          TEXT NOT NULL DEFAULT '',
	status         TEXT NOT NULL DEFAULT '',
	date           TEXT NOT NULL DEFAULT '',
	pm             TEXT NOT NULL DEFAULT '',
	notes          TEXT NOT NULL DEFAULT '',
	remote_item_id TEXT NOT NULL,
	owner_id       TEXT NOT NULL REFERENCES users(id),
	created_at     TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_workorders_owner ON workorders(owner_id, created_at DESC);
`

// Open opens the SQLite database and applies the schema.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*sql.DB, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("connecting to database", "path", cfg.Path)

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// The driver serializes writes; a single connection avoids
	// SQLITE_BUSY under concurrent inserts.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	logger.Info("database ready")
	return db, nil
}

// Close closes the database gracefully.
func Close(db *sql.DB, logger *slog.Logger) {
	if db == nil {
		return
	}
	if err := db.Close(); err != nil {
		logger.Error("failed to close database", "error", err)
	}
}
