// Package repository is the local persistence layer: a single sqlite file
// holding the knowledge-base document and the weighing records.
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS kv (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS weighing_records (
	id              TEXT PRIMARY KEY,
	created_at      TEXT NOT NULL,
	supplier        TEXT NOT NULL,
	product         TEXT NOT NULL,
	gross_weight    REAL NOT NULL,
	note_weight     REAL NOT NULL,
	net_weight      REAL NOT NULL,
	tare_total      REAL NOT NULL,
	status          TEXT NOT NULL,
	document        TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_weighing_supplier ON weighing_records (supplier, created_at);
`

// Open opens (or creates) the sqlite database and applies the schema. The
// driver is pure Go, so the binary stays CGO-free apart from the OCR tier.
func Open(ctx context.Context, path string, logger *slog.Logger) (*sql.DB, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("opening database", "path", path)

	db, err := sql.Open("sqlite", path)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// one writer at a time keeps sqlite happy under concurrent saves
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		logger.Error("failed to apply schema", "error", err)
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	logger.Info("database ready", "path", path)
	return db, nil
}

// Close closes the database gracefully.
func Close(db *sql.DB, logger *slog.Logger) {
	if db == nil {
		return
	}
	if logger == nil {
		logger = slog.Default()
	}
	if err := db.Close(); err != nil {
		logger.Error("failed to close database", "error", err)
		return
	}
	logger.Info("database closed")
}

// HealthCheck pings the database to catch path and permission issues early.
func HealthCheck(ctx context.Context, db *sql.DB, timeout time.Duration, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug("pinging database")
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if err := db.PingContext(ctx); err != nil {
		return err
	}
	logger.Debug("database ping successful")
	return nil
}
