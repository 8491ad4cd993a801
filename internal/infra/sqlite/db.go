// Package sqlite provides SQLite-based persistent storage for TalkMaster.
// Uses WAL mode for concurrent reads and crash-safe writes.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver (no CGO required)
)

// DB wraps a SQLite connection with WAL mode and migrations.
type DB struct {
	db *sql.DB
}

// Open creates or opens the SQLite database at dir/state.db.
// Enables WAL mode, foreign keys, and 5-second busy timeout.
func Open(dir string) (*DB, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	dbPath := filepath.Join(dir, "state.db")
	dsn := dbPath + "?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	// Connection pool settings for SQLite
	db.SetMaxOpenConns(1) // SQLite is single-writer
	db.SetMaxIdleConns(1)

	d := &DB{db: db}
	if err := d.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return d, nil
}

// Close cleanly shuts down the database.
func (d *DB) Close() error {
	return d.db.Close()
}

// Ping checks database connectivity.
func (d *DB) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

// migrate runs idempotent schema migrations.
func (d *DB) migrate() error {
	migrations := []string{
		// Progress records (stats, unlocked ids, today's quests, date marker)
		`CREATE TABLE IF NOT EXISTS kv (
			key        TEXT PRIMARY KEY,
			value      TEXT NOT NULL,
			updated_at INTEGER NOT NULL
		)`,

		// Saved vocabulary, one row per word regardless of case
		`CREATE TABLE IF NOT EXISTS vocabulary (
			word       TEXT PRIMARY KEY COLLATE NOCASE,
			definition TEXT NOT NULL DEFAULT '',
			example    TEXT NOT NULL DEFAULT '',
			saved_at   INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_vocabulary_saved ON vocabulary(saved_at)`,

		// Grammar corrections kept for review
		`CREATE TABLE IF NOT EXISTS review_items (
			id         TEXT PRIMARY KEY,
			original   TEXT NOT NULL UNIQUE COLLATE NOCASE,
			correction TEXT NOT NULL,
			created_at INTEGER NOT NULL
		)`,

		// Practice history
		`CREATE TABLE IF NOT EXISTS conversations (
			id           TEXT PRIMARY KEY,
			scenario_id  TEXT NOT NULL,
			flawless     BOOLEAN NOT NULL DEFAULT 0,
			duration_sec INTEGER NOT NULL DEFAULT 0,
			completed_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_conversations_completed ON conversations(completed_at)`,

		// Queued toasts
		`CREATE TABLE IF NOT EXISTS notifications (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			type       TEXT NOT NULL,
			title      TEXT NOT NULL,
			body       TEXT NOT NULL DEFAULT '',
			ref_id     TEXT NOT NULL DEFAULT '',
			created_at INTEGER NOT NULL,
			shown      BOOLEAN DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_notifications_pending ON notifications(shown, created_at)`,
	}

	for _, m := range migrations {
		if _, err := d.db.Exec(m); err != nil {
			return fmt.Errorf("exec migration: %w", err)
		}
	}
	return nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}
