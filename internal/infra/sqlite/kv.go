package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/talkmaster-app/talkmaster/internal/domain"
)

var _ domain.KVStore = (*DB)(nil)

// ─── Progress Key-Value ─────────────────────────────────────────────────────

// Set stores a key-value pair, replacing any previous value.
func (d *DB) Set(ctx context.Context, key, value string) error {
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at`,
		key, value, time.Now().Unix(),
	)
	return err
}

// Get retrieves a value by key. ok is false if the key is not found.
func (d *DB) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := d.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// Delete removes the given keys.
func (d *DB) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(keys)), ",")
	args := make([]any, len(keys))
	for i, k := range keys {
		args[i] = k
	}
	_, err := d.db.ExecContext(ctx, `DELETE FROM kv WHERE key IN (`+placeholders+`)`, args...)
	return err
}

// Clear removes every key-value pair.
func (d *DB) Clear(ctx context.Context) error {
	_, err := d.db.ExecContext(ctx, `DELETE FROM kv`)
	return err
}
