package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/talkmaster-app/talkmaster/internal/domain"
)

var (
	_ domain.VocabularyStore = (*DB)(nil)
	_ domain.ReviewStore     = (*DB)(nil)
	_ domain.ConversationLog = (*DB)(nil)
)

// ─── Vocabulary ─────────────────────────────────────────────────────────────

// SaveWord stores a vocabulary item.
// Returns false if the word is already saved (case-insensitive, idempotent).
func (d *DB) SaveWord(ctx context.Context, item domain.VocabularyItem) (bool, error) {
	result, err := d.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO vocabulary (word, definition, example, saved_at) VALUES (?, ?, ?, ?)`,
		strings.TrimSpace(item.Word), item.Definition, item.Example, item.SavedAt.Unix(),
	)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	return n > 0, err
}

// IsWordSaved checks if a word is in the vocabulary list.
func (d *DB) IsWordSaved(ctx context.Context, word string) (bool, error) {
	var count int
	err := d.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM vocabulary WHERE word = ?`, strings.TrimSpace(word),
	).Scan(&count)
	return count > 0, err
}

// ListWords returns saved words, newest first.
func (d *DB) ListWords(ctx context.Context) ([]domain.VocabularyItem, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT word, definition, example, saved_at FROM vocabulary ORDER BY saved_at DESC, rowid DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.VocabularyItem
	for rows.Next() {
		var it domain.VocabularyItem
		var savedAt int64
		if err := rows.Scan(&it.Word, &it.Definition, &it.Example, &savedAt); err != nil {
			return nil, err
		}
		it.SavedAt = time.Unix(savedAt, 0)
		items = append(items, it)
	}
	return items, rows.Err()
}

// ClearWords deletes the whole vocabulary list.
func (d *DB) ClearWords(ctx context.Context) error {
	_, err := d.db.ExecContext(ctx, `DELETE FROM vocabulary`)
	return err
}

// ─── Review Items ───────────────────────────────────────────────────────────

// AddReviewItem stores a correction unless the same original is already kept.
func (d *DB) AddReviewItem(ctx context.Context, item domain.ReviewItem) (bool, error) {
	result, err := d.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO review_items (id, original, correction, created_at) VALUES (?, ?, ?, ?)`,
		item.ID, item.Original, item.Correction, item.CreatedAt.Unix(),
	)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	return n > 0, err
}

// ListReviewItems returns corrections, newest first.
func (d *DB) ListReviewItems(ctx context.Context) ([]domain.ReviewItem, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT id, original, correction, created_at FROM review_items ORDER BY created_at DESC, rowid DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.ReviewItem
	for rows.Next() {
		var it domain.ReviewItem
		var createdAt int64
		if err := rows.Scan(&it.ID, &it.Original, &it.Correction, &createdAt); err != nil {
			return nil, err
		}
		it.CreatedAt = time.Unix(createdAt, 0)
		items = append(items, it)
	}
	return items, rows.Err()
}

// ClearReviewItems deletes all corrections.
func (d *DB) ClearReviewItems(ctx context.Context) error {
	_, err := d.db.ExecContext(ctx, `DELETE FROM review_items`)
	return err
}

// ─── Conversation Log ───────────────────────────────────────────────────────

// AppendConversation records a completed conversation.
func (d *DB) AppendConversation(ctx context.Context, rec domain.ConversationRecord) error {
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO conversations (id, scenario_id, flawless, duration_sec, completed_at)
		 VALUES (?, ?, ?, ?, ?)`,
		rec.ID, rec.ScenarioID, rec.Flawless, rec.DurationSec, rec.CompletedAt.Unix(),
	)
	return err
}

// GetConversation returns a single history entry, or nil if not found.
func (d *DB) GetConversation(ctx context.Context, id string) (*domain.ConversationRecord, error) {
	row := d.db.QueryRowContext(ctx,
		`SELECT id, scenario_id, flawless, duration_sec, completed_at FROM conversations WHERE id = ?`, id,
	)
	rec, err := scanConversation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return rec, err
}

// ListConversations returns the most recent conversations, newest first.
func (d *DB) ListConversations(ctx context.Context, limit int) ([]domain.ConversationRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := d.db.QueryContext(ctx,
		`SELECT id, scenario_id, flawless, duration_sec, completed_at
		 FROM conversations ORDER BY completed_at DESC, rowid DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []domain.ConversationRecord
	for rows.Next() {
		rec, err := scanConversation(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, *rec)
	}
	return recs, rows.Err()
}

// ClearConversations deletes the practice history.
func (d *DB) ClearConversations(ctx context.Context) error {
	_, err := d.db.ExecContext(ctx, `DELETE FROM conversations`)
	return err
}

func scanConversation(s scanner) (*domain.ConversationRecord, error) {
	var rec domain.ConversationRecord
	var completedAt int64
	if err := s.Scan(&rec.ID, &rec.ScenarioID, &rec.Flawless, &rec.DurationSec, &completedAt); err != nil {
		return nil, err
	}
	rec.CompletedAt = time.Unix(completedAt, 0)
	return &rec, nil
}
