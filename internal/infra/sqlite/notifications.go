package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/talkmaster-app/talkmaster/internal/domain"
)

var _ domain.NotificationStore = (*DB)(nil)

// ─── Notifications ──────────────────────────────────────────────────────────

// InsertNotification creates a new notification.
func (d *DB) InsertNotification(ctx context.Context, n domain.Notification) (int64, error) {
	result, err := d.db.ExecContext(ctx,
		`INSERT INTO notifications (type, title, body, ref_id, created_at, shown)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		string(n.Type), n.Title, n.Body, n.RefID, n.CreatedAt.Unix(), n.Shown,
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// ListPendingNotifications returns unshown notifications, oldest first
// so the UI shows them in the order they were earned.
func (d *DB) ListPendingNotifications(ctx context.Context, limit int) ([]domain.Notification, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := d.db.QueryContext(ctx,
		`SELECT id, type, title, body, ref_id, created_at, shown
		 FROM notifications WHERE shown = 0 ORDER BY created_at ASC, id ASC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifs []domain.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		notifs = append(notifs, *n)
	}
	return notifs, rows.Err()
}

// MarkNotificationShown marks a notification as shown.
func (d *DB) MarkNotificationShown(ctx context.Context, id int64) error {
	result, err := d.db.ExecContext(ctx, `UPDATE notifications SET shown = 1 WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("notification %d: %w", id, domain.ErrNotificationNotFound)
	}
	return nil
}

// ClearNotifications deletes every notification.
func (d *DB) ClearNotifications(ctx context.Context) error {
	_, err := d.db.ExecContext(ctx, `DELETE FROM notifications`)
	return err
}

func scanNotification(s scanner) (*domain.Notification, error) {
	var n domain.Notification
	var createdAt int64
	err := s.Scan(&n.ID, &n.Type, &n.Title, &n.Body, &n.RefID, &createdAt, &n.Shown)
	if err != nil {
		return nil, err
	}
	n.CreatedAt = time.Unix(createdAt, 0)
	return &n, nil
}
