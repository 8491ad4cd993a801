package engagement

import (
	"context"
	"fmt"

	"github.com/talkmaster-app/talkmaster/internal/domain"
)

// NotificationService queues toasts for the UI.
// Only two kinds exist: an achievement was unlocked, or a quest is ready
// to claim. Streak-at-risk nudges are never sent.
type NotificationService struct {
	store domain.NotificationStore
	env   Env
}

// NewNotificationService creates a notification service.
func NewNotificationService(store domain.NotificationStore, env Env) *NotificationService {
	return &NotificationService{store: store, env: env.withDefaults()}
}

// AchievementUnlocked queues the toast for a newly unlocked achievement.
func (n *NotificationService) AchievementUnlocked(ctx context.Context, a domain.Achievement) (int64, error) {
	return n.create(ctx, domain.Notification{
		Type:  domain.NotifyAchievement,
		Title: fmt.Sprintf("%s %s", a.Emoji, a.Title),
		Body:  a.Description,
		RefID: a.ID,
	})
}

// QuestCompleted queues the toast for a quest whose reward can be claimed.
func (n *NotificationService) QuestCompleted(ctx context.Context, q domain.Quest) (int64, error) {
	return n.create(ctx, domain.Notification{
		Type:  domain.NotifyQuestComplete,
		Title: "Quest complete!",
		Body:  fmt.Sprintf("%s (+%d XP)", q.Description, q.XP),
		RefID: q.ID,
	})
}

// Pending returns unshown notifications, oldest first.
func (n *NotificationService) Pending(ctx context.Context, limit int) ([]domain.Notification, error) {
	return n.store.ListPendingNotifications(ctx, limit)
}

// MarkShown marks a notification as shown.
func (n *NotificationService) MarkShown(ctx context.Context, id int64) error {
	return n.store.MarkNotificationShown(ctx, id)
}

// Clear drops every notification.
func (n *NotificationService) Clear(ctx context.Context) error {
	return n.store.ClearNotifications(ctx)
}

func (n *NotificationService) create(ctx context.Context, notif domain.Notification) (int64, error) {
	notif.CreatedAt = n.env.Clock()
	notif.Shown = false

	id, err := n.store.InsertNotification(ctx, notif)
	if err != nil {
		return 0, fmt.Errorf("insert notification: %w", err)
	}
	return id, nil
}
