package domain

import "context"

// ─── Storage Interfaces ─────────────────────────────────────────────────────
// Infrastructure implements them; the application layer depends on them.

// KVStore is the key-value primitive progress records are persisted in.
// Values are opaque strings (JSON documents or date markers).
type KVStore interface {
	// Get returns the value for key. ok is false when the key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Delete removes the given keys. Missing keys are ignored.
	Delete(ctx context.Context, keys ...string) error

	// Clear removes every key owned by the store.
	Clear(ctx context.Context) error
}

// VocabularyStore persists saved words.
type VocabularyStore interface {
	SaveWord(ctx context.Context, item VocabularyItem) (bool, error) // false if already saved
	IsWordSaved(ctx context.Context, word string) (bool, error)
	ListWords(ctx context.Context) ([]VocabularyItem, error)
	ClearWords(ctx context.Context) error
}

// ReviewStore persists grammar corrections.
type ReviewStore interface {
	AddReviewItem(ctx context.Context, item ReviewItem) (bool, error) // false if original already kept
	ListReviewItems(ctx context.Context) ([]ReviewItem, error)
	ClearReviewItems(ctx context.Context) error
}

// ConversationLog persists the practice history.
type ConversationLog interface {
	AppendConversation(ctx context.Context, rec ConversationRecord) error
	GetConversation(ctx context.Context, id string) (*ConversationRecord, error) // nil if absent
	ListConversations(ctx context.Context, limit int) ([]ConversationRecord, error)
	ClearConversations(ctx context.Context) error
}

// NotificationStore persists queued toasts.
type NotificationStore interface {
	InsertNotification(ctx context.Context, n Notification) (int64, error)
	ListPendingNotifications(ctx context.Context, limit int) ([]Notification, error)
	MarkNotificationShown(ctx context.Context, id int64) error
	ClearNotifications(ctx context.Context) error
}
