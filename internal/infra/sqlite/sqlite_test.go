package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talkmaster-app/talkmaster/internal/domain"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	dir := t.TempDir()
	db, err := Open(dir)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

// ─── Database Lifecycle ─────────────────────────────────────────────────────

func TestOpen_CreatesDatabase(t *testing.T) {
	dir := t.TempDir()
	db, err := Open(dir)
	require.NoError(t, err)
	defer db.Close()

	_, err = os.Stat(filepath.Join(dir, "state.db"))
	assert.NoError(t, err, "state.db should exist")
}

func TestOpen_Reopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	db, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, db.Set(ctx, "talkmaster_quests_date", "2026-10-15"))
	require.NoError(t, db.Close())

	// Migrations are idempotent and data survives.
	db, err = Open(dir)
	require.NoError(t, err)
	defer db.Close()

	v, ok, err := db.Get(ctx, "talkmaster_quests_date")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "2026-10-15", v)
}

func TestOpen_Ping(t *testing.T) {
	db := newTestDB(t)
	assert.NoError(t, db.Ping(context.Background()))
}

// ─── Key-Value ──────────────────────────────────────────────────────────────

func TestKV_GetMissing(t *testing.T) {
	db := newTestDB(t)

	v, ok, err := db.Get(context.Background(), "nope")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, v)
}

func TestKV_SetOverwrites(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.Set(ctx, "k", "one"))
	require.NoError(t, db.Set(ctx, "k", "two"))

	v, ok, err := db.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "two", v)
}

func TestKV_DeleteAndClear(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	for _, k := range []string{"a", "b", "c"} {
		require.NoError(t, db.Set(ctx, k, k))
	}
	require.NoError(t, db.Delete(ctx, "a", "b", "missing"))

	_, ok, _ := db.Get(ctx, "a")
	assert.False(t, ok)
	_, ok, _ = db.Get(ctx, "c")
	assert.True(t, ok)

	require.NoError(t, db.Delete(ctx))
	require.NoError(t, db.Clear(ctx))
	_, ok, _ = db.Get(ctx, "c")
	assert.False(t, ok)
}

// ─── Vocabulary ─────────────────────────────────────────────────────────────

func TestVocabulary_CaseInsensitiveDedup(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	now := time.Now()

	saved, err := db.SaveWord(ctx, domain.VocabularyItem{Word: "Boarding", Definition: "getting on", SavedAt: now})
	require.NoError(t, err)
	assert.True(t, saved)

	saved, err = db.SaveWord(ctx, domain.VocabularyItem{Word: "boarding ", SavedAt: now})
	require.NoError(t, err)
	assert.False(t, saved, "same word in another case is not saved twice")

	ok, err := db.IsWordSaved(ctx, "BOARDING")
	require.NoError(t, err)
	assert.True(t, ok)

	items, err := db.ListWords(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Boarding", items[0].Word)
	assert.Equal(t, "getting on", items[0].Definition)
}

func TestVocabulary_ListNewestFirstAndClear(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	base := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)

	_, _ = db.SaveWord(ctx, domain.VocabularyItem{Word: "menu", SavedAt: base})
	_, _ = db.SaveWord(ctx, domain.VocabularyItem{Word: "bill", SavedAt: base.Add(time.Hour)})

	items, err := db.ListWords(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "bill", items[0].Word)

	require.NoError(t, db.ClearWords(ctx))
	items, err = db.ListWords(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
}

// ─── Review Items ───────────────────────────────────────────────────────────

func TestReviewItems_DedupOnOriginal(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	added, err := db.AddReviewItem(ctx, domain.ReviewItem{
		ID: "r1", Original: "I goed home", Correction: "I went home", CreatedAt: time.Now(),
	})
	require.NoError(t, err)
	assert.True(t, added)

	added, err = db.AddReviewItem(ctx, domain.ReviewItem{
		ID: "r2", Original: "i GOED home", Correction: "I went home", CreatedAt: time.Now(),
	})
	require.NoError(t, err)
	assert.False(t, added)

	items, err := db.ListReviewItems(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "r1", items[0].ID)

	require.NoError(t, db.ClearReviewItems(ctx))
	items, _ = db.ListReviewItems(ctx)
	assert.Empty(t, items)
}

// ─── Conversation Log ───────────────────────────────────────────────────────

func TestConversations_AppendListGet(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	base := time.Date(2026, 10, 14, 18, 0, 0, 0, time.UTC)

	for i, sc := range []string{"airport", "hotel", "doctor"} {
		require.NoError(t, db.AppendConversation(ctx, domain.ConversationRecord{
			ID: sc + "-id", ScenarioID: sc, Flawless: i == 1, DurationSec: 60 * (i + 1),
			CompletedAt: base.Add(time.Duration(i) * time.Hour),
		}))
	}

	recs, err := db.ListConversations(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "doctor", recs[0].ScenarioID)
	assert.Equal(t, "hotel", recs[1].ScenarioID)
	assert.True(t, recs[1].Flawless)

	rec, err := db.GetConversation(ctx, "airport-id")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, 60, rec.DurationSec)
	assert.Equal(t, base.Unix(), rec.CompletedAt.Unix())

	rec, err = db.GetConversation(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, rec)

	require.NoError(t, db.ClearConversations(ctx))
	recs, _ = db.ListConversations(ctx, 0)
	assert.Empty(t, recs)
}

// ─── Notifications ──────────────────────────────────────────────────────────

func TestNotifications_PendingAndShown(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	now := time.Now()

	id1, err := db.InsertNotification(ctx, domain.Notification{
		Type: domain.NotifyAchievement, Title: "First Conversation", RefID: "first_conversation", CreatedAt: now,
	})
	require.NoError(t, err)
	_, err = db.InsertNotification(ctx, domain.Notification{
		Type: domain.NotifyQuestComplete, Title: "Quest complete", RefID: "2026-10-15-0", CreatedAt: now.Add(time.Second),
	})
	require.NoError(t, err)

	pending, err := db.ListPendingNotifications(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, id1, pending[0].ID)
	assert.Equal(t, "first_conversation", pending[0].RefID)

	require.NoError(t, db.MarkNotificationShown(ctx, id1))
	pending, _ = db.ListPendingNotifications(ctx, 10)
	require.Len(t, pending, 1)
	assert.Equal(t, domain.NotifyQuestComplete, pending[0].Type)

	err = db.MarkNotificationShown(ctx, 9999)
	assert.True(t, errors.Is(err, domain.ErrNotificationNotFound))

	require.NoError(t, db.ClearNotifications(ctx))
	pending, _ = db.ListPendingNotifications(ctx, 10)
	assert.Empty(t, pending)
}
