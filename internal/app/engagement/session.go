package engagement

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/talkmaster-app/talkmaster/internal/domain"
	"github.com/talkmaster-app/talkmaster/internal/infra/metrics"
)

// SessionDeps are the stores a Session is built on.
type SessionDeps struct {
	Store         domain.KVStore
	Vocabulary    domain.VocabularyStore
	Reviews       domain.ReviewStore
	History       domain.ConversationLog
	Notifications domain.NotificationStore
}

// Session sequences the ledger and the scheduler the way the app shell
// needs them: ledger first, then quest events, then notifications.
type Session struct {
	Ledger        *Ledger
	Quests        *Scheduler
	Scenarios     *ScenarioCatalog
	Notifications *NotificationService

	store   domain.KVStore
	vocab   domain.VocabularyStore
	reviews domain.ReviewStore
	history domain.ConversationLog
	env     Env
	log     zerolog.Logger
}

// NewSession wires the engine over deps. The quest catalog covers the
// built-in scenarios.
func NewSession(deps SessionDeps, env Env, cfg SchedulerConfig) (*Session, error) {
	env = env.withDefaults()

	ledger := NewLedger(deps.Store, env)
	scenarios := NewScenarioCatalog(deps.Store, env)
	quests, err := NewScheduler(deps.Store, ledger, DefaultQuestCatalog(scenarios.Builtin()), env, cfg)
	if err != nil {
		return nil, fmt.Errorf("create quest scheduler: %w", err)
	}

	return &Session{
		Ledger:        ledger,
		Quests:        quests,
		Scenarios:     scenarios,
		Notifications: NewNotificationService(deps.Notifications, env),
		store:         deps.Store,
		vocab:         deps.Vocabulary,
		reviews:       deps.Reviews,
		history:       deps.History,
		env:           env,
		log:           env.Logger.With().Str("component", "session").Logger(),
	}, nil
}

// Start runs the app-start sequence: expire a stale streak, then read stats.
func (s *Session) Start(ctx context.Context) domain.UserStats {
	s.Ledger.CheckAndResetStreak(ctx)
	return s.Ledger.Stats(ctx)
}

// CompletionResult is everything the UI needs after a conversation ends.
type CompletionResult struct {
	RecordID        string              `json:"record_id"`
	Stats           domain.UserStats    `json:"stats"`
	Achievement     *domain.Achievement `json:"achievement"`
	Quests          []domain.Quest      `json:"quests"`
	CompletedQuests []domain.Quest      `json:"completed_quests"`
	NextScenario    *domain.Scenario    `json:"next_scenario"`
}

// CompleteConversation records a finished conversation in the ledger,
// then feeds the any-scenario, specific-scenario and elapsed-seconds
// quest events.
func (s *Session) CompleteConversation(ctx context.Context, out domain.ConversationOutcome) (CompletionResult, error) {
	out.ScenarioID = strings.TrimSpace(out.ScenarioID)
	if out.ScenarioID == "" {
		return CompletionResult{}, fmt.Errorf("%w: scenario id is required", domain.ErrInvalidOutcome)
	}
	if out.Duration < 0 {
		return CompletionResult{}, fmt.Errorf("%w: negative duration %s", domain.ErrInvalidOutcome, out.Duration)
	}
	if out.Duration > domain.MaxConversationDuration {
		return CompletionResult{}, fmt.Errorf("%w: duration %s exceeds %s", domain.ErrInvalidOutcome, out.Duration, domain.MaxConversationDuration)
	}

	var res CompletionResult
	res.Achievement = s.Ledger.RecordConversationCompletion(ctx, out.ScenarioID, out.Flawless)

	events := []domain.ProgressEvent{
		{Type: domain.QuestCompleteAnyScenario, Amount: 1},
		{Type: domain.QuestCompleteSpecificScenario, ScenarioID: out.ScenarioID},
	}
	if secs := out.Seconds(); secs > 0 {
		events = append(events, domain.ProgressEvent{Type: domain.QuestConverseForMinutes, Amount: secs})
		metrics.PracticeSeconds.Add(float64(secs))
	}
	for _, ev := range events {
		quests, completed := s.Quests.UpdateProgress(ctx, ev)
		res.Quests = quests
		res.CompletedQuests = append(res.CompletedQuests, completed...)
	}

	rec := domain.ConversationRecord{
		ID:          uuid.NewString(),
		ScenarioID:  out.ScenarioID,
		Flawless:    out.Flawless,
		DurationSec: out.Seconds(),
		CompletedAt: s.env.Clock(),
	}
	if err := s.history.AppendConversation(ctx, rec); err != nil {
		s.log.Warn().Err(err).Str("scenario", out.ScenarioID).Msg("append conversation history")
	} else {
		res.RecordID = rec.ID
	}

	if res.Achievement != nil {
		s.notifyAchievement(ctx, *res.Achievement)
	}
	s.notifyQuests(ctx, res.CompletedQuests)

	res.Stats = s.Ledger.Stats(ctx)
	res.NextScenario = s.Scenarios.NextInJourney(res.Stats)

	s.log.Info().
		Str("scenario", out.ScenarioID).
		Bool("flawless", out.Flawless).
		Int("seconds", out.Seconds()).
		Int("streak", res.Stats.Streak).
		Msg("conversation completed")
	return res, nil
}

// RecordProgress feeds a single app event to the quest scheduler.
func (s *Session) RecordProgress(ctx context.Context, ev domain.ProgressEvent) ([]domain.Quest, []domain.Quest, error) {
	if !ev.Type.Valid() {
		return nil, nil, fmt.Errorf("%w: unknown type %q", domain.ErrInvalidEvent, ev.Type)
	}
	if ev.Type == domain.QuestConverseForMinutes && ev.Amount < 0 {
		return nil, nil, fmt.Errorf("%w: negative amount %d", domain.ErrInvalidEvent, ev.Amount)
	}
	quests, completed := s.Quests.UpdateProgress(ctx, ev)
	s.notifyQuests(ctx, completed)
	return quests, completed, nil
}

// VocabularyResult reports a save attempt.
type VocabularyResult struct {
	Saved  bool           `json:"saved"` // false if the word was already in the list
	Quests []domain.Quest `json:"quests"`
}

// SaveVocabularyWord adds a word to the list. Only a word not saved
// before advances the save-words quests.
func (s *Session) SaveVocabularyWord(ctx context.Context, item domain.VocabularyItem) (VocabularyResult, error) {
	item.Word = strings.TrimSpace(item.Word)
	if item.Word == "" {
		return VocabularyResult{}, domain.ErrEmptyWord
	}
	item.SavedAt = s.env.Clock()

	saved, err := s.vocab.SaveWord(ctx, item)
	if err != nil {
		return VocabularyResult{}, fmt.Errorf("save word %q: %w", item.Word, err)
	}
	if !saved {
		return VocabularyResult{Saved: false, Quests: s.Quests.Quests(ctx)}, nil
	}

	metrics.VocabularySaved.Inc()
	quests, completed := s.Quests.UpdateProgress(ctx, domain.ProgressEvent{Type: domain.QuestSaveVocabWords, Amount: 1})
	s.notifyQuests(ctx, completed)
	return VocabularyResult{Saved: true, Quests: quests}, nil
}

// Vocabulary lists saved words, newest first.
func (s *Session) Vocabulary(ctx context.Context) ([]domain.VocabularyItem, error) {
	return s.vocab.ListWords(ctx)
}

// IsWordSaved reports whether word is already in the list.
func (s *Session) IsWordSaved(ctx context.Context, word string) (bool, error) {
	return s.vocab.IsWordSaved(ctx, word)
}

// ClearVocabulary deletes every saved word.
func (s *Session) ClearVocabulary(ctx context.Context) error {
	return s.vocab.ClearWords(ctx)
}

// AddReviewItem keeps a correction for later review. Returns false when
// the same original sentence is already kept.
func (s *Session) AddReviewItem(ctx context.Context, original, correction string) (bool, error) {
	original, correction = strings.TrimSpace(original), strings.TrimSpace(correction)
	if original == "" || correction == "" {
		return false, domain.ErrEmptyReview
	}
	return s.reviews.AddReviewItem(ctx, domain.ReviewItem{
		ID:         uuid.NewString(),
		Original:   original,
		Correction: correction,
		CreatedAt:  s.env.Clock(),
	})
}

// ReviewItems lists kept corrections, newest first.
func (s *Session) ReviewItems(ctx context.Context) ([]domain.ReviewItem, error) {
	return s.reviews.ListReviewItems(ctx)
}

// ClearReviewItems deletes every kept correction.
func (s *Session) ClearReviewItems(ctx context.Context) error {
	return s.reviews.ClearReviewItems(ctx)
}

// ClaimQuest claims a quest reward. A successful claim also counts toward
// dailyQuestsCompleted. Claiming an id not in today's set is an error;
// claiming twice is not, and gains 0.
func (s *Session) ClaimQuest(ctx context.Context, questID string) (domain.ClaimResult, error) {
	res := s.Quests.ClaimReward(ctx, questID)
	if res.XPGained > 0 {
		s.Ledger.IncrementDailyQuestsCompleted(ctx)
		return res, nil
	}
	for _, q := range res.Quests {
		if q.ID == questID {
			return res, nil
		}
	}
	return res, fmt.Errorf("%w: %s", domain.ErrQuestNotFound, questID)
}

// Summary aggregates XP, level, stats and today's quests.
func (s *Session) Summary(ctx context.Context) domain.ProgressSummary {
	stats := s.Ledger.Stats(ctx)
	return Summarize(stats, s.Quests.Quests(ctx), s.Ledger.AchievementsWithProgress(ctx))
}

// History lists recent conversations, newest first.
func (s *Session) History(ctx context.Context, limit int) ([]domain.ConversationRecord, error) {
	return s.history.ListConversations(ctx, limit)
}

// Conversation returns one history entry.
func (s *Session) Conversation(ctx context.Context, id string) (domain.ConversationRecord, error) {
	rec, err := s.history.GetConversation(ctx, id)
	if err != nil {
		return domain.ConversationRecord{}, err
	}
	if rec == nil {
		return domain.ConversationRecord{}, fmt.Errorf("%w: %s", domain.ErrConversationNotFound, id)
	}
	return *rec, nil
}

// ─── Preferences ────────────────────────────────────────────────────────────

// preferenceKeys maps UI preference names to storage keys.
var preferenceKeys = map[string]string{
	"profile": KeyUserProfile,
	"theme":   KeyTheme,
}

// Preference returns an opaque UI preference value.
func (s *Session) Preference(ctx context.Context, name string) (string, bool, error) {
	key, ok := preferenceKeys[name]
	if !ok {
		return "", false, fmt.Errorf("%w: %q", domain.ErrUnknownPref, name)
	}
	return s.store.Get(ctx, key)
}

// SetPreference stores an opaque UI preference value.
func (s *Session) SetPreference(ctx context.Context, name, value string) error {
	key, ok := preferenceKeys[name]
	if !ok {
		return fmt.Errorf("%w: %q", domain.ErrUnknownPref, name)
	}
	return s.store.Set(ctx, key, value)
}

// ClearPreference removes a UI preference. Clearing an unset one is a no-op.
func (s *Session) ClearPreference(ctx context.Context, name string) error {
	key, ok := preferenceKeys[name]
	if !ok {
		return fmt.Errorf("%w: %q", domain.ErrUnknownPref, name)
	}
	return s.store.Delete(ctx, key)
}

// Reset wipes all progress: stats, unlocked achievements, quests and their
// date marker, custom scenarios, UI preferences, saved words, corrections,
// history and notifications.
func (s *Session) Reset(ctx context.Context) error {
	err := errors.Join(
		s.store.Clear(ctx),
		s.vocab.ClearWords(ctx),
		s.reviews.ClearReviewItems(ctx),
		s.history.ClearConversations(ctx),
		s.Notifications.Clear(ctx),
	)
	if err != nil {
		return fmt.Errorf("reset progress: %w", err)
	}
	metrics.CurrentStreak.Set(0)
	s.log.Info().Msg("all progress reset")
	return nil
}

func (s *Session) notifyAchievement(ctx context.Context, a domain.Achievement) {
	if _, err := s.Notifications.AchievementUnlocked(ctx, a); err != nil {
		s.log.Warn().Err(err).Str("achievement", a.ID).Msg("queue achievement notification")
	}
}

func (s *Session) notifyQuests(ctx context.Context, completed []domain.Quest) {
	for _, q := range completed {
		if _, err := s.Notifications.QuestCompleted(ctx, q); err != nil {
			s.log.Warn().Err(err).Str("quest", q.ID).Msg("queue quest notification")
		}
	}
}
