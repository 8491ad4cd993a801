package engagement

import (
	"context"
	"strconv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/talkmaster-app/talkmaster/internal/domain"
	"github.com/talkmaster-app/talkmaster/internal/infra/metrics"
)

// Ledger maintains UserStats and the set of unlocked achievements.
// Storage failures never reach the caller: reads fall back to defaults
// and failed writes are logged.
type Ledger struct {
	mu           sync.Mutex
	store        domain.KVStore
	achievements []domain.Achievement
	env          Env
	log          zerolog.Logger
}

// NewLedger creates a ledger over store with the standard catalog.
func NewLedger(store domain.KVStore, env Env) *Ledger {
	return NewLedgerWithCatalog(store, AllAchievements(), env)
}

// NewLedgerWithCatalog creates a ledger with a custom achievement catalog.
func NewLedgerWithCatalog(store domain.KVStore, catalog []domain.Achievement, env Env) *Ledger {
	env = env.withDefaults()
	return &Ledger{
		store:        store,
		achievements: catalog,
		env:          env,
		log:          env.Logger.With().Str("component", "ledger").Logger(),
	}
}

// Stats returns the current stats. Missing fields read as zero so older
// records stay valid; an unreadable record reads as DefaultUserStats.
func (l *Ledger) Stats(ctx context.Context) domain.UserStats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loadStats(ctx)
}

// CheckAndResetStreak zeroes the streak when the last conversation is
// older than yesterday. Call once at session start. Reports whether the
// streak was reset; repeated calls are no-ops.
func (l *Ledger) CheckAndResetStreak(ctx context.Context) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	stats := l.loadStats(ctx)
	if stats.LastConversationDate == nil || stats.Streak == 0 {
		return false
	}

	today := l.env.today()
	last := *stats.LastConversationDate
	if domain.IsToday(last, today) || domain.IsYesterday(last, today) {
		return false
	}

	l.log.Info().
		Int("streak", stats.Streak).
		Str("last", last.String()).
		Msg("streak expired")
	stats.Streak = 0
	l.saveStats(ctx, stats)
	return true
}

// RecordConversationCompletion applies one completed conversation and
// returns the achievement it newly unlocked, or nil. At most one
// achievement is returned per call.
func (l *Ledger) RecordConversationCompletion(ctx context.Context, scenarioID string, wasFlawless bool) *domain.Achievement {
	l.mu.Lock()
	defer l.mu.Unlock()

	today := l.env.today()
	stats := l.loadStats(ctx)

	stats.ConversationsCompleted++
	if scenarioID != "" && !stats.HasScenario(scenarioID) {
		stats.UniqueScenarios = append(stats.UniqueScenarios, scenarioID)
	}
	if wasFlawless {
		stats.FlawlessConversations++
	}

	switch last := stats.LastConversationDate; {
	case last == nil:
		stats.Streak = 1
	case domain.IsYesterday(*last, today):
		stats.Streak++
	case domain.IsToday(*last, today):
		// Already counted today
	default:
		stats.Streak = 1
	}
	stats.LastConversationDate = &today

	l.saveStats(ctx, stats)
	metrics.ConversationsCompleted.WithLabelValues(strconv.FormatBool(wasFlawless)).Inc()

	return l.unlockNext(ctx, stats)
}

// UnlockedAchievementIDs returns unlocked ids in unlock order.
func (l *Ledger) UnlockedAchievementIDs(ctx context.Context) []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loadUnlocked(ctx)
}

// AchievementsWithProgress returns every achievement with its unlock state
// and progress clamped to the goal.
func (l *Ledger) AchievementsWithProgress(ctx context.Context) []domain.AchievementProgress {
	l.mu.Lock()
	defer l.mu.Unlock()

	stats := l.loadStats(ctx)
	unlocked := toSet(l.loadUnlocked(ctx))

	out := make([]domain.AchievementProgress, 0, len(l.achievements))
	for _, a := range l.achievements {
		_, ok := unlocked[a.ID]
		out = append(out, progressFor(a, stats, ok))
	}
	return out
}

// IncrementDailyQuestsCompleted bumps the persisted count of claimed quests.
func (l *Ledger) IncrementDailyQuestsCompleted(ctx context.Context) domain.UserStats {
	l.mu.Lock()
	defer l.mu.Unlock()

	stats := l.loadStats(ctx)
	stats.DailyQuestsCompleted++
	l.saveStats(ctx, stats)
	return stats
}

// unlockNext finds the first locked achievement the stats now satisfy.
func (l *Ledger) unlockNext(ctx context.Context, stats domain.UserStats) *domain.Achievement {
	ids := l.loadUnlocked(ctx)
	unlocked := toSet(ids)

	for _, a := range l.achievements {
		if _, ok := unlocked[a.ID]; ok {
			continue
		}
		if !a.Reached(stats) {
			continue
		}
		saveJSON(ctx, l.store, l.log, KeyUnlocked, append(ids, a.ID))
		metrics.AchievementsUnlocked.WithLabelValues(a.ID).Inc()
		l.log.Info().Str("achievement", a.ID).Msg("achievement unlocked")
		return &a
	}
	return nil
}

// ─── Persistence ────────────────────────────────────────────────────────────

// storedStats is the on-disk shape. The date is kept as a string so an
// unparseable value costs only that field rather than the whole record.
type storedStats struct {
	ConversationsCompleted int      `json:"conversationsCompleted"`
	UniqueScenarios        []string `json:"uniqueScenarios"`
	Streak                 int      `json:"streak"`
	LastConversationDate   *string  `json:"lastConversationDate"`
	FlawlessConversations  int      `json:"flawlessConversations"`
	DailyQuestsCompleted   int      `json:"dailyQuestsCompleted"`
}

func (l *Ledger) loadStats(ctx context.Context) domain.UserStats {
	var raw storedStats
	if !loadJSON(ctx, l.store, l.log, KeyStats, &raw) {
		return domain.DefaultUserStats()
	}

	stats := domain.UserStats{
		ConversationsCompleted: max(raw.ConversationsCompleted, 0),
		UniqueScenarios:        dedupe(raw.UniqueScenarios),
		Streak:                 max(raw.Streak, 0),
		FlawlessConversations:  max(raw.FlawlessConversations, 0),
		DailyQuestsCompleted:   max(raw.DailyQuestsCompleted, 0),
	}
	if raw.LastConversationDate != nil {
		if d, ok := domain.ParseDate(*raw.LastConversationDate); ok {
			stats.LastConversationDate = &d
		} else {
			l.log.Warn().Str("value", *raw.LastConversationDate).Msg("ignoring unreadable lastConversationDate")
		}
	}
	// Every practiced scenario came from at least one conversation.
	if n := len(stats.UniqueScenarios); stats.ConversationsCompleted < n {
		stats.ConversationsCompleted = n
	}
	return stats
}

func (l *Ledger) saveStats(ctx context.Context, stats domain.UserStats) {
	if saveJSON(ctx, l.store, l.log, KeyStats, stats) {
		metrics.CurrentStreak.Set(float64(stats.Streak))
	}
}

func (l *Ledger) loadUnlocked(ctx context.Context) []string {
	var ids []string
	if !loadJSON(ctx, l.store, l.log, KeyUnlocked, &ids) {
		return []string{}
	}
	return dedupe(ids)
}

func toSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// dedupe drops repeats and empty entries, keeping first-seen order.
func dedupe(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, s := range in {
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
