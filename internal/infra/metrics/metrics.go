// Package metrics provides Prometheus metrics for TalkMaster.
// Counters and gauges for practice activity, achievements, quests and
// storage health.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ─── Practice ───────────────────────────────────────────────────────────────

// ConversationsCompleted tracks completed conversations by flawless flag.
var ConversationsCompleted = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "talkmaster",
	Name:      "conversations_completed_total",
	Help:      "Total completed conversations.",
}, []string{"flawless"})

// PracticeSeconds tracks total seconds spent in conversation.
var PracticeSeconds = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "talkmaster",
	Name:      "practice_seconds_total",
	Help:      "Total seconds of conversation practice.",
})

// CurrentStreak tracks the streak after the latest stats write.
var CurrentStreak = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "talkmaster",
	Name:      "streak_days",
	Help:      "Current consecutive-day practice streak.",
})

// VocabularySaved tracks newly saved words.
var VocabularySaved = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "talkmaster",
	Name:      "vocabulary_saved_total",
	Help:      "Total words saved to the vocabulary list.",
})

// ─── Achievements ───────────────────────────────────────────────────────────

// AchievementsUnlocked tracks unlocks by achievement id.
var AchievementsUnlocked = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "talkmaster",
	Name:      "achievements_unlocked_total",
	Help:      "Total achievements unlocked.",
}, []string{"id"})

// ─── Quests ─────────────────────────────────────────────────────────────────

// QuestsGenerated tracks daily quest sets generated.
var QuestsGenerated = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "talkmaster",
	Name:      "quest_sets_generated_total",
	Help:      "Total daily quest sets generated.",
})

// QuestProgress tracks progress events that advanced at least one quest.
var QuestProgress = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "talkmaster",
	Name:      "quest_progress_total",
	Help:      "Quest progress events that changed state, by quest type.",
}, []string{"type"})

// QuestsCompleted tracks quests reaching their goal, by type.
var QuestsCompleted = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "talkmaster",
	Name:      "quests_completed_total",
	Help:      "Total quests completed.",
}, []string{"type"})

// RewardsClaimed tracks successful reward claims.
var RewardsClaimed = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "talkmaster",
	Name:      "quest_rewards_claimed_total",
	Help:      "Total quest rewards claimed.",
})

// XPClaimed tracks XP granted through quest claims.
var XPClaimed = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "talkmaster",
	Name:      "quest_xp_claimed_total",
	Help:      "Total XP granted by quest claims.",
})

// ─── Storage ────────────────────────────────────────────────────────────────

// StoreErrors tracks recovered storage failures by operation.
var StoreErrors = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "talkmaster",
	Name:      "store_errors_total",
	Help:      "Storage failures recovered by falling back to defaults.",
}, []string{"op"})

// HealthStatus tracks per-check health (1=healthy, 0=unhealthy).
var HealthStatus = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "talkmaster",
	Name:      "health_check_status",
	Help:      "Health check status (1=healthy, 0=unhealthy).",
}, []string{"check"})
