// Package domain holds the core types of the TalkMaster progress engine.
// Stats, achievements and quests are persisted as JSON records in a
// key-value store; these types define their wire shape.
package domain

import (
	"time"

	"cloud.google.com/go/civil"
)

// ─── Stats ──────────────────────────────────────────────────────────────────

// UserStats is the singleton record of cumulative practice statistics.
type UserStats struct {
	ConversationsCompleted int         `json:"conversationsCompleted"`
	UniqueScenarios        []string    `json:"uniqueScenarios"`
	Streak                 int         `json:"streak"`
	LastConversationDate   *civil.Date `json:"lastConversationDate"`
	FlawlessConversations  int         `json:"flawlessConversations"`
	DailyQuestsCompleted   int         `json:"dailyQuestsCompleted"`
}

// DefaultUserStats returns the zeroed record used for new users and
// whenever the stored record cannot be read.
func DefaultUserStats() UserStats {
	return UserStats{UniqueScenarios: []string{}}
}

// HasScenario reports whether id was already practiced.
func (s UserStats) HasScenario(id string) bool {
	for _, sc := range s.UniqueScenarios {
		if sc == id {
			return true
		}
	}
	return false
}

// ─── Achievements ───────────────────────────────────────────────────────────

// AchievementMetric names the stat an achievement's goal is measured against.
type AchievementMetric string

const (
	MetricConversations   AchievementMetric = "conversations_completed"
	MetricUniqueScenarios AchievementMetric = "unique_scenarios"
	MetricStreak          AchievementMetric = "streak"
	MetricFlawless        AchievementMetric = "flawless_conversations"
)

// Value reads the bound metric from a stats snapshot.
func (m AchievementMetric) Value(s UserStats) int {
	switch m {
	case MetricConversations:
		return s.ConversationsCompleted
	case MetricUniqueScenarios:
		return len(s.UniqueScenarios)
	case MetricStreak:
		return s.Streak
	case MetricFlawless:
		return s.FlawlessConversations
	}
	return 0
}

// Achievement is a permanent milestone from the static catalog.
type Achievement struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Emoji       string            `json:"emoji"`
	Goal        int               `json:"goal"`
	Metric      AchievementMetric `json:"-"`
}

// Reached reports whether the bound metric meets the goal.
func (a Achievement) Reached(s UserStats) bool {
	return a.Metric.Value(s) >= a.Goal
}

// AchievementProgress is an achievement plus its display state.
type AchievementProgress struct {
	Achievement
	IsUnlocked      bool `json:"isUnlocked"`
	CurrentProgress int  `json:"currentProgress"` // clamped to Goal
}

// ─── Notification Types ─────────────────────────────────────────────────────

// NotificationType categorizes notifications.
type NotificationType string

const (
	NotifyAchievement   NotificationType = "achievement"
	NotifyQuestComplete NotificationType = "quest_complete"
)

// Notification is a toast queued for the UI. The UI shows one at a time.
type Notification struct {
	ID        int64            `json:"id"`
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	Body      string           `json:"body"`
	RefID     string           `json:"ref_id"` // achievement or quest id
	CreatedAt time.Time        `json:"created_at"`
	Shown     bool             `json:"shown"`
}

// ─── XP / Level ─────────────────────────────────────────────────────────────

// ProgressSummary is the aggregated XP view shown on the dashboard.
type ProgressSummary struct {
	TotalXP           int       `json:"totalXp"`
	Level             int       `json:"level"`
	XPIntoLevel       int       `json:"xpIntoLevel"`
	XPToNextLevel     int       `json:"xpToNextLevel"`
	Stats             UserStats `json:"stats"`
	UnlockedCount     int       `json:"unlockedAchievements"`
	TotalAchievements int       `json:"totalAchievements"`
	Quests            []Quest   `json:"quests"`
}
