package engagement

import "github.com/talkmaster-app/talkmaster/internal/domain"

// ─── Achievement Definitions ────────────────────────────────────────────────
// Order is the unlock priority: when one event qualifies for several,
// the earliest entry wins and the rest wait for the next completion.

// AllAchievements returns the full achievement catalog in priority order.
func AllAchievements() []domain.Achievement {
	return []domain.Achievement{
		{
			ID: "first_conversation", Title: "First Conversation",
			Description: "Complete your first conversation.", Emoji: "👋",
			Goal: 1, Metric: domain.MetricConversations,
		},
		{
			ID: "explorer", Title: "Explorer",
			Description: "Try 5 different scenarios.", Emoji: "🗺️",
			Goal: 5, Metric: domain.MetricUniqueScenarios,
		},
		{
			ID: "persistent", Title: "Persistent",
			Description: "Practice for 7 days in a row.", Emoji: "🔥",
			Goal: 7, Metric: domain.MetricStreak,
		},
		{
			ID: "perfectionist", Title: "Perfectionist",
			Description: "Complete a conversation with no mistakes.", Emoji: "🎯",
			Goal: 1, Metric: domain.MetricFlawless,
		},
	}
}

// progressFor builds the display view of one achievement.
func progressFor(a domain.Achievement, stats domain.UserStats, unlocked bool) domain.AchievementProgress {
	return domain.AchievementProgress{
		Achievement:     a,
		IsUnlocked:      unlocked,
		CurrentProgress: min(a.Metric.Value(stats), a.Goal),
	}
}
