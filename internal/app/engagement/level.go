package engagement

import "github.com/talkmaster-app/talkmaster/internal/domain"

// XP is derived, never stored: it is recomputed from stats and today's
// claimed quests on every read.
const (
	BaseXP          = 150 // granted on onboarding
	XPPerConvo      = 10
	XPPerDailyQuest = 25
	XPPerLevel      = 100
)

// TotalXP returns the user's XP from cumulative stats plus the XP of
// today's claimed quests.
func TotalXP(stats domain.UserStats, quests []domain.Quest) int {
	xp := BaseXP + stats.ConversationsCompleted*XPPerConvo + stats.DailyQuestsCompleted*XPPerDailyQuest
	for _, q := range quests {
		if q.IsClaimed {
			xp += q.XP
		}
	}
	return xp
}

// LevelForXP returns the level for an XP total. Levels are flat 100 XP steps from L1.
func LevelForXP(xp int) int {
	if xp < 0 {
		return 1
	}
	return xp/XPPerLevel + 1
}

// XPIntoLevel returns XP earned since the current level began.
func XPIntoLevel(xp int) int {
	if xp < 0 {
		return 0
	}
	return xp % XPPerLevel
}

// XPToNextLevel returns XP remaining until the next level.
func XPToNextLevel(xp int) int {
	return XPPerLevel - XPIntoLevel(xp)
}

// Summarize builds the dashboard view.
func Summarize(stats domain.UserStats, quests []domain.Quest, achievements []domain.AchievementProgress) domain.ProgressSummary {
	xp := TotalXP(stats, quests)
	unlocked := 0
	for _, a := range achievements {
		if a.IsUnlocked {
			unlocked++
		}
	}
	return domain.ProgressSummary{
		TotalXP:           xp,
		Level:             LevelForXP(xp),
		XPIntoLevel:       XPIntoLevel(xp),
		XPToNextLevel:     XPToNextLevel(xp),
		Stats:             stats,
		UnlockedCount:     unlocked,
		TotalAchievements: len(achievements),
		Quests:            quests,
	}
}
