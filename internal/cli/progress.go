package cli

import (
	"fmt"
	"strings"
)

// ─── Progress Bar ───────────────────────────────────────────────────────────
// A terminal progress bar for XP, quests and achievements.
// Shows: [============>.................]  42%  42/100

const barWidth = 30 // Characters for the progress bar

// renderBar draws current out of goal. Values outside [0, goal] are clamped.
func renderBar(current, goal int) string {
	pct := 100.0
	if goal > 0 {
		pct = float64(current) / float64(goal) * 100
	}
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}

	// Build the bar: [=======>............]
	filled := int(pct / 100 * float64(barWidth))
	if filled > barWidth {
		filled = barWidth
	}
	empty := barWidth - filled

	var bar string
	if filled == barWidth {
		bar = strings.Repeat("=", filled)
	} else if filled > 0 {
		bar = strings.Repeat("=", filled-1) + ">" + strings.Repeat(".", empty)
	} else {
		bar = strings.Repeat(".", barWidth)
	}

	return fmt.Sprintf("[%s] %3.0f%%", bar, pct)
}

// formatSeconds renders a practice duration: "45s", "3m", "2m30s".
func formatSeconds(secs int) string {
	if secs < 60 {
		return fmt.Sprintf("%ds", secs)
	}
	if secs%60 == 0 {
		return fmt.Sprintf("%dm", secs/60)
	}
	return fmt.Sprintf("%dm%ds", secs/60, secs%60)
}

// checkmark renders a done flag for table output.
func checkmark(done bool) string {
	if done {
		return "yes"
	}
	return "-"
}
