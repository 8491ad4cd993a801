package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/talkmaster-app/talkmaster/internal/app/engagement"
	"github.com/talkmaster-app/talkmaster/internal/daemon"
)

func init() {
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(achievementsCmd)
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show streak, level and practice totals",
	RunE:  runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	ctx := cmd.Context()
	d.Session.Start(ctx)
	sum := d.Session.Summary(ctx)
	stats := sum.Stats

	last := "never"
	if stats.LastConversationDate != nil {
		last = stats.LastConversationDate.String()
	}

	fmt.Printf("Level %d  %s  %d XP to next level\n", sum.Level,
		renderBar(sum.XPIntoLevel, engagement.XPPerLevel), sum.XPToNextLevel)
	fmt.Println()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Streak:\t%d day(s)\n", stats.Streak)
	fmt.Fprintf(w, "Last practice:\t%s\n", last)
	fmt.Fprintf(w, "Conversations:\t%d\n", stats.ConversationsCompleted)
	fmt.Fprintf(w, "Scenarios tried:\t%d\n", len(stats.UniqueScenarios))
	fmt.Fprintf(w, "Flawless:\t%d\n", stats.FlawlessConversations)
	fmt.Fprintf(w, "Quests claimed:\t%d\n", stats.DailyQuestsCompleted)
	fmt.Fprintf(w, "Total XP:\t%d\n", sum.TotalXP)
	fmt.Fprintf(w, "Achievements:\t%d/%d\n", sum.UnlockedCount, sum.TotalAchievements)
	return w.Flush()
}

var achievementsCmd = &cobra.Command{
	Use:   "achievements",
	Short: "List achievements and progress toward each",
	RunE:  runAchievements,
}

func runAchievements(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ACHIEVEMENT\tUNLOCKED\tPROGRESS\tDESCRIPTION")
	for _, a := range d.Session.Ledger.AchievementsWithProgress(cmd.Context()) {
		fmt.Fprintf(w, "%s %s\t%s\t%s %d/%d\t%s\n",
			a.Emoji, a.Title,
			checkmark(a.IsUnlocked),
			renderBar(a.CurrentProgress, a.Goal), a.CurrentProgress, a.Goal,
			a.Description,
		)
	}
	return w.Flush()
}
