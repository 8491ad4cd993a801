package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/talkmaster-app/talkmaster/internal/daemon"
	"github.com/talkmaster-app/talkmaster/internal/domain"
)

func init() {
	rootCmd.AddCommand(questsCmd)
	rootCmd.AddCommand(claimCmd)
}

var questsCmd = &cobra.Command{
	Use:   "quests",
	Short: "Show today's daily quests",
	RunE:  runQuests,
}

func runQuests(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	quests := d.Session.Quests.Quests(cmd.Context())
	if len(quests) == 0 {
		fmt.Println("No quests today. Complete a conversation to unlock more.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tQUEST\tPROGRESS\tXP\tCLAIMED")
	for _, q := range quests {
		fmt.Fprintf(w, "%s\t%s\t%s %s\t%d\t%s\n",
			q.ID, q.Description,
			renderBar(q.CurrentProgress, q.Goal), questProgress(q),
			q.XP, checkmark(q.IsClaimed),
		)
	}
	return w.Flush()
}

// questProgress renders progress in the quest's own unit.
func questProgress(q domain.Quest) string {
	if q.Type == domain.QuestConverseForMinutes {
		return formatSeconds(q.CurrentProgress) + "/" + formatSeconds(q.Goal)
	}
	return fmt.Sprintf("%d/%d", q.CurrentProgress, q.Goal)
}

var claimCmd = &cobra.Command{
	Use:   "claim QUEST_ID",
	Short: "Claim the XP reward of a completed quest",
	Args:  cobra.ExactArgs(1),
	RunE:  runClaim,
}

func runClaim(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	res, err := d.Session.ClaimQuest(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if res.XPGained == 0 {
		fmt.Printf("Nothing to claim for %s (not completed yet, or already claimed).\n", args[0])
		return nil
	}
	fmt.Printf("+%d XP\n", res.XPGained)
	return nil
}
