package cli

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/talkmaster-app/talkmaster/internal/daemon"
	"github.com/talkmaster-app/talkmaster/internal/domain"
)

func init() {
	completeCmd.Flags().BoolVar(&completeFlawless, "flawless", false, "The conversation had no mistakes")
	completeCmd.Flags().DurationVar(&completeDuration, "duration", 0, "How long the conversation lasted, e.g. 3m")
	rootCmd.AddCommand(completeCmd)

	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of conversations to show")
	rootCmd.AddCommand(historyCmd)

	vocabCmd.AddCommand(vocabSaveCmd, vocabListCmd)
	vocabSaveCmd.Flags().StringVar(&vocabDefinition, "definition", "", "What the word means")
	vocabSaveCmd.Flags().StringVar(&vocabExample, "example", "", "An example sentence")
	rootCmd.AddCommand(vocabCmd)
}

var (
	completeFlawless bool
	completeDuration time.Duration
	historyLimit     int
	vocabDefinition  string
	vocabExample     string
)

// ─── complete ───────────────────────────────────────────────────────────────

var completeCmd = &cobra.Command{
	Use:   "complete SCENARIO",
	Short: "Record a finished conversation",
	Long: `Record a finished conversation in a scenario.
Updates your streak and quests, and reports any achievement unlocked.`,
	Args: cobra.ExactArgs(1),
	RunE: runComplete,
}

func runComplete(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	ctx := cmd.Context()
	d.Session.Start(ctx)
	res, err := d.Session.CompleteConversation(ctx, domain.ConversationOutcome{
		ScenarioID: args[0],
		Flawless:   completeFlawless,
		Duration:   completeDuration,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Conversation recorded. Streak: %d day(s)\n", res.Stats.Streak)
	if res.Achievement != nil {
		fmt.Printf("Achievement unlocked: %s %s\n", res.Achievement.Emoji, res.Achievement.Title)
	}
	for _, q := range res.CompletedQuests {
		fmt.Printf("Quest complete: %s (claim with 'talkmaster claim %s')\n", q.Description, q.ID)
	}
	if res.NextScenario != nil {
		fmt.Printf("Up next: %s %s\n", res.NextScenario.Emoji, res.NextScenario.Title)
	}
	return nil
}

// ─── history ────────────────────────────────────────────────────────────────

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent conversations",
	RunE:  runHistory,
}

func runHistory(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	recs, err := d.Session.History(cmd.Context(), historyLimit)
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		fmt.Println("No conversations yet. Run 'talkmaster complete <scenario>' after practicing.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "WHEN\tSCENARIO\tDURATION\tFLAWLESS")
	for _, r := range recs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			r.CompletedAt.Format("2006-01-02 15:04"),
			r.ScenarioID,
			formatSeconds(r.DurationSec),
			checkmark(r.Flawless),
		)
	}
	return w.Flush()
}

// ─── vocab ──────────────────────────────────────────────────────────────────

var vocabCmd = &cobra.Command{
	Use:   "vocab",
	Short: "Manage saved vocabulary",
}

var vocabSaveCmd = &cobra.Command{
	Use:   "save WORD",
	Short: "Save a word to your vocabulary list",
	Args:  cobra.ExactArgs(1),
	RunE:  runVocabSave,
}

func runVocabSave(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	res, err := d.Session.SaveVocabularyWord(cmd.Context(), domain.VocabularyItem{
		Word:       args[0],
		Definition: vocabDefinition,
		Example:    vocabExample,
	})
	if err != nil {
		return err
	}
	if !res.Saved {
		fmt.Printf("%q is already saved.\n", args[0])
		return nil
	}
	fmt.Printf("Saved %q.\n", args[0])
	return nil
}

var vocabListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List saved words, newest first",
	RunE:    runVocabList,
}

func runVocabList(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	words, err := d.Session.Vocabulary(cmd.Context())
	if err != nil {
		return err
	}
	if len(words) == 0 {
		fmt.Println("No saved words yet.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "WORD\tDEFINITION\tSAVED")
	for _, v := range words {
		fmt.Fprintf(w, "%s\t%s\t%s\n", v.Word, v.Definition, v.SavedAt.Format("2006-01-02"))
	}
	return w.Flush()
}
