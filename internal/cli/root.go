// Package cli implements the TalkMaster command-line interface using Cobra.
// Each subcommand maps to a progress engine operation (stats, quests, etc.).
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "talkmaster",
	Short: "TalkMaster: streaks, achievements and daily quests for English practice",
	Long: `TalkMaster tracks conversation practice locally.
It keeps your streak, unlocks achievements and hands out daily quests.

Run 'talkmaster serve' to expose the progress API to the app.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. Called from main.go.
func Execute(version string) {
	rootCmd.Version = version

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
