package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/talkmaster-app/talkmaster/internal/daemon"
)

func init() {
	resetCmd.Flags().BoolVarP(&resetYes, "yes", "y", false, "Do not ask for confirmation")
	rootCmd.AddCommand(resetCmd)

	configInitCmd.Flags().BoolVar(&configForce, "force", false, "Overwrite an existing config file")
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)

	rootCmd.AddCommand(scenariosCmd)
}

var (
	resetYes    bool
	configForce bool
)

// ─── reset ──────────────────────────────────────────────────────────────────

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Erase all progress",
	Long:  `Erase stats, achievements, quests, saved words, corrections and history.`,
	RunE:  runReset,
}

func runReset(cmd *cobra.Command, args []string) error {
	if !resetYes && !confirm(os.Stdin, os.Stdout, "Erase all progress? This cannot be undone.") {
		fmt.Println("Aborted.")
		return nil
	}

	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	if err := d.Session.Reset(cmd.Context()); err != nil {
		return err
	}
	fmt.Println("All progress erased.")
	return nil
}

// ─── config ─────────────────────────────────────────────────────────────────

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default config to ~/.talkmaster/config.toml",
	RunE:  runConfigInit,
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := daemon.ConfigPath()
	if _, err := os.Stat(path); err == nil && !configForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	if err := daemon.SaveConfig(daemon.DefaultConfig()); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	fmt.Printf("Wrote %s\n", path)
	fmt.Printf("Progress is stored in %s\n", daemon.TalkmasterHome())
	return nil
}

// ─── scenarios ──────────────────────────────────────────────────────────────

var scenariosCmd = &cobra.Command{
	Use:   "scenarios",
	Short: "List practice scenarios",
	RunE:  runScenarios,
}

func runScenarios(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	ctx := cmd.Context()
	stats := d.Session.Ledger.Stats(ctx)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCENARIO\tPRACTICED\tCUSTOM")
	for _, sc := range d.Session.Scenarios.All(ctx) {
		fmt.Fprintf(w, "%s\t%s %s\t%s\t%s\n",
			sc.ID, sc.Emoji, sc.Title,
			checkmark(stats.HasScenario(sc.ID)),
			checkmark(sc.IsCustom),
		)
	}
	return w.Flush()
}
