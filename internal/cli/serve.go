package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/talkmaster-app/talkmaster/internal/daemon"
)

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Host to listen on (overrides config)")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides config)")
	serveCmd.Flags().StringVar(&serveBackend, "backend", "", "Progress store backend: sqlite, redis or memory (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

var (
	serveHost    string
	servePort    int
	serveBackend string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the TalkMaster progress API server",
	Long:  `Start the progress API server at localhost:8417.`,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := daemon.LoadConfig()
	if err != nil {
		return err
	}

	// Override config from flags
	if serveHost != "" {
		cfg.API.Host = serveHost
	}
	if servePort > 0 {
		cfg.API.Port = servePort
	}
	if serveBackend != "" {
		cfg.Store.Backend = serveBackend
	}

	d, err := daemon.NewWithConfig(cfg)
	if err != nil {
		return err
	}
	defer d.Close()

	return d.Serve(context.Background())
}
