// Package cmd defines and implements the CLI commands for the ytfleet
// executable.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ytfleet/internal/config"
	"ytfleet/internal/logging"
	"ytfleet/internal/metrics"
)

var (
	cfgFile string

	cfg    config.Config
	logger *zap.Logger
)

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ytfleet",
		Short: "Crawls video channel catalogs across a container fleet.",
		Long: `ytfleet crawls a catalog of video-sharing channels: it paginates
upload playlists and extracts per-video metadata, captions, and
recommendations. The fleet subcommand partitions the catalog into
batches and launches one short-lived worker container per batch.`,

		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			loaded, err := config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			cfg = loaded

			logger, err = logging.New(cfg.Logging)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			metrics.Init()
			return nil
		},

		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is env/defaults only)")

	cmd.AddCommand(newUpdateCmd())
	cmd.AddCommand(newFleetCmd())

	return cmd
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		if logger != nil {
			logger.Fatal("command execution failed", zap.Error(err))
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
