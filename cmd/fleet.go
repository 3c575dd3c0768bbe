package cmd

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ytfleet/internal/catalog"
	"ytfleet/internal/fleet"
	"ytfleet/internal/update"
)

// newFleetCmd creates the launcher-side 'fleet' subcommand: plan the
// channel batches and start one worker container group per batch.
func newFleetCmd() *cobra.Command {
	var (
		updateTypeRaw string
		planOnly      bool
	)

	cmd := &cobra.Command{
		Use:   "fleet",
		Short: "Partitions the channel catalog and launches worker containers",

		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := update.ParseType(updateTypeRaw); err != nil {
				return err
			}

			source, err := catalogSource()
			if err != nil {
				return err
			}
			channels, err := source.Channels(cmd.Context())
			if err != nil {
				return fmt.Errorf("load catalog: %w", err)
			}
			if len(channels) == 0 {
				return fmt.Errorf("catalog is empty")
			}

			rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
			batches := fleet.PlanBatches(
				channels,
				cfg.Fleet.ChannelsPerContainer,
				cfg.Container.Name,
				cfg.Fleet.Regions,
				rnd,
			)
			logger.Info("planned fleet",
				zap.Int("channels", len(channels)),
				zap.Int("batches", len(batches)),
			)

			if planOnly {
				for _, b := range batches {
					logger.Info("planned batch",
						zap.String("name", b.Name),
						zap.String("region", b.Region),
						zap.Int("channels", len(b.ChannelIDs)),
					)
				}
				return nil
			}

			return launchFleet(cmd.Context(), batches, updateTypeRaw, rnd)
		},
	}

	cmd.Flags().StringVarP(&updateTypeRaw, "type", "t", string(update.TypeAll), "update type passed to each worker")
	cmd.Flags().BoolVar(&planOnly, "plan", false, "plan and log batches without launching containers")

	return cmd
}

func catalogSource() (catalog.Source, error) {
	if cfg.Catalog.CSVPath != "" {
		return &catalog.CSVSource{Path: cfg.Catalog.CSVPath}, nil
	}
	return catalog.NewStaticSource(cfg.Catalog.ChannelIDs)
}

func launchFleet(ctx context.Context, batches []fleet.Batch, updateType string, rnd *rand.Rand) error {
	api, err := fleet.NewACIClient(cfg.Container)
	if err != nil {
		return fmt.Errorf("init container client: %w", err)
	}
	orchestrator := fleet.NewOrchestrator(api, cfg, rnd, logger)

	groups, err := orchestrator.StartFleet(ctx, batches, updateType)
	for _, g := range groups {
		logger.Info("fleet container started",
			zap.String("name", g.Name),
			zap.String("region", g.Region),
		)
	}
	if err != nil {
		return fmt.Errorf("start fleet: %w", err)
	}
	return nil
}
