package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ytfleet/internal/metrics"
	"ytfleet/internal/scrape"
	"ytfleet/internal/update"
)

// newUpdateCmd creates the worker-side 'update' subcommand. The fleet
// launcher starts each worker container with exactly this argument
// surface: update -t <updateType> -c <id1>|<id2>|...
func newUpdateCmd() *cobra.Command {
	var (
		updateTypeRaw string
		channelsRaw   string
	)

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Crawls the given channels",
		Long: `Runs the extraction pipeline over a pipe-separated list of channel
ids: channel metadata, upload playlist pagination, per-video records,
and caption tracks, depending on the update type.`,

		RunE: func(cmd *cobra.Command, _ []string) error {
			updateType, err := update.ParseType(updateTypeRaw)
			if err != nil {
				return err
			}

			channelIDs := splitChannelArg(channelsRaw)
			if len(channelIDs) == 0 {
				return fmt.Errorf("no channel ids given")
			}

			if cfg.Metrics.Addr != "" {
				mux := http.NewServeMux()
				mux.Handle("/metrics", metrics.Handler())
				srv := &http.Server{Addr: cfg.Metrics.Addr, Handler: mux}
				go func() {
					if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						logger.Warn("metrics listener failed", zap.Error(err))
					}
				}()
				defer func() { _ = srv.Shutdown(context.Background()) }()
			}

			fetcher, err := scrape.NewFetcher(cfg.HTTP, cfg.Proxy, logger)
			if err != nil {
				return fmt.Errorf("init fetcher: %w", err)
			}
			scraper := scrape.NewScraper(fetcher, logger)
			updater := update.New(scraper, &update.LogSink{Logger: logger}, cfg.Fleet.UpdateParallel, logger)

			return updater.Run(cmd.Context(), updateType, channelIDs)
		},
	}

	cmd.Flags().StringVarP(&updateTypeRaw, "type", "t", string(update.TypeAll), "update type: All, Channels, or Videos")
	cmd.Flags().StringVarP(&channelsRaw, "channels", "c", "", "pipe-separated channel ids")
	_ = cmd.MarkFlagRequired("channels")

	return cmd
}

func splitChannelArg(raw string) []string {
	parts := strings.Split(raw, "|")
	ids := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			ids = append(ids, p)
		}
	}
	return ids
}
