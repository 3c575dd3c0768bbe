// Package update runs the worker-side crawl over a batch of channels.
package update

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"ytfleet/internal/metrics"
	"ytfleet/internal/scrape"
)

// Type selects how much of a channel is refreshed per run.
type Type string

// Update types accepted on the worker command line.
const (
	TypeAll      Type = "All"      // channel, uploads, per-video records, captions
	TypeChannels Type = "Channels" // channel metadata only
	TypeVideos   Type = "Videos"   // uploads and per-video records, no captions
)

// ParseType validates a -t argument.
func ParseType(raw string) (Type, error) {
	switch Type(raw) {
	case TypeAll, TypeChannels, TypeVideos:
		return Type(raw), nil
	default:
		return "", fmt.Errorf("unknown update type %q", raw)
	}
}

// Result aggregates one channel's crawl outcome.
type Result struct {
	ChannelID string
	Channel   *scrape.ChannelExtended
	Videos    []*scrape.Video
	Captions  []*scrape.ClosedCaptionTrack
}

// Sink receives extraction results as they are produced. Implementations
// own persistence; the updater only drives extraction.
type Sink interface {
	Write(ctx context.Context, result Result) error
}

// Updater crawls a set of channels with bounded concurrency across
// channels. Pagination within one channel stays sequential. A failing
// channel is isolated: its error is reported, siblings continue.
type Updater struct {
	scraper  *scrape.Scraper
	sink     Sink
	parallel int
	logger   *zap.Logger
}

// New constructs an Updater.
func New(scraper *scrape.Scraper, sink Sink, parallel int, logger *zap.Logger) *Updater {
	if parallel <= 0 {
		parallel = 1
	}
	return &Updater{
		scraper:  scraper,
		sink:     sink,
		parallel: parallel,
		logger:   logger,
	}
}

// Run crawls every channel id in the batch. The returned error joins the
// per-channel failures, if any.
func (u *Updater) Run(ctx context.Context, updateType Type, channelIDs []string) error {
	runID := uuid.NewString()
	log := u.logger.With(zap.String("run_id", runID), zap.String("update_type", string(updateType)))
	log.Info("starting update run", zap.Int("channels", len(channelIDs)))

	channelErrs := make([]error, len(channelIDs))
	var g errgroup.Group
	g.SetLimit(u.parallel)
	for i, channelID := range channelIDs {
		g.Go(func() error {
			if err := u.updateChannel(ctx, log, updateType, channelID); err != nil {
				metrics.ObserveChannelUpdate("error")
				log.Error("channel update failed", zap.String("channel_id", channelID), zap.Error(err))
				channelErrs[i] = fmt.Errorf("channel %s: %w", channelID, err)
				return nil
			}
			metrics.ObserveChannelUpdate("ok")
			return nil
		})
	}
	_ = g.Wait()

	err := errors.Join(channelErrs...)
	if err != nil {
		log.Warn("update run finished with failures")
		return err
	}
	log.Info("update run finished")
	return nil
}

func (u *Updater) updateChannel(ctx context.Context, log *zap.Logger, updateType Type, channelID string) error {
	if !scrape.ValidateChannelID(channelID) {
		return &scrape.InvalidIDError{Kind: "channel", Value: channelID}
	}

	result := Result{ChannelID: channelID}

	channel, err := u.scraper.GetChannel(ctx, channelID)
	if err != nil {
		return err
	}
	result.Channel = channel
	if channel.StatusMessage != "" {
		// Suspended or restricted channel; nothing further to extract.
		log.Info("channel unavailable",
			zap.String("channel_id", channelID),
			zap.String("status", channel.StatusMessage),
		)
		return u.sink.Write(ctx, result)
	}

	if updateType != TypeChannels {
		if err := u.crawlUploads(ctx, log, updateType, &result); err != nil {
			return err
		}
	}

	return u.sink.Write(ctx, result)
}

func (u *Updater) crawlUploads(ctx context.Context, log *zap.Logger, updateType Type, result *Result) error {
	err := u.scraper.ForEachUpload(ctx, result.ChannelID, func(item scrape.VideoItem) error {
		video, err := u.scraper.GetVideo(ctx, item.ID)
		if err != nil {
			var unavailable *scrape.UnavailableVideoError
			if errors.As(err, &unavailable) {
				log.Debug("skipping unavailable video", zap.String("video_id", item.ID))
				return nil
			}
			return err
		}
		result.Videos = append(result.Videos, video)

		if updateType != TypeAll {
			return nil
		}
		for _, info := range video.CaptionTracks {
			track, err := u.scraper.GetClosedCaptionTrack(ctx, info)
			if err != nil {
				// Captions are best effort at the run level.
				log.Warn("caption fetch failed",
					zap.String("video_id", item.ID),
					zap.String("language", info.Language.Code),
					zap.Error(err),
				)
				continue
			}
			result.Captions = append(result.Captions, track)
		}
		return nil
	})
	return err
}
