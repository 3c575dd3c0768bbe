package update

import (
	"context"

	"go.uber.org/zap"
)

// LogSink summarizes results to the log. Persistence of extracted records
// lives behind the Sink interface and outside this service.
type LogSink struct {
	Logger *zap.Logger
}

// Write implements Sink.
func (s *LogSink) Write(_ context.Context, result Result) error {
	fields := []zap.Field{
		zap.String("channel_id", result.ChannelID),
		zap.Int("videos", len(result.Videos)),
		zap.Int("caption_tracks", len(result.Captions)),
	}
	if result.Channel != nil && result.Channel.StatusMessage != "" {
		fields = append(fields, zap.String("status", result.Channel.StatusMessage))
	}
	s.Logger.Info("channel crawled", fields...)
	return nil
}
