// Package logging builds the process logger from configuration.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"ytfleet/internal/config"
)

// New builds the ytfleet logger. Development mode uses the console
// encoder with colored levels; production emits JSON with stacktraces
// kept on errors. The configured level applies to both.
func New(cfg config.LoggingConfig) (*zap.Logger, error) {
	levelRaw := cfg.Level
	if levelRaw == "" {
		levelRaw = "info"
	}
	level, err := zapcore.ParseLevel(levelRaw)
	if err != nil {
		return nil, fmt.Errorf("parse log level %q: %w", cfg.Level, err)
	}

	var zcfg zap.Config
	if cfg.Development {
		zcfg = zap.NewDevelopmentConfig()
		zcfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		zcfg = zap.NewProductionConfig()
		zcfg.DisableStacktrace = false
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)
	zcfg.EncoderConfig.TimeKey = "ts"
	zcfg.EncoderConfig.MessageKey = "msg"

	logger, err := zcfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger.Named("ytfleet"), nil
}
