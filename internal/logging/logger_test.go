package logging

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"ytfleet/internal/config"
)

func TestNew(t *testing.T) {
	for _, development := range []bool{true, false} {
		logger, err := New(config.LoggingConfig{Development: development})
		require.NoError(t, err)
		require.NotNil(t, logger)
		logger.Info("smoke")
		_ = logger.Sync()
	}
}

func TestNewLevel(t *testing.T) {
	logger, err := New(config.LoggingConfig{Level: "warn"})
	require.NoError(t, err)
	require.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	require.True(t, logger.Core().Enabled(zapcore.WarnLevel))

	// Empty level falls back to info.
	logger, err = New(config.LoggingConfig{})
	require.NoError(t, err)
	require.True(t, logger.Core().Enabled(zapcore.InfoLevel))
	require.False(t, logger.Core().Enabled(zapcore.DebugLevel))
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(config.LoggingConfig{Level: "loud"})
	require.Error(t, err)
}
