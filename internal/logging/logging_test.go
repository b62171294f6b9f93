package logging_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/serroba/url-shortener/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew(t *testing.T) {
	t.Run("builds console logger by default", func(t *testing.T) {
		logger, err := logging.New(logging.Config{})

		require.NoError(t, err)
		assert.True(t, logger.Core().Enabled(zapcore.InfoLevel))
		assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))
	})

	t.Run("honours level", func(t *testing.T) {
		logger, err := logging.New(logging.Config{Format: "json", Level: "debug"})

		require.NoError(t, err)
		assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))
	})

	t.Run("rejects unknown format", func(t *testing.T) {
		_, err := logging.New(logging.Config{Format: "xml"})

		assert.Error(t, err)
	})

	t.Run("rejects unknown level", func(t *testing.T) {
		_, err := logging.New(logging.Config{Level: "loud"})

		assert.Error(t, err)
	})

	t.Run("writes to file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "app.log")

		logger, err := logging.New(logging.Config{Format: "json", File: path})
		require.NoError(t, err)

		logger.Info("hello file")
		_ = logger.Sync()

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "hello file")
	})
}

func TestWatermillAdapter(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	adapter := logging.NewWatermillAdapter(zap.New(core))

	adapter.Info("info message", watermill.LogFields{"topic": "mapping.created"})
	adapter.With(watermill.LogFields{"subscriber": "audit"}).Error("error message", errors.New("boom"), nil)
	adapter.Trace("trace message", nil)

	entries := logs.All()
	require.Len(t, entries, 3)

	assert.Equal(t, "info message", entries[0].Message)
	assert.Equal(t, "mapping.created", entries[0].ContextMap()["topic"])

	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	assert.Equal(t, "audit", entries[1].ContextMap()["subscriber"])
	assert.Equal(t, "boom", entries[1].ContextMap()["error"])

	assert.Equal(t, zapcore.DebugLevel, entries[2].Level)
}
