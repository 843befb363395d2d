package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("should parse the level", func(t *testing.T) {
		log, err := New(Config{Level: "debug"})
		require.NoError(t, err)
		assert.Equal(t, logrus.DebugLevel, log.GetLevel())
	})

	t.Run("should fall back to info for an unknown level", func(t *testing.T) {
		log, err := New(Config{Level: "chatty"})
		require.NoError(t, err)
		assert.Equal(t, logrus.InfoLevel, log.GetLevel())
	})

	t.Run("should use the JSON formatter when asked", func(t *testing.T) {
		log, err := New(Config{JSON: true})
		require.NoError(t, err)
		assert.IsType(t, &logrus.JSONFormatter{}, log.Formatter)
	})

	t.Run("should also write to the log file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "logs", "tradestore.log")
		log, err := New(Config{Level: "info", File: path, MaxSizeMB: 1})
		require.NoError(t, err)

		log.WithField("trade_id", "abc").Info("trade created")

		b, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(b), "trade created")
		assert.Contains(t, string(b), "trade_id=abc")
	})
}
