package cmd

import (
	"bytes"
	"errors"
	"io"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viktsys/tradestore/api"
	"github.com/viktsys/tradestore/config"
	"github.com/viktsys/tradestore/events"
	"github.com/viktsys/tradestore/ingest"
	"github.com/viktsys/tradestore/storage"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestRootRegistersCommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCMD.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"server", "load", "clear", "health"} {
		assert.True(t, names[want], "missing %s command", want)
	}
}

func TestOpenStore(t *testing.T) {
	t.Run("file", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "trades")
		store, err := openStore(config.Config{StorageBackend: config.BackendFile, TradesDir: dir}, quietLogger())
		require.NoError(t, err)
		defer store.Close()

		assert.IsType(t, &storage.FileStore{}, store)
		assert.DirExists(t, dir)
	})

	t.Run("badger", func(t *testing.T) {
		store, err := openStore(config.Config{StorageBackend: config.BackendBadger, BadgerDir: t.TempDir()}, quietLogger())
		require.NoError(t, err)
		defer store.Close()

		assert.IsType(t, &storage.BadgerStore{}, store)
	})

	t.Run("unknown", func(t *testing.T) {
		store, err := openStore(config.Config{StorageBackend: "s3"}, quietLogger())
		assert.Error(t, err)
		assert.Nil(t, store)
	})
}

func TestOpenPublisher(t *testing.T) {
	t.Run("should be a no-op without brokers", func(t *testing.T) {
		p, err := openPublisher(config.Config{}, quietLogger())
		require.NoError(t, err)
		assert.IsType(t, events.NopPublisher{}, p)
	})

	t.Run("should build a kafka publisher with brokers", func(t *testing.T) {
		p, err := openPublisher(config.Config{KafkaBrokers: []string{"127.0.0.1:1"}, KafkaTopic: "trades"}, quietLogger())
		require.NoError(t, err)
		defer p.Close()
		assert.IsType(t, &events.KafkaPublisher{}, p)
	})
}

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer
	printSummary(&buf, ingest.Summary{
		Created: []string{"id-1"},
		Failed:  []ingest.Failure{{Index: 2, Symbol: "MSFT", Err: errors.New("http 400: Missing required fields")}},
	})

	out := buf.String()
	assert.Contains(t, out, "Successfully created: 1 trades")
	assert.Contains(t, out, "Failed to create: 1 trades")
	assert.Contains(t, out, "Trade 2 (MSFT): http 400: Missing required fields")
	assert.Contains(t, out, "- id-1")
}

func TestHealthCommand(t *testing.T) {
	gin.SetMode(gin.TestMode)
	log := quietLogger()
	srv := httptest.NewServer(api.SetupRoutes(api.NewHandler(storage.NewMemoryStore(), nil, log), log))
	defer srv.Close()

	var out bytes.Buffer
	rootCMD.SetOut(&out)
	rootCMD.SetArgs([]string{"health", "--url", srv.URL})
	defer rootCMD.SetArgs(nil)

	require.NoError(t, rootCMD.Execute())
	assert.Contains(t, out.String(), "API is healthy")
}
