package main

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/panel-estimator/config"
	"github.com/warp/panel-estimator/schedule"
	"github.com/warp/panel-estimator/store/sqlite"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{
		Env:         config.EnvLocal,
		StoragePath: filepath.Join(t.TempDir(), "estimator.db"),
	}
	cfg.Address = "127.0.0.1:0"
	cfg.HTTPServer.ShutdownGrace = time.Second
	cfg.Auditor.Disabled = true
	return cfg
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRun_UnknownScenario_ReturnsErrorAndClosesStore(t *testing.T) {
	// GIVEN: A startup scenario that does not exist
	cfg := testConfig(t)
	cfg.Scenario = "nope"

	// WHEN: Running the server
	err := run(cfg, discardLogger())

	// THEN: The error comes back to main and the database is usable again
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nope")

	store, err := sqlite.New(cfg.StoragePath)
	require.NoError(t, err)
	defer store.Close()
	assert.NoError(t, store.SaveEstimator(context.Background(), schedule.Estimator{ID: "r1", Name: "Ana"}))
}

func TestRun_BadDatabasePath_ReturnsError(t *testing.T) {
	cfg := testConfig(t)
	cfg.StoragePath = filepath.Join(t.TempDir(), "missing", "dir", "estimator.db")

	err := run(cfg, discardLogger())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to initialize database")
}
