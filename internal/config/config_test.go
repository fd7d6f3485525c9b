package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockroom/internal/config"
	"stockroom/internal/domain/capture"
)

func TestLoadWithPrefix_Defaults(t *testing.T) {
	const p = "STOCKROOM_TEST_DEFAULTS"
	t.Setenv(p+"_DATABASE_DSN", "postgres://u:p@localhost:5432/stock")

	c, err := config.LoadWithPrefix(p)
	require.NoError(t, err)

	assert.Equal(t, "pgx", c.Database.Driver)
	assert.Equal(t, 25, c.Database.MaxOpenConns)
	assert.Equal(t, time.Hour, c.Database.ConnMaxLifetime)
	assert.Equal(t, "info", c.Log.Level)
	assert.False(t, c.Log.Development)
	assert.Equal(t, "config/autoorders.yaml", c.AutoOrders.ConfigFile)
	assert.Equal(t, time.Minute, c.Scheduler.Tick)
	assert.Equal(t, 100, c.Scheduler.BatchSize)
	assert.Equal(t, ":2112", c.Metrics.Addr)

	policy, err := c.Capture.Policy()
	require.NoError(t, err)
	assert.Equal(t, capture.ReopenOnScan, policy)

	loc, err := c.AutoOrders.TimeLocation()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)
}

func TestLoadWithPrefix_Overrides(t *testing.T) {
	const p = "STOCKROOM_TEST_OVR"
	t.Setenv(p+"_DATABASE_DRIVER", "sqlite3")
	t.Setenv(p+"_DATABASE_DSN", "file:stock.db")
	t.Setenv(p+"_DATABASE_MAX_OPEN_CONNS", "1")
	t.Setenv(p+"_LOG_LEVEL", "debug")
	t.Setenv(p+"_LOG_DEVELOPMENT", "true")
	t.Setenv(p+"_AUTOORDERS_CONFIG_FILE", "/etc/stockroom/autoorders.yaml")
	t.Setenv(p+"_SCHEDULER_TICK", "15s")
	t.Setenv(p+"_CAPTURE_SCAN_POLICY", "reject_after_completion")

	c, err := config.LoadWithPrefix(p)
	require.NoError(t, err)

	store := c.Database.Store()
	assert.Equal(t, "sqlite3", store.Driver)
	assert.Equal(t, "file:stock.db", store.DSN)
	assert.Equal(t, 1, store.MaxOpenConns)
	assert.Equal(t, "debug", c.Log.Level)
	assert.True(t, c.Log.Development)
	assert.Equal(t, "/etc/stockroom/autoorders.yaml", c.AutoOrders.ConfigFile)
	assert.Equal(t, 15*time.Second, c.Scheduler.Tick)

	policy, err := c.Capture.Policy()
	require.NoError(t, err)
	assert.Equal(t, capture.RejectAfterCompletion, policy)
}

func TestLoadWithPrefix_MissingDSN(t *testing.T) {
	_, err := config.LoadWithPrefix("STOCKROOM_TEST_NODSN")
	assert.Error(t, err)
}

func TestLoadWithPrefix_InvalidValues(t *testing.T) {
	const p = "STOCKROOM_TEST_BAD"
	t.Setenv(p+"_DATABASE_DSN", "x")
	t.Setenv(p+"_SCHEDULER_TICK", "soon")

	_, err := config.LoadWithPrefix(p)
	assert.Error(t, err)

	const q = "STOCKROOM_TEST_BADPOLICY"
	t.Setenv(q+"_DATABASE_DSN", "x")
	t.Setenv(q+"_CAPTURE_SCAN_POLICY", "sometimes")

	_, err = config.LoadWithPrefix(q)
	assert.Error(t, err)
}
