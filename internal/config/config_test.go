package config_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/QwQ3213/ACELimiter/internal/config"
	"github.com/QwQ3213/ACELimiter/internal/errors"
	"github.com/QwQ3213/ACELimiter/internal/testutil"
)

func TestDefault(t *testing.T) {
	cfg := config.Default()
	assert.Equal(t, int64(config.DefaultIntervalMs), cfg.Monitor.IntervalMs)
	assert.Equal(t, 30*time.Second, cfg.Monitor.Interval())
	assert.True(t, cfg.Monitor.AutoStart)
	assert.Empty(t, cfg.JournalPath)
	assert.False(t, cfg.Verbose)
}

func TestLoadConfig(t *testing.T) {
	path := testutil.WriteTempConfig(t, `
verbose = true
journalPath = "C:/ProgramData/acelimiter/journal.log"

[monitor]
intervalMs = 5000
autoStart = false
`)

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)
	assert.True(t, cfg.Verbose)
	assert.Equal(t, "C:/ProgramData/acelimiter/journal.log", cfg.JournalPath)
	assert.Equal(t, 5*time.Second, cfg.Monitor.Interval())
	assert.False(t, cfg.Monitor.AutoStart)
}

func TestLoadConfigAppliesDefaults(t *testing.T) {
	path := testutil.WriteTempConfig(t, "verbose = false\n")

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, int64(config.DefaultIntervalMs), cfg.Monitor.IntervalMs)
	assert.True(t, cfg.Monitor.AutoStart)
}

func TestLoadConfigRejectsNonPositiveInterval(t *testing.T) {
	path := testutil.WriteTempConfig(t, "[monitor]\nintervalMs = 0\n")

	_, err := config.LoadConfig(path)
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigOperation, errors.CodeOf(err))
}

func TestLoadConfigEnvOverride(t *testing.T) {
	path := testutil.WriteTempConfig(t, "[monitor]\nintervalMs = 5000\n")
	t.Setenv("ACELIMITER_MONITOR_INTERVALMS", "1500")

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, int64(1500), cfg.Monitor.IntervalMs)
}

func TestLoadOrDefaultMissingFile(t *testing.T) {
	dir := t.TempDir()

	_, err := config.LoadConfig(filepath.Join(dir, "missing.toml"))
	assert.True(t, errors.Is(err, errors.ErrNotFound))

	cfg, err := config.LoadOrDefault(filepath.Join(dir, "missing.toml"))
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestCreateDefaultConfigRoundTrip(t *testing.T) {
	dir, cleanup := testutil.CreateTempDir(t)
	defer cleanup()

	path := filepath.Join(dir, "nested", "config.toml")
	require.NoError(t, config.CreateDefaultConfig(path))

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}
