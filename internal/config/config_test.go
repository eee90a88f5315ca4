package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsValidate(t *testing.T) {
	cfg := Defaults()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "query", cfg.Mode)
	assert.Equal(t, "https://gamma-api.polymarket.com", cfg.Polymarket.GammaHost)
	assert.Equal(t, 0.03, cfg.Signals.ArbitrageSpread)
	assert.Equal(t, 10.0, cfg.Signals.DivergencePoints)
	assert.Equal(t, 30.0, cfg.Signals.SpikeVolume)
	assert.Len(t, cfg.Watchlist.Topics, 5)
	assert.False(t, cfg.Cache.Enabled)
	assert.Equal(t, 15*time.Second, cfg.Fetch.Timeout.Duration)
}

func TestValidateRejectsBadMode(t *testing.T) {
	cfg := Defaults()
	cfg.Mode = "turbo"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown mode "turbo"`)
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := Defaults()
	cfg.Mode = "watch"
	cfg.Watchlist.Topics = nil
	cfg.Watchlist.Interval.Duration = 0
	cfg.LogLevel = "verbose"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "topics must not be empty")
	assert.Contains(t, err.Error(), "interval must be positive")
	assert.Contains(t, err.Error(), "unknown log_level")
}

func TestValidateRequiresAnOddsSource(t *testing.T) {
	cfg := Defaults()
	cfg.Polymarket.Enabled = false
	cfg.Kalshi.Enabled = false
	cfg.Metaculus.Enabled = false

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least one odds source")
}

func TestValidateCacheWhenEnabled(t *testing.T) {
	cfg := Defaults()
	cfg.Cache.Enabled = true
	cfg.Cache.Addr = ""
	cfg.Cache.TTL.Duration = 0

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cache: addr")
	assert.Contains(t, err.Error(), "cache: ttl")
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
mode = "scan"
log_level = "debug"

[signals]
arbitrage_spread = 0.05

[watchlist]
topics = ["bitcoin", "election"]

[fetch]
timeout = "30s"
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "scan", cfg.Mode)
	assert.Equal(t, 0.05, cfg.Signals.ArbitrageSpread)
	assert.Equal(t, []string{"bitcoin", "election"}, cfg.Watchlist.Topics)
	assert.Equal(t, 30*time.Second, cfg.Fetch.Timeout.Duration)
	// Untouched sections keep their defaults.
	assert.Equal(t, "https://gamma-api.polymarket.com", cfg.Polymarket.GammaHost)
	assert.Equal(t, 10.0, cfg.Signals.DivergencePoints)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("ODDSCOPE_MODE", "snapshot")
	t.Setenv("ODDSCOPE_SIGNALS_ARBITRAGE_SPREAD", "0.08")
	t.Setenv("ODDSCOPE_WATCHLIST_TOPICS", "a, b ,c")
	t.Setenv("ODDSCOPE_CACHE_ENABLED", "true")
	t.Setenv("ODDSCOPE_FETCH_TIMEOUT", "45s")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "snapshot", cfg.Mode)
	assert.Equal(t, 0.08, cfg.Signals.ArbitrageSpread)
	assert.Equal(t, []string{"a", "b", "c"}, cfg.Watchlist.Topics)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, 45*time.Second, cfg.Fetch.Timeout.Duration)
}

func TestLoadMissingFileErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)
}

func TestRedactedConfig(t *testing.T) {
	cfg := Defaults()
	cfg.Cache.Password = "hunter2"
	cfg.Notify.TelegramToken = "123:secret"

	red := RedactedConfig(&cfg)

	assert.Equal(t, "***", red.Cache.Password)
	assert.Equal(t, "***", red.Notify.TelegramToken)
	assert.Equal(t, "***", red.X.BearerToken)
	// Original untouched.
	assert.Equal(t, "hunter2", cfg.Cache.Password)
}
