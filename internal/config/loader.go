package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies ODDSCOPE_* environment variable overrides, and
// returns the final Config. The returned Config has NOT been validated; the
// caller should invoke Config.Validate() after Load. An empty path skips the
// file step and uses defaults plus environment overrides only.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, err
		}
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known ODDSCOPE_* environment variables and
// overwrites the corresponding Config fields when a variable is set (i.e. not
// empty). This lets operators inject secrets at deploy time without touching
// the TOML file.
func applyEnvOverrides(cfg *Config) {
	// ── Odds sources ──
	setStr(&cfg.Polymarket.GammaHost, "ODDSCOPE_POLYMARKET_GAMMA_HOST")
	setBool(&cfg.Polymarket.Enabled, "ODDSCOPE_POLYMARKET_ENABLED")
	setStr(&cfg.Kalshi.BaseURL, "ODDSCOPE_KALSHI_BASE_URL")
	setBool(&cfg.Kalshi.Enabled, "ODDSCOPE_KALSHI_ENABLED")
	setStr(&cfg.Metaculus.BaseURL, "ODDSCOPE_METACULUS_BASE_URL")
	setBool(&cfg.Metaculus.Enabled, "ODDSCOPE_METACULUS_ENABLED")

	// ── Sentiment sources ──
	setStr(&cfg.Reddit.BaseURL, "ODDSCOPE_REDDIT_BASE_URL")
	setBool(&cfg.Reddit.Enabled, "ODDSCOPE_REDDIT_ENABLED")
	setStr(&cfg.X.BaseURL, "ODDSCOPE_X_BASE_URL")
	setStr(&cfg.X.BearerToken, "ODDSCOPE_X_BEARER_TOKEN")
	setBool(&cfg.X.Enabled, "ODDSCOPE_X_ENABLED")

	// ── Fetch ──
	setDuration(&cfg.Fetch.Timeout, "ODDSCOPE_FETCH_TIMEOUT")
	setInt(&cfg.Fetch.MaxRetries, "ODDSCOPE_FETCH_MAX_RETRIES")
	setDuration(&cfg.Fetch.Backoff, "ODDSCOPE_FETCH_BACKOFF")
	setStr(&cfg.Fetch.ProxyURL, "ODDSCOPE_FETCH_PROXY_URL")
	setStr(&cfg.Fetch.UserAgent, "ODDSCOPE_FETCH_USER_AGENT")

	// ── Signals ──
	setFloat64(&cfg.Signals.ArbitrageSpread, "ODDSCOPE_SIGNALS_ARBITRAGE_SPREAD")
	setFloat64(&cfg.Signals.DivergencePoints, "ODDSCOPE_SIGNALS_DIVERGENCE_POINTS")
	setFloat64(&cfg.Signals.SpikeVolume, "ODDSCOPE_SIGNALS_SPIKE_VOLUME")

	// ── Watchlist ──
	setStringSlice(&cfg.Watchlist.Topics, "ODDSCOPE_WATCHLIST_TOPICS")
	setDuration(&cfg.Watchlist.Interval, "ODDSCOPE_WATCHLIST_INTERVAL")

	// ── Snapshot ──
	setFloat64(&cfg.Snapshot.MinLiquidity, "ODDSCOPE_SNAPSHOT_MIN_LIQUIDITY")
	setInt(&cfg.Snapshot.PerSource, "ODDSCOPE_SNAPSHOT_PER_SOURCE")
	setInt(&cfg.Snapshot.TopN, "ODDSCOPE_SNAPSHOT_TOP_N")
	setStr(&cfg.Snapshot.OutFile, "ODDSCOPE_SNAPSHOT_OUT_FILE")

	// ── Cache ──
	setBool(&cfg.Cache.Enabled, "ODDSCOPE_CACHE_ENABLED")
	setStr(&cfg.Cache.Addr, "ODDSCOPE_CACHE_ADDR")
	setStr(&cfg.Cache.Password, "ODDSCOPE_CACHE_PASSWORD")
	setInt(&cfg.Cache.DB, "ODDSCOPE_CACHE_DB")
	setDuration(&cfg.Cache.TTL, "ODDSCOPE_CACHE_TTL")

	// ── Server ──
	setInt(&cfg.Server.Port, "ODDSCOPE_SERVER_PORT")
	setStringSlice(&cfg.Server.CORSOrigins, "ODDSCOPE_SERVER_CORS_ORIGINS")

	// ── Notify ──
	setStr(&cfg.Notify.TelegramToken, "ODDSCOPE_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "ODDSCOPE_NOTIFY_TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.DiscordWebhookURL, "ODDSCOPE_NOTIFY_DISCORD_WEBHOOK_URL")

	// ── Top-level ──
	setStr(&cfg.Mode, "ODDSCOPE_MODE")
	setStr(&cfg.LogLevel, "ODDSCOPE_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
