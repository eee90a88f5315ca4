// Package config defines the top-level configuration for oddscope and
// provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from a TOML
// file and then optionally overridden by ODDSCOPE_* environment variables.
type Config struct {
	Polymarket PolymarketConfig `toml:"polymarket"`
	Kalshi     KalshiConfig     `toml:"kalshi"`
	Metaculus  MetaculusConfig  `toml:"metaculus"`
	Reddit     RedditConfig     `toml:"reddit"`
	X          XConfig          `toml:"x"`
	Fetch      FetchConfig      `toml:"fetch"`
	Signals    SignalsConfig    `toml:"signals"`
	Watchlist  WatchlistConfig  `toml:"watchlist"`
	Snapshot   SnapshotConfig   `toml:"snapshot"`
	Cache      CacheConfig      `toml:"cache"`
	Server     ServerConfig     `toml:"server"`
	Notify     NotifyConfig     `toml:"notify"`
	Mode       string           `toml:"mode"`
	LogLevel   string           `toml:"log_level"`
}

// PolymarketConfig holds the Gamma API endpoint.
type PolymarketConfig struct {
	GammaHost string `toml:"gamma_host"`
	Enabled   bool   `toml:"enabled"`
}

// KalshiConfig holds the public trade API endpoint. Only open market data is
// consumed, so no credentials are required.
type KalshiConfig struct {
	BaseURL string `toml:"base_url"`
	Enabled bool   `toml:"enabled"`
}

// MetaculusConfig holds the Metaculus questions API endpoint.
type MetaculusConfig struct {
	BaseURL string `toml:"base_url"`
	Enabled bool   `toml:"enabled"`
}

// RedditConfig holds the public JSON search endpoint.
type RedditConfig struct {
	BaseURL string `toml:"base_url"`
	Enabled bool   `toml:"enabled"`
}

// XConfig holds the X (Twitter) guest-token search parameters. BearerToken is
// the public web-client bearer, not an account credential.
type XConfig struct {
	BaseURL     string `toml:"base_url"`
	BearerToken string `toml:"bearer_token"`
	Enabled     bool   `toml:"enabled"`
}

// FetchConfig holds shared HTTP client behavior for every upstream.
type FetchConfig struct {
	Timeout    duration `toml:"timeout"`
	MaxRetries int      `toml:"max_retries"`
	Backoff    duration `toml:"backoff"`
	ProxyURL   string   `toml:"proxy_url"`
	UserAgent  string   `toml:"user_agent"`
}

// SignalsConfig holds the signal-engine detection thresholds.
type SignalsConfig struct {
	ArbitrageSpread  float64 `toml:"arbitrage_spread"`
	DivergencePoints float64 `toml:"divergence_points"`
	SpikeVolume      float64 `toml:"spike_volume"`
}

// WatchlistConfig holds the topics swept by scan mode and the interval for
// watch mode.
type WatchlistConfig struct {
	Topics   []string `toml:"topics"`
	Interval duration `toml:"interval"`
}

// SnapshotConfig holds the market-listing sweep parameters.
type SnapshotConfig struct {
	MinLiquidity float64 `toml:"min_liquidity"`
	PerSource    int     `toml:"per_source"`
	TopN         int     `toml:"top_n"`
	OutFile      string  `toml:"out_file"`
}

// CacheConfig holds Redis parameters for the optional signal cache. Disabled
// by default so a query always reflects live upstream data.
type CacheConfig struct {
	Enabled  bool     `toml:"enabled"`
	Addr     string   `toml:"addr"`
	Password string   `toml:"password"`
	DB       int      `toml:"db"`
	TTL      duration `toml:"ttl"`
}

// ServerConfig holds HTTP server parameters.
type ServerConfig struct {
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
}

// NotifyConfig holds notification channel credentials.
type NotifyConfig struct {
	TelegramToken     string `toml:"telegram_token"`
	TelegramChatID    string `toml:"telegram_chat_id"`
	DiscordWebhookURL string `toml:"discord_webhook_url"`
}

// duration is a wrapper around time.Duration that supports TOML string decoding
// (e.g. "5m", "30s").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings like "5m" or "30s".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// publicXBearer is the long-lived bearer the X web client ships with; it only
// grants guest-level read access.
const publicXBearer = "AAAAAAAAAAAAAAAAAAAAANRILgAAAAAAnNwIzUejRCOuH5E6I8xnZz4puTs%3D1Zv7ttfk8LF81IUq16cHjhLTvJu4FA33AGWWjCpTnA"

// Defaults returns a Config populated with reasonable default values.
// These match the values in config.example.toml.
func Defaults() Config {
	return Config{
		Polymarket: PolymarketConfig{
			GammaHost: "https://gamma-api.polymarket.com",
			Enabled:   true,
		},
		Kalshi: KalshiConfig{
			BaseURL: "https://api.elections.kalshi.com/trade-api/v2",
			Enabled: true,
		},
		Metaculus: MetaculusConfig{
			BaseURL: "https://www.metaculus.com/api2",
			Enabled: true,
		},
		Reddit: RedditConfig{
			BaseURL: "https://www.reddit.com",
			Enabled: true,
		},
		X: XConfig{
			BaseURL:     "https://api.twitter.com",
			BearerToken: publicXBearer,
			Enabled:     true,
		},
		Fetch: FetchConfig{
			Timeout:    duration{15 * time.Second},
			MaxRetries: 3,
			Backoff:    duration{500 * time.Millisecond},
		},
		Signals: SignalsConfig{
			ArbitrageSpread:  0.03,
			DivergencePoints: 10,
			SpikeVolume:      30,
		},
		Watchlist: WatchlistConfig{
			Topics: []string{
				"bitcoin",
				"fed rate cut",
				"recession",
				"election",
				"ai regulation",
			},
			Interval: duration{5 * time.Minute},
		},
		Snapshot: SnapshotConfig{
			MinLiquidity: 1000,
			PerSource:    50,
			TopN:         25,
			OutFile:      "snapshot.json",
		},
		Cache: CacheConfig{
			Enabled: false,
			Addr:    "localhost:6379",
			DB:      0,
			TTL:     duration{2 * time.Minute},
		},
		Server: ServerConfig{
			Port:        8080,
			CORSOrigins: []string{"*"},
		},
		Mode:     "query",
		LogLevel: "info",
	}
}

var validModes = map[string]bool{
	"query":    true,
	"scan":     true,
	"watch":    true,
	"snapshot": true,
	"serve":    true,
}

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks the configuration for internal consistency and returns a
// single error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	if !validModes[strings.ToLower(c.Mode)] {
		errs = append(errs, fmt.Sprintf("unknown mode %q (valid: query, scan, watch, snapshot, serve)", c.Mode))
	}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	if c.Polymarket.Enabled && c.Polymarket.GammaHost == "" {
		errs = append(errs, "polymarket: gamma_host must not be empty when enabled")
	}
	if c.Kalshi.Enabled && c.Kalshi.BaseURL == "" {
		errs = append(errs, "kalshi: base_url must not be empty when enabled")
	}
	if c.Metaculus.Enabled && c.Metaculus.BaseURL == "" {
		errs = append(errs, "metaculus: base_url must not be empty when enabled")
	}
	if c.Reddit.Enabled && c.Reddit.BaseURL == "" {
		errs = append(errs, "reddit: base_url must not be empty when enabled")
	}
	if c.X.Enabled {
		if c.X.BaseURL == "" {
			errs = append(errs, "x: base_url must not be empty when enabled")
		}
		if c.X.BearerToken == "" {
			errs = append(errs, "x: bearer_token must not be empty when enabled")
		}
	}

	if !c.Polymarket.Enabled && !c.Kalshi.Enabled && !c.Metaculus.Enabled {
		errs = append(errs, "at least one odds source must be enabled")
	}

	if c.Fetch.Timeout.Duration < 0 {
		errs = append(errs, "fetch: timeout must not be negative")
	}
	if c.Fetch.MaxRetries < 0 {
		errs = append(errs, "fetch: max_retries must not be negative")
	}

	if c.Signals.ArbitrageSpread < 0 {
		errs = append(errs, "signals: arbitrage_spread must not be negative")
	}
	if c.Signals.DivergencePoints < 0 {
		errs = append(errs, "signals: divergence_points must not be negative")
	}
	if c.Signals.SpikeVolume < 0 {
		errs = append(errs, "signals: spike_volume must not be negative")
	}

	if (c.Mode == "scan" || c.Mode == "watch") && len(c.Watchlist.Topics) == 0 {
		errs = append(errs, "watchlist: topics must not be empty for mode "+c.Mode)
	}
	if c.Mode == "watch" && c.Watchlist.Interval.Duration <= 0 {
		errs = append(errs, "watchlist: interval must be positive for watch mode")
	}

	if c.Snapshot.PerSource < 0 {
		errs = append(errs, "snapshot: per_source must not be negative")
	}
	if c.Snapshot.TopN < 0 {
		errs = append(errs, "snapshot: top_n must not be negative")
	}

	if c.Cache.Enabled {
		if c.Cache.Addr == "" {
			errs = append(errs, "cache: addr must not be empty when enabled")
		}
		if c.Cache.TTL.Duration <= 0 {
			errs = append(errs, "cache: ttl must be positive when enabled")
		}
	}

	if c.Mode == "serve" && (c.Server.Port <= 0 || c.Server.Port > 65535) {
		errs = append(errs, fmt.Sprintf("server: port %d out of range", c.Server.Port))
	}

	if c.Notify.TelegramToken != "" && c.Notify.TelegramChatID == "" {
		errs = append(errs, "notify: telegram_chat_id is required when telegram_token is set")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
