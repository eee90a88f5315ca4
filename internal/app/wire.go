package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/oddscope/oddscope/internal/aggregator"
	"github.com/oddscope/oddscope/internal/cache/redis"
	"github.com/oddscope/oddscope/internal/config"
	"github.com/oddscope/oddscope/internal/domain"
	"github.com/oddscope/oddscope/internal/fetch"
	"github.com/oddscope/oddscope/internal/notify"
	"github.com/oddscope/oddscope/internal/platform/kalshi"
	"github.com/oddscope/oddscope/internal/platform/metaculus"
	"github.com/oddscope/oddscope/internal/platform/polymarket"
	"github.com/oddscope/oddscope/internal/platform/reddit"
	"github.com/oddscope/oddscope/internal/platform/xsearch"
	"github.com/oddscope/oddscope/internal/sentiment"
	"github.com/oddscope/oddscope/internal/signal"
	"github.com/oddscope/oddscope/internal/snapshot"
)

// Dependencies bundles everything the application modes need to operate. It
// is constructed by Wire and torn down by the returned cleanup function.
type Dependencies struct {
	OddsSources      []domain.OddsSource
	ScanSources      []domain.OddsSource // exchange feeds swept by the watchlist scanner
	SentimentSources []domain.SentimentSource
	Listers          []domain.MarketLister

	Engine     *signal.Engine
	Aggregator *aggregator.Aggregator
	Scanner    *aggregator.Scanner
	Snapshot   *snapshot.Builder

	Cache    domain.SnapshotCache // nil when disabled
	Notifier *notify.Notifier
}

// Wire constructs all concrete dependency implementations from the given
// configuration and returns them together with a cleanup function that should
// be called on shutdown to release resources.
func Wire(ctx context.Context, cfg *config.Config) (*Dependencies, func(), error) {
	logger := slog.Default()

	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	fetcher, err := fetch.New(fetch.ClientConfig{
		Timeout:    cfg.Fetch.Timeout.Duration,
		MaxRetries: cfg.Fetch.MaxRetries,
		Backoff:    cfg.Fetch.Backoff.Duration,
		ProxyURL:   cfg.Fetch.ProxyURL,
		UserAgent:  cfg.Fetch.UserAgent,
	}, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("wire: fetch client: %w", err)
	}

	deps := &Dependencies{}

	// --- Odds sources ---
	// The watchlist scanner sweeps only the tradable exchange feeds; Metaculus
	// forecasts have no executable side, so they stay out of ScanSources.
	if cfg.Polymarket.Enabled {
		pm := polymarket.New(cfg.Polymarket.GammaHost, fetcher, logger)
		deps.OddsSources = append(deps.OddsSources, pm)
		deps.ScanSources = append(deps.ScanSources, pm)
		deps.Listers = append(deps.Listers, pm)
	}
	if cfg.Kalshi.Enabled {
		ka := kalshi.New(cfg.Kalshi.BaseURL, fetcher, logger)
		deps.OddsSources = append(deps.OddsSources, ka)
		deps.ScanSources = append(deps.ScanSources, ka)
		deps.Listers = append(deps.Listers, ka)
	}
	if cfg.Metaculus.Enabled {
		mc := metaculus.New(cfg.Metaculus.BaseURL, fetcher, logger)
		deps.OddsSources = append(deps.OddsSources, mc)
		deps.Listers = append(deps.Listers, mc)
	}

	// --- Sentiment sources ---
	classifier := sentiment.NewLexicon()
	if cfg.Reddit.Enabled {
		deps.SentimentSources = append(deps.SentimentSources,
			reddit.New(cfg.Reddit.BaseURL, fetcher, classifier, logger))
	}
	if cfg.X.Enabled {
		deps.SentimentSources = append(deps.SentimentSources,
			xsearch.New(cfg.X.BaseURL, cfg.X.BearerToken, fetcher, classifier, logger))
	}

	// --- Optional Redis signal cache ---
	if cfg.Cache.Enabled {
		rdb, err := redis.New(ctx, redis.ClientConfig{
			Addr:     cfg.Cache.Addr,
			Password: cfg.Cache.Password,
			DB:       cfg.Cache.DB,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: redis: %w", err)
		}
		closers = append(closers, func() { _ = rdb.Close() })
		deps.Cache = redis.NewSignalCache(rdb, cfg.Cache.TTL.Duration)
	}

	// --- Engine and pipelines ---
	deps.Engine = signal.NewEngine(signal.Thresholds{
		ArbitrageSpread:  cfg.Signals.ArbitrageSpread,
		DivergencePoints: cfg.Signals.DivergencePoints,
		SpikeVolume:      cfg.Signals.SpikeVolume,
	})
	deps.Aggregator = aggregator.New(deps.OddsSources, deps.SentimentSources, deps.Engine, deps.Cache, logger)
	deps.Scanner = aggregator.NewScanner(deps.ScanSources, deps.Engine, logger)
	deps.Snapshot = snapshot.NewBuilder(deps.Listers, logger)

	// --- Notifications ---
	var senders []notify.Sender
	if cfg.Notify.TelegramToken != "" && cfg.Notify.TelegramChatID != "" {
		senders = append(senders, notify.NewTelegramSender(cfg.Notify.TelegramToken, cfg.Notify.TelegramChatID))
	}
	if cfg.Notify.DiscordWebhookURL != "" {
		senders = append(senders, notify.NewDiscordSender(cfg.Notify.DiscordWebhookURL))
	}
	deps.Notifier = notify.NewNotifier(senders, logger)

	return deps, cleanup, nil
}
