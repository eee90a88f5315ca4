// Package aggregator fans a topic out to every configured odds and sentiment
// source concurrently and merges the responses into one PredictionSignal.
package aggregator

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/oddscope/oddscope/internal/domain"
	"github.com/oddscope/oddscope/internal/signal"
)

// Aggregator owns the source fan-out and the signal engine. Sources are
// injected so tests can substitute stubs and so a partial deployment (odds
// only, say) is just a shorter slice.
type Aggregator struct {
	odds      []domain.OddsSource
	sentiment []domain.SentimentSource
	engine    *signal.Engine
	cache     domain.SnapshotCache // nil when caching is disabled
	logger    *slog.Logger
}

// New creates an aggregator. cache may be nil.
func New(odds []domain.OddsSource, sentiment []domain.SentimentSource, engine *signal.Engine, cache domain.SnapshotCache, logger *slog.Logger) *Aggregator {
	return &Aggregator{
		odds:      odds,
		sentiment: sentiment,
		engine:    engine,
		cache:     cache,
		logger:    logger.With("component", "aggregator"),
	}
}

// Aggregate queries every source for the topic concurrently and returns the
// merged record. A single source failing never fails the aggregate: odds
// sources degrade to absence, sentiment sources degrade to a neutral reading
// that is then dropped for carrying zero volume.
func (a *Aggregator) Aggregate(ctx context.Context, topic string) (domain.PredictionSignal, error) {
	if topic == "" {
		return domain.PredictionSignal{}, domain.ErrEmptyTopic
	}

	reqID := uuid.NewString()
	log := a.logger.With("request_id", reqID, "topic", topic)

	if a.cache != nil {
		if cached, err := a.cache.Get(ctx, topic); err == nil {
			log.Debug("serving cached signal")
			return cached, nil
		}
	}

	start := time.Now()
	log.Info("aggregating", "odds_sources", len(a.odds), "sentiment_sources", len(a.sentiment))

	var mu sync.Mutex
	oddsByPlatform := make(map[string]domain.MarketOdds, len(a.odds))
	sentByPlatform := make(map[string]domain.SocialSentiment, len(a.sentiment))

	g, gctx := errgroup.WithContext(ctx)

	for _, src := range a.odds {
		g.Go(func() error {
			res := src.FetchOdds(gctx, topic)
			switch res.Status {
			case domain.StatusFound:
				mu.Lock()
				oddsByPlatform[src.Name()] = res.Odds
				mu.Unlock()
			case domain.StatusNoMatch:
				log.Debug("no matching market", "source", src.Name())
			case domain.StatusSourceDown:
				log.Warn("odds source unavailable", "source", src.Name(), "error", res.Err)
			}
			return nil
		})
	}

	for _, src := range a.sentiment {
		g.Go(func() error {
			s := src.FetchSentiment(gctx, topic)
			if s.Volume > 0 {
				mu.Lock()
				sentByPlatform[src.Name()] = s
				mu.Unlock()
			} else {
				log.Debug("no social activity", "source", src.Name())
			}
			return nil
		})
	}

	// Goroutines swallow their errors into the merged maps, so Wait only
	// fires on context cancellation.
	if err := g.Wait(); err != nil {
		return domain.PredictionSignal{}, err
	}

	sig := domain.PredictionSignal{
		Market:    topic,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Odds:      oddsByPlatform,
		Sentiment: sentByPlatform,
		Signals:   a.engine.Compute(oddsByPlatform, sentByPlatform),
	}

	log.Info("aggregated",
		"odds_hits", len(oddsByPlatform),
		"sentiment_hits", len(sentByPlatform),
		"signals", len(sig.Signals),
		"elapsed", time.Since(start).Round(time.Millisecond),
	)

	if a.cache != nil {
		if err := a.cache.Set(ctx, topic, sig); err != nil {
			log.Warn("cache write failed", "error", err)
		}
	}

	return sig, nil
}
