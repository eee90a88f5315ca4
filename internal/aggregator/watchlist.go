package aggregator

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/oddscope/oddscope/internal/domain"
	"github.com/oddscope/oddscope/internal/signal"
)

// ArbOpportunity is one watchlist hit: a topic whose cross-platform yes
// spread cleared the configured threshold.
type ArbOpportunity struct {
	Topic     string                       `json:"topic"`
	Spread    float64                      `json:"spread"`
	Direction string                       `json:"direction"`
	Odds      map[string]domain.MarketOdds `json:"odds"`
	Timestamp string                       `json:"timestamp"`
}

// Scanner walks a watchlist of topics one at a time and reports arbitrage
// opportunities. Topics are scanned sequentially to stay polite to the
// upstream rate limits; within a topic the odds sources are hit concurrently.
type Scanner struct {
	odds   []domain.OddsSource
	engine *signal.Engine
	logger *slog.Logger
}

// NewScanner creates a watchlist scanner over the given odds sources.
func NewScanner(odds []domain.OddsSource, engine *signal.Engine, logger *slog.Logger) *Scanner {
	return &Scanner{
		odds:   odds,
		engine: engine,
		logger: logger.With("component", "scanner"),
	}
}

// Scan checks every topic in order and returns the opportunities found, in
// watchlist order. Topics where a source failed or no spread exists are
// skipped, not errors; only context cancellation aborts the scan.
func (s *Scanner) Scan(ctx context.Context, topics []string) ([]ArbOpportunity, error) {
	opportunities := make([]ArbOpportunity, 0, len(topics))

	for _, topic := range topics {
		if err := ctx.Err(); err != nil {
			return opportunities, err
		}

		odds := s.fetchTopic(ctx, topic)
		if len(odds) < 2 {
			s.logger.Debug("insufficient quotes", "topic", topic, "quotes", len(odds))
			continue
		}

		for _, sig := range s.engine.Compute(odds, nil) {
			if sig.Type != domain.SignalArbitrage || !sig.Detected {
				continue
			}
			s.logger.Info("arbitrage opportunity",
				"topic", topic, "spread", sig.Spread, "direction", sig.Direction)
			opportunities = append(opportunities, ArbOpportunity{
				Topic:     topic,
				Spread:    sig.Spread,
				Direction: sig.Direction,
				Odds:      odds,
				Timestamp: time.Now().UTC().Format(time.RFC3339),
			})
		}
	}

	return opportunities, nil
}

// fetchTopic queries all odds sources for one topic in parallel and keeps
// only the platforms that found a market.
func (s *Scanner) fetchTopic(ctx context.Context, topic string) map[string]domain.MarketOdds {
	var mu sync.Mutex
	odds := make(map[string]domain.MarketOdds, len(s.odds))

	var wg sync.WaitGroup
	for _, src := range s.odds {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res := src.FetchOdds(ctx, topic)
			if res.Status == domain.StatusFound {
				mu.Lock()
				odds[src.Name()] = res.Odds
				mu.Unlock()
			} else if res.Status == domain.StatusSourceDown {
				s.logger.Warn("source unavailable", "topic", topic, "source", src.Name(), "error", res.Err)
			}
		}()
	}
	wg.Wait()

	return odds
}
