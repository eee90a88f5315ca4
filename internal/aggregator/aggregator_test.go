package aggregator

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oddscope/oddscope/internal/domain"
	"github.com/oddscope/oddscope/internal/signal"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type stubOdds struct {
	name   string
	result domain.OddsResult
	delay  time.Duration
}

func (s *stubOdds) Name() string { return s.name }

func (s *stubOdds) FetchOdds(ctx context.Context, topic string) domain.OddsResult {
	if s.delay > 0 {
		select {
		case <-ctx.Done():
			return domain.SourceDown(ctx.Err())
		case <-time.After(s.delay):
		}
	}
	return s.result
}

type stubSentiment struct {
	name   string
	result domain.SocialSentiment
}

func (s *stubSentiment) Name() string { return s.name }

func (s *stubSentiment) FetchSentiment(ctx context.Context, topic string) domain.SocialSentiment {
	return s.result
}

func foundOdds(platform string, yes float64) domain.OddsResult {
	return domain.FoundOdds(domain.MarketOdds{Platform: platform, Yes: domain.Float(yes)})
}

func TestAggregateMergesByPlatform(t *testing.T) {
	agg := New(
		[]domain.OddsSource{
			&stubOdds{name: "polymarket", result: foundOdds("polymarket", 0.62)},
			&stubOdds{name: "kalshi", result: foundOdds("kalshi", 0.55)},
		},
		[]domain.SentimentSource{
			&stubSentiment{name: "reddit", result: domain.SocialSentiment{
				Platform: "reddit", Positive: 60, Negative: 20, Neutral: 20, Volume: 15,
			}},
		},
		signal.NewEngine(signal.DefaultThresholds()),
		nil,
		testLogger(),
	)

	sig, err := agg.Aggregate(context.Background(), "bitcoin")
	require.NoError(t, err)

	assert.Equal(t, "bitcoin", sig.Market)
	assert.Len(t, sig.Odds, 2)
	assert.Contains(t, sig.Odds, "polymarket")
	assert.Contains(t, sig.Odds, "kalshi")
	assert.Len(t, sig.Sentiment, 1)
	assert.NotEmpty(t, sig.Signals)

	ts, err := time.Parse(time.RFC3339, sig.Timestamp)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().UTC(), ts, 5*time.Second)
}

func TestAggregatePartialFailure(t *testing.T) {
	agg := New(
		[]domain.OddsSource{
			&stubOdds{name: "polymarket", result: foundOdds("polymarket", 0.62)},
			&stubOdds{name: "kalshi", result: domain.SourceDown(errors.New("connection refused"))},
			&stubOdds{name: "metaculus", result: domain.NoMatch()},
		},
		nil,
		signal.NewEngine(signal.DefaultThresholds()),
		nil,
		testLogger(),
	)

	sig, err := agg.Aggregate(context.Background(), "bitcoin")
	require.NoError(t, err, "one source down must not fail the aggregate")

	assert.Len(t, sig.Odds, 1)
	assert.Contains(t, sig.Odds, "polymarket")
}

func TestAggregateDropsZeroVolumeSentiment(t *testing.T) {
	agg := New(
		nil,
		[]domain.SentimentSource{
			&stubSentiment{name: "reddit", result: domain.NeutralSentiment("reddit")},
			&stubSentiment{name: "twitter", result: domain.SocialSentiment{
				Platform: "twitter", Positive: 50, Negative: 25, Neutral: 25, Volume: 8,
			}},
		},
		signal.NewEngine(signal.DefaultThresholds()),
		nil,
		testLogger(),
	)

	sig, err := agg.Aggregate(context.Background(), "bitcoin")
	require.NoError(t, err)

	assert.Len(t, sig.Sentiment, 1)
	assert.Contains(t, sig.Sentiment, "twitter")
	assert.NotContains(t, sig.Sentiment, "reddit")
}

func TestAggregateEmptyTopic(t *testing.T) {
	agg := New(nil, nil, signal.NewEngine(signal.DefaultThresholds()), nil, testLogger())

	_, err := agg.Aggregate(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrEmptyTopic)
}

type memCache struct {
	entries map[string]domain.PredictionSignal
	sets    int
}

func newMemCache() *memCache {
	return &memCache{entries: make(map[string]domain.PredictionSignal)}
}

func (m *memCache) Get(ctx context.Context, topic string) (domain.PredictionSignal, error) {
	sig, ok := m.entries[topic]
	if !ok {
		return domain.PredictionSignal{}, domain.ErrNotFound
	}
	return sig, nil
}

func (m *memCache) Set(ctx context.Context, topic string, sig domain.PredictionSignal) error {
	m.entries[topic] = sig
	m.sets++
	return nil
}

func TestAggregateUsesCache(t *testing.T) {
	cache := newMemCache()
	agg := New(
		[]domain.OddsSource{&stubOdds{name: "polymarket", result: foundOdds("polymarket", 0.62)}},
		nil,
		signal.NewEngine(signal.DefaultThresholds()),
		cache,
		testLogger(),
	)

	first, err := agg.Aggregate(context.Background(), "bitcoin")
	require.NoError(t, err)
	assert.Equal(t, 1, cache.sets)

	second, err := agg.Aggregate(context.Background(), "bitcoin")
	require.NoError(t, err)
	assert.Equal(t, first, second, "second call served from cache")
	assert.Equal(t, 1, cache.sets, "cache hit must not rewrite the entry")
}
