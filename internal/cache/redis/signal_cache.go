package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/oddscope/oddscope/internal/domain"
)

// SignalCache implements domain.SnapshotCache using JSON-serialized
// PredictionSignal values.
//
// Key schema:
//
//	signal:{topic} - string value containing JSON, topic lowercased
type SignalCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewSignalCache creates a SignalCache backed by the given Client.
func NewSignalCache(c *Client, ttl time.Duration) *SignalCache {
	return &SignalCache{rdb: c.Underlying(), ttl: ttl}
}

func signalKey(topic string) string {
	return "signal:" + strings.ToLower(strings.TrimSpace(topic))
}

// Set stores an aggregated signal under its topic with the configured TTL.
func (sc *SignalCache) Set(ctx context.Context, topic string, sig domain.PredictionSignal) error {
	data, err := json.Marshal(sig)
	if err != nil {
		return fmt.Errorf("redis: marshal signal %q: %w", topic, err)
	}
	if err := sc.rdb.Set(ctx, signalKey(topic), data, sc.ttl).Err(); err != nil {
		return fmt.Errorf("redis: set signal %q: %w", topic, err)
	}
	return nil
}

// Get retrieves the cached signal for a topic. It returns domain.ErrNotFound
// when no fresh entry exists.
func (sc *SignalCache) Get(ctx context.Context, topic string) (domain.PredictionSignal, error) {
	data, err := sc.rdb.Get(ctx, signalKey(topic)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.PredictionSignal{}, domain.ErrNotFound
		}
		return domain.PredictionSignal{}, fmt.Errorf("redis: get signal %q: %w", topic, err)
	}

	var sig domain.PredictionSignal
	if err := json.Unmarshal(data, &sig); err != nil {
		return domain.PredictionSignal{}, fmt.Errorf("redis: unmarshal signal %q: %w", topic, err)
	}
	return sig, nil
}

var _ domain.SnapshotCache = (*SignalCache)(nil)
