// Package snapshot produces a point-in-time ranking of active markets across
// every platform that can list them, filtered by liquidity and sorted by
// volume.
package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/oddscope/oddscope/internal/domain"
)

// Options controls the snapshot filter and ranking.
type Options struct {
	// MinLiquidity drops markets below this liquidity; zero keeps everything.
	MinLiquidity float64
	// PerSource caps how many markets each platform is asked for.
	PerSource int
	// TopN truncates the merged, sorted result; zero keeps everything.
	TopN int
}

// Report is the serialized snapshot output.
type Report struct {
	Timestamp string                 `json:"timestamp"`
	Sources   []string               `json:"sources"`
	Count     int                    `json:"count"`
	Markets   []domain.MarketListing `json:"markets"`
}

// Builder lists markets from several platforms and merges them.
type Builder struct {
	listers []domain.MarketLister
	logger  *slog.Logger
}

// NewBuilder creates a snapshot builder.
func NewBuilder(listers []domain.MarketLister, logger *slog.Logger) *Builder {
	return &Builder{listers: listers, logger: logger.With("component", "snapshot")}
}

// Build queries every lister concurrently, filters by min liquidity, sorts
// by 24h volume descending, and truncates to TopN. A lister failing is
// logged and skipped; the snapshot is whatever the healthy platforms return.
func (b *Builder) Build(ctx context.Context, opts Options) (Report, error) {
	if opts.PerSource <= 0 {
		opts.PerSource = 50
	}

	var mu sync.Mutex
	var merged []domain.MarketListing
	sources := make([]string, 0, len(b.listers))

	var wg sync.WaitGroup
	for _, lister := range b.listers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			listings, err := lister.ListMarkets(ctx, opts.PerSource)
			if err != nil {
				b.logger.Warn("listing failed", "source", lister.Name(), "error", err)
				return
			}
			mu.Lock()
			merged = append(merged, listings...)
			sources = append(sources, lister.Name())
			mu.Unlock()
		}()
	}
	wg.Wait()

	if len(sources) == 0 {
		return Report{}, fmt.Errorf("snapshot: no platform returned listings")
	}

	filtered := merged[:0]
	for _, m := range merged {
		if opts.MinLiquidity > 0 && m.Liquidity < opts.MinLiquidity {
			continue
		}
		filtered = append(filtered, m)
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].Volume24h > filtered[j].Volume24h
	})
	if opts.TopN > 0 && len(filtered) > opts.TopN {
		filtered = filtered[:opts.TopN]
	}

	sort.Strings(sources)
	return Report{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Sources:   sources,
		Count:     len(filtered),
		Markets:   filtered,
	}, nil
}

// WriteFile marshals the report as indented JSON to path.
func WriteFile(report Report, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("snapshot: marshal report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("snapshot: write %s: %w", path, err)
	}
	return nil
}
