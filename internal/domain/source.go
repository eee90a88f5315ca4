package domain

import "context"

// OddsSource is one prediction-market platform. Implementations never return
// an error from FetchOdds: network and schema failures are folded into the
// OddsResult so a single bad source cannot abort a fan-out.
type OddsSource interface {
	// Name is the platform key used in the aggregated odds map.
	Name() string
	// FetchOdds resolves a free-text topic to a normalized odds record.
	FetchOdds(ctx context.Context, topic string) OddsResult
}

// SentimentSource is one social platform. FetchSentiment always returns a
// record; on any failure it degrades to the neutral/empty default.
type SentimentSource interface {
	Name() string
	FetchSentiment(ctx context.Context, topic string) SocialSentiment
}

// MarketLister is implemented by odds sources that can enumerate their most
// active markets for the snapshot sweep.
type MarketLister interface {
	Name() string
	ListMarkets(ctx context.Context, limit int) ([]MarketListing, error)
}

// SnapshotCache memoizes aggregated signals by topic for a short TTL. It is
// an optional layer: a nil cache means every query re-issues the full fan-out.
type SnapshotCache interface {
	Get(ctx context.Context, topic string) (PredictionSignal, error)
	Set(ctx context.Context, topic string, sig PredictionSignal) error
}
