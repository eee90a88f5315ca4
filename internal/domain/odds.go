// Package domain defines the core data model of the aggregator: normalized
// odds and sentiment records, the typed trading signals derived from them,
// and the source interfaces the aggregator fans out over.
package domain

import "math"

// MarketOdds is the normalized odds record for one platform. Yes and No are
// probabilities in [0,1]; they are nil when the platform returned a market
// without prices (metadata-only match). They are not required to sum to 1 —
// source noise is tolerated.
type MarketOdds struct {
	Platform  string   `json:"platform"`
	Question  string   `json:"question,omitempty"`
	Yes       *float64 `json:"yes"`
	No        *float64 `json:"no"`
	Volume24h *float64 `json:"volume_24h,omitempty"`
	Liquidity *float64 `json:"liquidity,omitempty"`
}

// HasYes reports whether the record carries a usable yes probability.
func (m MarketOdds) HasYes() bool { return m.Yes != nil }

// SocialPost is one sample post retained in a sentiment record.
type SocialPost struct {
	Text       string `json:"text"`
	URL        string `json:"url"`
	Engagement int    `json:"engagement"`
}

// SocialSentiment is the normalized sentiment record for one platform.
// Positive+Negative+Neutral sum to 100 (integer rounding). Volume is the
// number of posts sampled; zero volume means the platform had nothing to say.
type SocialSentiment struct {
	Platform string       `json:"platform"`
	Positive int          `json:"positive"`
	Negative int          `json:"negative"`
	Neutral  int          `json:"neutral"`
	Volume   int          `json:"volume"`
	TopPosts []SocialPost `json:"top_posts,omitempty"`
}

// NeutralSentiment is the default record an adapter returns when it has no
// data: evenly split percentages and zero volume.
func NeutralSentiment(platform string) SocialSentiment {
	return SocialSentiment{
		Platform: platform,
		Positive: 33,
		Negative: 33,
		Neutral:  34,
		Volume:   0,
	}
}

// SignalType enumerates the trading signals the engine can emit.
type SignalType string

const (
	SignalArbitrage           SignalType = "arbitrage"
	SignalSentimentDivergence SignalType = "sentiment_divergence"
	SignalVolumeSpike         SignalType = "volume_spike"
)

// TradingSignal is one typed signal derived from the aggregated record.
// Confidence is a heuristic [0,1] scalar, not a statistical probability.
type TradingSignal struct {
	Type        SignalType `json:"type"`
	Detected    bool       `json:"detected"`
	Description string     `json:"description"`
	Confidence  float64    `json:"confidence"`
	Direction   string     `json:"direction,omitempty"`
	Spread      float64    `json:"spread,omitempty"`
}

// PredictionSignal is the top-level aggregation result for one topic. Odds
// and Sentiment contain only the platforms that returned usable data.
type PredictionSignal struct {
	Market    string                     `json:"market"`
	Timestamp string                     `json:"timestamp"`
	Odds      map[string]MarketOdds      `json:"odds"`
	Sentiment map[string]SocialSentiment `json:"sentiment"`
	Signals   []TradingSignal            `json:"signals"`
}

// MarketListing is one row of a cross-platform market snapshot (the listing
// sweep, not the per-topic signal path).
type MarketListing struct {
	Platform  string   `json:"platform"`
	ID        string   `json:"id"`
	Question  string   `json:"question"`
	URL       string   `json:"url,omitempty"`
	Yes       *float64 `json:"yes"`
	Volume24h float64  `json:"volume_24h"`
	Liquidity float64  `json:"liquidity"`
	CloseTime string   `json:"close_time,omitempty"`
}

// NormalizeProb maps a platform probability value into [0,1]. Values on a
// 0-100 scale are divided by 100; the result is clamped. Non-finite input
// yields nil so callers treat it as absent rather than garbage.
func NormalizeProb(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	if v > 1.0 {
		v = v / 100.0
	}
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	return &v
}

// Round2 rounds to two decimal places. Spreads, divergences, and confidences
// in the output are quoted at this precision.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Float returns a pointer to v. Convenience for building optional fields.
func Float(v float64) *float64 { return &v }
