// Package signal derives typed trading signals from an aggregated odds and
// sentiment record. The engine is a pure function of its inputs: identical
// maps always produce identical signals.
package signal

import (
	"fmt"
	"math"
	"sort"

	"github.com/oddscope/oddscope/internal/domain"
)

// Thresholds holds the detection cutoffs and confidence scalers. The values
// are heuristic, not calibrated against ground truth; they are configuration
// inputs so operators can tune them without a rebuild.
type Thresholds struct {
	// ArbitrageSpread is the min cross-platform yes spread to flag.
	ArbitrageSpread float64
	// DivergencePoints is the min |sentiment% - market%| gap to flag.
	DivergencePoints float64
	// SpikeVolume is the min total social post volume to flag.
	SpikeVolume float64
	// SpreadScale divides into 1.0 to map spread to confidence (spread*scale).
	SpreadScale float64
	// DivergenceScale maps divergence points to confidence (points/scale).
	DivergenceScale float64
	// VolumeScale maps total volume to confidence (volume/scale).
	VolumeScale float64
}

// DefaultThresholds returns the stock cutoffs.
func DefaultThresholds() Thresholds {
	return Thresholds{
		ArbitrageSpread:  0.03,
		DivergencePoints: 10,
		SpikeVolume:      30,
		SpreadScale:      10,
		DivergenceScale:  30,
		VolumeScale:      50,
	}
}

// Engine computes trading signals with a fixed set of thresholds.
type Engine struct {
	t Thresholds
}

// NewEngine creates an engine. Zero-valued threshold fields fall back to the
// defaults so partially-specified configs behave sanely.
func NewEngine(t Thresholds) *Engine {
	def := DefaultThresholds()
	if t.ArbitrageSpread <= 0 {
		t.ArbitrageSpread = def.ArbitrageSpread
	}
	if t.DivergencePoints <= 0 {
		t.DivergencePoints = def.DivergencePoints
	}
	if t.SpikeVolume <= 0 {
		t.SpikeVolume = def.SpikeVolume
	}
	if t.SpreadScale <= 0 {
		t.SpreadScale = def.SpreadScale
	}
	if t.DivergenceScale <= 0 {
		t.DivergenceScale = def.DivergenceScale
	}
	if t.VolumeScale <= 0 {
		t.VolumeScale = def.VolumeScale
	}
	return &Engine{t: t}
}

// Compute derives all applicable signals from the aggregated record.
// Signals whose preconditions are not met are omitted entirely, not emitted
// as "not detected"; the volume-spike signal alone is always present.
func (e *Engine) Compute(odds map[string]domain.MarketOdds, sentiment map[string]domain.SocialSentiment) []domain.TradingSignal {
	signals := make([]domain.TradingSignal, 0, 3)

	if sig, ok := e.arbitrage(odds); ok {
		signals = append(signals, sig)
	}
	if sig, ok := e.divergence(odds, sentiment); ok {
		signals = append(signals, sig)
	}
	signals = append(signals, e.volumeSpike(sentiment))

	return signals
}

// arbitrage flags cross-platform yes-price gaps. It needs at least two
// platforms quoting a yes probability.
func (e *Engine) arbitrage(odds map[string]domain.MarketOdds) (domain.TradingSignal, bool) {
	type quote struct {
		platform string
		yes      float64
	}
	quotes := make([]quote, 0, len(odds))
	for _, platform := range sortedKeys(odds) {
		o := odds[platform]
		if o.HasYes() {
			quotes = append(quotes, quote{platform: platform, yes: *o.Yes})
		}
	}
	if len(quotes) < 2 {
		return domain.TradingSignal{}, false
	}

	hi, lo := quotes[0], quotes[0]
	for _, q := range quotes[1:] {
		if q.yes > hi.yes {
			hi = q
		}
		if q.yes < lo.yes {
			lo = q
		}
	}

	spread := domain.Round2(hi.yes - lo.yes)
	detected := spread > e.t.ArbitrageSpread

	sig := domain.TradingSignal{
		Type:       domain.SignalArbitrage,
		Detected:   detected,
		Confidence: domain.Round2(math.Min(spread*e.t.SpreadScale, 1)),
		Spread:     spread,
	}
	if detected {
		sig.Direction = fmt.Sprintf("sell %s / buy %s", hi.platform, lo.platform)
		sig.Description = fmt.Sprintf(
			"yes priced %.2f on %s vs %.2f on %s: sell the rich side, buy the cheap side (spread %.2f)",
			hi.yes, hi.platform, lo.yes, lo.platform, spread,
		)
	} else {
		sig.Description = fmt.Sprintf(
			"yes prices within %.2f across %d platforms, no actionable gap",
			spread, len(quotes),
		)
	}
	return sig, true
}

// divergence flags gaps between social bullishness and market-implied
// probability. It needs at least one sentiment source and one yes quote.
func (e *Engine) divergence(odds map[string]domain.MarketOdds, sentiment map[string]domain.SocialSentiment) (domain.TradingSignal, bool) {
	var yesSum float64
	var yesN int
	for _, o := range odds {
		if o.HasYes() {
			yesSum += *o.Yes * 100
			yesN++
		}
	}
	if yesN == 0 || len(sentiment) == 0 {
		return domain.TradingSignal{}, false
	}

	var posSum float64
	for _, s := range sentiment {
		posSum += float64(s.Positive)
	}
	avgBullish := posSum / float64(len(sentiment))
	avgYes := yesSum / float64(yesN)

	gap := domain.Round2(math.Abs(avgBullish - avgYes))
	detected := gap > e.t.DivergencePoints

	var desc string
	switch {
	case avgBullish > avgYes:
		desc = fmt.Sprintf(
			"social sentiment %.0f%% bullish vs market-implied %.0f%%: market may be underpricing the yes outcome",
			avgBullish, avgYes,
		)
	case avgBullish < avgYes:
		desc = fmt.Sprintf(
			"social sentiment %.0f%% bullish vs market-implied %.0f%%: market may be overpricing the yes outcome",
			avgBullish, avgYes,
		)
	default:
		desc = fmt.Sprintf("social sentiment and market agree at %.0f%%", avgYes)
	}

	return domain.TradingSignal{
		Type:        domain.SignalSentimentDivergence,
		Detected:    detected,
		Description: desc,
		Confidence:  domain.Round2(math.Min(gap/e.t.DivergenceScale, 1)),
	}, true
}

// volumeSpike flags unusual social chatter. It is always evaluated, even
// with zero sentiment sources.
func (e *Engine) volumeSpike(sentiment map[string]domain.SocialSentiment) domain.TradingSignal {
	var total float64
	for _, s := range sentiment {
		total += float64(s.Volume)
	}
	detected := total > e.t.SpikeVolume

	desc := fmt.Sprintf("%.0f posts sampled across %d social sources", total, len(sentiment))
	if detected {
		desc = fmt.Sprintf("elevated social volume: %.0f posts sampled across %d sources", total, len(sentiment))
	}

	return domain.TradingSignal{
		Type:        domain.SignalVolumeSpike,
		Detected:    detected,
		Description: desc,
		Confidence:  domain.Round2(math.Min(total/e.t.VolumeScale, 1)),
	}
}

func sortedKeys(m map[string]domain.MarketOdds) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
