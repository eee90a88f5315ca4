package domain

// FetchStatus classifies the outcome of one odds-source fetch. Distinguishing
// a topic with no matching market from a source outage lets the aggregator
// log outages without changing what the caller sees (both are absence).
type FetchStatus string

const (
	// StatusFound means the source returned a usable odds record.
	StatusFound FetchStatus = "found"
	// StatusNoMatch means the source is healthy but has no market for the topic.
	StatusNoMatch FetchStatus = "no_match"
	// StatusSourceDown means the fetch or decode failed after retries.
	StatusSourceDown FetchStatus = "source_down"
)

// OddsResult is the outcome of one OddsSource fetch. Odds is meaningful only
// when Status is StatusFound; Err only when Status is StatusSourceDown.
type OddsResult struct {
	Status FetchStatus
	Odds   MarketOdds
	Err    error
}

// FoundOdds wraps a successful fetch.
func FoundOdds(odds MarketOdds) OddsResult {
	return OddsResult{Status: StatusFound, Odds: odds}
}

// NoMatch reports a healthy source with no market for the topic.
func NoMatch() OddsResult {
	return OddsResult{Status: StatusNoMatch}
}

// SourceDown reports a failed fetch. The error is carried for diagnostics
// only; it never propagates past the aggregator.
func SourceDown(err error) OddsResult {
	if err == nil {
		err = ErrSourceDown
	}
	return OddsResult{Status: StatusSourceDown, Err: err}
}
