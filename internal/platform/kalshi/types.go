package kalshi

// APIEvent represents an event as returned by the Kalshi public events
// listing (with nested markets).
type APIEvent struct {
	EventTicker string      `json:"event_ticker"`
	Title       string      `json:"title"`
	SubTitle    string      `json:"sub_title"`
	Category    string      `json:"category"`
	Markets     []APIMarket `json:"markets"`
}

// APIMarket represents a market nested in a Kalshi event. Prices are in
// cents (1-99).
type APIMarket struct {
	Ticker    string  `json:"ticker"`
	Title     string  `json:"title"`
	Status    string  `json:"status"`
	YesBid    float64 `json:"yes_bid"`
	YesAsk    float64 `json:"yes_ask"`
	NoBid     float64 `json:"no_bid"`
	NoAsk     float64 `json:"no_ask"`
	LastPrice float64 `json:"last_price"`
	Volume24h float64 `json:"volume_24h"`
	Liquidity float64 `json:"liquidity"` // in cents
	CloseTime string  `json:"close_time"`
}

// eventsResponse is the envelope of GET /events.
type eventsResponse struct {
	Events []APIEvent `json:"events"`
	Cursor string     `json:"cursor"`
}
