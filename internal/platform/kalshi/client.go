// Package kalshi adapts the Kalshi public events API to the aggregator's
// odds-source contract. Only unauthenticated market data is consumed; the
// signed trade API is out of scope.
package kalshi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/oddscope/oddscope/internal/domain"
	"github.com/oddscope/oddscope/internal/fetch"
)

const platformName = "kalshi"

// Client is the read-only client for the Kalshi events API.
type Client struct {
	baseURL string
	fetcher *fetch.Client
	logger  *slog.Logger
}

// New creates a Kalshi client.
//
// baseURL is the API root, e.g. "https://api.elections.kalshi.com/trade-api/v2".
func New(baseURL string, fetcher *fetch.Client, logger *slog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		fetcher: fetcher,
		logger:  logger.With(slog.String("source", platformName)),
	}
}

// Name returns the platform key.
func (c *Client) Name() string { return platformName }

// FetchOdds pulls the open-events listing and matches the first whitespace
// token of the topic against event titles. The listing endpoint has no
// free-text search, hence the naive substring match. The yes probability is
// the bid/ask midpoint of the matched event's lead market, scaled from cents.
func (c *Client) FetchOdds(ctx context.Context, topic string) domain.OddsResult {
	events, err := c.listEvents(ctx, 100)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.NoMatch()
		}
		c.logger.WarnContext(ctx, "fetch odds failed", slog.String("error", err.Error()))
		return domain.SourceDown(err)
	}

	keyword := firstToken(topic)
	if keyword == "" {
		return domain.NoMatch()
	}

	for i := range events {
		ev := &events[i]
		if !strings.Contains(strings.ToLower(ev.Title), keyword) {
			continue
		}
		if len(ev.Markets) == 0 {
			continue
		}
		return domain.FoundOdds(marketToOdds(ev.Title, &ev.Markets[0]))
	}
	return domain.NoMatch()
}

// ListMarkets returns the lead market of each open event for the snapshot
// sweep.
func (c *Client) ListMarkets(ctx context.Context, limit int) ([]domain.MarketListing, error) {
	if limit <= 0 {
		limit = 100
	}
	events, err := c.listEvents(ctx, limit)
	if err != nil {
		return nil, err
	}

	out := make([]domain.MarketListing, 0, len(events))
	for i := range events {
		ev := &events[i]
		if len(ev.Markets) == 0 {
			continue
		}
		m := &ev.Markets[0]
		listing := domain.MarketListing{
			Platform:  platformName,
			ID:        m.Ticker,
			Question:  ev.Title,
			URL:       "https://kalshi.com/markets/" + strings.ToLower(ev.EventTicker),
			Volume24h: m.Volume24h,
			Liquidity: m.Liquidity / 100,
			CloseTime: m.CloseTime,
		}
		if mid := midpoint(m.YesBid, m.YesAsk); mid > 0 {
			listing.Yes = domain.NormalizeProb(mid / 100)
		}
		out = append(out, listing)
	}
	return out, nil
}

func (c *Client) listEvents(ctx context.Context, limit int) ([]APIEvent, error) {
	params := url.Values{}
	params.Set("status", "open")
	params.Set("limit", strconv.Itoa(limit))
	params.Set("with_nested_markets", "true")

	body, err := c.fetcher.GetJSON(ctx, c.baseURL+"/events?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("kalshi: get events: %w", err)
	}

	var resp eventsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("kalshi: decode events: %w", err)
	}
	return resp.Events, nil
}

// marketToOdds converts a cent-priced Kalshi market to a normalized record.
// Prices are always cents here, so the scale is divided out explicitly rather
// than left to NormalizeProb's heuristic, which would read a 1¢ longshot as
// an already-normalized 1.0.
func marketToOdds(question string, m *APIMarket) domain.MarketOdds {
	odds := domain.MarketOdds{
		Platform: platformName,
		Question: question,
	}
	if mid := midpoint(m.YesBid, m.YesAsk); mid > 0 {
		odds.Yes = domain.NormalizeProb(mid / 100)
	}
	if mid := midpoint(m.NoBid, m.NoAsk); mid > 0 {
		odds.No = domain.NormalizeProb(mid / 100)
	} else if odds.Yes != nil {
		odds.No = domain.Float(1 - *odds.Yes)
	}
	if m.Volume24h > 0 {
		odds.Volume24h = domain.Float(m.Volume24h)
	}
	if m.Liquidity > 0 {
		odds.Liquidity = domain.Float(m.Liquidity / 100)
	}
	return odds
}

func midpoint(bid, ask float64) float64 {
	if bid <= 0 && ask <= 0 {
		return 0
	}
	if bid <= 0 {
		return ask
	}
	if ask <= 0 {
		return bid
	}
	return (bid + ask) / 2
}

// firstToken returns the first whitespace-delimited token of the topic,
// lowercased for the substring match.
func firstToken(topic string) string {
	fields := strings.Fields(strings.ToLower(topic))
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

var (
	_ domain.OddsSource   = (*Client)(nil)
	_ domain.MarketLister = (*Client)(nil)
)
