// Package polymarket adapts the Polymarket Gamma API to the aggregator's
// odds-source contract.
package polymarket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"

	"github.com/oddscope/oddscope/internal/domain"
	"github.com/oddscope/oddscope/internal/fetch"
)

const platformName = "polymarket"

// Client is the read-only client for the Polymarket Gamma API.
type Client struct {
	baseURL string
	fetcher *fetch.Client
	logger  *slog.Logger
}

// New creates a Gamma API client.
//
// baseURL is the Gamma root, e.g. "https://gamma-api.polymarket.com".
func New(baseURL string, fetcher *fetch.Client, logger *slog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		fetcher: fetcher,
		logger:  logger.With(slog.String("source", platformName)),
	}
}

// Name returns the platform key.
func (c *Client) Name() string { return platformName }

// FetchOdds queries the active-markets listing filtered by the topic text and
// maps the best-matching market to a normalized odds record. The Gamma API
// does not label outcomes semantically: when an array of outcome prices is
// present the highest price is treated as "yes" and the lowest as "no". A
// priceless market still yields a record carrying volume and liquidity.
func (c *Client) FetchOdds(ctx context.Context, topic string) domain.OddsResult {
	params := url.Values{}
	params.Set("closed", "false")
	params.Set("limit", "20")
	params.Set("q", topic)

	body, err := c.fetcher.GetJSON(ctx, c.baseURL+"/markets?"+params.Encode(), nil)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.NoMatch()
		}
		c.logger.WarnContext(ctx, "fetch odds failed", slog.String("error", err.Error()))
		return domain.SourceDown(fmt.Errorf("polymarket: get markets: %w", err))
	}

	var markets []APIMarket
	if err := json.Unmarshal(body, &markets); err != nil {
		return domain.SourceDown(fmt.Errorf("polymarket: decode markets: %w", err))
	}
	if len(markets) == 0 {
		return domain.NoMatch()
	}

	best := pickByVolume(markets)
	odds := domain.MarketOdds{
		Platform: platformName,
		Question: best.Question,
	}
	if prices := best.Prices(); len(prices) > 0 {
		hi, lo := prices[0], prices[0]
		for _, p := range prices[1:] {
			if p > hi {
				hi = p
			}
			if p < lo {
				lo = p
			}
		}
		odds.Yes = domain.NormalizeProb(hi)
		odds.No = domain.NormalizeProb(lo)
	}
	if v := best.VolumeFloat(); v > 0 {
		odds.Volume24h = domain.Float(v)
	}
	if l := best.LiquidityFloat(); l > 0 {
		odds.Liquidity = domain.Float(l)
	}

	return domain.FoundOdds(odds)
}

// ListMarkets returns the highest-volume open markets for the snapshot sweep.
func (c *Client) ListMarkets(ctx context.Context, limit int) ([]domain.MarketListing, error) {
	if limit <= 0 {
		limit = 100
	}
	params := url.Values{}
	params.Set("closed", "false")
	params.Set("limit", strconv.Itoa(limit))

	body, err := c.fetcher.GetJSON(ctx, c.baseURL+"/markets?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("polymarket: list markets: %w", err)
	}

	var markets []APIMarket
	if err := json.Unmarshal(body, &markets); err != nil {
		return nil, fmt.Errorf("polymarket: decode markets: %w", err)
	}

	out := make([]domain.MarketListing, 0, len(markets))
	for i := range markets {
		m := &markets[i]
		listing := domain.MarketListing{
			Platform:  platformName,
			ID:        m.ID,
			Question:  m.Question,
			URL:       "https://polymarket.com/market/" + m.Slug,
			Volume24h: m.Volume24hr,
			Liquidity: m.LiquidityFloat(),
			CloseTime: m.EndDate,
		}
		if prices := m.Prices(); len(prices) > 0 {
			hi := prices[0]
			for _, p := range prices[1:] {
				if p > hi {
					hi = p
				}
			}
			listing.Yes = domain.NormalizeProb(hi)
		}
		out = append(out, listing)
	}
	return out, nil
}

// pickByVolume selects the market with the highest total volume; many topic
// queries return several thinly-traded variants of the same question.
func pickByVolume(markets []APIMarket) *APIMarket {
	best := &markets[0]
	bestVol := best.VolumeFloat()
	for i := 1; i < len(markets); i++ {
		if v := markets[i].VolumeFloat(); v > bestVol {
			best = &markets[i]
			bestVol = v
		}
	}
	return best
}

var (
	_ domain.OddsSource   = (*Client)(nil)
	_ domain.MarketLister = (*Client)(nil)
)
