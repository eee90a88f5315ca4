// Package metaculus adapts the Metaculus questions API to the aggregator's
// odds-source contract. Metaculus publishes a single community forecast per
// binary question, so the record carries yes = median and no = 1 - median.
package metaculus

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

const platformName = "metaculus"

// APIQuestion represents a question row from GET /questions/.
type APIQuestion struct {
	ID                  int    `json:"id"`
	Title               string `json:"title"`
	PageURL             string `json:"page_url"`
	Status              string `json:"status"`
	NumberOfForecasters int    `json:"number_of_forecasters"`
	CommunityPrediction struct {
		Full struct {
			Q2 *float64 `json:"q2"` // community median
		} `json:"full"`
	} `json:"community_prediction"`
}

type questionsResponse struct {
	Results []APIQuestion `json:"results"`
}

// Client is the read-only client for the Metaculus API.
type Client struct {
	baseURL string
	fetcher *fetch.Client
	logger  *slog.Logger
}

// New creates a Metaculus client.
//
// baseURL is the API root, e.g. "https://www.metaculus.com/api2".
func New(baseURL string, fetcher *fetch.Client, logger *slog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		fetcher: fetcher,
		logger:  logger.With(slog.String("source", platformName)),
	}
}

// Name returns the platform key.
func (c *Client) Name() string { return platformName }

// FetchOdds searches open questions for the topic and takes the first result
// that carries a community median. The forecaster count rides along as the
// volume field for lack of a traded-volume concept on Metaculus.
func (c *Client) FetchOdds(ctx context.Context, topic string) domain.OddsResult {
	questions, err := c.search(ctx, topic, 5)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.NoMatch()
		}
		c.logger.WarnContext(ctx, "fetch odds failed", slog.String("error", err.Error()))
		return domain.SourceDown(err)
	}

	for i := range questions {
		q := &questions[i]
		median := q.CommunityPrediction.Full.Q2
		if median == nil {
			continue
		}
		odds := domain.MarketOdds{
			Platform: platformName,
			Question: q.Title,
			Yes:      domain.NormalizeProb(*median),
		}
		if odds.Yes != nil {
			odds.No = domain.Float(1 - *odds.Yes)
		}
		if q.NumberOfForecasters > 0 {
			odds.Volume24h = domain.Float(float64(q.NumberOfForecasters))
		}
		return domain.FoundOdds(odds)
	}
	return domain.NoMatch()
}

// ListMarkets returns open questions with a community median for the
// snapshot sweep. Forecaster count stands in for volume.
func (c *Client) ListMarkets(ctx context.Context, limit int) ([]domain.MarketListing, error) {
	if limit <= 0 {
		limit = 100
	}
	questions, err := c.search(ctx, "", limit)
	if err != nil {
		return nil, err
	}

	out := make([]domain.MarketListing, 0, len(questions))
	for i := range questions {
		q := &questions[i]
		median := q.CommunityPrediction.Full.Q2
		if median == nil {
			continue
		}
		out = append(out, domain.MarketListing{
			Platform:  platformName,
			ID:        strconv.Itoa(q.ID),
			Question:  q.Title,
			URL:       "https://www.metaculus.com" + q.PageURL,
			Yes:       domain.NormalizeProb(*median),
			Volume24h: float64(q.NumberOfForecasters),
		})
	}
	return out, nil
}

func (c *Client) search(ctx context.Context, topic string, limit int) ([]APIQuestion, error) {
	params := url.Values{}
	if topic != "" {
		params.Set("search", topic)
	}
	params.Set("status", "open")
	params.Set("limit", strconv.Itoa(limit))

	body, err := c.fetcher.GetJSON(ctx, c.baseURL+"/questions/?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("metaculus: get questions: %w", err)
	}

	var resp questionsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("metaculus: decode questions: %w", err)
	}
	return resp.Results, nil
}

var (
	_ domain.OddsSource   = (*Client)(nil)
	_ domain.MarketLister = (*Client)(nil)
)
