// Package reddit adapts the public Reddit search API to the aggregator's
// sentiment-source contract.
package reddit

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/url"

	"github.com/oddscope/oddscope/internal/domain"
	"github.com/oddscope/oddscope/internal/fetch"
	"github.com/oddscope/oddscope/internal/sentiment"
)

const (
	platformName = "reddit"
	batchSize    = 20
)

// apiPost is one search hit from GET /search.json.
type apiPost struct {
	Title       string  `json:"title"`
	Selftext    string  `json:"selftext"`
	Score       int     `json:"score"`
	NumComments int     `json:"num_comments"`
	Permalink   string  `json:"permalink"`
	CreatedUTC  float64 `json:"created_utc"`
}

type searchResponse struct {
	Data struct {
		Children []struct {
			Data apiPost `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// Client is the read-only client for Reddit post search.
type Client struct {
	baseURL    string
	fetcher    *fetch.Client
	classifier sentiment.Classifier
	logger     *slog.Logger
}

// New creates a Reddit sentiment client.
//
// baseURL is the site root, e.g. "https://www.reddit.com".
func New(baseURL string, fetcher *fetch.Client, classifier sentiment.Classifier, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		fetcher:    fetcher,
		classifier: classifier,
		logger:     logger.With(slog.String("source", platformName)),
	}
}

// Name returns the platform key.
func (c *Client) Name() string { return platformName }

// FetchSentiment pulls this week's hottest posts matching the topic and
// classifies each on its combined title and body. Any failure degrades to
// the neutral default; sentiment is advisory and never blocks aggregation.
func (c *Client) FetchSentiment(ctx context.Context, topic string) domain.SocialSentiment {
	params := url.Values{}
	params.Set("q", topic)
	params.Set("sort", "hot")
	params.Set("t", "week")
	params.Set("limit", "20")

	body, err := c.fetcher.GetJSON(ctx, c.baseURL+"/search.json?"+params.Encode(), nil)
	if err != nil {
		c.logger.WarnContext(ctx, "fetch sentiment failed", slog.String("error", err.Error()))
		return domain.NeutralSentiment(platformName)
	}

	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		c.logger.WarnContext(ctx, "decode search results failed", slog.String("error", err.Error()))
		return domain.NeutralSentiment(platformName)
	}

	posts := make([]sentiment.Post, 0, batchSize)
	for _, child := range resp.Data.Children {
		p := child.Data
		if p.Title == "" {
			continue
		}
		posts = append(posts, sentiment.Post{
			Text:       p.Title,
			Body:       p.Selftext,
			URL:        "https://www.reddit.com" + p.Permalink,
			Engagement: p.Score + p.NumComments,
		})
		if len(posts) >= batchSize {
			break
		}
	}

	return sentiment.Summarize(platformName, posts, c.classifier)
}

var _ domain.SentimentSource = (*Client)(nil)
