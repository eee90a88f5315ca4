// Package xsearch adapts the X/Twitter guest search flow to the aggregator's
// sentiment-source contract: activate an anonymous guest token, then run a
// keyword search with it. No user credentials are ever involved.
package xsearch

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/oddscope/oddscope/internal/domain"
	"github.com/oddscope/oddscope/internal/fetch"
	"github.com/oddscope/oddscope/internal/sentiment"
)

const platformName = "twitter"

// tweet is one status from the search response.
type tweet struct {
	IDStr         string `json:"id_str"`
	Text          string `json:"text"`
	FullText      string `json:"full_text"`
	RetweetCount  int    `json:"retweet_count"`
	FavoriteCount int    `json:"favorite_count"`
	User          struct {
		ScreenName string `json:"screen_name"`
	} `json:"user"`
}

type searchResponse struct {
	Statuses []tweet `json:"statuses"`
}

type activateResponse struct {
	GuestToken string `json:"guest_token"`
}

// Client is the guest-token search client.
type Client struct {
	baseURL     string
	bearerToken string
	fetcher     *fetch.Client
	classifier  sentiment.Classifier
	logger      *slog.Logger
}

// New creates a guest search client.
//
// baseURL is the API root, e.g. "https://api.x.com"; bearerToken is the
// public web-client bearer used for guest sessions.
func New(baseURL, bearerToken string, fetcher *fetch.Client, classifier sentiment.Classifier, logger *slog.Logger) *Client {
	return &Client{
		baseURL:     baseURL,
		bearerToken: bearerToken,
		fetcher:     fetcher,
		classifier:  classifier,
		logger:      logger.With(slog.String("source", platformName)),
	}
}

// Name returns the platform key.
func (c *Client) Name() string { return platformName }

// FetchSentiment performs the two-step guest handshake and classifies the
// matched tweets. A failed token activation degrades to the neutral default
// rather than failing the aggregation.
func (c *Client) FetchSentiment(ctx context.Context, topic string) domain.SocialSentiment {
	token, err := c.activateGuestToken(ctx)
	if err != nil {
		c.logger.WarnContext(ctx, "guest token activation failed", slog.String("error", err.Error()))
		return domain.NeutralSentiment(platformName)
	}

	tweets, err := c.searchTweets(ctx, token, topic)
	if err != nil {
		c.logger.WarnContext(ctx, "tweet search failed", slog.String("error", err.Error()))
		return domain.NeutralSentiment(platformName)
	}

	posts := make([]sentiment.Post, 0, len(tweets))
	for _, t := range tweets {
		text := t.FullText
		if text == "" {
			text = t.Text
		}
		if text == "" {
			continue
		}
		posts = append(posts, sentiment.Post{
			Text:       text,
			URL:        fmt.Sprintf("https://x.com/%s/status/%s", t.User.ScreenName, t.IDStr),
			Engagement: t.RetweetCount + t.FavoriteCount,
		})
	}

	return sentiment.Summarize(platformName, posts, c.classifier)
}

// activateGuestToken requests an anonymous guest credential.
func (c *Client) activateGuestToken(ctx context.Context) (string, error) {
	body, err := c.fetcher.Do(ctx, fetch.Request{
		Method: http.MethodPost,
		URL:    c.baseURL + "/1.1/guest/activate.json",
		Headers: map[string]string{
			"Authorization": "Bearer " + c.bearerToken,
		},
	})
	if err != nil {
		return "", fmt.Errorf("xsearch: activate guest token: %w", err)
	}

	var resp activateResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("xsearch: decode guest token: %w", err)
	}
	if resp.GuestToken == "" {
		return "", fmt.Errorf("xsearch: empty guest token")
	}
	return resp.GuestToken, nil
}

// searchTweets runs a recent-tweet keyword search under the guest token.
func (c *Client) searchTweets(ctx context.Context, guestToken, topic string) ([]tweet, error) {
	params := url.Values{}
	params.Set("q", topic)
	params.Set("count", "20")
	params.Set("result_type", "recent")

	body, err := c.fetcher.Do(ctx, fetch.Request{
		Method: http.MethodGet,
		URL:    c.baseURL + "/1.1/search/tweets.json?" + params.Encode(),
		Headers: map[string]string{
			"Authorization": "Bearer " + c.bearerToken,
			"x-guest-token": guestToken,
			"Accept":        "application/json",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("xsearch: search tweets: %w", err)
	}

	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("xsearch: decode tweets: %w", err)
	}
	return resp.Statuses, nil
}

var _ domain.SentimentSource = (*Client)(nil)
