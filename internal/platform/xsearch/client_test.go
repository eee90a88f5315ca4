package xsearch

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oddscope/oddscope/internal/fetch"
	"github.com/oddscope/oddscope/internal/sentiment"
)

func newClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	fetcher, err := fetch.New(fetch.ClientConfig{Timeout: 2 * time.Second, Backoff: time.Millisecond}, logger)
	require.NoError(t, err)
	return New(baseURL, "test-bearer", fetcher, sentiment.NewLexicon(), logger)
}

const tweetsJSON = `{
	"statuses": [
		{
			"id_str": "900",
			"full_text": "bitcoin is going to pump, bullish",
			"retweet_count": 12,
			"favorite_count": 88,
			"user": {"screen_name": "trader_a"}
		},
		{
			"id_str": "901",
			"text": "everything will crash",
			"retweet_count": 2,
			"favorite_count": 3,
			"user": {"screen_name": "trader_b"}
		}
	]
}`

func TestFetchSentimentGuestFlow(t *testing.T) {
	var activations, searches int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/1.1/guest/activate.json":
			activations++
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "Bearer test-bearer", r.Header.Get("Authorization"))
			w.Write([]byte(`{"guest_token": "gt-123"}`))
		case "/1.1/search/tweets.json":
			searches++
			assert.Equal(t, "gt-123", r.Header.Get("x-guest-token"))
			assert.Equal(t, "Bearer test-bearer", r.Header.Get("Authorization"))
			assert.Equal(t, "bitcoin", r.URL.Query().Get("q"))
			w.Write([]byte(tweetsJSON))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	s := newClient(t, srv.URL).FetchSentiment(context.Background(), "bitcoin")

	assert.Equal(t, 1, activations)
	assert.Equal(t, 1, searches)
	assert.Equal(t, "twitter", s.Platform)
	assert.Equal(t, 2, s.Volume)
	assert.Equal(t, 50, s.Positive)
	assert.Equal(t, 50, s.Negative)

	require.Len(t, s.TopPosts, 2)
	assert.Equal(t, "https://x.com/trader_a/status/900", s.TopPosts[0].URL)
	assert.Equal(t, 100, s.TopPosts[0].Engagement)
}

func TestFetchSentimentTokenFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	s := newClient(t, srv.URL).FetchSentiment(context.Background(), "bitcoin")

	assert.Equal(t, "twitter", s.Platform)
	assert.Equal(t, 0, s.Volume)
	assert.Equal(t, 34, s.Neutral)
}

func TestFetchSentimentEmptyToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	s := newClient(t, srv.URL).FetchSentiment(context.Background(), "bitcoin")
	assert.Equal(t, 0, s.Volume)
}
