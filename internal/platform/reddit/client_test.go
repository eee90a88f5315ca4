package reddit

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
	return New(baseURL, fetcher, sentiment.NewLexicon(), logger)
}

const searchJSON = `{
	"data": {
		"children": [
			{"data": {"title": "Bitcoin to the moon, buy now", "selftext": "", "score": 120, "num_comments": 45, "permalink": "/r/a/1"}},
			{"data": {"title": "Expecting a crash soon", "selftext": "this will dump hard", "score": 80, "num_comments": 10, "permalink": "/r/a/2"}},
			{"data": {"title": "Weekly discussion thread", "selftext": "", "score": 10, "num_comments": 200, "permalink": "/r/a/3"}},
			{"data": {"title": "", "selftext": "titleless posts are skipped"}}
		]
	}
}`

func TestFetchSentiment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search.json", r.URL.Path)
		assert.Equal(t, "bitcoin", r.URL.Query().Get("q"))
		assert.Equal(t, "hot", r.URL.Query().Get("sort"))
		assert.Equal(t, "week", r.URL.Query().Get("t"))
		w.Write([]byte(searchJSON))
	}))
	defer srv.Close()

	s := newClient(t, srv.URL).FetchSentiment(context.Background(), "bitcoin")

	assert.Equal(t, "reddit", s.Platform)
	assert.Equal(t, 3, s.Volume, "titleless post excluded")
	assert.Equal(t, 100, s.Positive+s.Negative+s.Neutral)
	assert.Equal(t, 33, s.Positive)
	assert.Equal(t, 33, s.Negative)

	require.NotEmpty(t, s.TopPosts)
	// Highest engagement is the discussion thread (10+200).
	assert.Equal(t, "Weekly discussion thread", s.TopPosts[0].Text)
	assert.Equal(t, 210, s.TopPosts[0].Engagement)
	assert.Equal(t, "https://www.reddit.com/r/a/3", s.TopPosts[0].URL)
}

func TestFetchSentimentDegradesToNeutral(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	s := newClient(t, srv.URL).FetchSentiment(context.Background(), "bitcoin")

	assert.Equal(t, "reddit", s.Platform)
	assert.Equal(t, 0, s.Volume)
	assert.Equal(t, 33, s.Positive)
	assert.Equal(t, 34, s.Neutral)
}

func TestFetchSentimentBadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>rate limited</html>`))
	}))
	defer srv.Close()

	s := newClient(t, srv.URL).FetchSentiment(context.Background(), "bitcoin")
	assert.Equal(t, 0, s.Volume)
}
