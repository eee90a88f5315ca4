package polymarket

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

	"github.com/oddscope/oddscope/internal/domain"
	"github.com/oddscope/oddscope/internal/fetch"
)

func newClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	fetcher, err := fetch.New(fetch.ClientConfig{Timeout: 2 * time.Second, Backoff: time.Millisecond}, logger)
	require.NoError(t, err)
	return New(baseURL, fetcher, logger)
}

const marketsJSON = `[
	{
		"id": "1",
		"question": "Will Bitcoin hit 100k this year?",
		"slug": "bitcoin-100k",
		"active": "true",
		"closed": false,
		"outcomePrices": "[\"0.62\",\"0.38\"]",
		"volume": "150000.5",
		"volume24hr": 12000,
		"liquidity": "90000",
		"endDate": "2026-12-31T00:00:00Z"
	},
	{
		"id": "2",
		"question": "Thin copy of the same market",
		"slug": "bitcoin-100k-alt",
		"active": true,
		"closed": false,
		"outcomePrices": "[\"0.90\",\"0.10\"]",
		"volume": "12.5",
		"volume24hr": 3,
		"liquidity": "10",
		"endDate": "2026-12-31T00:00:00Z"
	}
]`

func TestFetchOddsPicksHighestVolume(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/markets", r.URL.Path)
		assert.Equal(t, "false", r.URL.Query().Get("closed"))
		assert.Equal(t, "bitcoin", r.URL.Query().Get("q"))
		w.Write([]byte(marketsJSON))
	}))
	defer srv.Close()

	res := newClient(t, srv.URL).FetchOdds(context.Background(), "bitcoin")

	require.Equal(t, domain.StatusFound, res.Status)
	assert.Equal(t, "polymarket", res.Odds.Platform)
	assert.Equal(t, "Will Bitcoin hit 100k this year?", res.Odds.Question)
	require.NotNil(t, res.Odds.Yes)
	assert.InDelta(t, 0.62, *res.Odds.Yes, 1e-9)
	require.NotNil(t, res.Odds.No)
	assert.InDelta(t, 0.38, *res.Odds.No, 1e-9)
	require.NotNil(t, res.Odds.Volume24h)
	assert.InDelta(t, 150000.5, *res.Odds.Volume24h, 1e-9)
}

func TestFetchOddsNoMatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	res := newClient(t, srv.URL).FetchOdds(context.Background(), "nonexistent")
	assert.Equal(t, domain.StatusNoMatch, res.Status)
}

func TestFetchOddsSourceDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	res := newClient(t, srv.URL).FetchOdds(context.Background(), "bitcoin")
	assert.Equal(t, domain.StatusSourceDown, res.Status)
	assert.Error(t, res.Err)
}

func TestFetchOddsPricelessMarket(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id":"3","question":"No prices yet","volume":"500"}]`))
	}))
	defer srv.Close()

	res := newClient(t, srv.URL).FetchOdds(context.Background(), "bitcoin")
	require.Equal(t, domain.StatusFound, res.Status)
	assert.Nil(t, res.Odds.Yes)
	assert.Nil(t, res.Odds.No)
}

func TestListMarkets(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "20", r.URL.Query().Get("limit"))
		w.Write([]byte(marketsJSON))
	}))
	defer srv.Close()

	listings, err := newClient(t, srv.URL).ListMarkets(context.Background(), 20)
	require.NoError(t, err)
	require.Len(t, listings, 2)
	assert.Equal(t, "polymarket", listings[0].Platform)
	assert.Equal(t, "https://polymarket.com/market/bitcoin-100k", listings[0].URL)
	assert.InDelta(t, 90000, listings[0].Liquidity, 1e-9)
	require.NotNil(t, listings[0].Yes)
	assert.InDelta(t, 0.62, *listings[0].Yes, 1e-9)
}

func TestPricesDecoding(t *testing.T) {
	m := APIMarket{OutcomePrices: `["0.7","bogus","0.3"]`}
	assert.Equal(t, []float64{0.7, 0.3}, m.Prices())

	empty := APIMarket{}
	assert.Nil(t, empty.Prices())
}
