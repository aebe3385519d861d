package news

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchArticles(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "ACME", r.URL.Query().Get("symbol"))
		json.NewEncoder(w).Encode([]Article{
			{Symbol: "ACME", Headline: "ACME beats estimates", Source: "wire", PublishedAt: "2026-08-31T10:00:00Z"},
			{Symbol: "ACME", Headline: "ACME announces buyback", Source: "wire", PublishedAt: "2026-08-31T11:00:00Z"},
		})
	}))
	defer srv.Close()

	f := NewFetcher(srv.URL, srv.URL, 10, time.Second)
	articles, err := f.FetchArticles(context.Background(), "ACME")
	require.NoError(t, err)
	require.Len(t, articles, 2)
	assert.Equal(t, "ACME beats estimates", articles[0].Headline)
}

func TestFetchArticlesCapsAtMaxItems(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		items := make([]Article, 5)
		for i := range items {
			items[i] = Article{Symbol: "ACME", Headline: "h"}
		}
		json.NewEncoder(w).Encode(items)
	}))
	defer srv.Close()

	f := NewFetcher(srv.URL, srv.URL, 3, time.Second)
	articles, err := f.FetchArticles(context.Background(), "ACME")
	require.NoError(t, err)
	assert.Len(t, articles, 3)
}

func TestFetchQuote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(Quote{Symbol: "ACME", Price: 123.45})
	}))
	defer srv.Close()

	f := NewFetcher(srv.URL, srv.URL, 10, time.Second)
	q, err := f.FetchQuote(context.Background(), "ACME")
	require.NoError(t, err)
	assert.Equal(t, 123.45, q.Price)
}

func TestFetchQuoteBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	f := NewFetcher(srv.URL, srv.URL, 10, time.Second)
	_, err := f.FetchQuote(context.Background(), "ACME")
	assert.Error(t, err)
}
