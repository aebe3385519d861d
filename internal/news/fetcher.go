// Package news talks to the external headline feed and quote endpoint.
package news

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Article is one headline as returned by the feed.
type Article struct {
	Symbol      string `json:"symbol"`
	Headline    string `json:"headline"`
	Body        string `json:"body"`
	Source      string `json:"source"`
	PublishedAt string `json:"published_at"`
}

// Quote is the latest traded price for a symbol.
type Quote struct {
	Symbol string  `json:"symbol"`
	Price  float64 `json:"price"`
}

// FetcherItf is what the scheduler needs from the outside world.
type FetcherItf interface {
	FetchArticles(ctx context.Context, symbol string) ([]Article, error)
	FetchQuote(ctx context.Context, symbol string) (*Quote, error)
}

// Fetcher is the HTTP implementation of FetcherItf.
type Fetcher struct {
	feedURL  string
	quoteURL string
	maxItems int
	client   *http.Client
}

func NewFetcher(feedURL, quoteURL string, maxItems int, timeout time.Duration) *Fetcher {
	return &Fetcher{
		feedURL:  feedURL,
		quoteURL: quoteURL,
		maxItems: maxItems,
		client:   &http.Client{Timeout: timeout},
	}
}

// FetchArticles pulls the latest headlines for one symbol, capped at
// the configured item count.
func (f *Fetcher) FetchArticles(ctx context.Context, symbol string) ([]Article, error) {
	u := fmt.Sprintf("%s?symbol=%s&limit=%d", f.feedURL, url.QueryEscape(symbol), f.maxItems)
	var articles []Article
	if err := f.getJSON(ctx, u, &articles); err != nil {
		return nil, fmt.Errorf("fetch articles for %s: %w", symbol, err)
	}
	if len(articles) > f.maxItems {
		articles = articles[:f.maxItems]
	}
	return articles, nil
}

// FetchQuote pulls the current price for one symbol.
func (f *Fetcher) FetchQuote(ctx context.Context, symbol string) (*Quote, error) {
	u := fmt.Sprintf("%s?symbol=%s", f.quoteURL, url.QueryEscape(symbol))
	var q Quote
	if err := f.getJSON(ctx, u, &q); err != nil {
		return nil, fmt.Errorf("fetch quote for %s: %w", symbol, err)
	}
	return &q, nil
}

func (f *Fetcher) getJSON(ctx context.Context, u string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
