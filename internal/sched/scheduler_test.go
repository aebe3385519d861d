package sched

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"trading-watchlist-backend/internal/blob"
	"trading-watchlist-backend/internal/models"
	"trading-watchlist-backend/internal/news"
	"trading-watchlist-backend/internal/ops"
	"trading-watchlist-backend/internal/store"
)

type fakeFetcher struct {
	articles map[string][]news.Article
	quotes   map[string]float64
}

func (f *fakeFetcher) FetchArticles(_ context.Context, symbol string) ([]news.Article, error) {
	return f.articles[symbol], nil
}

func (f *fakeFetcher) FetchQuote(_ context.Context, symbol string) (*news.Quote, error) {
	return &news.Quote{Symbol: symbol, Price: f.quotes[symbol]}, nil
}

type captureEmitter struct {
	ops []models.Operation
}

func (e *captureEmitter) Emit(_ context.Context, op models.Operation) error {
	e.ops = append(e.ops, op)
	return nil
}

func newTestScheduler(st store.StoreItf, blobs blob.StoreItf, f news.FetcherItf, e ops.Emitter) *Scheduler {
	policy := ops.RetentionPolicy{
		SoftAfter: 3 * 7 * 24 * time.Hour,
		HardAfter: 6 * 7 * 24 * time.Hour,
	}
	intervals := Intervals{NewsFetch: time.Hour, Snapshot: time.Hour, Retention: time.Hour}
	return New(st, blobs, f, e, policy, intervals, nil, zap.NewNop())
}

func seedAccount(t *testing.T, st store.StoreItf, symbols ...string) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, st.EnsureSummary(ctx, "primary"))
	for _, sym := range symbols {
		_, err := st.PutWatchlistEntry(ctx, models.WatchlistEntry{
			AccountID:    "primary",
			Symbol:       sym,
			ThresholdAbs: 3,
		})
		require.NoError(t, err)
	}
}

func TestRunNewsFetch(t *testing.T) {
	st := store.NewMemoryStore()
	seedAccount(t, st, "ACME")

	fetcher := &fakeFetcher{
		articles: map[string][]news.Article{
			"ACME": {
				{Symbol: "ACME", Headline: "ACME beats estimates", PublishedAt: "2026-08-01T10:00:00Z"},
				{Symbol: "ACME", Headline: "ACME announces buyback", PublishedAt: "2026-08-01T11:00:00Z"},
			},
		},
		quotes: map[string]float64{"ACME": 123.45},
	}
	emitter := &captureEmitter{}
	blobs := blob.NewMemoryStore()
	s := newTestScheduler(st, blobs, fetcher, emitter)
	ctx := context.Background()

	require.NoError(t, s.RunNewsFetch(ctx))

	//price refreshed from the quote endpoint
	e, err := st.GetWatchlistEntry(ctx, "primary", "ACME")
	require.NoError(t, err)
	assert.Equal(t, 123.45, e.LastFetchedPrice)

	//one NEW_NEWS per unseen article, each referencing a stored blob
	require.Len(t, emitter.ops, 2)
	for _, op := range emitter.ops {
		assert.Equal(t, models.KindNewNews, op.Kind)
		assert.Equal(t, models.OriginSystem, op.Origin)
		assert.NotEmpty(t, op.DedupKey)
		assert.True(t, strings.HasPrefix(op.Payload.BlobKey, "news/ACME/2026-08-01/"))

		raw, err := blobs.Get(ctx, op.Payload.BlobKey)
		require.NoError(t, err)
		var article models.NewsArticle
		require.NoError(t, json.Unmarshal(raw, &article))
		assert.Equal(t, op.Payload.Headline, article.Headline)
	}

	//the next poll sees the same feed and emits nothing
	require.NoError(t, s.RunNewsFetch(ctx))
	assert.Len(t, emitter.ops, 2)

	//a genuinely new headline gets through
	fetcher.articles["ACME"] = append(fetcher.articles["ACME"],
		news.Article{Symbol: "ACME", Headline: "ACME raises guidance", PublishedAt: "2026-08-01T12:00:00Z"})
	require.NoError(t, s.RunNewsFetch(ctx))
	assert.Len(t, emitter.ops, 3)
}

func TestRunNewsFetchSkipsDeleted(t *testing.T) {
	st := store.NewMemoryStore()
	seedAccount(t, st, "ACME")
	ctx := context.Background()
	require.NoError(t, st.MarkStockDeleted(ctx, "primary", "ACME", 0))

	fetcher := &fakeFetcher{
		articles: map[string][]news.Article{
			"ACME": {{Symbol: "ACME", Headline: "ACME beats estimates"}},
		},
		quotes: map[string]float64{"ACME": 1},
	}
	emitter := &captureEmitter{}
	s := newTestScheduler(st, blob.NewMemoryStore(), fetcher, emitter)

	require.NoError(t, s.RunNewsFetch(ctx))
	assert.Empty(t, emitter.ops)
}

func TestRunSnapshotTick(t *testing.T) {
	st := store.NewMemoryStore()
	seedAccount(t, st, "ACME")

	emitter := &captureEmitter{}
	s := newTestScheduler(st, blob.NewMemoryStore(), &fakeFetcher{}, emitter)

	require.NoError(t, s.RunSnapshotTick(context.Background()))

	require.Len(t, emitter.ops, 1)
	op := emitter.ops[0]
	assert.Equal(t, models.KindNetworthSnapshot, op.Kind)
	assert.Equal(t, "primary", op.AccountID)
	assert.False(t, op.Payload.SnapshotAt.IsZero())
	assert.NotEmpty(t, op.DedupKey)
}

func TestRunRetentionSweep(t *testing.T) {
	st := store.NewMemoryStore()
	blobs := blob.NewMemoryStore()
	seedAccount(t, st, "ACME", "LIVE")
	ctx := context.Background()
	require.NoError(t, st.MarkStockDeleted(ctx, "primary", "ACME", 0))

	oldDay := time.Now().UTC().Add(-4 * 7 * 24 * time.Hour).Format("2006-01-02")
	oldKey := blob.NewsKey("ACME", oldDay)
	require.NoError(t, blobs.Put(ctx, oldKey, []byte(`{}`), "application/json"))
	liveKey := blob.NewsKey("LIVE", oldDay)
	require.NoError(t, blobs.Put(ctx, liveKey, []byte(`{}`), "application/json"))

	s := newTestScheduler(st, blobs, &fakeFetcher{}, &captureEmitter{})
	require.NoError(t, s.RunRetentionSweep(ctx))

	//the deleted symbol's old blob is tagged
	infos, err := blobs.List(ctx, blob.NewsPrefix("ACME"))
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.True(t, infos[0].Deleted)

	//live symbols are left alone regardless of age
	infos, err = blobs.List(ctx, blob.NewsPrefix("LIVE"))
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.False(t, infos[0].Deleted)

	//the cleaned count folds into the entry
	e, err := st.GetWatchlistEntry(ctx, "primary", "ACME")
	require.NoError(t, err)
	assert.Equal(t, int64(1), e.DeletedNewsCount)
}
