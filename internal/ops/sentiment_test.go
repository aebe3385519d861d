package ops

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trading-watchlist-backend/internal/blob"
	"trading-watchlist-backend/internal/models"
	"trading-watchlist-backend/internal/store"
)

func storedArticleOp(t *testing.T, blobs blob.StoreItf, symbol, headline string) models.Operation {
	t.Helper()
	article := models.NewsArticle{
		Symbol:      symbol,
		Headline:    headline,
		PublishedAt: "2026-08-01T10:00:00Z",
		AccountID:   "primary",
	}
	raw, err := json.Marshal(article)
	require.NoError(t, err)
	key := blob.NewsKey(symbol, "2026-08-01")
	require.NoError(t, blobs.Put(context.Background(), key, raw, "application/json"))

	return opWithPayload(models.KindNewsStored, models.OperationPayload{
		Symbol:  symbol,
		BlobKey: key,
	})
}

func TestSentimentScorerAccumulates(t *testing.T) {
	st := store.NewMemoryStore()
	blobs := blob.NewMemoryStore()
	emitter := &memEmitter{}
	h := NewSentimentScorerHandler(st, blobs, emitter)
	ctx := context.Background()

	_, err := st.PutWatchlistEntry(ctx, models.WatchlistEntry{
		AccountID:    "primary",
		Symbol:       "ACME",
		ThresholdAbs: 3,
	})
	require.NoError(t, err)

	//two positive articles lift the score without crossing
	for i := 0; i < 2; i++ {
		headline := fmt.Sprintf("ACME beats estimates, take %d", i)
		require.NoError(t, h.Handle(ctx, storedArticleOp(t, blobs, "ACME", headline)))
	}
	e, err := st.GetWatchlistEntry(ctx, "primary", "ACME")
	require.NoError(t, err)
	assert.Equal(t, int64(2), e.CurrentScore)
	assert.Empty(t, emitter.ops)

	//each applied delta leaves a score-change record
	assert.Equal(t, 2, st.CountRecords("primary", "SCORE#ACME#"))
}

func TestSentimentScorerThresholdCrossing(t *testing.T) {
	st := store.NewMemoryStore()
	blobs := blob.NewMemoryStore()
	emitter := &memEmitter{}
	h := NewSentimentScorerHandler(st, blobs, emitter)
	ctx := context.Background()

	_, err := st.PutWatchlistEntry(ctx, models.WatchlistEntry{
		AccountID:    "primary",
		Symbol:       "ACME",
		ThresholdAbs: 3,
	})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		headline := fmt.Sprintf("ACME shares surge on record profit, take %d", i)
		require.NoError(t, h.Handle(ctx, storedArticleOp(t, blobs, "ACME", headline)))
	}

	//exactly one BUY decision on the crossing delivery
	require.Len(t, emitter.ops, 1)
	decision := emitter.ops[0]
	assert.Equal(t, models.KindAutoTradeDecision, decision.Kind)
	assert.Equal(t, models.ActionBuy, decision.Payload.Action)
	assert.Equal(t, int64(3), decision.Payload.Score)
	assert.Equal(t, "SCORE_THRESHOLD", decision.Payload.Reason)

	//staying above the threshold does not re-trigger
	require.NoError(t, h.Handle(ctx, storedArticleOp(t, blobs, "ACME", "ACME rallies again, analysts upgrade")))
	assert.Len(t, emitter.ops, 1)
}

func TestSentimentScorerSellCrossing(t *testing.T) {
	st := store.NewMemoryStore()
	blobs := blob.NewMemoryStore()
	emitter := &memEmitter{}
	h := NewSentimentScorerHandler(st, blobs, emitter)
	ctx := context.Background()

	_, err := st.PutWatchlistEntry(ctx, models.WatchlistEntry{
		AccountID:    "primary",
		Symbol:       "ACME",
		ThresholdAbs: 2,
	})
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		headline := fmt.Sprintf("ACME shares plunge after downgrade, take %d", i)
		require.NoError(t, h.Handle(ctx, storedArticleOp(t, blobs, "ACME", headline)))
	}

	require.Len(t, emitter.ops, 1)
	assert.Equal(t, models.ActionSell, emitter.ops[0].Payload.Action)
	assert.Equal(t, int64(-2), emitter.ops[0].Payload.Score)
}

func TestSentimentScorerSkips(t *testing.T) {
	t.Run("neutral article changes nothing", func(t *testing.T) {
		st := store.NewMemoryStore()
		blobs := blob.NewMemoryStore()
		emitter := &memEmitter{}
		h := NewSentimentScorerHandler(st, blobs, emitter)
		ctx := context.Background()

		_, err := st.PutWatchlistEntry(ctx, models.WatchlistEntry{AccountID: "primary", Symbol: "ACME", ThresholdAbs: 3})
		require.NoError(t, err)
		require.NoError(t, h.Handle(ctx, storedArticleOp(t, blobs, "ACME", "ACME schedules shareholder meeting")))

		e, err := st.GetWatchlistEntry(ctx, "primary", "ACME")
		require.NoError(t, err)
		assert.Equal(t, int64(0), e.CurrentScore)
		assert.Equal(t, 0, st.CountRecords("primary", "SCORE#ACME#"))
	})

	t.Run("deleted symbol is ignored", func(t *testing.T) {
		st := store.NewMemoryStore()
		blobs := blob.NewMemoryStore()
		emitter := &memEmitter{}
		h := NewSentimentScorerHandler(st, blobs, emitter)
		ctx := context.Background()

		_, err := st.PutWatchlistEntry(ctx, models.WatchlistEntry{AccountID: "primary", Symbol: "ACME", ThresholdAbs: 3})
		require.NoError(t, err)
		require.NoError(t, st.MarkStockDeleted(ctx, "primary", "ACME", 0))

		require.NoError(t, h.Handle(ctx, storedArticleOp(t, blobs, "ACME", "ACME beats estimates")))
		e, err := st.GetWatchlistEntry(ctx, "primary", "ACME")
		require.NoError(t, err)
		assert.Equal(t, int64(0), e.CurrentScore)
	})

	t.Run("unknown symbol is ignored", func(t *testing.T) {
		blobs := blob.NewMemoryStore()
		h := NewSentimentScorerHandler(store.NewMemoryStore(), blobs, &memEmitter{})
		assert.NoError(t, h.Handle(context.Background(), storedArticleOp(t, blobs, "GHOST", "GHOST beats estimates")))
	})

	t.Run("missing blob is permanent", func(t *testing.T) {
		st := store.NewMemoryStore()
		_, err := st.PutWatchlistEntry(context.Background(), models.WatchlistEntry{AccountID: "primary", Symbol: "ACME", ThresholdAbs: 3})
		require.NoError(t, err)

		h := NewSentimentScorerHandler(st, blob.NewMemoryStore(), &memEmitter{})
		err = h.Handle(context.Background(), opWithPayload(models.KindNewsStored, models.OperationPayload{
			Symbol:  "ACME",
			BlobKey: "news/ACME/2026-08-01/missing.json",
		}))
		assert.Equal(t, FailureValidation, Classify(err))
	})
}
