package ops

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"trading-watchlist-backend/internal/blob"
	"trading-watchlist-backend/internal/models"
	"trading-watchlist-backend/internal/store"
)

func testPolicy() RetentionPolicy {
	return RetentionPolicy{
		SoftAfter: 3 * 7 * 24 * time.Hour,
		HardAfter: 6 * 7 * 24 * time.Hour,
	}
}

func day(ago time.Duration) string {
	return time.Now().UTC().Add(-ago).Format("2006-01-02")
}

func TestSoftDelete(t *testing.T) {
	st := store.NewMemoryStore()
	blobs := blob.NewMemoryStore()
	h := NewSoftDeleteHandler(st, blobs, testPolicy(), zap.NewNop())
	ctx := context.Background()

	_, err := st.PutWatchlistEntry(ctx, models.WatchlistEntry{
		AccountID: "primary",
		Symbol:    "ACME",
	})
	require.NoError(t, err)

	recentKey := blob.NewsKey("ACME", day(0))
	oldKey := blob.NewsKey("ACME", day(4*7*24*time.Hour))
	ancientKey := blob.NewsKey("ACME", day(7*7*24*time.Hour))
	for _, k := range []string{recentKey, oldKey, ancientKey} {
		require.NoError(t, blobs.Put(ctx, k, []byte(`{}`), "application/json"))
	}

	op := opWithPayload(models.KindMarkStockDeleted, models.OperationPayload{Symbol: "ACME"})
	require.NoError(t, h.Handle(ctx, op))

	e, err := st.GetWatchlistEntry(ctx, "primary", "ACME")
	require.NoError(t, err)
	assert.True(t, e.IsDeleted)
	assert.Equal(t, int64(2), e.DeletedNewsCount)

	//past the hard window: gone
	_, err = blobs.Get(ctx, ancientKey)
	assert.ErrorIs(t, err, blob.ErrNotFound)

	//past the soft window: tagged, payload still readable
	infos, err := blobs.List(ctx, blob.NewsPrefix("ACME"))
	require.NoError(t, err)
	require.Len(t, infos, 2)
	for _, info := range infos {
		switch info.Key {
		case oldKey:
			assert.True(t, info.Deleted)
		case recentKey:
			assert.False(t, info.Deleted)
		}
	}
}

func TestSoftDeleteConverges(t *testing.T) {
	st := store.NewMemoryStore()
	blobs := blob.NewMemoryStore()
	h := NewSoftDeleteHandler(st, blobs, testPolicy(), zap.NewNop())
	ctx := context.Background()

	_, err := st.PutWatchlistEntry(ctx, models.WatchlistEntry{AccountID: "primary", Symbol: "ACME"})
	require.NoError(t, err)
	require.NoError(t, blobs.Put(ctx, blob.NewsKey("ACME", day(4*7*24*time.Hour)), []byte(`{}`), "application/json"))

	op := opWithPayload(models.KindMarkStockDeleted, models.OperationPayload{Symbol: "ACME"})
	require.NoError(t, h.Handle(ctx, op))
	require.NoError(t, h.Handle(ctx, op))

	//a redelivered delete does not double-count already-tagged blobs
	e, err := st.GetWatchlistEntry(ctx, "primary", "ACME")
	require.NoError(t, err)
	assert.True(t, e.IsDeleted)
	assert.Equal(t, int64(1), e.DeletedNewsCount)
}

func TestSoftDeleteUnknownSymbol(t *testing.T) {
	h := NewSoftDeleteHandler(store.NewMemoryStore(), blob.NewMemoryStore(), testPolicy(), zap.NewNop())

	err := h.Handle(context.Background(), opWithPayload(models.KindMarkStockDeleted, models.OperationPayload{Symbol: "GHOST"}))
	assert.Equal(t, FailureConstraint, Classify(err))
}
