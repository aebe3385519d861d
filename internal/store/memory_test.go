package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trading-watchlist-backend/internal/models"
)

func TestMemoryStoreConditionalCash(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, st.EnsureSummary(ctx, "primary"))

	testCases := []struct {
		name        string
		delta       int64
		max         int64
		expectedErr error
	}{
		{name: "deposit within cap", delta: 5000, max: 10000},
		{name: "cap is inclusive", delta: 5000, max: 10000},
		{name: "cap breach rejected", delta: 1, max: 10000, expectedErr: ErrConditionFailed},
		{name: "withdraw within balance", delta: -10000, max: 10000},
		{name: "overdraw rejected", delta: -1, max: 10000, expectedErr: ErrConditionFailed},
	}
	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			err := st.AdjustCash(ctx, "primary", tt.delta, tt.max)
			assert.Equal(t, tt.expectedErr, err)
		})
	}

	t.Run("missing summary", func(t *testing.T) {
		assert.Equal(t, ErrNotFound, st.AdjustCash(ctx, "ghost", 100, 1000))
	})
}

func TestMemoryStoreConditionalShares(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()
	_, err := st.PutWatchlistEntry(ctx, models.WatchlistEntry{AccountID: "primary", Symbol: "ACME", SharesManaged: 5})
	require.NoError(t, err)

	assert.Equal(t, ErrNotFound, st.AdjustShares(ctx, "primary", "GHOST", 1, 100))
	assert.Equal(t, ErrConditionFailed, st.AdjustShares(ctx, "primary", "ACME", -6, 100))
	assert.Equal(t, ErrConditionFailed, st.AdjustShares(ctx, "primary", "ACME", 96, 100))
	assert.NoError(t, st.AdjustShares(ctx, "primary", "ACME", 95, 100))

	e, err := st.GetWatchlistEntry(ctx, "primary", "ACME")
	require.NoError(t, err)
	assert.Equal(t, int64(100), e.SharesManaged)
}

func TestMemoryStorePutWatchlistEntryFirstWriteWins(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()

	created, err := st.PutWatchlistEntry(ctx, models.WatchlistEntry{AccountID: "primary", Symbol: "ACME", SharesManaged: 5})
	require.NoError(t, err)
	assert.True(t, created)

	created, err = st.PutWatchlistEntry(ctx, models.WatchlistEntry{AccountID: "primary", Symbol: "ACME", SharesManaged: 99})
	require.NoError(t, err)
	assert.False(t, created)

	e, err := st.GetWatchlistEntry(ctx, "primary", "ACME")
	require.NoError(t, err)
	assert.Equal(t, int64(5), e.SharesManaged)
}

func TestMemoryStoreAppliedMarks(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()

	applied, err := st.IsApplied(ctx, "key-1")
	require.NoError(t, err)
	assert.False(t, applied)

	require.NoError(t, st.MarkApplied(ctx, "key-1", models.KindAddStock))

	applied, err = st.IsApplied(ctx, "key-1")
	require.NoError(t, err)
	assert.True(t, applied)

	//marking twice is fine
	assert.NoError(t, st.MarkApplied(ctx, "key-1", models.KindAddStock))
}

func TestMemoryStoreAttemptsMonotonic(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		got, err := st.IncAttempts(ctx, "key-1")
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestMemoryStoreNetworthSeries(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		ts := base.Add(time.Duration(i) * 15 * time.Minute)
		require.NoError(t, st.PutNetworthSample(ctx, models.NetworthSample{
			AccountID:     "primary",
			Timestamp:     ts,
			NetWorthCents: int64(1000 * (i + 1)),
		}))
	}

	t.Run("range query is inclusive and ordered", func(t *testing.T) {
		samples, err := st.NetworthSeries(ctx, "primary", base.Add(15*time.Minute), base.Add(45*time.Minute))
		require.NoError(t, err)
		require.Len(t, samples, 3)
		for i := 1; i < len(samples); i++ {
			assert.True(t, samples[i-1].Timestamp.Before(samples[i].Timestamp))
		}
	})

	t.Run("duplicate timestamp does not overwrite", func(t *testing.T) {
		require.NoError(t, st.PutNetworthSample(ctx, models.NetworthSample{
			AccountID:     "primary",
			Timestamp:     base,
			NetWorthCents: 999999,
		}))
		samples, err := st.NetworthSeries(ctx, "primary", base, base)
		require.NoError(t, err)
		require.Len(t, samples, 1)
		assert.Equal(t, int64(1000), samples[0].NetWorthCents)
	})

	t.Run("other accounts are invisible", func(t *testing.T) {
		samples, err := st.NetworthSeries(ctx, "other", base, base.Add(time.Hour))
		require.NoError(t, err)
		assert.Empty(t, samples)
	})
}

func TestMemoryStoreMarkNewsSeen(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()

	seen := models.NewsSeen{
		PK:       models.AccountPK("primary"),
		SK:       models.NewsHashSK("ACME", "abcd1234"),
		Symbol:   "ACME",
		Headline: "ACME beats estimates",
	}
	fresh, err := st.MarkNewsSeen(ctx, seen)
	require.NoError(t, err)
	assert.True(t, fresh)

	fresh, err = st.MarkNewsSeen(ctx, seen)
	require.NoError(t, err)
	assert.False(t, fresh)
}

func TestMemoryStoreListAccounts(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, st.EnsureSummary(ctx, "b"))
	require.NoError(t, st.EnsureSummary(ctx, "a"))
	require.NoError(t, st.EnsureSummary(ctx, "a"))

	accounts, err := st.ListAccounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, accounts)
}
