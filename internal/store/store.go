package store

import (
	"context"
	"errors"
	"time"

	"trading-watchlist-backend/internal/models"
)

var (
	// ErrConditionFailed means the record exists but the conditional
	// update was rejected (e.g. a delta would drive shares negative or
	// past the allowed cap).
	ErrConditionFailed = errors.New("store: conditional update failed")

	// ErrNotFound means the addressed record does not exist.
	ErrNotFound = errors.New("store: record not found")
)

// StoreItf is the shared single-table store. Every mutation is a
// single-record conditional operation; there is no cross-record
// transaction and no in-process shared state behind it.
type StoreItf interface {
	// Account summary.
	EnsureSummary(ctx context.Context, accountID string) error
	GetSummary(ctx context.Context, accountID string) (*models.AccountSummary, error)
	AdjustCash(ctx context.Context, accountID string, deltaCents, maxAllowedCents int64) error
	ListAccounts(ctx context.Context) ([]string, error)

	// Watchlist.
	PutWatchlistEntry(ctx context.Context, e models.WatchlistEntry) (created bool, err error)
	GetWatchlistEntry(ctx context.Context, accountID, symbol string) (*models.WatchlistEntry, error)
	ListWatchlist(ctx context.Context, accountID string, includeDeleted bool) ([]models.WatchlistEntry, error)
	AdjustShares(ctx context.Context, accountID, symbol string, delta, maxAllowed int64) error
	SetThreshold(ctx context.Context, accountID, symbol string, thresholdAbs int64) error
	ApplyScoreDelta(ctx context.Context, accountID, symbol string, delta int64) (oldScore, newScore, thresholdAbs int64, err error)
	MarkStockDeleted(ctx context.Context, accountID, symbol string, cleanedNews int64) error
	SetLastFetchedPrice(ctx context.Context, accountID, symbol string, price float64) error

	// Append-only records.
	PutNewsItem(ctx context.Context, item models.NewsItem) error
	PutScoreChange(ctx context.Context, sc models.ScoreChange) error
	PutTradeRecord(ctx context.Context, tr models.TradeRecord) error
	PutNetworthSample(ctx context.Context, s models.NetworthSample) error
	NetworthSeries(ctx context.Context, accountID string, from, to time.Time) ([]models.NetworthSample, error)

	// Idempotency marks.
	IsApplied(ctx context.Context, dedupKey string) (bool, error)
	MarkApplied(ctx context.Context, dedupKey string, kind models.OperationKind) error
	IncAttempts(ctx context.Context, dedupKey string) (int64, error)

	// News fetch dedup. Returns false if the hash was already seen.
	MarkNewsSeen(ctx context.Context, seen models.NewsSeen) (bool, error)
}
