package ops

import (
	"context"
	"errors"
	"math"
	"time"

	"trading-watchlist-backend/internal/models"
	"trading-watchlist-backend/internal/store"
)

// SnapshotHandler consumes NETWORTH_SNAPSHOT and appends one net-worth
// sample: managed cash plus the mark-to-market value of every
// non-deleted watchlist position.
type SnapshotHandler struct {
	store store.StoreItf
}

func NewSnapshotHandler(st store.StoreItf) *SnapshotHandler {
	return &SnapshotHandler{store: st}
}

func (h *SnapshotHandler) Kinds() []models.OperationKind {
	return []models.OperationKind{models.KindNetworthSnapshot}
}

func (h *SnapshotHandler) Handle(ctx context.Context, op models.Operation) error {
	ts := op.Payload.SnapshotAt
	if ts.IsZero() {
		return NewValidationError("snapshot_at is required", nil)
	}
	ts = ts.UTC()

	summary, err := h.store.GetSummary(ctx, op.AccountID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Account never initialized; a sample of nothing is no sample.
			return nil
		}
		return NewTransientError("get summary", err)
	}

	entries, err := h.store.ListWatchlist(ctx, op.AccountID, false)
	if err != nil {
		return NewTransientError("list watchlist", err)
	}
	var positionsCents int64
	for _, e := range entries {
		positionsCents += PositionValueCents(e.SharesManaged, e.LastFetchedPrice)
	}

	sample := models.NetworthSample{
		PK:                  models.AccountPK(op.AccountID),
		SK:                  models.NetworthSK(ts),
		AccountID:           op.AccountID,
		Timestamp:           ts,
		NetWorthCents:       summary.CashManagedCents + positionsCents,
		CashCents:           summary.CashManagedCents,
		PositionsValueCents: positionsCents,
		CreatedAt:           time.Now().UTC(),
	}
	if err := h.store.PutNetworthSample(ctx, sample); err != nil {
		return NewTransientError("put networth sample", err)
	}
	return nil
}

// PositionValueCents marks a position to the last fetched price,
// rounded to whole cents.
func PositionValueCents(shares int64, price float64) int64 {
	return int64(math.Round(float64(shares) * price * 100))
}
