package ops

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"trading-watchlist-backend/internal/blob"
	"trading-watchlist-backend/internal/models"
	"trading-watchlist-backend/internal/store"
)

// RetentionPolicy controls the news blob lifecycle for deleted stocks.
type RetentionPolicy struct {
	SoftAfter time.Duration
	HardAfter time.Duration
}

// SoftDeleteHandler flips the deletion flag on a watchlist entry and
// sweeps the symbol's news blobs: old ones are tagged as deleted, very
// old ones removed. Historical store records stay untouched.
type SoftDeleteHandler struct {
	store  store.StoreItf
	blobs  blob.StoreItf
	policy RetentionPolicy
	logger *zap.Logger
}

func NewSoftDeleteHandler(st store.StoreItf, blobs blob.StoreItf, policy RetentionPolicy, logger *zap.Logger) *SoftDeleteHandler {
	return &SoftDeleteHandler{store: st, blobs: blobs, policy: policy, logger: logger}
}

func (h *SoftDeleteHandler) Kinds() []models.OperationKind {
	return []models.OperationKind{models.KindMarkStockDeleted}
}

func (h *SoftDeleteHandler) Handle(ctx context.Context, op models.Operation) error {
	symbol := normalizeSymbol(op.Payload.Symbol)
	if symbol == "" {
		return NewValidationError("symbol is required", nil)
	}

	// Blob sweep happens before the store write so no store state is
	// held across blob I/O.
	cleaned, err := SweepNewsBlobs(ctx, h.blobs, symbol, h.policy, h.logger)
	if err != nil {
		return NewTransientError("news blob sweep", err)
	}

	err = h.store.MarkStockDeleted(ctx, op.AccountID, symbol, cleaned)
	if errors.Is(err, store.ErrNotFound) {
		return NewConstraintError("symbol not on watchlist", err)
	}
	if err != nil {
		return NewTransientError("mark deleted", err)
	}
	return nil
}

// SweepNewsBlobs applies the retention policy to one symbol's news
// blobs and returns how many were affected. Shared with the scheduled
// retention job.
func SweepNewsBlobs(ctx context.Context, blobs blob.StoreItf, symbol string, policy RetentionPolicy, logger *zap.Logger) (int64, error) {
	infos, err := blobs.List(ctx, blob.NewsPrefix(symbol))
	if err != nil {
		return 0, err
	}

	now := time.Now().UTC()
	var affected int64
	for _, info := range infos {
		day, ok := blob.NewsKeyDay(info.Key)
		age := now.Sub(day)
		switch {
		case ok && age >= policy.HardAfter:
			if err := blobs.Delete(ctx, info.Key); err != nil && !errors.Is(err, blob.ErrNotFound) {
				logger.Warn("news blob delete failed", zap.String("key", info.Key), zap.Error(err))
				continue
			}
			affected++
		case !ok || age >= policy.SoftAfter:
			if info.Deleted {
				continue
			}
			if err := blobs.Tag(ctx, info.Key); err != nil && !errors.Is(err, blob.ErrNotFound) {
				logger.Warn("news blob tag failed", zap.String("key", info.Key), zap.Error(err))
				continue
			}
			affected++
		}
	}
	return affected, nil
}
