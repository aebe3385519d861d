package ops

import (
	"context"
	"errors"
	"strings"
	"time"

	"trading-watchlist-backend/internal/models"
	"trading-watchlist-backend/internal/store"
)

// StockInfoHandler applies the external bookkeeping operations: watchlist
// creation, cash/share deltas and per-stock threshold updates.
type StockInfoHandler struct {
	store            store.StoreItf
	defaultThreshold int64
}

func NewStockInfoHandler(st store.StoreItf, defaultThreshold int64) *StockInfoHandler {
	return &StockInfoHandler{store: st, defaultThreshold: defaultThreshold}
}

func (h *StockInfoHandler) Kinds() []models.OperationKind {
	return []models.OperationKind{
		models.KindAddStock,
		models.KindAdjustManagedCash,
		models.KindAdjustManagedShares,
		models.KindSetThreshold,
	}
}

func (h *StockInfoHandler) Handle(ctx context.Context, op models.Operation) error {
	switch op.Kind {
	case models.KindAddStock:
		return h.addStock(ctx, op)
	case models.KindAdjustManagedCash:
		return h.adjustCash(ctx, op)
	case models.KindAdjustManagedShares:
		return h.adjustShares(ctx, op)
	case models.KindSetThreshold:
		return h.setThreshold(ctx, op)
	default:
		return NewValidationError("kind not handled by stock info writer", nil)
	}
}

func (h *StockInfoHandler) addStock(ctx context.Context, op models.Operation) error {
	symbol := normalizeSymbol(op.Payload.Symbol)
	if symbol == "" {
		return NewValidationError("symbol is required", nil)
	}
	if op.Payload.InitialShares < 0 {
		return NewConstraintError("initial shares must not be negative", nil)
	}

	if err := h.store.EnsureSummary(ctx, op.AccountID); err != nil {
		return NewTransientError("ensure summary", err)
	}

	now := time.Now().UTC()
	created, err := h.store.PutWatchlistEntry(ctx, models.WatchlistEntry{
		AccountID:     op.AccountID,
		Symbol:        symbol,
		SharesManaged: op.Payload.InitialShares,
		ThresholdAbs:  h.defaultThreshold,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	if err != nil {
		return NewTransientError("put watchlist entry", err)
	}
	_ = created // existing entry means an earlier ADD_STOCK won; idempotent on symbol
	return nil
}

func (h *StockInfoHandler) adjustCash(ctx context.Context, op models.Operation) error {
	if op.Payload.MaxAllowedCashCents <= 0 {
		return NewValidationError("max_allowed_cash_cents is required", nil)
	}
	if err := h.store.EnsureSummary(ctx, op.AccountID); err != nil {
		return NewTransientError("ensure summary", err)
	}
	err := h.store.AdjustCash(ctx, op.AccountID, op.Payload.DeltaCashCents, op.Payload.MaxAllowedCashCents)
	if errors.Is(err, store.ErrConditionFailed) || errors.Is(err, store.ErrNotFound) {
		return NewConstraintError("cash adjustment rejected", err)
	}
	if err != nil {
		return NewTransientError("adjust cash", err)
	}
	return nil
}

func (h *StockInfoHandler) adjustShares(ctx context.Context, op models.Operation) error {
	symbol := normalizeSymbol(op.Payload.Symbol)
	if symbol == "" {
		return NewValidationError("symbol is required", nil)
	}
	if op.Payload.MaxSharesAllowed <= 0 {
		return NewValidationError("max_shares_allowed is required", nil)
	}
	err := h.store.AdjustShares(ctx, op.AccountID, symbol, op.Payload.DeltaShares, op.Payload.MaxSharesAllowed)
	if errors.Is(err, store.ErrConditionFailed) {
		return NewConstraintError("share adjustment would breach bounds", err)
	}
	if errors.Is(err, store.ErrNotFound) {
		return NewConstraintError("symbol not on watchlist", err)
	}
	if err != nil {
		return NewTransientError("adjust shares", err)
	}
	return nil
}

func (h *StockInfoHandler) setThreshold(ctx context.Context, op models.Operation) error {
	symbol := normalizeSymbol(op.Payload.Symbol)
	if symbol == "" {
		return NewValidationError("symbol is required", nil)
	}
	if op.Payload.ThresholdAbs <= 0 {
		return NewValidationError("threshold_abs must be positive", nil)
	}
	err := h.store.SetThreshold(ctx, op.AccountID, symbol, op.Payload.ThresholdAbs)
	if errors.Is(err, store.ErrNotFound) {
		return NewConstraintError("symbol not on watchlist", err)
	}
	if err != nil {
		return NewTransientError("set threshold", err)
	}
	return nil
}

func normalizeSymbol(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
