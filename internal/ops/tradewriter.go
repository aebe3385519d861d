package ops

import (
	"context"
	"time"

	"trading-watchlist-backend/internal/models"
	"trading-watchlist-backend/internal/store"
)

// TradeWriterHandler consumes AUTO_TRADE_DECISION and appends it to the
// trade history. Decisions are advisory records; no order is placed.
type TradeWriterHandler struct {
	store store.StoreItf
}

func NewTradeWriterHandler(st store.StoreItf) *TradeWriterHandler {
	return &TradeWriterHandler{store: st}
}

func (h *TradeWriterHandler) Kinds() []models.OperationKind {
	return []models.OperationKind{models.KindAutoTradeDecision}
}

func (h *TradeWriterHandler) Handle(ctx context.Context, op models.Operation) error {
	symbol := normalizeSymbol(op.Payload.Symbol)
	if symbol == "" {
		return NewValidationError("symbol is required", nil)
	}
	if op.Payload.Action != models.ActionBuy && op.Payload.Action != models.ActionSell {
		return NewValidationError("unknown trade action", nil)
	}

	decidedAt := op.EnqueuedAt
	if decidedAt.IsZero() {
		decidedAt = time.Now().UTC()
	}
	tr := models.TradeRecord{
		PK:        models.AccountPK(op.AccountID),
		SK:        models.TradeSK(decidedAt, symbol),
		AccountID: op.AccountID,
		Symbol:    symbol,
		Action:    op.Payload.Action,
		Score:     op.Payload.Score,
		Reason:    op.Payload.Reason,
		DecidedAt: decidedAt,
	}
	if err := h.store.PutTradeRecord(ctx, tr); err != nil {
		return NewTransientError("put trade record", err)
	}
	return nil
}
