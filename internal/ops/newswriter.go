package ops

import (
	"context"
	"time"

	"github.com/google/uuid"

	"trading-watchlist-backend/internal/models"
	"trading-watchlist-backend/internal/store"
)

// NewsWriterHandler consumes NEW_NEWS: the raw article already sits in
// the blob store under the op's blob key, so this handler only records
// the structured metadata pointing at it and emits NEWS_STORED for the
// sentiment scorer.
type NewsWriterHandler struct {
	store   store.StoreItf
	emitter Emitter
}

func NewNewsWriterHandler(st store.StoreItf, emitter Emitter) *NewsWriterHandler {
	return &NewsWriterHandler{store: st, emitter: emitter}
}

func (h *NewsWriterHandler) Kinds() []models.OperationKind {
	return []models.OperationKind{models.KindNewNews}
}

func (h *NewsWriterHandler) Handle(ctx context.Context, op models.Operation) error {
	symbol := normalizeSymbol(op.Payload.Symbol)
	if symbol == "" {
		return NewValidationError("symbol is required", nil)
	}
	if op.Payload.BlobKey == "" {
		return NewValidationError("blob key is required", nil)
	}

	now := time.Now().UTC()
	publishedAt := op.Payload.PublishedAt
	if publishedAt == "" {
		publishedAt = now.Format(time.RFC3339)
	}

	item := models.NewsItem{
		SK:          models.NewsSK(symbol, now, uuid.NewString()),
		AccountID:   op.AccountID,
		Symbol:      symbol,
		Headline:    op.Payload.Headline,
		Source:      op.Payload.Source,
		PublishedAt: publishedAt,
		BlobKey:     op.Payload.BlobKey,
		IngestedAt:  now,
	}
	if err := h.store.PutNewsItem(ctx, item); err != nil {
		return NewTransientError("put news item", err)
	}

	derived := models.Operation{
		OperationID: uuid.NewString(),
		Kind:        models.KindNewsStored,
		AccountID:   op.AccountID,
		Origin:      models.OriginSystem,
		EnqueuedAt:  now,
		Payload: models.OperationPayload{
			Symbol:  symbol,
			BlobKey: op.Payload.BlobKey,
		},
	}
	derived.DedupKey = DeriveDedupKey(derived.Kind, derived.AccountID, derived.Payload, now)
	if err := h.emitter.Emit(ctx, derived); err != nil {
		return NewTransientError("emit news stored", err)
	}
	return nil
}
