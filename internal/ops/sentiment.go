package ops

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"trading-watchlist-backend/internal/blob"
	"trading-watchlist-backend/internal/models"
	"trading-watchlist-backend/internal/sentiment"
	"trading-watchlist-backend/internal/store"
)

// SentimentScorerHandler consumes NEWS_STORED: scores the stored article,
// folds the delta into the symbol's cumulative score, and emits exactly
// one AUTO_TRADE_DECISION when the score crosses the threshold.
type SentimentScorerHandler struct {
	store   store.StoreItf
	blobs   blob.StoreItf
	emitter Emitter
}

func NewSentimentScorerHandler(st store.StoreItf, blobs blob.StoreItf, emitter Emitter) *SentimentScorerHandler {
	return &SentimentScorerHandler{store: st, blobs: blobs, emitter: emitter}
}

func (h *SentimentScorerHandler) Kinds() []models.OperationKind {
	return []models.OperationKind{models.KindNewsStored}
}

func (h *SentimentScorerHandler) Handle(ctx context.Context, op models.Operation) error {
	symbol := normalizeSymbol(op.Payload.Symbol)
	if symbol == "" {
		return NewValidationError("symbol is required", nil)
	}
	if op.Payload.BlobKey == "" {
		return NewValidationError("blob_key is required", nil)
	}

	entry, err := h.store.GetWatchlistEntry(ctx, op.AccountID, symbol)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Symbol dropped between storing and scoring; nothing to do.
			return nil
		}
		return NewTransientError("get watchlist entry", err)
	}
	if entry.IsDeleted {
		return nil
	}

	raw, err := h.blobs.Get(ctx, op.Payload.BlobKey)
	if err != nil {
		if errors.Is(err, blob.ErrNotFound) {
			return NewValidationError("article blob missing", err)
		}
		return NewTransientError("blob get", err)
	}
	var article models.NewsArticle
	if err := json.Unmarshal(raw, &article); err != nil {
		return NewValidationError("unmarshal article", err)
	}

	delta := sentiment.Score(article.Headline + " " + article.Body)
	if delta == 0 {
		return nil
	}

	oldScore, newScore, threshold, err := h.store.ApplyScoreDelta(ctx, op.AccountID, symbol, delta)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) || errors.Is(err, store.ErrConditionFailed) {
			return nil
		}
		return NewTransientError("apply score delta", err)
	}

	now := time.Now().UTC()
	sc := models.ScoreChange{
		PK:           models.AccountPK(op.AccountID),
		SK:           models.ScoreSK(symbol, now),
		AccountID:    op.AccountID,
		Symbol:       symbol,
		OldScore:     oldScore,
		DeltaScore:   delta,
		NewScore:     newScore,
		ThresholdAbs: threshold,
		Reason:       article.Headline,
		CreatedAt:    now,
	}
	if err := h.store.PutScoreChange(ctx, sc); err != nil {
		return NewTransientError("put score change", err)
	}

	action, crossed := thresholdCrossing(oldScore, newScore, threshold)
	if !crossed {
		return nil
	}
	decision := models.Operation{
		OperationID: uuid.NewString(),
		Kind:        models.KindAutoTradeDecision,
		AccountID:   op.AccountID,
		Origin:      models.OriginSystem,
		EnqueuedAt:  now,
		Payload: models.OperationPayload{
			Symbol: symbol,
			Action: action,
			Score:  newScore,
			Reason: "SCORE_THRESHOLD",
		},
	}
	decision.DedupKey = DeriveDedupKey(decision.Kind, decision.AccountID, decision.Payload, now)
	if err := h.emitter.Emit(ctx, decision); err != nil {
		return NewTransientError("emit trade decision", err)
	}
	return nil
}

// thresholdCrossing reports whether the score moved from inside the
// threshold band to outside it. Staying outside does not re-trigger, so
// one crossing yields one decision.
func thresholdCrossing(oldScore, newScore, threshold int64) (models.TradeAction, bool) {
	if threshold <= 0 {
		return "", false
	}
	wasOutside := oldScore >= threshold || oldScore <= -threshold
	switch {
	case !wasOutside && newScore >= threshold:
		return models.ActionBuy, true
	case !wasOutside && newScore <= -threshold:
		return models.ActionSell, true
	default:
		return "", false
	}
}
