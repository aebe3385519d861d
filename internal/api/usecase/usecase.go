package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"trading-watchlist-backend/internal/api/constant"
	"trading-watchlist-backend/internal/api/dto"
	"trading-watchlist-backend/internal/blob"
	"trading-watchlist-backend/internal/cache"
	"trading-watchlist-backend/internal/models"
	"trading-watchlist-backend/internal/ops"
	"trading-watchlist-backend/internal/plot"
	"trading-watchlist-backend/internal/store"
)

type UsecaseItf interface {
	SubmitOperation(ctx context.Context, req dto.SubmitOperationReq) (*models.Operation, error)
	NetworthSeries(ctx context.Context, accountID string, from, to time.Time) ([]models.NetworthSample, error)
	PlotNetworth(ctx context.Context, accountID string, from, to time.Time) (string, int, error)
	Watchlist(ctx context.Context, accountID string, includeDeleted bool) ([]models.WatchlistEntry, error)
}

type Usecase struct {
	store          store.StoreItf
	blobs          blob.StoreItf
	emitter        ops.Emitter
	cache          *cache.Cache
	defaultAccount string
}

func NewUsecase(st store.StoreItf, blobs blob.StoreItf, emitter ops.Emitter, c *cache.Cache, defaultAccount string) *Usecase {
	return &Usecase{store: st, blobs: blobs, emitter: emitter, cache: c, defaultAccount: defaultAccount}
}

// SubmitOperation validates a client request, stamps it with identity
// and a dedup key, and publishes it to its origin queue. The store is
// not touched here; all effects happen in the worker. A caller-supplied
// dedup key is preserved so retried submissions collapse on the
// caller's terms.
func (uc *Usecase) SubmitOperation(ctx context.Context, req dto.SubmitOperationReq) (*models.Operation, error) {
	kind := models.OperationKind(strings.ToUpper(strings.TrimSpace(req.Kind)))
	if !kind.Valid() {
		return nil, constant.ErrUnknownKind
	}
	if !kind.Submittable() {
		return nil, constant.ErrNotSubmittable
	}

	accountID := req.AccountID
	if accountID == "" {
		accountID = uc.defaultAccount
	}
	payload := req.Payload
	payload.Symbol = strings.ToUpper(strings.TrimSpace(payload.Symbol))

	now := time.Now().UTC()
	op := models.Operation{
		OperationID: uuid.NewString(),
		Kind:        kind,
		AccountID:   accountID,
		Origin:      kind.OriginOf(),
		EnqueuedAt:  now,
		Payload:     payload,
	}
	op.DedupKey = req.DedupKey
	if op.DedupKey == "" {
		op.DedupKey = ops.DeriveDedupKey(op.Kind, op.AccountID, op.Payload, now)
	}

	if err := uc.emitter.Emit(ctx, op); err != nil {
		return nil, err
	}
	return &op, nil
}

func (uc *Usecase) NetworthSeries(ctx context.Context, accountID string, from, to time.Time) ([]models.NetworthSample, error) {
	key := seriesCacheKey(accountID, from, to)
	if uc.cache != nil {
		if v, ok := uc.cache.Get(key); ok {
			if samples, ok := v.([]models.NetworthSample); ok {
				return samples, nil
			}
		}
	}

	samples, err := uc.store.NetworthSeries(ctx, accountID, from, to)
	if err != nil {
		return nil, err
	}
	if uc.cache != nil {
		uc.cache.Set(key, samples)
	}
	return samples, nil
}

// PlotNetworth renders the series to PNG, stores it, and returns the
// blob key plus the number of samples plotted.
func (uc *Usecase) PlotNetworth(ctx context.Context, accountID string, from, to time.Time) (string, int, error) {
	samples, err := uc.NetworthSeries(ctx, accountID, from, to)
	if err != nil {
		return "", 0, err
	}

	png, err := plot.RenderNetworth(accountID, samples)
	if errors.Is(err, plot.ErrEmptySeries) {
		return "", 0, constant.ErrNoSamples
	}
	if err != nil {
		return "", 0, err
	}

	key := blob.PlotKey(accountID)
	if err := uc.blobs.Put(ctx, key, png, "image/png"); err != nil {
		return "", 0, err
	}
	return key, len(samples), nil
}

func (uc *Usecase) Watchlist(ctx context.Context, accountID string, includeDeleted bool) ([]models.WatchlistEntry, error) {
	return uc.store.ListWatchlist(ctx, accountID, includeDeleted)
}

func seriesCacheKey(accountID string, from, to time.Time) string {
	return fmt.Sprintf("networth|%s|%d|%d", accountID, from.Unix(), to.Unix())
}
