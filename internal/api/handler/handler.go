package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"trading-watchlist-backend/internal/api/constant"
	"trading-watchlist-backend/internal/api/dto"
	"trading-watchlist-backend/internal/api/usecase"
)

type HandlerItf interface {
	SubmitOperation(*gin.Context)
	GetNetworth(*gin.Context)
	PlotNetworth(*gin.Context)
	GetWatchlist(*gin.Context)
}

type Handler struct {
	uc             usecase.UsecaseItf
	defaultAccount string
}

func NewHandler(uc usecase.UsecaseItf, defaultAccount string) *Handler {
	return &Handler{uc: uc, defaultAccount: defaultAccount}
}

func (hd *Handler) SubmitOperation(ctx *gin.Context) {
	var req dto.SubmitOperationReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.Error(err)
		return
	}

	op, err := hd.uc.SubmitOperation(ctx.Request.Context(), req)
	if err != nil {
		ctx.Error(err)
		return
	}

	ctx.JSON(http.StatusAccepted, dto.Res{
		Success: true,
		Data: dto.SubmitOperationRes{
			OperationID: op.OperationID,
			Kind:        string(op.Kind),
			AccountID:   op.AccountID,
			DedupKey:    op.DedupKey,
			EnqueuedAt:  op.EnqueuedAt,
		},
	})
}

func (hd *Handler) GetNetworth(ctx *gin.Context) {
	accountID, from, to, err := hd.rangeParams(ctx)
	if err != nil {
		ctx.Error(err)
		return
	}

	samples, err := hd.uc.NetworthSeries(ctx.Request.Context(), accountID, from, to)
	if err != nil {
		ctx.Error(err)
		return
	}

	res := dto.NetworthSeriesRes{
		AccountID: accountID,
		Points:    make([]dto.NetworthPoint, len(samples)),
	}
	for i, s := range samples {
		res.Points[i] = dto.NetworthPoint{
			Timestamp:           s.Timestamp,
			NetWorthCents:       s.NetWorthCents,
			CashCents:           s.CashCents,
			PositionsValueCents: s.PositionsValueCents,
		}
	}
	ctx.JSON(http.StatusOK, dto.Res{Success: true, Data: res})
}

func (hd *Handler) PlotNetworth(ctx *gin.Context) {
	accountID, from, to, err := hd.rangeParams(ctx)
	if err != nil {
		ctx.Error(err)
		return
	}

	key, samples, err := hd.uc.PlotNetworth(ctx.Request.Context(), accountID, from, to)
	if err != nil {
		ctx.Error(err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.Res{
		Success: true,
		Data:    dto.PlotNetworthRes{BlobKey: key, Samples: samples},
	})
}

func (hd *Handler) GetWatchlist(ctx *gin.Context) {
	accountID := ctx.DefaultQuery("account_id", hd.defaultAccount)
	includeDeleted := ctx.Query("include_deleted") == "true"

	entries, err := hd.uc.Watchlist(ctx.Request.Context(), accountID, includeDeleted)
	if err != nil {
		ctx.Error(err)
		return
	}

	res := dto.GetWatchlistRes{
		AccountID: accountID,
		Entries:   make([]dto.WatchlistEntryRes, len(entries)),
	}
	for i, e := range entries {
		res.Entries[i] = dto.WatchlistEntryRes{
			Symbol:           e.Symbol,
			SharesManaged:    e.SharesManaged,
			CurrentScore:     e.CurrentScore,
			ThresholdAbs:     e.ThresholdAbs,
			LastFetchedPrice: e.LastFetchedPrice,
			IsDeleted:        e.IsDeleted,
		}
	}
	ctx.JSON(http.StatusOK, dto.Res{Success: true, Data: res})
}

// rangeParams parses account_id, from and to. The range defaults to the
// trailing 24 hours.
func (hd *Handler) rangeParams(ctx *gin.Context) (string, time.Time, time.Time, error) {
	accountID := ctx.DefaultQuery("account_id", hd.defaultAccount)

	now := time.Now().UTC()
	from := now.Add(-24 * time.Hour)
	to := now

	if v := ctx.Query("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return "", time.Time{}, time.Time{}, constant.ErrBadTimeRange
		}
		from = t
	}
	if v := ctx.Query("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return "", time.Time{}, time.Time{}, constant.ErrBadTimeRange
		}
		to = t
	}
	if to.Before(from) {
		return "", time.Time{}, time.Time{}, constant.ErrBadTimeRange
	}
	return accountID, from, to, nil
}
