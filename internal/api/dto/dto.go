package dto

import (
	"time"

	"trading-watchlist-backend/internal/models"
)

// Res is the envelope every endpoint answers with.
type Res struct {
	Success bool `json:"success"`
	Error   any  `json:"error"`
	Data    any  `json:"data"`
}

type ErrorType struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// SubmitOperation

type SubmitOperationReq struct {
	Kind      string                  `json:"kind" binding:"required"`
	AccountID string                  `json:"account_id"`
	DedupKey  string                  `json:"dedup_key"`
	Payload   models.OperationPayload `json:"payload"`
}

type SubmitOperationRes struct {
	OperationID string    `json:"operation_id"`
	Kind        string    `json:"kind"`
	AccountID   string    `json:"account_id"`
	DedupKey    string    `json:"dedup_key"`
	EnqueuedAt  time.Time `json:"enqueued_at"`
}

// GetNetworth

type NetworthPoint struct {
	Timestamp           time.Time `json:"timestamp"`
	NetWorthCents       int64     `json:"net_worth_cents"`
	CashCents           int64     `json:"cash_cents"`
	PositionsValueCents int64     `json:"positions_value_cents"`
}

type NetworthSeriesRes struct {
	AccountID string          `json:"account_id"`
	Points    []NetworthPoint `json:"points"`
}

// PlotNetworth

type PlotNetworthRes struct {
	BlobKey string `json:"blob_key"`
	Samples int    `json:"samples"`
}

// GetWatchlist

type WatchlistEntryRes struct {
	Symbol           string  `json:"symbol"`
	SharesManaged    int64   `json:"shares_managed"`
	CurrentScore     int64   `json:"current_level_score"`
	ThresholdAbs     int64   `json:"threshold_abs"`
	LastFetchedPrice float64 `json:"last_fetched_price"`
	IsDeleted        bool    `json:"is_deleted"`
}

type GetWatchlistRes struct {
	AccountID string              `json:"account_id"`
	Entries   []WatchlistEntryRes `json:"entries"`
}
