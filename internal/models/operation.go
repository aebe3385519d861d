package models

import "time"

// OperationKind enumerates every message type that can travel through
// the operation queues.
type OperationKind string

const (
	KindAddStock            OperationKind = "ADD_STOCK"
	KindAdjustManagedCash   OperationKind = "ADJUST_MANAGED_CASH"
	KindAdjustManagedShares OperationKind = "ADJUST_MANAGED_SHARES"
	KindSetThreshold        OperationKind = "SET_THRESHOLD"
	KindMarkStockDeleted    OperationKind = "MARK_STOCK_DELETED"
	KindNewNews             OperationKind = "NEW_NEWS"
	KindNewsStored          OperationKind = "NEWS_STORED"
	KindAutoTradeDecision   OperationKind = "AUTO_TRADE_DECISION"
	KindNetworthSnapshot    OperationKind = "NETWORTH_SNAPSHOT"
)

// Origin tells which queue an operation belongs on.
type Origin string

const (
	OriginExternal Origin = "external"
	OriginSystem   Origin = "system"
)

// Valid reports whether k is a known operation kind.
func (k OperationKind) Valid() bool {
	switch k {
	case KindAddStock, KindAdjustManagedCash, KindAdjustManagedShares,
		KindSetThreshold, KindMarkStockDeleted, KindNewNews,
		KindNewsStored, KindAutoTradeDecision, KindNetworthSnapshot:
		return true
	default:
		return false
	}
}

// Submittable reports whether k may arrive through the ingress API.
// NEWS_STORED is the one kind only a handler can produce; every other
// kind is accepted and routed to its origin queue.
func (k OperationKind) Submittable() bool {
	return k.Valid() && k != KindNewsStored
}

// OriginOf returns the queue origin for a kind. User-initiated kinds go
// to the external queue, everything else to the system queue.
func (k OperationKind) OriginOf() Origin {
	switch k {
	case KindAddStock, KindAdjustManagedCash, KindAdjustManagedShares,
		KindSetThreshold, KindMarkStockDeleted:
		return OriginExternal
	default:
		return OriginSystem
	}
}

// Operation is the envelope flowing through the queues. Operations are
// ephemeral; only their effects are durable.
type Operation struct {
	OperationID string          `json:"operation_id"`
	Kind        OperationKind   `json:"kind"`
	AccountID   string          `json:"account_id"`
	Origin      Origin          `json:"origin"`
	DedupKey    string          `json:"dedup_key"`
	EnqueuedAt  time.Time       `json:"enqueued_at"`
	Payload     OperationPayload `json:"payload"`
}

// OperationPayload is the union of every kind's fields. Handlers read
// only the fields their kind defines.
type OperationPayload struct {
	Symbol string `json:"symbol,omitempty"`

	// ADD_STOCK
	InitialShares int64 `json:"initial_shares_managed,omitempty"`

	// ADJUST_MANAGED_CASH
	DeltaCashCents      int64 `json:"delta_cash_cents,omitempty"`
	MaxAllowedCashCents int64 `json:"max_allowed_cash_cents,omitempty"`

	// ADJUST_MANAGED_SHARES
	DeltaShares      int64 `json:"delta_shares,omitempty"`
	MaxSharesAllowed int64 `json:"max_shares_allowed,omitempty"`

	// SET_THRESHOLD
	ThresholdAbs int64 `json:"threshold_abs,omitempty"`

	// NEW_NEWS carries article metadata; the body lives in the blob.
	Headline    string `json:"headline,omitempty"`
	Source      string `json:"source,omitempty"`
	PublishedAt string `json:"published_at,omitempty"`

	// NEW_NEWS and NEWS_STORED
	BlobKey string `json:"blob_key,omitempty"`

	// AUTO_TRADE_DECISION
	Action TradeAction `json:"action,omitempty"`
	Score  int64       `json:"score,omitempty"`
	Reason string      `json:"reason,omitempty"`

	// NETWORTH_SNAPSHOT carries its own logical clock so reordering on
	// the transport cannot reorder the series.
	SnapshotAt time.Time `json:"snapshot_at,omitempty"`
}

// TradeAction is the direction of an auto-trade decision.
type TradeAction string

const (
	ActionBuy  TradeAction = "BUY"
	ActionSell TradeAction = "SELL"
)
