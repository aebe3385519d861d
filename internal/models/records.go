package models

import (
	"fmt"
	"time"
)

// Single-table key design: every durable record carries a partition key
// (account) and a sort key encoding the record type.

func AccountPK(accountID string) string { return "ACCOUNT#" + accountID }

func SummarySK() string                  { return "SUMMARY" }
func StockSK(symbol string) string       { return "STOCK#" + symbol }
func NetworthSK(ts time.Time) string     { return "NETWORTH#" + ts.UTC().Format(time.RFC3339) }
func ScoreSK(symbol string, ts time.Time) string {
	return fmt.Sprintf("SCORE#%s#%s", symbol, ts.UTC().Format(time.RFC3339Nano))
}
func TradeSK(ts time.Time, symbol string) string {
	return fmt.Sprintf("TRADE#%s#%s", ts.UTC().Format(time.RFC3339Nano), symbol)
}
func NewsSK(symbol string, ts time.Time, id string) string {
	return fmt.Sprintf("NEWS#%s#%s#%s", symbol, ts.UTC().Format(time.RFC3339), id)
}
func NewsHashSK(symbol, hash string) string {
	return fmt.Sprintf("NEWSHASH#%s#%s", symbol, hash)
}

// AccountSummary is the one-per-account bookkeeping record. It is never
// physically deleted. Money fields are integer cents so conditional
// arithmetic stays exact.
type AccountSummary struct {
	PK                  string    `bson:"pk" json:"-"`
	SK                  string    `bson:"sk" json:"-"`
	AccountID           string    `bson:"account_id" json:"account_id"`
	CashManagedCents    int64     `bson:"cash_managed_cents" json:"cash_managed_cents"`
	PositionsValueCents int64     `bson:"positions_value_cents" json:"positions_value_cents"`
	CreatedAt           time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt           time.Time `bson:"updated_at" json:"updated_at"`
}

// WatchlistEntry is one (account, symbol) pair. Soft-deleted entries
// keep their history; IsDeleted only excludes them from future
// valuation and news fetching.
type WatchlistEntry struct {
	PK               string    `bson:"pk" json:"-"`
	SK               string    `bson:"sk" json:"-"`
	AccountID        string    `bson:"account_id" json:"account_id"`
	Symbol           string    `bson:"symbol" json:"symbol"`
	SharesManaged    int64     `bson:"shares_managed" json:"shares_managed"`
	CurrentScore     int64     `bson:"current_level_score" json:"current_level_score"`
	ThresholdAbs     int64     `bson:"threshold_abs" json:"threshold_abs"`
	LastFetchedPrice float64   `bson:"last_fetched_price,omitempty" json:"last_fetched_price,omitempty"`
	IsDeleted        bool      `bson:"is_deleted" json:"is_deleted"`
	DeletedNewsCount int64     `bson:"deleted_news_count,omitempty" json:"deleted_news_count,omitempty"`
	CreatedAt        time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt        time.Time `bson:"updated_at" json:"updated_at"`
}

// NetworthSample is one point of the append-only net-worth series. The
// timestamp is the payload's logical clock, not the processing time.
type NetworthSample struct {
	PK                  string    `bson:"pk" json:"-"`
	SK                  string    `bson:"sk" json:"-"`
	AccountID           string    `bson:"account_id" json:"account_id"`
	Timestamp           time.Time `bson:"timestamp" json:"timestamp"`
	NetWorthCents       int64     `bson:"net_worth_cents" json:"net_worth_cents"`
	CashCents           int64     `bson:"cash_cents" json:"cash_cents"`
	PositionsValueCents int64     `bson:"positions_value_cents" json:"positions_value_cents"`
	CreatedAt           time.Time `bson:"created_at" json:"created_at"`
}

// TradeRecord is one append-only entry of the trade history.
type TradeRecord struct {
	PK           string      `bson:"pk" json:"-"`
	SK           string      `bson:"sk" json:"-"`
	AccountID    string      `bson:"account_id" json:"account_id"`
	Symbol       string      `bson:"symbol" json:"symbol"`
	Action       TradeAction `bson:"action" json:"action"`
	Score        int64       `bson:"score" json:"score"`
	ThresholdAbs int64       `bson:"threshold_abs" json:"threshold_abs"`
	Reason       string      `bson:"reason" json:"reason"`
	DecidedAt    time.Time   `bson:"decided_at" json:"decided_at"`
}

// ScoreChange records one sentiment delta applied to a watchlist entry.
type ScoreChange struct {
	PK           string    `bson:"pk" json:"-"`
	SK           string    `bson:"sk" json:"-"`
	AccountID    string    `bson:"account_id" json:"account_id"`
	Symbol       string    `bson:"symbol" json:"symbol"`
	OldScore     int64     `bson:"old_score" json:"old_score"`
	DeltaScore   int64     `bson:"delta_score" json:"delta_score"`
	NewScore     int64     `bson:"new_score" json:"new_score"`
	ThresholdAbs int64     `bson:"threshold_abs" json:"threshold_abs"`
	Reason       string    `bson:"reason" json:"reason"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
}

// NewsItem is the structured metadata for one stored article; the raw
// payload lives in the blob store under BlobKey.
type NewsItem struct {
	PK          string    `bson:"pk" json:"-"`
	SK          string    `bson:"sk" json:"-"`
	AccountID   string    `bson:"account_id" json:"account_id"`
	Symbol      string    `bson:"symbol" json:"symbol"`
	Headline    string    `bson:"headline" json:"headline"`
	Source      string    `bson:"source" json:"source"`
	PublishedAt string    `bson:"published_at" json:"published_at"`
	BlobKey     string    `bson:"blob_key" json:"blob_key"`
	IngestedAt  time.Time `bson:"ingested_at" json:"ingested_at"`
}

// NewsSeen marks a fetched article so repeated feed polls don't emit the
// same NEW_NEWS operation twice.
type NewsSeen struct {
	PK          string    `bson:"pk"`
	SK          string    `bson:"sk"`
	Symbol      string    `bson:"symbol"`
	Headline    string    `bson:"headline"`
	PublishedAt string    `bson:"published_at"`
	CreatedAt   time.Time `bson:"created_at"`
}

// AppliedOp is the short-lived idempotency mark for a dedup key.
// Retention must exceed the queue's maximum redelivery delay.
type AppliedOp struct {
	DedupKey  string    `bson:"dedup_key"`
	Kind      string    `bson:"kind"`
	AppliedAt time.Time `bson:"applied_at"`
	ExpiresAt time.Time `bson:"expires_at"`
	Attempts  int64     `bson:"attempts,omitempty"`
}

// NewsArticle is the raw payload written to the blob store.
type NewsArticle struct {
	Symbol      string    `json:"symbol"`
	Headline    string    `json:"headline"`
	Body        string    `json:"body"`
	Source      string    `json:"source"`
	PublishedAt string    `json:"published_at"`
	AccountID   string    `json:"account_id"`
	IngestedAt  time.Time `json:"ingested_at"`
}
