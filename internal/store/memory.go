package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"trading-watchlist-backend/internal/models"
)

// MemoryStore is an in-process StoreItf with the same conditional-update
// semantics as the Mongo implementation. It backs the handler and
// property tests, and local runs without a Mongo deployment.
type MemoryStore struct {
	mu       sync.Mutex
	records  map[string]any // key: pk + "\x00" + sk
	applied  map[string]*models.AppliedOp
	appliedTTL time.Duration
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records:    make(map[string]any),
		applied:    make(map[string]*models.AppliedOp),
		appliedTTL: 24 * time.Hour,
	}
}

func rkey(pk, sk string) string { return pk + "\x00" + sk }

func (s *MemoryStore) EnsureSummary(_ context.Context, accountID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := rkey(models.AccountPK(accountID), models.SummarySK())
	if _, ok := s.records[k]; ok {
		return nil
	}
	now := time.Now().UTC()
	s.records[k] = &models.AccountSummary{
		PK:        models.AccountPK(accountID),
		SK:        models.SummarySK(),
		AccountID: accountID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return nil
}

func (s *MemoryStore) GetSummary(_ context.Context, accountID string) (*models.AccountSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.records[rkey(models.AccountPK(accountID), models.SummarySK())]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *v.(*models.AccountSummary)
	return &cp, nil
}

func (s *MemoryStore) AdjustCash(_ context.Context, accountID string, deltaCents, maxAllowedCents int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.records[rkey(models.AccountPK(accountID), models.SummarySK())]
	if !ok {
		return ErrNotFound
	}
	sum := v.(*models.AccountSummary)
	next := sum.CashManagedCents + deltaCents
	if next < 0 || next > maxAllowedCents {
		return ErrConditionFailed
	}
	sum.CashManagedCents = next
	sum.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *MemoryStore) ListAccounts(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for _, v := range s.records {
		if sum, ok := v.(*models.AccountSummary); ok {
			out = append(out, sum.AccountID)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (s *MemoryStore) PutWatchlistEntry(_ context.Context, e models.WatchlistEntry) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e.PK = models.AccountPK(e.AccountID)
	e.SK = models.StockSK(e.Symbol)
	k := rkey(e.PK, e.SK)
	if _, ok := s.records[k]; ok {
		return false, nil
	}
	s.records[k] = &e
	return true, nil
}

func (s *MemoryStore) GetWatchlistEntry(_ context.Context, accountID, symbol string) (*models.WatchlistEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.records[rkey(models.AccountPK(accountID), models.StockSK(symbol))]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *v.(*models.WatchlistEntry)
	return &cp, nil
}

func (s *MemoryStore) ListWatchlist(_ context.Context, accountID string, includeDeleted bool) ([]models.WatchlistEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.WatchlistEntry
	for _, v := range s.records {
		e, ok := v.(*models.WatchlistEntry)
		if !ok || e.AccountID != accountID {
			continue
		}
		if e.IsDeleted && !includeDeleted {
			continue
		}
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out, nil
}

func (s *MemoryStore) AdjustShares(_ context.Context, accountID, symbol string, delta, maxAllowed int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.records[rkey(models.AccountPK(accountID), models.StockSK(symbol))]
	if !ok {
		return ErrNotFound
	}
	e := v.(*models.WatchlistEntry)
	next := e.SharesManaged + delta
	if next < 0 || next > maxAllowed {
		return ErrConditionFailed
	}
	e.SharesManaged = next
	e.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *MemoryStore) SetThreshold(_ context.Context, accountID, symbol string, thresholdAbs int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.records[rkey(models.AccountPK(accountID), models.StockSK(symbol))]
	if !ok {
		return ErrNotFound
	}
	e := v.(*models.WatchlistEntry)
	e.ThresholdAbs = thresholdAbs
	e.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *MemoryStore) ApplyScoreDelta(_ context.Context, accountID, symbol string, delta int64) (int64, int64, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.records[rkey(models.AccountPK(accountID), models.StockSK(symbol))]
	if !ok {
		return 0, 0, 0, ErrNotFound
	}
	e := v.(*models.WatchlistEntry)
	old := e.CurrentScore
	e.CurrentScore += delta
	e.UpdatedAt = time.Now().UTC()
	return old, e.CurrentScore, e.ThresholdAbs, nil
}

func (s *MemoryStore) MarkStockDeleted(_ context.Context, accountID, symbol string, cleanedNews int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.records[rkey(models.AccountPK(accountID), models.StockSK(symbol))]
	if !ok {
		return ErrNotFound
	}
	e := v.(*models.WatchlistEntry)
	e.IsDeleted = true
	e.DeletedNewsCount += cleanedNews
	e.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *MemoryStore) SetLastFetchedPrice(_ context.Context, accountID, symbol string, price float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.records[rkey(models.AccountPK(accountID), models.StockSK(symbol))]
	if !ok {
		return ErrNotFound
	}
	e := v.(*models.WatchlistEntry)
	e.LastFetchedPrice = price
	e.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *MemoryStore) PutNewsItem(_ context.Context, item models.NewsItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	item.PK = models.AccountPK(item.AccountID)
	k := rkey(item.PK, item.SK)
	if _, ok := s.records[k]; ok {
		return nil
	}
	s.records[k] = &item
	return nil
}

func (s *MemoryStore) PutScoreChange(_ context.Context, sc models.ScoreChange) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sc.PK = models.AccountPK(sc.AccountID)
	sc.SK = models.ScoreSK(sc.Symbol, sc.CreatedAt)
	k := rkey(sc.PK, sc.SK)
	if _, ok := s.records[k]; ok {
		return nil
	}
	s.records[k] = &sc
	return nil
}

func (s *MemoryStore) PutTradeRecord(_ context.Context, tr models.TradeRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tr.PK = models.AccountPK(tr.AccountID)
	tr.SK = models.TradeSK(tr.DecidedAt, tr.Symbol)
	k := rkey(tr.PK, tr.SK)
	if _, ok := s.records[k]; ok {
		return nil
	}
	s.records[k] = &tr
	return nil
}

func (s *MemoryStore) PutNetworthSample(_ context.Context, sample models.NetworthSample) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sample.PK = models.AccountPK(sample.AccountID)
	sample.SK = models.NetworthSK(sample.Timestamp)
	k := rkey(sample.PK, sample.SK)
	if _, ok := s.records[k]; ok {
		return nil
	}
	s.records[k] = &sample
	return nil
}

func (s *MemoryStore) NetworthSeries(_ context.Context, accountID string, from, to time.Time) ([]models.NetworthSample, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	lo, hi := models.NetworthSK(from), models.NetworthSK(to)
	var out []models.NetworthSample
	for _, v := range s.records {
		sample, ok := v.(*models.NetworthSample)
		if !ok || sample.AccountID != accountID {
			continue
		}
		if sample.SK >= lo && sample.SK <= hi {
			out = append(out, *sample)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SK < out[j].SK })
	return out, nil
}

func (s *MemoryStore) IsApplied(_ context.Context, dedupKey string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	op, ok := s.applied[dedupKey]
	return ok && !op.AppliedAt.IsZero(), nil
}

func (s *MemoryStore) MarkApplied(_ context.Context, dedupKey string, kind models.OperationKind) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	op, ok := s.applied[dedupKey]
	if !ok {
		op = &models.AppliedOp{DedupKey: dedupKey}
		s.applied[dedupKey] = op
	}
	op.Kind = string(kind)
	op.AppliedAt = now
	op.ExpiresAt = now.Add(s.appliedTTL)
	return nil
}

func (s *MemoryStore) IncAttempts(_ context.Context, dedupKey string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	op, ok := s.applied[dedupKey]
	if !ok {
		op = &models.AppliedOp{DedupKey: dedupKey, ExpiresAt: time.Now().UTC().Add(s.appliedTTL)}
		s.applied[dedupKey] = op
	}
	op.Attempts++
	return op.Attempts, nil
}

func (s *MemoryStore) MarkNewsSeen(_ context.Context, seen models.NewsSeen) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := rkey(seen.PK, seen.SK)
	if _, ok := s.records[k]; ok {
		return false, nil
	}
	s.records[k] = &seen
	return true, nil
}

// CountRecords reports how many durable records currently exist with the
// given sort-key prefix. Test helper.
func (s *MemoryStore) CountRecords(accountID, skPrefix string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	pk := models.AccountPK(accountID)
	n := 0
	for k := range s.records {
		parts := strings.SplitN(k, "\x00", 2)
		if len(parts) == 2 && parts[0] == pk && strings.HasPrefix(parts[1], skPrefix) {
			n++
		}
	}
	return n
}
