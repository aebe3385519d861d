package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	mongoGo "trading-watchlist-backend/internal/mongo"
	"trading-watchlist-backend/internal/models"
)

// MongoStore implements StoreItf on a single records collection plus an
// applied_ops collection for idempotency marks.
type MongoStore struct {
	records    *mongo.Collection
	applied    *mongo.Collection
	appliedTTL time.Duration
}

func NewMongoStore(records, applied *mongo.Collection, appliedTTL time.Duration) *MongoStore {
	return &MongoStore{records: records, applied: applied, appliedTTL: appliedTTL}
}

func (s *MongoStore) EnsureSummary(ctx context.Context, accountID string) error {
	now := time.Now().UTC()
	_, err := s.records.UpdateOne(ctx,
		bson.M{"pk": models.AccountPK(accountID), "sk": models.SummarySK()},
		bson.M{
			"$setOnInsert": bson.M{
				"account_id":            accountID,
				"cash_managed_cents":    int64(0),
				"positions_value_cents": int64(0),
				"created_at":            now,
				"updated_at":            now,
			},
		},
		options.Update().SetUpsert(true),
	)
	return err
}

func (s *MongoStore) GetSummary(ctx context.Context, accountID string) (*models.AccountSummary, error) {
	var out models.AccountSummary
	err := s.records.FindOne(ctx,
		bson.M{"pk": models.AccountPK(accountID), "sk": models.SummarySK()},
	).Decode(&out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// AdjustCash applies a delta, rejecting results above the caller's cap
// or below zero. The cap check rides the filter so the increment stays a
// single conditional write.
func (s *MongoStore) AdjustCash(ctx context.Context, accountID string, deltaCents, maxAllowedCents int64) error {
	filter := bson.M{
		"pk": models.AccountPK(accountID),
		"sk": models.SummarySK(),
		"cash_managed_cents": bson.M{
			"$lte": maxAllowedCents - deltaCents,
			"$gte": -deltaCents,
		},
	}
	res, err := s.records.UpdateOne(ctx, filter, bson.M{
		"$inc": bson.M{"cash_managed_cents": deltaCents},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return s.classifyMiss(ctx, models.AccountPK(accountID), models.SummarySK())
	}
	return nil
}

func (s *MongoStore) ListAccounts(ctx context.Context) ([]string, error) {
	raw, err := s.records.Distinct(ctx, "account_id", bson.M{"sk": models.SummarySK()})
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if id, ok := v.(string); ok {
			out = append(out, id)
		}
	}
	return out, nil
}

func (s *MongoStore) PutWatchlistEntry(ctx context.Context, e models.WatchlistEntry) (bool, error) {
	e.PK = models.AccountPK(e.AccountID)
	e.SK = models.StockSK(e.Symbol)
	_, err := s.records.InsertOne(ctx, e)
	if mongoGo.IsDuplicateKeyError(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *MongoStore) GetWatchlistEntry(ctx context.Context, accountID, symbol string) (*models.WatchlistEntry, error) {
	var out models.WatchlistEntry
	err := s.records.FindOne(ctx,
		bson.M{"pk": models.AccountPK(accountID), "sk": models.StockSK(symbol)},
	).Decode(&out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *MongoStore) ListWatchlist(ctx context.Context, accountID string, includeDeleted bool) ([]models.WatchlistEntry, error) {
	filter := bson.M{
		"pk": models.AccountPK(accountID),
		"sk": bson.M{"$regex": "^STOCK#"},
	}
	if !includeDeleted {
		filter["is_deleted"] = false
	}
	cur, err := s.records.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "sk", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var entries []models.WatchlistEntry
	if err = cur.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *MongoStore) AdjustShares(ctx context.Context, accountID, symbol string, delta, maxAllowed int64) error {
	filter := bson.M{
		"pk": models.AccountPK(accountID),
		"sk": models.StockSK(symbol),
		"shares_managed": bson.M{
			"$gte": -delta,
			"$lte": maxAllowed - delta,
		},
	}
	res, err := s.records.UpdateOne(ctx, filter, bson.M{
		"$inc": bson.M{"shares_managed": delta},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return s.classifyMiss(ctx, models.AccountPK(accountID), models.StockSK(symbol))
	}
	return nil
}

func (s *MongoStore) SetThreshold(ctx context.Context, accountID, symbol string, thresholdAbs int64) error {
	res, err := s.records.UpdateOne(ctx,
		bson.M{"pk": models.AccountPK(accountID), "sk": models.StockSK(symbol)},
		bson.M{"$set": bson.M{"threshold_abs": thresholdAbs, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ApplyScoreDelta atomically increments the cumulative sentiment level
// and returns the resulting state. A single $inc on one document gives
// the same guarantee the optimistic read-compare-write loop would.
func (s *MongoStore) ApplyScoreDelta(ctx context.Context, accountID, symbol string, delta int64) (int64, int64, int64, error) {
	var updated models.WatchlistEntry
	err := s.records.FindOneAndUpdate(ctx,
		bson.M{"pk": models.AccountPK(accountID), "sk": models.StockSK(symbol)},
		bson.M{
			"$inc": bson.M{"current_level_score": delta},
			"$set": bson.M{"updated_at": time.Now().UTC()},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, 0, 0, ErrNotFound
	}
	if err != nil {
		return 0, 0, 0, err
	}
	return updated.CurrentScore - delta, updated.CurrentScore, updated.ThresholdAbs, nil
}

func (s *MongoStore) MarkStockDeleted(ctx context.Context, accountID, symbol string, cleanedNews int64) error {
	res, err := s.records.UpdateOne(ctx,
		bson.M{"pk": models.AccountPK(accountID), "sk": models.StockSK(symbol)},
		bson.M{
			"$set": bson.M{"is_deleted": true, "updated_at": time.Now().UTC()},
			"$inc": bson.M{"deleted_news_count": cleanedNews},
		},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) SetLastFetchedPrice(ctx context.Context, accountID, symbol string, price float64) error {
	res, err := s.records.UpdateOne(ctx,
		bson.M{"pk": models.AccountPK(accountID), "sk": models.StockSK(symbol)},
		bson.M{"$set": bson.M{"last_fetched_price": price, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) PutNewsItem(ctx context.Context, item models.NewsItem) error {
	item.PK = models.AccountPK(item.AccountID)
	_, err := s.records.InsertOne(ctx, item)
	if mongoGo.IsDuplicateKeyError(err) {
		// Same news landed twice; first write wins.
		return nil
	}
	return err
}

func (s *MongoStore) PutScoreChange(ctx context.Context, sc models.ScoreChange) error {
	sc.PK = models.AccountPK(sc.AccountID)
	sc.SK = models.ScoreSK(sc.Symbol, sc.CreatedAt)
	_, err := s.records.InsertOne(ctx, sc)
	if mongoGo.IsDuplicateKeyError(err) {
		return nil
	}
	return err
}

func (s *MongoStore) PutTradeRecord(ctx context.Context, tr models.TradeRecord) error {
	tr.PK = models.AccountPK(tr.AccountID)
	tr.SK = models.TradeSK(tr.DecidedAt, tr.Symbol)
	_, err := s.records.InsertOne(ctx, tr)
	if mongoGo.IsDuplicateKeyError(err) {
		return nil
	}
	return err
}

func (s *MongoStore) PutNetworthSample(ctx context.Context, sample models.NetworthSample) error {
	sample.PK = models.AccountPK(sample.AccountID)
	sample.SK = models.NetworthSK(sample.Timestamp)
	_, err := s.records.InsertOne(ctx, sample)
	if mongoGo.IsDuplicateKeyError(err) {
		// Append-only series: a redelivered snapshot never rewrites an
		// existing point.
		return nil
	}
	return err
}

func (s *MongoStore) NetworthSeries(ctx context.Context, accountID string, from, to time.Time) ([]models.NetworthSample, error) {
	filter := bson.M{
		"pk": models.AccountPK(accountID),
		"sk": bson.M{
			"$gte": models.NetworthSK(from),
			"$lte": models.NetworthSK(to),
		},
	}
	cur, err := s.records.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "sk", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var samples []models.NetworthSample
	if err = cur.All(ctx, &samples); err != nil {
		return nil, err
	}
	return samples, nil
}

func (s *MongoStore) IsApplied(ctx context.Context, dedupKey string) (bool, error) {
	err := s.applied.FindOne(ctx, bson.M{"dedup_key": dedupKey, "applied_at": bson.M{"$exists": true}}).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *MongoStore) MarkApplied(ctx context.Context, dedupKey string, kind models.OperationKind) error {
	now := time.Now().UTC()
	_, err := s.applied.UpdateOne(ctx,
		bson.M{"dedup_key": dedupKey},
		bson.M{"$set": bson.M{
			"kind":       string(kind),
			"applied_at": now,
			"expires_at": now.Add(s.appliedTTL),
		}},
		options.Update().SetUpsert(true),
	)
	if mongoGo.IsDuplicateKeyError(err) {
		// Concurrent duplicate delivery; the other worker won.
		return nil
	}
	return err
}

func (s *MongoStore) IncAttempts(ctx context.Context, dedupKey string) (int64, error) {
	now := time.Now().UTC()
	var doc models.AppliedOp
	err := s.applied.FindOneAndUpdate(ctx,
		bson.M{"dedup_key": dedupKey},
		bson.M{
			"$inc":         bson.M{"attempts": int64(1)},
			"$setOnInsert": bson.M{"expires_at": now.Add(s.appliedTTL)},
		},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return 0, err
	}
	return doc.Attempts, nil
}

func (s *MongoStore) MarkNewsSeen(ctx context.Context, seen models.NewsSeen) (bool, error) {
	_, err := s.records.InsertOne(ctx, seen)
	if mongoGo.IsDuplicateKeyError(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// classifyMiss distinguishes a failed condition from a missing record.
func (s *MongoStore) classifyMiss(ctx context.Context, pk, sk string) error {
	err := s.records.FindOne(ctx, bson.M{"pk": pk, "sk": sk}).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return ErrConditionFailed
}
