// Package sched runs the periodic jobs: news polling, net-worth
// snapshot ticks, and the retention sweep for deleted stocks.
package sched

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"trading-watchlist-backend/internal/blob"
	"trading-watchlist-backend/internal/models"
	"trading-watchlist-backend/internal/news"
	"trading-watchlist-backend/internal/ops"
	"trading-watchlist-backend/internal/store"
)

// JobRecorder receives one observation per job run.
type JobRecorder interface {
	ObserveJob(job string, err error)
}

// Intervals configures how often each job fires.
type Intervals struct {
	NewsFetch time.Duration
	Snapshot  time.Duration
	Retention time.Duration
}

// Scheduler owns the tickers. It never writes to the store directly for
// anything an operation can express; those effects go through the
// emitter so the worker applies them with the usual idempotency.
type Scheduler struct {
	store     store.StoreItf
	blobs     blob.StoreItf
	fetcher   news.FetcherItf
	emitter   ops.Emitter
	policy    ops.RetentionPolicy
	intervals Intervals
	recorder  JobRecorder
	logger    *zap.Logger
}

func New(st store.StoreItf, blobs blob.StoreItf, fetcher news.FetcherItf, emitter ops.Emitter,
	policy ops.RetentionPolicy, intervals Intervals, rec JobRecorder, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		store:     st,
		blobs:     blobs,
		fetcher:   fetcher,
		emitter:   emitter,
		policy:    policy,
		intervals: intervals,
		recorder:  rec,
		logger:    logger,
	}
}

// Run blocks until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	newsTicker := time.NewTicker(s.intervals.NewsFetch)
	defer newsTicker.Stop()
	snapTicker := time.NewTicker(s.intervals.Snapshot)
	defer snapTicker.Stop()
	retTicker := time.NewTicker(s.intervals.Retention)
	defer retTicker.Stop()

	s.logger.Info("scheduler started",
		zap.Duration("news_fetch", s.intervals.NewsFetch),
		zap.Duration("snapshot", s.intervals.Snapshot),
		zap.Duration("retention", s.intervals.Retention))

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler shutting down")
			return
		case <-newsTicker.C:
			s.observe("news_fetch", s.RunNewsFetch(ctx))
		case <-snapTicker.C:
			s.observe("snapshot", s.RunSnapshotTick(ctx))
		case <-retTicker.C:
			s.observe("retention", s.RunRetentionSweep(ctx))
		}
	}
}

func (s *Scheduler) observe(job string, err error) {
	if s.recorder != nil {
		s.recorder.ObserveJob(job, err)
	}
	if err != nil {
		s.logger.Error("job failed", zap.String("job", job), zap.Error(err))
	}
}

// RunNewsFetch polls the feed for every live watchlist symbol, refreshes
// its price, writes each unseen article to the blob store, and emits one
// NEW_NEWS operation per stored article.
func (s *Scheduler) RunNewsFetch(ctx context.Context) error {
	accounts, err := s.store.ListAccounts(ctx)
	if err != nil {
		return err
	}
	for _, accountID := range accounts {
		entries, err := s.store.ListWatchlist(ctx, accountID, false)
		if err != nil {
			return err
		}
		for _, e := range entries {
			if err := s.fetchSymbol(ctx, accountID, e.Symbol); err != nil {
				// One bad symbol must not starve the rest.
				s.logger.Warn("symbol fetch failed",
					zap.String("account_id", accountID),
					zap.String("symbol", e.Symbol),
					zap.Error(err))
			}
		}
	}
	return nil
}

func (s *Scheduler) fetchSymbol(ctx context.Context, accountID, symbol string) error {
	if q, err := s.fetcher.FetchQuote(ctx, symbol); err != nil {
		s.logger.Warn("quote fetch failed", zap.String("symbol", symbol), zap.Error(err))
	} else if err := s.store.SetLastFetchedPrice(ctx, accountID, symbol, q.Price); err != nil {
		s.logger.Warn("price update failed", zap.String("symbol", symbol), zap.Error(err))
	}

	articles, err := s.fetcher.FetchArticles(ctx, symbol)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	for _, a := range articles {
		hash := ops.NewsHash(symbol, a.Headline, a.PublishedAt)
		fresh, err := s.store.MarkNewsSeen(ctx, models.NewsSeen{
			PK:          models.AccountPK(accountID),
			SK:          models.NewsHashSK(symbol, hash),
			Symbol:      symbol,
			Headline:    a.Headline,
			PublishedAt: a.PublishedAt,
			CreatedAt:   now,
		})
		if err != nil {
			return err
		}
		if !fresh {
			continue
		}

		key, err := s.putArticle(ctx, accountID, symbol, a, now)
		if err != nil {
			s.logger.Warn("article blob put failed",
				zap.String("symbol", symbol), zap.Error(err))
			continue
		}

		op := models.Operation{
			OperationID: uuid.NewString(),
			Kind:        models.KindNewNews,
			AccountID:   accountID,
			Origin:      models.OriginSystem,
			EnqueuedAt:  now,
			Payload: models.OperationPayload{
				Symbol:      symbol,
				Headline:    a.Headline,
				Source:      a.Source,
				PublishedAt: a.PublishedAt,
				BlobKey:     key,
			},
		}
		op.DedupKey = ops.DeriveDedupKey(op.Kind, op.AccountID, op.Payload, now)
		if err := s.emitter.Emit(ctx, op); err != nil {
			return err
		}
	}
	return nil
}

// putArticle writes the raw article to the blob store and returns its
// key. The key's day segment comes from the published date so retention
// can age blobs without reading them.
func (s *Scheduler) putArticle(ctx context.Context, accountID, symbol string, a news.Article, now time.Time) (string, error) {
	day := a.PublishedAt
	if len(day) >= 10 {
		day = day[:10]
	} else {
		day = now.Format("2006-01-02")
	}

	raw, err := json.Marshal(models.NewsArticle{
		Symbol:      symbol,
		Headline:    a.Headline,
		Body:        a.Body,
		Source:      a.Source,
		PublishedAt: a.PublishedAt,
		AccountID:   accountID,
		IngestedAt:  now,
	})
	if err != nil {
		return "", err
	}

	key := blob.NewsKey(symbol, day)
	if err := s.blobs.Put(ctx, key, raw, "application/json"); err != nil {
		return "", err
	}
	return key, nil
}

// RunSnapshotTick emits one NETWORTH_SNAPSHOT operation per account.
// The payload carries the tick time so redeliveries and reordering
// cannot move a sample.
func (s *Scheduler) RunSnapshotTick(ctx context.Context) error {
	accounts, err := s.store.ListAccounts(ctx)
	if err != nil {
		return err
	}
	now := time.Now().UTC().Truncate(time.Second)
	for _, accountID := range accounts {
		op := models.Operation{
			OperationID: uuid.NewString(),
			Kind:        models.KindNetworthSnapshot,
			AccountID:   accountID,
			Origin:      models.OriginSystem,
			EnqueuedAt:  now,
			Payload:     models.OperationPayload{SnapshotAt: now},
		}
		op.DedupKey = ops.DeriveDedupKey(op.Kind, op.AccountID, op.Payload, now)
		if err := s.emitter.Emit(ctx, op); err != nil {
			return err
		}
	}
	return nil
}

// RunRetentionSweep re-applies the blob retention policy to every
// soft-deleted symbol, so blobs aging past the windows after the delete
// still get tagged and removed.
func (s *Scheduler) RunRetentionSweep(ctx context.Context) error {
	accounts, err := s.store.ListAccounts(ctx)
	if err != nil {
		return err
	}
	for _, accountID := range accounts {
		entries, err := s.store.ListWatchlist(ctx, accountID, true)
		if err != nil {
			return err
		}
		for _, e := range entries {
			if !e.IsDeleted {
				continue
			}
			cleaned, err := ops.SweepNewsBlobs(ctx, s.blobs, e.Symbol, s.policy, s.logger)
			if err != nil {
				s.logger.Warn("retention sweep failed",
					zap.String("symbol", e.Symbol), zap.Error(err))
				continue
			}
			if cleaned == 0 {
				continue
			}
			if err := s.store.MarkStockDeleted(ctx, accountID, e.Symbol, cleaned); err != nil {
				s.logger.Warn("cleaned count update failed",
					zap.String("symbol", e.Symbol), zap.Error(err))
			}
		}
	}
	return nil
}
