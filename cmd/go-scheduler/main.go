package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"trading-watchlist-backend/internal/blob"
	"trading-watchlist-backend/internal/config"
	"trading-watchlist-backend/internal/kafka"
	"trading-watchlist-backend/internal/metrics"
	mongoGo "trading-watchlist-backend/internal/mongo"
	"trading-watchlist-backend/internal/news"
	"trading-watchlist-backend/internal/ops"
	"trading-watchlist-backend/internal/sched"
	"trading-watchlist-backend/internal/store"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yml"
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Fatal("error loading configuration", zap.Error(err))
	}

	for {
		if err := kafka.EnsureTopics(cfg.Kafka, logger); err == nil {
			break
		}
		logger.Warn("could not ensure kafka topics, retrying in 2 seconds")
		time.Sleep(2 * time.Second)
	}

	DB, err := mongoGo.ConnectDB(cfg.MongoDB.URL)
	if err != nil {
		logger.Fatal("failed to connect to MongoDB", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := DB.Disconnect(ctx); err != nil {
			logger.Error("error during MongoDB disconnect", zap.Error(err))
		}
	}()
	if err := mongoGo.EnsureIndexes(context.Background(), DB, cfg.MongoDB); err != nil {
		logger.Fatal("failed to ensure indexes", zap.Error(err))
	}

	records := mongoGo.GetCollection(DB, cfg.MongoDB.DatabaseName, cfg.MongoDB.RecordsCollection)
	applied := mongoGo.GetCollection(DB, cfg.MongoDB.DatabaseName, cfg.MongoDB.AppliedOpsCollection)
	st := store.NewMongoStore(records, applied, cfg.MongoDB.AppliedOpsRetention)

	blobs, err := blob.NewGridFSStore(DB.Database(cfg.MongoDB.DatabaseName), cfg.MongoDB.BlobBucket)
	if err != nil {
		logger.Fatal("failed to open blob bucket", zap.Error(err))
	}

	publisher := kafka.NewPublisher(cfg.Kafka, logger)
	defer publisher.Close()

	fetcher := news.NewFetcher(cfg.News.FeedURL, cfg.News.QuoteURL, cfg.News.MaxItems, cfg.News.FetchTimeout)

	mts := metrics.New("watchlist_scheduler")
	metricsSrv := &http.Server{
		Addr:    ":" + cfg.Server.MetricsPort,
		Handler: mts.Handler(),
	}
	go func() {
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server error", zap.Error(err))
		}
	}()

	policy := ops.RetentionPolicy{
		SoftAfter: cfg.Retention.SoftAfter,
		HardAfter: cfg.Retention.HardAfter,
	}
	intervals := sched.Intervals{
		NewsFetch: cfg.Scheduler.NewsFetchInterval,
		Snapshot:  cfg.Scheduler.SnapshotInterval,
		Retention: cfg.Scheduler.RetentionInterval,
	}
	scheduler := sched.New(st, blobs, fetcher, publisher, policy, intervals, mts, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	scheduler.Run(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics shutdown error", zap.Error(err))
	}
}
