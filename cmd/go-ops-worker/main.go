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
	"trading-watchlist-backend/internal/ops"
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

	// - Retry loop to wait for Kafka to be truly ready.
	for {
		if err := kafka.EnsureTopics(cfg.Kafka, logger); err == nil {
			break
		}
		logger.Warn("could not ensure kafka topics, retrying in 2 seconds")
		time.Sleep(2 * time.Second)
	}

	// - Setup MongoDB
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

	mts := metrics.New("watchlist_worker")

	// - Wire the dispatcher with every handler.
	dispatcher := ops.NewDispatcher(st, logger, cfg.Kafka.MaxAttempts, cfg.Kafka.HandlerBudget, mts)
	policy := ops.RetentionPolicy{
		SoftAfter: cfg.Retention.SoftAfter,
		HardAfter: cfg.Retention.HardAfter,
	}
	dispatcher.Register(ops.NewStockInfoHandler(st, cfg.Sentiment.DefaultThreshold))
	dispatcher.Register(ops.NewSoftDeleteHandler(st, blobs, policy, logger))
	dispatcher.Register(ops.NewNewsWriterHandler(st, publisher))
	dispatcher.Register(ops.NewSentimentScorerHandler(st, blobs, publisher))
	dispatcher.Register(ops.NewTradeWriterHandler(st))
	dispatcher.Register(ops.NewSnapshotHandler(st))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// - One consumer per queue.
	external := kafka.NewConsumer(cfg.Kafka.BrokerURL, cfg.Kafka.ExternalTopic, cfg.Kafka.GroupID,
		dispatcher, publisher, logger)
	defer external.Close()
	system := kafka.NewConsumer(cfg.Kafka.BrokerURL, cfg.Kafka.SystemTopic, cfg.Kafka.GroupID,
		dispatcher, publisher, logger)
	defer system.Close()

	errCh := make(chan error, 2)
	go func() { errCh <- external.Run(ctx) }()
	go func() { errCh <- system.Run(ctx) }()

	// - Metrics endpoint.
	metricsSrv := &http.Server{
		Addr:    ":" + cfg.Server.MetricsPort,
		Handler: mts.Handler(),
	}
	go func() {
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server error", zap.Error(err))
		}
	}()

	logger.Info("ops worker running",
		zap.String("external_topic", cfg.Kafka.ExternalTopic),
		zap.String("system_topic", cfg.Kafka.SystemTopic))

	select {
	case <-ctx.Done():
		logger.Info("shutting down (signal)")
	case err := <-errCh:
		if err != nil {
			logger.Error("consumer stopped", zap.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics shutdown error", zap.Error(err))
	}
}
