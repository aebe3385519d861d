package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"trading-watchlist-backend/internal/api/handler"
	"trading-watchlist-backend/internal/api/middleware"
	"trading-watchlist-backend/internal/api/usecase"
	"trading-watchlist-backend/internal/blob"
	"trading-watchlist-backend/internal/cache"
	"trading-watchlist-backend/internal/config"
	"trading-watchlist-backend/internal/kafka"
	"trading-watchlist-backend/internal/metrics"
	mongoGo "trading-watchlist-backend/internal/mongo"
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

	// - Setup Kafka publisher; retry until the broker is reachable.
	for {
		if err := kafka.EnsureTopics(cfg.Kafka, logger); err == nil {
			break
		}
		logger.Warn("could not ensure kafka topics, retrying in 2 seconds")
		time.Sleep(2 * time.Second)
	}
	publisher := kafka.NewPublisher(cfg.Kafka, logger)
	defer publisher.Close()

	mts := metrics.New("watchlist_api")

	seriesCache, err := cache.New(1<<24, cfg.Server.SeriesCacheTTL)
	if err != nil {
		logger.Fatal("failed to build series cache", zap.Error(err))
	}

	uc := usecase.NewUsecase(st, blobs, publisher, seriesCache, cfg.Account.DefaultAccountID)
	hd := handler.NewHandler(uc, cfg.Account.DefaultAccountID)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Metrics(mts))
	r.Use(middleware.Error())
	r.Use(middleware.Timeout(cfg.Server.RequestTimeout))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(mts.Handler()))

	v1 := r.Group("/api/v1")
	{
		v1.POST("/operations", hd.SubmitOperation)
		v1.GET("/networth", hd.GetNetworth)
		v1.POST("/networth/plot", hd.PlotNetworth)
		v1.GET("/watchlist", hd.GetWatchlist)
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: r,
	}

	go func() {
		logger.Info("ingress api listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}
}
