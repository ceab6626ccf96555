package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"hauswert/config"
	"hauswert/internal/advisory"
	"hauswert/internal/api"
	"hauswert/internal/cache"
	"hauswert/internal/database"
	"hauswert/internal/geocoding"
	"hauswert/internal/orchestrator"
	"hauswert/internal/platform"
	"hauswert/internal/sources"
)

func main() {
	godotenv.Load()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DatabasePath), 0755); err != nil {
		logger.WithError(err).Fatal("Failed to create database directory")
	}
	db, err := database.NewDatabase(cfg.DatabasePath, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize database")
	}
	defer db.Close()

	// Persistent TTL caches for the slow-changing sources.
	landCache := cache.New("land_values", time.Duration(cfg.Sources.LandValueTTLDays)*24*time.Hour, logger)
	marketCache := cache.New("market_samples", time.Duration(cfg.Sources.MarketTTLDays)*24*time.Hour, logger)
	for _, c := range []*cache.Cache{landCache, marketCache} {
		if err := c.Load(db); err != nil {
			logger.WithError(err).WithField("cache", c.Name()).Warn("Failed to load cache from store")
		}
	}

	writer := cache.NewWriter(db,
		time.Duration(cfg.CachePersistence.DebounceSeconds)*time.Second,
		cfg.CachePersistence.MaxRetries,
		time.Duration(cfg.CachePersistence.RetryDelay)*time.Second,
		logger)
	writer.Start()
	defer writer.Close()
	landCache.AttachWriter(writer)
	marketCache.AttachWriter(writer)

	sweeper := cache.NewSweeper(time.Duration(cfg.CachePersistence.SweepIntervalMinutes)*time.Minute, logger, landCache, marketCache)
	sweeper.Start()
	defer sweeper.Stop()

	cacheDir := filepath.Join(os.TempDir(), "hauswert", "geocode_cache")
	geocoder := geocoding.NewGeocoder(logger, cacheDir, cfg.Geocoder.BaseURL, time.Duration(cfg.Geocoder.TimeoutSeconds)*time.Second)

	httpClient := platform.NewClient(platform.ClientOptions{
		RequestsPerSec: cfg.Sources.RequestsPerSec,
		MaxRetries:     cfg.Sources.MaxRetries,
	})

	advisorySvc := advisory.NewService(
		cfg.Advisory.APIKey,
		cfg.Advisory.Model,
		time.Duration(cfg.Advisory.TimeoutSeconds)*time.Second,
		time.Duration(cfg.Advisory.TTLHours)*time.Hour,
		logger)
	if !advisorySvc.Enabled() {
		logger.Info("Advisory backend not configured; opinions will be unavailable")
	}

	orch := orchestrator.New(orchestrator.Deps{
		Geocoder:    geocoder,
		LandValue:   sources.DefaultLandValueRegistry(httpClient, cfg.Sources.LandValueURLTemplate, logger),
		Market:      sources.NewMarketClient(httpClient, cfg.Sources.MarketStatsURL, logger),
		PriceIdx:    sources.NewPriceIndexClient(httpClient, cfg.Sources.PriceIndexURL, time.Duration(cfg.Sources.PriceIndexTTLDays)*24*time.Hour, logger),
		CostIdx:     sources.NewCostIndexClient(httpClient, cfg.Sources.CostIndexURL, time.Duration(cfg.Sources.CostIndexTTLDays)*24*time.Hour, logger),
		Regional:    sources.NewRegionalReferenceClient(httpClient, cfg.Sources.RegionalReferenceURL, logger),
		Advisory:    advisorySvc,
		History:     db,
		LandCache:   landCache,
		MarketCache: marketCache,
		Timeouts: orchestrator.Timeouts{
			LandValue:  time.Duration(cfg.Sources.LandValueTimeout) * time.Second,
			Market:     time.Duration(cfg.Sources.MarketTimeout) * time.Second,
			PriceIndex: time.Duration(cfg.Sources.PriceIndexTimeout) * time.Second,
			CostIndex:  time.Duration(cfg.Sources.CostIndexTimeout) * time.Second,
			Regional:   time.Duration(cfg.Sources.RegionalTimeout) * time.Second,
		},
		Logger: logger,
	})

	warmCtx, cancelWarm := context.WithTimeout(context.Background(), 30*time.Second)
	if err := orch.Warm(warmCtx); err != nil {
		logger.WithError(err).Warn("Continuing with cold index caches")
	}
	cancelWarm()

	router := gin.New()
	router.Use(gin.Recovery())
	api.SetupRoutes(router, orch, db, logger)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Infof("Starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("Server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Forced server shutdown")
	}
}
