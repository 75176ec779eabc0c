package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/bimakw/fumble-tracker/internal/application/services"
	"github.com/bimakw/fumble-tracker/internal/config"
	"github.com/bimakw/fumble-tracker/internal/domain/providers"
	"github.com/bimakw/fumble-tracker/internal/infrastructure/cache"
	"github.com/bimakw/fumble-tracker/internal/infrastructure/coingecko"
	"github.com/bimakw/fumble-tracker/internal/infrastructure/solana"
	"github.com/bimakw/fumble-tracker/internal/presentation/handlers"
	"github.com/bimakw/fumble-tracker/internal/presentation/middleware"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	logger := setupLogger(cfg.Log.Level, cfg.Log.Format)
	defer logger.Sync()

	logger.Info("Starting fumble-tracker API",
		zap.Int("port", cfg.API.Port),
		zap.Int("tx_limit", cfg.Solana.TxLimit),
	)

	// Provider clients are shared by all requests
	solanaClient := solana.NewClient(cfg.Solana, logger)
	defer solanaClient.Close()

	priceClient := coingecko.NewClient(cfg.Price, logger)

	// Price cache: Redis when enabled, in-process otherwise
	var priceCache providers.PriceCache
	var cacheChecker handlers.HealthChecker
	if cfg.Redis.Enabled {
		redisCache, err := cache.NewRedisCache(cfg.Redis, logger)
		if err != nil {
			logger.Warn("Failed to connect to Redis, using in-process cache", zap.Error(err))
		} else {
			defer redisCache.Close()
			priceCache = redisCache
			cacheChecker = redisCache
		}
	}
	if priceCache == nil {
		memoryCache := cache.NewMemoryCache(cfg.Cache.CurrentTTL, 10*time.Minute)
		priceCache = memoryCache
		cacheChecker = memoryCache
	}

	pipelineMetrics := middleware.NewPipelineMetrics(prometheus.DefaultRegisterer)

	// Create services
	priceService := services.NewPriceService(priceClient, priceCache, cfg.Price, cfg.Cache, pipelineMetrics, logger)
	snapshotService := services.NewSnapshotService(solanaClient, cfg.Solana, logger)
	valuationService := services.NewValuationService(priceService, logger)
	reportService := services.NewReportService(snapshotService, valuationService, pipelineMetrics, logger)

	// Create handlers
	reportHandler := handlers.NewReportHandler(reportService, logger)
	healthHandler := handlers.NewHealthHandler(solanaClient, cacheChecker)

	// Setup router
	r := chi.NewRouter()

	// Middleware stack
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Metrics())
	r.Use(chimiddleware.Recoverer)

	// Health endpoints (no rate limiting)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)
	r.Get("/live", healthHandler.Live)
	r.Handle("/metrics", promhttp.Handler())

	// Report routes
	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimiter(cfg.API.RateLimitRPS))
		reportHandler.RegisterRoutes(r)
	})

	// Start server
	addr := fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.API.ReadTimeout,
		WriteTimeout: cfg.API.WriteTimeout,
	}

	// Run server in goroutine
	go func() {
		logger.Info("API server starting", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server error", zap.Error(err))
		}
	}()

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("Received shutdown signal, shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), cfg.API.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown error", zap.Error(err))
	}

	logger.Info("Server stopped")
}

func setupLogger(level, format string) *zap.Logger {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	encoding := "json"
	encoderConfig := zap.NewProductionEncoderConfig()
	if format == "console" {
		encoding = "console"
		encoderConfig = zap.NewDevelopmentEncoderConfig()
	}

	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapLevel),
		Development:      false,
		Encoding:         encoding,
		EncoderConfig:    encoderConfig,
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	logger, _ := config.Build()
	return logger
}
