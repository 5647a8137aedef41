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

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/bjjvault/video-gateway/internal/config"
	"github.com/bjjvault/video-gateway/internal/db"
	"github.com/bjjvault/video-gateway/internal/events"
	"github.com/bjjvault/video-gateway/internal/handler"
	"github.com/bjjvault/video-gateway/internal/metrics"
	"github.com/bjjvault/video-gateway/internal/middleware"
	"github.com/bjjvault/video-gateway/internal/provider"
	"github.com/bjjvault/video-gateway/internal/provider/youtube"
	"github.com/bjjvault/video-gateway/internal/service"
	"github.com/bjjvault/video-gateway/internal/service/quota"
	"github.com/bjjvault/video-gateway/internal/store"
	"github.com/bjjvault/video-gateway/internal/validation"
	"github.com/bjjvault/video-gateway/pkg/logger"
)

const startupTimeout = 30 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.File); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	// A missing API key halts startup.
	if err := cfg.Validate(); err != nil {
		logger.Log.Fatal("Invalid configuration", zap.Error(err))
	}

	logger.Log.Info("Starting video gateway",
		zap.Int("port", cfg.Server.Port),
		zap.String("storage", cfg.Storage.Backend),
		zap.Bool("searchFallback", cfg.Search.FallbackEnabled),
	)

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	m := metrics.New()

	st, err := openStore(ctx, cfg)
	if err != nil {
		logger.Log.Fatal("Failed to open saved video store", zap.Error(err))
	}
	defer func() {
		if err := st.Close(); err != nil {
			logger.Log.Error("Failed to close store", zap.Error(err))
		}
	}()

	var (
		eventPublisher service.EventPublisher
		healthChecker  handler.HealthChecker
	)
	if cfg.RabbitMQ.Enabled {
		publisher, err := events.NewPublisher(cfg.RabbitMQ)
		if err != nil {
			logger.Log.Fatal("Failed to create RabbitMQ publisher", zap.Error(err))
		}
		defer func() {
			if err := publisher.Close(); err != nil {
				logger.Log.Error("Failed to close publisher", zap.Error(err))
			}
		}()
		eventPublisher = publisher
		healthChecker = publisher
	} else {
		logger.Log.Info("RabbitMQ disabled, saved video events will not be published")
	}

	ytService, err := youtube.NewService(context.Background(), cfg.YouTube.APIKey, cfg.YouTube.Endpoint)
	if err != nil {
		logger.Log.Fatal("Failed to create YouTube service", zap.Error(err))
	}
	quotaManager := quota.NewManager(cfg.YouTube.DailyQuota, cfg.YouTube.QuotaWarnPct, m)
	ytClient := youtube.NewClient(ytService, youtube.Options{
		Topic:          cfg.YouTube.Topic,
		MaxResults:     cfg.YouTube.MaxResults,
		RequestTimeout: cfg.YouTube.RequestTimeout,
	}, quotaManager, m)

	validator := validation.New(0)
	registry := provider.NewRegistry(ytClient, provider.NewVimeo(), provider.NewBilibili())
	gateway := service.NewVideoGateway(registry, validator, cfg.Search.FallbackEnabled)
	library := service.NewSavedVideoService(st, validator, eventPublisher, m)

	auth := middleware.NewAPIKeyAuth(cfg.Auth.APIKeys)
	if !auth.Enabled() {
		logger.Log.Warn("No API keys configured (APP_AUTH_APIKEYS), the API is open")
	}

	gin.SetMode(gin.ReleaseMode)
	router := handler.NewRouter(handler.Handlers{
		Videos:  handler.NewVideoHandler(gateway),
		Saved:   handler.NewSavedVideoHandler(library),
		Health:  handler.NewHealthHandler(library, healthChecker, quotaManager),
		Auth:    auth,
		Metrics: m,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Log.Info("Server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		logger.Log.Error("Server error", zap.Error(err))
	case sig := <-shutdown:
		logger.Log.Info("Shutdown signal received", zap.String("signal", sig.String()))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Graceful shutdown failed", zap.Error(err))
		if err := srv.Close(); err != nil {
			logger.Log.Error("Failed to close server", zap.Error(err))
		}
		return
	}

	logger.Log.Info("Server stopped gracefully")
}

// openStore opens the configured saved-video backend.
func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.Storage.Backend {
	case config.BackendPostgres:
		pool, err := db.NewPool(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		if err := db.EnsureSchema(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		logger.Log.Info("Database connection established",
			zap.Int32("maxConns", pool.Config().MaxConns),
		)
		return store.NewPostgresStore(pool), nil
	case config.BackendRedis:
		return store.NewRedisStore(ctx, cfg.Redis.URL)
	default:
		return store.NewFileStore(cfg.Storage.Dir)
	}
}
