// Package main provides the entrypoint for the AirSight API server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/airsight/airsight/internal/api"
	"github.com/airsight/airsight/internal/api/handler"
	"github.com/airsight/airsight/internal/api/middleware"
	"github.com/airsight/airsight/internal/cache"
	"github.com/airsight/airsight/internal/catalog"
	"github.com/airsight/airsight/internal/dashboard"
	"github.com/airsight/airsight/internal/measurement"
	"github.com/airsight/airsight/internal/telemetry"
	"github.com/airsight/airsight/internal/warehouse"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "airsight-api"

	// Load .env if present; real environments set variables directly.
	_ = godotenv.Load()

	// Setup structured logging
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting AirSight API")

	// Get configuration from environment
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	otlpEndpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if otlpEndpoint == "" {
		otlpEndpoint = "localhost:4317"
	}

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	// Initialize OpenTelemetry
	ctx := context.Background()
	telemetryEnabled := os.Getenv("OTEL_ENABLED") == "true"

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    env,
		OTLPEndpoint:   otlpEndpoint,
		Enabled:        telemetryEnabled,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	if telemetryEnabled {
		log.Info().
			Str("otlp_endpoint", otlpEndpoint).
			Msg("OpenTelemetry initialized")
	}

	// Initialize metrics
	metrics, err := middleware.NewMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize metrics")
		os.Exit(1) //nolint:gocritic // intentional exit, telemetry cleanup is best-effort
	}

	warehouseMetrics, err := middleware.NewWarehouseMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize warehouse metrics")
		os.Exit(1)
	}

	// Connect to the warehouse, retrying while it spins up
	whConfig := warehouse.ConfigFromEnv()
	var pool *pgxpool.Pool
	connectOp := func() error {
		var connectErr error
		pool, connectErr = warehouse.Connect(ctx, whConfig)
		return connectErr
	}
	connectPolicy := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 5)
	if err := backoff.Retry(connectOp, backoff.WithContext(connectPolicy, ctx)); err != nil {
		log.Fatal().Err(err).Msg("failed to connect to warehouse")
	}
	defer pool.Close()
	log.Info().
		Str("host", whConfig.Host).
		Int("port", whConfig.Port).
		Str("database", whConfig.Database).
		Msg("warehouse connected")

	// Pick the query cache backend. A Redis cache is also a readiness
	// dependency; the in-memory store cannot fail.
	var store cache.Store
	var cachePinger handler.Pinger
	if redisAddr := os.Getenv("CACHE_REDIS_ADDR"); redisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     redisAddr,
			Password: os.Getenv("CACHE_REDIS_PASSWORD"),
		})
		redisStore := cache.NewRedis(client)
		store = redisStore
		cachePinger = redisStore
		log.Info().Str("addr", redisAddr).Msg("using redis query cache")
	} else {
		store = cache.NewMemory()
		log.Info().Msg("using in-memory query cache")
	}

	// Warehouse repository behind a circuit breaker, memoized by the
	// measurement service
	repo := measurement.NewPostgresRepository(pool)
	breakerRepo := measurement.NewBreakerRepository(repo, measurement.BreakerConfig{
		Name: "warehouse",
	})
	measurementService := measurement.NewService(measurement.ServiceConfig{
		Repository: breakerRepo,
		Store:      store,
		Logger:     log,
		Metrics:    warehouseMetrics,
	})
	log.Info().Msg("measurement service initialized")

	pollutants := catalog.Default()

	pipeline := dashboard.NewPipeline(dashboard.PipelineConfig{
		Source:  measurementService,
		Catalog: pollutants,
		Logger:  log,
	})
	log.Info().Msg("dashboard pipeline initialized")

	// Create router with configuration
	router := api.NewRouter(api.RouterConfig{
		Version:     Version,
		BuildTime:   BuildTime,
		Logger:      log,
		ServiceName: serviceName,
		Metrics:     metrics,
		Warehouse:   pool,
		Cache:       cachePinger,
		Metadata:    measurementService,
		Catalog:     pollutants,
		Pipeline:    pipeline,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}
