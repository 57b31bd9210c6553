// Package main provides the FOSS extraction API server entrypoint.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/knowron/foss-api/internal/cache"
	"github.com/knowron/foss-api/internal/config"
	"github.com/knowron/foss-api/internal/extract"
	"github.com/knowron/foss-api/internal/observability"
	"github.com/knowron/foss-api/internal/pdf"
	"github.com/knowron/foss-api/internal/storage"
)

func main() {
	// A missing .env file is fine: all settings have defaults or come from
	// the environment directly.
	_ = godotenv.Load()

	cfgPath := os.Getenv("CONFIG_PATH")
	if len(os.Args) > 2 && os.Args[1] == "--config" {
		cfgPath = os.Args[2]
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(observability.LogConfig{
		Level:       cfg.LogLevel(),
		Format:      cfg.Observability.LogFormat,
		ServiceName: cfg.Observability.ServiceName,
	})

	logger.Info().
		Str("environment", cfg.Environment).
		Str("host", cfg.Server.Host).
		Int("port", cfg.Server.Port).
		Str("storage_endpoint", cfg.Storage.Endpoint).
		Str("cache", cfg.Cache.Driver).
		Msg("Starting extraction API")

	gateway := storage.NewHTTPGateway(storage.HTTPConfig{
		Endpoint:        cfg.Storage.Endpoint,
		DocsBucket:      cfg.Storage.DocsBucket,
		ExtractedBucket: cfg.Storage.ExtractedBucket,
		Timeout:         cfg.Storage.RequestTimeout,
	})

	resultCache := newResultCache(cfg, logger)
	defer func() {
		if err := resultCache.Close(); err != nil {
			logger.Warn().Err(err).Msg("Cache close failed")
		}
	}()

	svc := extract.NewService(gateway, pdf.NewFitzEngine(), resultCache, logger, extract.ServiceConfig{
		Version:  cfg.Extraction.Version,
		Workers:  cfg.Extraction.MaxConcurrentDocs,
		CacheTTL: cfg.Cache.TTL,
	})

	envelopes := extract.NewEnvelopeBuilder(logger, cfg.Observability.ServiceName, cfg.Environment)

	router := NewRouter(logger, cfg, svc, envelopes)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", addr).Msg("HTTP server listening")
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		logger.Error().Err(err).Msg("Server error")
	case sig := <-shutdown:
		logger.Info().Str("signal", sig.String()).Msg("Shutdown signal received")
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulShutdown)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("Graceful shutdown failed")
		if err := srv.Close(); err != nil {
			logger.Error().Err(err).Msg("Forced shutdown failed")
		}
	}

	logger.Info().Msg("Server stopped")
}

// newResultCache builds the configured cache backend, falling back to the
// in-memory cache when Redis is unreachable so the service still starts.
func newResultCache(cfg *config.Config, logger *observability.Logger) cache.Client {
	if cfg.Cache.Driver == "redis" {
		client, err := cache.NewRedisClient(cache.RedisConfig{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
			PoolSize: cfg.Cache.Redis.PoolSize,
		})
		if err == nil {
			logger.Info().Str("addr", cfg.Cache.Redis.Addr).Msg("Using Redis result cache")
			return client
		}
		logger.Warn().Err(err).Msg("Redis unavailable, falling back to memory cache")
	}
	return cache.NewMemoryClient(cfg.Cache.MaxEntries)
}
