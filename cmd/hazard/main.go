package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/hazard-risk-service/internal/adapter/bolt"
	httpadapter "github.com/couchcryptid/hazard-risk-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/hazard-risk-service/internal/adapter/kafka"
	"github.com/couchcryptid/hazard-risk-service/internal/adapter/mapbox"
	"github.com/couchcryptid/hazard-risk-service/internal/config"
	"github.com/couchcryptid/hazard-risk-service/internal/domain"
	"github.com/couchcryptid/hazard-risk-service/internal/engine"
	"github.com/couchcryptid/hazard-risk-service/internal/observability"
	"github.com/couchcryptid/hazard-risk-service/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	// Reverse geocoding names report locations (feature-flagged via MAPBOX_ENABLED / MAPBOX_TOKEN).
	var geocoder domain.Geocoder
	if cfg.MapboxEnabled {
		client := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, logger, metrics)
		geocoder = mapbox.NewCachedGeocoder(client, cfg.MapboxCacheSize, metrics)
		metrics.GeocodeEnabled.Set(1)
		logger.Info("mapbox geocoding enabled", "cache_size", cfg.MapboxCacheSize, "timeout", cfg.MapboxTimeout)
	} else {
		logger.Info("mapbox geocoding disabled")
	}

	engCfg := engine.Config{
		Samples:    cfg.TrainingSamples,
		Seed:       cfg.TrainingSeed,
		Workers:    cfg.GridWorkers,
		Resolution: cfg.HeatmapResolution,
	}
	var store *bolt.Store
	if cfg.ModelStorePath != "" {
		store, err = bolt.Open(cfg.ModelStorePath)
		if err != nil {
			logger.Error("failed to open model store", "error", err, "path", cfg.ModelStorePath)
			os.Exit(1)
		}
		engCfg.Store = store
		logger.Info("model snapshots enabled", "path", cfg.ModelStorePath)
	}

	eng := engine.New(engCfg, engine.SyntheticFields{Seed: cfg.TrainingSeed}, geocoder, logger, metrics)

	reader := kafkaadapter.NewReader(cfg, logger)
	writer := kafkaadapter.NewWriter(cfg, logger)
	transformer := pipeline.NewTransformer(eng, logger)

	p := pipeline.New(reader, transformer, writer, logger, metrics, cfg.BatchSize)

	srv := httpadapter.NewServer(cfg.HTTPAddr, httpadapter.AllReady(eng, p), eng, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Train or restore the models before consuming so the first batch does
	// not stall on training.
	if err := eng.EnsureTrained(ctx); err != nil {
		if ctx.Err() == nil {
			logger.Error("model training failed", "error", err)
		}
		stop()
	}

	// Start assessment pipeline.
	done := make(chan struct{})
	go func() {
		defer close(done)
		if ctx.Err() != nil {
			return
		}
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	select {
	case <-done:
	case <-shutdownCtx.Done():
		logger.Warn("pipeline did not stop before shutdown timeout")
	}
	if err := reader.Close(); err != nil {
		logger.Error("kafka reader close error", "error", err)
	}
	if err := writer.Close(); err != nil {
		logger.Error("kafka writer close error", "error", err)
	}
	if store != nil {
		if err := store.Close(); err != nil {
			logger.Error("model store close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
