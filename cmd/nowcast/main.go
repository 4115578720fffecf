package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/fire-nowcast-engine/internal/adapter/fieldsvc"
	httpadapter "github.com/couchcryptid/fire-nowcast-engine/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/fire-nowcast-engine/internal/adapter/kafka"
	"github.com/couchcryptid/fire-nowcast-engine/internal/calibration"
	"github.com/couchcryptid/fire-nowcast-engine/internal/config"
	"github.com/couchcryptid/fire-nowcast-engine/internal/fields"
	"github.com/couchcryptid/fire-nowcast-engine/internal/observability"
	"github.com/couchcryptid/fire-nowcast-engine/internal/pipeline"
	"github.com/couchcryptid/fire-nowcast-engine/internal/store"
)

// calibrationSamples is the synthetic sample count for the startup fit.
const calibrationSamples = 4096

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	// Field provider (feature-flagged via FIELD_SERVICE_URL).
	var provider fields.Provider
	if cfg.FieldServiceURL != "" {
		client := fieldsvc.NewClient(cfg.FieldServiceURL, cfg.FieldServiceTimeout, logger)
		provider = fieldsvc.NewCachedProvider(client, cfg.FieldCacheSize, cfg.FieldCacheMaxAge)
		logger.Info("field service enabled",
			"url", cfg.FieldServiceURL,
			"cache_size", cfg.FieldCacheSize,
			"cache_max_age", cfg.FieldCacheMaxAge,
		)
	} else {
		synthCfg := fields.DefaultSyntheticConfig()
		synthCfg.H, synthCfg.W = cfg.GridH, cfg.GridW
		provider = fields.NewSynthetic(synthCfg)
		logger.Info("field service not configured, using synthetic fields",
			"grid_h", cfg.GridH, "grid_w", cfg.GridW)
	}

	calibrator, err := calibration.FitSynthetic(calibrationSamples, cfg.Engine.BaseSeed)
	if err != nil {
		logger.Error("calibration fit failed", "error", err)
		os.Exit(1)
	}

	engine := pipeline.NewEngine(provider, calibrator, cfg.Engine, cfg.MinConfidence, logger, metrics)

	reader := kafkaadapter.NewReader(cfg, logger)
	writer := kafkaadapter.NewWriter(cfg, logger)
	catalog := store.New()

	p := pipeline.New(reader, engine, writer, catalog, logger, metrics, cfg.BatchSize)

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, catalog, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start nowcast pipeline.
	go func() {
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
	if err := reader.Close(); err != nil {
		logger.Error("kafka reader close error", "error", err)
	}
	if err := writer.Close(); err != nil {
		logger.Error("kafka writer close error", "error", err)
	}

	logger.Info("shutdown complete")
}
