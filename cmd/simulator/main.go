package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/impact-simulator/internal/adapter/gemini"
	httpadapter "github.com/couchcryptid/impact-simulator/internal/adapter/http"
	"github.com/couchcryptid/impact-simulator/internal/adapter/jpl"
	kafkaadapter "github.com/couchcryptid/impact-simulator/internal/adapter/kafka"
	"github.com/couchcryptid/impact-simulator/internal/config"
	"github.com/couchcryptid/impact-simulator/internal/domain"
	"github.com/couchcryptid/impact-simulator/internal/observability"
	"github.com/couchcryptid/impact-simulator/internal/simulation"
	"github.com/jonboulle/clockwork"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	// Narrator (missing GEMINI_API_KEY fails each run, not startup).
	var narrator domain.Narrator = gemini.NewClient(cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GeminiBaseURL, cfg.GeminiTimeout, metrics, logger)
	if cfg.GeminiAPIKey == "" {
		logger.Warn("GEMINI_API_KEY not set; simulations will report a narrative error")
	}
	if cfg.NarrativeCacheSize > 0 {
		narrator = gemini.NewCachedNarrator(narrator, cfg.NarrativeCacheSize, metrics)
		logger.Info("narrative cache enabled", "cache_size", cfg.NarrativeCacheSize)
	}

	// Results sink (feature-flagged via KAFKA_BROKERS).
	var (
		publisher domain.ResultPublisher
		writer    *kafkaadapter.Writer
	)
	if cfg.KafkaEnabled() {
		writer = kafkaadapter.NewWriter(cfg, logger)
		publisher = writer
		logger.Info("kafka results sink enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}

	var feed domain.NeoFeed
	if cfg.NeoFeedEnabled {
		feed = jpl.NewClient(cfg.JPLBaseURL, cfg.JPLTimeout, cfg.NeoFeedLimit, logger)
	}

	store := simulation.NewStore(domain.InitialState())
	orch := simulation.New(store, narrator, logger, metrics, simulation.Options{
		ShootDelay:  cfg.ShootDelay,
		ImpactDelay: cfg.ImpactDelay,
		Clock:       clockwork.NewRealClock(),
		Publisher:   publisher,
	})
	loader := simulation.NewFeedLoader(feed, store, logger, metrics)

	srv := httpadapter.NewServer(cfg.HTTPAddr, store, orch, loader, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Fetch the near-Earth-object feed once.
	go loader.Load(ctx)

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := orch.Wait(shutdownCtx); err != nil {
		logger.Error("in-flight simulation did not finish", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
