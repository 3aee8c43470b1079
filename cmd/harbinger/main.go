package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/harbinger/internal/adapter/http"
	"github.com/couchcryptid/harbinger/internal/adapter/geocode"
	kafkaadapter "github.com/couchcryptid/harbinger/internal/adapter/kafka"
	"github.com/couchcryptid/harbinger/internal/config"
	"github.com/couchcryptid/harbinger/internal/domain"
	"github.com/couchcryptid/harbinger/internal/observability"
	"github.com/couchcryptid/harbinger/internal/pipeline"
	"github.com/couchcryptid/harbinger/internal/store"
	"github.com/couchcryptid/harbinger/internal/triage"
	"github.com/couchcryptid/harbinger/internal/worker"
	"github.com/joho/godotenv"
)

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger, metrics); err != nil {
		logger.Error("service failed", "error", err)
		os.Exit(1)
	}
	logger.Info("shutdown complete")
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) error {
	st, err := store.Open(ctx, cfg.DatabaseURL, cfg.UsesPostgres())
	if err != nil {
		return fmt.Errorf("open incident store: %w", err)
	}
	defer func() {
		if err := st.Close(); err != nil {
			logger.Error("incident store close error", "error", err)
		}
	}()

	svc := triage.NewService(newGeocoder(cfg, logger, metrics), cfg.AnalysisCacheTTL, logger, metrics,
		triage.WithMaxImagePixels(cfg.MaxImagePixels))

	ready := readinessChecks{st}
	var p *pipeline.Pipeline
	var reader *kafkaadapter.Reader
	var writer *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		reader = kafkaadapter.NewReader(cfg, logger)
		writer = kafkaadapter.NewWriter(cfg, logger)
		loader := pipeline.MultiLoader{store.NewLoader(st, logger, metrics), writer}
		p = pipeline.New(reader, pipeline.NewTransformer(svc), loader, logger, metrics, pipeline.Options{
			BatchSize: cfg.BatchSize,
			Workers:   cfg.AnalysisWorkers,
		})
		ready = append(ready, p)
	} else {
		logger.Info("kafka pipeline disabled")
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, httpadapter.Deps{
		Ready:          ready,
		Triager:        svc,
		Store:          st,
		Metrics:        metrics,
		Limiter:        worker.NewLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
		MaxUploadBytes: cfg.MaxUploadBytes,
	}, logger)

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start triage pipeline.
	if p != nil {
		go func() {
			if err := p.Run(ctx); err != nil {
				logger.Error("pipeline error", "error", err)
			}
		}()
	}

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if reader != nil {
		if err := reader.Close(); err != nil {
			logger.Error("kafka reader close error", "error", err)
		}
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}
	return nil
}

// newGeocoder builds the location table, with the cached Mapbox client as
// its fallback when MAPBOX_ENABLED / MAPBOX_TOKEN allow it.
func newGeocoder(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) domain.Geocoder {
	var fallback domain.Geocoder
	if cfg.MapboxEnabled {
		client := geocode.NewMapboxClient(cfg.MapboxToken, cfg.MapboxTimeout, logger, metrics)
		fallback = geocode.NewCachedGeocoder(client, cfg.MapboxCacheSize, metrics)
		metrics.GeocodeEnabled.Set(1)
		logger.Info("mapbox geocoding enabled", "cache_size", cfg.MapboxCacheSize, "timeout", cfg.MapboxTimeout)
	} else {
		metrics.GeocodeEnabled.Set(0)
		logger.Info("mapbox geocoding disabled")
	}
	return geocode.NewTable(fallback, logger, metrics)
}

type readinessCheck interface {
	CheckReadiness(ctx context.Context) error
}

// readinessChecks is ready when every member is.
type readinessChecks []readinessCheck

func (r readinessChecks) CheckReadiness(ctx context.Context) error {
	for _, c := range r {
		if err := c.CheckReadiness(ctx); err != nil {
			return err
		}
	}
	return nil
}
