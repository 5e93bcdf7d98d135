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

	"github.com/couchcryptid/accident-severity/internal/adapter/forest"
	"github.com/couchcryptid/accident-severity/internal/adapter/geoip"
	httpadapter "github.com/couchcryptid/accident-severity/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/accident-severity/internal/adapter/kafka"
	"github.com/couchcryptid/accident-severity/internal/config"
	"github.com/couchcryptid/accident-severity/internal/domain"
	"github.com/couchcryptid/accident-severity/internal/form"
	"github.com/couchcryptid/accident-severity/internal/observability"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	// The model is loaded once; the service does not start without it.
	model, err := loadModel(cfg.ModelPath)
	if err != nil {
		logger.Error("failed to load model", "path", cfg.ModelPath, "error", err)
		os.Exit(1)
	}
	metrics.ModelLoaded.Set(1)
	logger.Info("model loaded", "path", cfg.ModelPath, "trees", len(model.Trees), "classes", model.Classes)
	classifier := domain.NewClassifier(model)

	// Initialize dynamic location (feature-flagged via GEO_ENABLED).
	var (
		ips     domain.IPResolver
		locator domain.Locator
	)
	if cfg.GeoEnabled {
		client := geoip.NewClient(cfg.GeoIPURL, cfg.GeoLocationURL, cfg.GeoToken, cfg.GeoTimeout, metrics, logger)
		ips = geoip.NewCachedIPResolver(client, metrics)
		locator = geoip.NewCachedLocator(client, cfg.GeoCacheSize, metrics)
		logger.Info("dynamic location enabled", "cache_size", cfg.GeoCacheSize, "timeout", cfg.GeoTimeout)
	} else {
		logger.Info("dynamic location disabled")
	}

	// Initialize prediction events (enabled when KAFKA_BROKERS is set).
	var (
		publisher form.Publisher
		events    *kafkaadapter.Publisher
	)
	if cfg.PublishEnabled() {
		events = kafkaadapter.NewPublisher(cfg, metrics, logger)
		publisher = events
		logger.Info("prediction events enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}

	ctrl := form.NewController(classifier, ips, locator, publisher, logger, metrics)
	srv := httpadapter.NewServer(cfg.HTTPAddr, ctrl, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if events != nil {
		if err := events.Close(); err != nil {
			logger.Error("kafka publisher close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}

func loadModel(path string) (*forest.Ensemble, error) {
	model, err := forest.Load(path)
	if err != nil {
		return nil, err
	}
	if model.NFeatures != domain.FeatureCount {
		return nil, fmt.Errorf("model expects %d features, form produces %d", model.NFeatures, domain.FeatureCount)
	}
	return model, nil
}
