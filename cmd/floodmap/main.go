package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/floodwatch-map-service/internal/adapter/geojson"
	httpadapter "github.com/couchcryptid/floodwatch-map-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/floodwatch-map-service/internal/adapter/kafka"
	"github.com/couchcryptid/floodwatch-map-service/internal/adapter/waterapi"
	"github.com/couchcryptid/floodwatch-map-service/internal/config"
	"github.com/couchcryptid/floodwatch-map-service/internal/domain"
	"github.com/couchcryptid/floodwatch-map-service/internal/geoselect"
	"github.com/couchcryptid/floodwatch-map-service/internal/observability"
	"github.com/couchcryptid/floodwatch-map-service/internal/refresh"
	"github.com/couchcryptid/floodwatch-map-service/internal/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	boundaries, err := geojson.Load(cfg.BoundariesPath)
	if err != nil {
		logger.Error("failed to load province boundaries", "error", err)
		os.Exit(1)
	}
	logger.Info("province boundaries loaded", "provinces", boundaries.Len(), "path", cfg.BoundariesPath)

	mapCfg := geoselect.Config{
		DisclosureZoom: cfg.DisclosureZoom,
		MinZoom:        cfg.MinZoom,
		MaxZoom:        cfg.MaxZoom,
		FitPadding:     cfg.FitPadding,
		FitMaxZoom:     cfg.FitMaxZoom,
		ViewportWidth:  cfg.ViewportWidth,
		ViewportHeight: cfg.ViewportHeight,
	}
	if err := mapCfg.Validate(); err != nil {
		logger.Error("invalid map config", "error", err)
		os.Exit(1)
	}

	// Navigation intents go to Kafka when brokers are configured.
	var nav geoselect.Navigator
	var navWriter *kafkaadapter.NavigationWriter
	if cfg.KafkaEnabled() {
		navWriter = kafkaadapter.NewNavigationWriter(cfg, logger)
		nav = navWriter
		logger.Info("kafka navigation enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaNavigationTopic)
	} else {
		nav = geoselect.LogNavigator(logger)
		logger.Info("kafka navigation disabled")
	}

	var source session.DataSource = waterapi.NewClient(cfg.WaterAPIURL, cfg.WaterAPITimeout, metrics, logger)
	if cfg.HistoryCacheSize > 0 {
		source = waterapi.NewCachedSource(source, cfg.HistoryCacheSize, cfg.HistoryCacheTTL, metrics)
	}
	ctrl := geoselect.NewController(boundaries, mapCfg, nav, logger)
	initial := ctrl.Initial(domain.Geo{Lat: cfg.InitialLat, Lon: cfg.InitialLon}, cfg.InitialZoom)
	sess := session.New(ctrl, source, initial, cfg.DisplayTimezone, logger, metrics)

	srv := httpadapter.NewServer(cfg.HTTPAddr, sess, sess, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start map session.
	sessionDone := make(chan struct{})
	go func() {
		defer close(sessionDone)
		if err := sess.Run(ctx); err != nil {
			logger.Error("session error", "error", err)
		}
	}()

	// Start periodic snapshot refresh.
	if cfg.RefreshSchedule != "" {
		refresher, err := refresh.New(cfg.RefreshSchedule, sess, logger)
		if err != nil {
			logger.Error("failed to schedule snapshot refresh", "error", err)
			os.Exit(1)
		}
		go func() {
			if err := refresher.Run(ctx); err != nil {
				logger.Error("snapshot refresh error", "error", err)
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
	select {
	case <-sessionDone:
	case <-shutdownCtx.Done():
		logger.Warn("session did not stop before shutdown timeout")
	}
	if navWriter != nil {
		if err := navWriter.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
