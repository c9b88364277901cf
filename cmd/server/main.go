// Cinematch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/cinematch/internal/api"
	"github.com/tomtom215/cinematch/internal/config"
	"github.com/tomtom215/cinematch/internal/events"
	"github.com/tomtom215/cinematch/internal/logging"
	"github.com/tomtom215/cinematch/internal/supervisor"
	"github.com/tomtom215/cinematch/internal/supervisor/services"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

//nolint:gocyclo // Main initialization function with sequential setup steps
func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})

	logging.Info().Str("version", version).Str("config", cfg.String()).Msg("Starting Cinematch with supervisor tree")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Catalog source, snapshot store and engine
	rec, err := initRecommend(ctx, cfg, logging.WithComponent("recommend"))
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize recommendation engine")
	}
	defer rec.Close(context.Background())

	// Index events (optional)
	evts, err := initEvents(cfg)
	if err != nil {
		rec.Close(context.Background())
		logging.Fatal().Err(err).Msg("Failed to initialize index events")
	}
	if evts != nil {
		defer evts.Close()
		rec.Engine.OnRebuild(evts.Bus.RebuildHook())
	}

	// Poster lookups (optional)
	posters, err := initMedia(ctx, cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize poster client")
	}

	handlerCfg := api.HandlerConfig{
		Version:           version,
		ResponseCacheSize: cfg.Server.ResponseCacheSize,
		ResponseCacheTTL:  cfg.Server.ResponseCacheTTL,
	}
	if posters != nil {
		defer posters.Close()
		handlerCfg.Posters = posters.TMDB
	}

	handler := api.NewHandler(rec.Engine, handlerCfg)
	router := api.NewRouter(handler, api.NewChiMiddleware(api.ChiMiddlewareConfigFromServer(cfg.Server)))

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router.SetupChi(),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	// Create supervisor tree; slog adapter bridges zerolog for sutureslog
	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	// Data layer
	tree.AddDataService(services.NewIndexService(rec.Engine, indexServiceConfig(cfg), logging.WithComponent("index-builder")))
	if rec.Store != nil {
		tree.AddDataService(services.NewStoreGCService(rec.Store, cfg.Store.GCInterval, logging.WithComponent("store-gc")))
	}

	// Messaging layer
	if evts != nil {
		if evts.Server != nil {
			tree.AddMessagingService(services.NewNATSServerService(evts.Server))
		}
		consumer := events.NewConsumer(evts.Bus).Handle(handler.HandleIndexEvent)
		tree.AddMessagingService(services.NewConsumerService(consumer))
		logging.Info().Str("backend", evts.Bus.Backend()).Msg("index event consumer added to supervisor tree (messaging layer)")
	}

	// API layer
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server added to supervisor tree (API layer)")

	// Set up signal handling
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	// The channel carries exactly one result once the tree has stopped.
	var serveErr error
	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
		serveErr = <-errCh
	case serveErr = <-errCh:
	}
	if serveErr != nil && !errors.Is(serveErr, context.Canceled) {
		logging.Error().Err(serveErr).Msg("Supervisor tree error")
	}

	unstopped, _ := tree.UnstoppedServiceReport() //nolint:errcheck // report is best effort
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Application stopped gracefully")
}
