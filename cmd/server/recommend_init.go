// Cinematch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tomtom215/cinematch/internal/catalog"
	"github.com/tomtom215/cinematch/internal/config"
	"github.com/tomtom215/cinematch/internal/logging"
	"github.com/tomtom215/cinematch/internal/recommend"
	"github.com/tomtom215/cinematch/internal/recommend/storage"
	"github.com/tomtom215/cinematch/internal/supervisor/services"
)

// RecommendComponents holds the engine and the resources it reads from.
type RecommendComponents struct {
	Engine *recommend.Engine
	Store  *storage.Store

	closers []func(context.Context) error
}

// Close releases the source and the snapshot store.
func (c *RecommendComponents) Close(ctx context.Context) {
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](ctx); err != nil {
			logging.Warn().Err(err).Msg("error releasing recommend resources")
		}
	}
}

// initRecommend opens the catalog source and snapshot store and creates the
// engine. The index itself is built by the supervised IndexService.
//
//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func initRecommend(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*RecommendComponents, error) {
	engineCfg, err := buildEngineConfig(cfg)
	if err != nil {
		return nil, err
	}

	comps := &RecommendComponents{}

	source, closeSource, err := newSource(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if closeSource != nil {
		comps.closers = append(comps.closers, closeSource)
	}

	engine, err := recommend.NewEngine(engineCfg, source, logger.With().Str("component", "engine").Logger())
	if err != nil {
		comps.Close(ctx)
		return nil, fmt.Errorf("create engine: %w", err)
	}
	comps.Engine = engine

	if cfg.Store.Enabled {
		store, err := storage.Open(storage.Config{
			Path:         cfg.Store.Path,
			MaxSnapshots: cfg.Store.MaxSnapshots,
		})
		if err != nil {
			comps.Close(ctx)
			return nil, fmt.Errorf("open snapshot store: %w", err)
		}
		engine.SetSnapshotStore(store)
		comps.Store = store
		comps.closers = append(comps.closers, func(context.Context) error { return store.Close() })
		logger.Info().Str("path", cfg.Store.Path).Int("max_snapshots", cfg.Store.MaxSnapshots).Msg("snapshot store opened")
	} else {
		logger.Info().Msg("snapshot store disabled (SNAPSHOT_STORE_ENABLED=false)")
	}

	logger.Info().
		Str("source", source.Name()).
		Int("max_features", engineCfg.MaxFeatures).
		Int("default_k", engineCfg.DefaultK).
		Str("merge_policy", engineCfg.MergePolicy.String()).
		Msg("recommendation engine created")

	return comps, nil
}

// indexServiceConfig maps the catalog section onto the index builder.
func indexServiceConfig(cfg *config.Config) services.IndexServiceConfig {
	return services.IndexServiceConfig{
		ReloadInterval: cfg.Catalog.ReloadInterval,
		FailOnStartup:  cfg.Catalog.FailOnStartup,
	}
}

// buildEngineConfig maps the recommend and catalog config sections.
func buildEngineConfig(cfg *config.Config) (*recommend.Config, error) {
	policy, err := recommend.ParseMergePolicy(cfg.Catalog.MergePolicy)
	if err != nil {
		return nil, err
	}

	engineCfg := recommend.DefaultConfig()
	engineCfg.MaxFeatures = cfg.Recommend.MaxFeatures
	engineCfg.MinTokenLength = cfg.Recommend.MinTokenLength
	engineCfg.DefaultK = cfg.Recommend.DefaultK
	engineCfg.MaxK = cfg.Recommend.MaxK
	engineCfg.Workers = cfg.Recommend.Workers
	engineCfg.BuildTimeout = cfg.Recommend.BuildTimeout
	engineCfg.MergePolicy = policy

	if err := engineCfg.Validate(); err != nil {
		return nil, fmt.Errorf("recommend config: %w", err)
	}
	return engineCfg, nil
}

// newSource opens the configured catalog source. The returned closer is
// nil for sources that hold no connection.
func newSource(ctx context.Context, cfg *config.Config) (recommend.DataSource, func(context.Context) error, error) {
	switch cfg.Catalog.Source {
	case "csv":
		src, err := catalog.NewCSVSource(catalog.CSVConfig{
			MoviesPath:    cfg.Catalog.MoviesPath,
			CreditsPath:   cfg.Catalog.CreditsPath,
			MovieIDColumn: cfg.Catalog.MovieIDColumn,
			Threads:       cfg.DuckDB.Threads,
			MaxMemory:     cfg.DuckDB.MaxMemory,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("csv catalog: %w", err)
		}
		return src, nil, nil

	case "mongo":
		m := cfg.Catalog.Mongo
		src, err := catalog.NewMongoSource(ctx, catalog.MongoConfig{
			URI:               m.URI,
			Database:          m.Database,
			MoviesCollection:  m.MoviesCollection,
			CreditsCollection: m.CreditsCollection,
			MovieIDField:      cfg.Catalog.MovieIDColumn,
			ConnectTimeout:    m.ConnectTimeout,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("mongo catalog: %w", err)
		}
		return src, src.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown catalog source %q (want csv or mongo)", cfg.Catalog.Source)
	}
}
