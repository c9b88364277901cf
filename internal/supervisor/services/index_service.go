// Cinematch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/cinematch/internal/metrics"
	"github.com/tomtom215/cinematch/internal/recommend"
)

// IndexBuilder is the engine surface the index service drives.
type IndexBuilder interface {
	Ensure(ctx context.Context) (*recommend.BuildResult, error)
}

// IndexServiceConfig controls startup and polling.
type IndexServiceConfig struct {
	// ReloadInterval is how often the source fingerprint is checked.
	// 0 builds once and then idles until shutdown.
	ReloadInterval time.Duration

	// FailOnStartup returns the initial build error to the supervisor,
	// which restarts the service with backoff.
	FailOnStartup bool
}

// IndexService builds the index at startup and keeps it current.
//
// Every tick calls Ensure, which is a no-op while the source fingerprint
// is unchanged and a rebuild (or snapshot restore) otherwise.
type IndexService struct {
	engine IndexBuilder
	config IndexServiceConfig
	logger zerolog.Logger
	name   string
}

// NewIndexService creates the service.
//
//nolint:gocritic // zerolog.Logger is passed by value
func NewIndexService(engine IndexBuilder, cfg IndexServiceConfig, logger zerolog.Logger) *IndexService {
	return &IndexService{
		engine: engine,
		config: cfg,
		logger: logger.With().Str("service", "index").Logger(),
		name:   "index-builder",
	}
}

// Serve implements suture.Service.
func (s *IndexService) Serve(ctx context.Context) error {
	s.logger.Info().Dur("reload_interval", s.config.ReloadInterval).Msg("index service starting")

	if err := s.ensure(ctx); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if s.config.FailOnStartup {
			return err
		}
		s.logger.Warn().Err(err).Msg("initial index build failed, retrying on schedule")
	}

	if s.config.ReloadInterval <= 0 {
		<-ctx.Done()
		return ctx.Err()
	}

	ticker := time.NewTicker(s.config.ReloadInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("index service shutting down")
			return ctx.Err()
		case <-ticker.C:
			if err := s.ensure(ctx); err != nil && ctx.Err() == nil {
				s.logger.Warn().Err(err).Msg("scheduled index check failed")
			}
		}
	}
}

func (s *IndexService) ensure(ctx context.Context) error {
	start := time.Now()
	res, err := s.engine.Ensure(ctx)
	if err != nil {
		metrics.RecordIndexBuild("build", time.Since(start), metrics.IndexSnapshot{}, err)
		return err
	}
	if !res.Rebuilt {
		metrics.RecordIndexUnchanged()
		return nil
	}

	origin := "build"
	if res.FromSnapshot {
		origin = "snapshot"
	}
	stats := res.Index.Stats()
	merge := res.Index.MergeStats()
	metrics.RecordIndexBuild(origin, time.Since(start), metrics.IndexSnapshot{
		Items:           stats.Items,
		VocabularySize:  stats.VocabularySize,
		DegenerateItems: stats.DegenerateItems,
		DroppedMovies:   merge.DroppedMovies,
		DroppedCredits:  merge.Credits - merge.Matched,
	}, nil)
	return nil
}

func (s *IndexService) String() string {
	return s.name
}
