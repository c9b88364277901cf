// Cinematch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package main

import (
	"context"
	"fmt"

	"github.com/tomtom215/cinematch/internal/config"
	"github.com/tomtom215/cinematch/internal/logging"
	"github.com/tomtom215/cinematch/internal/media"
)

// MediaComponents holds the poster client and its optional shared cache.
type MediaComponents struct {
	TMDB  *media.TMDBClient
	Redis *media.RedisCache
}

// Close releases the Redis connection.
func (c *MediaComponents) Close() {
	if c.Redis == nil {
		return
	}
	if err := c.Redis.Close(); err != nil {
		logging.Warn().Err(err).Msg("error closing redis poster cache")
	}
}

// initMedia creates the TMDB poster client. Returns nil when TMDB is
// disabled. An unreachable Redis is not fatal: posters are then cached
// only in process.
func initMedia(ctx context.Context, cfg *config.Config) (*MediaComponents, error) {
	if !cfg.TMDB.Enabled {
		logging.Info().Msg("poster lookups disabled (TMDB_ENABLED=false)")
		return nil, nil
	}

	t := cfg.TMDB
	client, err := media.NewTMDBClient(media.Config{
		APIKey:          t.APIKey,
		APIBaseURL:      t.APIBaseURL,
		ImageBaseURL:    t.ImageBaseURL,
		Timeout:         t.Timeout,
		MaxRetries:      t.MaxRetries,
		RetryBackoff:    t.RetryBackoff,
		RatePerSecond:   t.RatePerSecond,
		RateBurst:       t.RateBurst,
		BreakerFailures: t.BreakerFailures,
		BreakerTimeout:  t.BreakerTimeout,
		CacheSize:       t.CacheSize,
		CacheTTL:        t.CacheTTL,
		Concurrency:     t.Concurrency,
	}, logging.WithComponent("tmdb"))
	if err != nil {
		return nil, fmt.Errorf("create tmdb client: %w", err)
	}
	comps := &MediaComponents{TMDB: client}

	if cfg.Redis.Enabled {
		r := cfg.Redis
		rc, err := media.NewRedisCache(ctx, media.RedisConfig{
			Addr:      r.Addr,
			Password:  r.Password,
			DB:        r.DB,
			TTL:       r.TTL,
			KeyPrefix: r.KeyPrefix,
		})
		if err != nil {
			logging.Warn().Err(err).Str("addr", r.Addr).Msg("redis poster cache unavailable, using in-process cache only")
		} else {
			client.SetSharedCache(rc)
			comps.Redis = rc
			logging.Info().Str("addr", r.Addr).Dur("ttl", r.TTL).Msg("redis poster cache connected")
		}
	}

	logging.Info().
		Float64("rate_per_second", t.RatePerSecond).
		Int("concurrency", t.Concurrency).
		Int("max_retries", t.MaxRetries).
		Msg("tmdb poster client created")
	return comps, nil
}
