// Cinematch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package media

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

// RedisConfig configures a RedisCache.
type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	TTL       time.Duration
	KeyPrefix string
}

// RedisCache stores poster lookups in Redis so replicas share them.
// Values are JSON-encoded Poster records with a TTL.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRedisCache connects and pings the server. The caller must Close it.
func NewRedisCache(ctx context.Context, cfg RedisConfig) (*RedisCache, error) {
	if cfg.Addr == "" {
		return nil, errors.New("redis address is required")
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 7 * 24 * time.Hour
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = "cinematch:poster:"
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close() //nolint:errcheck // connection never became usable
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}

	return newRedisCache(client, cfg.TTL, cfg.KeyPrefix), nil
}

func newRedisCache(client *redis.Client, ttl time.Duration, prefix string) *RedisCache {
	return &RedisCache{client: client, ttl: ttl, prefix: prefix}
}

func (r *RedisCache) key(movieID int64) string {
	return r.prefix + strconv.FormatInt(movieID, 10)
}

// Get implements PosterStore.
func (r *RedisCache) Get(ctx context.Context, movieID int64) (Poster, bool, error) {
	raw, err := r.client.Get(ctx, r.key(movieID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Poster{}, false, nil
	}
	if err != nil {
		return Poster{}, false, fmt.Errorf("redis get: %w", err)
	}
	p, err := decodePoster(raw, movieID)
	if err != nil {
		return Poster{}, false, err
	}
	return p, true, nil
}

// Set implements PosterStore.
func (r *RedisCache) Set(ctx context.Context, p Poster) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode poster: %w", err)
	}
	if err := r.client.Set(ctx, r.key(p.MovieID), raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Ping checks the connection.
func (r *RedisCache) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close releases the connection pool.
func (r *RedisCache) Close() error {
	return r.client.Close()
}

// decodePoster rejects values written for a different movie.
func decodePoster(raw []byte, movieID int64) (Poster, error) {
	var p Poster
	if err := json.Unmarshal(raw, &p); err != nil {
		return Poster{}, fmt.Errorf("decode poster: %w", err)
	}
	if p.MovieID != movieID {
		return Poster{}, fmt.Errorf("decode poster: stored movie id %d, want %d", p.MovieID, movieID)
	}
	return p, nil
}
