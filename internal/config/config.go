// Cinematch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package config

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// Config is the complete process configuration.
//
// Values are layered: struct defaults, then an optional YAML file, then
// environment variables. See Load.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Logging   LoggingConfig   `koanf:"logging"`
	Catalog   CatalogConfig   `koanf:"catalog"`
	Recommend RecommendConfig `koanf:"recommend"`
	Store     StoreConfig     `koanf:"store"`
	DuckDB    DuckDBConfig    `koanf:"duckdb"`
	TMDB      TMDBConfig      `koanf:"tmdb"`
	Redis     RedisConfig     `koanf:"redis"`
	Events    EventsConfig    `koanf:"events"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port" validate:"gte=1,lte=65535"`
	ReadTimeout     time.Duration `koanf:"read_timeout" validate:"gt=0"`
	WriteTimeout    time.Duration `koanf:"write_timeout" validate:"gt=0"`
	IdleTimeout     time.Duration `koanf:"idle_timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
	CORSOrigins     []string      `koanf:"cors_origins"`

	// RateLimitRequests per RateLimitWindow per client IP.
	RateLimitRequests int           `koanf:"rate_limit_requests" validate:"gte=0"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window" validate:"gt=0"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`

	// ResponseCacheSize bounds the recommendation response cache. 0 disables it.
	ResponseCacheSize int           `koanf:"response_cache_size" validate:"gte=0"`
	ResponseCacheTTL  time.Duration `koanf:"response_cache_ttl" validate:"gte=0"`
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// LoggingConfig configures internal/logging.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// CatalogConfig selects and locates the movie and credit records.
type CatalogConfig struct {
	// Source is csv or mongo.
	Source        string `koanf:"source" validate:"oneof=csv mongo"`
	MoviesPath    string `koanf:"movies_path"`
	CreditsPath   string `koanf:"credits_path"`
	MovieIDColumn string `koanf:"movie_id_column"`

	// MergePolicy is drop (skip rows without a partner) or strict (fail).
	MergePolicy string `koanf:"merge_policy" validate:"oneof=drop strict"`

	// ReloadInterval is how often the source fingerprint is polled.
	// 0 disables polling; the index is then built once at startup.
	ReloadInterval time.Duration `koanf:"reload_interval" validate:"gte=0"`

	// FailOnStartup hands a failed first build to the supervisor, which
	// restarts the index builder with backoff. When false the builder keeps
	// running and retries on the next poll.
	FailOnStartup bool `koanf:"fail_on_startup"`

	Mongo MongoConfig `koanf:"mongo"`
}

// MongoConfig locates the catalog collections when Source is mongo.
type MongoConfig struct {
	URI               string        `koanf:"uri"`
	Database          string        `koanf:"database"`
	MoviesCollection  string        `koanf:"movies_collection"`
	CreditsCollection string        `koanf:"credits_collection"`
	ConnectTimeout    time.Duration `koanf:"connect_timeout" validate:"gt=0"`
}

// RecommendConfig tunes the vectorizer and query limits.
type RecommendConfig struct {
	MaxFeatures    int           `koanf:"max_features" validate:"gte=1"`
	MinTokenLength int           `koanf:"min_token_length" validate:"gte=1"`
	DefaultK       int           `koanf:"default_k" validate:"gte=1"`
	MaxK           int           `koanf:"max_k" validate:"gte=1"`
	Workers        int           `koanf:"workers" validate:"gte=0"`
	BuildTimeout   time.Duration `koanf:"build_timeout" validate:"gt=0"`
}

// StoreConfig configures the Badger snapshot store.
type StoreConfig struct {
	Enabled      bool          `koanf:"enabled"`
	Path         string        `koanf:"path"`
	MaxSnapshots int           `koanf:"max_snapshots" validate:"gte=1"`
	GCInterval   time.Duration `koanf:"gc_interval" validate:"gte=0"`
}

// DuckDBConfig tunes the in-memory DuckDB used to read CSV files.
type DuckDBConfig struct {
	Threads   int    `koanf:"threads" validate:"gte=1"`
	MaxMemory string `koanf:"max_memory" validate:"required"`
}

// TMDBConfig configures poster lookups.
type TMDBConfig struct {
	Enabled      bool   `koanf:"enabled"`
	APIKey       string `koanf:"api_key"`
	APIBaseURL   string `koanf:"api_base_url" validate:"url"`
	ImageBaseURL string `koanf:"image_base_url" validate:"url"`

	Timeout      time.Duration `koanf:"timeout" validate:"gt=0"`
	MaxRetries   int           `koanf:"max_retries" validate:"gte=0,lte=10"`
	RetryBackoff time.Duration `koanf:"retry_backoff" validate:"gt=0"`

	RatePerSecond float64 `koanf:"rate_per_second" validate:"gt=0"`
	RateBurst     int     `koanf:"rate_burst" validate:"gte=1"`

	BreakerFailures uint32        `koanf:"breaker_failures" validate:"gte=1"`
	BreakerTimeout  time.Duration `koanf:"breaker_timeout" validate:"gt=0"`

	CacheSize int           `koanf:"cache_size" validate:"gte=0"`
	CacheTTL  time.Duration `koanf:"cache_ttl" validate:"gte=0"`

	// Concurrency bounds parallel lookups for a single response.
	Concurrency int `koanf:"concurrency" validate:"gte=1,lte=32"`
}

// RedisConfig configures the optional shared poster cache.
type RedisConfig struct {
	Enabled   bool          `koanf:"enabled"`
	Addr      string        `koanf:"addr"`
	Password  string        `koanf:"password"`
	DB        int           `koanf:"db" validate:"gte=0"`
	TTL       time.Duration `koanf:"ttl" validate:"gte=0"`
	KeyPrefix string        `koanf:"key_prefix"`
}

// EventsConfig configures index reload notifications.
type EventsConfig struct {
	Enabled bool `koanf:"enabled"`

	// Backend is memory (in-process) or nats.
	Backend string `koanf:"backend" validate:"oneof=memory nats"`
	URL     string `koanf:"url"`

	// Embedded starts an in-process NATS server listening on URL's port.
	Embedded bool   `koanf:"embedded"`
	StoreDir string `koanf:"store_dir"`
	Topic    string `koanf:"topic" validate:"required"`
}

func (c *Config) String() string {
	return fmt.Sprintf("source=%s addr=%s store=%t tmdb=%t redis=%t events=%s",
		c.Catalog.Source, c.Server.Addr(), c.Store.Enabled, c.TMDB.Enabled, c.Redis.Enabled, c.Events.Backend)
}
