// Cinematch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths are searched in order when CONFIG_PATH is unset.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/cinematch/config.yaml",
	"/etc/cinematch/config.yml",
}

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "CONFIG_PATH"

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:              "0.0.0.0",
			Port:              8501,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      60 * time.Second,
			IdleTimeout:       2 * time.Minute,
			ShutdownTimeout:   10 * time.Second,
			CORSOrigins:       []string{"*"},
			RateLimitRequests: 120,
			RateLimitWindow:   time.Minute,
			ResponseCacheSize: 1024,
			ResponseCacheTTL:  10 * time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Catalog: CatalogConfig{
			Source:         "csv",
			MoviesPath:     "/data/tmdb_5000_movies.csv",
			CreditsPath:    "/data/tmdb_5000_credits.csv",
			MovieIDColumn:  "id",
			MergePolicy:    "drop",
			ReloadInterval: 5 * time.Minute,
			Mongo: MongoConfig{
				Database:          "cinematch",
				MoviesCollection:  "movies",
				CreditsCollection: "credits",
				ConnectTimeout:    10 * time.Second,
			},
		},
		Recommend: RecommendConfig{
			MaxFeatures:    5000,
			MinTokenLength: 2,
			DefaultK:       5,
			MaxK:           50,
			Workers:        0, // 0 = runtime.NumCPU()
			BuildTimeout:   10 * time.Minute,
		},
		Store: StoreConfig{
			Enabled:      true,
			Path:         "/data/snapshots",
			MaxSnapshots: 3,
			GCInterval:   time.Hour,
		},
		DuckDB: DuckDBConfig{
			Threads:   2,
			MaxMemory: "1GB",
		},
		TMDB: TMDBConfig{
			Enabled:         false,
			APIBaseURL:      "https://api.themoviedb.org/3",
			ImageBaseURL:    "https://image.tmdb.org/t/p/w500",
			Timeout:         10 * time.Second,
			MaxRetries:      3,
			RetryBackoff:    500 * time.Millisecond,
			RatePerSecond:   20,
			RateBurst:       5,
			BreakerFailures: 5,
			BreakerTimeout:  30 * time.Second,
			CacheSize:       5000,
			CacheTTL:        24 * time.Hour,
			Concurrency:     5,
		},
		Redis: RedisConfig{
			Enabled:   false,
			Addr:      "127.0.0.1:6379",
			TTL:       7 * 24 * time.Hour,
			KeyPrefix: "cinematch:poster:",
		},
		Events: EventsConfig{
			Enabled:  true,
			Backend:  "memory",
			URL:      "nats://127.0.0.1:4222",
			Embedded: false,
			StoreDir: "/data/nats",
			Topic:    "catalog.index.rebuilt",
		},
	}
}

// Load builds the configuration from defaults, the config file, and the
// environment, in increasing precedence, then validates it.
func Load() (*Config, error) {
	return LoadFile(findConfigFile())
}

// LoadFile is Load with an explicit config file path. An empty path skips
// the file layer.
func LoadFile(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

var sliceConfigPaths = []string{
	"server.cors_origins",
}

// processSliceFields splits comma-separated env values for slice fields.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		s, ok := k.Get(path).(string)
		if !ok || s == "" {
			continue
		}
		var parts []string
		for _, p := range strings.Split(s, ",") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		if err := k.Set(path, parts); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps environment variable names (lower-cased) to koanf paths.
// Unmapped variables are ignored.
var envMappings = map[string]string{
	"http_host":           "server.host",
	"http_port":           "server.port",
	"http_read_timeout":   "server.read_timeout",
	"http_write_timeout":  "server.write_timeout",
	"http_idle_timeout":   "server.idle_timeout",
	"shutdown_timeout":    "server.shutdown_timeout",
	"cors_origins":        "server.cors_origins",
	"rate_limit_requests": "server.rate_limit_requests",
	"rate_limit_window":   "server.rate_limit_window",
	"disable_rate_limit":  "server.rate_limit_disabled",
	"response_cache_size": "server.response_cache_size",
	"response_cache_ttl":  "server.response_cache_ttl",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	"catalog_source":           "catalog.source",
	"movies_csv":               "catalog.movies_path",
	"credits_csv":              "catalog.credits_path",
	"movie_id_column":          "catalog.movie_id_column",
	"merge_policy":             "catalog.merge_policy",
	"catalog_reload_interval":  "catalog.reload_interval",
	"catalog_fail_on_startup":  "catalog.fail_on_startup",
	"mongo_uri":                "catalog.mongo.uri",
	"mongo_database":           "catalog.mongo.database",
	"mongo_movies_collection":  "catalog.mongo.movies_collection",
	"mongo_credits_collection": "catalog.mongo.credits_collection",
	"mongo_connect_timeout":    "catalog.mongo.connect_timeout",

	"recommend_max_features":     "recommend.max_features",
	"recommend_min_token_length": "recommend.min_token_length",
	"recommend_default_k":        "recommend.default_k",
	"recommend_max_k":            "recommend.max_k",
	"recommend_workers":          "recommend.workers",
	"recommend_build_timeout":    "recommend.build_timeout",

	"snapshot_store_enabled": "store.enabled",
	"snapshot_store_path":    "store.path",
	"snapshot_max_count":     "store.max_snapshots",
	"snapshot_gc_interval":   "store.gc_interval",

	"duckdb_threads":    "duckdb.threads",
	"duckdb_max_memory": "duckdb.max_memory",

	"tmdb_enabled":          "tmdb.enabled",
	"tmdb_api_key":          "tmdb.api_key",
	"tmdb_api_base_url":     "tmdb.api_base_url",
	"tmdb_image_base_url":   "tmdb.image_base_url",
	"tmdb_timeout":          "tmdb.timeout",
	"tmdb_max_retries":      "tmdb.max_retries",
	"tmdb_retry_backoff":    "tmdb.retry_backoff",
	"tmdb_rate_per_second":  "tmdb.rate_per_second",
	"tmdb_rate_burst":       "tmdb.rate_burst",
	"tmdb_breaker_failures": "tmdb.breaker_failures",
	"tmdb_breaker_timeout":  "tmdb.breaker_timeout",
	"tmdb_cache_size":       "tmdb.cache_size",
	"tmdb_cache_ttl":        "tmdb.cache_ttl",
	"tmdb_concurrency":      "tmdb.concurrency",

	"redis_enabled":    "redis.enabled",
	"redis_addr":       "redis.addr",
	"redis_password":   "redis.password",
	"redis_db":         "redis.db",
	"redis_ttl":        "redis.ttl",
	"redis_key_prefix": "redis.key_prefix",

	"events_enabled": "events.enabled",
	"events_backend": "events.backend",
	"nats_url":       "events.url",
	"nats_embedded":  "events.embedded",
	"nats_store_dir": "events.store_dir",
	"events_topic":   "events.topic",
}

// envTransformFunc maps TMDB_API_KEY to tmdb.api_key, and so on. Returning ""
// drops the variable.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
