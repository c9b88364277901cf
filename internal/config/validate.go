// Cinematch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package config

import (
	"fmt"
	"net"
	"net/url"

	"github.com/tomtom215/cinematch/internal/logging"
	"github.com/tomtom215/cinematch/internal/validation"
)

// Validate checks field ranges with struct tags, then the rules that span
// several fields.
func (c *Config) Validate() error {
	if verr := validation.ValidateStruct(c); verr != nil {
		return verr
	}

	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error, disabled")
	}

	for _, check := range []func() error{
		c.validateCatalog,
		c.validateRecommend,
		c.validateStore,
		c.validateTMDB,
		c.validateRedis,
		c.validateEvents,
	} {
		if err := check(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateCatalog() error {
	switch c.Catalog.Source {
	case "csv":
		if c.Catalog.MoviesPath == "" || c.Catalog.CreditsPath == "" {
			return fmt.Errorf("MOVIES_CSV and CREDITS_CSV are required when CATALOG_SOURCE=csv")
		}
	case "mongo":
		if c.Catalog.Mongo.URI == "" {
			return fmt.Errorf("MONGO_URI is required when CATALOG_SOURCE=mongo")
		}
	}
	return nil
}

func (c *Config) validateRecommend() error {
	if c.Recommend.DefaultK > c.Recommend.MaxK {
		return fmt.Errorf("RECOMMEND_DEFAULT_K (%d) must not exceed RECOMMEND_MAX_K (%d)",
			c.Recommend.DefaultK, c.Recommend.MaxK)
	}
	return nil
}

func (c *Config) validateStore() error {
	if c.Store.Enabled && c.Store.Path == "" {
		return fmt.Errorf("SNAPSHOT_STORE_PATH is required when the snapshot store is enabled")
	}
	return nil
}

func (c *Config) validateTMDB() error {
	if !c.TMDB.Enabled {
		return nil
	}
	if c.TMDB.APIKey == "" {
		return fmt.Errorf("TMDB_API_KEY is required when TMDB_ENABLED=true")
	}
	return validateHTTPURL(c.TMDB.APIBaseURL, "TMDB_API_BASE_URL")
}

func (c *Config) validateRedis() error {
	if !c.Redis.Enabled {
		return nil
	}
	if _, _, err := net.SplitHostPort(c.Redis.Addr); err != nil {
		return fmt.Errorf("REDIS_ADDR must be host:port: %w", err)
	}
	return nil
}

func (c *Config) validateEvents() error {
	if !c.Events.Enabled || c.Events.Backend != "nats" {
		return nil
	}
	u, err := url.Parse(c.Events.URL)
	if err != nil || u.Scheme != "nats" || u.Host == "" {
		return fmt.Errorf("NATS_URL must be nats://host:port, got %q", c.Events.URL)
	}
	if c.Events.Embedded && u.Port() == "" {
		return fmt.Errorf("NATS_URL needs an explicit port when NATS_EMBEDDED=true")
	}
	return nil
}

// validateHTTPURL accepts absolute http(s) URLs without query strings.
func validateHTTPURL(raw, name string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s failed to parse URL: %w", name, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s scheme must be http or https, got: %s", name, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%s host is required", name)
	}
	if u.RawQuery != "" {
		return fmt.Errorf("%s should not contain query parameters", name)
	}
	return nil
}
