// Cinematch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

// Package config loads Cinematch configuration with Koanf v2.
//
// Sources, lowest precedence first:
//
//  1. Defaults compiled into defaultConfig
//  2. A YAML file: CONFIG_PATH, else config.yaml or /etc/cinematch/config.yaml
//  3. Environment variables listed in envMappings
//
// A minimal file:
//
//	catalog:
//	  source: csv
//	  movies_path: /data/tmdb_5000_movies.csv
//	  credits_path: /data/tmdb_5000_credits.csv
//	tmdb:
//	  enabled: true   # key from TMDB_API_KEY
//
// Common variables: HTTP_PORT, LOG_LEVEL, CATALOG_SOURCE, MOVIES_CSV,
// CREDITS_CSV, MERGE_POLICY, TMDB_ENABLED, TMDB_API_KEY, REDIS_ENABLED,
// REDIS_ADDR, EVENTS_BACKEND, NATS_URL, NATS_EMBEDDED.
package config
