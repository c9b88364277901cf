// Cinematch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

/*
Package metrics registers Cinematch's Prometheus collectors with promauto.

Metrics are exposed at /metrics in Prometheus text format:

	curl http://localhost:8501/metrics

# Index

  - cinematch_index_build_duration_seconds{origin}: builds from source or snapshot
  - cinematch_index_builds_total{result}: success, error, unchanged
  - cinematch_index_items, cinematch_index_vocabulary_size, cinematch_index_degenerate_items
  - cinematch_catalog_dropped_rows_total{kind}

# Queries

  - cinematch_recommend_requests_total{outcome}, cinematch_recommend_duration_seconds{outcome}
  - api_requests_total, api_request_duration_seconds, api_active_requests

# Posters

  - cinematch_poster_fetches_total{result}, cinematch_poster_retries_total
  - circuit_breaker_state{name}: 0=closed, 1=half-open, 2=open

# Caches and events

  - cinematch_cache_hits_total{cache}, cinematch_cache_misses_total{cache}
  - cinematch_cache_purges_total{cache}
  - cinematch_events_published_total{topic,result}, cinematch_events_consumed_total{topic}

Collectors are package globals, so tests read deltas with
prometheus/testutil rather than absolute values.
*/
package metrics
