// Cinematch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Index build metrics
	IndexBuildDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cinematch_index_build_duration_seconds",
			Help:    "Duration of index builds in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"origin"}, // "build" or "snapshot"
	)

	IndexBuildsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinematch_index_builds_total",
			Help: "Total number of index build attempts",
		},
		[]string{"result"}, // "success", "error", "unchanged"
	)

	IndexItems = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cinematch_index_items",
			Help: "Number of items in the active index",
		},
	)

	IndexVocabularySize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cinematch_index_vocabulary_size",
			Help: "Number of terms retained by the vectorizer",
		},
	)

	IndexDegenerateItems = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cinematch_index_degenerate_items",
			Help: "Items in the active index whose feature vector is all zeros",
		},
	)

	IndexLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cinematch_index_last_success_timestamp",
			Help: "Unix timestamp of the last successful index build",
		},
	)

	CatalogDroppedRows = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinematch_catalog_dropped_rows_total",
			Help: "Rows dropped while merging movies and credits",
		},
		[]string{"kind"}, // "movie", "credit"
	)

	// Query metrics
	RecommendRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinematch_recommend_requests_total",
			Help: "Total number of recommendation queries",
		},
		[]string{"outcome"}, // "ok", "not_found", "not_ready", "error"
	)

	RecommendDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cinematch_recommend_duration_seconds",
			Help:    "Recommendation query latency in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1},
		},
		[]string{"outcome"},
	)

	// Poster lookup metrics
	PosterFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinematch_poster_fetches_total",
			Help: "Poster lookups against the TMDB API",
		},
		[]string{"result"}, // "found", "missing", "error", "rejected"
	)

	PosterFetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cinematch_poster_fetch_duration_seconds",
			Help:    "Duration of TMDB poster lookups in seconds, including retries",
			Buckets: prometheus.DefBuckets,
		},
	)

	PosterRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cinematch_poster_retries_total",
			Help: "Retried TMDB requests",
		},
	)

	// Circuit breaker metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Cache metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinematch_cache_hits_total",
			Help: "Cache hits",
		},
		[]string{"cache"}, // "response", "poster", "poster_redis"
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinematch_cache_misses_total",
			Help: "Cache misses",
		},
		[]string{"cache"},
	)

	CachePurges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinematch_cache_purges_total",
			Help: "Cache purges triggered by index rebuild events",
		},
		[]string{"cache"},
	)

	// Snapshot store metrics
	SnapshotOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinematch_snapshot_operations_total",
			Help: "Snapshot store operations",
		},
		[]string{"operation", "result"}, // operation: "load", "save", "gc"
	)

	// Event bus metrics
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinematch_events_published_total",
			Help: "Events published to the event bus",
		},
		[]string{"topic", "result"},
	)

	EventsConsumed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinematch_events_consumed_total",
			Help: "Events consumed from the event bus",
		},
		[]string{"topic"},
	)

	// API metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)
)

// IndexSnapshot is the subset of index statistics exported as gauges.
type IndexSnapshot struct {
	Items           int
	VocabularySize  int
	DegenerateItems int
	DroppedMovies   int
	DroppedCredits  int
}

// RecordIndexBuild records a finished build attempt. Dropped row counters are
// only advanced for builds that read the source.
func RecordIndexBuild(origin string, duration time.Duration, stats IndexSnapshot, err error) {
	if err != nil {
		IndexBuildsTotal.WithLabelValues("error").Inc()
		return
	}
	IndexBuildsTotal.WithLabelValues("success").Inc()
	IndexBuildDuration.WithLabelValues(origin).Observe(duration.Seconds())
	IndexItems.Set(float64(stats.Items))
	IndexVocabularySize.Set(float64(stats.VocabularySize))
	IndexDegenerateItems.Set(float64(stats.DegenerateItems))
	IndexLastSuccess.Set(float64(time.Now().Unix()))
	if origin == "build" {
		CatalogDroppedRows.WithLabelValues("movie").Add(float64(stats.DroppedMovies))
		CatalogDroppedRows.WithLabelValues("credit").Add(float64(stats.DroppedCredits))
	}
}

// RecordIndexUnchanged records a reload check that found the source unchanged.
func RecordIndexUnchanged() {
	IndexBuildsTotal.WithLabelValues("unchanged").Inc()
}

// RecordRecommend records one recommendation query.
func RecordRecommend(outcome string, duration time.Duration) {
	RecommendRequests.WithLabelValues(outcome).Inc()
	RecommendDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

// RecordPosterFetch records one poster lookup.
func RecordPosterFetch(result string, duration time.Duration) {
	PosterFetches.WithLabelValues(result).Inc()
	PosterFetchDuration.Observe(duration.Seconds())
}

// RecordCache records a cache lookup.
func RecordCache(cache string, hit bool) {
	if hit {
		CacheHits.WithLabelValues(cache).Inc()
	} else {
		CacheMisses.WithLabelValues(cache).Inc()
	}
}

// RecordSnapshot records a snapshot store operation.
func RecordSnapshot(operation string, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	SnapshotOperations.WithLabelValues(operation, result).Inc()
}

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks in-flight API requests.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}
