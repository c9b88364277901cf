// Cinematch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package models

import "time"

// MovieSummary is one row of the title listing.
type MovieSummary struct {
	Index int    `json:"index"`
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

// MovieList is the payload of GET /api/v1/movies.
type MovieList struct {
	Movies     []MovieSummary `json:"movies"`
	Search     string         `json:"search,omitempty"`
	Pagination PaginationInfo `json:"pagination"`
}

// TitleSuggestion is one prefix completion. Indexes lists every catalog row
// carrying the title; the first is the one queries resolve to.
type TitleSuggestion struct {
	Title   string `json:"title"`
	Indexes []int  `json:"indexes"`
}

// SuggestResponse is the payload of GET /api/v1/movies/suggest.
type SuggestResponse struct {
	Prefix      string            `json:"prefix"`
	Suggestions []TitleSuggestion `json:"suggestions"`
}

// PosterInfo is the poster attached to a recommendation. Available is false
// when the movie has no poster or the lookup failed.
type PosterInfo struct {
	URL       string `json:"url,omitempty"`
	Available bool   `json:"available"`
}

// RecommendationItem is one ranked result.
type RecommendationItem struct {
	Rank   int         `json:"rank"`
	Index  int         `json:"index"`
	ID     int64       `json:"id"`
	Title  string      `json:"title"`
	Score  float64     `json:"score"`
	Poster *PosterInfo `json:"poster,omitempty"`
}

// RecommendationsResponse is the payload of GET /api/v1/recommendations.
type RecommendationsResponse struct {
	Title           string               `json:"title"`
	K               int                  `json:"k"`
	Fingerprint     string               `json:"fingerprint"`
	Recommendations []RecommendationItem `json:"recommendations"`
}

// HealthResponse is the payload of GET /api/v1/health.
type HealthResponse struct {
	Status     string  `json:"status"`
	Version    string  `json:"version"`
	IndexReady bool    `json:"index_ready"`
	Uptime     float64 `json:"uptime_seconds"`
}

// IndexStatus summarizes the loaded index.
type IndexStatus struct {
	Ready           bool      `json:"ready"`
	Source          string    `json:"source"`
	Fingerprint     string    `json:"fingerprint,omitempty"`
	BuiltAt         time.Time `json:"built_at,omitempty"`
	BuildDurationMS int64     `json:"build_duration_ms"`
	Items           int       `json:"items"`
	VocabularySize  int       `json:"vocabulary_size"`
	DegenerateItems int       `json:"degenerate_items"`
	DuplicateTitles int       `json:"duplicate_titles"`
	DroppedMovies   int       `json:"dropped_movies"`
	Requests        int64     `json:"requests"`
	NotFound        int64     `json:"not_found"`
	Builds          int64     `json:"builds"`
	SnapshotLoads   int64     `json:"snapshot_loads"`
}

// HostStatus reports process and host resource usage.
type HostStatus struct {
	Goroutines      int     `json:"goroutines"`
	HeapAllocBytes  uint64  `json:"heap_alloc_bytes"`
	MemTotalBytes   uint64  `json:"mem_total_bytes,omitempty"`
	MemUsedPercent  float64 `json:"mem_used_percent,omitempty"`
	CPUCount        int     `json:"cpu_count,omitempty"`
	LoadAverage1m   float64 `json:"load_average_1m,omitempty"`
	ProcessRSSBytes uint64  `json:"process_rss_bytes,omitempty"`
}

// CacheStatus reports one cache's counters.
type CacheStatus struct {
	Size    int     `json:"size"`
	Hits    int64   `json:"hits"`
	Misses  int64   `json:"misses"`
	HitRate float64 `json:"hit_rate"`
}

// StatusResponse is the payload of GET /api/v1/status.
type StatusResponse struct {
	Version string                 `json:"version"`
	Index   IndexStatus            `json:"index"`
	Host    HostStatus             `json:"host"`
	Caches  map[string]CacheStatus `json:"caches,omitempty"`
}

// RebuildResponse is the payload of POST /api/v1/index/rebuild.
type RebuildResponse struct {
	Fingerprint     string `json:"fingerprint"`
	Items           int    `json:"items"`
	VocabularySize  int    `json:"vocabulary_size"`
	BuildDurationMS int64  `json:"build_duration_ms"`
	FromSnapshot    bool   `json:"from_snapshot"`
}

// IndexRebuiltEvent is published on the events topic after every index swap.
type IndexRebuiltEvent struct {
	Fingerprint string    `json:"fingerprint"`
	Items       int       `json:"items"`
	BuiltAt     time.Time `json:"built_at"`
	Host        string    `json:"host,omitempty"`
}
