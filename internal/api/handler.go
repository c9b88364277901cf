// Cinematch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package api

import (
	"context"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/tomtom215/cinematch/internal/cache"
	"github.com/tomtom215/cinematch/internal/logging"
	"github.com/tomtom215/cinematch/internal/media"
	"github.com/tomtom215/cinematch/internal/metrics"
	"github.com/tomtom215/cinematch/internal/models"
	"github.com/tomtom215/cinematch/internal/recommend"
)

// PosterSource resolves posters for a page of recommendations.
// Satisfied by *media.TMDBClient.
type PosterSource interface {
	Posters(ctx context.Context, ids []int64) ([]media.Poster, int)
	CacheStats() cache.Stats
}

// HandlerConfig configures a Handler.
type HandlerConfig struct {
	Version string

	// ResponseCacheSize bounds cached recommendation responses. 0 disables caching.
	ResponseCacheSize int
	ResponseCacheTTL  time.Duration

	// Posters is optional; without it posters=true is ignored.
	Posters PosterSource
}

// Handler serves the HTTP API for one engine.
//
// Handler methods are split across files:
//   - handlers_health.go: health and status
//   - handlers_movies.go: title listing and completion
//   - handlers_recommend.go: recommendations and forced rebuilds
type Handler struct {
	engine    *recommend.Engine
	limits    *recommend.Config
	posters   PosterSource
	responses *cache.LRUCache[models.RecommendationsResponse]
	titles    atomic.Pointer[cache.Trie[int]]
	version   string
	startTime time.Time
}

// NewHandler creates the handler and subscribes it to engine index swaps,
// which rebuild the title trie and drop cached responses.
func NewHandler(engine *recommend.Engine, cfg HandlerConfig) *Handler {
	if cfg.Version == "" {
		cfg.Version = "dev"
	}
	h := &Handler{
		engine:    engine,
		limits:    engine.Config(),
		posters:   cfg.Posters,
		version:   cfg.Version,
		startTime: time.Now(),
	}
	if cfg.ResponseCacheSize > 0 {
		h.responses = cache.NewLRUCache[models.RecommendationsResponse](cfg.ResponseCacheSize, cfg.ResponseCacheTTL)
	}

	engine.OnRebuild(h.onIndexSwap)
	if idx := engine.Current(); idx != nil {
		h.onIndexSwap(idx)
	}
	return h
}

func (h *Handler) onIndexSwap(idx *recommend.Index) {
	trie := cache.NewTrie[int](defaultSuggestLimit)
	for i, item := range idx.Items() {
		trie.Insert(item.Title, i)
	}
	h.titles.Store(trie)

	// Keys include the fingerprint, so old entries are already unreachable.
	h.purgeResponses()
}

// HandleIndexEvent reacts to a rebuild announced on the event bus: it
// purges cached responses and brings the local engine up to date with the
// source. Ensure is a no-op when this instance published the event.
func (h *Handler) HandleIndexEvent(ctx context.Context, evt models.IndexRebuiltEvent) error {
	purged := h.purgeResponses()
	metrics.CachePurges.WithLabelValues("response").Inc()

	logging.Ctx(ctx).Debug().
		Str("fingerprint", evt.Fingerprint).
		Str("origin_host", evt.Host).
		Int("purged", purged).
		Msg("index rebuilt event received")

	if idx := h.engine.Current(); idx != nil && idx.Fingerprint() == evt.Fingerprint {
		return nil
	}

	start := time.Now()
	res, err := h.engine.Ensure(ctx)
	if err != nil {
		metrics.RecordIndexBuild("build", time.Since(start), metrics.IndexSnapshot{}, err)
		return err
	}
	if res.Rebuilt {
		recordBuild(res, time.Since(start))
	}
	return nil
}

// clearIndexState drops the title trie and cached responses, so suggestions
// report not-ready alongside the other endpoints until the next swap.
func (h *Handler) clearIndexState() {
	h.titles.Store(nil)
	h.purgeResponses()
}

func (h *Handler) purgeResponses() int {
	if h.responses == nil {
		return 0
	}
	return h.responses.Purge()
}

// effectiveK applies the engine default and cap to a requested k.
func (h *Handler) effectiveK(k *int) int {
	n := h.limits.DefaultK
	if k != nil {
		n = *k
	}
	if n > h.limits.MaxK {
		n = h.limits.MaxK
	}
	return n
}

func responseKey(fingerprint, title string, k int, posters bool) string {
	return fingerprint + "|" + strconv.Itoa(k) + "|" + strconv.FormatBool(posters) + "|" + title
}

func recordBuild(res *recommend.BuildResult, d time.Duration) {
	origin := "build"
	if res.FromSnapshot {
		origin = "snapshot"
	}
	stats := res.Index.Stats()
	merge := res.Index.MergeStats()
	metrics.RecordIndexBuild(origin, d, metrics.IndexSnapshot{
		Items:           stats.Items,
		VocabularySize:  stats.VocabularySize,
		DegenerateItems: stats.DegenerateItems,
		DroppedMovies:   merge.DroppedMovies,
		DroppedCredits:  merge.Credits - merge.Matched,
	}, nil)
}
