// Cinematch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/cinematch/internal/logging"
	"github.com/tomtom215/cinematch/internal/metrics"
	"github.com/tomtom215/cinematch/internal/models"
	"github.com/tomtom215/cinematch/internal/recommend"
)

// Recommendations handles GET /api/v1/recommendations?title=&k=&posters=.
//
//   - 400 VALIDATION_ERROR for a missing or malformed parameter
//   - 404 NOT_FOUND when the title is not in the catalog
//   - 503 INDEX_NOT_READY before the first build
//
// Responses are cached per (fingerprint, title, k, posters) and carry an
// ETag over the payload; a matching If-None-Match yields 304.
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	req, apiErr := parseRecommendationsRequest(r)
	if apiErr != nil {
		metrics.RecordRecommend("invalid", time.Since(start))
		respondAPIError(w, http.StatusBadRequest, apiErr)
		return
	}

	idx := h.engine.Current()
	if idx == nil {
		metrics.RecordRecommend("not_ready", time.Since(start))
		respondError(w, http.StatusServiceUnavailable, ErrCodeIndexNotReady, "Index is not ready", nil)
		return
	}

	k := h.effectiveK(req.K)
	withPosters := req.Posters && h.posters != nil
	key := responseKey(idx.Fingerprint(), req.Title, k, withPosters)

	resp, cached := h.cachedResponse(key)
	if !cached {
		recs, err := h.engine.RecommendFrom(r.Context(), idx, req.Title, k)
		if err != nil {
			h.recommendError(w, err, time.Since(start))
			return
		}
		resp = models.RecommendationsResponse{
			Title:           req.Title,
			K:               k,
			Fingerprint:     idx.Fingerprint(),
			Recommendations: recommendationItems(recs),
		}
		if withPosters {
			h.attachPosters(r.Context(), resp.Recommendations)
		}
		if h.responses != nil {
			h.responses.Add(key, resp)
		}
	}
	metrics.RecordRecommend("ok", time.Since(start))

	payload, err := json.Marshal(resp)
	if err != nil {
		respondError(w, http.StatusInternalServerError, ErrCodeInternal, "Failed to encode response", err)
		return
	}
	etag := generateETag(payload)
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "private, max-age=60")
	if etagMatches(r.Header.Get("If-None-Match"), etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	env := success(r, resp, start)
	env.Metadata.Cached = cached
	respondJSON(w, http.StatusOK, env)
}

func (h *Handler) cachedResponse(key string) (models.RecommendationsResponse, bool) {
	if h.responses == nil {
		return models.RecommendationsResponse{}, false
	}
	resp, ok := h.responses.Get(key)
	metrics.RecordCache("response", ok)
	return resp, ok
}

func (h *Handler) recommendError(w http.ResponseWriter, err error, d time.Duration) {
	switch {
	case errors.Is(err, recommend.ErrNotFound):
		metrics.RecordRecommend("not_found", d)
		respondError(w, http.StatusNotFound, ErrCodeNotFound, "Title not found in catalog", nil)
	case errors.Is(err, recommend.ErrIndexNotReady):
		metrics.RecordRecommend("not_ready", d)
		respondError(w, http.StatusServiceUnavailable, ErrCodeIndexNotReady, "Index is not ready", nil)
	default:
		metrics.RecordRecommend("error", d)
		respondError(w, http.StatusInternalServerError, ErrCodeInternal, "Failed to compute recommendations", err)
	}
}

func recommendationItems(recs []recommend.Recommendation) []models.RecommendationItem {
	items := make([]models.RecommendationItem, len(recs))
	for i, rec := range recs {
		items[i] = models.RecommendationItem{
			Rank:  i + 1,
			Index: rec.Index,
			ID:    rec.ID,
			Title: rec.Title,
			Score: rec.Score,
		}
	}
	return items
}

// attachPosters fills Poster on every item. Lookups that fail degrade to
// available=false; the response is never failed for a missing poster.
func (h *Handler) attachPosters(ctx context.Context, items []models.RecommendationItem) {
	ids := make([]int64, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}

	posters, failed := h.posters.Posters(ctx, ids)
	for i := range items {
		p := posters[i]
		items[i].Poster = &models.PosterInfo{URL: p.URL, Available: p.Available}
	}
	if failed > 0 {
		logging.Ctx(ctx).Debug().Int("failed", failed).Int("requested", len(ids)).Msg("poster lookups degraded")
	}
}

// Rebuild handles POST /api/v1/index/rebuild.
//
// The cached index is dropped and rebuilt from the source synchronously,
// bypassing stored snapshots. The build outlives a disconnecting client;
// the engine's build timeout still applies.
func (h *Handler) Rebuild(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := context.WithoutCancel(r.Context())

	h.engine.Invalidate()
	h.clearIndexState()
	res, err := h.engine.Rebuild(ctx)
	if err != nil {
		metrics.RecordIndexBuild("build", time.Since(start), metrics.IndexSnapshot{}, err)
		respondError(w, http.StatusInternalServerError, ErrCodeRebuildFailed, "Index rebuild failed", err)
		return
	}
	recordBuild(res, time.Since(start))

	stats := res.Index.Stats()
	logging.Ctx(r.Context()).Info().
		Str("fingerprint", res.Index.Fingerprint()).
		Int("items", stats.Items).
		Msg("index rebuilt on request")

	w.Header().Set("Cache-Control", "no-store")
	respondJSON(w, http.StatusOK, success(r, models.RebuildResponse{
		Fingerprint:     res.Index.Fingerprint(),
		Items:           stats.Items,
		VocabularySize:  stats.VocabularySize,
		BuildDurationMS: stats.BuildDuration.Milliseconds(),
		FromSnapshot:    res.FromSnapshot,
	}, start))
}
