// Cinematch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/tomtom215/cinematch/internal/models"
)

// Movies handles GET /api/v1/movies?search=&limit=&offset=.
//
// Titles are listed in catalog order. search is a case-insensitive
// substring filter applied before pagination.
func (h *Handler) Movies(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	req, apiErr := parseMoviesRequest(r)
	if apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, apiErr)
		return
	}

	idx := h.engine.Current()
	if idx == nil {
		respondError(w, http.StatusServiceUnavailable, ErrCodeIndexNotReady, "Index is not ready", nil)
		return
	}

	needle := strings.ToLower(strings.TrimSpace(req.Search))
	var matched []models.MovieSummary
	for i, item := range idx.Items() {
		if needle != "" && !strings.Contains(strings.ToLower(item.Title), needle) {
			continue
		}
		matched = append(matched, models.MovieSummary{Index: i, ID: item.ID, Title: item.Title})
	}

	total := len(matched)
	page := []models.MovieSummary{}
	if req.Offset < total {
		end := min(req.Offset+req.Limit, total)
		page = matched[req.Offset:end]
	}

	respondJSON(w, http.StatusOK, success(r, models.MovieList{
		Movies:     page,
		Search:     req.Search,
		Pagination: models.NewPaginationInfo(req.Limit, req.Offset, total),
	}, start))
}

// Suggest handles GET /api/v1/movies/suggest?prefix=&limit=.
//
// Completions come from a trie rebuilt on every index swap, ordered
// alphabetically. A title shared by several rows lists every row index.
func (h *Handler) Suggest(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	req, apiErr := parseSuggestRequest(r)
	if apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, apiErr)
		return
	}

	trie := h.titles.Load()
	if trie == nil {
		respondError(w, http.StatusServiceUnavailable, ErrCodeIndexNotReady, "Index is not ready", nil)
		return
	}

	results := trie.AutocompleteWithLimit(req.Prefix, req.Limit)
	suggestions := make([]models.TitleSuggestion, len(results))
	for i, res := range results {
		suggestions[i] = models.TitleSuggestion{Title: res.Value, Indexes: res.Data}
	}

	respondJSON(w, http.StatusOK, success(r, models.SuggestResponse{
		Prefix:      req.Prefix,
		Suggestions: suggestions,
	}, start))
}
