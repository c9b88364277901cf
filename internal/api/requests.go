// Cinematch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package api

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/tomtom215/cinematch/internal/models"
)

// Query parameter structs. Field names in validation errors come from the
// query tag.

// RecommendationsRequest is GET /api/v1/recommendations.
type RecommendationsRequest struct {
	Title string `query:"title" validate:"required,notblank,max=500,nocontrol"`
	// K is nil when the caller did not pass k; the engine default applies.
	K       *int `query:"k" validate:"omitempty,gte=1,lte=50"`
	Posters bool `query:"posters"`
}

// MoviesRequest is GET /api/v1/movies.
type MoviesRequest struct {
	Search string `query:"search" validate:"max=500,nocontrol"`
	Limit  int    `query:"limit" validate:"gte=1,lte=1000"`
	Offset int    `query:"offset" validate:"gte=0"`
}

// SuggestRequest is GET /api/v1/movies/suggest.
type SuggestRequest struct {
	Prefix string `query:"prefix" validate:"required,notblank,max=200,nocontrol"`
	Limit  int    `query:"limit" validate:"gte=1,lte=50"`
}

const (
	defaultMoviesLimit  = 50
	defaultSuggestLimit = 10
)

func parseRecommendationsRequest(r *http.Request) (RecommendationsRequest, *models.APIError) {
	q := r.URL.Query()
	req := RecommendationsRequest{Title: q.Get("title")}

	var apiErr *models.APIError
	if req.K, apiErr = queryOptionalInt(q, "k"); apiErr != nil {
		return req, apiErr
	}
	if req.Posters, apiErr = queryBool(q, "posters"); apiErr != nil {
		return req, apiErr
	}
	return req, validateRequest(&req)
}

func parseMoviesRequest(r *http.Request) (MoviesRequest, *models.APIError) {
	q := r.URL.Query()
	req := MoviesRequest{Search: q.Get("search")}

	var apiErr *models.APIError
	if req.Limit, apiErr = queryInt(q, "limit", defaultMoviesLimit); apiErr != nil {
		return req, apiErr
	}
	if req.Offset, apiErr = queryInt(q, "offset", 0); apiErr != nil {
		return req, apiErr
	}
	return req, validateRequest(&req)
}

func parseSuggestRequest(r *http.Request) (SuggestRequest, *models.APIError) {
	q := r.URL.Query()
	req := SuggestRequest{Prefix: q.Get("prefix")}

	var apiErr *models.APIError
	if req.Limit, apiErr = queryInt(q, "limit", defaultSuggestLimit); apiErr != nil {
		return req, apiErr
	}
	return req, validateRequest(&req)
}

func queryInt(q url.Values, key string, def int) (int, *models.APIError) {
	v, apiErr := queryOptionalInt(q, key)
	if apiErr != nil || v == nil {
		return def, apiErr
	}
	return *v, nil
}

func queryOptionalInt(q url.Values, key string) (*int, *models.APIError) {
	raw := q.Get(key)
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, malformed(key, "an integer", raw)
	}
	return &n, nil
}

func queryBool(q url.Values, key string) (bool, *models.APIError) {
	raw := q.Get(key)
	if raw == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, malformed(key, "a boolean", raw)
	}
	return b, nil
}

func malformed(field, kind, value string) *models.APIError {
	return &models.APIError{
		Code:    ErrCodeValidation,
		Message: field + " must be " + kind,
		Details: map[string]interface{}{"field": field, "value": value},
	}
}
