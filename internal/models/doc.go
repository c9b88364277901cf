// Cinematch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

/*
Package models defines the wire types of the HTTP API and the events bus.

Key Components:

  - APIResponse, Metadata, APIError: the response envelope shared by all endpoints
  - PaginationInfo: offset-based page description for the title listing
  - RecommendationsResponse, RecommendationItem, PosterInfo: top-K results
  - MovieList, SuggestResponse: title listing and prefix completion
  - HealthResponse, StatusResponse, RebuildResponse: operational endpoints
  - IndexRebuiltEvent: payload published after every index swap

Models carry JSON tags only and have no behavior beyond trivial constructors.
Domain types (items, recommendations) live in internal/recommend; the API
layer maps them onto these structs.
*/
package models
