// Cinematch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package media

import (
	"context"
	"errors"
	"fmt"
)

// Poster is the result of a poster lookup. Available is false when the
// movie exists but has no poster, or the movie is unknown to TMDB.
type Poster struct {
	MovieID   int64  `json:"movie_id"`
	URL       string `json:"url,omitempty"`
	Available bool   `json:"available"`
}

// PosterStore is a second-level poster cache shared between instances.
type PosterStore interface {
	// Get returns found=false with a nil error on a miss.
	Get(ctx context.Context, movieID int64) (Poster, bool, error)
	Set(ctx context.Context, poster Poster) error
}

// ErrInvalidMovieID is returned for identifiers that cannot exist on TMDB.
var ErrInvalidMovieID = errors.New("invalid movie id")

// FetchError reports a poster lookup that failed after any retries.
type FetchError struct {
	MovieID int64
	// StatusCode is the last HTTP status seen, 0 for transport failures
	// and breaker rejections.
	StatusCode int
	Attempts   int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("tmdb poster %d: HTTP %d after %d attempt(s): %v", e.MovieID, e.StatusCode, e.Attempts, e.Err)
	}
	return fmt.Sprintf("tmdb poster %d: %v", e.MovieID, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
