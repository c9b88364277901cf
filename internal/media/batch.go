// Cinematch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package media

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

// PosterFetcher is the lookup the API layer depends on.
type PosterFetcher interface {
	Poster(ctx context.Context, movieID int64) (Poster, error)
}

// Posters looks up every ID concurrently, at most concurrency at a time,
// each lookup bounded by perCall. The result is aligned with ids. Lookups
// that fail degrade to Available=false and are counted in failed; Posters
// itself never fails.
func Posters(ctx context.Context, f PosterFetcher, ids []int64, concurrency int, perCall time.Duration) (posters []Poster, failed int) {
	posters = make([]Poster, len(ids))
	errs := make([]error, len(ids))
	if concurrency <= 0 {
		concurrency = 1
	}

	var g errgroup.Group
	g.SetLimit(concurrency)
	for i, id := range ids {
		g.Go(func() error {
			callCtx := ctx
			if perCall > 0 {
				var cancel context.CancelFunc
				callCtx, cancel = context.WithTimeout(ctx, perCall)
				defer cancel()
			}
			p, err := f.Poster(callCtx, id)
			if err != nil {
				errs[i] = err
				p = Poster{MovieID: id}
			}
			posters[i] = p
			return nil
		})
	}
	_ = g.Wait() //nolint:errcheck // workers never return errors

	for _, err := range errs {
		if err != nil {
			failed++
		}
	}
	return posters, failed
}

// Posters resolves ids with the client's configured concurrency. Each
// lookup may use every configured attempt.
func (c *TMDBClient) Posters(ctx context.Context, ids []int64) ([]Poster, int) {
	perCall := c.cfg.Timeout * time.Duration(c.cfg.MaxRetries+1)
	return Posters(ctx, c, ids, c.cfg.Concurrency, perCall)
}
