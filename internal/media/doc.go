// Cinematch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

/*
Package media resolves movie posters from TMDB.

TMDBClient calls GET {api_base}/movie/{id}?api_key=KEY and builds the
poster URL from the image base and poster_path. A movie without a poster
(or unknown to TMDB) is a successful lookup with Available=false; any
failure to get an answer is a *FetchError.

Resilience:

  - golang.org/x/time/rate token bucket in front of every attempt
  - retries on 429, 5xx and transport errors with exponential backoff,
    honoring Retry-After (delta-seconds or HTTP date, capped at 30s)
  - per-attempt timeout
  - sony/gobreaker circuit breaker that opens after N consecutive failures

Caching:

Successful lookups are kept in an in-memory LRU with TTL and, when
configured, in Redis through RedisCache so replicas share them. Failures
are never cached.

Batch lookups:

	posters, failed := client.Posters(ctx, ids)

runs lookups concurrently under the configured bound and never fails; a
failed lookup yields Available=false at its position.
*/
package media
