// Cinematch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

/*
Package api provides the HTTP REST API for Cinematch.

Every response uses the models.APIResponse envelope. Errors carry a
machine-readable code:

  - VALIDATION_ERROR (400): missing or malformed query parameter
  - NOT_FOUND (404): unknown title or route
  - METHOD_NOT_ALLOWED (405)
  - RATE_LIMITED (429)
  - INDEX_NOT_READY (503): no index has been loaded yet
  - REBUILD_FAILED, INTERNAL_ERROR (500)

Routes:

	GET  /api/v1/health                 liveness, always 200
	GET  /api/v1/health/ready           200 once an index is loaded
	GET  /api/v1/status                 index, host and cache statistics
	GET  /api/v1/movies                 paginated title listing with substring search
	GET  /api/v1/movies/suggest         title completion by prefix
	GET  /api/v1/recommendations        top-k similar titles, optional posters
	POST /api/v1/index/rebuild          drop the index and rebuild from source
	GET  /metrics                       Prometheus exposition

Caching:

Recommendation responses are cached in an LRU keyed by the index
fingerprint, so a rebuild makes stale entries unreachable; the cache is
also purged on every index swap and on index events from other instances.
Successful JSON bodies carry an ETag and If-None-Match is honoured.

Usage:

	handler := api.NewHandler(engine, api.HandlerConfig{
	    Version:           version,
	    ResponseCacheSize: cfg.Server.ResponseCacheSize,
	    ResponseCacheTTL:  cfg.Server.ResponseCacheTTL,
	    Posters:           tmdbClient,
	})
	router := api.NewRouter(handler, api.NewChiMiddleware(api.ChiMiddlewareConfigFromServer(cfg.Server)))
	srv := &http.Server{Addr: addr, Handler: router.SetupChi()}
*/
package api
