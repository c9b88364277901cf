// Cinematch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

/*
Package main is the entry point for the Cinematch server.

Cinematch answers "more like this" queries over a movie catalog. Each movie's
overview, genres, keywords, top cast and director are folded into one tag
document; documents are vectorized into token counts and every pair of
movies is scored by cosine similarity. A query returns the k titles most
similar to a given title.

# Application Architecture

The server runs under a Suture v4 supervisor tree:

	RootSupervisor ("cinematch")
	├── DataSupervisor ("data-layer")
	│   ├── index-builder (build on startup, poll the source fingerprint)
	│   └── store-gc (Badger value log GC, when the snapshot store is enabled)
	├── MessagingSupervisor ("messaging-layer")
	│   ├── nats-server (embedded NATS, optional)
	│   └── index-events (purges caches when any replica rebuilds)
	└── APISupervisor ("api-layer")
	    └── http-server (chi router)

Component initialization order:

 1. Configuration: Koanf v2 (defaults, config.yaml, environment)
 2. Logging: zerolog, JSON or console
 3. Catalog source: CSV files read through DuckDB, or MongoDB collections
 4. Engine and snapshot store: BadgerDB snapshots keyed by source fingerprint
 5. Index events: in-process watermill channel or NATS (optionally embedded)
 6. Poster client: TMDB with rate limiting, retries and a circuit breaker,
    optionally backed by a shared Redis cache
 7. HTTP API and supervisor tree

The HTTP API answers immediately; until the first index is loaded,
recommendation endpoints return 503 INDEX_NOT_READY and /api/v1/health
reports "degraded".

# Configuration

Every key can be set in config.yaml or as an environment variable, for
example:

	CATALOG_SOURCE=csv
	MOVIES_CSV=/data/tmdb_5000_movies.csv
	CREDITS_CSV=/data/tmdb_5000_credits.csv
	CATALOG_RELOAD_INTERVAL=5m
	SNAPSHOT_STORE_PATH=/data/snapshots
	TMDB_ENABLED=true
	TMDB_API_KEY=...
	EVENTS_BACKEND=nats
	NATS_URL=nats://127.0.0.1:4222

# Signal Handling

SIGINT and SIGTERM cancel the root context. The HTTP server drains
in-flight requests within SHUTDOWN_TIMEOUT, then the event bus,
snapshot store and catalog connections are closed.
*/
package main
