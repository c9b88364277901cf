// Cinematch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

/*
Package services adapts Cinematch components to suture.Service.

Each wrapper turns a component lifecycle (ListenAndServe, polling loop,
subscription, embedded server) into Serve(ctx) and identifies itself via
fmt.Stringer for supervisor events.

# Services

HTTPServerService ("http-server"):
  - runs *http.Server, draining requests on shutdown

IndexService ("index-builder"):
  - builds the index at startup via Engine.Ensure
  - polls the catalog fingerprint every ReloadInterval
  - records build metrics (success, error, unchanged)

StoreGCService ("store-gc"):
  - runs Badger value log GC on the snapshot store

ConsumerService ("index-events"):
  - runs the index event consumer; a closed subscription is a failure

NATSServerService ("nats-server"):
  - watches and shuts down the embedded NATS server

# Return Values

  - ctx cancelled: ctx.Err()
  - component failure: wrapped error, restarted after backoff
  - unrecoverable: suture.ErrDoNotRestart

# Usage

	tree.AddDataService(services.NewIndexService(engine, services.IndexServiceConfig{
	    ReloadInterval: cfg.Catalog.ReloadInterval,
	}, logger))
	tree.AddDataService(services.NewStoreGCService(store, cfg.Store.GCInterval, logger))
	tree.AddMessagingService(services.NewConsumerService(consumer))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
*/
package services
