// Cinematch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

/*
Package events distributes index rebuild notifications over Watermill.

When the recommend engine swaps in a new index, Bus.RebuildHook publishes
a models.IndexRebuiltEvent on the configured topic (catalog.index.rebuilt
by default). A Consumer on every instance receives it and runs its
handlers; the server registers one that purges the response cache, so no
replica serves recommendations computed against a stale catalog.

Backends:

  - memory: watermill gochannel, for single-process deployments and tests
  - nats: watermill-nats over NATS core pub/sub without a queue group, so
    every replica sees every event

EmbeddedServer runs nats-server in-process when no external NATS is
available; JetStream is enabled only when a store directory is configured.

Usage:

	bus := events.NewMemoryBus(events.DefaultTopic, logging.NewWatermillAdapter())
	engine.OnRebuild(bus.RebuildHook())

	consumer := events.NewConsumer(bus).Handle(func(ctx context.Context, evt models.IndexRebuiltEvent) error {
	    responseCache.Purge()
	    return nil
	})
	go consumer.Run(ctx)
*/
package events
