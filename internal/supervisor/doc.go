// Cinematch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

/*
Package supervisor runs the Cinematch process under a suture v4 tree.

# Layout

	RootSupervisor ("cinematch")
	├── DataSupervisor ("data-layer")
	│   ├── IndexService (initial build, fingerprint polling)
	│   └── StoreGCService (if store.enabled)
	├── MessagingSupervisor ("messaging-layer")
	│   ├── NATSServerService (if events.embedded)
	│   └── ConsumerService (if events.enabled)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

Each layer counts failures on its own. A crashing consumer is restarted
inside the messaging layer; the API keeps serving the index already
loaded, and the data layer keeps polling the catalog.

# Usage

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddDataService(services.NewIndexService(engine, services.IndexServiceConfig{
	    ReloadInterval: cfg.Catalog.ReloadInterval,
	}, logger))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	errCh := tree.ServeBackground(ctx)
	<-ctx.Done()
	<-errCh

# Configuration

TreeConfig fields left at zero take suture's defaults:

  - FailureThreshold: 5 failures
  - FailureDecay: 30 seconds
  - FailureBackoff: 15 seconds
  - ShutdownTimeout: 10 seconds

# Service Contract

Services implement suture.Service:

  - return nil: stopped cleanly, not restarted
  - return error: crashed, restarted after backoff
  - ctx cancelled: return promptly

If shutdown hangs, UnstoppedServiceReport names the services that missed
the timeout.
*/
package supervisor
