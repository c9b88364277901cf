// Cinematch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package main

import (
	"context"
	"fmt"

	"github.com/tomtom215/cinematch/internal/config"
	"github.com/tomtom215/cinematch/internal/events"
	"github.com/tomtom215/cinematch/internal/logging"
)

// EventComponents holds the index event bus and, for single-node NATS
// deployments, the embedded server behind it.
type EventComponents struct {
	Bus    *events.Bus
	Server *events.EmbeddedServer
}

// Close closes the bus. The embedded server is shut down by its
// supervised service.
func (c *EventComponents) Close() {
	if err := c.Bus.Close(); err != nil {
		logging.Warn().Err(err).Msg("error closing event bus")
	}
}

// initEvents creates the event bus. Returns nil when events are disabled.
// An embedded NATS server is started first so the bus can connect to it.
func initEvents(cfg *config.Config) (*EventComponents, error) {
	if !cfg.Events.Enabled {
		logging.Info().Msg("index events disabled (EVENTS_ENABLED=false)")
		return nil, nil
	}

	adapter := logging.NewWatermillAdapterWithLogger(logging.WithComponent("events"))

	if cfg.Events.Backend == events.BackendMemory {
		logging.Info().Str("topic", cfg.Events.Topic).Msg("index events on in-process bus")
		return &EventComponents{Bus: events.NewMemoryBus(cfg.Events.Topic, adapter)}, nil
	}

	comps := &EventComponents{}
	natsURL := cfg.Events.URL

	if cfg.Events.Embedded {
		serverCfg, err := events.ServerConfigFromURL(cfg.Events.URL, cfg.Events.StoreDir)
		if err != nil {
			return nil, err
		}
		srv, err := events.NewEmbeddedServer(serverCfg)
		if err != nil {
			return nil, fmt.Errorf("start embedded NATS: %w", err)
		}
		comps.Server = srv
		natsURL = srv.ClientURL()
		logging.Info().
			Str("url", natsURL).
			Bool("jetstream", serverCfg.StoreDir != "").
			Msg("embedded NATS server started")
	}

	bus, err := events.NewNATSBus(events.NATSConfig{URL: natsURL, Topic: cfg.Events.Topic}, adapter)
	if err != nil {
		if comps.Server != nil {
			_ = comps.Server.Shutdown(context.Background()) //nolint:errcheck // already failing
		}
		return nil, fmt.Errorf("connect event bus: %w", err)
	}
	comps.Bus = bus

	logging.Info().Str("url", natsURL).Str("topic", bus.Topic()).Msg("index events on NATS")
	return comps, nil
}
