// Cinematch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package services

import (
	"context"
	"fmt"
	"time"

	"github.com/thejerf/suture/v4"
)

// NATSServer is the lifecycle of an already started embedded NATS server.
// Satisfied by *events.EmbeddedServer.
type NATSServer interface {
	IsRunning() bool
	Shutdown(ctx context.Context) error
}

// NATSServerService owns an embedded NATS server started during wiring.
//
// The server is created before the event bus so clients can connect during
// startup; this service watches it and shuts it down with the tree. A
// server that stops on its own cannot be restarted in place, so the
// service then returns suture.ErrDoNotRestart.
type NATSServerService struct {
	server          NATSServer
	checkInterval   time.Duration
	shutdownTimeout time.Duration
	name            string
}

// NewNATSServerService wraps server with a 5s health check and 10s shutdown timeout.
func NewNATSServerService(server NATSServer) *NATSServerService {
	return NewNATSServerServiceWithTimeouts(server, 5*time.Second, 10*time.Second)
}

// NewNATSServerServiceWithTimeouts wraps server with explicit timings.
func NewNATSServerServiceWithTimeouts(server NATSServer, checkInterval, shutdownTimeout time.Duration) *NATSServerService {
	if checkInterval <= 0 {
		checkInterval = 5 * time.Second
	}
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	return &NATSServerService{
		server:          server,
		checkInterval:   checkInterval,
		shutdownTimeout: shutdownTimeout,
		name:            "nats-server",
	}
}

// Serve implements suture.Service.
func (s *NATSServerService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
			defer cancel()
			if err := s.server.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("NATS server shutdown failed: %w", err)
			}
			return ctx.Err()
		case <-ticker.C:
			if !s.server.IsRunning() {
				return fmt.Errorf("embedded NATS server stopped: %w", suture.ErrDoNotRestart)
			}
		}
	}
}

func (s *NATSServerService) String() string {
	return s.name
}
