// Cinematch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/cinematch/internal/metrics"
)

// GarbageCollector reclaims space in the snapshot store.
// Satisfied by *storage.Store.
type GarbageCollector interface {
	RunGC() error
}

// StoreGCService periodically runs value log GC on the snapshot store.
// Pruned snapshots only free disk space once GC rewrites their log files.
type StoreGCService struct {
	store    GarbageCollector
	interval time.Duration
	logger   zerolog.Logger
	name     string
}

// NewStoreGCService creates the service. A non-positive interval means 1h.
//
//nolint:gocritic // zerolog.Logger is passed by value
func NewStoreGCService(store GarbageCollector, interval time.Duration, logger zerolog.Logger) *StoreGCService {
	if interval <= 0 {
		interval = time.Hour
	}
	return &StoreGCService{
		store:    store,
		interval: interval,
		logger:   logger.With().Str("service", "store-gc").Logger(),
		name:     "store-gc",
	}
}

// Serve implements suture.Service. GC errors are logged; the next tick retries.
func (s *StoreGCService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			err := s.store.RunGC()
			metrics.RecordSnapshot("gc", err)
			if err != nil {
				s.logger.Warn().Err(err).Msg("snapshot store GC failed")
				continue
			}
			s.logger.Debug().Msg("snapshot store GC complete")
		}
	}
}

func (s *StoreGCService) String() string {
	return s.name
}
