// Cinematch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package catalog

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"

	"github.com/goccy/go-json"

	"github.com/tomtom215/cinematch/internal/recommend"
)

// MemorySource serves records held in memory.
type MemorySource struct {
	mu          sync.RWMutex
	movies      []recommend.RawMovie
	credits     []recommend.RawCredit
	fingerprint string
}

// NewMemorySource creates a source holding copies of movies and credits.
func NewMemorySource(movies []recommend.RawMovie, credits []recommend.RawCredit) (*MemorySource, error) {
	s := &MemorySource{}
	if err := s.Set(movies, credits); err != nil {
		return nil, err
	}
	return s, nil
}

// Set replaces the records and recomputes the fingerprint.
func (s *MemorySource) Set(movies []recommend.RawMovie, credits []recommend.RawCredit) error {
	payload, err := json.Marshal(struct {
		Movies  []recommend.RawMovie  `json:"movies"`
		Credits []recommend.RawCredit `json:"credits"`
	}{movies, credits})
	if err != nil {
		return fmt.Errorf("encode records: %w", err)
	}
	sum := sha256.Sum256(payload)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.movies = append([]recommend.RawMovie(nil), movies...)
	s.credits = append([]recommend.RawCredit(nil), credits...)
	s.fingerprint = hex.EncodeToString(sum[:])
	return nil
}

// Name identifies the source.
func (s *MemorySource) Name() string {
	return "memory"
}

// Fingerprint returns the SHA-256 of the JSON-encoded records.
func (s *MemorySource) Fingerprint(context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fingerprint, nil
}

// Load returns copies of the records.
func (s *MemorySource) Load(context.Context) ([]recommend.RawMovie, []recommend.RawCredit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]recommend.RawMovie(nil), s.movies...),
		append([]recommend.RawCredit(nil), s.credits...),
		nil
}
