// Cinematch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package storage

import (
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/tomtom215/cinematch/internal/logging"
	"github.com/tomtom215/cinematch/internal/metrics"
	"github.com/tomtom215/cinematch/internal/recommend"
)

const (
	metaPrefix = "snapshot/meta/"
	dataPrefix = "snapshot/data/"
)

// Config configures the snapshot store.
type Config struct {
	// Path is the BadgerDB directory. Ignored when InMemory is set.
	Path string

	// InMemory keeps everything in memory (tests and ephemeral runs).
	InMemory bool

	// MaxSnapshots is how many fingerprints to retain. Older ones are pruned after each save.
	MaxSnapshots int
}

// SnapshotMetadata describes a stored snapshot.
type SnapshotMetadata struct {
	// Fingerprint is the catalog fingerprint the snapshot was built from.
	Fingerprint string `json:"fingerprint"`

	// Version is the recommend.SnapshotVersion used to encode it.
	Version int `json:"version"`

	// BuiltAt is when the index was built.
	BuiltAt time.Time `json:"built_at"`

	// SavedAt is when the snapshot was written.
	SavedAt time.Time `json:"saved_at"`

	// Items is the catalog size.
	Items int `json:"items"`

	// Checksum is the SHA-256 checksum of the uncompressed payload.
	Checksum string `json:"checksum"`

	// SizeBytes is the compressed payload size.
	SizeBytes int64 `json:"size_bytes"`
}

// Store persists recommend.Snapshot values in BadgerDB.
type Store struct {
	db           *badger.DB
	maxSnapshots int
}

// Open opens (or creates) a snapshot store.
func Open(cfg Config) (*Store, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, fmt.Errorf("snapshot store path is required")
	}

	opts := badger.DefaultOptions(cfg.Path)
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	// Reduce logging verbosity
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open BadgerDB: %w", err)
	}

	if cfg.MaxSnapshots < 1 {
		cfg.MaxSnapshots = 1
	}

	logging.Info().
		Str("path", cfg.Path).
		Bool("in_memory", cfg.InMemory).
		Int("max_snapshots", cfg.MaxSnapshots).
		Msg("snapshot store opened")

	return &Store{db: db, maxSnapshots: cfg.MaxSnapshots}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveSnapshot stores snap under its fingerprint and prunes old snapshots.
func (s *Store) SaveSnapshot(ctx context.Context, snap *recommend.Snapshot) error {
	err := s.saveSnapshot(ctx, snap)
	metrics.RecordSnapshot("save", err)
	return err
}

func (s *Store) saveSnapshot(ctx context.Context, snap *recommend.Snapshot) error {
	if snap.Fingerprint == "" {
		return fmt.Errorf("snapshot has no fingerprint")
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(snap); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	rawData := buf.Bytes()

	hash := sha256.Sum256(rawData)

	var compressed bytes.Buffer
	gzw := gzip.NewWriter(&compressed)
	if _, err := gzw.Write(rawData); err != nil {
		return fmt.Errorf("compress snapshot: %w", err)
	}
	if err := gzw.Close(); err != nil {
		return fmt.Errorf("finalize compression: %w", err)
	}

	meta := SnapshotMetadata{
		Fingerprint: snap.Fingerprint,
		Version:     snap.Version,
		BuiltAt:     snap.BuiltAt,
		SavedAt:     time.Now(),
		Items:       len(snap.Items),
		Checksum:    hex.EncodeToString(hash[:]),
		SizeBytes:   int64(compressed.Len()),
	}
	var metaBuf bytes.Buffer
	if err := gob.NewEncoder(&metaBuf).Encode(meta); err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}

	if ctx.Err() != nil {
		return ctx.Err()
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte(dataPrefix+snap.Fingerprint), compressed.Bytes()); err != nil {
			return err
		}
		return txn.Set([]byte(metaPrefix+snap.Fingerprint), metaBuf.Bytes())
	})
	if err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}

	return s.Prune(ctx, s.maxSnapshots)
}

// LoadSnapshot returns the snapshot stored for fingerprint, verifying its checksum.
// Returns recommend.ErrSnapshotNotFound when nothing is stored.
func (s *Store) LoadSnapshot(ctx context.Context, fingerprint string) (*recommend.Snapshot, error) {
	snap, err := s.loadSnapshot(ctx, fingerprint)
	if !errors.Is(err, recommend.ErrSnapshotNotFound) {
		metrics.RecordSnapshot("load", err)
	}
	return snap, err
}

func (s *Store) loadSnapshot(ctx context.Context, fingerprint string) (*recommend.Snapshot, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var meta SnapshotMetadata
	var compressed []byte
	err := s.db.View(func(txn *badger.Txn) error {
		metaItem, err := txn.Get([]byte(metaPrefix + fingerprint))
		if err != nil {
			return err
		}
		if err := metaItem.Value(func(val []byte) error {
			return gob.NewDecoder(bytes.NewReader(val)).Decode(&meta)
		}); err != nil {
			return fmt.Errorf("decode metadata: %w", err)
		}

		dataItem, err := txn.Get([]byte(dataPrefix + fingerprint))
		if err != nil {
			return err
		}
		compressed, err = dataItem.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, recommend.ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	gzr, err := gzip.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, fmt.Errorf("decompress snapshot: %w", err)
	}
	defer func() { _ = gzr.Close() }() //nolint:errcheck // error on gzip close after read is not actionable

	rawData, err := io.ReadAll(gzr)
	if err != nil {
		return nil, fmt.Errorf("read decompressed data: %w", err)
	}

	hash := sha256.Sum256(rawData)
	if checksum := hex.EncodeToString(hash[:]); checksum != meta.Checksum {
		return nil, fmt.Errorf("checksum mismatch: expected %s, got %s", meta.Checksum, checksum)
	}

	var snap recommend.Snapshot
	if err := gob.NewDecoder(bytes.NewReader(rawData)).Decode(&snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &snap, nil
}

// List returns metadata for every stored snapshot, newest first.
func (s *Store) List(ctx context.Context) ([]SnapshotMetadata, error) {
	var metas []SnapshotMetadata
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(metaPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			var meta SnapshotMetadata
			if err := it.Item().Value(func(val []byte) error {
				return gob.NewDecoder(bytes.NewReader(val)).Decode(&meta)
			}); err != nil {
				return fmt.Errorf("decode metadata %s: %w", it.Item().Key(), err)
			}
			metas = append(metas, meta)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(metas, func(i, j int) bool {
		return metas[i].SavedAt.After(metas[j].SavedAt)
	})
	return metas, nil
}

// Delete removes the snapshot for fingerprint. Missing snapshots are not an error.
func (s *Store) Delete(_ context.Context, fingerprint string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete([]byte(dataPrefix + fingerprint)); err != nil {
			return err
		}
		return txn.Delete([]byte(metaPrefix + fingerprint))
	})
}

// Prune removes all but the newest keep snapshots.
func (s *Store) Prune(ctx context.Context, keep int) error {
	if keep < 1 {
		keep = 1
	}

	metas, err := s.List(ctx)
	if err != nil {
		return fmt.Errorf("list snapshots: %w", err)
	}

	for i := keep; i < len(metas); i++ {
		if err := s.Delete(ctx, metas[i].Fingerprint); err != nil {
			return fmt.Errorf("delete snapshot %s: %w", metas[i].Fingerprint, err)
		}
		logging.Debug().Str("fingerprint", metas[i].Fingerprint).Msg("pruned snapshot")
	}
	return nil
}

// RunGC reclaims value log space after pruning.
func (s *Store) RunGC() error {
	err := s.db.RunValueLogGC(0.5)
	if err != nil && !errors.Is(err, badger.ErrNoRewrite) {
		return fmt.Errorf("value log GC: %w", err)
	}
	return nil
}
