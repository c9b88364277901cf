// Cinematch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

// Package storage persists built recommendation indexes in BadgerDB.
//
// A snapshot (catalog, vocabulary and similarity matrix) is keyed by the
// fingerprint of the catalog it was built from, so a restart with unchanged
// source data skips the vectorize and similarity stages entirely.
//
// # Storage Format
//
// Each snapshot occupies two keys:
//
//	snapshot/meta/{fingerprint}  gob-encoded SnapshotMetadata
//	snapshot/data/{fingerprint}  gzip-compressed gob-encoded recommend.Snapshot
//
// The metadata carries a SHA-256 checksum of the uncompressed payload, which
// is verified on every load. Both keys are written in one transaction.
//
// # Usage Example
//
//	store, err := storage.Open(storage.Config{Path: "/data/snapshots", MaxSnapshots: 3})
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//
//	engine.SetSnapshotStore(store)
//
// # Thread Safety
//
// All operations are safe for concurrent use; BadgerDB provides
// serializable transactions.
package storage
