// Cinematch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package recommend

import (
	"fmt"
	"time"
)

// SnapshotVersion is bumped whenever the snapshot layout or the pipeline
// output changes, so stale snapshots are rebuilt rather than reused.
const SnapshotVersion = 2

// Snapshot is the serializable form of an Index.
type Snapshot struct {
	Version     int
	Fingerprint string
	Pipeline    string
	BuiltAt     time.Time
	Items       []Item
	Terms       []string
	Size        int
	Similarity  []float32
	Stats       IndexStats
	Merge       MergeStats
}

// Snapshot exports the index artifacts.
func (x *Index) Snapshot() *Snapshot {
	var terms []string
	if x.vocab != nil {
		terms = x.vocab.Terms()
	}
	return &Snapshot{
		Version:     SnapshotVersion,
		Fingerprint: x.fingerprint,
		Pipeline:    x.pipeline,
		BuiltAt:     x.builtAt,
		Items:       x.items,
		Terms:       terms,
		Size:        x.sim.Size(),
		Similarity:  x.sim.Values(),
		Stats:       x.stats,
		Merge:       x.merge,
	}
}

// IndexFromSnapshot restores an index. The feature matrix is not part of a
// snapshot, so Features returns nil on the restored index.
func IndexFromSnapshot(snap *Snapshot) (*Index, error) {
	if snap.Version != SnapshotVersion {
		return nil, fmt.Errorf("snapshot version %d, want %d", snap.Version, SnapshotVersion)
	}
	if snap.Size != len(snap.Items) {
		return nil, fmt.Errorf("snapshot has %d items for a %d x %d matrix", len(snap.Items), snap.Size, snap.Size)
	}
	sim, err := NewSimilarityMatrix(snap.Size, snap.Similarity)
	if err != nil {
		return nil, err
	}

	idx := newIndex(snap.Items, sim)
	idx.vocab = NewVocabulary(snap.Terms)
	idx.stats = snap.Stats
	idx.merge = snap.Merge
	idx.fingerprint = snap.Fingerprint
	idx.pipeline = snap.Pipeline
	idx.builtAt = snap.BuiltAt
	return idx, nil
}
