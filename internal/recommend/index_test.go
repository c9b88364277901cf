// Cinematch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package recommend

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

// catalogOf builds a catalog whose tag documents are given directly.
func catalogOf(pairs ...string) *Catalog {
	items := make([]Item, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		items = append(items, Item{ID: int64(i/2 + 1), Title: pairs[i], Tags: pairs[i+1]})
	}
	return &Catalog{Items: items}
}

func mustBuild(t *testing.T, c *Catalog) *Index {
	t.Helper()
	idx, err := BuildIndex(context.Background(), c, DefaultConfig())
	if err != nil {
		t.Fatalf("BuildIndex() error = %v", err)
	}
	return idx
}

func titles(recs []Recommendation) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.Title
	}
	return out
}

func TestIndex_RecommendEndToEnd(t *testing.T) {
	idx := mustBuild(t, catalogOf(
		"A", "space adventure action",
		"B", "space opera action",
		"C", "romantic comedy",
	))

	recs, err := idx.Recommend("A", 2)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if got, want := titles(recs), []string{"B", "C"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Recommend(A, 2) = %v, want %v", got, want)
	}
	if recs[0].Index != 1 || recs[0].ID != 2 {
		t.Errorf("first result = %+v, want index 1 id 2", recs[0])
	}
}

func TestIndex_RecommendBoundedOutput(t *testing.T) {
	idx := mustBuild(t, catalogOf(
		"A", "alien war",
		"B", "alien planet",
		"C", "war fleet",
		"D", "ocean love",
	))

	tests := []struct {
		name string
		k    int
		want int
	}{
		{"k smaller than catalog", 2, 2},
		{"k larger than catalog", 10, 3},
		{"k zero uses default", 0, 3},
		{"k negative uses default", -3, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs, err := idx.Recommend("A", tt.k)
			if err != nil {
				t.Fatalf("Recommend() error = %v", err)
			}
			if len(recs) != tt.want {
				t.Errorf("len = %d, want %d", len(recs), tt.want)
			}
			seen := make(map[int]bool)
			for _, r := range recs {
				if r.Title == "A" {
					t.Error("result includes the query item")
				}
				if seen[r.Index] {
					t.Errorf("duplicate result index %d", r.Index)
				}
				seen[r.Index] = true
			}
		})
	}
}

func TestIndex_RecommendDefaultK(t *testing.T) {
	idx := mustBuild(t, catalogOf(
		"A", "alien war",
		"B", "alien planet",
		"C", "war fleet",
		"D", "ocean love",
		"E", "alien ocean",
		"F", "planet fleet",
		"G", "war love",
	))

	for _, k := range []int{0, -3} {
		recs, err := idx.Recommend("A", k)
		if err != nil {
			t.Fatalf("Recommend(k=%d) error = %v", k, err)
		}
		if len(recs) != DefaultTopK {
			t.Errorf("Recommend(k=%d) returned %d items, want %d", k, len(recs), DefaultTopK)
		}
	}
}

func TestIndex_RecommendTieBreakByRow(t *testing.T) {
	idx := mustBuild(t, catalogOf(
		"Q", "gamma delta",
		"X", "unrelated words",
		"Y1", "gamma",
		"Y2", "gamma",
		"Y3", "delta",
	))

	recs, err := idx.Recommend("Q", 4)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if got, want := titles(recs), []string{"Y1", "Y2", "Y3", "X"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Recommend() = %v, want %v", got, want)
	}
}

func TestIndex_RecommendNotFound(t *testing.T) {
	idx := mustBuild(t, catalogOf("A", "alien war", "B", "alien planet"))

	recs, err := idx.Recommend("Nonexistent Title", 5)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Recommend() error = %v, want ErrNotFound", err)
	}
	if recs != nil {
		t.Errorf("Recommend() = %v, want nil", recs)
	}
}

func TestIndex_SingleItemCatalog(t *testing.T) {
	idx := mustBuild(t, catalogOf("Only", "lonely movie"))

	recs, err := idx.Recommend("Only", 5)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if len(recs) != 0 {
		t.Errorf("Recommend() = %v, want empty", recs)
	}
}

func TestIndex_DuplicateTitlesResolveToFirstRow(t *testing.T) {
	idx := mustBuild(t, catalogOf(
		"Twin", "alien war",
		"Other", "alien war fleet",
		"Twin", "ocean love",
	))

	if row, _ := idx.Lookup("Twin"); row != 0 {
		t.Errorf("Lookup(Twin) = %d, want 0", row)
	}
	if idx.Stats().DuplicateTitles != 1 {
		t.Errorf("DuplicateTitles = %d, want 1", idx.Stats().DuplicateTitles)
	}
	recs, err := idx.Recommend("Twin", 1)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if recs[0].Title != "Other" {
		t.Errorf("Recommend(Twin) = %v, want Other first", titles(recs))
	}
}

func TestIndex_ZeroVectorItem(t *testing.T) {
	idx := mustBuild(t, catalogOf(
		"Empty", "the of and",
		"A", "alien war",
		"B", "alien planet",
	))

	if idx.Stats().DegenerateItems != 1 {
		t.Errorf("DegenerateItems = %d, want 1", idx.Stats().DegenerateItems)
	}
	recs, err := idx.Recommend("Empty", 2)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	for _, r := range recs {
		if r.Score != 0 {
			t.Errorf("score to %s = %v, want 0", r.Title, r.Score)
		}
	}
}

func TestBuildIndex_Deterministic(t *testing.T) {
	c := catalogOf(
		"A", "alien planet war marine",
		"B", "ocean ship iceberg love",
		"C", "alien ship war fleet",
		"D", "love story ocean war",
	)
	first := mustBuild(t, c)
	second := mustBuild(t, c)

	if !reflect.DeepEqual(first.Vocabulary().Terms(), second.Vocabulary().Terms()) {
		t.Error("vocabularies differ")
	}
	if !reflect.DeepEqual(first.Features(), second.Features()) {
		t.Error("feature matrices differ")
	}
	if !reflect.DeepEqual(first.Similarity().Values(), second.Similarity().Values()) {
		t.Error("similarity matrices differ")
	}
}

func TestBuildIndex_EmptyCatalog(t *testing.T) {
	_, err := BuildIndex(context.Background(), &Catalog{}, nil)
	if !errors.Is(err, ErrEmptyCatalog) {
		t.Errorf("BuildIndex() error = %v, want ErrEmptyCatalog", err)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	idx := mustBuild(t, catalogOf(
		"A", "space adventure action",
		"B", "space opera action",
		"C", "romantic comedy",
	))
	idx.fingerprint = "abc"

	restored, err := IndexFromSnapshot(idx.Snapshot())
	if err != nil {
		t.Fatalf("IndexFromSnapshot() error = %v", err)
	}
	if restored.Fingerprint() != "abc" {
		t.Errorf("Fingerprint() = %q, want abc", restored.Fingerprint())
	}
	if restored.Pipeline() != DefaultConfig().PipelineKey() {
		t.Errorf("Pipeline() = %q, want %q", restored.Pipeline(), DefaultConfig().PipelineKey())
	}
	want, _ := idx.Recommend("A", 2)
	got, err := restored.Recommend("A", 2)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("restored Recommend() = %v, want %v", got, want)
	}
}

func TestIndexFromSnapshot_RejectsMismatch(t *testing.T) {
	tests := []struct {
		name string
		snap *Snapshot
	}{
		{"wrong version", &Snapshot{Version: SnapshotVersion + 1}},
		{"size mismatch", &Snapshot{Version: SnapshotVersion, Size: 2, Items: []Item{{Title: "A"}}}},
		{"short matrix", &Snapshot{Version: SnapshotVersion, Size: 1, Items: []Item{{Title: "A"}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := IndexFromSnapshot(tt.snap); err == nil {
				t.Error("IndexFromSnapshot() error = nil, want error")
			}
		})
	}
}
