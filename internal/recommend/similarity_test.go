// Cinematch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package recommend

import (
	"context"
	"errors"
	"math"
	"reflect"
	"testing"
)

func featuresFor(t *testing.T, docs ...string) *FeatureMatrix {
	t.Helper()
	_, features, _ := NewVectorizer(0, 0).FitTransform(docs)
	return features
}

func TestCosineSimilarity_Properties(t *testing.T) {
	features := featuresFor(t,
		"alien planet war marine colonel",
		"ocean ship iceberg love ship",
		"alien ship war fleet captain",
		"love story ocean war",
		"the and of",
		"marine alien planet",
	)

	sim, err := CosineSimilarity(context.Background(), features, 3)
	if err != nil {
		t.Fatalf("CosineSimilarity() error = %v", err)
	}

	n := sim.Size()
	for i := 0; i < n; i++ {
		if sim.At(i, i) != 1.0 {
			t.Errorf("sim(%d,%d) = %v, want 1.0", i, i, sim.At(i, i))
		}
		for j := 0; j < n; j++ {
			if math.Abs(sim.At(i, j)-sim.At(j, i)) > 1e-9 {
				t.Errorf("sim(%d,%d)=%v != sim(%d,%d)=%v", i, j, sim.At(i, j), j, i, sim.At(j, i))
			}
			if v := sim.At(i, j); v < 0 || v > 1 {
				t.Errorf("sim(%d,%d) = %v out of [0,1]", i, j, v)
			}
		}
	}
}

func TestCosineSimilarity_ZeroVector(t *testing.T) {
	features := featuresFor(t, "space opera", "the of and", "space war")

	sim, err := CosineSimilarity(context.Background(), features, 1)
	if err != nil {
		t.Fatalf("CosineSimilarity() error = %v", err)
	}

	for j := 0; j < sim.Size(); j++ {
		if j == 1 {
			continue
		}
		if sim.At(1, j) != 0 || sim.At(j, 1) != 0 {
			t.Errorf("zero vector similarity with %d = %v, want 0", j, sim.At(1, j))
		}
	}
	if sim.At(1, 1) != 1.0 {
		t.Errorf("zero vector self-similarity = %v, want 1.0", sim.At(1, 1))
	}
}

func TestCosineSimilarity_KnownValue(t *testing.T) {
	features := featuresFor(t, "space adventure action", "space opera action")

	sim, err := CosineSimilarity(context.Background(), features, 0)
	if err != nil {
		t.Fatalf("CosineSimilarity() error = %v", err)
	}
	if got := sim.At(0, 1); math.Abs(got-2.0/3.0) > 1e-6 {
		t.Errorf("sim(0,1) = %v, want 2/3", got)
	}
}

func TestCosineSimilarity_WorkerCountDoesNotChangeResult(t *testing.T) {
	features := featuresFor(t,
		"alien planet war", "ocean ship love", "alien ship war",
		"love story ocean", "planet marine", "fleet captain war",
	)

	serial, err := CosineSimilarity(context.Background(), features, 1)
	if err != nil {
		t.Fatalf("serial error = %v", err)
	}
	parallel, err := CosineSimilarity(context.Background(), features, 4)
	if err != nil {
		t.Fatalf("parallel error = %v", err)
	}
	if !reflect.DeepEqual(serial.Values(), parallel.Values()) {
		t.Error("parallel similarity differs from serial")
	}
}

func TestCosineSimilarity_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := CosineSimilarity(ctx, featuresFor(t, "aa bb", "bb cc"), 1)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("CosineSimilarity() error = %v, want context.Canceled", err)
	}
}

func TestNewSimilarityMatrix_RejectsBadShape(t *testing.T) {
	if _, err := NewSimilarityMatrix(2, make([]float32, 3)); err == nil {
		t.Error("NewSimilarityMatrix() error = nil, want shape error")
	}
}
