// Cinematch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package recommend

import (
	"context"
	"fmt"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// SimilarityMatrix is a dense, symmetric n x n cosine similarity matrix.
// Values are stored as float32 in row-major order to halve memory for
// catalogs of several thousand items. Read-only after construction.
type SimilarityMatrix struct {
	n      int
	values []float32
}

// NewSimilarityMatrix wraps a row-major value slice of length n*n.
func NewSimilarityMatrix(n int, values []float32) (*SimilarityMatrix, error) {
	if n < 0 || len(values) != n*n {
		return nil, fmt.Errorf("similarity matrix: have %d values, want %d", len(values), n*n)
	}
	return &SimilarityMatrix{n: n, values: values}, nil
}

// Size returns n.
func (s *SimilarityMatrix) Size() int {
	return s.n
}

// At returns sim(i, j).
func (s *SimilarityMatrix) At(i, j int) float64 {
	return float64(s.values[i*s.n+j])
}

// Row returns row i. Callers must not modify it.
func (s *SimilarityMatrix) Row(i int) []float32 {
	return s.values[i*s.n : (i+1)*s.n]
}

// Values returns the backing slice. Callers must not modify it.
func (s *SimilarityMatrix) Values() []float32 {
	return s.values
}

// Norms returns the Euclidean norm of every feature row.
func Norms(m *FeatureMatrix) []float64 {
	norms := make([]float64, m.Rows())
	for i := range norms {
		var sum float64
		for _, tc := range m.Row(i) {
			c := float64(tc.Count)
			sum += c * c
		}
		norms[i] = math.Sqrt(sum)
	}
	return norms
}

// sparseDot multiplies two rows with ascending columns.
func sparseDot(a, b []TermCount) float64 {
	var dot float64
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i].Column == b[j].Column:
			dot += float64(a[i].Count) * float64(b[j].Count)
			i++
			j++
		case a[i].Column < b[j].Column:
			i++
		default:
			j++
		}
	}
	return dot
}

// cosine returns dot/(na*nb), or 0 when either norm is zero.
func cosine(dot, na, nb float64) float64 {
	if na == 0 || nb == 0 {
		return 0
	}
	sim := dot / (na * nb)
	// Clamp rounding drift above 1.
	if sim > 1 {
		sim = 1
	}
	return sim
}

// CosineSimilarity computes the full pairwise similarity matrix.
// The diagonal is 1.0 for every row, zero vectors included; off-diagonal
// cells involving a zero vector are 0. Each unordered pair is computed once
// and mirrored, so the result is exactly symmetric. Rows are distributed
// across workers goroutines; every cell has exactly one writer, so the output
// does not depend on scheduling.
func CosineSimilarity(ctx context.Context, m *FeatureMatrix, workers int) (*SimilarityMatrix, error) {
	n := m.Rows()
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > n && n > 0 {
		workers = n
	}

	norms := Norms(m)
	values := make([]float32, n*n)

	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			// Interleaved rows balance the shrinking upper triangle.
			for i := w; i < n; i += workers {
				if ContextCancelled(gctx) {
					return gctx.Err()
				}
				values[i*n+i] = 1
				ri := m.Row(i)
				for j := i + 1; j < n; j++ {
					sim := float32(cosine(sparseDot(ri, m.Row(j)), norms[i], norms[j]))
					values[i*n+j] = sim
					values[j*n+i] = sim
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("compute similarity: %w", err)
	}

	return &SimilarityMatrix{n: n, values: values}, nil
}
