// Cinematch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package recommend

import (
	"context"
	"fmt"
	"sort"
	"time"
)

// Index is a built catalog with its vocabulary, features and similarity matrix.
// It is immutable; any number of goroutines may query it concurrently.
type Index struct {
	items       []Item
	vocab       *Vocabulary
	features    *FeatureMatrix
	sim         *SimilarityMatrix
	titles      map[string]int
	stats       IndexStats
	merge       MergeStats
	fingerprint string
	pipeline    string
	builtAt     time.Time
}

// DefaultTopK is the number of results returned when a query asks for k <= 0.
const DefaultTopK = 5

// BuildIndex runs the batch pipeline over a loaded catalog:
// vectorize the tag documents, then compute pairwise cosine similarity.
func BuildIndex(ctx context.Context, catalog *Catalog, cfg *Config) (*Index, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if catalog.Len() == 0 {
		return nil, ErrEmptyCatalog
	}
	start := time.Now()

	docs := make([]string, catalog.Len())
	for i := range catalog.Items {
		docs[i] = catalog.Items[i].Tags
	}

	vectorizer := NewVectorizer(cfg.MaxFeatures, cfg.MinTokenLength)
	vocab, features, distinct := vectorizer.FitTransform(docs)

	if ContextCancelled(ctx) {
		return nil, ctx.Err()
	}

	sim, err := CosineSimilarity(ctx, features, cfg.Workers)
	if err != nil {
		return nil, err
	}

	idx := newIndex(catalog.Items, sim)
	idx.vocab = vocab
	idx.features = features
	idx.merge = catalog.Stats
	idx.pipeline = cfg.PipelineKey()
	idx.builtAt = time.Now()
	idx.stats.VocabularySize = vocab.Len()
	idx.stats.DistinctTerms = distinct
	for i := 0; i < features.Rows(); i++ {
		if len(features.Row(i)) == 0 {
			idx.stats.DegenerateItems++
		}
	}
	idx.stats.BuildDuration = time.Since(start)
	return idx, nil
}

// newIndex wires the title lookup. Duplicate titles resolve to their first row.
func newIndex(items []Item, sim *SimilarityMatrix) *Index {
	titles := make(map[string]int, len(items))
	dups := 0
	for i := range items {
		if _, exists := titles[items[i].Title]; exists {
			dups++
			continue
		}
		titles[items[i].Title] = i
	}
	return &Index{
		items:  items,
		sim:    sim,
		titles: titles,
		stats:  IndexStats{Items: len(items), DuplicateTitles: dups},
	}
}

// Recommend returns up to k items most similar to title, excluding the item itself.
// Results are ordered by descending similarity, then ascending row index.
// Unknown titles return ErrNotFound. k <= 0 selects DefaultTopK.
func (x *Index) Recommend(title string, k int) ([]Recommendation, error) {
	q, ok := x.titles[title]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, title)
	}
	if k <= 0 {
		k = DefaultTopK
	}

	row := x.sim.Row(q)
	candidates := make([]int, 0, len(row)-1)
	for j := range row {
		if j != q {
			candidates = append(candidates, j)
		}
	}
	sort.Slice(candidates, func(a, b int) bool {
		sa, sb := row[candidates[a]], row[candidates[b]]
		if sa != sb {
			return sa > sb
		}
		return candidates[a] < candidates[b]
	})
	if len(candidates) > k {
		candidates = candidates[:k]
	}

	recs := make([]Recommendation, len(candidates))
	for i, j := range candidates {
		recs[i] = Recommendation{
			Title: x.items[j].Title,
			Index: j,
			ID:    x.items[j].ID,
			Score: float64(row[j]),
		}
	}
	return recs, nil
}

// Lookup returns the row index for title using first-match semantics.
func (x *Index) Lookup(title string) (int, bool) {
	i, ok := x.titles[title]
	return i, ok
}

// Len returns the number of catalog rows.
func (x *Index) Len() int { return len(x.items) }

// Item returns catalog row i.
func (x *Index) Item(i int) Item { return x.items[i] }

// Items returns the catalog rows. Callers must not modify the slice.
func (x *Index) Items() []Item { return x.items }

// Similarity returns the similarity matrix.
func (x *Index) Similarity() *SimilarityMatrix { return x.sim }

// Vocabulary returns the vocabulary.
func (x *Index) Vocabulary() *Vocabulary { return x.vocab }

// Features returns the feature matrix. Nil when restored from a snapshot
// saved without features.
func (x *Index) Features() *FeatureMatrix { return x.features }

// Stats returns build statistics.
func (x *Index) Stats() IndexStats { return x.stats }

// MergeStats returns the catalog merge statistics.
func (x *Index) MergeStats() MergeStats { return x.merge }

// Fingerprint returns the catalog fingerprint the index was built from.
func (x *Index) Fingerprint() string { return x.fingerprint }

// Pipeline returns the PipelineKey of the config the index was built with.
func (x *Index) Pipeline() string { return x.pipeline }

// BuiltAt returns when the index was built.
func (x *Index) BuiltAt() time.Time { return x.builtAt }
