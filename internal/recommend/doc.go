// Cinematch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

// Package recommend implements content-based movie recommendations.
//
// # Pipeline
//
// A catalog load runs five stages in order, each consuming the whole catalog:
//
//   - Normalize: decode genre, keyword, cast and crew record lists
//     (all genres and keywords, the first three cast members, the first director)
//   - Synthesize: join overview and normalized fields into one tag document
//   - Vectorize: select up to MaxFeatures terms by corpus frequency and count them per document
//   - Similarity: compute the dense, symmetric cosine similarity matrix
//   - Recommend: rank other items by similarity to a query title
//
// The first four stages run once per load; Recommend is a read-only query.
//
// # Determinism
//
// The same ordered catalog and configuration always produce identical
// vocabularies, feature rows and similarity values. Vocabulary cutoff ties are
// broken by first appearance in the corpus, and ranking ties by row index.
//
// # Usage
//
//	engine, err := recommend.NewEngine(recommend.DefaultConfig(), source, logger)
//	if _, err := engine.Ensure(ctx); err != nil {
//	    return err
//	}
//	recs, err := engine.Recommend(ctx, "Avatar", 5)
//
// # Thread Safety
//
// A built Index is immutable. The Engine swaps indexes atomically, so queries
// run without locks while a rebuild is in progress.
package recommend
