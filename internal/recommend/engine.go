// Cinematch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package recommend

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Note: This package has no dependencies on other internal packages.
// DataSource and SnapshotStore let the catalog and storage packages plug in
// without creating circular imports.

// Engine owns the process-wide index cache. The current index is keyed by
// the source fingerprint: it is built on first access, rebuilt only when the
// fingerprint changes, and dropped explicitly by Invalidate.
// It is safe for concurrent use; queries never block on a rebuild.
type Engine struct {
	config *Config
	logger zerolog.Logger
	source DataSource
	store  SnapshotStore

	current atomic.Pointer[Index]
	buildMu sync.Mutex

	hooksMu sync.RWMutex
	hooks   []func(*Index)

	requestCount  atomic.Int64
	notFoundCount atomic.Int64
	buildCount    atomic.Int64
	snapshotHits  atomic.Int64
}

// BuildResult describes one Ensure/Rebuild call.
type BuildResult struct {
	Index *Index
	// Rebuilt is false when the cached index was already current.
	Rebuilt bool
	// FromSnapshot is true when the index was restored from the snapshot store.
	FromSnapshot bool
}

// EngineStats exposes engine counters.
type EngineStats struct {
	Ready         bool       `json:"ready"`
	Source        string     `json:"source"`
	Fingerprint   string     `json:"fingerprint,omitempty"`
	BuiltAt       time.Time  `json:"built_at,omitempty"`
	Index         IndexStats `json:"index"`
	Merge         MergeStats `json:"merge"`
	Requests      int64      `json:"requests"`
	NotFound      int64      `json:"not_found"`
	Builds        int64      `json:"builds"`
	SnapshotLoads int64      `json:"snapshot_loads"`
}

// NewEngine creates an engine reading from source.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, source DataSource, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if source == nil {
		return nil, fmt.Errorf("data source is required")
	}

	return &Engine{
		config: cfg,
		logger: logger.With().Str("component", "recommend").Logger(),
		source: source,
	}, nil
}

// SetSnapshotStore enables snapshot reuse across restarts.
func (e *Engine) SetSnapshotStore(store SnapshotStore) {
	e.store = store
}

// OnRebuild registers a callback invoked after every successful swap.
func (e *Engine) OnRebuild(fn func(*Index)) {
	e.hooksMu.Lock()
	defer e.hooksMu.Unlock()
	e.hooks = append(e.hooks, fn)
}

// Config returns a copy of the engine configuration.
func (e *Engine) Config() *Config {
	return e.config.Clone()
}

// Current returns the loaded index, or nil before the first build.
func (e *Engine) Current() *Index {
	return e.current.Load()
}

// Ready reports whether an index is loaded.
func (e *Engine) Ready() bool {
	return e.current.Load() != nil
}

// Invalidate drops the cached index. The next Ensure rebuilds it.
func (e *Engine) Invalidate() {
	e.current.Store(nil)
	e.logger.Info().Msg("index invalidated")
}

// Ensure returns an index matching the current source fingerprint,
// building it if none is cached or the fingerprint has changed.
func (e *Engine) Ensure(ctx context.Context) (*BuildResult, error) {
	fp, err := e.source.Fingerprint(ctx)
	if err != nil {
		return nil, fmt.Errorf("fingerprint %s: %w", e.source.Name(), err)
	}

	if idx := e.current.Load(); idx != nil && idx.fingerprint == fp {
		return &BuildResult{Index: idx}, nil
	}

	e.buildMu.Lock()
	defer e.buildMu.Unlock()

	// Another caller may have finished the build while we waited.
	if idx := e.current.Load(); idx != nil && idx.fingerprint == fp {
		return &BuildResult{Index: idx}, nil
	}
	return e.build(ctx, fp, true)
}

// Rebuild recomputes the index from the source, ignoring the cache and any stored snapshot.
func (e *Engine) Rebuild(ctx context.Context) (*BuildResult, error) {
	fp, err := e.source.Fingerprint(ctx)
	if err != nil {
		return nil, fmt.Errorf("fingerprint %s: %w", e.source.Name(), err)
	}

	e.buildMu.Lock()
	defer e.buildMu.Unlock()
	return e.build(ctx, fp, false)
}

// build must be called with buildMu held.
func (e *Engine) build(ctx context.Context, fp string, useSnapshot bool) (*BuildResult, error) {
	ctx, cancel := context.WithTimeout(ctx, e.config.BuildTimeout)
	defer cancel()

	logger := e.logger.With().Str("source", e.source.Name()).Str("fingerprint", shortFingerprint(fp)).Logger()

	if useSnapshot && e.store != nil {
		idx, err := e.loadSnapshot(ctx, fp)
		switch {
		case err == nil:
			e.snapshotHits.Add(1)
			e.swap(idx)
			logger.Info().Int("items", idx.Len()).Msg("index restored from snapshot")
			return &BuildResult{Index: idx, Rebuilt: true, FromSnapshot: true}, nil
		case errors.Is(err, ErrSnapshotNotFound):
			logger.Debug().Msg("no snapshot for fingerprint")
		case errors.Is(err, ErrSnapshotStale):
			logger.Info().Err(err).Msg("pipeline settings changed, rebuilding")
		default:
			logger.Warn().Err(err).Msg("snapshot unusable, rebuilding")
		}
	}

	movies, credits, err := e.source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", e.source.Name(), err)
	}

	catalog, err := LoadCatalog(movies, credits, e.config.MergePolicy)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	if catalog.Stats.DroppedMovies > 0 {
		logger.Warn().
			Int("dropped", catalog.Stats.DroppedMovies).
			Strs("sample", sample(catalog.Stats.DroppedTitles, 5)).
			Msg("movies without credits dropped")
	}

	idx, err := BuildIndex(ctx, catalog, e.config)
	if err != nil {
		return nil, fmt.Errorf("build index: %w", err)
	}
	idx.fingerprint = fp

	stats := idx.Stats()
	if stats.DegenerateItems > 0 {
		logger.Warn().Int("items", stats.DegenerateItems).Msg("items with empty feature vectors")
	}
	if stats.DuplicateTitles > 0 {
		logger.Warn().Int("titles", stats.DuplicateTitles).Msg("duplicate titles resolve to first row")
	}

	if e.store != nil {
		if err := e.store.SaveSnapshot(ctx, idx.Snapshot()); err != nil {
			logger.Warn().Err(err).Msg("failed to save index snapshot")
		}
	}

	e.buildCount.Add(1)
	e.swap(idx)

	logger.Info().
		Int("items", stats.Items).
		Int("vocabulary", stats.VocabularySize).
		Dur("duration", stats.BuildDuration).
		Msg("index built")

	return &BuildResult{Index: idx, Rebuilt: true}, nil
}

func (e *Engine) loadSnapshot(ctx context.Context, fp string) (*Index, error) {
	snap, err := e.store.LoadSnapshot(ctx, fp)
	if err != nil {
		return nil, err
	}
	if want := e.config.PipelineKey(); snap.Pipeline != want {
		return nil, fmt.Errorf("%w: have %q, want %q", ErrSnapshotStale, snap.Pipeline, want)
	}
	return IndexFromSnapshot(snap)
}

func (e *Engine) swap(idx *Index) {
	e.current.Store(idx)

	e.hooksMu.RLock()
	hooks := e.hooks
	e.hooksMu.RUnlock()
	for _, fn := range hooks {
		fn(idx)
	}
}

// Recommend answers a top-K query against the current index.
// k <= 0 selects DefaultK; k above MaxK is clamped.
func (e *Engine) Recommend(ctx context.Context, title string, k int) ([]Recommendation, error) {
	return e.RecommendFrom(ctx, e.current.Load(), title, k)
}

// RecommendFrom is Recommend against an index the caller already loaded
// with Current, so results and the fingerprint they are reported under
// come from the same build. A nil idx returns ErrIndexNotReady.
func (e *Engine) RecommendFrom(_ context.Context, idx *Index, title string, k int) ([]Recommendation, error) {
	e.requestCount.Add(1)

	if idx == nil {
		return nil, ErrIndexNotReady
	}

	if k <= 0 {
		k = e.config.DefaultK
	}
	if k > e.config.MaxK {
		k = e.config.MaxK
	}

	recs, err := idx.Recommend(title, k)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			e.notFoundCount.Add(1)
		}
		return nil, err
	}

	e.logger.Debug().
		Str("title", title).
		Int("k", k).
		Int("returned", len(recs)).
		Msg("recommendation complete")
	return recs, nil
}

// Stats returns a snapshot of engine state.
func (e *Engine) Stats() EngineStats {
	stats := EngineStats{
		Source:        e.source.Name(),
		Requests:      e.requestCount.Load(),
		NotFound:      e.notFoundCount.Load(),
		Builds:        e.buildCount.Load(),
		SnapshotLoads: e.snapshotHits.Load(),
	}
	if idx := e.current.Load(); idx != nil {
		stats.Ready = true
		stats.Fingerprint = idx.fingerprint
		stats.BuiltAt = idx.builtAt
		stats.Index = idx.stats
		stats.Merge = idx.merge
		stats.Merge.DroppedTitles = nil
	}
	return stats
}

func shortFingerprint(fp string) string {
	if len(fp) > 12 {
		return fp[:12]
	}
	return fp
}

func sample(values []string, n int) []string {
	if len(values) > n {
		return values[:n]
	}
	return values
}
