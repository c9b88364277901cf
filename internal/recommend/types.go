// Cinematch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package recommend

import (
	"context"
	"time"
)

// Record is one decoded entry of a serialized metadata list.
// Genre, keyword and cast records carry only a name; crew records also carry a job.
type Record struct {
	// Name is the human-readable value (genre name, actor, crew member).
	Name string `json:"name"`

	// Job is the crew role. Nil for records that have no job attribute.
	Job *string `json:"job,omitempty"`
}

// RawMovie is one row of the primary metadata source.
// Genres and Keywords hold the serialized record lists exactly as stored.
type RawMovie struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Overview string `json:"overview"`
	Genres   string `json:"genres"`
	Keywords string `json:"keywords"`
}

// RawCredit is one row of the secondary (credits) metadata source.
type RawCredit struct {
	MovieID int64  `json:"movie_id"`
	Title   string `json:"title"`
	Cast    string `json:"cast"`
	Crew    string `json:"crew"`
}

// Item is a normalized catalog entry.
type Item struct {
	// ID is the external movie identifier used for poster lookups.
	ID int64 `json:"id"`

	// Title is the public selection key.
	Title string `json:"title"`

	// Overview is the synopsis, empty when absent.
	Overview string `json:"overview"`

	// Genres and Keywords keep every name in input order.
	Genres   []string `json:"genres"`
	Keywords []string `json:"keywords"`

	// Cast holds at most MaxCast lead actors.
	Cast []string `json:"cast"`

	// Director holds zero or one name.
	Director []string `json:"director"`

	// Tags is the synthesized tag document.
	Tags string `json:"tags"`
}

// Catalog is the ordered set of items. Row indices align with the
// feature and similarity matrices and are never reordered.
type Catalog struct {
	Items []Item

	// Stats describes what happened while merging the raw sources.
	Stats MergeStats
}

// Len returns the number of catalog rows.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Items)
}

// MergeStats reports the outcome of joining movies with credits.
type MergeStats struct {
	Movies         int      `json:"movies"`
	Credits        int      `json:"credits"`
	Matched        int      `json:"matched"`
	DroppedMovies  int      `json:"dropped_movies"`
	DroppedTitles  []string `json:"dropped_titles,omitempty"`
	ExpandedTitles int      `json:"expanded_titles"`
}

// Recommendation is one ranked result of a top-K query.
type Recommendation struct {
	// Title of the recommended item.
	Title string `json:"title"`

	// Index is the catalog row of the recommended item.
	Index int `json:"index"`

	// ID is the external movie identifier of the recommended item.
	ID int64 `json:"id"`

	// Score is the cosine similarity to the query item.
	Score float64 `json:"score"`
}

// IndexStats summarizes a built index.
type IndexStats struct {
	Items           int           `json:"items"`
	VocabularySize  int           `json:"vocabulary_size"`
	DistinctTerms   int           `json:"distinct_terms"`
	DegenerateItems int           `json:"degenerate_items"`
	DuplicateTitles int           `json:"duplicate_titles"`
	BuildDuration   time.Duration `json:"build_duration"`
}

// DataSource supplies the raw catalog inputs.
// Implemented by the catalog package; defined here to avoid an import cycle.
type DataSource interface {
	// Name identifies the source in logs and status output.
	Name() string

	// Fingerprint returns a value that changes whenever the underlying data changes.
	Fingerprint(ctx context.Context) (string, error)

	// Load returns both raw record sets.
	Load(ctx context.Context) ([]RawMovie, []RawCredit, error)
}

// SnapshotStore persists built indexes keyed by catalog fingerprint.
type SnapshotStore interface {
	// LoadSnapshot returns ErrSnapshotNotFound when no snapshot exists for the fingerprint.
	LoadSnapshot(ctx context.Context, fingerprint string) (*Snapshot, error)

	// SaveSnapshot stores a snapshot, replacing any snapshot with the same fingerprint.
	SaveSnapshot(ctx context.Context, snap *Snapshot) error
}

// ContextCancelled reports whether ctx has been cancelled without blocking.
func ContextCancelled(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}
