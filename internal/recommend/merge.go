// Cinematch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package recommend

import (
	"fmt"
	"strings"
)

// MergePolicy controls what happens to movies with no credits row.
type MergePolicy int

const (
	// MergeDrop drops unmatched movies and reports them in MergeStats.
	MergeDrop MergePolicy = iota
	// MergeStrict fails the load with a MergeError.
	MergeStrict
)

// String returns the configuration name of the policy.
func (p MergePolicy) String() string {
	switch p {
	case MergeDrop:
		return "drop"
	case MergeStrict:
		return "strict"
	default:
		return "unknown"
	}
}

// ParseMergePolicy converts a configuration value to a MergePolicy.
func ParseMergePolicy(s string) (MergePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "drop":
		return MergeDrop, nil
	case "strict":
		return MergeStrict, nil
	default:
		return MergeDrop, fmt.Errorf("unknown merge policy %q (want drop or strict)", s)
	}
}

// LoadCatalog joins movies with credits on exact title and normalizes every row.
//
// The join is an inner join in movie order: a title with k credits rows yields
// k catalog rows, in credits order. Movies without credits are handled per
// policy. Any undecodable record list aborts the load with a *ParseError.
func LoadCatalog(movies []RawMovie, credits []RawCredit, policy MergePolicy) (*Catalog, error) {
	byTitle := make(map[string][]int, len(credits))
	for i := range credits {
		byTitle[credits[i].Title] = append(byTitle[credits[i].Title], i)
	}

	stats := MergeStats{Movies: len(movies), Credits: len(credits)}
	items := make([]Item, 0, len(movies))
	var unmatched []string

	for i := range movies {
		matches := byTitle[movies[i].Title]
		if len(matches) == 0 {
			unmatched = append(unmatched, movies[i].Title)
			continue
		}
		if len(matches) > 1 {
			stats.ExpandedTitles++
		}
		stats.Matched++
		for _, ci := range matches {
			item, err := NormalizeItem(&movies[i], &credits[ci])
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
	}

	if len(unmatched) > 0 && policy == MergeStrict {
		return nil, &MergeError{Titles: unmatched}
	}
	stats.DroppedMovies = len(unmatched)
	stats.DroppedTitles = unmatched

	return &Catalog{Items: items, Stats: stats}, nil
}
