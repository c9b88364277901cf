// Cinematch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package recommend

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
)

// MaxCast is the number of leading cast members kept per item.
const MaxCast = 3

// DirectorJob is the crew job that identifies a director.
const DirectorJob = "Director"

var errMissingName = errors.New("record has no name")

// rawRecord mirrors Record with a nullable name so a missing key can be detected.
type rawRecord struct {
	Name *string `json:"name"`
	Job  *string `json:"job"`
}

// ParseRecords decodes a serialized record list.
// Blank input decodes to an empty list. Every record must carry a string name.
func ParseRecords(raw string) ([]Record, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	var decoded []rawRecord
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return nil, fmt.Errorf("decode record list: %w", err)
	}

	records := make([]Record, 0, len(decoded))
	for i, r := range decoded {
		if r.Name == nil {
			return nil, fmt.Errorf("record %d: %w", i, errMissingName)
		}
		records = append(records, Record{Name: *r.Name, Job: r.Job})
	}
	return records, nil
}

// Names returns every record name in input order.
func Names(records []Record) []string {
	names := make([]string, 0, len(records))
	for _, r := range records {
		names = append(names, r.Name)
	}
	return names
}

// LeadNames returns the names of the first n records, or fewer if the list is shorter.
func LeadNames(records []Record, n int) []string {
	if n < len(records) {
		records = records[:n]
	}
	return Names(records)
}

// Director returns the first record whose job is exactly DirectorJob,
// as a single-element list. Later directors are ignored.
func Director(records []Record) []string {
	for _, r := range records {
		if r.Job != nil && *r.Job == DirectorJob {
			return []string{r.Name}
		}
	}
	return []string{}
}

// NormalizeItem decodes a joined movie/credit pair into an Item with its tag document.
func NormalizeItem(movie *RawMovie, credit *RawCredit) (Item, error) {
	fields := []struct {
		name string
		raw  string
	}{
		{"genres", movie.Genres},
		{"keywords", movie.Keywords},
		{"cast", credit.Cast},
		{"crew", credit.Crew},
	}

	parsed := make([][]Record, len(fields))
	for i, f := range fields {
		records, err := ParseRecords(f.raw)
		if err != nil {
			return Item{}, &ParseError{Title: movie.Title, Field: f.name, Err: err}
		}
		parsed[i] = records
	}

	id := credit.MovieID
	if id == 0 {
		id = movie.ID
	}

	item := Item{
		ID:       id,
		Title:    movie.Title,
		Overview: movie.Overview,
		Genres:   Names(parsed[0]),
		Keywords: Names(parsed[1]),
		Cast:     LeadNames(parsed[2], MaxCast),
		Director: Director(parsed[3]),
	}
	item.Tags = SynthesizeTags(&item)
	return item, nil
}
