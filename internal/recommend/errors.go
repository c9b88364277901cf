// Cinematch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package recommend

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned when a query title matches no catalog item.
	ErrNotFound = errors.New("title not found in catalog")

	// ErrIndexNotReady is returned when a query arrives before the first build completes.
	ErrIndexNotReady = errors.New("recommendation index not ready")

	// ErrSnapshotNotFound is returned by snapshot stores when nothing is stored for a fingerprint.
	ErrSnapshotNotFound = errors.New("snapshot not found")

	// ErrSnapshotStale is returned when a stored snapshot was built with different pipeline settings.
	ErrSnapshotStale = errors.New("snapshot built with different pipeline settings")

	// ErrEmptyCatalog is returned when a build is attempted on a catalog with no items.
	ErrEmptyCatalog = errors.New("catalog is empty")
)

// ParseError reports a serialized record list that could not be decoded.
// Any ParseError aborts the whole catalog load.
type ParseError struct {
	Title string
	Field string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s of %q: %v", e.Field, e.Title, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// MergeError reports primary titles with no matching credits row.
// Only returned under MergeStrict.
type MergeError struct {
	Titles []string
}

func (e *MergeError) Error() string {
	const maxShown = 5
	shown := e.Titles
	if len(shown) > maxShown {
		shown = shown[:maxShown]
	}
	msg := fmt.Sprintf("%d titles have no credits match: %s", len(e.Titles), strings.Join(shown, ", "))
	if len(e.Titles) > maxShown {
		msg += ", ..."
	}
	return msg
}
