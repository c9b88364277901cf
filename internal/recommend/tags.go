// Cinematch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package recommend

import "strings"

// SynthesizeTags builds the tag document for an item.
// Field order is overview, genres, keywords, cast, director; every field
// contributes a separator even when empty so the layout never shifts.
func SynthesizeTags(item *Item) string {
	var b strings.Builder
	b.WriteString(item.Overview)
	for _, field := range [][]string{item.Genres, item.Keywords, item.Cast, item.Director} {
		b.WriteByte(' ')
		b.WriteString(strings.Join(field, " "))
	}
	return b.String()
}
