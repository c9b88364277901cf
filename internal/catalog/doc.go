// Cinematch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

// Package catalog provides the raw movie and credits sources consumed by the
// recommendation engine.
//
// Three sources implement recommend.DataSource:
//
//   - CSVSource reads the TMDB movies and credits CSV exports through an
//     in-process DuckDB connection (read_csv_auto).
//   - MongoSource reads the same record sets from two MongoDB collections.
//   - MemorySource holds records in memory for tests and tools.
//
// Every source reports a content fingerprint. The engine rebuilds its index
// only when the fingerprint changes, so sources must change the fingerprint
// whenever any record changes.
package catalog
