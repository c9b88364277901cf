// Cinematch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

// Package logging provides the process-wide zerolog logger for Cinematch.
//
// Call Init once from main with the logging section of the configuration;
// until then a JSON logger at info level writes to stderr.
//
//	logging.Init(logging.Config{Level: "debug", Format: "console"})
//	logging.Info().Int("items", idx.Len()).Msg("index ready")
//
// HTTP handlers log through Ctx so every line carries the request ID set by
// the request ID middleware:
//
//	logging.Ctx(r.Context()).Warn().Str("title", title).Msg("title not found")
//
// Two adapters let third-party libraries share the same stream:
// SlogHandler for sutureslog, and WatermillAdapter for the event bus.
//
// Always terminate an event with Msg or Send, otherwise nothing is written.
package logging
