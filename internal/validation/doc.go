// Cinematch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

// Package validation wraps go-playground/validator v10 with a shared
// instance, two custom tags (notblank, nocontrol) and error translation into
// the API's VALIDATION_ERROR envelope.
//
// Field names in messages come from the query, json or koanf struct tag, so
// a field tagged query:"title" is reported as "title".
package validation
