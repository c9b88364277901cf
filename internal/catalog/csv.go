// Cinematch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package catalog

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	_ "github.com/duckdb/duckdb-go/v2" // DuckDB database/sql driver

	"github.com/tomtom215/cinematch/internal/logging"
	"github.com/tomtom215/cinematch/internal/recommend"
)

// CSVConfig configures a CSVSource.
type CSVConfig struct {
	// MoviesPath is the movies export (id, title, overview, genres, keywords, ...).
	MoviesPath string

	// CreditsPath is the credits export (movie_id, title, cast, crew).
	CreditsPath string

	// MovieIDColumn names the identifier column of the movies file.
	// TMDB exports use "id"; preprocessed exports often use "movie_id".
	MovieIDColumn string

	// Threads and MaxMemory tune the DuckDB connection.
	Threads   int
	MaxMemory string
}

// fileStamp is the cheap part of a fingerprint check.
type fileStamp struct {
	size    int64
	modTime time.Time
}

// CSVSource reads the catalog from two CSV files using DuckDB.
type CSVSource struct {
	cfg CSVConfig

	mu          sync.Mutex
	stamps      [2]fileStamp
	fingerprint string
}

// NewCSVSource creates a CSV source. Files are not opened until first use.
func NewCSVSource(cfg CSVConfig) (*CSVSource, error) {
	if cfg.MoviesPath == "" || cfg.CreditsPath == "" {
		return nil, fmt.Errorf("movies and credits paths are required")
	}
	if cfg.MovieIDColumn == "" {
		cfg.MovieIDColumn = "id"
	}
	if !isIdentifier(cfg.MovieIDColumn) {
		return nil, fmt.Errorf("invalid movie id column %q", cfg.MovieIDColumn)
	}
	if cfg.Threads <= 0 {
		cfg.Threads = 2
	}
	if cfg.MaxMemory == "" {
		cfg.MaxMemory = "1GB"
	}
	return &CSVSource{cfg: cfg}, nil
}

// Name identifies the source.
func (s *CSVSource) Name() string {
	return "csv"
}

// Fingerprint returns the SHA-256 of both files' contents. Contents are only
// rehashed when a file's size or modification time changes.
func (s *CSVSource) Fingerprint(ctx context.Context) (string, error) {
	paths := [2]string{s.cfg.MoviesPath, s.cfg.CreditsPath}

	var stamps [2]fileStamp
	for i, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return "", fmt.Errorf("stat %s: %w", p, err)
		}
		stamps[i] = fileStamp{size: info.Size(), modTime: info.ModTime()}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.fingerprint != "" && stamps == s.stamps {
		return s.fingerprint, nil
	}

	h := sha256.New()
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if err := hashFile(h, p); err != nil {
			return "", err
		}
	}

	s.stamps = stamps
	s.fingerprint = hex.EncodeToString(h.Sum(nil))
	return s.fingerprint, nil
}

func hashFile(w io.Writer, path string) error {
	f, err := os.Open(path) //nolint:gosec // path comes from trusted configuration
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }() //nolint:errcheck // read-only file

	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("hash %s: %w", path, err)
	}
	// Separate the two files so moving bytes between them changes the hash.
	_, err = w.Write([]byte{0})
	return err
}

// Load reads both files in row order.
func (s *CSVSource) Load(ctx context.Context) ([]recommend.RawMovie, []recommend.RawCredit, error) {
	start := time.Now()

	// Disable auto-install/auto-load to prevent hangs in restricted network environments
	connStr := fmt.Sprintf(":memory:?threads=%d&max_memory=%s&preserve_insertion_order=true&autoinstall_known_extensions=false&autoload_known_extensions=false",
		s.cfg.Threads, s.cfg.MaxMemory)
	db, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, nil, fmt.Errorf("open duckdb: %w", err)
	}
	defer func() { _ = db.Close() }() //nolint:errcheck // in-memory connection

	movies, err := s.loadMovies(ctx, db)
	if err != nil {
		return nil, nil, err
	}
	credits, err := s.loadCredits(ctx, db)
	if err != nil {
		return nil, nil, err
	}

	logging.Info().
		Int("movies", len(movies)).
		Int("credits", len(credits)).
		Dur("duration", time.Since(start)).
		Msg("catalog CSV files loaded")

	return movies, credits, nil
}

func (s *CSVSource) loadMovies(ctx context.Context, db *sql.DB) ([]recommend.RawMovie, error) {
	query := fmt.Sprintf(`SELECT
		TRY_CAST(%s AS BIGINT),
		COALESCE(CAST(title AS VARCHAR), ''),
		COALESCE(CAST(overview AS VARCHAR), ''),
		COALESCE(CAST(genres AS VARCHAR), ''),
		COALESCE(CAST(keywords AS VARCHAR), '')
	FROM read_csv_auto(%s, header = true, all_varchar = true)`,
		s.cfg.MovieIDColumn, quoteLiteral(s.cfg.MoviesPath))

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query movies %s: %w", s.cfg.MoviesPath, err)
	}
	defer func() { _ = rows.Close() }() //nolint:errcheck // rows.Err checked below

	var movies []recommend.RawMovie
	for rows.Next() {
		var m recommend.RawMovie
		var id sql.NullInt64
		if err := rows.Scan(&id, &m.Title, &m.Overview, &m.Genres, &m.Keywords); err != nil {
			return nil, fmt.Errorf("scan movie row: %w", err)
		}
		m.ID = id.Int64
		movies = append(movies, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate movies: %w", err)
	}
	return movies, nil
}

func (s *CSVSource) loadCredits(ctx context.Context, db *sql.DB) ([]recommend.RawCredit, error) {
	query := fmt.Sprintf(`SELECT
		TRY_CAST(movie_id AS BIGINT),
		COALESCE(CAST(title AS VARCHAR), ''),
		COALESCE(CAST("cast" AS VARCHAR), ''),
		COALESCE(CAST(crew AS VARCHAR), '')
	FROM read_csv_auto(%s, header = true, all_varchar = true)`,
		quoteLiteral(s.cfg.CreditsPath))

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query credits %s: %w", s.cfg.CreditsPath, err)
	}
	defer func() { _ = rows.Close() }() //nolint:errcheck // rows.Err checked below

	var credits []recommend.RawCredit
	for rows.Next() {
		var c recommend.RawCredit
		var id sql.NullInt64
		if err := rows.Scan(&id, &c.Title, &c.Cast, &c.Crew); err != nil {
			return nil, fmt.Errorf("scan credit row: %w", err)
		}
		c.MovieID = id.Int64
		credits = append(credits, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate credits: %w", err)
	}
	return credits, nil
}

// quoteLiteral renders s as a SQL string literal.
func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// isIdentifier reports whether s is a plain SQL identifier.
func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}
