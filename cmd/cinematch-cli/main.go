// Cinematch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

// Command cinematch-cli builds an index from the two catalog CSV files and
// prints the movies most similar to a title.
//
//	cinematch-cli -movies tmdb_5000_movies.csv -credits tmdb_5000_credits.csv -title Avatar -k 5
//
// With -posters, poster URLs are looked up on TMDB using TMDB_API_KEY.
//
// Exit status is 0 on success, 1 on load or build failure, 2 when the title
// is not in the catalog and 64 on invalid flags.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/cinematch/internal/catalog"
	"github.com/tomtom215/cinematch/internal/logging"
	"github.com/tomtom215/cinematch/internal/media"
	"github.com/tomtom215/cinematch/internal/recommend"
)

// Exit codes. Usage errors follow sysexits EX_USAGE.
const (
	exitOK       = 0
	exitError    = 1
	exitNotFound = 2
	exitUsage    = 64
)

type options struct {
	movies   string
	credits  string
	idColumn string
	title    string
	k        int
	posters  bool
	apiKey   string
	verbose  bool
	timeout  time.Duration
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	opts := &options{}
	fs := flag.NewFlagSet("cinematch-cli", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.movies, "movies", "tmdb_5000_movies.csv", "movies CSV file")
	fs.StringVar(&opts.credits, "credits", "tmdb_5000_credits.csv", "credits CSV file")
	fs.StringVar(&opts.idColumn, "id-column", "id", "movie id column of the movies file")
	fs.StringVar(&opts.title, "title", "", "title to find similar movies for (required)")
	fs.IntVar(&opts.k, "k", recommend.DefaultConfig().DefaultK, "number of recommendations")
	fs.BoolVar(&opts.posters, "posters", false, "look up poster URLs on TMDB (needs TMDB_API_KEY)")
	fs.BoolVar(&opts.verbose, "v", false, "log index build progress")
	fs.DurationVar(&opts.timeout, "timeout", 10*time.Minute, "index build timeout")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if opts.title == "" {
		return nil, errors.New("-title is required")
	}
	if opts.k <= 0 {
		return nil, fmt.Errorf("-k must be positive, got %d", opts.k)
	}
	if opts.posters {
		opts.apiKey = os.Getenv("TMDB_API_KEY")
		if opts.apiKey == "" {
			return nil, errors.New("-posters requires TMDB_API_KEY")
		}
	}
	return opts, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		fmt.Fprintln(stderr, sprintfS(errorStyle, "error: %v", err))
		return exitUsage
	}

	level := "warn"
	if opts.verbose {
		level = "info"
	}
	logging.Init(logging.Config{Level: level, Format: "console", Output: stderr})

	recs, posters, err := recommendFromFiles(ctx, opts, logging.WithComponent("cli"))
	if err != nil {
		fmt.Fprintln(stderr, sprintfS(errorStyle, "error: %v", err))
		if errors.Is(err, recommend.ErrNotFound) {
			return exitNotFound
		}
		return exitError
	}

	printRecommendations(stdout, opts.title, recs, posters)
	return exitOK
}

//nolint:gocritic // logger passed by value is acceptable for zerolog
func recommendFromFiles(ctx context.Context, opts *options, logger zerolog.Logger) ([]recommend.Recommendation, []media.Poster, error) {
	src, err := catalog.NewCSVSource(catalog.CSVConfig{
		MoviesPath:    opts.movies,
		CreditsPath:   opts.credits,
		MovieIDColumn: opts.idColumn,
	})
	if err != nil {
		return nil, nil, err
	}

	cfg := recommend.DefaultConfig()
	cfg.BuildTimeout = opts.timeout
	if opts.k > cfg.MaxK {
		cfg.MaxK = opts.k
	}
	engine, err := recommend.NewEngine(cfg, src, logger)
	if err != nil {
		return nil, nil, err
	}

	if _, err := engine.Ensure(ctx); err != nil {
		return nil, nil, fmt.Errorf("build index: %w", err)
	}

	recs, err := engine.Recommend(ctx, opts.title, opts.k)
	if err != nil {
		return nil, nil, fmt.Errorf("%q: %w", opts.title, err)
	}
	if !opts.posters || len(recs) == 0 {
		return recs, nil, nil
	}

	client, err := media.NewTMDBClient(media.Config{APIKey: opts.apiKey}, logger)
	if err != nil {
		return nil, nil, err
	}
	ids := make([]int64, len(recs))
	for i, rec := range recs {
		ids[i] = rec.ID
	}
	posters, failed := client.Posters(ctx, ids)
	if failed > 0 {
		logger.Warn().Int("failed", failed).Msg("some poster lookups failed")
	}
	return recs, posters, nil
}

// printRecommendations writes one ranked line per result. posters, when
// non-nil, is parallel to recs.
func printRecommendations(w io.Writer, title string, recs []recommend.Recommendation, posters []media.Poster) {
	fmt.Fprintln(w, titleStyle.Render("Movies like "+title))
	if len(recs) == 0 {
		fmt.Fprintln(w, dimStyle.Render("  no other movies in the catalog"))
		return
	}
	for i, rec := range recs {
		line := fmt.Sprintf("%s  %s  %s",
			rankStyle.Render(fmt.Sprintf("%d.", i+1)),
			rec.Title,
			sprintfS(scoreStyle, "%.3f", rec.Score))
		if posters != nil && i < len(posters) {
			if posters[i].Available {
				line += "  " + dimStyle.Render(posters[i].URL)
			} else {
				line += "  " + dimStyle.Render("(no poster)")
			}
		}
		fmt.Fprintln(w, line)
	}
}
