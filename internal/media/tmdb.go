// Cinematch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tomtom215/cinematch/internal/cache"
	"github.com/tomtom215/cinematch/internal/metrics"
)

const (
	breakerName = "tmdb-api"

	// maxRetryAfter caps how long a Retry-After header can stall one lookup.
	maxRetryAfter = 30 * time.Second

	// maxBodyBytes bounds the movie details response read into memory.
	maxBodyBytes = 1 << 20
)

// Config configures a TMDBClient.
type Config struct {
	APIKey       string
	APIBaseURL   string
	ImageBaseURL string

	// Timeout applies to each HTTP attempt.
	Timeout      time.Duration
	MaxRetries   int
	RetryBackoff time.Duration

	RatePerSecond float64
	RateBurst     int

	// BreakerFailures consecutive failures open the breaker for BreakerTimeout.
	BreakerFailures uint32
	BreakerTimeout  time.Duration

	CacheSize int
	CacheTTL  time.Duration

	// Concurrency bounds Posters fan-out.
	Concurrency int

	// HTTPClient overrides the default client. Tests point it at httptest servers.
	HTTPClient *http.Client
}

func (c *Config) applyDefaults() {
	if c.APIBaseURL == "" {
		c.APIBaseURL = "https://api.themoviedb.org/3"
	}
	if c.ImageBaseURL == "" {
		c.ImageBaseURL = "https://image.tmdb.org/t/p/w500"
	}
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	if c.RetryBackoff <= 0 {
		c.RetryBackoff = 500 * time.Millisecond
	}
	if c.RatePerSecond <= 0 {
		c.RatePerSecond = 20
	}
	if c.RateBurst <= 0 {
		c.RateBurst = 5
	}
	if c.BreakerFailures == 0 {
		c.BreakerFailures = 5
	}
	if c.BreakerTimeout <= 0 {
		c.BreakerTimeout = 30 * time.Second
	}
	if c.CacheSize <= 0 {
		c.CacheSize = 5000
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = 24 * time.Hour
	}
	if c.Concurrency <= 0 {
		c.Concurrency = 5
	}
}

// TMDBClient resolves movie IDs to poster URLs through the TMDB movie
// details endpoint. Lookups go through an in-memory LRU, then the optional
// shared store, then the API. API calls are rate limited, retried on 429
// and 5xx with exponential backoff honoring Retry-After, and guarded by a
// circuit breaker. It is safe for concurrent use.
type TMDBClient struct {
	cfg     Config
	logger  zerolog.Logger
	http    *http.Client
	limiter *rate.Limiter
	cb      *gobreaker.CircuitBreaker[Poster]
	cache   *cache.LRUCache[Poster]
	shared  PosterStore

	sleep func(ctx context.Context, d time.Duration) error
}

// NewTMDBClient creates a client. An API key is required.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewTMDBClient(cfg Config, logger zerolog.Logger) (*TMDBClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("tmdb api key is required")
	}
	cfg.applyDefaults()
	if _, err := url.Parse(cfg.APIBaseURL); err != nil {
		return nil, fmt.Errorf("invalid tmdb api base url: %w", err)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	c := &TMDBClient{
		cfg:     cfg,
		logger:  logger.With().Str("component", "tmdb").Logger(),
		http:    httpClient,
		limiter: rate.NewLimiter(rate.Limit(cfg.RatePerSecond), cfg.RateBurst),
		cache:   cache.NewLRUCache[Poster](cfg.CacheSize, cfg.CacheTTL),
		sleep:   sleepCtx,
	}
	c.cb = c.newBreaker()
	return c, nil
}

func (c *TMDBClient) newBreaker() *gobreaker.CircuitBreaker[Poster] {
	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0)

	threshold := c.cfg.BreakerFailures
	return gobreaker.NewCircuitBreaker[Poster](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     c.cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		// A caller giving up is not a TMDB failure.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.logger.Warn().
				Str("from", stateToString(from)).
				Str("to", stateToString(to)).
				Msg("tmdb circuit breaker state change")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, stateToString(from), stateToString(to)).Inc()
		},
	})
}

// SetSharedCache adds a second-level cache consulted after the in-memory one.
func (c *TMDBClient) SetSharedCache(store PosterStore) {
	c.shared = store
}

// CacheStats returns the in-memory poster cache counters.
func (c *TMDBClient) CacheStats() cache.Stats {
	return c.cache.Stats()
}

// BreakerState returns the breaker state as a string.
func (c *TMDBClient) BreakerState() string {
	return stateToString(c.cb.State())
}

// Poster returns the poster for movieID. A movie without a poster is
// Available=false with a nil error; any failure to get an answer from TMDB
// is a *FetchError. Definitive answers are cached, failures are not.
func (c *TMDBClient) Poster(ctx context.Context, movieID int64) (Poster, error) {
	if movieID <= 0 {
		return Poster{MovieID: movieID}, &FetchError{MovieID: movieID, Err: ErrInvalidMovieID}
	}

	key := strconv.FormatInt(movieID, 10)
	if p, ok := c.cache.Get(key); ok {
		metrics.RecordCache("poster", true)
		return p, nil
	}
	metrics.RecordCache("poster", false)

	if c.shared != nil {
		p, found, err := c.shared.Get(ctx, movieID)
		switch {
		case err != nil:
			c.logger.Debug().Err(err).Int64("movie_id", movieID).Msg("shared poster cache read failed")
		case found:
			metrics.RecordCache("poster_shared", true)
			c.cache.Add(key, p)
			return p, nil
		default:
			metrics.RecordCache("poster_shared", false)
		}
	}

	start := time.Now()
	p, err := c.execute(ctx, movieID)
	if err != nil {
		return Poster{MovieID: movieID}, err
	}
	result := "success"
	if !p.Available {
		result = "unavailable"
	}
	metrics.RecordPosterFetch(result, time.Since(start))

	c.cache.Add(key, p)
	if c.shared != nil {
		if err := c.shared.Set(ctx, p); err != nil {
			c.logger.Debug().Err(err).Int64("movie_id", movieID).Msg("shared poster cache write failed")
		}
	}
	return p, nil
}

// execute runs one fetch through the circuit breaker.
func (c *TMDBClient) execute(ctx context.Context, movieID int64) (Poster, error) {
	start := time.Now()
	p, err := c.cb.Execute(func() (Poster, error) {
		return c.fetch(ctx, movieID)
	})
	if err == nil {
		metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "success").Inc()
		return p, nil
	}

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "rejected").Inc()
		metrics.RecordPosterFetch("rejected", time.Since(start))
		return Poster{}, &FetchError{MovieID: movieID, Err: err}
	}

	metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "failure").Inc()
	metrics.RecordPosterFetch("error", time.Since(start))
	var fe *FetchError
	if errors.As(err, &fe) {
		return Poster{}, fe
	}
	return Poster{}, &FetchError{MovieID: movieID, Err: err}
}

type movieDetails struct {
	PosterPath *string `json:"poster_path"`
}

// fetch calls GET {api_base}/movie/{id}, retrying 429 and 5xx responses
// and transport errors.
func (c *TMDBClient) fetch(ctx context.Context, movieID int64) (Poster, error) {
	reqURL := fmt.Sprintf("%s/movie/%d?api_key=%s",
		strings.TrimRight(c.cfg.APIBaseURL, "/"), movieID, url.QueryEscape(c.cfg.APIKey))

	var lastErr error
	lastStatus := 0
	attempts := 0

	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return Poster{}, &FetchError{MovieID: movieID, StatusCode: lastStatus, Attempts: attempts, Err: err}
		}
		attempts++

		p, status, retryAfter, err := c.attempt(ctx, reqURL, movieID)
		if err == nil {
			return p, nil
		}
		lastErr, lastStatus = err, status

		if !retryable(status) || ctx.Err() != nil || attempt == c.cfg.MaxRetries {
			break
		}

		delay := c.cfg.RetryBackoff * time.Duration(1<<uint(attempt))
		if retryAfter >= 0 {
			delay = retryAfter
		}
		metrics.PosterRetries.Inc()
		c.logger.Debug().
			Int64("movie_id", movieID).
			Int("status", status).
			Int("attempt", attempts).
			Dur("delay", delay).
			Msg("retrying tmdb request")

		if err := c.sleep(ctx, delay); err != nil {
			lastErr = err
			break
		}
	}

	return Poster{}, &FetchError{MovieID: movieID, StatusCode: lastStatus, Attempts: attempts, Err: lastErr}
}

// attempt performs one HTTP request. retryAfter is -1 when the response
// carried no usable Retry-After header.
func (c *TMDBClient) attempt(ctx context.Context, reqURL string, movieID int64) (p Poster, status int, retryAfter time.Duration, err error) {
	retryAfter = -1

	reqCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return Poster{}, 0, retryAfter, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return Poster{}, 0, retryAfter, fmt.Errorf("request failed: %w", redactKey(err, c.cfg.APIKey))
	}
	defer func() { _ = resp.Body.Close() }() //nolint:errcheck // body fully read or discarded

	switch {
	case resp.StatusCode == http.StatusOK:
		var details movieDetails
		if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&details); err != nil {
			return Poster{}, resp.StatusCode, retryAfter, fmt.Errorf("decode response: %w", err)
		}
		return c.posterFrom(movieID, details), resp.StatusCode, retryAfter, nil

	case resp.StatusCode == http.StatusNotFound:
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes)) //nolint:errcheck // draining
		return Poster{MovieID: movieID}, resp.StatusCode, retryAfter, nil

	default:
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes)) //nolint:errcheck // draining
		if d, ok := parseRetryAfter(resp.Header.Get("Retry-After"), time.Now()); ok {
			retryAfter = d
		}
		return Poster{}, resp.StatusCode, retryAfter, fmt.Errorf("unexpected status %s", resp.Status)
	}
}

func (c *TMDBClient) posterFrom(movieID int64, details movieDetails) Poster {
	if details.PosterPath == nil || *details.PosterPath == "" {
		return Poster{MovieID: movieID}
	}
	path := *details.PosterPath
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return Poster{
		MovieID:   movieID,
		URL:       strings.TrimRight(c.cfg.ImageBaseURL, "/") + path,
		Available: true,
	}
}

// retryable reports whether a failed attempt is worth repeating.
// Status 0 is a transport error.
func retryable(status int) bool {
	return status == 0 || status == http.StatusTooManyRequests || status >= 500
}

// parseRetryAfter accepts delta-seconds or an HTTP date (RFC 9110).
func parseRetryAfter(value string, now time.Time) (time.Duration, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	var d time.Duration
	if secs, err := strconv.Atoi(value); err == nil {
		if secs < 0 {
			return 0, false
		}
		d = time.Duration(secs) * time.Second
	} else if t, err := http.ParseTime(value); err == nil {
		d = t.Sub(now)
		if d < 0 {
			d = 0
		}
	} else {
		return 0, false
	}
	if d > maxRetryAfter {
		d = maxRetryAfter
	}
	return d, true
}

// redactKey strips the API key from transport errors, which embed the URL.
func redactKey(err error, key string) error {
	var ue *url.Error
	if key == "" || !errors.As(err, &ue) {
		return err
	}
	ue.URL = strings.ReplaceAll(ue.URL, url.QueryEscape(key), "REDACTED")
	return err
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
