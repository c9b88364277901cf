// Cinematch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package media

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
)

const testKey = "s3cr3t-key"

// newTestClient returns a client pointed at handler with sleeps recorded
// instead of performed.
func newTestClient(t *testing.T, handler http.Handler, mutate func(*Config)) (*TMDBClient, *[]time.Duration) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := Config{
		APIKey:          testKey,
		APIBaseURL:      srv.URL,
		ImageBaseURL:    "https://img.example/t/p/w500/",
		Timeout:         2 * time.Second,
		MaxRetries:      2,
		RetryBackoff:    10 * time.Millisecond,
		RatePerSecond:   1000,
		RateBurst:       100,
		BreakerFailures: 10,
		BreakerTimeout:  time.Minute,
	}
	if mutate != nil {
		mutate(&cfg)
	}

	c, err := NewTMDBClient(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewTMDBClient() error = %v", err)
	}

	var mu sync.Mutex
	slept := &[]time.Duration{}
	c.sleep = func(ctx context.Context, d time.Duration) error {
		mu.Lock()
		defer mu.Unlock()
		*slept = append(*slept, d)
		return ctx.Err()
	}
	return c, slept
}

func TestNewTMDBClient_RequiresKey(t *testing.T) {
	if _, err := NewTMDBClient(Config{APIKey: "  "}, zerolog.Nop()); err == nil {
		t.Error("NewTMDBClient() error = nil, want missing key")
	}
}

func TestPoster_Success(t *testing.T) {
	var hits atomic.Int32
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Path != "/movie/19995" || r.URL.Query().Get("api_key") != testKey {
			t.Errorf("unexpected request %s", r.URL)
		}
		_, _ = fmt.Fprint(w, `{"id": 19995, "title": "Avatar", "poster_path": "/kyeqWdyUXW608qlYkRqosgbbJyK.jpg"}`)
	}), nil)

	ctx := context.Background()
	p, err := c.Poster(ctx, 19995)
	if err != nil {
		t.Fatalf("Poster() error = %v", err)
	}
	want := "https://img.example/t/p/w500/kyeqWdyUXW608qlYkRqosgbbJyK.jpg"
	if !p.Available || p.URL != want || p.MovieID != 19995 {
		t.Errorf("Poster() = %+v, want available %s", p, want)
	}

	if _, err := c.Poster(ctx, 19995); err != nil {
		t.Fatalf("cached Poster() error = %v", err)
	}
	if hits.Load() != 1 {
		t.Errorf("server hits = %d, want 1 (second call cached)", hits.Load())
	}
	if stats := c.CacheStats(); stats.Hits != 1 || stats.Size != 1 {
		t.Errorf("cache stats = %+v", stats)
	}
}

func TestPoster_Unavailable(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"null poster path", http.StatusOK, `{"id": 1, "poster_path": null}`},
		{"empty poster path", http.StatusOK, `{"id": 1, "poster_path": ""}`},
		{"missing field", http.StatusOK, `{"id": 1}`},
		{"unknown movie", http.StatusNotFound, `{"status_code": 34}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = fmt.Fprint(w, tt.body)
			}), nil)

			p, err := c.Poster(context.Background(), 1)
			if err != nil {
				t.Fatalf("Poster() error = %v, want nil", err)
			}
			if p.Available || p.URL != "" || p.MovieID != 1 {
				t.Errorf("Poster() = %+v, want unavailable", p)
			}
		})
	}
}

func TestPoster_RetriesHonorRetryAfter(t *testing.T) {
	var hits atomic.Int32
	c, slept := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.Header().Set("Retry-After", "2")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = fmt.Fprint(w, `{"poster_path": "/p.jpg"}`)
	}), nil)

	p, err := c.Poster(context.Background(), 7)
	if err != nil {
		t.Fatalf("Poster() error = %v", err)
	}
	if !p.Available {
		t.Error("poster should be available after retry")
	}
	if hits.Load() != 2 {
		t.Errorf("server hits = %d, want 2", hits.Load())
	}
	if len(*slept) != 1 || (*slept)[0] != 2*time.Second {
		t.Errorf("sleeps = %v, want [2s]", *slept)
	}
}

func TestPoster_ExponentialBackoffThenFailure(t *testing.T) {
	var hits atomic.Int32
	c, slept := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}), nil)

	_, err := c.Poster(context.Background(), 7)
	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("Poster() error = %v, want *FetchError", err)
	}
	if fe.StatusCode != http.StatusBadGateway || fe.Attempts != 3 {
		t.Errorf("FetchError = %+v, want 502 after 3 attempts", fe)
	}
	want := []time.Duration{10 * time.Millisecond, 20 * time.Millisecond}
	if len(*slept) != len(want) || (*slept)[0] != want[0] || (*slept)[1] != want[1] {
		t.Errorf("sleeps = %v, want %v", *slept, want)
	}

	// Failures are not cached.
	_, _ = c.Poster(context.Background(), 7)
	if hits.Load() != 6 {
		t.Errorf("server hits = %d, want 6", hits.Load())
	}
}

func TestPoster_ClientErrorNotRetried(t *testing.T) {
	var hits atomic.Int32
	c, slept := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}), nil)

	_, err := c.Poster(context.Background(), 7)
	var fe *FetchError
	if !errors.As(err, &fe) || fe.StatusCode != http.StatusUnauthorized || fe.Attempts != 1 {
		t.Fatalf("Poster() error = %v, want single 401 attempt", err)
	}
	if hits.Load() != 1 || len(*slept) != 0 {
		t.Errorf("hits = %d sleeps = %v, want 1 and none", hits.Load(), *slept)
	}
}

func TestPoster_CircuitBreakerOpens(t *testing.T) {
	var hits atomic.Int32
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}), func(cfg *Config) {
		cfg.MaxRetries = 0
		cfg.BreakerFailures = 2
	})

	ctx := context.Background()
	for i := int64(1); i <= 2; i++ {
		if _, err := c.Poster(ctx, i); err == nil {
			t.Fatalf("Poster(%d) error = nil, want failure", i)
		}
	}
	if c.BreakerState() != "open" {
		t.Fatalf("BreakerState() = %s, want open", c.BreakerState())
	}

	_, err := c.Poster(ctx, 3)
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("Poster() error = %v, want ErrOpenState", err)
	}
	var fe *FetchError
	if !errors.As(err, &fe) || fe.MovieID != 3 {
		t.Errorf("rejection should be a *FetchError for movie 3, got %v", err)
	}
	if hits.Load() != 2 {
		t.Errorf("server hits = %d, want 2 (third call rejected)", hits.Load())
	}
}

func TestPoster_TransportErrorRedactsKey(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	c, err := NewTMDBClient(Config{APIKey: testKey, APIBaseURL: base, MaxRetries: 0, RatePerSecond: 1000}, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewTMDBClient() error = %v", err)
	}

	_, err = c.Poster(context.Background(), 1)
	if err == nil {
		t.Fatal("Poster() error = nil, want transport error")
	}
	if strings.Contains(err.Error(), testKey) {
		t.Errorf("error leaks API key: %v", err)
	}
}

func TestPoster_InvalidID(t *testing.T) {
	c, _ := newTestClient(t, http.NotFoundHandler(), nil)
	_, err := c.Poster(context.Background(), 0)
	if !errors.Is(err, ErrInvalidMovieID) {
		t.Errorf("Poster(0) error = %v, want ErrInvalidMovieID", err)
	}
}

// mapStore is an in-memory PosterStore.
type mapStore struct {
	mu   sync.Mutex
	data map[int64]Poster
	sets int
}

func (m *mapStore) Get(_ context.Context, id int64) (Poster, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.data[id]
	return p, ok, nil
}

func (m *mapStore) Set(_ context.Context, p Poster) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[p.MovieID] = p
	m.sets++
	return nil
}

func TestPoster_SharedCache(t *testing.T) {
	var hits atomic.Int32
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = fmt.Fprint(w, `{"poster_path": "/fresh.jpg"}`)
	}), nil)
	store := &mapStore{data: map[int64]Poster{
		5: {MovieID: 5, URL: "https://img.example/shared.jpg", Available: true},
	}}
	c.SetSharedCache(store)

	ctx := context.Background()
	p, err := c.Poster(ctx, 5)
	if err != nil || p.URL != "https://img.example/shared.jpg" {
		t.Fatalf("Poster(5) = %+v, %v; want shared entry", p, err)
	}
	if hits.Load() != 0 {
		t.Error("shared cache hit should not call TMDB")
	}

	if _, err := c.Poster(ctx, 6); err != nil {
		t.Fatalf("Poster(6) error = %v", err)
	}
	if _, ok, _ := store.Get(ctx, 6); !ok {
		t.Error("fetched poster should be written to the shared cache")
	}
}

func TestPosters_BoundedAndDegrading(t *testing.T) {
	var inFlight, peak atomic.Int32
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := inFlight.Add(1)
		defer inFlight.Add(-1)
		for {
			old := peak.Load()
			if n <= old || peak.CompareAndSwap(old, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		if r.URL.Path == "/movie/3" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		_, _ = fmt.Fprintf(w, `{"poster_path": "%s.jpg"}`, r.URL.Path)
	}), func(cfg *Config) { cfg.Concurrency = 2 })

	ids := []int64{1, 2, 3, 4, 5}
	posters, failed := c.Posters(context.Background(), ids)
	if failed != 1 {
		t.Errorf("failed = %d, want 1", failed)
	}
	for i, p := range posters {
		if p.MovieID != ids[i] {
			t.Errorf("posters[%d].MovieID = %d, want %d", i, p.MovieID, ids[i])
		}
		if wantAvail := ids[i] != 3; p.Available != wantAvail {
			t.Errorf("posters[%d].Available = %v, want %v", i, p.Available, wantAvail)
		}
	}
	if peak.Load() > 2 {
		t.Errorf("peak concurrency = %d, want <= 2", peak.Load())
	}
}

func TestParseRetryAfter(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		value  string
		want   time.Duration
		wantOK bool
	}{
		{"", 0, false},
		{"3", 3 * time.Second, true},
		{"0", 0, true},
		{"-1", 0, false},
		{"600", maxRetryAfter, true},
		{now.Add(5 * time.Second).Format(http.TimeFormat), 5 * time.Second, true},
		{now.Add(-time.Minute).Format(http.TimeFormat), 0, true},
		{"soon", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			got, ok := parseRetryAfter(tt.value, now)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("parseRetryAfter(%q) = %v, %v; want %v, %v", tt.value, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestDecodePoster(t *testing.T) {
	if _, err := decodePoster([]byte(`{"movie_id": 2, "available": false}`), 2); err != nil {
		t.Errorf("decodePoster() error = %v", err)
	}
	if _, err := decodePoster([]byte(`{"movie_id": 3}`), 2); err == nil {
		t.Error("decodePoster() should reject a mismatched id")
	}
	if _, err := decodePoster([]byte(`not json`), 2); err == nil {
		t.Error("decodePoster() should reject garbage")
	}
}

func TestNewRedisCache_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := NewRedisCache(ctx, RedisConfig{Addr: "127.0.0.1:1"}); err == nil {
		t.Error("NewRedisCache() error = nil, want connection failure")
	}
	if _, err := NewRedisCache(ctx, RedisConfig{}); err == nil {
		t.Error("NewRedisCache() error = nil, want missing address")
	}
}
