// Cinematch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/rs/zerolog"

	"github.com/tomtom215/cinematch/internal/models"
	"github.com/tomtom215/cinematch/internal/recommend"
)

type staticSource struct{}

func (staticSource) Name() string { return "static" }

func (staticSource) Fingerprint(context.Context) (string, error) { return "fp-static-0001", nil }

func (staticSource) Load(context.Context) ([]recommend.RawMovie, []recommend.RawCredit, error) {
	movies := []recommend.RawMovie{
		{ID: 1, Title: "Alien", Overview: "space horror", Genres: `[]`, Keywords: `[]`},
		{ID: 2, Title: "Aliens", Overview: "space marines", Genres: `[]`, Keywords: `[]`},
	}
	credits := []recommend.RawCredit{
		{MovieID: 1, Title: "Alien", Cast: `[]`, Crew: `[]`},
		{MovieID: 2, Title: "Aliens", Cast: `[]`, Crew: `[]`},
	}
	return movies, credits, nil
}

// startConsumer runs c until the test ends and returns the delivered events.
func startConsumer(t *testing.T, c *Consumer) <-chan models.IndexRebuiltEvent {
	t.Helper()
	got := make(chan models.IndexRebuiltEvent, 8)
	c.Handle(func(_ context.Context, evt models.IndexRebuiltEvent) error {
		got <- evt
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	select {
	case <-c.Subscribed():
	case err := <-done:
		t.Fatalf("Run() exited early: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("consumer did not subscribe")
	}
	return got
}

func receive(t *testing.T, got <-chan models.IndexRebuiltEvent) models.IndexRebuiltEvent {
	t.Helper()
	select {
	case evt := <-got:
		return evt
	case <-time.After(5 * time.Second):
		t.Fatal("event not delivered")
		return models.IndexRebuiltEvent{}
	}
}

func TestMemoryBus_RoundTrip(t *testing.T) {
	bus := NewMemoryBus("", watermill.NopLogger{})
	defer func() { _ = bus.Close() }()

	if bus.Topic() != DefaultTopic || bus.Backend() != BackendMemory {
		t.Errorf("bus = %s/%s", bus.Backend(), bus.Topic())
	}

	got := startConsumer(t, NewConsumer(bus))

	sent := models.IndexRebuiltEvent{Fingerprint: "abc", Items: 42, BuiltAt: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)}
	if err := bus.PublishIndexRebuilt(context.Background(), sent); err != nil {
		t.Fatalf("PublishIndexRebuilt() error = %v", err)
	}

	evt := receive(t, got)
	if evt.Fingerprint != "abc" || evt.Items != 42 || !evt.BuiltAt.Equal(sent.BuiltAt) {
		t.Errorf("received %+v, want %+v", evt, sent)
	}
}

func TestConsumer_HandlerErrorsDoNotStopConsumption(t *testing.T) {
	bus := NewMemoryBus("test.topic", watermill.NopLogger{})
	defer func() { _ = bus.Close() }()

	c := NewConsumer(bus).Handle(func(context.Context, models.IndexRebuiltEvent) error {
		return errors.New("boom")
	})
	got := startConsumer(t, c)

	for _, fp := range []string{"one", "two"} {
		if err := bus.PublishIndexRebuilt(context.Background(), models.IndexRebuiltEvent{Fingerprint: fp}); err != nil {
			t.Fatalf("PublishIndexRebuilt() error = %v", err)
		}
		if evt := receive(t, got); evt.Fingerprint != fp {
			t.Errorf("received %s, want %s", evt.Fingerprint, fp)
		}
	}
}

func TestRebuildHook_PublishesOnEngineSwap(t *testing.T) {
	bus := NewMemoryBus("", watermill.NopLogger{})
	defer func() { _ = bus.Close() }()
	got := startConsumer(t, NewConsumer(bus))

	engine, err := recommend.NewEngine(nil, staticSource{}, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	engine.OnRebuild(bus.RebuildHook())

	if _, err := engine.Ensure(context.Background()); err != nil {
		t.Fatalf("Ensure() error = %v", err)
	}

	evt := receive(t, got)
	if evt.Fingerprint != "fp-static-0001" || evt.Items != 2 {
		t.Errorf("event = %+v, want fingerprint fp-static-0001 with 2 items", evt)
	}
}

func TestPublish_ClosedBus(t *testing.T) {
	bus := NewMemoryBus("", nil)
	if err := bus.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := bus.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	err := bus.PublishIndexRebuilt(context.Background(), models.IndexRebuiltEvent{})
	if !errors.Is(err, ErrBusClosed) {
		t.Errorf("PublishIndexRebuilt() error = %v, want ErrBusClosed", err)
	}
}

func TestServerConfigFromURL(t *testing.T) {
	tests := []struct {
		url      string
		wantHost string
		wantPort int
		wantErr  bool
	}{
		{"nats://127.0.0.1:4222", "127.0.0.1", 4222, false},
		{"nats://0.0.0.0:14222", "0.0.0.0", 14222, false},
		{"nats://localhost", "", 0, true},
		{"nats://host:abc", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			cfg, err := ServerConfigFromURL(tt.url, "")
			if (err != nil) != tt.wantErr {
				t.Fatalf("ServerConfigFromURL() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && (cfg.Host != tt.wantHost || cfg.Port != tt.wantPort) {
				t.Errorf("got %s:%d, want %s:%d", cfg.Host, cfg.Port, tt.wantHost, tt.wantPort)
			}
		})
	}
}

func TestNATSBus_EmbeddedServerRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("starts an embedded NATS server")
	}

	srv, err := NewEmbeddedServer(ServerConfig{Host: "127.0.0.1", Port: -1})
	if err != nil {
		t.Fatalf("NewEmbeddedServer() error = %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}()
	if !srv.IsRunning() {
		t.Fatal("embedded server not running")
	}

	bus, err := NewNATSBus(NATSConfig{URL: srv.ClientURL(), Topic: "test.index.rebuilt"}, watermill.NopLogger{})
	if err != nil {
		t.Fatalf("NewNATSBus() error = %v", err)
	}
	defer func() { _ = bus.Close() }()

	got := startConsumer(t, NewConsumer(bus))

	// Core NATS subscriptions register asynchronously; publish until one lands.
	deadline := time.After(5 * time.Second)
	for {
		if err := bus.PublishIndexRebuilt(context.Background(), models.IndexRebuiltEvent{Fingerprint: "nats"}); err != nil {
			t.Fatalf("PublishIndexRebuilt() error = %v", err)
		}
		select {
		case evt := <-got:
			if evt.Fingerprint != "nats" {
				t.Errorf("received %+v", evt)
			}
			return
		case <-time.After(100 * time.Millisecond):
		case <-deadline:
			t.Fatal("event not delivered over NATS")
		}
	}
}
