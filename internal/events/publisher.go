// Cinematch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package events

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"

	"github.com/tomtom215/cinematch/internal/metrics"
	"github.com/tomtom215/cinematch/internal/models"
	"github.com/tomtom215/cinematch/internal/recommend"
)

// ErrBusClosed is returned when publishing on a closed bus.
var ErrBusClosed = errors.New("event bus is closed")

// PublishIndexRebuilt announces a new index on the bus topic.
func (b *Bus) PublishIndexRebuilt(ctx context.Context, evt models.IndexRebuiltEvent) error {
	if b.isClosed() {
		metrics.EventsPublished.WithLabelValues(b.topic, "error").Inc()
		return ErrBusClosed
	}

	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)
	msg.Metadata.Set("fingerprint", evt.Fingerprint)
	if evt.Host != "" {
		msg.Metadata.Set("host", evt.Host)
	}

	if err := b.publisher.Publish(b.topic, msg); err != nil {
		metrics.EventsPublished.WithLabelValues(b.topic, "error").Inc()
		return fmt.Errorf("publish %s: %w", b.topic, err)
	}
	metrics.EventsPublished.WithLabelValues(b.topic, "success").Inc()
	return nil
}

// RebuildHook returns a callback for recommend.Engine.OnRebuild that
// publishes every index swap. Publish failures are logged, never returned.
func (b *Bus) RebuildHook() func(*recommend.Index) {
	host, _ := os.Hostname() //nolint:errcheck // host is informational
	return func(idx *recommend.Index) {
		evt := models.IndexRebuiltEvent{
			Fingerprint: idx.Fingerprint(),
			Items:       idx.Len(),
			BuiltAt:     idx.BuiltAt(),
			Host:        host,
		}
		if err := b.PublishIndexRebuilt(context.Background(), evt); err != nil {
			b.logger.Error("index rebuilt event not published", err, watermill.LogFields{
				"fingerprint": evt.Fingerprint,
			})
		}
	}
}
