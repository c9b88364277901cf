// Cinematch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package events

import (
	"context"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"

	"github.com/tomtom215/cinematch/internal/metrics"
	"github.com/tomtom215/cinematch/internal/models"
)

// Handler reacts to one index rebuild notification.
type Handler func(ctx context.Context, evt models.IndexRebuiltEvent) error

// Consumer dispatches rebuild notifications to registered handlers.
type Consumer struct {
	bus *Bus

	mu       sync.RWMutex
	handlers []Handler

	subscribed     chan struct{}
	subscribedOnce sync.Once
}

// NewConsumer creates a consumer reading from bus.
func NewConsumer(bus *Bus) *Consumer {
	return &Consumer{bus: bus, subscribed: make(chan struct{})}
}

// Handle registers fn. Handlers run in registration order.
func (c *Consumer) Handle(fn Handler) *Consumer {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers = append(c.handlers, fn)
	return c
}

// Subscribed is closed once Run has subscribed to the topic.
func (c *Consumer) Subscribed() <-chan struct{} {
	return c.subscribed
}

// Run consumes until ctx is cancelled or the bus is closed.
//
// Every message is acked. Undecodable payloads and handler errors are
// logged; redelivering a cache purge would not change its outcome.
func (c *Consumer) Run(ctx context.Context) error {
	messages, err := c.bus.subscriber.Subscribe(ctx, c.bus.topic)
	if err != nil {
		return fmt.Errorf("subscribe to %s: %w", c.bus.topic, err)
	}
	c.subscribedOnce.Do(func() { close(c.subscribed) })

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			c.process(ctx, msg)
		}
	}
}

func (c *Consumer) process(ctx context.Context, msg *message.Message) {
	defer msg.Ack()
	metrics.EventsConsumed.WithLabelValues(c.bus.topic).Inc()

	var evt models.IndexRebuiltEvent
	if err := json.Unmarshal(msg.Payload, &evt); err != nil {
		c.bus.logger.Error("undecodable index event", err, watermill.LogFields{
			"message_uuid": msg.UUID,
			"topic":        c.bus.topic,
		})
		return
	}

	c.mu.RLock()
	handlers := append([]Handler(nil), c.handlers...)
	c.mu.RUnlock()

	for _, h := range handlers {
		if err := h(ctx, evt); err != nil {
			c.bus.logger.Error("index event handler failed", err, watermill.LogFields{
				"message_uuid": msg.UUID,
				"fingerprint":  evt.Fingerprint,
			})
		}
	}
}
