// Cinematch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package services

import (
	"context"
	"errors"
	"fmt"
)

// EventRunner consumes events until ctx ends. Satisfied by *events.Consumer.
type EventRunner interface {
	Run(ctx context.Context) error
}

// ConsumerService runs the index event consumer under supervision.
type ConsumerService struct {
	consumer EventRunner
	name     string
}

// NewConsumerService wraps consumer.
func NewConsumerService(consumer EventRunner) *ConsumerService {
	return &ConsumerService{consumer: consumer, name: "index-events"}
}

// Serve implements suture.Service.
//
// Run returning nil before ctx ends means the subscription channel was
// closed underneath it; that is reported as a failure so the consumer
// resubscribes after backoff.
func (s *ConsumerService) Serve(ctx context.Context) error {
	err := s.consumer.Run(ctx)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err == nil {
		err = errors.New("subscription closed")
	}
	return fmt.Errorf("index event consumer: %w", err)
}

func (s *ConsumerService) String() string {
	return s.name
}
