// Cinematch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package recommend

import (
	"fmt"
	"time"
)

// Config contains all configuration for the recommendation engine.
type Config struct {
	// MaxFeatures caps the vocabulary size.
	MaxFeatures int `json:"max_features"`

	// MinTokenLength is the shortest token kept, in runes.
	MinTokenLength int `json:"min_token_length"`

	// DefaultK is used when a query does not specify k.
	DefaultK int `json:"default_k"`

	// MaxK bounds the k a caller may request.
	MaxK int `json:"max_k"`

	// Workers is the number of goroutines computing similarity rows.
	// Zero means GOMAXPROCS.
	Workers int `json:"workers"`

	// MergePolicy decides what happens to movies with no credits row.
	MergePolicy MergePolicy `json:"merge_policy"`

	// BuildTimeout bounds one full load and build.
	BuildTimeout time.Duration `json:"build_timeout"`
}

// DefaultConfig returns the production defaults.
func DefaultConfig() *Config {
	return &Config{
		MaxFeatures:    DefaultMaxFeatures,
		MinTokenLength: DefaultMinTokenLength,
		DefaultK:       DefaultTopK,
		MaxK:           50,
		Workers:        0,
		MergePolicy:    MergeDrop,
		BuildTimeout:   10 * time.Minute,
	}
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.MaxFeatures <= 0 {
		return fmt.Errorf("max_features must be positive, got %d", c.MaxFeatures)
	}
	if c.MinTokenLength <= 0 {
		return fmt.Errorf("min_token_length must be positive, got %d", c.MinTokenLength)
	}
	if c.DefaultK <= 0 {
		return fmt.Errorf("default_k must be positive, got %d", c.DefaultK)
	}
	if c.MaxK < c.DefaultK {
		return fmt.Errorf("max_k must be >= default_k, got %d < %d", c.MaxK, c.DefaultK)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must be non-negative, got %d", c.Workers)
	}
	if c.MergePolicy != MergeDrop && c.MergePolicy != MergeStrict {
		return fmt.Errorf("unknown merge policy %d", c.MergePolicy)
	}
	if c.BuildTimeout <= 0 {
		return fmt.Errorf("build_timeout must be positive, got %v", c.BuildTimeout)
	}
	return nil
}

// PipelineKey identifies the settings that shape a built index. Snapshots
// built under a different key are not reused.
func (c *Config) PipelineKey() string {
	return fmt.Sprintf("v%d/max_features=%d/min_token_length=%d/merge=%s",
		SnapshotVersion, c.MaxFeatures, c.MinTokenLength, c.MergePolicy)
}

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}
