// EventPulse - Event Success Prediction and Organizer Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventpulse

package predict

import (
	"fmt"
	"time"

	"github.com/tomtom215/eventpulse/internal/training"
)

// MaxBatchSize bounds a single batch prediction.
const MaxBatchSize = 1000

// Config configures the prediction engine.
type Config struct {
	// Training is the base configuration for every training run. Per-run
	// options override the seed, feature engineering and tuning flags.
	Training training.Config

	// DefaultSamples is the synthetic dataset size when a run does not set one.
	// Default: 5000.
	DefaultSamples int

	// TrainingTimeout bounds a single run. Runs cannot be cancelled by
	// callers; this is the only way a run is cut short.
	// Default: 30m.
	TrainingTimeout time.Duration

	// BatchWorkers bounds parallel scoring within one batch request.
	// Default: 4.
	BatchWorkers int

	// KeepVersions is how many stored model versions survive pruning after
	// a successful run. 0 disables pruning.
	// Default: 5.
	KeepVersions int
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() Config {
	return Config{
		Training:        training.DefaultConfig(),
		DefaultSamples:  5000,
		TrainingTimeout: 30 * time.Minute,
		BatchWorkers:    4,
		KeepVersions:    5,
	}
}

// Validate checks the configuration.
//
//nolint:gocritic // value receiver keeps Config immutable
func (c Config) Validate() error {
	if err := c.Training.Validate(); err != nil {
		return fmt.Errorf("training: %w", err)
	}
	if c.DefaultSamples < MinTrainingSamples || c.DefaultSamples > MaxTrainingSamples {
		return fmt.Errorf("default_samples must be in [%d, %d], got %d", MinTrainingSamples, MaxTrainingSamples, c.DefaultSamples)
	}
	if c.TrainingTimeout <= 0 {
		return fmt.Errorf("training_timeout must be positive")
	}
	if c.BatchWorkers < 1 {
		return fmt.Errorf("batch_workers must be at least 1, got %d", c.BatchWorkers)
	}
	if c.KeepVersions < 0 {
		return fmt.Errorf("keep_versions must be non-negative, got %d", c.KeepVersions)
	}
	return nil
}

// Training sample bounds accepted from callers.
const (
	MinTrainingSamples = 100
	MaxTrainingSamples = 50000
)

// TrainingOptions are the per-run overrides of a training request.
type TrainingOptions struct {
	// Samples is the synthetic dataset size. 0 uses Config.DefaultSamples.
	Samples int

	// Tune enables grid search.
	Tune bool

	// FeatureEngineering adds the engineered columns.
	FeatureEngineering bool

	// Seed overrides the configured seed for data generation and fitting.
	Seed *uint64

	// Trigger labels who started the run ("api", "startup", "schedule").
	Trigger string
}

// DefaultTrainingOptions returns options equivalent to an empty training request.
func DefaultTrainingOptions() TrainingOptions {
	return TrainingOptions{FeatureEngineering: true}
}
