// EventPulse - Event Success Prediction and Organizer Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventpulse

package training

import (
	"fmt"

	"github.com/tomtom215/eventpulse/internal/classifier"
)

// Config contains all configuration for a training run.
type Config struct {
	// Name and Version identify the produced model.
	Name    string `json:"model_name"`
	Version string `json:"model_version"`

	// Params are the forest hyperparameters used when Tune is false. When
	// Tune is true, the fields not covered by Grid (seed, max_features) are
	// still taken from here.
	Params classifier.Params `json:"params"`

	// FeatureEngineering adds the nine engineered columns.
	// Default: true.
	FeatureEngineering bool `json:"feature_engineering"`

	// TestSize is the held-out fraction for the stratified split.
	// Default: 0.2.
	TestSize float64 `json:"test_size"`

	// CVFolds is the number of stratified folds for cross-validation.
	// Default: 5.
	CVFolds int `json:"cv_folds"`

	// Tune enables exhaustive grid search over Grid.
	Tune bool `json:"tune"`
	Grid Grid `json:"grid"`

	// Workers bounds parallel tree fitting and grid trials.
	// 0 uses GOMAXPROCS for fitting and 1 worker for grid search.
	Workers int `json:"workers"`

	// TopImportances limits the ranking kept in logs. 0 logs none.
	TopImportances int `json:"-"`

	// RunID labels the run in logs and on the model. Empty generates one.
	RunID string `json:"-"`
}

// DefaultConfig returns the production training configuration.
func DefaultConfig() Config {
	return Config{
		Name:               "event_success_v2",
		Version:            "2.0.0",
		Params:             classifier.DefaultParams(),
		FeatureEngineering: true,
		TestSize:           0.2,
		CVFolds:            5,
		Grid:               DefaultGrid(),
		TopImportances:     5,
	}
}

// Validate checks the configuration.
//
//nolint:gocritic // value receiver keeps Config immutable
func (c Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("model name is required")
	}
	if c.TestSize <= 0 || c.TestSize >= 1 {
		return fmt.Errorf("test_size must be in (0,1), got %v", c.TestSize)
	}
	if c.CVFolds < 2 {
		return fmt.Errorf("cv_folds must be at least 2, got %d", c.CVFolds)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must be non-negative, got %d", c.Workers)
	}
	if c.Tune {
		if err := c.Grid.Validate(); err != nil {
			return err
		}
		for _, p := range c.Grid.Combinations(c.Params) {
			if err := p.Validate(); err != nil {
				return fmt.Errorf("grid: %w", err)
			}
		}
		return nil
	}
	return c.Params.Validate()
}
