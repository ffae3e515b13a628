// EventPulse - Event Success Prediction and Organizer Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventpulse

package classifier

import "fmt"

// Params configures a random forest.
type Params struct {
	// NEstimators is the number of trees.
	NEstimators int `json:"n_estimators" koanf:"n_estimators"`

	// MaxDepth limits tree depth. 0 means unlimited.
	MaxDepth int `json:"max_depth" koanf:"max_depth"`

	// MinSamplesSplit is the minimum node size that may be split.
	MinSamplesSplit int `json:"min_samples_split" koanf:"min_samples_split"`

	// MinSamplesLeaf is the minimum number of samples in each child.
	MinSamplesLeaf int `json:"min_samples_leaf" koanf:"min_samples_leaf"`

	// MaxFeatures is the number of candidate features per split.
	// 0 selects floor(sqrt(n_features)).
	MaxFeatures int `json:"max_features,omitempty" koanf:"max_features"`

	// Seed makes fitting reproducible.
	Seed uint64 `json:"seed" koanf:"seed"`
}

// DefaultParams returns the tuned production hyperparameters.
func DefaultParams() Params {
	return Params{
		NEstimators:     300,
		MaxDepth:        15,
		MinSamplesSplit: 10,
		MinSamplesLeaf:  4,
		Seed:            42,
	}
}

// Validate checks hyperparameter ranges.
func (p Params) Validate() error {
	if p.NEstimators <= 0 {
		return fmt.Errorf("n_estimators must be positive, got %d", p.NEstimators)
	}
	if p.MaxDepth < 0 {
		return fmt.Errorf("max_depth must be non-negative, got %d", p.MaxDepth)
	}
	if p.MinSamplesSplit < 2 {
		return fmt.Errorf("min_samples_split must be at least 2, got %d", p.MinSamplesSplit)
	}
	if p.MinSamplesLeaf < 1 {
		return fmt.Errorf("min_samples_leaf must be at least 1, got %d", p.MinSamplesLeaf)
	}
	if p.MaxFeatures < 0 {
		return fmt.Errorf("max_features must be non-negative, got %d", p.MaxFeatures)
	}
	return nil
}

// String renders the parameters for logs.
func (p Params) String() string {
	return fmt.Sprintf("n_estimators=%d max_depth=%d min_samples_split=%d min_samples_leaf=%d",
		p.NEstimators, p.MaxDepth, p.MinSamplesSplit, p.MinSamplesLeaf)
}
