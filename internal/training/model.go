// EventPulse - Event Success Prediction and Organizer Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventpulse

package training

import (
	"fmt"
	"time"

	"github.com/tomtom215/eventpulse/internal/classifier"
	"github.com/tomtom215/eventpulse/internal/features"
	"github.com/tomtom215/eventpulse/internal/models"
)

// TrainedModel is everything needed to score records the way the model was
// trained: the fitted forest, the column order and the batch statistics.
// It is never mutated after construction; retraining builds a new one.
type TrainedModel struct {
	Name       string    `json:"name"`
	Version    string    `json:"version"`
	Generation int       `json:"generation"`
	RunID      string    `json:"run_id"`
	TrainedAt  time.Time `json:"trained_at"`

	Forest  *classifier.Forest  `json:"-"`
	Columns []string            `json:"columns"`
	Stats   features.BatchStats `json:"stats"`

	Config      Config                  `json:"config"`
	Params      classifier.Params       `json:"params"`
	Metrics     Metrics                 `json:"metrics"`
	Importances []classifier.Importance `json:"importances"`
	Search      *SearchResult           `json:"search,omitempty"`
	Samples     int                     `json:"samples"`
}

// WithGeneration returns a shallow copy carrying a new generation number.
func (m *TrainedModel) WithGeneration(gen int) *TrainedModel {
	cp := *m
	cp.Generation = gen
	return &cp
}

// Vector transforms a record into this model's column order.
func (m *TrainedModel) Vector(r *models.EventRecord) ([]float64, error) {
	t := features.NewTransformer(m.Config.FeatureEngineering)
	return t.Transform(r, m.Columns, m.Stats)
}

// Score returns the positive-class probability for a validated record.
func (m *TrainedModel) Score(r *models.EventRecord) (float64, error) {
	if m == nil || m.Forest == nil {
		return 0, &models.UntrainedModelError{Op: "score"}
	}
	vec, err := m.Vector(r)
	if err != nil {
		return 0, err
	}
	p, err := m.Forest.PredictProba(vec)
	if err != nil {
		return 0, &models.FeatureMismatchError{Column: "*", Reason: err.Error()}
	}
	return p, nil
}

// TopImportances returns at most n entries of the ranking.
func (m *TrainedModel) TopImportances(n int) []classifier.Importance {
	if n <= 0 || n >= len(m.Importances) {
		return m.Importances
	}
	return m.Importances[:n]
}

// String renders the model identity for logs.
func (m *TrainedModel) String() string {
	return fmt.Sprintf("%s@%s#%d", m.Name, m.Version, m.Generation)
}
