// EventPulse - Event Success Prediction and Organizer Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventpulse

// Package features turns validated event records into fixed-order numeric vectors.
//
// The transformer is pure: it holds no state beyond the feature-set flag, performs
// no I/O and returns identical output for identical input. Column order is part of
// a trained model's contract. Training defines it (FitTransform) and prediction
// reproduces it exactly (Transform).
package features

import (
	"fmt"

	"github.com/tomtom215/eventpulse/internal/models"
)

// BatchStats holds the training-batch maxima used to normalize marketing_score.
// They are computed once over the full training batch and persisted with the
// model so single-record inference uses the same denominators.
type BatchStats struct {
	MaxSocialMentions float64 `json:"max_social_mentions"`
	MaxPromotionSpend float64 `json:"max_promotion_spend"`
}

// ComputeStats returns the maxima of social_mentions and promotion_spend.
func ComputeStats(records []models.EventRecord) BatchStats {
	var s BatchStats
	for i := range records {
		if v := float64(records[i].SocialMentions); v > s.MaxSocialMentions {
			s.MaxSocialMentions = v
		}
		if records[i].PromotionSpend > s.MaxPromotionSpend {
			s.MaxPromotionSpend = records[i].PromotionSpend
		}
	}
	return s
}

// Transformer derives feature vectors. The zero value has feature engineering off.
type Transformer struct {
	engineered bool
}

// NewTransformer creates a transformer. When engineered is false only base and
// one-hot columns are derived.
func NewTransformer(engineered bool) *Transformer {
	return &Transformer{engineered: engineered}
}

// Engineered reports whether engineered columns are derived.
func (t *Transformer) Engineered() bool {
	return t.engineered
}

// Columns returns the column order this transformer defines in training mode.
func (t *Transformer) Columns() []string {
	return Columns(t.engineered)
}

// Fitted is the output of training-mode transformation.
type Fitted struct {
	Matrix  [][]float64
	Columns []string
	Stats   BatchStats
}

// FitTransform transforms a training batch. It defines the column order and
// computes the batch statistics as a side effect.
//
// Only EventRecord values are accepted, so outcome fields cannot reach the
// feature matrix.
func (t *Transformer) FitTransform(records []models.EventRecord) (*Fitted, error) {
	cols := t.Columns()
	stats := ComputeStats(records)

	matrix := make([][]float64, len(records))
	for i := range records {
		row, err := t.Transform(&records[i], cols, stats)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		matrix[i] = row
	}

	return &Fitted{Matrix: matrix, Columns: cols, Stats: stats}, nil
}

// Transform derives one vector laid out exactly as columns.
//
// Known columns the transformer did not derive (engineered columns when
// engineering is off) are filled with 0. A column name the transformer cannot
// produce at all is a FeatureMismatchError.
func (t *Transformer) Transform(r *models.EventRecord, columns []string, stats BatchStats) ([]float64, error) {
	full, err := t.derive(r, stats)
	if err != nil {
		return nil, err
	}

	out := make([]float64, len(columns))
	for i, col := range columns {
		idx, ok := catalogueIndex[col]
		if !ok {
			return nil, &models.FeatureMismatchError{Column: col, Reason: "column is not produced by the feature transformer"}
		}
		if idx >= engineeredFrom && !t.engineered {
			continue
		}
		out[i] = full[idx]
	}
	return out, nil
}

// derive fills a vector in catalogue order.
func (t *Transformer) derive(r *models.EventRecord, stats BatchStats) ([]float64, error) {
	v := make([]float64, len(catalogue))

	v[0] = float64(r.TagsCount)
	v[1] = float64(r.PostedDaysBeforeEvent)
	v[2] = r.PromotionSpend
	v[3] = float64(r.MaxParticipants)
	v[4] = r.TicketPrice
	v[5] = r.OrganizerReputation
	v[6] = r.AvgPastAttendanceRate
	v[7] = r.CTR
	v[8] = float64(r.SocialMentions)
	v[9] = float64(r.Weekday)

	catIdx, ok := catalogueIndex[CategoryColumn(r.Category)]
	if !ok {
		return nil, &models.FeatureMismatchError{Column: CategoryColumn(r.Category), Reason: "unknown category"}
	}
	v[catIdx] = 1

	cityIdx, ok := catalogueIndex[CityColumn(r.City)]
	if !ok {
		return nil, &models.FeatureMismatchError{Column: CityColumn(r.City), Reason: "unknown city"}
	}
	v[cityIdx] = 1

	if t.engineered {
		e := Engineer(r, stats)
		copy(v[engineeredFrom:], e[:])
	}
	return v, nil
}

// Engineer computes the nine engineered fields in EngineeredColumns order.
// Denominators that could be zero are offset by one.
func Engineer(r *models.EventRecord, stats BatchStats) [9]float64 {
	social := float64(r.SocialMentions)

	var e [9]float64
	e[0] = r.PromotionSpend / (float64(r.MaxParticipants) + 1)
	e[1] = r.TicketPrice / (r.PromotionSpend + 1)
	e[2] = r.OrganizerReputation * r.CTR
	e[3] = indicator(r.PostedDaysBeforeEvent >= 7 && r.PostedDaysBeforeEvent <= 30)
	e[4] = indicator(r.IsWeekend())
	e[5] = indicator(r.MaxParticipants >= 200)
	e[6] = indicator(r.TicketPrice == 0)
	e[7] = 0.4*r.CTR +
		0.3*(social/(stats.MaxSocialMentions+1)) +
		0.3*(r.PromotionSpend/(stats.MaxPromotionSpend+1))
	e[8] = 0.6*r.OrganizerReputation + 0.4*r.AvgPastAttendanceRate
	return e
}

func indicator(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
