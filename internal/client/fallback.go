// EventPulse - Event Success Prediction and Organizer Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventpulse

package client

import (
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/eventpulse/internal/models"
)

// Fallback model identity reported on heuristic results.
const (
	FallbackModelName    = "heuristic_fallback"
	FallbackModelVersion = "1.0.0"
)

const (
	minFallbackProbability = 0.05
	maxFallbackProbability = 0.95
)

// Heuristic estimates a prediction without the model. Success is always
// false so callers can tell it apart from a served prediction.
func Heuristic(event *models.EventRecord, now time.Time) models.PredictionResult {
	p := 0.5 + 0.2*event.OrganizerReputation
	if event.TicketPrice == 0 {
		p += 0.1
	}
	p = math.Min(maxFallbackProbability, math.Max(minFallbackProbability, p))

	label := 0
	if p >= 0.5 {
		label = 1
	}
	attendance := int(math.Floor(p * float64(event.MaxParticipants)))

	return models.PredictionResult{
		Success:            false,
		PredictionID:       uuid.New().String(),
		EventID:            event.EventID,
		Probability:        p,
		Label:              label,
		Confidence:         models.ConfidenceLow,
		ExpectedAttendance: attendance,
		ExpectedRevenue:    math.Round(float64(attendance)*event.TicketPrice*100) / 100,
		Recommendations: []models.Recommendation{
			{
				Priority: models.PriorityHigh,
				Category: models.AdviceSystem,
				Message:  "ML service unavailable. Using heuristic prediction.",
			},
			{
				Priority: models.PriorityMedium,
				Category: models.AdviceMarketing,
				Message:  "Increase promotion to improve event visibility.",
			},
		},
		ModelName:    FallbackModelName,
		ModelVersion: FallbackModelVersion,
		PredictedAt:  now.UTC(),
	}
}

// heuristicBatch applies Heuristic to every event.
func heuristicBatch(events []models.EventRecord, now time.Time) *models.BatchPredictionResult {
	predictions := make([]models.PredictionResult, len(events))
	for i := range events {
		predictions[i] = Heuristic(&events[i], now)
	}
	return &models.BatchPredictionResult{
		Predictions: predictions,
		TotalEvents: len(events),
		ProcessedAt: now.UTC(),
	}
}
