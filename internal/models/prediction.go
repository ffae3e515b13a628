// EventPulse - Event Success Prediction and Organizer Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventpulse

package models

import "time"

// Priority ranks how urgently a recommendation should be acted on.
type Priority string

const (
	PriorityHigh   Priority = "HIGH"
	PriorityMedium Priority = "MEDIUM"
	PriorityLow    Priority = "LOW"
)

// AdviceCategory groups recommendations by the lever they pull.
type AdviceCategory string

const (
	AdviceMarketing   AdviceCategory = "MARKETING"
	AdvicePricing     AdviceCategory = "PRICING"
	AdviceTiming      AdviceCategory = "TIMING"
	AdviceCredibility AdviceCategory = "CREDIBILITY"
	AdviceCapacity    AdviceCategory = "CAPACITY"
	AdviceDiscovery   AdviceCategory = "DISCOVERY"
	AdviceGeneral     AdviceCategory = "GENERAL"

	// AdviceSystem is only used by client-side fallback predictions.
	AdviceSystem AdviceCategory = "SYSTEM"
)

// Recommendation is one piece of advice produced by the rule engine.
type Recommendation struct {
	Priority Priority       `json:"priority"`
	Category AdviceCategory `json:"category"`
	Message  string         `json:"message"`

	// Impact is a quantified estimate such as "+10.5%" or "₹4500".
	Impact string `json:"impact,omitempty"`

	// Critical marks recommendations that address a blocking weakness.
	Critical bool `json:"critical,omitempty"`
}

// Confidence is a coarse band describing how far a probability is from 0.5.
type Confidence string

const (
	ConfidenceHigh   Confidence = "HIGH"
	ConfidenceMedium Confidence = "MEDIUM"
	ConfidenceLow    Confidence = "LOW"
)

// ConfidenceFor maps a probability to its confidence band.
func ConfidenceFor(p float64) Confidence {
	switch {
	case p >= 0.75 || p <= 0.25:
		return ConfidenceHigh
	case p >= 0.6 || p <= 0.4:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// PredictionResult is the assembled outcome of one prediction.
type PredictionResult struct {
	Success            bool             `json:"success"`
	PredictionID       string           `json:"prediction_id"`
	EventID            *int64           `json:"event_id"`
	Probability        float64          `json:"probability"`
	Label              int              `json:"label"`
	Confidence         Confidence       `json:"confidence"`
	ExpectedAttendance int              `json:"expected_attendance"`
	ExpectedRevenue    float64          `json:"expected_revenue"`
	Recommendations    []Recommendation `json:"recommendations"`
	ModelName          string           `json:"model_name"`
	ModelVersion       string           `json:"model_version"`
	ModelGeneration    int              `json:"model_generation"`
	ModelRunID         string           `json:"model_run_id"`
	PredictedAt        time.Time        `json:"predicted_at"`
	Cached             bool             `json:"cached,omitempty"`
}

// BatchPredictionResult wraps batch output. Predictions are in request order.
type BatchPredictionResult struct {
	Predictions []PredictionResult `json:"predictions"`
	TotalEvents int                `json:"total_events"`
	ProcessedAt time.Time          `json:"processed_at"`
}
