// EventPulse - Event Success Prediction and Organizer Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventpulse

package models

import (
	"time"
)

// APIResponse represents the standardized response wrapper used by all HTTP endpoints.
//
// Status field values:
//   - "success": Request completed successfully, see Data field
//   - "error": Request failed, see Error field for details
//
// Example error response:
//
//	{
//	  "status": "error",
//	  "error": {
//	    "code": "MODEL_NOT_READY",
//	    "message": "Model not loaded. Please train or load a model first."
//	  },
//	  "metadata": {"timestamp": "2026-03-01T12:00:00Z"}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata contains response metadata for observability.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	RequestID   string    `json:"request_id,omitempty"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
}

// APIError represents an error response with structured error details.
//
// Common error codes:
//   - VALIDATION_ERROR: Invalid input parameters
//   - MODEL_NOT_READY: No trained model is loaded
//   - TRAINING_IN_PROGRESS: A training run is already active
//   - FEATURE_MISMATCH: Stored model columns cannot be reproduced
//   - UNAUTHORIZED / FORBIDDEN: Missing or insufficient credentials
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// BatchPredictionRequest is the body of a batch prediction call.
type BatchPredictionRequest struct {
	Events []EventRecord `json:"events" validate:"required,min=1,max=1000"`
}

// TrainingRequest is the body of a training call. Zero values select defaults.
type TrainingRequest struct {
	// NSamples is the synthetic dataset size. Default: 5000
	NSamples int `json:"n_samples" validate:"omitempty,gte=100,lte=50000"`

	// TuneHyperparameters enables grid search. Default: false
	TuneHyperparameters bool `json:"tune_hyperparameters"`

	// EnableFeatureEngineering adds the nine engineered columns. Default: true
	EnableFeatureEngineering *bool `json:"enable_feature_engineering,omitempty"`

	// Seed overrides the configured random seed for data generation and fitting.
	Seed *uint64 `json:"seed,omitempty"`
}

// DefaultTrainingSamples is used when a training request omits n_samples.
const DefaultTrainingSamples = 5000

// Samples returns the requested sample count or the default.
func (r *TrainingRequest) Samples() int {
	if r.NSamples <= 0 {
		return DefaultTrainingSamples
	}
	return r.NSamples
}

// FeatureEngineering returns the requested flag, defaulting to true.
func (r *TrainingRequest) FeatureEngineering() bool {
	if r.EnableFeatureEngineering == nil {
		return true
	}
	return *r.EnableFeatureEngineering
}

// TrainingAccepted is returned when a background training run starts.
type TrainingAccepted struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	RunID     string    `json:"run_id"`
	ModelPath string    `json:"model_path"`
	StartedAt time.Time `json:"started_at"`
}

// HealthResponse reports service liveness and model readiness.
type HealthResponse struct {
	Status        string  `json:"status"`
	ModelLoaded   bool    `json:"model_loaded"`
	ModelName     *string `json:"model_name"`
	ModelVersion  *string `json:"model_version"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}
