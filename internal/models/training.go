// EventPulse - Event Success Prediction and Organizer Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventpulse

package models

import "time"

// Training run states.
const (
	RunRunning   = "running"
	RunCompleted = "completed"
	RunFailed    = "failed"
)

// TrainingRun is the record of one background training run. It is stored in
// the history database and carried by lifecycle events.
type TrainingRun struct {
	RunID              string     `json:"run_id"`
	Status             string     `json:"status"`
	Trigger            string     `json:"trigger,omitempty"`
	StartedAt          time.Time  `json:"started_at"`
	FinishedAt         *time.Time `json:"finished_at,omitempty"`
	DurationSeconds    float64    `json:"duration_seconds"`
	Samples            int        `json:"samples"`
	Seed               uint64     `json:"seed"`
	Tuned              bool       `json:"tuned"`
	FeatureEngineering bool       `json:"feature_engineering"`
	ModelName          string     `json:"model_name"`
	ModelVersion       string     `json:"model_version"`
	StorageVersion     int        `json:"storage_version,omitempty"`
	Generation         int        `json:"generation,omitempty"`
	TestROCAUC         float64    `json:"test_roc_auc,omitempty"`
	TestAccuracy       float64    `json:"test_accuracy,omitempty"`
	Stage              string     `json:"stage,omitempty"`
	Error              string     `json:"error,omitempty"`
}

// TrainingStatus is the externally visible training state.
type TrainingStatus struct {
	InProgress      bool         `json:"in_progress"`
	ModelGeneration int          `json:"model_generation"`
	LastRun         *TrainingRun `json:"last_run,omitempty"`
}

// Lifecycle event types.
const (
	EventTrainingStarted   = "training.started"
	EventTrainingCompleted = "training.completed"
	EventTrainingFailed    = "training.failed"
	EventModelReloaded     = "model.reloaded"
)

// LifecycleEvent announces a training or model change on the event bus.
type LifecycleEvent struct {
	ID           string       `json:"id"`
	Type         string       `json:"type"`
	Timestamp    time.Time    `json:"timestamp"`
	ModelName    string       `json:"model_name,omitempty"`
	ModelVersion string       `json:"model_version,omitempty"`
	Generation   int          `json:"generation,omitempty"`
	Run          *TrainingRun `json:"run,omitempty"`
}

// ModelConfigInfo summarizes the hyperparameters of the serving model.
type ModelConfigInfo struct {
	NEstimators        int  `json:"n_estimators"`
	MaxDepth           int  `json:"max_depth"`
	MinSamplesSplit    int  `json:"min_samples_split"`
	MinSamplesLeaf     int  `json:"min_samples_leaf"`
	FeatureEngineering bool `json:"feature_engineering"`
}

// FeatureImportance is one entry of the importance ranking.
type FeatureImportance struct {
	Feature    string  `json:"feature"`
	Importance float64 `json:"importance"`
}

// ModelInfo describes the serving model.
type ModelInfo struct {
	ModelName          string              `json:"model_name"`
	ModelVersion       string              `json:"model_version"`
	Generation         int                 `json:"generation"`
	RunID              string              `json:"run_id"`
	TrainedAt          time.Time           `json:"trained_at"`
	FeaturesCount      int                 `json:"features_count"`
	Samples            int                 `json:"samples"`
	Metrics            interface{}         `json:"metrics"`
	FeatureImportances []FeatureImportance `json:"feature_importance"`
	Config             ModelConfigInfo     `json:"config"`
}

// ServiceStats is the /stats payload.
type ServiceStats struct {
	TotalPredictions   int64           `json:"total_predictions"`
	CacheHits          int64           `json:"cache_hits"`
	FailedPredictions  int64           `json:"failed_predictions"`
	UptimeSeconds      float64         `json:"uptime_seconds"`
	UptimeHours        float64         `json:"uptime_hours"`
	PredictionsPerHour float64         `json:"predictions_per_hour"`
	ModelLoaded        bool            `json:"model_loaded"`
	TrainingInProgress bool            `json:"training_in_progress"`
	ModelGeneration    int             `json:"model_generation"`
	History            *HistorySummary `json:"history,omitempty"`
}

// HistorySummary aggregates stored prediction and training history.
type HistorySummary struct {
	Predictions      int64           `json:"predictions"`
	PositiveRate     float64         `json:"positive_rate"`
	MeanProbability  float64         `json:"mean_probability"`
	TrainingRuns     int64           `json:"training_runs"`
	FailedRuns       int64           `json:"failed_runs"`
	ByCategory       []CategoryStats `json:"by_category"`
	LastPredictionAt *time.Time      `json:"last_prediction_at,omitempty"`
}

// CategoryStats is a per-category slice of the history summary.
type CategoryStats struct {
	Category        string  `json:"category"`
	Predictions     int64   `json:"predictions"`
	MeanProbability float64 `json:"mean_probability"`
}
