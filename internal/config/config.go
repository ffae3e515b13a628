// EventPulse - Event Success Prediction and Organizer Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventpulse

package config

import (
	"time"

	"github.com/tomtom215/eventpulse/internal/authz"
	"github.com/tomtom215/eventpulse/internal/cache"
	"github.com/tomtom215/eventpulse/internal/classifier"
	"github.com/tomtom215/eventpulse/internal/events"
	"github.com/tomtom215/eventpulse/internal/history"
	"github.com/tomtom215/eventpulse/internal/logging"
	"github.com/tomtom215/eventpulse/internal/predict"
	"github.com/tomtom215/eventpulse/internal/training"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Logging  logging.Config `koanf:"logging"`
	Model    ModelConfig    `koanf:"model"`
	Training TrainingConfig `koanf:"training"`
	Grid     training.Grid  `koanf:"grid"`
	Cache    cache.Config   `koanf:"cache"`
	History  history.Config `koanf:"history"`
	Events   events.Config  `koanf:"events"`
	Security SecurityConfig `koanf:"security"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	// Environment is "development" or "production". Production refuses
	// insecure security settings.
	Environment string `koanf:"environment"`

	// SlowRequestThreshold logs requests slower than this.
	SlowRequestThreshold time.Duration `koanf:"slow_request_threshold"`

	// StatsWindow is the number of recent requests kept for /stats.
	StatsWindow int `koanf:"stats_window"`
}

// ModelConfig identifies the served model and controls its lifecycle.
type ModelConfig struct {
	Name    string `koanf:"name"`
	Version string `koanf:"version"`

	// StoragePath is the directory holding versioned model artifacts.
	// Empty disables persistence.
	StoragePath string `koanf:"storage_path"`

	// KeepVersions is how many stored versions survive pruning. 0 keeps all.
	KeepVersions int `koanf:"keep_versions"`

	// TrainOnStartup bootstraps a model on synthetic data when none is stored.
	TrainOnStartup bool `koanf:"train_on_startup"`

	// RetrainInterval schedules periodic retraining. 0 disables it.
	RetrainInterval time.Duration `koanf:"retrain_interval"`

	// ImportancesTopN is how many feature importances model info returns.
	ImportancesTopN int `koanf:"importances_top_n"`
}

// TrainingConfig holds the training pipeline defaults.
type TrainingConfig struct {
	DefaultSamples     int           `koanf:"default_samples"`
	TestSize           float64       `koanf:"test_size"`
	CVFolds            int           `koanf:"cv_folds"`
	Seed               uint64        `koanf:"seed"`
	NEstimators        int           `koanf:"n_estimators"`
	MaxDepth           int           `koanf:"max_depth"`
	MinSamplesSplit    int           `koanf:"min_samples_split"`
	MinSamplesLeaf     int           `koanf:"min_samples_leaf"`
	MaxFeatures        int           `koanf:"max_features"`
	FeatureEngineering bool          `koanf:"feature_engineering"`
	Tune               bool          `koanf:"tune"`
	Workers            int           `koanf:"workers"`
	BatchWorkers       int           `koanf:"batch_workers"`
	Timeout            time.Duration `koanf:"timeout"`
}

// SecurityConfig holds authentication, authorization and HTTP hardening
// settings.
type SecurityConfig struct {
	// AuthMode is "none" or "jwt".
	AuthMode  string        `koanf:"auth_mode"`
	JWTSecret string        `koanf:"jwt_secret"`
	TokenTTL  time.Duration `koanf:"token_ttl"`

	CORSOrigins []string `koanf:"cors_origins"`

	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	PredictRateLimit  int           `koanf:"predict_rate_limit"`
	TrainRateLimit    int           `koanf:"train_rate_limit"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`

	// MaxBodyBytes bounds request bodies.
	MaxBodyBytes int64 `koanf:"max_body_bytes"`

	Authz authz.EnforcerConfig `koanf:"authz"`
}

// EngineConfig builds the prediction engine configuration.
func (c *Config) EngineConfig() predict.Config {
	tc := training.DefaultConfig()
	tc.Name = c.Model.Name
	tc.Version = c.Model.Version
	tc.Params = classifier.Params{
		NEstimators:     c.Training.NEstimators,
		MaxDepth:        c.Training.MaxDepth,
		MinSamplesSplit: c.Training.MinSamplesSplit,
		MinSamplesLeaf:  c.Training.MinSamplesLeaf,
		MaxFeatures:     c.Training.MaxFeatures,
		Seed:            c.Training.Seed,
	}
	tc.FeatureEngineering = c.Training.FeatureEngineering
	tc.TestSize = c.Training.TestSize
	tc.CVFolds = c.Training.CVFolds
	tc.Tune = c.Training.Tune
	tc.Grid = c.Grid
	tc.Workers = c.Training.Workers

	return predict.Config{
		Training:        tc,
		DefaultSamples:  c.Training.DefaultSamples,
		TrainingTimeout: c.Training.Timeout,
		BatchWorkers:    c.Training.BatchWorkers,
		KeepVersions:    c.Model.KeepVersions,
	}
}
