// EventPulse - Event Success Prediction and Organizer Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventpulse

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/tomtom215/eventpulse/internal/authz"
	"github.com/tomtom215/eventpulse/internal/cache"
	"github.com/tomtom215/eventpulse/internal/events"
	"github.com/tomtom215/eventpulse/internal/history"
	"github.com/tomtom215/eventpulse/internal/logging"
	"github.com/tomtom215/eventpulse/internal/training"
)

// DefaultConfigPaths are tried in order when CONFIG_PATH is unset or
// points at a missing file.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/eventpulse/config.yaml",
	"/etc/eventpulse/config.yml",
}

// ConfigPathEnvVar names an explicit YAML file to load.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig is the bottom layer; YAML and environment override it.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:                 "0.0.0.0",
			Port:                 8000,
			ReadTimeout:          15 * time.Second,
			WriteTimeout:         30 * time.Second,
			IdleTimeout:          120 * time.Second,
			ShutdownTimeout:      30 * time.Second,
			Environment:          "development",
			SlowRequestThreshold: time.Second,
			StatsWindow:          1000,
		},
		Logging: logging.DefaultConfig(),
		Model: ModelConfig{
			Name:            "event_success_v2",
			Version:         "2.0.0",
			StoragePath:     "/data/models",
			KeepVersions:    5,
			TrainOnStartup:  true,
			RetrainInterval: 0,
			ImportancesTopN: 10,
		},
		Training: TrainingConfig{
			DefaultSamples:     5000,
			TestSize:           0.2,
			CVFolds:            5,
			Seed:               42,
			NEstimators:        300,
			MaxDepth:           15,
			MinSamplesSplit:    10,
			MinSamplesLeaf:     4,
			FeatureEngineering: true,
			BatchWorkers:       4,
			Timeout:            30 * time.Minute,
		},
		Grid: training.DefaultGrid(),
		Cache: cache.Config{
			Enabled:    true,
			Backend:    cache.BackendMemory,
			TTL:        time.Hour,
			MaxEntries: 10000,
			BadgerPath: "/data/cache",
			RedisAddr:  "127.0.0.1:6379",
			KeyPrefix:  cache.DefaultKeyPrefix,
		},
		History: history.Config{
			Enabled:   false,
			Path:      "/data/history.duckdb",
			MaxMemory: "512MB",
		},
		Events: events.DefaultConfig(),
		Security: SecurityConfig{
			AuthMode:         "none",
			TokenTTL:         24 * time.Hour,
			CORSOrigins:      []string{"*"},
			PredictRateLimit: 600,
			TrainRateLimit:   10,
			RateLimitWindow:  time.Minute,
			MaxBodyBytes:     1 << 20,
			Authz:            authz.DefaultEnforcerConfig(),
		},
	}
}

// Load resolves the YAML file (see findConfigFile) and calls LoadFile.
func Load() (*Config, error) {
	return LoadFile(findConfigFile())
}

// layer is one configuration source. Later layers override earlier ones.
type layer struct {
	name     string
	provider koanf.Provider
	parser   koanf.Parser
}

func layers(configPath string) []layer {
	ls := []layer{{name: "defaults", provider: structs.Provider(defaultConfig(), "koanf")}}
	if configPath != "" {
		ls = append(ls, layer{name: "config file " + configPath, provider: file.Provider(configPath), parser: yaml.Parser()})
	}
	return append(ls, layer{name: "environment", provider: env.Provider("", ".", envTransformFunc)})
}

// LoadFile merges defaults, the YAML file at configPath (skipped when
// empty) and the environment, then validates the result.
func LoadFile(configPath string) (*Config, error) {
	k := koanf.New(".")
	for _, l := range layers(configPath) {
		if err := k.Load(l.provider, l.parser); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", l.name, err)
		}
	}
	if err := splitLists(k); err != nil {
		return nil, err
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("decode configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// findConfigFile prefers CONFIG_PATH, then the first existing
// DefaultConfigPaths entry. No file is not an error.
func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" && fileExists(p) {
		return p
	}
	for _, p := range DefaultConfigPaths {
		if fileExists(p) {
			return p
		}
	}
	return ""
}

// listPaths hold []string or []int values that arrive from the environment
// as comma-separated text, e.g. GRID_MAX_DEPTH=5,10,20.
var listPaths = []string{
	"security.cors_origins",
	"grid.n_estimators",
	"grid.max_depth",
	"grid.min_samples_split",
	"grid.min_samples_leaf",
}

func splitLists(k *koanf.Koanf) error {
	for _, path := range listPaths {
		raw, ok := k.Get(path).(string)
		if !ok {
			continue
		}
		var items []string
		for _, item := range strings.Split(raw, ",") {
			if item = strings.TrimSpace(item); item != "" {
				items = append(items, item)
			}
		}
		if len(items) == 0 {
			continue
		}
		if err := k.Set(path, items); err != nil {
			return fmt.Errorf("split %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps environment variable names to koanf config paths.
var envMappings = map[string]string{
	// Server
	"http_host":              "server.host",
	"http_port":              "server.port",
	"http_read_timeout":      "server.read_timeout",
	"http_write_timeout":     "server.write_timeout",
	"http_idle_timeout":      "server.idle_timeout",
	"shutdown_timeout":       "server.shutdown_timeout",
	"environment":            "server.environment",
	"slow_request_threshold": "server.slow_request_threshold",
	"stats_window":           "server.stats_window",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	// Model lifecycle
	"model_name":              "model.name",
	"model_version":           "model.version",
	"model_storage_path":      "model.storage_path",
	"model_keep_versions":     "model.keep_versions",
	"train_on_startup":        "model.train_on_startup",
	"retrain_interval":        "model.retrain_interval",
	"model_importances_top_n": "model.importances_top_n",

	// Training
	"training_default_samples":     "training.default_samples",
	"training_test_size":           "training.test_size",
	"training_cv_folds":            "training.cv_folds",
	"training_seed":                "training.seed",
	"training_n_estimators":        "training.n_estimators",
	"training_max_depth":           "training.max_depth",
	"training_min_samples_split":   "training.min_samples_split",
	"training_min_samples_leaf":    "training.min_samples_leaf",
	"training_max_features":        "training.max_features",
	"training_feature_engineering": "training.feature_engineering",
	"training_tune":                "training.tune",
	"training_workers":             "training.workers",
	"training_batch_workers":       "training.batch_workers",
	"training_timeout":             "training.timeout",

	// Grid search
	"grid_n_estimators":      "grid.n_estimators",
	"grid_max_depth":         "grid.max_depth",
	"grid_min_samples_split": "grid.min_samples_split",
	"grid_min_samples_leaf":  "grid.min_samples_leaf",

	// Prediction cache
	"prediction_cache_enabled":     "cache.enabled",
	"prediction_cache_backend":     "cache.backend",
	"prediction_cache_ttl":         "cache.ttl",
	"prediction_cache_max_entries": "cache.max_entries",
	"prediction_cache_badger_path": "cache.badger_path",
	"redis_addr":                   "cache.redis_addr",
	"redis_password":               "cache.redis_password",
	"redis_db":                     "cache.redis_db",
	"redis_key_prefix":             "cache.key_prefix",

	// History
	"history_enabled":   "history.enabled",
	"duckdb_path":       "history.path",
	"duckdb_threads":    "history.threads",
	"duckdb_max_memory": "history.max_memory",

	// Events
	"events_enabled":              "events.enabled",
	"events_backend":              "events.backend",
	"events_topic":                "events.topic",
	"events_output_buffer":        "events.output_buffer",
	"nats_url":                    "events.nats_url",
	"nats_max_reconnects":         "events.max_reconnects",
	"nats_reconnect_wait":         "events.reconnect_wait",
	"nats_embedded":               "events.embedded_server",
	"nats_embedded_host":          "events.embedded_host",
	"nats_embedded_port":          "events.embedded_port",
	"events_breaker_threshold":    "events.circuit_breaker.failure_threshold",
	"events_breaker_timeout":      "events.circuit_breaker.timeout",
	"events_breaker_interval":     "events.circuit_breaker.interval",
	"events_breaker_max_requests": "events.circuit_breaker.max_requests",

	// Security
	"auth_mode":          "security.auth_mode",
	"jwt_secret":         "security.jwt_secret",
	"token_ttl":          "security.token_ttl",
	"cors_origins":       "security.cors_origins",
	"disable_rate_limit": "security.rate_limit_disabled",
	"predict_rate_limit": "security.predict_rate_limit",
	"train_rate_limit":   "security.train_rate_limit",
	"rate_limit_window":  "security.rate_limit_window",
	"max_body_bytes":     "security.max_body_bytes",
	"casbin_model_path":  "security.authz.model_path",
	"casbin_policy_path": "security.authz.policy_path",
	"casbin_cache_ttl":   "security.authz.cache_ttl",
}

// envTransformFunc maps an environment variable to its koanf path, e.g.
// TRAINING_N_ESTIMATORS to training.n_estimators. Unmapped variables
// return "" and are ignored.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
