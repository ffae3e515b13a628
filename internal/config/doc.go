// EventPulse - Event Success Prediction and Organizer Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventpulse

/*
Package config loads and validates the service configuration.

# Configuration Sources

Configuration is layered with koanf v2, later layers overriding earlier ones:

 1. Struct defaults (defaultConfig)
 2. An optional YAML file: CONFIG_PATH, else config.yaml, config.yml,
    /etc/eventpulse/config.yaml, /etc/eventpulse/config.yml
 3. Environment variables, through an explicit name-to-key map

Unmapped environment variables are ignored. Comma-separated values are split
for list settings (CORS_ORIGINS, GRID_*).

# Sections

  - server: listen address, timeouts, environment, /stats window
  - logging: level, format, caller
  - model: name, version, storage path, pruning, startup and periodic training
  - training: pipeline defaults and forest hyperparameters
  - grid: the hyperparameter search space
  - cache: prediction cache backend (memory, badger, redis) and TTL
  - history: DuckDB prediction and training history
  - events: lifecycle event bus (memory or NATS)
  - security: auth mode, JWT secret, CORS, rate limits, casbin overrides

# Example

	model:
	  storage_path: /var/lib/eventpulse/models
	  retrain_interval: 24h
	cache:
	  backend: badger
	  badger_path: /var/lib/eventpulse/cache
	security:
	  auth_mode: jwt
	  cors_origins: [https://dashboard.example.org]

Training hyperparameters are validated by the prediction engine's own
Config.Validate through EngineConfig, so the file and the engine agree on
what is valid.
*/
package config
