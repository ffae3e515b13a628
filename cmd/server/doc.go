// EventPulse - Event Success Prediction and Organizer Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventpulse

/*
Package main is the entry point for the EventPulse prediction server.

EventPulse predicts whether an event will reach half of its capacity in
check-ins and gives organizers prioritized recommendations. It serves a random
forest trained on synthetic events behind a JSON API.

# Application Architecture

	RootSupervisor ("eventpulse")
	├── DataSupervisor ("data-layer")
	│   └── Model service (load latest, bootstrap training, retraining)
	├── MessagingSupervisor ("messaging-layer")
	│   ├── WebSocket hub
	│   └── Lifecycle event forwarder (only when events are enabled)
	└── APISupervisor ("api-layer")
	    └── HTTP server (chi router)

Initialization order:

 1. Configuration: koanf v2 (defaults, optional YAML file, environment)
 2. Logging: zerolog, JSON or console
 3. Model storage, prediction cache (memory, badger or redis), DuckDB history,
    event bus (in-process or NATS)
 4. Prediction engine
 5. Authentication (JWT or none) and casbin authorization
 6. Router, supervisor tree, signal handling

# Configuration

	# Server
	HTTP_PORT=8000
	LOG_LEVEL=info               # trace, debug, info, warn, error
	LOG_FORMAT=json              # json or console

	# Model lifecycle
	MODEL_STORAGE_PATH=/data/models
	TRAIN_ON_STARTUP=true
	RETRAIN_INTERVAL=24h         # 0 disables retraining

	# Prediction cache
	PREDICTION_CACHE_BACKEND=memory   # memory, badger, redis
	REDIS_ADDR=127.0.0.1:6379

	# History
	HISTORY_ENABLED=true
	DUCKDB_PATH=/data/history.duckdb

	# Events
	EVENTS_BACKEND=memory        # memory or nats
	NATS_URL=nats://127.0.0.1:4222
	NATS_EMBEDDED=false

	# Security
	AUTH_MODE=jwt                # jwt or none
	JWT_SECRET=<32+ chars>
	CORS_ORIGINS=https://app.example.com

A YAML file at CONFIG_PATH (or ./config.yaml) may set the same keys.

# Signal Handling

SIGINT and SIGTERM cancel the supervisor tree. The HTTP server drains
in-flight requests for SHUTDOWN_TIMEOUT. A background training run finishes
before the stores are closed.

# Tokens

Issue bearer tokens for JWT mode with the client CLI:

	JWT_SECRET=... predictctl token --user alice --role operator
*/
package main
