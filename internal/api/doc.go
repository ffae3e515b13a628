// EventPulse - Event Success Prediction and Organizer Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventpulse

/*
Package api provides the HTTP REST API layer for EventPulse.

It exposes the prediction engine over a chi router: scoring, background
training, model management, service health and a WebSocket feed of lifecycle
events.

Endpoints:

	GET  /                          service descriptor
	GET  /health                    liveness and model readiness
	GET  /stats                     prediction counters, history, route stats
	GET  /metrics                   Prometheus metrics
	POST /api/v1/predict            score one event
	POST /api/v1/predict/batch      score up to 1000 events, order preserved
	POST /api/v1/train              start a background run (202, 409 when busy)
	GET  /api/v1/training/status    active flag and last run
	GET  /api/v1/training/runs      stored run history
	GET  /api/v1/model/info         serving model description
	GET  /api/v1/model/versions     stored model versions
	POST /api/v1/model/reload       load a stored version (?version=n)
	GET  /api/v1/ws                 WebSocket lifecycle events

Every JSON response uses the models.APIResponse envelope. Errors carry a
machine code:

	VALIDATION_ERROR       400  malformed or out-of-range input
	MODEL_NOT_READY        503  no trained model is loaded
	TRAINING_IN_PROGRESS   409  a run is already active
	MODEL_NOT_FOUND        404  no stored model to reload
	FEATURE_MISMATCH       500  stored columns cannot be reproduced

Middleware:

Global: request ID, real IP, access logging, panic recovery, CORS
(go-chi/cors), compression, Prometheus metrics and the performance monitor.
Routes under /api/v1 add security headers, a body size limit, bearer JWT
authentication, per-IP rate limits (go-chi/httprate) on scoring and training,
and casbin authorization per object and action.

Usage Example:

	handler := api.NewHandler(engine, cfg, hub, logger)
	handler.SetHistory(historyStore)
	router := api.NewRouter(handler,
	    api.NewChiMiddleware(api.NewChiMiddlewareConfig(&cfg.Security)),
	    authMiddleware, authzMiddleware, logger)
	srv := &http.Server{Addr: cfg.Addr(), Handler: router.SetupChi()}
*/
package api
