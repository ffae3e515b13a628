// EventPulse - Event Success Prediction and Organizer Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventpulse

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/eventpulse/internal/metrics"
	"github.com/tomtom215/eventpulse/internal/middleware"
	"github.com/tomtom215/eventpulse/internal/models"
	ws "github.com/tomtom215/eventpulse/internal/websocket"
)

// ServiceDescriptor is the payload of GET /.
type ServiceDescriptor struct {
	Service      string            `json:"service"`
	ModelName    string            `json:"model_name"`
	ModelVersion string            `json:"model_version"`
	ModelLoaded  bool              `json:"model_loaded"`
	Endpoints    map[string]string `json:"endpoints"`
}

// StatsResponse is the payload of GET /stats.
type StatsResponse struct {
	models.ServiceStats
	WebSocketClients int                        `json:"websocket_clients"`
	Endpoints        []middleware.EndpointStats `json:"endpoints"`
}

// serviceName is reported by the service descriptor.
const serviceName = "EventPulse Prediction API"

// Root describes the service and its endpoints.
//
// @Summary Service descriptor
// @Tags Core
// @Produce json
// @Success 200 {object} models.APIResponse{data=ServiceDescriptor}
// @Router / [get]
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, r, http.StatusOK, ServiceDescriptor{
		Service:      serviceName,
		ModelName:    h.config.Model.Name,
		ModelVersion: h.config.Model.Version,
		ModelLoaded:  h.engine.Ready(),
		Endpoints: map[string]string{
			"health":          "GET /health",
			"stats":           "GET /stats",
			"metrics":         "GET /metrics",
			"predict":         "POST /api/v1/predict",
			"predict_batch":   "POST /api/v1/predict/batch",
			"train":           "POST /api/v1/train",
			"training_status": "GET /api/v1/training/status",
			"training_runs":   "GET /api/v1/training/runs",
			"model_info":      "GET /api/v1/model/info",
			"model_versions":  "GET /api/v1/model/versions",
			"model_reload":    "POST /api/v1/model/reload",
			"websocket":       "GET /api/v1/ws",
		},
	}, time.Now())
}

// Health reports liveness and model readiness. It always answers 200; a
// service without a model is "degraded".
//
// @Summary Get service health
// @Tags Core
// @Produce json
// @Success 200 {object} models.APIResponse{data=models.HealthResponse}
// @Router /health [get]
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	metrics.UpdateUptime(h.startTime)
	respondSuccess(w, r, http.StatusOK, h.engine.Health(), time.Now())
}

// Stats reports prediction counters, stored history when enabled, and
// per-route request statistics.
//
// @Summary Get service statistics
// @Tags Core
// @Produce json
// @Success 200 {object} models.APIResponse{data=StatsResponse}
// @Router /stats [get]
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	resp := StatsResponse{
		ServiceStats: h.engine.Stats(r.Context()),
		Endpoints:    h.perfMon.GetStats(),
	}
	if h.wsHub != nil {
		resp.WebSocketClients = h.wsHub.GetClientCount()
	}
	if resp.Endpoints == nil {
		resp.Endpoints = []middleware.EndpointStats{}
	}

	respondSuccess(w, r, http.StatusOK, resp, start)
}

// WebSocket upgrades the connection and streams training and model
// lifecycle events to the client.
//
// @Summary Establish WebSocket connection
// @Tags Realtime
// @Success 101 {string} string "Switching Protocols"
// @Failure 503 {object} models.APIResponse "WebSocket hub not available"
// @Router /api/v1/ws [get]
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	if h.wsHub == nil {
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "WebSocket service unavailable", ErrHubUnavailable)
		return
	}

	upgrader := h.getUpgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := ws.NewClient(h.wsHub, conn)
	h.wsHub.Register <- client
	client.Start()
}
