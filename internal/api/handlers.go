// EventPulse - Event Success Prediction and Organizer Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventpulse

package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/tomtom215/eventpulse/internal/config"
	"github.com/tomtom215/eventpulse/internal/middleware"
	"github.com/tomtom215/eventpulse/internal/models"
	"github.com/tomtom215/eventpulse/internal/predict"
	"github.com/tomtom215/eventpulse/internal/validation"
	ws "github.com/tomtom215/eventpulse/internal/websocket"
)

// RunHistory lists stored training runs, newest first.
type RunHistory interface {
	RecentRuns(ctx context.Context, limit int) ([]models.TrainingRun, error)
}

// Handler contains dependencies for API handlers
//
// Handler methods are split across multiple files:
//   - handlers.go: Handler struct, constructor, shared helpers (this file)
//   - handlers_predict.go: single and batch scoring
//   - handlers_training.go: training start, status and run history
//   - handlers_model.go: model info, stored versions and reload
//   - handlers_health.go: service descriptor, health, stats and WebSocket
type Handler struct {
	engine    *predict.Engine
	config    *config.Config
	wsHub     *ws.Hub
	history   RunHistory
	perfMon   *middleware.PerformanceMonitor
	logger    zerolog.Logger
	startTime time.Time
}

// NewHandler creates a new API handler.
//
// The handler keeps a performance monitor sized by server.stats_window whose
// per-route statistics are reported by /stats. wsHub may be nil, in which
// case the WebSocket endpoint answers 503.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewHandler(engine *predict.Engine, cfg *config.Config, wsHub *ws.Hub, logger zerolog.Logger) *Handler {
	logger = logger.With().Str("component", "api").Logger()
	return &Handler{
		engine:    engine,
		config:    cfg,
		wsHub:     wsHub,
		perfMon:   middleware.NewPerformanceMonitor(cfg.Server.StatsWindow, cfg.Server.SlowRequestThreshold, logger),
		logger:    logger,
		startTime: time.Now(),
	}
}

// SetHistory enables the stored run listing. Without it the training runs
// endpoint returns only the most recent run held by the engine.
//
// Thread Safety: Safe for concurrent access but should be called once during startup.
func (h *Handler) SetHistory(history RunHistory) {
	h.history = history
}

// PerformanceMonitor returns the monitor fed by the router.
func (h *Handler) PerformanceMonitor() *middleware.PerformanceMonitor {
	return h.perfMon
}

// getUpgrader creates a WebSocket upgrader with origin checking and timeouts.
func (h *Handler) getUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		CheckOrigin:      h.checkWebSocketOrigin,
		HandshakeTimeout: 10 * time.Second,
	}
}

// checkWebSocketOrigin validates WebSocket connection origins against the
// CORS allow list. Browsers always send Origin; a missing one is rejected.
func (h *Handler) checkWebSocketOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		h.logger.Warn().Msg("websocket connection rejected: missing Origin header")
		return false
	}

	for _, allowed := range h.config.Security.CORSOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}

	h.logger.Warn().Str("origin", sanitizeLogValue(origin)).Msg("websocket connection rejected from unauthorized origin")
	return false
}

// decodeJSON reads the request body into dst. An empty body is accepted
// only when allowEmpty is set. It writes the error response and returns
// false on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}, allowEmpty bool) bool {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respondError(w, r, http.StatusRequestEntityTooLarge, ErrCodeBodyTooLarge,
				"Request body exceeds "+strconv.FormatInt(maxErr.Limit, 10)+" bytes", nil)
			return false
		}
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "Failed to read request body", err)
		return false
	}

	if len(body) == 0 {
		if allowEmpty {
			return true
		}
		respondError(w, r, http.StatusBadRequest, ErrCodeInvalidJSON, "Request body is required", nil)
		return false
	}

	if err := json.Unmarshal(body, dst); err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeInvalidJSON, "Invalid JSON request body", nil)
		return false
	}
	return true
}

// validateRequest validates a struct using go-playground/validator.
// Returns nil if validation passes.
func validateRequest(v interface{}) *models.APIError {
	if verr := validation.ValidateStruct(v); verr != nil {
		return verr.ToAPIError()
	}
	return nil
}

// getIntParam extracts an integer query parameter with a default value.
// ok is false when the parameter is present but not an integer.
func getIntParam(r *http.Request, key string, defaultValue int) (value int, ok bool) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return defaultValue, true
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return n, true
}
