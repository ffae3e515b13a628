// EventPulse - Event Success Prediction and Organizer Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventpulse

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/eventpulse/internal/logging"
	"github.com/tomtom215/eventpulse/internal/models"
)

// Predict scores a single event.
//
// @Summary Predict event success
// @Description Scores one event and returns the success probability, expected attendance and revenue, and ordered recommendations
// @Tags Prediction
// @Accept json
// @Produce json
// @Param event body models.EventRecord true "Event features"
// @Success 200 {object} models.APIResponse{data=models.PredictionResult}
// @Failure 400 {object} models.APIResponse "Invalid event"
// @Failure 503 {object} models.APIResponse "Model not ready"
// @Router /api/v1/predict [post]
func (h *Handler) Predict(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var record models.EventRecord
	if !decodeJSON(w, r, &record, false) {
		return
	}

	result, err := h.engine.Predict(r.Context(), &record)
	if err != nil {
		respondEngineError(w, r, err)
		return
	}

	respondSuccess(w, r, http.StatusOK, result, start)
}

// PredictBatch scores up to 1000 events against one model snapshot.
// Results are returned in request order. One invalid event rejects the batch.
//
// @Summary Predict a batch of events
// @Tags Prediction
// @Accept json
// @Produce json
// @Param request body models.BatchPredictionRequest true "Events to score"
// @Success 200 {object} models.APIResponse{data=models.BatchPredictionResult}
// @Failure 400 {object} models.APIResponse "Invalid batch"
// @Failure 503 {object} models.APIResponse "Model not ready"
// @Router /api/v1/predict/batch [post]
func (h *Handler) PredictBatch(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req models.BatchPredictionRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}

	result, err := h.engine.PredictBatch(r.Context(), req.Events)
	if err != nil {
		respondEngineError(w, r, err)
		return
	}

	logging.Ctx(r.Context()).Debug().
		Int("events", result.TotalEvents).
		Dur("duration", time.Since(start)).
		Msg("batch scored")

	respondSuccess(w, r, http.StatusOK, result, start)
}
