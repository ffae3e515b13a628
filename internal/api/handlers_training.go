// EventPulse - Event Success Prediction and Organizer Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventpulse

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/eventpulse/internal/history"
	"github.com/tomtom215/eventpulse/internal/logging"
	"github.com/tomtom215/eventpulse/internal/models"
	"github.com/tomtom215/eventpulse/internal/predict"
)

// maxRunLimit bounds the training runs listing.
const maxRunLimit = 100

// TriggerAPI labels runs started through the HTTP API.
const TriggerAPI = "api"

// Train starts a background training run on synthetic data.
// The request returns as soon as the run is accepted; a second request while
// a run is active is rejected with 409 and never queued.
//
// @Summary Start a training run
// @Tags Training
// @Accept json
// @Produce json
// @Param request body models.TrainingRequest false "Training options"
// @Success 202 {object} models.APIResponse{data=models.TrainingAccepted}
// @Failure 400 {object} models.APIResponse "Invalid options"
// @Failure 409 {object} models.APIResponse "Training already in progress"
// @Router /api/v1/train [post]
func (h *Handler) Train(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req models.TrainingRequest
	if !decodeJSON(w, r, &req, true) {
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondErrorDetails(w, r, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details, nil)
		return
	}

	modelPath := h.engine.NextModelPath()
	run, err := h.engine.StartTraining(predict.TrainingOptions{
		Samples:            req.NSamples,
		Tune:               req.TuneHyperparameters,
		FeatureEngineering: req.FeatureEngineering(),
		Seed:               req.Seed,
		Trigger:            TriggerAPI,
	})
	if err != nil {
		respondEngineError(w, r, err)
		return
	}

	logging.Ctx(r.Context()).Info().
		Str("run_id", run.RunID).
		Int("samples", run.Samples).
		Bool("tune", run.Tuned).
		Msg("training run accepted")

	respondSuccess(w, r, http.StatusAccepted, models.TrainingAccepted{
		Success:   true,
		Message:   "Training started in background",
		RunID:     run.RunID,
		ModelPath: modelPath,
		StartedAt: run.StartedAt,
	}, start)
}

// TrainingStatus reports whether a run is active and the most recent run.
//
// @Summary Get training status
// @Tags Training
// @Produce json
// @Success 200 {object} models.APIResponse{data=models.TrainingStatus}
// @Router /api/v1/training/status [get]
func (h *Handler) TrainingStatus(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, r, http.StatusOK, h.engine.TrainingStatus(), time.Now())
}

// TrainingRuns lists recent training runs, newest first.
//
// @Summary List training runs
// @Tags Training
// @Produce json
// @Param limit query int false "Maximum runs to return (1-100)" default(20)
// @Success 200 {object} models.APIResponse{data=[]models.TrainingRun}
// @Failure 400 {object} models.APIResponse "Invalid limit"
// @Router /api/v1/training/runs [get]
func (h *Handler) TrainingRuns(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	limit, ok := getIntParam(r, "limit", history.DefaultRunLimit)
	if !ok || limit < 1 || limit > maxRunLimit {
		respondError(w, r, http.StatusBadRequest, ErrCodeValidation, "limit must be an integer between 1 and 100", nil)
		return
	}

	if h.history == nil {
		runs := []models.TrainingRun{}
		if last := h.engine.TrainingStatus().LastRun; last != nil {
			runs = append(runs, *last)
		}
		respondSuccess(w, r, http.StatusOK, runs, start)
		return
	}

	runs, err := h.history.RecentRuns(r.Context(), limit)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternalError, "Failed to read training history", err)
		return
	}
	if runs == nil {
		runs = []models.TrainingRun{}
	}
	respondSuccess(w, r, http.StatusOK, runs, start)
}
