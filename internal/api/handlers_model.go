// EventPulse - Event Success Prediction and Organizer Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventpulse

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/eventpulse/internal/logging"
)

// ModelInfo describes the serving model.
//
// @Summary Get model information
// @Description Returns name, version, training metrics, configuration and the top ranked feature importances
// @Tags Model
// @Produce json
// @Param top query int false "Number of feature importances" default(10)
// @Success 200 {object} models.APIResponse{data=models.ModelInfo}
// @Failure 503 {object} models.APIResponse "Model not ready"
// @Router /api/v1/model/info [get]
func (h *Handler) ModelInfo(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	top, ok := getIntParam(r, "top", h.config.Model.ImportancesTopN)
	if !ok || top < 0 {
		respondError(w, r, http.StatusBadRequest, ErrCodeValidation, "top must be a non-negative integer", nil)
		return
	}

	info, err := h.engine.ModelInfo(top)
	if err != nil {
		respondEngineError(w, r, err)
		return
	}
	respondSuccess(w, r, http.StatusOK, info, start)
}

// ModelVersions lists stored versions of the configured model, newest first.
//
// @Summary List stored model versions
// @Tags Model
// @Produce json
// @Success 200 {object} models.APIResponse{data=[]storage.ModelMetadata}
// @Failure 503 {object} models.APIResponse "Model storage not configured"
// @Router /api/v1/model/versions [get]
func (h *Handler) ModelVersions(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	versions, err := h.engine.Versions(r.Context())
	if err != nil {
		respondEngineError(w, r, err)
		return
	}
	respondSuccess(w, r, http.StatusOK, versions, start)
}

// ModelReload loads a stored model and swaps it in atomically. Without a
// version parameter the latest stored version is loaded. In-flight
// predictions finish on the model they started with.
//
// @Summary Reload model from storage
// @Tags Model
// @Produce json
// @Param version query int false "Storage version; latest when omitted"
// @Success 200 {object} models.APIResponse{data=models.ModelInfo}
// @Failure 400 {object} models.APIResponse "Invalid version"
// @Failure 404 {object} models.APIResponse "Model not found"
// @Router /api/v1/model/reload [post]
func (h *Handler) ModelReload(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	version, ok := getIntParam(r, "version", 0)
	if !ok || version < 0 {
		respondError(w, r, http.StatusBadRequest, ErrCodeValidation, "version must be a non-negative integer", nil)
		return
	}

	info, err := h.engine.Reload(r.Context(), version)
	if err != nil {
		respondEngineError(w, r, err)
		return
	}

	logging.Ctx(r.Context()).Info().
		Str("model", info.ModelName).
		Int("generation", info.Generation).
		Msg("model reloaded via API")

	respondSuccess(w, r, http.StatusOK, info, start)
}
