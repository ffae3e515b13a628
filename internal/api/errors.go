// EventPulse - Event Success Prediction and Organizer Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventpulse

package api

import (
	"errors"
	"net/http"

	"github.com/tomtom215/eventpulse/internal/models"
	"github.com/tomtom215/eventpulse/internal/predict"
	"github.com/tomtom215/eventpulse/internal/validation"
)

// ErrHubUnavailable is reported when the websocket hub is not configured.
var ErrHubUnavailable = errors.New("websocket hub is not configured")

// apiError is the HTTP rendering of a domain error.
type apiError struct {
	status  int
	code    string
	message string
	details map[string]interface{}
}

// classifyError maps the engine's error taxonomy to an HTTP status and code.
func classifyError(err error) apiError {
	var (
		validationErr *models.ValidationError
		requestErr    *validation.RequestValidationError
		untrainedErr  *models.UntrainedModelError
		mismatchErr   *models.FeatureMismatchError
	)

	switch {
	case errors.As(err, &validationErr):
		return apiError{
			status:  http.StatusBadRequest,
			code:    ErrCodeValidation,
			message: validationErr.Error(),
			details: validationDetails(validationErr),
		}
	case errors.As(err, &requestErr):
		apiErr := requestErr.ToAPIError()
		return apiError{
			status:  http.StatusBadRequest,
			code:    apiErr.Code,
			message: apiErr.Message,
			details: apiErr.Details,
		}
	case errors.As(err, &untrainedErr):
		return apiError{
			status:  http.StatusServiceUnavailable,
			code:    ErrCodeModelNotReady,
			message: "Model not loaded. Please train or load a model first.",
		}
	case errors.Is(err, predict.ErrTrainingInProgress):
		return apiError{
			status:  http.StatusConflict,
			code:    ErrCodeTrainingInProgress,
			message: "Training already in progress",
		}
	case errors.Is(err, predict.ErrModelNotFound):
		return apiError{
			status:  http.StatusNotFound,
			code:    ErrCodeModelNotFound,
			message: "No stored model found",
		}
	case errors.Is(err, predict.ErrNoStore):
		return apiError{
			status:  http.StatusServiceUnavailable,
			code:    ErrCodeServiceUnavailable,
			message: "Model storage is not configured",
		}
	case errors.As(err, &mismatchErr):
		return apiError{
			status:  http.StatusInternalServerError,
			code:    ErrCodeFeatureMismatch,
			message: "Stored model features cannot be reproduced",
			details: map[string]interface{}{"column": mismatchErr.Column},
		}
	default:
		return apiError{
			status:  http.StatusInternalServerError,
			code:    ErrCodeInternalError,
			message: "Internal server error",
		}
	}
}

func validationDetails(err *models.ValidationError) map[string]interface{} {
	details := map[string]interface{}{"fields": err.Fields}
	if err.Index >= 0 {
		details["index"] = err.Index
	}
	return details
}

// respondEngineError renders err with its mapped status. Client errors are
// not logged as failures.
func respondEngineError(w http.ResponseWriter, r *http.Request, err error) {
	mapped := classifyError(err)
	var logged error
	if mapped.status >= http.StatusInternalServerError {
		logged = err
	}
	respondErrorDetails(w, r, mapped.status, mapped.code, mapped.message, mapped.details, logged)
}
