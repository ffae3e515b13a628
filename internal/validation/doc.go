// EventPulse - Event Success Prediction and Organizer Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventpulse

// Package validation provides struct validation using go-playground/validator v10.
//
// The package wraps a shared validator (built once via sync.OnceValue) with
// readable error messages. Field names in errors are the JSON names of the fields, so a
// rejected record reports "organizer_reputation" rather than the Go field name.
//
// # Overview
//
// The package provides:
//   - GetValidator, the shared *validator.Validate with cached struct info
//   - A "finite" tag rejecting NaN and infinite floats
//   - RequestValidationError, convertible to models.APIError (VALIDATION_ERROR)
//     and to models.ValidationError for the domain error taxonomy
//
// # Records
//
// Event records declare their bounds as struct tags on models.EventRecord.
// Out-of-range values are rejected, never clamped:
//
//	if err := validation.ValidateEvent(&record, -1); err != nil {
//	    var verr *models.ValidationError
//	    errors.As(err, &verr) // verr.Fields lists every rejected field
//	}
//
// ValidateEvents checks a batch and reports the first invalid record with its
// index, so a batch is accepted or rejected as a whole.
//
// # Requests
//
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    writeJSON(w, http.StatusBadRequest, models.APIResponse{Status: "error", Error: verr.ToAPIError()})
//	    return
//	}
package validation
