// EventPulse - Event Success Prediction and Organizer Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventpulse

package models

import (
	"fmt"
	"strings"
)

// FieldError describes one rejected input field.
type FieldError struct {
	Field   string      `json:"field"`
	Tag     string      `json:"tag"`
	Value   interface{} `json:"value,omitempty"`
	Message string      `json:"message"`
}

// ValidationError reports malformed or out-of-range input.
type ValidationError struct {
	// Index is the position of the offending record in a batch, or -1.
	Index  int
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Message)
	}
	prefix := "validation failed"
	if e.Index >= 0 {
		prefix = fmt.Sprintf("validation failed for event %d", e.Index)
	}
	if len(msgs) == 0 {
		return prefix
	}
	return prefix + ": " + strings.Join(msgs, "; ")
}

// UntrainedModelError is returned when scoring is attempted with no fitted model.
type UntrainedModelError struct {
	Op string
}

func (e *UntrainedModelError) Error() string {
	if e.Op == "" {
		return "model not ready: no trained model is loaded"
	}
	return fmt.Sprintf("%s: model not ready: no trained model is loaded", e.Op)
}

// FeatureMismatchError is returned when a stored column order cannot be
// reproduced by the current feature transformer.
type FeatureMismatchError struct {
	Column string
	Reason string
}

func (e *FeatureMismatchError) Error() string {
	return fmt.Sprintf("feature mismatch on column %q: %s", e.Column, e.Reason)
}

// TrainingFailure wraps any fatal error raised while fitting a model.
type TrainingFailure struct {
	Stage string
	Err   error
}

func (e *TrainingFailure) Error() string {
	return fmt.Sprintf("training failed during %s: %v", e.Stage, e.Err)
}

func (e *TrainingFailure) Unwrap() error {
	return e.Err
}
