// EventPulse - Event Success Prediction and Organizer Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventpulse

package models

import (
	"errors"
	"strings"
	"testing"

	"github.com/goccy/go-json"
)

func TestConfidenceFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		p    float64
		want Confidence
	}{
		{0.0, ConfidenceHigh},
		{0.25, ConfidenceHigh},
		{0.26, ConfidenceMedium},
		{0.4, ConfidenceMedium},
		{0.45, ConfidenceLow},
		{0.5, ConfidenceLow},
		{0.59, ConfidenceLow},
		{0.6, ConfidenceMedium},
		{0.74, ConfidenceMedium},
		{0.75, ConfidenceHigh},
		{1.0, ConfidenceHigh},
	}

	for _, tt := range tests {
		if got := ConfidenceFor(tt.p); got != tt.want {
			t.Errorf("ConfidenceFor(%v) = %s, want %s", tt.p, got, tt.want)
		}
	}
}

func TestCategoryAndCityValid(t *testing.T) {
	t.Parallel()

	for _, c := range Categories {
		if !c.Valid() {
			t.Errorf("category %s should be valid", c)
		}
	}
	if Category("MUSIC").Valid() {
		t.Error("MUSIC should not be a valid category")
	}
	for _, c := range Cities {
		if !c.Valid() {
			t.Errorf("city %s should be valid", c)
		}
	}
	if City("huge").Valid() {
		t.Error("huge should not be a valid city")
	}
}

func TestLabeledEventJSONFlattensRecord(t *testing.T) {
	t.Parallel()

	ev := LabeledEvent{
		EventRecord: EventRecord{
			TagsCount: 3, PostedDaysBeforeEvent: 10, MaxParticipants: 100,
			Category: CategoryArt, City: CityMedium,
		},
		CheckedInCount: 60,
		Success:        1,
	}
	data, err := json.Marshal(ev)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	s := string(data)
	for _, key := range []string{`"tags_count":3`, `"category":"ART"`, `"checked_in_count":60`, `"success":1`} {
		if !strings.Contains(s, key) {
			t.Errorf("marshaled event %s missing %s", s, key)
		}
	}
}

func TestTrainingRequestDefaults(t *testing.T) {
	t.Parallel()

	var req TrainingRequest
	if req.Samples() != DefaultTrainingSamples {
		t.Errorf("Samples() = %d, want %d", req.Samples(), DefaultTrainingSamples)
	}
	if !req.FeatureEngineering() {
		t.Error("FeatureEngineering() should default to true")
	}

	off := false
	req = TrainingRequest{NSamples: 200, EnableFeatureEngineering: &off}
	if req.Samples() != 200 {
		t.Errorf("Samples() = %d, want 200", req.Samples())
	}
	if req.FeatureEngineering() {
		t.Error("FeatureEngineering() should honor explicit false")
	}
}

func TestErrorMessages(t *testing.T) {
	t.Parallel()

	t.Run("validation single", func(t *testing.T) {
		err := &ValidationError{Index: -1, Fields: []FieldError{{Field: "ctr", Message: "ctr must be at most 1"}}}
		if got := err.Error(); got != "validation failed: ctr must be at most 1" {
			t.Errorf("Error() = %q", got)
		}
	})

	t.Run("validation batch index", func(t *testing.T) {
		err := &ValidationError{Index: 2}
		if got := err.Error(); got != "validation failed for event 2" {
			t.Errorf("Error() = %q", got)
		}
	})

	t.Run("untrained", func(t *testing.T) {
		err := &UntrainedModelError{Op: "predict"}
		if !strings.Contains(err.Error(), "model not ready") {
			t.Errorf("Error() = %q", err.Error())
		}
	})

	t.Run("training failure unwraps", func(t *testing.T) {
		cause := errors.New("boom")
		var err error = &TrainingFailure{Stage: "fit", Err: cause}
		if !errors.Is(err, cause) {
			t.Error("TrainingFailure should unwrap to its cause")
		}
		var tf *TrainingFailure
		if !errors.As(err, &tf) || tf.Stage != "fit" {
			t.Error("errors.As should extract TrainingFailure")
		}
	})
}
