// EventPulse - Event Success Prediction and Organizer Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventpulse

package validation

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/tomtom215/eventpulse/internal/models"
)

// ===================================================================================================
// Singleton Validator Tests
// ===================================================================================================

func TestGetValidator_Singleton(t *testing.T) {
	t.Parallel()

	v1 := GetValidator()
	v2 := GetValidator()

	if v1 != v2 {
		t.Error("GetValidator() should return the same singleton instance")
	}

	if v1 == nil {
		t.Error("GetValidator() should not return nil")
	}
}

// ===================================================================================================
// Event Record Tests
// ===================================================================================================

func validRecord() models.EventRecord {
	return models.EventRecord{
		TagsCount:             5,
		PostedDaysBeforeEvent: 14,
		PromotionSpend:        300,
		MaxParticipants:       100,
		TicketPrice:           50,
		OrganizerReputation:   0.7,
		AvgPastAttendanceRate: 0.6,
		CTR:                   0.3,
		SocialMentions:        10,
		Weekday:               5,
		Category:              models.CategoryTech,
		City:                  models.CityLarge,
	}
}

func TestValidateEvent_Valid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		modify func(r *models.EventRecord)
	}{
		{"typical event", func(r *models.EventRecord) {}},
		{"lower bounds", func(r *models.EventRecord) {
			r.TagsCount = 0
			r.PostedDaysBeforeEvent = 1
			r.PromotionSpend = 0
			r.MaxParticipants = 1
			r.TicketPrice = 0
			r.OrganizerReputation = 0
			r.AvgPastAttendanceRate = 0
			r.CTR = 0
			r.SocialMentions = 0
			r.Weekday = 0
		}},
		{"upper bounds", func(r *models.EventRecord) {
			r.TagsCount = 20
			r.PostedDaysBeforeEvent = 365
			r.OrganizerReputation = 1
			r.AvgPastAttendanceRate = 1
			r.CTR = 1
			r.Weekday = 6
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := validRecord()
			tt.modify(&r)
			if err := ValidateEvent(&r, -1); err != nil {
				t.Errorf("ValidateEvent() = %v, want nil", err)
			}
		})
	}
}

func TestValidateEvent_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		modify    func(r *models.EventRecord)
		wantField string
		wantTag   string
	}{
		{"reputation above one", func(r *models.EventRecord) { r.OrganizerReputation = 1.5 }, "organizer_reputation", "lte"},
		{"negative ctr", func(r *models.EventRecord) { r.CTR = -0.1 }, "ctr", "gte"},
		{"too many tags", func(r *models.EventRecord) { r.TagsCount = 21 }, "tags_count", "lte"},
		{"posted zero days before", func(r *models.EventRecord) { r.PostedDaysBeforeEvent = 0 }, "posted_days_before_event", "gte"},
		{"zero capacity", func(r *models.EventRecord) { r.MaxParticipants = 0 }, "max_participants", "gte"},
		{"weekday seven", func(r *models.EventRecord) { r.Weekday = 7 }, "weekday", "lte"},
		{"unknown category", func(r *models.EventRecord) { r.Category = "MUSIC" }, "category", "oneof"},
		{"missing city", func(r *models.EventRecord) { r.City = "" }, "city", "required"},
		{"NaN price", func(r *models.EventRecord) { r.TicketPrice = math.NaN() }, "ticket_price", "finite"},
		{"infinite promotion", func(r *models.EventRecord) { r.PromotionSpend = math.Inf(1) }, "promotion_spend", "finite"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := validRecord()
			tt.modify(&r)

			err := ValidateEvent(&r, -1)
			var verr *models.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("ValidateEvent() = %v, want *models.ValidationError", err)
			}
			if verr.Index != -1 {
				t.Errorf("Index = %d, want -1", verr.Index)
			}

			found := false
			for _, f := range verr.Fields {
				if f.Field == tt.wantField && f.Tag == tt.wantTag {
					found = true
					break
				}
			}
			if !found {
				t.Errorf("expected error on %s with tag %s, got %+v", tt.wantField, tt.wantTag, verr.Fields)
			}
		})
	}
}

func TestValidateEvent_Nil(t *testing.T) {
	t.Parallel()

	var verr *models.ValidationError
	if err := ValidateEvent(nil, 3); !errors.As(err, &verr) || verr.Index != 3 {
		t.Errorf("ValidateEvent(nil) = %v, want ValidationError at index 3", err)
	}
}

func TestValidateEvents_ReportsFirstInvalidIndex(t *testing.T) {
	t.Parallel()

	records := []models.EventRecord{validRecord(), validRecord(), validRecord()}
	if err := ValidateEvents(records); err != nil {
		t.Fatalf("all valid: %v", err)
	}

	records[1].OrganizerReputation = 2
	records[2].CTR = 2
	err := ValidateEvents(records)

	var verr *models.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("ValidateEvents() = %v, want *models.ValidationError", err)
	}
	if verr.Index != 1 {
		t.Errorf("Index = %d, want 1", verr.Index)
	}
	if !strings.Contains(err.Error(), "event 1") {
		t.Errorf("message %q should name the event index", err.Error())
	}
}

// ===================================================================================================
// Request Tests
// ===================================================================================================

func TestValidateStruct_TrainingRequest(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		samples int
		wantErr bool
	}{
		{"default samples", 0, false},
		{"minimum", 100, false},
		{"maximum", 50000, false},
		{"too few", 99, true},
		{"too many", 50001, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req := models.TrainingRequest{NSamples: tt.samples}
			err := ValidateStruct(&req)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateStruct() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && err.Errors()[0].Field != "n_samples" {
				t.Errorf("field = %s, want n_samples", err.Errors()[0].Field)
			}
		})
	}
}

func TestValidateStruct_BatchRequest(t *testing.T) {
	t.Parallel()

	empty := models.BatchPredictionRequest{Events: []models.EventRecord{}}
	err := ValidateStruct(&empty)
	if err == nil {
		t.Fatal("empty batch should fail")
	}
	if msg := err.Errors()[0].Message; msg != "events must contain at least 1 items" {
		t.Errorf("message = %q", msg)
	}
}

// ===================================================================================================
// ToAPIError Tests
// ===================================================================================================

func TestToAPIError_SingleError(t *testing.T) {
	t.Parallel()

	r := validRecord()
	r.CTR = 3

	err := ValidateStruct(&r)
	if err == nil {
		t.Fatal("Expected validation error")
	}

	apiErr := err.ToAPIError()
	if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("Expected code VALIDATION_ERROR, got %s", apiErr.Code)
	}
	if apiErr.Message != "ctr must be less than or equal to 1" {
		t.Errorf("Message = %q", apiErr.Message)
	}
	if apiErr.Details["field"] != "ctr" {
		t.Errorf("Details = %v", apiErr.Details)
	}
}

func TestToAPIError_MultipleErrors(t *testing.T) {
	t.Parallel()

	r := validRecord()
	r.CTR = 3
	r.Weekday = -1

	err := ValidateStruct(&r)
	if err == nil {
		t.Fatal("Expected validation error")
	}

	apiErr := err.ToAPIError()
	if _, ok := apiErr.Details["fields"]; !ok {
		t.Error("Expected details to contain 'fields' key")
	}
	if !strings.Contains(apiErr.Message, "ctr:") || !strings.Contains(apiErr.Message, "weekday:") {
		t.Errorf("Message = %q, want both fields", apiErr.Message)
	}

	model := err.ToModelError(4)
	if model.Index != 4 || len(model.Fields) != 2 {
		t.Errorf("ToModelError = %+v", model)
	}
}

func TestErrorMessages(t *testing.T) {
	t.Parallel()

	r := validRecord()
	r.Category = "X"
	err := ValidateStruct(&r)
	if err == nil {
		t.Fatal("Expected validation error")
	}
	want := "category must be one of: TECH EDUCATION ART SPORTS HEALTH OTHER"
	if got := err.Errors()[0].Message; got != want {
		t.Errorf("message = %q, want %q", got, want)
	}
}
