// EventPulse - Event Success Prediction and Organizer Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventpulse

package validation

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/tomtom215/eventpulse/internal/models"
)

// CodeValidation is the API error code for rejected input.
const CodeValidation = "VALIDATION_ERROR"

// GetValidator returns the shared validator. Errors name fields by their
// JSON keys and the "finite" tag rejects NaN and infinities.
var GetValidator = sync.OnceValue(func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonFieldName)
	if err := v.RegisterValidation("finite", isFinite); err != nil {
		panic(fmt.Sprintf("register finite validator: %v", err))
	}
	return v
})

func jsonFieldName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return fld.Name
	}
	return name
}

func isFinite(fl validator.FieldLevel) bool {
	f := fl.Field()
	switch f.Kind() {
	case reflect.Float32, reflect.Float64:
		return !math.IsNaN(f.Float()) && !math.IsInf(f.Float(), 0)
	default:
		return true
	}
}

// RequestValidationError lists every field a struct failed on.
type RequestValidationError struct {
	fields []models.FieldError
}

// Errors returns the failed fields in declaration order.
func (e *RequestValidationError) Errors() []models.FieldError {
	return e.fields
}

func (e *RequestValidationError) Error() string {
	if len(e.fields) == 0 {
		return "validation failed"
	}
	msgs := make([]string, len(e.fields))
	for i, f := range e.fields {
		msgs[i] = f.Message
	}
	return strings.Join(msgs, "; ")
}

// ToModelError converts to the domain error. index is the record's batch
// position, or -1 for a single record.
func (e *RequestValidationError) ToModelError(index int) *models.ValidationError {
	return &models.ValidationError{Index: index, Fields: append([]models.FieldError(nil), e.fields...)}
}

// ToAPIError builds the VALIDATION_ERROR body. One failure reports its
// field, tag and value in details; several are listed under "fields".
func (e *RequestValidationError) ToAPIError() *models.APIError {
	switch len(e.fields) {
	case 0:
		return &models.APIError{Code: CodeValidation, Message: "Validation failed"}
	case 1:
		f := e.fields[0]
		return &models.APIError{
			Code:    CodeValidation,
			Message: f.Message,
			Details: map[string]interface{}{"field": f.Field, "tag": f.Tag, "value": f.Value},
		}
	}

	listed := make([]map[string]interface{}, len(e.fields))
	msgs := make([]string, len(e.fields))
	for i, f := range e.fields {
		listed[i] = map[string]interface{}{"field": f.Field, "tag": f.Tag, "message": f.Message}
		msgs[i] = f.Field + ": " + f.Message
	}
	return &models.APIError{
		Code:    CodeValidation,
		Message: strings.Join(msgs, "; "),
		Details: map[string]interface{}{"fields": listed},
	}
}

// ValidateStruct runs the struct tags of s. It returns nil on success.
func ValidateStruct(s interface{}) *RequestValidationError {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return &RequestValidationError{fields: []models.FieldError{{
			Field: "unknown", Tag: "unknown", Message: err.Error(),
		}}}
	}

	out := &RequestValidationError{fields: make([]models.FieldError, len(fieldErrs))}
	for i, fe := range fieldErrs {
		out.fields[i] = models.FieldError{
			Field:   fe.Field(),
			Tag:     fe.Tag(),
			Value:   fe.Value(),
			Message: describe(fe),
		}
	}
	return out
}

// ValidateEvent checks one record and returns a *models.ValidationError when
// any field is out of range. index is the batch position, or -1.
func ValidateEvent(r *models.EventRecord, index int) error {
	if r == nil {
		return &models.ValidationError{Index: index, Fields: []models.FieldError{{
			Field: "event", Tag: "required", Message: "event is required",
		}}}
	}
	if verr := ValidateStruct(r); verr != nil {
		return verr.ToModelError(index)
	}
	return nil
}

// ValidateEvents checks a batch and returns the error of the first invalid
// record, so a batch is accepted or rejected as a whole.
func ValidateEvents(records []models.EventRecord) error {
	for i := range records {
		if err := ValidateEvent(&records[i], i); err != nil {
			return err
		}
	}
	return nil
}

// describe renders a field error as a sentence naming the JSON field.
func describe(fe validator.FieldError) string {
	field, param := fe.Field(), fe.Param()

	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "finite":
		return field + " must be a finite number"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, param)
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, param)
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", field, param)
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, param)
	case "lt":
		return fmt.Sprintf("%s must be less than %s", field, param)
	case "url":
		return field + " must be a valid URL"
	case "min", "max":
		bound := "at least"
		if fe.Tag() == "max" {
			bound = "at most"
		}
		switch fe.Kind() {
		case reflect.String:
			return fmt.Sprintf("%s must be %s %s characters", field, bound, param)
		case reflect.Slice, reflect.Array, reflect.Map:
			return fmt.Sprintf("%s must contain %s %s items", field, bound, param)
		default:
			return fmt.Sprintf("%s must be %s %s", field, bound, param)
		}
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}
