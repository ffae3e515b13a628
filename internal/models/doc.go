// EventPulse - Event Success Prediction and Organizer Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventpulse

/*
Package models defines the data structures shared by every EventPulse component.

Key Components:

  - EventRecord: validated raw event attributes, the only input the feature
    transformer and the recommendation rules ever see
  - LabeledEvent: an EventRecord plus observed outcome fields, used for training
  - PredictionResult and Recommendation: the structured output of a prediction
  - APIResponse: the standard HTTP response envelope
  - ValidationError, UntrainedModelError, FeatureMismatchError, TrainingFailure:
    the error taxonomy surfaced at the service boundary

Outcome fields on LabeledEvent (checked-in count, revenue, attendance rate) leak the
label. They are carried for reporting and dataset export only and are never read by
the feature transformer.
*/
package models
