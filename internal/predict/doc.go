// EventPulse - Event Success Prediction and Organizer Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventpulse

/*
Package predict orchestrates prediction and training for the service.

The Engine is the single owner of service state: the serving model, the
training guard, the last run record and the request counters. Handlers receive
the Engine explicitly; nothing lives in package globals.

# Prediction

Predict runs one bounded pass:

	validate -> load model snapshot -> transform -> score -> label (p >= 0.5)
	-> expected attendance floor(p*capacity) -> expected revenue
	-> recommendations -> result

PredictBatch validates every record first, then scores all of them against one
snapshot in parallel and writes results by index, so output order matches
input order.

# Model Replacement

The serving model is an atomic pointer. Training and reloads build a complete
TrainedModel and swap it in with a new generation number; predictions already
running keep the snapshot they loaded.

# Training

StartTraining returns as soon as a run is accepted and trains in the
background. At most one run is active; a second request fails immediately with
ErrTrainingInProgress. Runs generate a synthetic dataset, train through the
training pipeline, persist the model when storage is configured, and only then
replace the serving model. A failed run leaves the previous model serving.

# Collaborators

Storage, the prediction cache, prediction history and the lifecycle event
publisher are optional interfaces supplied through Dependencies.
*/
package predict
