// EventPulse - Event Success Prediction and Organizer Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventpulse

// Package history stores prediction and training run history in DuckDB.
//
// Every served prediction is appended to the predictions table together with
// the record attributes used for analytics (category, city, price, capacity).
// Finished training runs are upserted into training_runs by run id. Summary
// aggregates both tables for the /stats endpoint.
//
// The database may be a file or ":memory:". Writes are small batched
// transactions; history failures are reported to the caller, which logs them
// without failing the prediction.
package history
