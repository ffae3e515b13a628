// EventPulse - Event Success Prediction and Organizer Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventpulse

// Package logging configures the process-wide zerolog logger.
//
// Components receive a zerolog.Logger explicitly and add a "component" field;
// this package only builds the root logger, carries request IDs through
// contexts, and bridges zerolog to log/slog for libraries that want an
// *slog.Logger (the suture supervisor).
//
// # Quick Start
//
//	logger := logging.Init(logging.Config{Level: "info", Format: "json"})
//	logger.Info().Msg("server starting")
//
//	// In a handler, after middleware.RequestID:
//	logging.Ctx(r.Context()).Warn().Msg("slow prediction")
//
// # Best Practices
//
// Always terminate log chains with .Msg() or .Send(), and prefer structured
// fields to formatted messages:
//
//	logger.Info().Int("samples", n).Msg("training started")  // Correct
//	logger.Info().Msgf("training started with %d samples", n) // Avoid
package logging
