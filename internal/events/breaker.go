// EventPulse - Event Success Prediction and Organizer Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventpulse

package events

import (
	"errors"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/eventpulse/internal/metrics"
)

// publishBreaker guards broker publishes. Publish results carry no value.
type publishBreaker = gobreaker.CircuitBreaker[struct{}]

// NewCircuitBreaker opens after cfg.FailureThreshold publishes fail in a
// row, so a down broker costs one fast rejection instead of a timeout per
// lifecycle event.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewCircuitBreaker(cfg CircuitBreakerConfig, logger zerolog.Logger) *publishBreaker {
	threshold := max(cfg.FailureThreshold, 1)
	return gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(c gobreaker.Counts) bool { return c.ConsecutiveFailures >= threshold },
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.RecordCircuitBreakerTransition(name, int(from), int(to))
			ev := logger.Info()
			if to == gobreaker.StateOpen {
				ev = logger.Warn()
			}
			ev.Str("breaker", name).Stringer("from", from).Stringer("to", to).Msg("publish breaker state changed")
		},
	})
}

// breakerOutcome labels a publish result for the breaker request counter.
func breakerOutcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return "rejected"
	default:
		return "failure"
	}
}
