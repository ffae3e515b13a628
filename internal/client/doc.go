// EventPulse - Event Success Prediction and Organizer Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventpulse

/*
Package client is a Go client for the EventPulse prediction API.

Every call goes through a token bucket rate limiter (golang.org/x/time/rate)
and a circuit breaker (sony/gobreaker/v2). Responses are unwrapped from the
API envelope: the data field is decoded into the result and the error field
becomes an *APIError.

# Fallback

When the service cannot answer (transport error, 5xx, open breaker) and
Config.Fallback is set, Predict and PredictBatch return a heuristic result
instead of an error:

	p = clamp(0.5 + 0.2*organizer_reputation + 0.1 if the event is free, 0.05, 0.95)

The result has Success=false, confidence LOW, model name "heuristic_fallback"
and two recommendations (SYSTEM HIGH, MARKETING MEDIUM). Client errors such as
a 400 VALIDATION_ERROR are always returned as errors.

# Usage

	c, err := client.New(client.DefaultConfig("http://localhost:8000"), logger)
	if err != nil {
	    return err
	}
	result, err := c.Predict(ctx, event)
*/
package client
