// EventPulse - Event Success Prediction and Organizer Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventpulse

package logging

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// requestScope holds the per-request values Ctx adds to log lines. Each
// setter stores a copy so parent contexts are never mutated.
type requestScope struct {
	logger    *zerolog.Logger
	requestID string
	user      string
}

type scopeKey struct{}

func scopeOf(ctx context.Context) requestScope {
	if s, ok := ctx.Value(scopeKey{}).(requestScope); ok {
		return s
	}
	return requestScope{}
}

func withScope(ctx context.Context, update func(*requestScope)) context.Context {
	s := scopeOf(ctx)
	update(&s)
	return context.WithValue(ctx, scopeKey{}, s)
}

// GenerateRequestID returns a random UUIDv4 string.
func GenerateRequestID() string {
	return uuid.NewString()
}

// ContextWithRequestID tags ctx with the request's correlation ID.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return withScope(ctx, func(s *requestScope) { s.requestID = id })
}

// RequestIDFromContext returns the correlation ID, or "".
func RequestIDFromContext(ctx context.Context) string {
	return scopeOf(ctx).requestID
}

// ContextWithUser tags ctx with the authenticated username.
func ContextWithUser(ctx context.Context, username string) context.Context {
	return withScope(ctx, func(s *requestScope) { s.user = username })
}

// UserFromContext returns the authenticated username, or "".
func UserFromContext(ctx context.Context) string {
	return scopeOf(ctx).user
}

// ContextWithLogger stores a request logger in ctx.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func ContextWithLogger(ctx context.Context, logger zerolog.Logger) context.Context {
	return withScope(ctx, func(s *requestScope) { s.logger = &logger })
}

// LoggerFromContext returns the stored logger, falling back to the global one.
func LoggerFromContext(ctx context.Context) zerolog.Logger {
	if l := scopeOf(ctx).logger; l != nil {
		return *l
	}
	return Logger()
}

// Ctx returns the request logger with request_id and user attached.
//
//	logging.Ctx(ctx).Info().Int("events", n).Msg("batch scored")
//	// {"level":"info","request_id":"…","user":"alice","events":12,"message":"batch scored"}
func Ctx(ctx context.Context) *zerolog.Logger {
	s := scopeOf(ctx)
	logger := LoggerFromContext(ctx)
	if s.requestID == "" && s.user == "" {
		return &logger
	}
	lc := logger.With()
	if s.requestID != "" {
		lc = lc.Str("request_id", s.requestID)
	}
	if s.user != "" {
		lc = lc.Str("user", s.user)
	}
	logger = lc.Logger()
	return &logger
}
