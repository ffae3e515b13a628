// EventPulse - Event Success Prediction and Organizer Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventpulse

/*
Package auth authenticates API callers with HMAC-signed JWT bearer tokens.

Two modes are supported:

  - none: every request runs as the anonymous subject with the admin role.
    This is the default for local development and tests.
  - jwt: requests must carry "Authorization: Bearer <token>". Tokens are
    HS256-signed with security.jwt_secret and carry a username and one role
    (admin, operator or viewer).

Tokens are issued offline by "predictctl token"; the service itself has no
login endpoint. The authenticated AuthSubject is stored in the request
context where internal/authz reads it.

Usage:

	jwtManager, err := auth.NewJWTManager(cfg.Security.JWTSecret, cfg.Security.TokenTTL)
	mw := auth.NewMiddleware(auth.AuthModeJWT, jwtManager, logger)
	r.Use(mw.Authenticate)
*/
package auth
