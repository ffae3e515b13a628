// EventPulse - Event Success Prediction and Organizer Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventpulse

// Package authz authorizes API requests with a Casbin RBAC policy.
//
// # Architecture
//
//	Request -> auth.Authenticate -> authz.Authorize -> Handler
//
// # RBAC Model
//
//	[request_definition]
//	r = sub, obj, act
//
//	[policy_definition]
//	p = sub, obj, act
//
//	[role_definition]
//	g = _, _
//
//	[policy_effect]
//	e = some(where (p.eft == allow))
//
//	[matchers]
//	m = g(r.sub, p.sub) && r.obj == p.obj && r.act == p.act
//
// # Default Policy
//
// Objects are the API resource groups: predictions, training, model and
// stats. Actions are read and write.
//
//	viewer:   read model, training, stats
//	operator: viewer + write predictions
//	admin:    operator + write training, model
//
// The model and policy are embedded. A policy file may be configured instead
// with security.policy_path; it is reloaded on LoadPolicy.
package authz
