// EventPulse - Event Success Prediction and Organizer Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventpulse

// Package testinfra provides test infrastructure for integration testing with containers.
//
// This package uses testcontainers-go to start real backing services for
// integration tests. Files are built only with the integration tag:
//
//	go test -tags integration ./internal/cache/...
//
// # Redis Container
//
// RedisContainer runs a disposable redis server for the cache backend:
//
//	func TestRedisStore(t *testing.T) {
//	    redis := testinfra.StartRedis(t)
//	    store, err := cache.NewRedisStore(cache.RedisConfig{Addr: redis.Addr})
//	    // ...
//	}
//
// StartRedis skips when Docker is unreachable and registers the container
// for termination on test cleanup. NewRedisContainer is the lower-level
// constructor for callers that manage the lifecycle themselves.
//
// # CI Considerations
//
// These tests require Docker and network access. Tests are skipped gracefully
// if Docker is unavailable. The first run may need to pull the image.
package testinfra
