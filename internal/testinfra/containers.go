// EventPulse - Event Success Prediction and Organizer Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventpulse

//go:build integration

package testinfra

import (
	"context"
	"os/exec"
	"sync"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
)

// dockerProbe runs `docker info` once per test binary.
var dockerProbe = sync.OnceValue(func() bool {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return exec.CommandContext(ctx, "docker", "info").Run() == nil
})

// DockerAvailable reports whether a Docker daemon answered the probe.
func DockerAvailable() bool {
	return dockerProbe()
}

// RequireDocker skips tb when Docker is unreachable.
func RequireDocker(tb testing.TB) {
	tb.Helper()
	if !DockerAvailable() {
		tb.Skip("docker daemon not reachable, skipping container test")
	}
}

// TerminateOnCleanup registers c for termination when tb finishes. The
// cleanup uses its own context so a canceled test context still tears the
// container down.
func TerminateOnCleanup(tb testing.TB, c testcontainers.Container) {
	tb.Helper()
	if c == nil {
		return
	}
	tb.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := c.Terminate(ctx); err != nil {
			tb.Logf("terminate container: %v", err)
		}
	})
}

// StartRedis starts a redis container for tb, or skips when Docker is
// missing. The container is terminated on test cleanup.
func StartRedis(tb testing.TB, opts ...RedisOption) *RedisContainer {
	tb.Helper()
	RequireDocker(tb)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	redis, err := NewRedisContainer(ctx, opts...)
	if err != nil {
		tb.Fatalf("start redis container: %v", err)
	}
	TerminateOnCleanup(tb, redis)
	return redis
}
