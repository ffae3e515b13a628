// EventPulse - Event Success Prediction and Organizer Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventpulse

//go:build integration

package testinfra

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// Image and port of the prediction cache backend under test.
const (
	DefaultRedisImage = "redis:7-alpine"
	DefaultRedisPort  = "6379/tcp"
)

// RedisContainer is a throwaway redis server. Addr is host:port as the
// cache's REDIS_ADDR expects it.
type RedisContainer struct {
	testcontainers.Container
	Addr string
}

// RedisOption adjusts NewRedisContainer.
type RedisOption func(*redisSpec)

type redisSpec struct {
	image   string
	startup time.Duration
}

// WithRedisImage overrides DefaultRedisImage.
func WithRedisImage(image string) RedisOption {
	return func(s *redisSpec) { s.image = image }
}

// WithRedisStartTimeout bounds the wait for the server to accept clients.
func WithRedisStartTimeout(timeout time.Duration) RedisOption {
	return func(s *redisSpec) { s.startup = timeout }
}

func (s *redisSpec) request() testcontainers.ContainerRequest {
	return testcontainers.ContainerRequest{
		Image:        s.image,
		ExposedPorts: []string{DefaultRedisPort},
		// Cached predictions are disposable; skip snapshots entirely.
		Cmd: []string{"redis-server", "--save", "", "--appendonly", "no"},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort(DefaultRedisPort),
			wait.ForLog("Ready to accept connections"),
		).WithStartupTimeout(s.startup),
	}
}

// NewRedisContainer starts redis and resolves its mapped address. The
// caller owns the container; StartRedis handles termination for tests.
func NewRedisContainer(ctx context.Context, opts ...RedisOption) (*RedisContainer, error) {
	spec := redisSpec{image: DefaultRedisImage, startup: time.Minute}
	for _, opt := range opts {
		opt(&spec)
	}

	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: spec.request(),
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("start %s: %w", spec.image, err)
	}

	addr, err := c.PortEndpoint(ctx, DefaultRedisPort, "")
	if err != nil {
		return nil, errors.Join(fmt.Errorf("resolve redis endpoint: %w", err), c.Terminate(ctx))
	}
	return &RedisContainer{Container: c, Addr: addr}, nil
}
