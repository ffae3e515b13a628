// EventPulse - Event Success Prediction and Organizer Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventpulse

//go:build integration

package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/eventpulse/internal/testinfra"
)

// TestRedisStore_Integration exercises the redis backend against a real server.
// This test requires Docker and is skipped in environments without Docker.
func TestRedisStore_Integration(t *testing.T) {
	container := testinfra.StartRedis(t)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	store, err := Open(Config{Backend: BackendRedis, RedisAddr: container.Addr, KeyPrefix: "test"}, zerolog.Nop())
	if err != nil {
		t.Fatalf("Open redis store: %v", err)
	}
	defer store.Close()

	t.Run("miss", func(t *testing.T) {
		if _, err := store.Get(ctx, "absent"); !errors.Is(err, ErrCacheMiss) {
			t.Fatalf("Get(absent) error = %v, want ErrCacheMiss", err)
		}
	})

	t.Run("set get delete", func(t *testing.T) {
		if err := store.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
			t.Fatalf("Set: %v", err)
		}
		got, err := store.Get(ctx, "k")
		if err != nil || string(got) != "v" {
			t.Fatalf("Get = %q, %v", got, err)
		}
		if err := store.Delete(ctx, "k"); err != nil {
			t.Fatalf("Delete: %v", err)
		}
		if _, err := store.Get(ctx, "k"); !errors.Is(err, ErrCacheMiss) {
			t.Fatalf("Get after delete error = %v", err)
		}
	})

	t.Run("expiry", func(t *testing.T) {
		if err := store.Set(ctx, "short", []byte("v"), time.Second); err != nil {
			t.Fatalf("Set: %v", err)
		}
		time.Sleep(1500 * time.Millisecond)
		if _, err := store.Get(ctx, "short"); !errors.Is(err, ErrCacheMiss) {
			t.Fatalf("Get after expiry error = %v, want ErrCacheMiss", err)
		}
	})

	t.Run("prediction cache", func(t *testing.T) {
		pc := NewPredictionCache(store, time.Minute, zerolog.Nop())
		r := testRecord()
		pc.Set(ctx, runA, &r, testResult(runA))

		got, ok := pc.Get(ctx, runA, &r)
		if !ok {
			t.Fatal("expected hit")
		}
		if got.Probability != 0.8123 {
			t.Errorf("Probability = %v", got.Probability)
		}
	})
}

func TestNewRedisStoreUnreachable(t *testing.T) {
	if _, err := NewRedisStore(RedisConfig{Addr: "127.0.0.1:1"}); err == nil {
		t.Fatal("expected ping failure for unreachable server")
	}
}
