// EventPulse - Event Success Prediction and Organizer Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventpulse

package websocket

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/eventpulse/internal/models"
)

// startHub runs a hub until the test ends.
func startHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = hub.RunWithContext(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return hub
}

// createTestClient creates a client without a connection.
func createTestClient(hub *Hub, buffer int) *Client {
	return &Client{id: lastClientID.Add(1), hub: hub, send: make(chan Message, buffer)}
}

func waitForCount(t *testing.T, hub *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if hub.GetClientCount() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("client count = %d, want %d", hub.GetClientCount(), want)
}

func receiveMessage(t *testing.T, c *Client) Message {
	t.Helper()
	select {
	case msg, ok := <-c.send:
		if !ok {
			t.Fatal("send channel closed")
		}
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for message")
		return Message{}
	}
}

func lifecycleEvent(eventType string) *models.LifecycleEvent {
	return &models.LifecycleEvent{
		ID:           "evt-1",
		Type:         eventType,
		Timestamp:    time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		ModelName:    "event_success_v2",
		ModelVersion: "2.0.0",
		Generation:   4,
	}
}

func TestMessageTypeFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		eventType string
		want      string
	}{
		{models.EventTrainingStarted, MessageTypeTrainingStarted},
		{models.EventTrainingCompleted, MessageTypeTrainingCompleted},
		{models.EventTrainingFailed, MessageTypeTrainingFailed},
		{models.EventModelReloaded, MessageTypeModelReloaded},
		{"model.deleted", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.eventType, func(t *testing.T) {
			t.Parallel()
			if got := MessageTypeFor(tt.eventType); got != tt.want {
				t.Errorf("MessageTypeFor(%q) = %q, want %q", tt.eventType, got, tt.want)
			}
		})
	}
}

func TestHub_RegisterUnregister(t *testing.T) {
	t.Parallel()

	hub := startHub(t)
	a := createTestClient(hub, 4)
	b := createTestClient(hub, 4)

	hub.Register <- a
	hub.Register <- b
	waitForCount(t, hub, 2)

	hub.Unregister <- a
	waitForCount(t, hub, 1)

	if _, ok := <-a.send; ok {
		t.Error("unregistered client's send channel should be closed")
	}

	// Unregistering an unknown client is a no-op.
	hub.Unregister <- createTestClient(hub, 1)
	hub.Unregister <- a
	waitForCount(t, hub, 1)
}

func TestHub_BroadcastLifecycle(t *testing.T) {
	t.Parallel()

	hub := startHub(t)
	clients := []*Client{createTestClient(hub, 4), createTestClient(hub, 4), createTestClient(hub, 4)}
	for _, c := range clients {
		hub.Register <- c
	}
	waitForCount(t, hub, len(clients))

	if !hub.BroadcastLifecycle(lifecycleEvent(models.EventTrainingCompleted)) {
		t.Fatal("BroadcastLifecycle returned false")
	}

	for i, c := range clients {
		msg := receiveMessage(t, c)
		if msg.Type != MessageTypeTrainingCompleted {
			t.Errorf("client %d: type = %q", i, msg.Type)
		}
		ev, ok := msg.Data.(*models.LifecycleEvent)
		if !ok || ev.Generation != 4 {
			t.Errorf("client %d: data = %#v", i, msg.Data)
		}
	}
}

func TestHub_BroadcastLifecycleIgnoresUnknown(t *testing.T) {
	t.Parallel()

	hub := NewHub(zerolog.Nop())
	if hub.BroadcastLifecycle(nil) {
		t.Error("nil event should not be broadcast")
	}
	if hub.BroadcastLifecycle(lifecycleEvent("model.deleted")) {
		t.Error("unknown event should not be broadcast")
	}
	if len(hub.broadcast) != 0 {
		t.Errorf("broadcast queue length = %d, want 0", len(hub.broadcast))
	}
}

func TestHub_BroadcastQueueFull(t *testing.T) {
	t.Parallel()

	// Not running, so nothing drains the queue.
	hub := NewHub(zerolog.Nop())
	for i := 0; i < broadcastBuffer; i++ {
		if !hub.Broadcast(MessageTypeTrainingStarted, i) {
			t.Fatalf("broadcast %d dropped before the queue was full", i)
		}
	}
	if hub.Broadcast(MessageTypeTrainingStarted, "overflow") {
		t.Error("broadcast should be dropped when the queue is full")
	}
}

func TestHub_SlowClientDropped(t *testing.T) {
	t.Parallel()

	hub := NewHub(zerolog.Nop())
	fast := createTestClient(hub, 4)
	slow := createTestClient(hub, 1)
	hub.clients[fast] = true
	hub.clients[slow] = true

	hub.broadcastToClients(Message{Type: MessageTypeTrainingStarted})
	hub.broadcastToClients(Message{Type: MessageTypeTrainingCompleted})

	if hub.GetClientCount() != 1 {
		t.Fatalf("client count = %d, want 1", hub.GetClientCount())
	}
	if !hub.clients[fast] {
		t.Error("fast client should remain registered")
	}
	if len(fast.send) != 2 {
		t.Errorf("fast client queued %d messages, want 2", len(fast.send))
	}

	// The slow client got the first message, then its channel was closed.
	if msg := <-slow.send; msg.Type != MessageTypeTrainingStarted {
		t.Errorf("slow client first message = %q", msg.Type)
	}
	if _, ok := <-slow.send; ok {
		t.Error("slow client channel should be closed")
	}
}

func TestHub_BroadcastOrder(t *testing.T) {
	t.Parallel()

	hub := NewHub(zerolog.Nop())
	var clients []*Client
	for i := 0; i < 5; i++ {
		c := createTestClient(hub, 1)
		clients = append(clients, c)
		hub.clients[c] = true
	}

	sorted := hub.sortedClients()
	for i := range sorted {
		if sorted[i] != clients[i] {
			t.Fatalf("sortedClients()[%d] has id %d, want %d", i, sorted[i].id, clients[i].id)
		}
	}
}

func TestHub_ConcurrentOperations(t *testing.T) {
	t.Parallel()

	hub := startHub(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := createTestClient(hub, 64)
			hub.Register <- c
			hub.Broadcast(MessageTypeModelReloaded, nil)
			_ = hub.GetClientCount()
			hub.Unregister <- c
		}()
	}
	wg.Wait()
	waitForCount(t, hub, 0)
}

func TestHub_RunWithContext(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		ctx     func() (context.Context, context.CancelFunc)
		wantErr error
		reason  ShutdownReason
	}{
		{
			name:    "canceled",
			ctx:     func() (context.Context, context.CancelFunc) { return context.WithCancel(context.Background()) },
			wantErr: context.Canceled,
			reason:  ShutdownReasonContextCanceled,
		},
		{
			name: "deadline",
			ctx: func() (context.Context, context.CancelFunc) {
				return context.WithTimeout(context.Background(), 300*time.Millisecond)
			},
			wantErr: context.DeadlineExceeded,
			reason:  ShutdownReasonContextDeadline,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf syncBuffer
			hub := NewHub(zerolog.New(&buf))
			ctx, cancel := tt.ctx()
			defer cancel()

			errCh := make(chan error, 1)
			go func() { errCh <- hub.RunWithContext(ctx) }()

			c := createTestClient(hub, 4)
			hub.Register <- c
			waitForCount(t, hub, 1)

			if tt.wantErr == context.Canceled {
				cancel()
			}

			select {
			case err := <-errCh:
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("RunWithContext error = %v, want %v", err, tt.wantErr)
				}
			case <-time.After(2 * time.Second):
				t.Fatal("hub did not stop")
			}

			if hub.GetClientCount() != 0 {
				t.Errorf("clients remaining after shutdown: %d", hub.GetClientCount())
			}
			if _, ok := <-c.send; ok {
				t.Error("client channel should be closed on shutdown")
			}

			out := buf.String()
			if !strings.Contains(out, `"reason":"`+string(tt.reason)+`"`) || !strings.Contains(out, `"clients_closed":1`) {
				t.Errorf("shutdown log missing fields: %s", out)
			}
			if strings.Contains(out, `"level":"error"`) {
				t.Errorf("graceful shutdown logged an error: %s", out)
			}
		})
	}
}

func TestMarshalMessage(t *testing.T) {
	t.Parallel()

	data, err := MarshalMessage(Message{Type: MessageTypeTrainingFailed, Data: lifecycleEvent(models.EventTrainingFailed)})
	if err != nil {
		t.Fatalf("MarshalMessage: %v", err)
	}
	s := string(data)
	for _, want := range []string{`"type":"training_failed"`, `"type":"training.failed"`, `"generation":4`} {
		if !strings.Contains(s, want) {
			t.Errorf("marshaled message %s missing %s", s, want)
		}
	}
}

// syncBuffer is a bytes.Buffer safe for concurrent writes.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
