// EventPulse - Event Success Prediction and Organizer Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventpulse

package websocket

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/tomtom215/eventpulse/internal/models"
)

// dashboard connects a browser-side socket to a server-side Client that is
// registered with hub and started.
func dashboard(t *testing.T, hub *Hub) (*websocket.Conn, *Client) {
	t.Helper()

	accepted := make(chan *Client, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := (&websocket.Upgrader{}).Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		c := NewClient(hub, conn)
		hub.Register <- c
		c.Start()
		accepted <- c
	}))
	t.Cleanup(server.Close)

	conn, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http"), nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	select {
	case c := <-accepted:
		return conn, c
	case <-time.After(2 * time.Second):
		t.Fatal("server never accepted the connection")
		return nil, nil
	}
}

func readFrame(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg Message
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read frame: %v", err)
	}
	return msg
}

func TestNewClient(t *testing.T) {
	t.Parallel()

	hub := NewHub(zerolog.Nop())
	first, second := NewClient(hub, nil), NewClient(hub, nil)

	if second.ID() <= first.ID() {
		t.Errorf("ids not increasing: %d then %d", first.ID(), second.ID())
	}
	if cap(first.send) != sendBuffer {
		t.Errorf("send buffer = %d, want %d", cap(first.send), sendBuffer)
	}
	if !first.Wants(MessageTypeTrainingFailed) {
		t.Error("a new client should receive every lifecycle message")
	}
	if pingPeriod >= pongWait {
		t.Errorf("pingPeriod %v must be shorter than pongWait %v", pingPeriod, pongWait)
	}
}

func TestClient_Subscribe(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		types    []string
		wantErr  bool
		wants    map[string]bool
		wantSubs []string
	}{
		{
			name:     "subset",
			types:    []string{MessageTypeTrainingFailed, MessageTypeTrainingCompleted, MessageTypeTrainingFailed},
			wants:    map[string]bool{MessageTypeTrainingFailed: true, MessageTypeTrainingStarted: false},
			wantSubs: []string{MessageTypeTrainingCompleted, MessageTypeTrainingFailed},
		},
		{
			name:  "empty list restores full feed",
			types: nil,
			wants: map[string]bool{MessageTypeModelReloaded: true, MessageTypeTrainingStarted: true},
		},
		{
			name:    "unknown type",
			types:   []string{MessageTypeModelReloaded, "prediction_made"},
			wantErr: true,
			wants:   map[string]bool{MessageTypeTrainingStarted: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := NewClient(nil, nil)
			err := c.Subscribe(tt.types)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Subscribe() error = %v, wantErr %v", err, tt.wantErr)
			}
			for messageType, want := range tt.wants {
				if got := c.Wants(messageType); got != want {
					t.Errorf("Wants(%q) = %v, want %v", messageType, got, want)
				}
			}
			if got := c.subscription(); strings.Join(got, ",") != strings.Join(tt.wantSubs, ",") {
				t.Errorf("subscription = %v, want %v", got, tt.wantSubs)
			}
		})
	}
}

func TestClient_Frames(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		frame    string
		wantType string
		wantData string
	}{
		{"ping", `{"type":"ping"}`, MessageTypePong, ""},
		{"subscribe", `{"type":"subscribe","data":["model_reloaded"]}`, MessageTypeSubscribed, "model_reloaded"},
		{"subscribe unknown", `{"type":"subscribe","data":["nope"]}`, MessageTypeError, "unknown message type nope"},
		{"subscribe bad data", `{"type":"subscribe","data":"model_reloaded"}`, MessageTypeError, "list of message types"},
		{"unsupported", `{"type":"train"}`, MessageTypeError, "unsupported message type train"},
		{"not json", `hello`, MessageTypeError, "JSON objects"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			conn, _ := dashboard(t, startHub(t))
			if err := conn.WriteMessage(websocket.TextMessage, []byte(tt.frame)); err != nil {
				t.Fatalf("write: %v", err)
			}

			got := readFrame(t, conn)
			if got.Type != tt.wantType {
				t.Fatalf("reply type = %q, want %q", got.Type, tt.wantType)
			}
			if tt.wantData != "" {
				data, _ := MarshalMessage(got)
				if !strings.Contains(string(data), tt.wantData) {
					t.Errorf("reply %s missing %q", data, tt.wantData)
				}
			}
		})
	}
}

func TestClient_SubscriptionFiltersBroadcasts(t *testing.T) {
	t.Parallel()

	hub := startHub(t)
	conn, _ := dashboard(t, hub)
	waitForCount(t, hub, 1)

	if err := conn.WriteJSON(Message{Type: MessageTypeSubscribe, Data: []string{MessageTypeTrainingCompleted}}); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if got := readFrame(t, conn); got.Type != MessageTypeSubscribed {
		t.Fatalf("expected subscribed ack, got %q", got.Type)
	}

	hub.BroadcastLifecycle(lifecycleEvent(models.EventTrainingStarted))
	hub.BroadcastLifecycle(lifecycleEvent(models.EventTrainingCompleted))

	if got := readFrame(t, conn); got.Type != MessageTypeTrainingCompleted {
		t.Errorf("first delivered message = %q, want %q", got.Type, MessageTypeTrainingCompleted)
	}
}

func TestClient_DisconnectUnregisters(t *testing.T) {
	t.Parallel()

	hub := startHub(t)
	conn, _ := dashboard(t, hub)
	waitForCount(t, hub, 1)

	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"))
	conn.Close()

	waitForCount(t, hub, 0)
}

func TestClient_HubDropSendsClose(t *testing.T) {
	t.Parallel()

	hub := startHub(t)
	conn, c := dashboard(t, hub)
	waitForCount(t, hub, 1)

	hub.Unregister <- c

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Fatal("expected the connection to close after the hub dropped the client")
	}
}
