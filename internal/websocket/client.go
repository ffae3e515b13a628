// EventPulse - Event Success Prediction and Organizer Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventpulse

package websocket

import (
	"slices"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/tomtom215/eventpulse/internal/metrics"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = time.Minute
	pingPeriod     = pongWait * 9 / 10
	maxMessageSize = 4 << 10
	sendBuffer     = 64
)

var lastClientID atomic.Uint64

// inbound is a client-to-server frame. Data stays raw until the type is known.
type inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Client is one dashboard connection. A client receives every lifecycle
// message until it subscribes to a subset:
//
//	{"type": "subscribe", "data": ["training_completed", "training_failed"]}
//
// An empty list restores the full feed.
type Client struct {
	id     uint64
	hub    *Hub
	conn   *websocket.Conn
	send   chan Message
	topics atomic.Pointer[[]string]
}

// NewClient wraps conn. IDs increase in connection order.
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		id:   lastClientID.Add(1),
		hub:  hub,
		conn: conn,
		send: make(chan Message, sendBuffer),
	}
}

// ID returns the connection-order identifier.
func (c *Client) ID() uint64 {
	return c.id
}

// Wants reports whether the client's subscription includes messageType.
// Replies such as pong bypass the filter because they are queued directly.
func (c *Client) Wants(messageType string) bool {
	topics := c.topics.Load()
	return topics == nil || slices.Contains(*topics, messageType)
}

// Subscribe restricts the client to the given lifecycle message types.
// An empty list clears the filter. Unknown types are rejected.
func (c *Client) Subscribe(types []string) error {
	for _, t := range types {
		if !isLifecycleType(t) {
			return &unknownTypeError{messageType: t}
		}
	}
	if len(types) == 0 {
		c.topics.Store(nil)
		return nil
	}
	set := slices.Clone(types)
	slices.Sort(set)
	set = slices.Compact(set)
	c.topics.Store(&set)
	return nil
}

type unknownTypeError struct{ messageType string }

func (e *unknownTypeError) Error() string {
	return "unknown message type " + e.messageType
}

// reply queues a direct answer without blocking the read loop.
func (c *Client) reply(msg Message) {
	select {
	case c.send <- msg:
	default:
		metrics.WSErrors.WithLabelValues("reply_dropped").Inc()
	}
}

func (c *Client) handle(frame inbound) {
	switch frame.Type {
	case MessageTypePing:
		c.reply(Message{Type: MessageTypePong})

	case MessageTypeSubscribe:
		var types []string
		if len(frame.Data) > 0 {
			if err := json.Unmarshal(frame.Data, &types); err != nil {
				c.reply(Message{Type: MessageTypeError, Data: "subscribe data must be a list of message types"})
				return
			}
		}
		if err := c.Subscribe(types); err != nil {
			c.reply(Message{Type: MessageTypeError, Data: err.Error()})
			return
		}
		c.reply(Message{Type: MessageTypeSubscribed, Data: c.subscription()})

	default:
		c.reply(Message{Type: MessageTypeError, Data: "unsupported message type " + frame.Type})
	}
}

// subscription returns the active filter, or nil for the full feed.
func (c *Client) subscription() []string {
	if topics := c.topics.Load(); topics != nil {
		return *topics
	}
	return nil
}

// readPump consumes client frames until the connection fails, then
// unregisters the client.
func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister <- c
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	extend := func(string) error { return c.conn.SetReadDeadline(time.Now().Add(pongWait)) }
	if err := extend(""); err != nil {
		c.hub.logger.Error().Err(err).Uint64("client_id", c.id).Msg("set read deadline")
		return
	}
	c.conn.SetPongHandler(extend)

	for {
		_, payload, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				metrics.WSErrors.WithLabelValues("unexpected_close").Inc()
				c.hub.logger.Warn().Err(err).Uint64("client_id", c.id).Msg("unexpected websocket close")
			}
			return
		}

		var frame inbound
		if err := json.Unmarshal(payload, &frame); err != nil {
			c.reply(Message{Type: MessageTypeError, Data: "frames must be JSON objects"})
			continue
		}
		c.handle(frame)
	}
}

// write sends one frame under the write deadline.
func (c *Client) write(messageType int, payload []byte) error {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteMessage(messageType, payload)
}

// writePump drains the send channel and keeps the connection alive with
// pings. A closed send channel means the hub dropped the client.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				_ = c.write(websocket.CloseMessage, nil)
				return
			}
			payload, err := MarshalMessage(msg)
			if err != nil {
				c.hub.logger.Error().Err(err).Str("message_type", msg.Type).Msg("encode websocket message")
				continue
			}
			if err := c.write(websocket.TextMessage, payload); err != nil {
				metrics.WSErrors.WithLabelValues("write").Inc()
				c.hub.logger.Debug().Err(err).Uint64("client_id", c.id).Msg("websocket write failed")
				return
			}
			metrics.WSMessagesSent.Inc()

		case <-ticker.C:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Start runs the read and write pumps. Register the client with the hub
// first.
func (c *Client) Start() {
	go c.writePump()
	go c.readPump()
}
