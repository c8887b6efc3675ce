// CoalMine-B - Mine Safety Management and Real-Time Monitoring
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Aryam2121/CoalMine-B

package gateway

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/Aryam2121/CoalMine-B/internal/auth"
	"github.com/Aryam2121/CoalMine-B/internal/config"
	"github.com/Aryam2121/CoalMine-B/internal/logging"
	"github.com/Aryam2121/CoalMine-B/internal/metrics"
)

const (
	// writeWait is the deadline for one outbound write.
	writeWait = 10 * time.Second

	// pongWait is how long a connection may stay silent before it is
	// considered dead. Pings go out at pingPeriod to keep it alive.
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// clientSeq hands out monotonically increasing client ids, used for
// deterministic broadcast ordering.
var clientSeq atomic.Uint64

// Handler consumes inbound events from a client.
type Handler interface {
	Handle(ctx context.Context, c *Client, env Envelope)
}

// Client is one authenticated WebSocket connection.
type Client struct {
	id       uint64
	hub      *Hub
	conn     *websocket.Conn
	send     chan Message
	identity auth.Identity
	limiter  *rate.Limiter
	handler  Handler

	// mu guards closed. Once closed is set the send channel accepts no
	// more messages and done is closed to stop the write pump. The send
	// channel itself is never closed; the read pump may still be
	// dispatching an event for this client after the hub removes it.
	mu     sync.Mutex
	closed bool
	done   chan struct{}

	maxMessageSize int64
}

// NewClient wraps an upgraded connection. The caller must Register the
// client with the hub and then Start it.
func (h *Hub) NewClient(conn *websocket.Conn, identity auth.Identity, cfg config.GatewayConfig, handler Handler) *Client {
	return &Client{
		id:             clientSeq.Add(1),
		hub:            h,
		conn:           conn,
		send:           make(chan Message, cfg.SendBuffer),
		identity:       identity,
		limiter:        rate.NewLimiter(rate.Limit(cfg.EventRate), cfg.EventBurst),
		handler:        handler,
		done:           make(chan struct{}),
		maxMessageSize: cfg.MaxMessageSize,
	}
}

// Identity returns the authenticated caller.
func (c *Client) Identity() auth.Identity {
	return c.identity
}

// Start launches the read and write pumps. It returns immediately.
func (c *Client) Start(ctx context.Context) {
	go c.writePump()
	go c.readPump(ctx)
}

// Reply queues a message for this connection only. Replies to a client
// the hub has already removed are discarded.
func (c *Client) Reply(event string, data interface{}) {
	if !c.trySend(Message{Event: event, Data: data}) {
		logging.Warn().
			Str("user_id", c.identity.UserID).
			Str("event", event).
			Msg("Reply dropped")
	}
}

// ReplyError rejects an inbound event back to the sender.
func (c *Client) ReplyError(inboundEvent, message string) {
	c.Reply(EventError, ErrorData{Event: inboundEvent, Message: message})
}

// trySend queues msg for the write pump. It reports false if the client
// is shut down or its queue is full.
func (c *Client) trySend(msg Message) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// shutdown marks the client closed and signals the write pump to exit.
// Idempotent; called by the hub on removal.
func (c *Client) shutdown() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.mu.Unlock()
	close(c.done)
}

// readPump reads frames off the connection, enforces the per-connection
// rate limit, and hands decoded envelopes to the handler. Events from one
// connection are dispatched in arrival order.
func (c *Client) readPump(ctx context.Context) {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(c.maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logging.Warn().
					Err(err).
					Str("user_id", c.identity.UserID).
					Msg("WebSocket read error")
			}
			return
		}

		if !c.limiter.Allow() {
			metrics.RecordInboundEvent("unknown", "rate_limited")
			c.ReplyError("", "rate limit exceeded")
			continue
		}

		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			metrics.RecordInboundEvent("unknown", "validation_error")
			c.ReplyError("", "malformed message")
			continue
		}

		c.handler.Handle(ctx, c, env)
	}
}

// writePump drains the send queue to the connection and keeps it alive
// with pings. It exits when the hub shuts the client down.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			data, err := json.Marshal(msg)
			if err != nil {
				logging.Error().
					Err(err).
					Str("event", msg.Event).
					Msg("Failed to marshal outbound message")
				continue
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
