// CoalMine-B - Mine Safety Management and Real-Time Monitoring
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Aryam2121/CoalMine-B

// Package gateway is the realtime WebSocket gateway: it authenticates
// connections, tracks facility room membership, dispatches inbound safety
// events, and fans out broadcasts to rooms, users, or all clients.
package gateway

import (
	"context"
	"sort"
	"sync"

	"github.com/Aryam2121/CoalMine-B/internal/logging"
	"github.com/Aryam2121/CoalMine-B/internal/metrics"
)

// outbound pairs a message with its broadcast scope.
type outbound struct {
	target Target
	msg    Message
}

// Hub routes messages between connected clients. One Hub instance is
// created at startup and handed to every component that broadcasts;
// nothing here is process-global.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	byUser  map[string]map[*Client]struct{}

	rooms *Rooms

	register   chan *Client
	unregister chan *Client
	broadcast  chan outbound
}

// NewHub creates a Hub with an empty room registry.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]struct{}),
		byUser:     make(map[string]map[*Client]struct{}),
		rooms:      NewRooms(),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan outbound, 256),
	}
}

// Run processes registrations and broadcasts until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case c := <-h.register:
			h.addClient(c)
		case c := <-h.unregister:
			h.removeClient(c)
		case out := <-h.broadcast:
			h.deliver(out)
		}
	}
}

// Register enqueues c for registration with the hub.
func (h *Hub) Register(c *Client) {
	h.register <- c
}

// Unregister enqueues c for removal. Safe to call multiple times.
func (h *Hub) Unregister(c *Client) {
	h.unregister <- c
}

// JoinRoom adds c to mineID's room.
func (h *Hub) JoinRoom(c *Client, mineID string) {
	h.rooms.Join(c, mineID)
	logging.Debug().
		Str("user_id", c.identity.UserID).
		Str("mine_id", mineID).
		Msg("Client joined facility room")
}

// LeaveRoom removes c from mineID's room.
func (h *Hub) LeaveRoom(c *Client, mineID string) {
	h.rooms.Leave(c, mineID)
	logging.Debug().
		Str("user_id", c.identity.UserID).
		Str("mine_id", mineID).
		Msg("Client left facility room")
}

// Rooms exposes the room registry for read-side queries.
func (h *Hub) Rooms() *Rooms {
	return h.rooms
}

// Emit queues a message for delivery to the given target. Delivery is
// asynchronous; if the broadcast queue is full the message is dropped and
// logged rather than blocking the caller.
func (h *Hub) Emit(target Target, event string, data interface{}) {
	metrics.RecordBroadcast(event, scopeLabel(target.Kind))

	select {
	case h.broadcast <- outbound{target: target, msg: Message{Event: event, Data: data}}:
	default:
		logging.Warn().
			Str("event", event).
			Msg("Broadcast queue full, dropping message")
	}
}

// EmitToFacility broadcasts event to every member of mineID's room.
func (h *Hub) EmitToFacility(mineID, event string, data interface{}) {
	h.Emit(FacilityTarget(mineID), event, data)
}

// EmitToAll broadcasts event to every connected client.
func (h *Hub) EmitToAll(event string, data interface{}) {
	h.Emit(BroadcastTarget(), event, data)
}

// EmitToUser sends event to every connection authenticated as userID.
func (h *Hub) EmitToUser(userID, event string, data interface{}) {
	h.Emit(UserTarget(userID), event, data)
}

// ClientCount returns the number of registered clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) addClient(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[c] = struct{}{}
	conns, ok := h.byUser[c.identity.UserID]
	if !ok {
		conns = make(map[*Client]struct{})
		h.byUser[c.identity.UserID] = conns
	}
	conns[c] = struct{}{}

	metrics.ActiveConnections.Set(float64(len(h.clients)))
	logging.Info().
		Str("user_id", c.identity.UserID).
		Str("role", c.identity.Role).
		Int("total_clients", len(h.clients)).
		Msg("Client connected")
}

func (h *Hub) removeClient(c *Client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	if ok {
		delete(h.clients, c)
		if conns, ok := h.byUser[c.identity.UserID]; ok {
			delete(conns, c)
			if len(conns) == 0 {
				delete(h.byUser, c.identity.UserID)
			}
		}
		c.shutdown()
	}
	total := len(h.clients)
	h.mu.Unlock()

	if !ok {
		return
	}

	left := h.rooms.RemoveClient(c)
	metrics.ActiveConnections.Set(float64(total))
	logging.Info().
		Str("user_id", c.identity.UserID).
		Strs("rooms_left", left).
		Int("total_clients", total).
		Msg("Client disconnected")
}

// deliver fans out one message to its recipients. Recipients are visited
// in connection order so delivery order is deterministic; clients whose
// send queue is full are dropped.
func (h *Hub) deliver(out outbound) {
	recipients := h.recipients(out.target)
	sort.Slice(recipients, func(i, j int) bool {
		return recipients[i].id < recipients[j].id
	})

	var stalled []*Client
	for _, c := range recipients {
		if !c.trySend(out.msg) {
			stalled = append(stalled, c)
		}
	}

	for _, c := range stalled {
		metrics.DroppedClients.Inc()
		logging.Warn().
			Str("user_id", c.identity.UserID).
			Str("event", out.msg.Event).
			Msg("Client send queue full, disconnecting")
		h.removeClient(c)
	}
}

// recipients resolves a target to its current client set.
func (h *Hub) recipients(target Target) []*Client {
	switch target.Kind {
	case TargetFacility:
		return h.rooms.MembersOf(target.ID)
	case TargetUser:
		h.mu.RLock()
		defer h.mu.RUnlock()
		conns := h.byUser[target.ID]
		out := make([]*Client, 0, len(conns))
		for c := range conns {
			out = append(out, c)
		}
		return out
	default:
		h.mu.RLock()
		defer h.mu.RUnlock()
		out := make([]*Client, 0, len(h.clients))
		for c := range h.clients {
			out = append(out, c)
		}
		return out
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		c.shutdown()
		delete(h.clients, c)
		h.rooms.RemoveClient(c)
	}
	h.byUser = make(map[string]map[*Client]struct{})
	metrics.ActiveConnections.Set(0)
}

func scopeLabel(kind TargetKind) string {
	switch kind {
	case TargetFacility:
		return "room"
	case TargetUser:
		return "user"
	default:
		return "all"
	}
}
