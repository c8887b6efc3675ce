// CoalMine-B - Mine Safety Management and Real-Time Monitoring
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Aryam2121/CoalMine-B

package gateway

import (
	"sync"

	"github.com/Aryam2121/CoalMine-B/internal/metrics"
)

// Rooms tracks which clients are joined to which facility rooms. Join and
// Leave are idempotent; RemoveClient clears every membership of a
// disconnecting client in one call.
type Rooms struct {
	mu         sync.RWMutex
	byFacility map[string]map[*Client]struct{}
	byClient   map[*Client]map[string]struct{}
}

// NewRooms creates an empty room registry.
func NewRooms() *Rooms {
	return &Rooms{
		byFacility: make(map[string]map[*Client]struct{}),
		byClient:   make(map[*Client]map[string]struct{}),
	}
}

// Join adds c to the room for mineID. Joining a room the client is already
// a member of is a no-op.
func (r *Rooms) Join(c *Client, mineID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	members, ok := r.byFacility[mineID]
	if !ok {
		members = make(map[*Client]struct{})
		r.byFacility[mineID] = members
	}
	if _, ok := members[c]; ok {
		return
	}
	members[c] = struct{}{}

	joined, ok := r.byClient[c]
	if !ok {
		joined = make(map[string]struct{})
		r.byClient[c] = joined
	}
	joined[mineID] = struct{}{}

	metrics.RoomMembers.WithLabelValues(mineID).Set(float64(len(members)))
}

// Leave removes c from the room for mineID. Leaving a room the client is
// not a member of is a no-op.
func (r *Rooms) Leave(c *Client, mineID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.leaveLocked(c, mineID)
}

// RemoveClient removes c from every room and returns the facility ids it
// was a member of. Called on disconnect.
func (r *Rooms) RemoveClient(c *Client) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	joined := r.byClient[c]
	out := make([]string, 0, len(joined))
	for mineID := range joined {
		out = append(out, mineID)
	}
	for _, mineID := range out {
		r.leaveLocked(c, mineID)
	}
	return out
}

// leaveLocked removes one membership. Caller holds r.mu.
func (r *Rooms) leaveLocked(c *Client, mineID string) {
	members, ok := r.byFacility[mineID]
	if !ok {
		return
	}
	if _, ok := members[c]; !ok {
		return
	}
	delete(members, c)
	if len(members) == 0 {
		delete(r.byFacility, mineID)
	}

	if joined, ok := r.byClient[c]; ok {
		delete(joined, mineID)
		if len(joined) == 0 {
			delete(r.byClient, c)
		}
	}

	metrics.RoomMembers.WithLabelValues(mineID).Set(float64(len(members)))
}

// MembersOf returns the clients currently joined to mineID's room.
func (r *Rooms) MembersOf(mineID string) []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members := r.byFacility[mineID]
	out := make([]*Client, 0, len(members))
	for c := range members {
		out = append(out, c)
	}
	return out
}

// Memberships returns the facility ids c is currently joined to.
func (r *Rooms) Memberships(c *Client) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	joined := r.byClient[c]
	out := make([]string, 0, len(joined))
	for mineID := range joined {
		out = append(out, mineID)
	}
	return out
}

// MemberCount returns the size of mineID's room.
func (r *Rooms) MemberCount(mineID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byFacility[mineID])
}
