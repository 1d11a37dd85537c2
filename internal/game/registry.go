package game

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/scythe504/partyhub-backend/internal"
)

// Outbound is where handlers emit events. The production implementation is
// the ConnectionRegistry; tests substitute a recorder so orchestrator logic
// runs without any transport.
type Outbound interface {
	Broadcast(roomCode string, msg any)
	BroadcastExcept(roomCode, exceptConnID string, msg any)
	SendTo(connID string, msg any)
}

// ConnectionRegistry maps a stable identity to exactly one live connection
// and indexes connections by room for broadcasting.
type ConnectionRegistry struct {
	mu         sync.RWMutex
	byIdentity map[string]*Client
	byConn     map[string]*Client
	rooms      map[string]map[string]*Client
}

func NewConnectionRegistry() *ConnectionRegistry {
	return &ConnectionRegistry{
		byIdentity: make(map[string]*Client),
		byConn:     make(map[string]*Client),
		rooms:      make(map[string]map[string]*Client),
	}
}

// Register installs the client as the single live connection for its
// identity. An older connection for the same identity is notified, closed
// and dropped from every index before the new mapping is visible; it is
// returned so the caller can settle whatever room it was bound to.
func (r *ConnectionRegistry) Register(client *Client) *Client {
	r.mu.Lock()
	old := r.byIdentity[client.Identity]
	if old != nil && old.ID != client.ID {
		old.markSuperseded()
		delete(r.byConn, old.ID)
		if old.RoomCode != "" {
			delete(r.rooms[old.RoomCode], old.ID)
		}
	} else {
		old = nil
	}
	r.byIdentity[client.Identity] = client
	r.byConn[client.ID] = client
	r.mu.Unlock()

	if old != nil {
		log.Info().
			Str("identity", client.Identity).
			Str("old_conn", old.ID).
			Str("new_conn", client.ID).
			Msg("superseding stale connection")
		_ = old.SendJSON(internal.Message[internal.ErrorData]{
			Type: internal.EvtSessionSuperseded,
			Data: internal.ErrorData{
				Code:    "superseded",
				Message: "your identity signed in from another connection",
			},
		})
		old.Close()
	}
	return old
}

// Bind adds the client to a room's broadcast set.
func (r *ConnectionRegistry) Bind(client *Client, roomCode string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if client.RoomCode != "" && client.RoomCode != roomCode {
		delete(r.rooms[client.RoomCode], client.ID)
	}
	client.RoomCode = roomCode
	set, ok := r.rooms[roomCode]
	if !ok {
		set = make(map[string]*Client)
		r.rooms[roomCode] = set
	}
	set[client.ID] = client
}

// Unregister removes the client from every index, but only while it is
// still the live connection for its identity.
func (r *ConnectionRegistry) Unregister(client *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cur := r.byIdentity[client.Identity]; cur != nil && cur.ID == client.ID {
		delete(r.byIdentity, client.Identity)
	}
	delete(r.byConn, client.ID)
	if client.RoomCode != "" {
		delete(r.rooms[client.RoomCode], client.ID)
		if len(r.rooms[client.RoomCode]) == 0 {
			delete(r.rooms, client.RoomCode)
		}
	}
}

func (r *ConnectionRegistry) ClientByConn(connID string) *Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byConn[connID]
}

func (r *ConnectionRegistry) ClientByIdentity(identity string) *Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byIdentity[identity]
}

// snapshotRoom copies the broadcast set so writes happen with no registry
// lock held.
func (r *ConnectionRegistry) snapshotRoom(roomCode string) []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Client, 0, len(r.rooms[roomCode]))
	for _, c := range r.rooms[roomCode] {
		out = append(out, c)
	}
	return out
}

func (r *ConnectionRegistry) Broadcast(roomCode string, msg any) {
	r.BroadcastExcept(roomCode, "", msg)
}

func (r *ConnectionRegistry) BroadcastExcept(roomCode, exceptConnID string, msg any) {
	for _, c := range r.snapshotRoom(roomCode) {
		if c.ID == exceptConnID {
			continue
		}
		if err := c.SendJSON(msg); err != nil {
			log.Warn().Err(err).
				Str("room", roomCode).
				Str("conn", c.ID).
				Msg("broadcast write failed")
		}
	}
}

func (r *ConnectionRegistry) SendTo(connID string, msg any) {
	c := r.ClientByConn(connID)
	if c == nil {
		return
	}
	if err := c.SendJSON(msg); err != nil {
		log.Warn().Err(err).Str("conn", connID).Msg("direct write failed")
	}
}
