package store

import (
	"context"
	"sync"

	"github.com/scythe504/partyhub-backend/internal"
)

// MemoryStore keeps rooms in a map guarded by a RWMutex. Rooms are deep
// copied on the way in and out so it behaves like a real persistence
// round-trip rather than shared mutable state.
type MemoryStore struct {
	mu    sync.RWMutex
	rooms map[string]*internal.Room
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rooms: make(map[string]*internal.Room)}
}

func (s *MemoryStore) Find(_ context.Context, code string) (*internal.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.rooms[code]
	if !ok {
		return nil, ErrNotFound
	}
	return room.Clone(), nil
}

func (s *MemoryStore) Save(_ context.Context, room *internal.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rooms[room.Code]; !ok {
		return ErrNotFound
	}
	s.rooms[room.Code] = room.Clone()
	return nil
}

func (s *MemoryStore) Create(_ context.Context, room *internal.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rooms[room.Code]; ok {
		return ErrAlreadyExists
	}
	s.rooms[room.Code] = room.Clone()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rooms, code)
	return nil
}

func (s *MemoryStore) FindWaitingPublic(_ context.Context) ([]*internal.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*internal.Room, 0)
	for _, room := range s.rooms {
		if room.Status != internal.StatusWaiting || !room.IsPublic {
			continue
		}
		if len(room.Players) >= room.MaxPlayers {
			continue
		}
		out = append(out, room.Clone())
	}
	return out, nil
}
