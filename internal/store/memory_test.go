package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scythe504/partyhub-backend/internal"
)

func waitingRoom(code string) *internal.Room {
	return &internal.Room{
		Code:       code,
		Mode:       internal.ModeDrawing,
		Status:     internal.StatusWaiting,
		IsPublic:   true,
		MaxPlayers: 8,
		Players: []*internal.Player{
			{ConnectionID: "c1", Identity: "amy", Connected: true},
		},
	}
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Create(ctx, waitingRoom("AAAA")))
	assert.ErrorIs(t, s.Create(ctx, waitingRoom("AAAA")), ErrAlreadyExists)

	room, err := s.Find(ctx, "AAAA")
	require.NoError(t, err)
	assert.Equal(t, "AAAA", room.Code)

	room.Status = internal.StatusPlaying
	require.NoError(t, s.Save(ctx, room))
	saved, err := s.Find(ctx, "AAAA")
	require.NoError(t, err)
	assert.Equal(t, internal.StatusPlaying, saved.Status)

	require.NoError(t, s.Delete(ctx, "AAAA"))
	_, err = s.Find(ctx, "AAAA")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreSaveUnknownRoom(t *testing.T) {
	s := NewMemoryStore()
	assert.ErrorIs(t, s.Save(context.Background(), waitingRoom("NOPE")), ErrNotFound)
}

func TestMemoryStoreReturnsDetachedCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.Create(ctx, waitingRoom("AAAA")))

	first, err := s.Find(ctx, "AAAA")
	require.NoError(t, err)
	first.Players[0].Score = 999
	first.Status = internal.StatusFinished

	// Mutations on the returned room must not leak into the store without
	// an explicit Save.
	second, err := s.Find(ctx, "AAAA")
	require.NoError(t, err)
	assert.Equal(t, 0, second.Players[0].Score)
	assert.Equal(t, internal.StatusWaiting, second.Status)
}

func TestMemoryStoreFindWaitingPublic(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	open := waitingRoom("OPEN")
	require.NoError(t, s.Create(ctx, open))

	private := waitingRoom("PRIV")
	private.IsPublic = false
	require.NoError(t, s.Create(ctx, private))

	playing := waitingRoom("PLAY")
	playing.Status = internal.StatusPlaying
	require.NoError(t, s.Create(ctx, playing))

	full := waitingRoom("FULL")
	full.MaxPlayers = 1
	require.NoError(t, s.Create(ctx, full))

	rooms, err := s.FindWaitingPublic(ctx)
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, "OPEN", rooms[0].Code)
}
