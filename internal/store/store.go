package store

import (
	"context"
	"errors"

	"github.com/scythe504/partyhub-backend/internal"
)

var (
	ErrNotFound      = errors.New("room not found")
	ErrAlreadyExists = errors.New("room already exists")
)

// RoomStore is the single source of truth for room state between handler
// invocations. Implementations must return detached copies: a room obtained
// from Find is only written back by an explicit Save.
type RoomStore interface {
	Find(ctx context.Context, code string) (*internal.Room, error)
	Save(ctx context.Context, room *internal.Room) error
	Create(ctx context.Context, room *internal.Room) error
	Delete(ctx context.Context, code string) error
	FindWaitingPublic(ctx context.Context) ([]*internal.Room, error)
}
