package game

import (
	"context"
	"errors"
	"sync"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/scythe504/partyhub-backend/internal"
	"github.com/scythe504/partyhub-backend/internal/config"
	"github.com/scythe504/partyhub-backend/internal/store"
)

var (
	errRoomDeleted = errors.New("room deleted")

	errNotHost          = errors.New("only the host may do that")
	errNotActor         = errors.New("only the current actor may do that")
	errRoomFull         = errors.New("room is full")
	errNotEnoughPlayers = errors.New("not enough players")
	errRoomNotPlaying   = errors.New("room is not in a round")
)

// Hub wires the store, the runtime registry and the connection registry
// together and serializes all mutating handlers per room code.
type Hub struct {
	store    store.RoomStore
	runtime  *RuntimeRegistry
	registry *ConnectionRegistry
	out      Outbound
	clock    clockwork.Clock
	modes    config.Modes
	prompts  PromptSource

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

func NewHub(st store.RoomStore, clock clockwork.Clock, modes config.Modes) *Hub {
	registry := NewConnectionRegistry()
	return &Hub{
		store:    st,
		runtime:  NewRuntimeRegistry(),
		registry: registry,
		out:      registry,
		clock:    clock,
		modes:    modes,
		prompts:  StaticPrompts{},
		locks:    make(map[string]*sync.Mutex),
	}
}

func (h *Hub) Registry() *ConnectionRegistry { return h.registry }

func (h *Hub) lockFor(code string) *sync.Mutex {
	h.locksMu.Lock()
	defer h.locksMu.Unlock()
	mu, ok := h.locks[code]
	if !ok {
		mu = &sync.Mutex{}
		h.locks[code] = mu
	}
	return mu
}

func (h *Hub) dropLock(code string) {
	h.locksMu.Lock()
	defer h.locksMu.Unlock()
	delete(h.locks, code)
}

// withRoom runs fn against the stored room under the room's mutex and
// saves the result. Two handlers for the same room can therefore never
// interleave between the read and the write. fn returning an error skips
// the save; errRoomDeleted additionally deletes the room and tears down
// its runtime state.
func (h *Hub) withRoom(ctx context.Context, code string, fn func(room *internal.Room) error) error {
	mu := h.lockFor(code)
	mu.Lock()
	defer mu.Unlock()

	room, err := h.store.Find(ctx, code)
	if err != nil {
		return err
	}
	err = fn(room)
	if errors.Is(err, errRoomDeleted) {
		if derr := h.store.Delete(ctx, code); derr != nil {
			return derr
		}
		h.runtime.Teardown(code)
		h.dropLock(code)
		log.Info().Str("room", code).Msg("room emptied, deleted with runtime state")
		return nil
	}
	if err != nil {
		return err
	}
	return h.store.Save(ctx, room)
}

// sendError reports a validation or persistence failure to the offending
// connection only; room state is never touched on these paths.
func (h *Hub) sendError(connID, code, message string) {
	h.out.SendTo(connID, internal.Message[internal.ErrorData]{
		Type: internal.EvtError,
		Data: internal.ErrorData{Code: code, Message: message},
	})
}

// reportErr converts a handler error into a targeted error event.
func (h *Hub) reportErr(connID string, err error) {
	if err == nil {
		return
	}
	code := "bad_request"
	switch {
	case errors.Is(err, store.ErrNotFound):
		code = "room_not_found"
	case errors.Is(err, errNotHost):
		code = "not_host"
	case errors.Is(err, errNotActor):
		code = "not_actor"
	case errors.Is(err, errRoomFull):
		code = "room_full"
	case errors.Is(err, errNotEnoughPlayers):
		code = "not_enough_players"
	case errors.Is(err, errRoomNotPlaying):
		code = "not_playing"
	}
	h.sendError(connID, code, err.Error())
}

func (h *Hub) modeSettings(mode internal.GameMode) config.ModeSettings {
	if s, ok := h.modes[mode]; ok {
		return s
	}
	return config.DefaultModes()[internal.ModeDrawing]
}

func (h *Hub) nowMs() int64 {
	return h.clock.Now().UnixMilli()
}
