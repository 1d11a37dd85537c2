package game

import (
	"context"
	"reflect"
	"sync"
	"testing"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"github.com/scythe504/partyhub-backend/internal"
	"github.com/scythe504/partyhub-backend/internal/config"
	"github.com/scythe504/partyhub-backend/internal/store"
)

// sentMsg is one captured Outbound call. Room is set for broadcasts,
// Target for direct sends.
type sentMsg struct {
	Room    string
	Except  string
	Target  string
	Payload any
}

// recorder substitutes the connection registry as the hub's Outbound so
// handler logic can be exercised without any websocket transport.
type recorder struct {
	mu   sync.Mutex
	sent []sentMsg
}

func (r *recorder) Broadcast(roomCode string, msg any) {
	r.record(sentMsg{Room: roomCode, Payload: msg})
}

func (r *recorder) BroadcastExcept(roomCode, exceptConnID string, msg any) {
	r.record(sentMsg{Room: roomCode, Except: exceptConnID, Payload: msg})
}

func (r *recorder) SendTo(connID string, msg any) {
	r.record(sentMsg{Target: connID, Payload: msg})
}

func (r *recorder) record(m sentMsg) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, m)
}

func (r *recorder) ofType(evt string) []sentMsg {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]sentMsg, 0)
	for _, m := range r.sent {
		if msgType(m.Payload) == evt {
			out = append(out, m)
		}
	}
	return out
}

func (r *recorder) lastOfType(evt string) (sentMsg, bool) {
	all := r.ofType(evt)
	if len(all) == 0 {
		return sentMsg{}, false
	}
	return all[len(all)-1], true
}

func (r *recorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = nil
}

// msgType pulls the envelope type out of any Message[T] value.
func msgType(payload any) string {
	v := reflect.ValueOf(payload)
	if v.Kind() != reflect.Struct {
		return ""
	}
	f := v.FieldByName("Type")
	if !f.IsValid() || f.Kind() != reflect.String {
		return ""
	}
	return f.String()
}

func newTestHub(t *testing.T) (*Hub, *clockwork.FakeClock, *recorder, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemoryStore()
	fc := clockwork.NewFakeClock()
	h := NewHub(st, fc, config.DefaultModes())
	rec := &recorder{}
	h.out = rec
	return h, fc, rec, st
}

// seedRoom creates a waiting room with the mode's default settings.
func seedRoom(t *testing.T, h *Hub, st *store.MemoryStore, code string, mode internal.GameMode) *internal.Room {
	t.Helper()
	settings := config.DefaultModes()[mode]
	room := &internal.Room{
		Code:                 code,
		Name:                 "test room",
		Mode:                 mode,
		Status:               internal.StatusWaiting,
		IsPublic:             true,
		MaxPlayers:           settings.MaxPlayers,
		TotalRounds:          settings.TotalRounds,
		RoundDurationSeconds: settings.RoundSeconds,
		CreatedAt:            h.clock.Now(),
	}
	require.NoError(t, st.Create(context.Background(), room))
	return room
}

func mutateRoom(t *testing.T, st *store.MemoryStore, code string, fn func(room *internal.Room)) {
	t.Helper()
	room, err := st.Find(context.Background(), code)
	require.NoError(t, err)
	fn(room)
	require.NoError(t, st.Save(context.Background(), room))
}

func findRoom(t *testing.T, st *store.MemoryStore, code string) *internal.Room {
	t.Helper()
	room, err := st.Find(context.Background(), code)
	require.NoError(t, err)
	return room
}

// joinPlayer runs the join handler for a connection with no real socket.
func joinPlayer(t *testing.T, h *Hub, code, connID, identity string) *Client {
	t.Helper()
	c := NewClient(connID, nil)
	h.HandleJoin(context.Background(), c, internal.JoinData{RoomCode: code, Identity: identity})
	return c
}

// lastErrorTo returns the most recent error event sent to the connection.
func lastErrorTo(rec *recorder, connID string) (internal.ErrorData, bool) {
	all := rec.ofType(internal.EvtError)
	for i := len(all) - 1; i >= 0; i-- {
		if all[i].Target != connID {
			continue
		}
		env, ok := all[i].Payload.(internal.Message[internal.ErrorData])
		if !ok {
			continue
		}
		return env.Data, true
	}
	return internal.ErrorData{}, false
}
