package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scythe504/partyhub-backend/internal"
	"github.com/scythe504/partyhub-backend/internal/config"
	"github.com/scythe504/partyhub-backend/internal/game"
	"github.com/scythe504/partyhub-backend/internal/store"
)

func newTestServer(t *testing.T) (http.Handler, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemoryStore()
	modes := config.DefaultModes()
	hub := game.NewHub(st, clockwork.NewRealClock(), modes)
	s := &Server{port: 0, hub: hub, store: st, modes: modes}
	return s.RegisterRoutes(), st
}

func decodeResponse(t *testing.T, rr *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	return resp
}

func TestHealthHandler(t *testing.T) {
	handler, _ := newTestServer(t)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
	resp := decodeResponse(t, rr)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCreateRoomAppliesModeDefaults(t *testing.T) {
	handler, st := newTestServer(t)
	body := `{"name":"game night","mode":"drawing","is_public":true}`
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/rooms", strings.NewReader(body)))

	require.Equal(t, http.StatusCreated, rr.Code)
	resp := decodeResponse(t, rr)
	data := resp.Data.(map[string]any)
	code := data["code"].(string)
	assert.Len(t, code, roomCodeLength)
	assert.Equal(t, "game night", data["name"])
	assert.EqualValues(t, 8, data["max_players"])
	assert.EqualValues(t, 3, data["total_rounds"])
	assert.EqualValues(t, 80, data["round_duration_seconds"])

	room, err := st.Find(context.Background(), code)
	require.NoError(t, err)
	assert.Equal(t, internal.StatusWaiting, room.Status)
	assert.True(t, room.IsPublic)
	assert.Empty(t, room.Players)
}

func TestCreateRoomHonorsOverrides(t *testing.T) {
	handler, st := newTestServer(t)
	body := `{"mode":"drawing","total_rounds":7,"round_duration_seconds":45,"max_players":4}`
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/rooms", strings.NewReader(body)))

	require.Equal(t, http.StatusCreated, rr.Code)
	resp := decodeResponse(t, rr)
	code := resp.Data.(map[string]any)["code"].(string)

	room, err := st.Find(context.Background(), code)
	require.NoError(t, err)
	assert.Equal(t, 7, room.TotalRounds)
	assert.Equal(t, 45, room.RoundDurationSeconds)
	assert.Equal(t, 4, room.MaxPlayers)
	assert.Equal(t, code, room.Name, "unnamed rooms fall back to their code")
}

func TestCreateRoomEndlessModeIgnoresRoundCap(t *testing.T) {
	handler, st := newTestServer(t)
	body := `{"mode":"truth_or_dare","total_rounds":5}`
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/rooms", strings.NewReader(body)))

	require.Equal(t, http.StatusCreated, rr.Code)
	resp := decodeResponse(t, rr)
	code := resp.Data.(map[string]any)["code"].(string)

	room, err := st.Find(context.Background(), code)
	require.NoError(t, err)
	assert.Zero(t, room.TotalRounds)
}

func TestCreateRoomRejectsBadInput(t *testing.T) {
	handler, _ := newTestServer(t)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/rooms", strings.NewReader("not json")))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/rooms", strings.NewReader(`{"mode":"charades"}`)))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestGetRoomsToJoin(t *testing.T) {
	handler, st := newTestServer(t)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/rooms-available", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code, "no rooms yet")

	require.NoError(t, st.Create(context.Background(), &internal.Room{
		Code:       "AAAA",
		Name:       "open room",
		Mode:       internal.ModeDrawing,
		Status:     internal.StatusWaiting,
		IsPublic:   true,
		MaxPlayers: 8,
	}))
	require.NoError(t, st.Create(context.Background(), &internal.Room{
		Code:       "PRIV",
		Mode:       internal.ModeDrawing,
		Status:     internal.StatusWaiting,
		IsPublic:   false,
		MaxPlayers: 8,
	}))

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/rooms-available", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	resp := decodeResponse(t, rr)
	rooms := resp.Data.([]any)
	require.Len(t, rooms, 1)
	assert.Equal(t, "AAAA", rooms[0].(map[string]any)["code"])
}

func TestOptionsPreflights(t *testing.T) {
	handler, _ := newTestServer(t)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodOptions, "/rooms", nil))
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
}
