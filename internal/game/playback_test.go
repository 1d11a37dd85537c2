package game

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scythe504/partyhub-backend/internal"
	"github.com/scythe504/partyhub-backend/internal/store"
)

func startWatchRoom(t *testing.T, h *Hub, st *store.MemoryStore) (host, guest *Client) {
	t.Helper()
	seedRoom(t, h, st, "WWWW", internal.ModeWatchTogether)
	host = joinPlayer(t, h, "WWWW", "c1", "amy")
	guest = joinPlayer(t, h, "WWWW", "c2", "ben")
	return host, guest
}

func lastWatchState(t *testing.T, rec *recorder) internal.WatchStateData {
	t.Helper()
	m, ok := rec.lastOfType(internal.EvtWatchState)
	require.True(t, ok)
	return m.Payload.(internal.Message[internal.WatchStateData]).Data
}

func TestSetVideoValidatesURL(t *testing.T) {
	ctx := context.Background()
	h, _, rec, st := newTestHub(t)
	host, _ := startWatchRoom(t, h, st)
	rec.reset()

	for _, bad := range []string{"", "notaurl", "ftp://example.com/v", "http://"} {
		h.HandleSetVideo(ctx, host, bad)
		errData, ok := lastErrorTo(rec, host.ID)
		require.True(t, ok, "url %q must be rejected", bad)
		assert.Equal(t, "bad_request", errData.Code)
	}
	assert.Empty(t, rec.ofType(internal.EvtWatchState))
}

func TestSetVideoResetsAnchor(t *testing.T) {
	ctx := context.Background()
	h, _, rec, st := newTestHub(t)
	host, _ := startWatchRoom(t, h, st)
	rec.reset()

	h.HandleSetVideo(ctx, host, "https://example.com/v/1")

	state := lastWatchState(t, rec)
	assert.Equal(t, "https://example.com/v/1", state.URL)
	assert.False(t, state.IsPlaying, "a new video starts paused")
	assert.Zero(t, state.PositionSeconds)
}

func TestPlayPauseExtrapolatesPosition(t *testing.T) {
	ctx := context.Background()
	h, fc, rec, st := newTestHub(t)
	host, _ := startWatchRoom(t, h, st)
	h.HandleSetVideo(ctx, host, "https://example.com/v/1")

	h.HandlePlayState(ctx, host, true)
	state := lastWatchState(t, rec)
	assert.True(t, state.IsPlaying)
	assert.Zero(t, state.PositionSeconds)

	// Five seconds of wall time pass, then the host pauses: the position
	// freezes at the extrapolated instant.
	fc.Advance(5 * time.Second)
	h.HandlePlayState(ctx, host, false)
	state = lastWatchState(t, rec)
	assert.False(t, state.IsPlaying)
	assert.InDelta(t, 5.0, state.PositionSeconds, 1e-9)

	// Time passing while paused changes nothing.
	fc.Advance(30 * time.Second)
	h.HandlePlayState(ctx, host, true)
	state = lastWatchState(t, rec)
	assert.InDelta(t, 5.0, state.PositionSeconds, 1e-9)
}

func TestSeekClampsAndPreservesPlayState(t *testing.T) {
	ctx := context.Background()
	h, _, rec, st := newTestHub(t)
	host, _ := startWatchRoom(t, h, st)
	h.HandleSetVideo(ctx, host, "https://example.com/v/1")
	h.HandlePlayState(ctx, host, true)

	h.HandleSeek(ctx, host, 42.5)
	state := lastWatchState(t, rec)
	assert.InDelta(t, 42.5, state.PositionSeconds, 1e-9)
	assert.True(t, state.IsPlaying, "seeking does not pause")

	h.HandleSeek(ctx, host, -7)
	state = lastWatchState(t, rec)
	assert.Zero(t, state.PositionSeconds)
}

func TestPlaybackIsHostOnly(t *testing.T) {
	ctx := context.Background()
	h, _, rec, st := newTestHub(t)
	host, guest := startWatchRoom(t, h, st)
	h.HandleSetVideo(ctx, host, "https://example.com/v/1")
	rec.reset()

	h.HandlePlayState(ctx, guest, true)
	errData, ok := lastErrorTo(rec, guest.ID)
	require.True(t, ok)
	assert.Equal(t, "not_host", errData.Code)
	assert.Empty(t, rec.ofType(internal.EvtWatchState))
}

func TestPlaybackRequiresWatchRoom(t *testing.T) {
	ctx := context.Background()
	h, _, rec, st := newTestHub(t)
	seedRoom(t, h, st, "AAAA", internal.ModeDrawing)
	host := joinPlayer(t, h, "AAAA", "c1", "amy")

	h.HandleSetVideo(ctx, host, "https://example.com/v/1")
	errData, ok := lastErrorTo(rec, host.ID)
	require.True(t, ok)
	assert.Equal(t, "bad_request", errData.Code)
}

func TestPlayBeforeSetVideoRejected(t *testing.T) {
	ctx := context.Background()
	h, _, rec, st := newTestHub(t)
	host, _ := startWatchRoom(t, h, st)

	h.HandlePlayState(ctx, host, true)
	errData, ok := lastErrorTo(rec, host.ID)
	require.True(t, ok)
	assert.Equal(t, "bad_request", errData.Code)
}

func TestJoinerReceivesExtrapolatedWatchState(t *testing.T) {
	ctx := context.Background()
	h, fc, rec, st := newTestHub(t)
	host, _ := startWatchRoom(t, h, st)
	h.HandleSetVideo(ctx, host, "https://example.com/v/1")
	h.HandlePlayState(ctx, host, true)

	fc.Advance(7 * time.Second)
	rec.reset()
	cal := joinPlayer(t, h, "WWWW", "c3", "cal")

	states := rec.ofType(internal.EvtWatchState)
	require.Len(t, states, 1)
	assert.Equal(t, cal.ID, states[0].Target, "catch-up state goes to the joiner only")
	data := states[0].Payload.(internal.Message[internal.WatchStateData]).Data
	assert.Equal(t, "https://example.com/v/1", data.URL)
	assert.True(t, data.IsPlaying)
	assert.InDelta(t, 7.0, data.PositionSeconds, 1e-9)
}
