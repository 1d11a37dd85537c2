package game

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlaybackAnchorPositionAt(t *testing.T) {
	playing := &PlaybackAnchor{IsPlaying: true, PositionSeconds: 10, AnchoredAtEpochMs: 1000}
	assert.InDelta(t, 15.0, playing.PositionAt(6000), 1e-9)

	paused := &PlaybackAnchor{IsPlaying: false, PositionSeconds: 10, AnchoredAtEpochMs: 1000}
	assert.InDelta(t, 10.0, paused.PositionAt(99000), 1e-9)
}

func TestNextHintNeverRevealsLastUnit(t *testing.T) {
	rt := &RoomRuntime{}

	n, ok := rt.nextHint(3)
	require.True(t, ok)
	assert.Equal(t, 1, n)

	n, ok = rt.nextHint(3)
	require.True(t, ok)
	assert.Equal(t, 2, n)

	// Third claim would expose the whole word.
	n, ok = rt.nextHint(3)
	assert.False(t, ok)
	assert.Equal(t, 2, n)
}

func TestNextHintSingleUnitContent(t *testing.T) {
	rt := &RoomRuntime{}
	_, ok := rt.nextHint(1)
	assert.False(t, ok)
}

func TestScheduleTransitionGuardsDoubleFire(t *testing.T) {
	fc := clockwork.NewFakeClock()
	rt := &RoomRuntime{}
	fired := make(chan struct{}, 2)

	require.True(t, rt.scheduleTransition(fc, time.Second, func() { fired <- struct{}{} }))
	assert.False(t, rt.scheduleTransition(fc, time.Second, func() { fired <- struct{}{} }),
		"second schedule while one is pending must be rejected")
	assert.True(t, rt.transitionPending())

	fc.Advance(time.Second)
	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("transition never fired")
	}

	// After firing the slot is free again.
	assert.Eventually(t, func() bool {
		return !rt.transitionPending()
	}, time.Second, 10*time.Millisecond)
	assert.True(t, rt.scheduleTransition(fc, time.Second, func() { fired <- struct{}{} }))
}

func TestClearTransitionDropsPendingAdvance(t *testing.T) {
	fc := clockwork.NewFakeClock()
	rt := &RoomRuntime{}
	fired := make(chan struct{}, 1)

	require.True(t, rt.scheduleTransition(fc, time.Second, func() { fired <- struct{}{} }))
	rt.clearTransition()
	assert.False(t, rt.transitionPending())

	fc.Advance(time.Second)
	select {
	case <-fired:
		t.Fatal("cleared transition must not fire")
	case <-time.After(100 * time.Millisecond):
	}

	// The slot is free for the next round's end.
	assert.True(t, rt.scheduleTransition(fc, time.Second, func() { fired <- struct{}{} }))

	// Clearing an empty slot is a no-op.
	rt.clearTransition()
	rt.clearTransition()
	assert.False(t, rt.transitionPending())
}

func TestPendingTransferLifecycle(t *testing.T) {
	fc := clockwork.NewFakeClock()
	rt := &RoomRuntime{}

	p := &PendingHostTransfer{RequesterConn: "req", DeadlineEpochMs: 10_000}
	require.True(t, rt.tryPendingTransfer(fc, p, 10*time.Second, func() {}))
	assert.False(t, rt.tryPendingTransfer(fc, p, 10*time.Second, func() {}),
		"only one transfer may be pending")
	assert.Equal(t, p, rt.pendingTransfer())

	assert.False(t, rt.takePendingIfRequester("someone-else"))
	assert.NotNil(t, rt.pendingTransfer(), "stale take must not consume the pending transfer")

	assert.True(t, rt.takePendingIfRequester("req"))
	assert.Nil(t, rt.pendingTransfer())

	// Cancel on an empty slot reports false.
	assert.False(t, rt.cancelPendingTransfer())
	require.True(t, rt.tryPendingTransfer(fc, p, 10*time.Second, func() {}))
	assert.True(t, rt.cancelPendingTransfer())
	assert.Nil(t, rt.pendingTransfer())
}

func TestTeardownClearsEverything(t *testing.T) {
	fc := clockwork.NewFakeClock()
	rr := NewRuntimeRegistry()
	rt := rr.Get("ROOM")
	assert.Same(t, rt, rr.Get("ROOM"))
	assert.Same(t, rt, rr.Peek("ROOM"))

	fired := false
	rt.scheduleTransition(fc, time.Second, func() { fired = true })
	rt.tryPendingTransfer(fc, &PendingHostTransfer{RequesterConn: "x"}, time.Second, func() { fired = true })
	rt.setAnchor(&PlaybackAnchor{VideoURL: "https://example.com/v"})

	rr.Teardown("ROOM")
	assert.Nil(t, rr.Peek("ROOM"))
	assert.Nil(t, rt.getAnchor())
	assert.Nil(t, rt.pendingTransfer())

	fc.Advance(time.Minute)
	assert.False(t, fired, "torn-down timers must not fire")
}
