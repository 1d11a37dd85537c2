package game

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// PlaybackAnchor is the timestamped snapshot a watch-together room derives
// its current position from. It is replaced wholesale on every mutation and
// never ticked.
type PlaybackAnchor struct {
	VideoURL           string
	IsPlaying          bool
	PositionSeconds    float64
	AnchoredAtEpochMs  int64
	ControllerIdentity string
}

// PositionAt extrapolates the playback position at the given wall time.
func (a *PlaybackAnchor) PositionAt(nowMs int64) float64 {
	if !a.IsPlaying {
		return a.PositionSeconds
	}
	return a.PositionSeconds + float64(nowMs-a.AnchoredAtEpochMs)/1000
}

// PendingHostTransfer is the at-most-one countdown a non-host started by
// requesting authority.
type PendingHostTransfer struct {
	RequesterConn   string
	DeadlineEpochMs int64
}

// RoomRuntime holds everything about a room that is deliberately not
// persisted: the round ticker, the pending round transition, the host
// transfer countdown, hint progress and the playback anchor. One instance
// per room code, destroyed with the room.
type RoomRuntime struct {
	mu            sync.Mutex
	roundCancel   context.CancelFunc
	transition    clockwork.Timer
	transferTimer clockwork.Timer
	pending       *PendingHostTransfer
	revealedHints int
	anchor        *PlaybackAnchor
}

// replaceRoundTimer installs a new round timer cancel func, cancelling any
// previous one first. Clear-then-set is the rule for every timer here.
func (rt *RoomRuntime) replaceRoundTimer(cancel context.CancelFunc) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if rt.roundCancel != nil {
		rt.roundCancel()
	}
	rt.roundCancel = cancel
	rt.revealedHints = 0
}

func (rt *RoomRuntime) cancelRoundTimer() {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if rt.roundCancel != nil {
		rt.roundCancel()
		rt.roundCancel = nil
	}
}

// roundTimerLive reports whether a round ticker is currently installed.
func (rt *RoomRuntime) roundTimerLive() bool {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.roundCancel != nil
}

// nextHint claims the next hint unit, capped so at least one unit of the
// content always stays hidden. Returns the revealed count and whether a
// new unit was actually claimed.
func (rt *RoomRuntime) nextHint(totalUnits int) (int, bool) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if rt.revealedHints+1 >= totalUnits {
		return rt.revealedHints, false
	}
	rt.revealedHints++
	return rt.revealedHints, true
}

// scheduleTransition arms the advance-to-next-round delay. If one is
// already pending the call reports false and arms nothing: that existence
// check is the round-end double-fire guard.
func (rt *RoomRuntime) scheduleTransition(clock clockwork.Clock, d time.Duration, fn func()) bool {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if rt.transition != nil {
		return false
	}
	rt.transition = clock.AfterFunc(d, func() {
		rt.mu.Lock()
		rt.transition = nil
		rt.mu.Unlock()
		fn()
	})
	return true
}

func (rt *RoomRuntime) transitionPending() bool {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.transition != nil
}

// clearTransition stops a pending advance without running it. A freshly
// started round calls this so a stale marker can never block its endRound.
func (rt *RoomRuntime) clearTransition() {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if rt.transition != nil {
		rt.transition.Stop()
		rt.transition = nil
	}
}

// tryPendingTransfer installs the transfer countdown unless one is already
// pending.
func (rt *RoomRuntime) tryPendingTransfer(clock clockwork.Clock, p *PendingHostTransfer, d time.Duration, fn func()) bool {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if rt.pending != nil {
		return false
	}
	rt.pending = p
	rt.transferTimer = clock.AfterFunc(d, fn)
	return true
}

// cancelPendingTransfer tears down the countdown with no grace period.
func (rt *RoomRuntime) cancelPendingTransfer() bool {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if rt.pending == nil {
		return false
	}
	if rt.transferTimer != nil {
		rt.transferTimer.Stop()
		rt.transferTimer = nil
	}
	rt.pending = nil
	return true
}

// takePendingIfRequester consumes the pending transfer when its deadline
// fired for the given requester; stale fires are ignored.
func (rt *RoomRuntime) takePendingIfRequester(connID string) bool {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if rt.pending == nil || rt.pending.RequesterConn != connID {
		return false
	}
	rt.pending = nil
	rt.transferTimer = nil
	return true
}

func (rt *RoomRuntime) pendingTransfer() *PendingHostTransfer {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.pending
}

func (rt *RoomRuntime) setAnchor(a *PlaybackAnchor) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.anchor = a
}

func (rt *RoomRuntime) getAnchor() *PlaybackAnchor {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.anchor
}

func (rt *RoomRuntime) teardown() {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if rt.roundCancel != nil {
		rt.roundCancel()
		rt.roundCancel = nil
	}
	if rt.transition != nil {
		rt.transition.Stop()
		rt.transition = nil
	}
	if rt.transferTimer != nil {
		rt.transferTimer.Stop()
		rt.transferTimer = nil
	}
	rt.pending = nil
	rt.anchor = nil
}

// RuntimeRegistry owns the per-room runtime state. It is constructed at
// server start and passed around explicitly; entries are created lazily and
// removed on room teardown.
type RuntimeRegistry struct {
	mu    sync.Mutex
	rooms map[string]*RoomRuntime
}

func NewRuntimeRegistry() *RuntimeRegistry {
	return &RuntimeRegistry{rooms: make(map[string]*RoomRuntime)}
}

func (rr *RuntimeRegistry) Get(code string) *RoomRuntime {
	rr.mu.Lock()
	defer rr.mu.Unlock()
	rt, ok := rr.rooms[code]
	if !ok {
		rt = &RoomRuntime{}
		rr.rooms[code] = rt
	}
	return rt
}

// Peek returns the runtime for a room without creating one.
func (rr *RuntimeRegistry) Peek(code string) *RoomRuntime {
	rr.mu.Lock()
	defer rr.mu.Unlock()
	return rr.rooms[code]
}

// Teardown cancels all timers for the room and drops its entry. Leaving
// any of them running would fire into a dead room.
func (rr *RuntimeRegistry) Teardown(code string) {
	rr.mu.Lock()
	rt := rr.rooms[code]
	delete(rr.rooms, code)
	rr.mu.Unlock()
	if rt != nil {
		rt.teardown()
	}
}
