package game

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/scythe504/partyhub-backend/internal"
	"github.com/scythe504/partyhub-backend/internal/utils"
)

// startRoundTimer installs the single 1-second-tick countdown for a room's
// round. Any previous timer for the room is cancelled first; reaching zero
// ends the round. Content and mode are fixed for the life of a round, so
// they are captured here instead of re-read every tick.
func (h *Hub) startRoundTimer(code string, mode internal.GameMode, content string, totalSeconds int) {
	rt := h.runtime.Get(code)
	ctx, cancel := context.WithCancel(context.Background())
	rt.replaceRoundTimer(cancel)

	hintEvery := int(internal.HintRevealInterval.Seconds())

	go func() {
		ticker := h.clock.NewTicker(time.Second)
		defer ticker.Stop()

		timeLeft := totalSeconds
		elapsed := 0
		for {
			select {
			case <-ticker.Chan():
				timeLeft--
				elapsed++
				if timeLeft <= 0 {
					h.out.Broadcast(code, internal.Message[internal.RoundTickData]{
						Type: internal.EvtRoundTick,
						Data: internal.RoundTickData{TimeLeft: 0},
					})
					rt.cancelRoundTimer()
					h.roundTimerExpired(code)
					return
				}
				h.out.Broadcast(code, internal.Message[internal.RoundTickData]{
					Type: internal.EvtRoundTick,
					Data: internal.RoundTickData{TimeLeft: timeLeft},
				})
				if mode.LetterHints() && elapsed%hintEvery == 0 {
					h.revealNextHint(code, content)
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}

// revealNextHint uncovers one more unit of the obfuscated content. The
// cadence is fixed, not a fraction of the round, and the final unit is
// never revealed by hints.
func (h *Hub) revealNextHint(code, content string) {
	rt := h.runtime.Get(code)
	n, ok := rt.nextHint(utils.HintUnits(content))
	if !ok {
		return
	}
	h.out.Broadcast(code, internal.Message[internal.HintRevealData]{
		Type: internal.EvtRoundHintReveal,
		Data: internal.HintRevealData{PartialContent: utils.RevealHints(content, n)},
	})
}

// roundTimerExpired runs off the ticker goroutine once the countdown hits
// zero.
func (h *Hub) roundTimerExpired(code string) {
	err := h.withRoom(context.Background(), code, func(room *internal.Room) error {
		if !room.InProgress() {
			return nil
		}
		return h.endRound(room, "timer expired")
	})
	if err != nil {
		log.Error().Err(err).Str("room", code).Msg("round timer expiry failed")
	}
}
