package game

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/scythe504/partyhub-backend/internal"
	"github.com/scythe504/partyhub-backend/internal/utils"
)

// HandleStart begins the game. Host only, and only from the waiting state.
func (h *Hub) HandleStart(ctx context.Context, client *Client) {
	err := h.withRoom(ctx, client.RoomCode, func(room *internal.Room) error {
		if client.ID != room.HostConn {
			return errNotHost
		}
		if room.Status != internal.StatusWaiting {
			return fmt.Errorf("room %s already started", room.Code)
		}
		if room.Mode == internal.ModeWatchTogether {
			return fmt.Errorf("watch rooms have no rounds to start")
		}
		h.out.Broadcast(room.Code, internal.Message[any]{Type: internal.EvtStarting})
		return h.startRound(room)
	})
	h.reportErr(client.ID, err)
}

// startRound advances the room into its next round: picks the actor by
// stable ordinal, draws content for modes that have server-side content,
// opens the round record and arms the countdown. Caller holds the room.
func (h *Hub) startRound(room *internal.Room) error {
	settings := h.modeSettings(room.Mode)
	minPlayers := settings.MinPlayers
	if room.Mode.Scored() && minPlayers < internal.MinPlayersScored {
		minPlayers = internal.MinPlayersScored
	}
	if room.ConnectedCount() < minPlayers {
		return errNotEnoughPlayers
	}

	round := room.CurrentRound + 1
	actor := room.ActorForRound(round)
	if actor == nil {
		return errNotEnoughPlayers
	}

	room.CurrentRound = round
	room.ResetTurnState()
	if room.Mode.Endless() {
		room.Status = internal.StatusEndless
	} else {
		room.Status = internal.StatusPlaying
	}
	room.CurrentActorConn = actor.ConnectionID

	content := ""
	if room.Mode == internal.ModeDrawing {
		content = utils.RandomDrawingWord()
	}
	room.CurrentTurnContent = content

	room.RoundHistory = append(room.RoundHistory, &internal.RoundRecord{
		Round:     round,
		Content:   content,
		ActorName: actor.Identity,
		StartedAt: h.clock.Now(),
	})

	// A fresh round is itself the transition target, so any stale marker
	// must be gone before the next endRound can schedule one.
	h.runtime.Get(room.Code).clearTransition()
	h.startRoundTimer(room.Code, room.Mode, content, room.RoundDurationSeconds)

	start := internal.RoundStartData{
		RoundNumber:       round,
		TotalRounds:       room.TotalRounds,
		ActorIdentity:     actor.Identity,
		ObfuscatedContent: utils.MaskContent(content),
		TimeLeft:          room.RoundDurationSeconds,
	}
	h.out.BroadcastExcept(room.Code, actor.ConnectionID, internal.Message[internal.RoundStartData]{
		Type: internal.EvtRoundStart,
		Data: start,
	})

	// The actor is the only one who sees the real content.
	actorStart := start
	actorStart.ObfuscatedContent = content
	h.out.SendTo(actor.ConnectionID, internal.Message[internal.RoundStartData]{
		Type: internal.EvtRoundStart,
		Data: actorStart,
	})

	log.Info().
		Str("room", room.Code).
		Int("round", round).
		Str("actor", actor.Identity).
		Msg("round started")
	return nil
}

// HandleActionAttempt processes a guess in the drawing mode. Wrong guesses
// change nothing; the drawer and players who already succeeded are ignored.
func (h *Hub) HandleActionAttempt(ctx context.Context, client *Client, content string) {
	err := h.withRoom(ctx, client.RoomCode, func(room *internal.Room) error {
		if room.Status == internal.StatusFinished {
			return errRoomNotPlaying
		}
		if !room.InProgress() || room.Mode != internal.ModeDrawing {
			return nil
		}
		p := room.PlayerByConn(client.ID)
		if p == nil {
			return fmt.Errorf("connection is not a player in room %s", room.Code)
		}
		if p.ConnectionID == room.CurrentActorConn || p.HasActed {
			return nil
		}
		guess := utils.NormalizeGuess(content)
		if guess == "" || guess != utils.NormalizeGuess(room.CurrentTurnContent) {
			log.Debug().Str("room", room.Code).Str("identity", p.Identity).Msg("incorrect guess")
			return nil
		}

		points := h.creditAction(room, p)
		h.out.Broadcast(room.Code, internal.Message[internal.ActionSuccessData]{
			Type: internal.EvtActionSuccess,
			Data: internal.ActionSuccessData{
				Identity: p.Identity,
				Score:    points,
				Players:  room.Snapshots(),
			},
		})

		if room.EveryoneActed() {
			return h.endRound(room, "everyone acted")
		}
		return nil
	})
	h.reportErr(client.ID, err)
}

// creditAction applies the shared success scoring: points for the acting
// player, a fractional bonus for the actor, and a success-log entry.
func (h *Hub) creditAction(room *internal.Room, p *internal.Player) int {
	timeLeft := h.timeLeftSeconds(room)
	points := Score(timeLeft, room.RoundDurationSeconds)
	p.Score += points
	p.HasActed = true
	if actor := room.PlayerByConn(room.CurrentActorConn); actor != nil {
		actor.Score += ActorBonus(points)
	}
	if rec := room.CurrentRoundRecord(); rec != nil {
		rec.Successes = append(rec.Successes, internal.SuccessRecord{
			Identity:   p.Identity,
			Points:     points,
			TimeLeftMs: int64(timeLeft) * 1000,
		})
	}
	return points
}

// timeLeftSeconds derives the remaining round time from the round record's
// start stamp rather than from ticker state.
func (h *Hub) timeLeftSeconds(room *internal.Room) int {
	rec := room.CurrentRoundRecord()
	if rec == nil {
		return 0
	}
	left := room.RoundDurationSeconds - int(h.clock.Since(rec.StartedAt).Seconds())
	if left < 0 {
		return 0
	}
	return left
}

// endRound closes the current round and schedules the advance. If a
// transition is already pending this is a no-op: "timer hit zero" and
// "everyone acted" may race, and only one of them advances the room.
// Caller holds the room.
func (h *Hub) endRound(room *internal.Room, cause string) error {
	rt := h.runtime.Get(room.Code)
	code := room.Code
	if !rt.scheduleTransition(h.clock, internal.RoundEndDelay, func() {
		h.advanceAfterRoundEnd(code)
	}) {
		return nil
	}
	rt.cancelRoundTimer()

	if rec := room.CurrentRoundRecord(); rec != nil {
		rec.EndedAt = h.clock.Now()
	}
	h.out.Broadcast(code, internal.Message[internal.RoundEndData]{
		Type: internal.EvtRoundEnd,
		Data: internal.RoundEndData{
			RoundNumber:     room.CurrentRound,
			RevealedContent: room.CurrentTurnContent,
			Players:         room.Snapshots(),
		},
	})
	log.Info().Str("room", code).Int("round", room.CurrentRound).Str("cause", cause).Msg("round ended")
	return nil
}

// advanceAfterRoundEnd fires once the round-end delay elapses: next round,
// or game over for finite modes that ran out of rounds. Endless modes loop
// forever.
func (h *Hub) advanceAfterRoundEnd(code string) {
	err := h.withRoom(context.Background(), code, func(room *internal.Room) error {
		if !room.InProgress() {
			return nil
		}
		if !room.Mode.Endless() && room.CurrentRound >= room.TotalRounds {
			h.endGame(room)
			return nil
		}
		if err := h.startRound(room); err != nil {
			// Not enough players left to continue; park the room instead
			// of erroring into nowhere.
			log.Warn().Err(err).Str("room", code).Msg("cannot start next round, returning to waiting")
			room.Status = internal.StatusWaiting
			room.CurrentActorConn = ""
			room.CurrentTurnContent = ""
		}
		return nil
	})
	if err != nil {
		log.Error().Err(err).Str("room", code).Msg("round advance failed")
	}
}

// endGame marks the room finished and publishes the leaderboard. Never
// reached by endless modes. Caller holds the room.
func (h *Hub) endGame(room *internal.Room) {
	room.Status = internal.StatusFinished
	room.CurrentActorConn = ""
	room.CurrentTurnContent = ""
	h.runtime.Get(room.Code).cancelRoundTimer()

	h.out.Broadcast(room.Code, internal.Message[internal.GameOverData]{
		Type: internal.EvtGameOver,
		Data: internal.GameOverData{Leaderboard: Leaderboard(room)},
	})
	log.Info().Str("room", room.Code).Int("rounds", room.CurrentRound).Msg("game over")
}
