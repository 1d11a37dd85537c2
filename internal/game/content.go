package game

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/scythe504/partyhub-backend/internal"
	"github.com/scythe504/partyhub-backend/internal/utils"
)

// PromptSource supplies generated turn content for the negotiation modes.
// The production default draws from the built-in pools; a third-party
// prompt API can be dropped in behind this without touching handlers.
type PromptSource interface {
	Prompt(mode internal.GameMode, kind string) (string, error)
}

// StaticPrompts serves prompts from the compiled-in pools.
type StaticPrompts struct{}

func (StaticPrompts) Prompt(_ internal.GameMode, kind string) (string, error) {
	switch kind {
	case "truth":
		return utils.RandomTruth(), nil
	case "dare":
		return utils.RandomDare(), nil
	default:
		return "", fmt.Errorf("unknown prompt kind %q", kind)
	}
}

// HandleSelectTarget is phase one of a negotiated turn: the actor picks who
// has to answer. Self-targeting is only possible when the actor is alone.
func (h *Hub) HandleSelectTarget(ctx context.Context, client *Client, targetConn string) {
	err := h.withRoom(ctx, client.RoomCode, func(room *internal.Room) error {
		if !room.InProgress() || !room.Mode.Endless() {
			return errRoomNotPlaying
		}
		if client.ID != room.CurrentActorConn {
			return errNotActor
		}
		target := room.PlayerByConn(targetConn)
		if target == nil || !target.Connected {
			return fmt.Errorf("target is not a connected player")
		}
		if targetConn == client.ID && room.ConnectedCount() > 1 {
			return fmt.Errorf("cannot target yourself")
		}
		room.CurrentTargetConn = targetConn

		actor := room.PlayerByConn(client.ID)
		h.out.Broadcast(room.Code, internal.Message[internal.TargetSelectedData]{
			Type: internal.EvtTurnTargetSelected,
			Data: internal.TargetSelectedData{
				ActorIdentity:  actor.Identity,
				TargetIdentity: target.Identity,
			},
		})
		return nil
	})
	h.reportErr(client.ID, err)
}

// HandleSetContent is phase two: the actor supplies the prompt, either
// custom text or one drawn from the prompt source, and everyone sees it.
func (h *Hub) HandleSetContent(ctx context.Context, client *Client, data internal.SetContentData) {
	err := h.withRoom(ctx, client.RoomCode, func(room *internal.Room) error {
		if !room.InProgress() || !room.Mode.Endless() {
			return errRoomNotPlaying
		}
		if client.ID != room.CurrentActorConn {
			return errNotActor
		}
		if room.CurrentTargetConn == "" {
			return fmt.Errorf("no target selected yet")
		}

		content := strings.TrimSpace(data.Text)
		if data.FromPrompt {
			generated, err := h.prompts.Prompt(room.Mode, data.Kind)
			if err != nil {
				return err
			}
			content = generated
		}
		if content == "" {
			return fmt.Errorf("turn content is empty")
		}
		room.CurrentTurnContent = content
		if rec := room.CurrentRoundRecord(); rec != nil {
			rec.Content = content
		}

		actor := room.PlayerByConn(client.ID)
		h.out.Broadcast(room.Code, internal.Message[internal.TurnContentData]{
			Type: internal.EvtTurnContent,
			Data: internal.TurnContentData{
				ActorIdentity: actor.Identity,
				Content:       content,
				Kind:          data.Kind,
			},
		})
		return nil
	})
	h.reportErr(client.ID, err)
}

// HandleResolve is phase three: the target answers with complete, skip or
// refuse. Completion scores like any successful action; skip and refuse
// carry negative deltas with no floor. One resolution always ends the turn,
// whatever the outcome.
func (h *Hub) HandleResolve(ctx context.Context, client *Client, outcome internal.TurnOutcome) {
	err := h.withRoom(ctx, client.RoomCode, func(room *internal.Room) error {
		if !room.InProgress() || !room.Mode.Endless() {
			return errRoomNotPlaying
		}
		if client.ID != room.CurrentTargetConn {
			return fmt.Errorf("only the targeted player may resolve the turn")
		}
		if room.CurrentTurnContent == "" {
			return fmt.Errorf("no turn content to resolve")
		}
		p := room.PlayerByConn(client.ID)
		if p == nil {
			return fmt.Errorf("connection is not a player in room %s", room.Code)
		}

		var delta int
		switch outcome {
		case internal.OutcomeComplete:
			delta = h.creditAction(room, p)
		case internal.OutcomeSkip:
			delta = skipDelta
			p.Score += delta
			p.HasActed = true
		case internal.OutcomeRefuse:
			delta = refuseDelta
			p.Score += delta
			p.HasActed = true
		default:
			return fmt.Errorf("unknown outcome %q", outcome)
		}

		h.out.Broadcast(room.Code, internal.Message[internal.TurnResolvedData]{
			Type: internal.EvtTurnResolved,
			Data: internal.TurnResolvedData{
				TargetIdentity: p.Identity,
				Outcome:        outcome,
				Delta:          delta,
				Players:        room.Snapshots(),
			},
		})
		log.Info().
			Str("room", room.Code).
			Str("target", p.Identity).
			Str("outcome", string(outcome)).
			Int("delta", delta).
			Msg("turn resolved")

		return h.endRound(room, "turn resolved")
	})
	h.reportErr(client.ID, err)
}
