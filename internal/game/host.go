package game

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/scythe504/partyhub-backend/internal"
)

// HandleRequestTransfer starts the host transfer countdown for the
// requesting player. The current host has a fixed window to respond;
// silence concedes authority.
func (h *Hub) HandleRequestTransfer(ctx context.Context, client *Client) {
	err := h.withRoom(ctx, client.RoomCode, func(room *internal.Room) error {
		p := room.PlayerByConn(client.ID)
		if p == nil {
			return fmt.Errorf("connection is not a player in room %s", room.Code)
		}
		if client.ID == room.HostConn {
			return fmt.Errorf("requester is already the host")
		}

		deadline := h.clock.Now().Add(internal.HostTransferWindow)
		pending := &PendingHostTransfer{
			RequesterConn:   client.ID,
			DeadlineEpochMs: deadline.UnixMilli(),
		}
		requesterConn := client.ID
		code := room.Code
		ok := h.runtime.Get(code).tryPendingTransfer(h.clock, pending, internal.HostTransferWindow, func() {
			h.hostTransferDeadline(code, requesterConn)
		})
		if !ok {
			return fmt.Errorf("a host transfer is already pending")
		}

		h.out.Broadcast(code, internal.Message[internal.HostTransferRequestedData]{
			Type: internal.EvtHostTransferRequested,
			Data: internal.HostTransferRequestedData{
				RequesterIdentity: p.Identity,
				DeadlineEpochMs:   pending.DeadlineEpochMs,
			},
		})
		log.Info().Str("room", code).Str("requester", p.Identity).Msg("host transfer requested")
		return nil
	})
	h.reportErr(client.ID, err)
}

// HandleHostRespond is the host keeping their seat: the pending transfer
// is cancelled on the spot, with no grace period. No-op when nothing is
// pending.
func (h *Hub) HandleHostRespond(ctx context.Context, client *Client) {
	err := h.withRoom(ctx, client.RoomCode, func(room *internal.Room) error {
		if client.ID != room.HostConn {
			return errNotHost
		}
		if h.runtime.Get(room.Code).cancelPendingTransfer() {
			log.Info().Str("room", room.Code).Msg("host kept authority, transfer cancelled")
		}
		return nil
	})
	h.reportErr(client.ID, err)
}

// hostTransferDeadline fires when the transfer countdown elapses without a
// host response: authority moves to the requester unconditionally and the
// requester is promoted to the head of the player ordering.
func (h *Hub) hostTransferDeadline(code, requesterConn string) {
	err := h.withRoom(context.Background(), code, func(room *internal.Room) error {
		if !h.runtime.Get(code).takePendingIfRequester(requesterConn) {
			return nil
		}
		p := room.PlayerByConn(requesterConn)
		if p == nil || !p.Connected {
			// Requester left mid-countdown; nothing to hand over.
			return nil
		}
		room.HostConn = requesterConn
		room.PromoteToFront(requesterConn)

		h.out.Broadcast(code, internal.Message[internal.HostTransferredData]{
			Type: internal.EvtHostTransferred,
			Data: internal.HostTransferredData{
				NewHostIdentity: p.Identity,
				Players:         room.Snapshots(),
			},
		})
		log.Info().Str("room", code).Str("new_host", p.Identity).Msg("host transfer deadline elapsed, authority reassigned")
		return nil
	})
	if err != nil {
		log.Error().Err(err).Str("room", code).Msg("host transfer deadline handling failed")
	}
}
