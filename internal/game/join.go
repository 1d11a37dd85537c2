package game

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/scythe504/partyhub-backend/internal"
)

// HandleJoin admits a connection into a room. Players are looked up by
// stable identity, never by connection id: a rejoining identity gets its
// connection id swapped in place with score and per-round state preserved,
// and inherits any actor/host role its old connection held, atomically with
// the player-list save.
func (h *Hub) HandleJoin(ctx context.Context, client *Client, data internal.JoinData) {
	identity := strings.TrimSpace(data.Identity)
	if identity == "" {
		h.sendError(client.ID, "bad_request", "identity is required")
		return
	}
	client.Identity = identity
	client.Avatar = data.Avatar
	if old := h.registry.Register(client); old != nil && old.RoomCode != "" && old.RoomCode != data.RoomCode {
		// The identity moved to a different room. Its seat in the old room
		// must be released here: the superseded connection's own teardown
		// deliberately leaves room state alone.
		if err := h.leaveRoom(ctx, old.RoomCode, old.ID); err != nil {
			log.Error().Err(err).Str("room", old.RoomCode).Str("conn", old.ID).Msg("releasing superseded seat failed")
		}
	}

	var (
		joined    internal.JoinedData
		snapshot  internal.PlayerSnapshot
		rejoined  bool
		midRound  bool
		actorConn string
		count     int
	)
	err := h.withRoom(ctx, data.RoomCode, func(room *internal.Room) error {
		existing := room.PlayerByIdentity(identity)
		if existing == nil && len(room.Players) >= room.MaxPlayers {
			return errRoomFull
		}

		if existing != nil {
			rejoined = true
			oldConn := existing.ConnectionID
			existing.ConnectionID = client.ID
			existing.Connected = true
			if data.Avatar != "" {
				existing.Avatar = data.Avatar
			}
			// Role references must never be left pointing at the dead
			// connection, not even transiently in the stored record.
			if room.CurrentActorConn == oldConn {
				room.CurrentActorConn = client.ID
			}
			if room.CurrentTargetConn == oldConn {
				room.CurrentTargetConn = client.ID
			}
			if room.HostConn == oldConn {
				room.HostConn = client.ID
			}
			snapshot = existing.Snapshot(room.HostConn)
		} else {
			p := &internal.Player{
				ConnectionID: client.ID,
				Identity:     identity,
				Avatar:       data.Avatar,
				Ordinal:      room.NextOrdinal,
				Connected:    true,
				JoinedAt:     h.clock.Now(),
			}
			room.NextOrdinal++
			room.Players = append(room.Players, p)
			if room.HostConn == "" {
				room.HostConn = client.ID
			}
			snapshot = p.Snapshot(room.HostConn)
		}

		if room.HealHostRef() {
			log.Warn().Str("room", room.Code).Msg("dangling host reference healed during join")
		}

		joined = internal.JoinedData{
			RoomCode: room.Code,
			Players:  room.Snapshots(),
			IsHost:   room.HostConn == client.ID,
			Status:   room.Status,
			Config: internal.RoundConfig{
				Mode:          room.Mode,
				TotalRounds:   room.TotalRounds,
				RoundDuration: room.RoundDurationSeconds,
			},
		}
		midRound = room.InProgress()
		actorConn = room.CurrentActorConn
		count = len(room.Players)
		return nil
	})
	if err != nil {
		h.reportErr(client.ID, err)
		return
	}

	h.registry.Bind(client, data.RoomCode)
	h.out.SendTo(client.ID, internal.Message[internal.JoinedData]{
		Type: internal.EvtJoined,
		Data: joined,
	})
	h.out.BroadcastExcept(data.RoomCode, client.ID, internal.Message[internal.PlayerJoinedData]{
		Type: internal.EvtPlayerJoined,
		Data: internal.PlayerJoinedData{Player: snapshot, PlayerCount: count, Rejoined: rejoined},
	})

	// Mid-session catch-up. Watch rooms answer from the server-held anchor;
	// content modes ask the actor to rebroadcast their artifact straight to
	// the joiner, since the server never reconstructs it.
	if state, ok := h.watchStateFor(data.RoomCode); ok {
		h.out.SendTo(client.ID, internal.Message[internal.WatchStateData]{
			Type: internal.EvtWatchState,
			Data: state,
		})
	} else if midRound && actorConn != "" && actorConn != client.ID {
		h.out.SendTo(actorConn, internal.Message[internal.SyncRequestData]{
			Type: internal.EvtSyncRequest,
			Data: internal.SyncRequestData{JoinerConnectionID: client.ID},
		})
	}

	log.Info().
		Str("room", data.RoomCode).
		Str("identity", identity).
		Bool("rejoined", rejoined).
		Msg("player joined")
}

// HandleSyncState relays the actor's shared artifact to one joiner. The
// payload is opaque to the server.
func (h *Hub) HandleSyncState(ctx context.Context, client *Client, data internal.SyncStateData) {
	room, err := h.store.Find(ctx, client.RoomCode)
	if err != nil {
		h.reportErr(client.ID, err)
		return
	}
	if client.ID != room.CurrentActorConn {
		h.reportErr(client.ID, errNotActor)
		return
	}
	h.out.SendTo(data.TargetConnectionID, internal.Message[any]{
		Type: internal.EvtSyncState,
		Data: data.Payload,
	})
}

// HandleDisconnect tears down a connection's presence. Mid-game the player
// record stays (disconnected) so a rejoin under the same identity keeps its
// score; in waiting or finished rooms the record is dropped. Host loss falls
// back to the next remaining player synchronously, no countdown involved.
func (h *Hub) HandleDisconnect(client *Client) {
	if client.Superseded() {
		// A newer connection for this identity already owns the player
		// record; touching room state here would clobber it.
		return
	}
	h.registry.Unregister(client)
	if client.RoomCode == "" {
		return
	}

	if err := h.leaveRoom(context.Background(), client.RoomCode, client.ID); err != nil {
		log.Error().Err(err).Str("room", client.RoomCode).Str("conn", client.ID).Msg("disconnect handling failed")
	}
}

// leaveRoom releases one connection's seat in a room, both on disconnect
// and when a superseded connection turns out to have been seated elsewhere.
func (h *Hub) leaveRoom(ctx context.Context, code, connID string) error {
	return h.withRoom(ctx, code, func(room *internal.Room) error {
		p := room.PlayerByConn(connID)
		if p == nil {
			return nil
		}
		identity := p.Identity
		wasHost := room.HostConn == connID
		wasActor := room.CurrentActorConn == connID

		if room.InProgress() {
			p.Connected = false
		} else {
			room.RemovePlayer(connID)
		}

		if room.ConnectedCount() == 0 {
			return errRoomDeleted
		}

		newHost := ""
		if wasHost {
			room.HostConn = ""
			room.HealHostRef()
			h.runtime.Get(room.Code).cancelPendingTransfer()
			if hp := room.PlayerByConn(room.HostConn); hp != nil {
				newHost = hp.Identity
			}
		}
		if pending := h.runtime.Get(room.Code).pendingTransfer(); pending != nil && pending.RequesterConn == connID {
			h.runtime.Get(room.Code).cancelPendingTransfer()
		}

		h.out.Broadcast(room.Code, internal.Message[internal.PlayerLeftData]{
			Type: internal.EvtPlayerLeft,
			Data: internal.PlayerLeftData{
				Identity:    identity,
				PlayerCount: room.ConnectedCount(),
				NewHost:     newHost,
			},
		})

		if wasActor && room.InProgress() {
			return h.endRound(room, "actor disconnected")
		}
		return nil
	})
}

// HandleKick removes a player outright. Host only; the kicked player's
// record does not survive for reconnection.
func (h *Hub) HandleKick(ctx context.Context, client *Client, targetConn string) {
	var kickedIdentity string
	err := h.withRoom(ctx, client.RoomCode, func(room *internal.Room) error {
		if client.ID != room.HostConn {
			return errNotHost
		}
		if targetConn == client.ID {
			return fmt.Errorf("host cannot kick themselves")
		}
		target := room.RemovePlayer(targetConn)
		if target == nil {
			return fmt.Errorf("target is not a player in room %s", room.Code)
		}
		kickedIdentity = target.Identity
		wasActor := room.CurrentActorConn == targetConn

		h.out.Broadcast(room.Code, internal.Message[internal.PlayerLeftData]{
			Type: internal.EvtPlayerLeft,
			Data: internal.PlayerLeftData{
				Identity:    kickedIdentity,
				PlayerCount: room.ConnectedCount(),
			},
		})
		if wasActor && room.InProgress() {
			return h.endRound(room, "actor kicked")
		}
		return nil
	})
	if err != nil {
		h.reportErr(client.ID, err)
		return
	}

	if tc := h.registry.ClientByConn(targetConn); tc != nil {
		h.sendError(targetConn, "kicked", "you were removed from the room")
		h.registry.Unregister(tc)
		tc.Close()
	}
	log.Info().Str("room", client.RoomCode).Str("kicked", kickedIdentity).Msg("player kicked")
}
