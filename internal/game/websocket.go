package game

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/scythe504/partyhub-backend/internal"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// HandleWebSocket upgrades the connection and runs its read loop. The
// first event must be a join; everything else is routed to the handlers
// once the connection is bound to a room.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	client := NewClient(uuid.New().String(), conn)
	log.Debug().Str("conn", client.ID).Msg("connection opened")
	h.readLoop(client)
}

func (h *Hub) readLoop(client *Client) {
	defer func() {
		client.Close()
		h.HandleDisconnect(client)
		log.Debug().Str("conn", client.ID).Str("identity", client.Identity).Msg("connection closed")
	}()

	ctx := context.Background()
	for {
		_, raw, err := client.conn.ReadMessage()
		if err != nil {
			return
		}
		var msg internal.Message[json.RawMessage]
		if err := json.Unmarshal(raw, &msg); err != nil {
			log.Debug().Err(err).Str("conn", client.ID).Msg("unparseable message")
			h.sendError(client.ID, "bad_request", "malformed message envelope")
			continue
		}
		h.dispatch(ctx, client, msg)
	}
}

// dispatch routes one inbound event. Handlers validate the actor and
// authority themselves; this only enforces join-before-anything-else.
func (h *Hub) dispatch(ctx context.Context, client *Client, msg internal.Message[json.RawMessage]) {
	if msg.Type != internal.EvtJoin && client.RoomCode == "" {
		h.sendError(client.ID, "not_joined", "join a room first")
		return
	}

	switch msg.Type {
	case internal.EvtJoin:
		var data internal.JoinData
		if !h.decode(client, msg.Data, &data) {
			return
		}
		h.HandleJoin(ctx, client, data)

	case internal.EvtStart:
		h.HandleStart(ctx, client)

	case internal.EvtActionAttempt:
		var content string
		if !h.decode(client, msg.Data, &content) {
			return
		}
		h.HandleActionAttempt(ctx, client, content)

	case internal.EvtHostRequestTransfer:
		h.HandleRequestTransfer(ctx, client)

	case internal.EvtHostRespond:
		h.HandleHostRespond(ctx, client)

	case internal.EvtKick:
		var data internal.KickData
		if !h.decode(client, msg.Data, &data) {
			return
		}
		h.HandleKick(ctx, client, data.TargetConnectionID)

	case internal.EvtTurnSelectTarget:
		var data internal.SelectTargetData
		if !h.decode(client, msg.Data, &data) {
			return
		}
		h.HandleSelectTarget(ctx, client, data.TargetConnectionID)

	case internal.EvtTurnSetContent:
		var data internal.SetContentData
		if !h.decode(client, msg.Data, &data) {
			return
		}
		h.HandleSetContent(ctx, client, data)

	case internal.EvtTurnResolve:
		var data internal.ResolveData
		if !h.decode(client, msg.Data, &data) {
			return
		}
		h.HandleResolve(ctx, client, data.Outcome)

	case internal.EvtWatchSetVideo:
		var data internal.SetVideoData
		if !h.decode(client, msg.Data, &data) {
			return
		}
		h.HandleSetVideo(ctx, client, data.URL)

	case internal.EvtWatchPlay:
		h.HandlePlayState(ctx, client, true)

	case internal.EvtWatchPause:
		h.HandlePlayState(ctx, client, false)

	case internal.EvtWatchSeek:
		var data internal.SeekData
		if !h.decode(client, msg.Data, &data) {
			return
		}
		h.HandleSeek(ctx, client, data.Time)

	case internal.EvtSyncState:
		var data internal.SyncStateData
		if !h.decode(client, msg.Data, &data) {
			return
		}
		h.HandleSyncState(ctx, client, data)

	default:
		log.Debug().Str("conn", client.ID).Str("type", msg.Type).Msg("unknown event type")
		h.sendError(client.ID, "bad_request", "unknown event type")
	}
}

func (h *Hub) decode(client *Client, raw json.RawMessage, v any) bool {
	if err := json.Unmarshal(raw, v); err != nil {
		log.Debug().Err(err).Str("conn", client.ID).Msg("malformed event payload")
		h.sendError(client.ID, "bad_request", "malformed event payload")
		return false
	}
	return true
}
