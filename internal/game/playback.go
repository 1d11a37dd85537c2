package game

import (
	"context"
	"fmt"
	"net/url"

	"github.com/rs/zerolog/log"

	"github.com/scythe504/partyhub-backend/internal"
)

// watchMutation runs a host-only anchor replacement for a watch-together
// room and broadcasts the resulting state. Every mutation swaps the whole
// anchor with the clock's now as the new anchoring instant, so any client
// joining at any time reconstructs the position from a single read.
func (h *Hub) watchMutation(ctx context.Context, client *Client, fn func(room *internal.Room, prev *PlaybackAnchor) (*PlaybackAnchor, error)) {
	err := h.withRoom(ctx, client.RoomCode, func(room *internal.Room) error {
		if room.Mode != internal.ModeWatchTogether {
			return fmt.Errorf("room %s is not a watch-together room", room.Code)
		}
		if client.ID != room.HostConn {
			return errNotHost
		}
		rt := h.runtime.Get(room.Code)
		next, err := fn(room, rt.getAnchor())
		if err != nil {
			return err
		}
		rt.setAnchor(next)
		h.broadcastWatchState(room.Code, next)
		return nil
	})
	h.reportErr(client.ID, err)
}

func (h *Hub) broadcastWatchState(code string, a *PlaybackAnchor) {
	h.out.Broadcast(code, internal.Message[internal.WatchStateData]{
		Type: internal.EvtWatchState,
		Data: internal.WatchStateData{
			URL:             a.VideoURL,
			IsPlaying:       a.IsPlaying,
			PositionSeconds: a.PositionSeconds,
			AsOfEpochMs:     a.AnchoredAtEpochMs,
		},
	})
}

// HandleSetVideo replaces the anchor with a fresh, paused position zero for
// the new video.
func (h *Hub) HandleSetVideo(ctx context.Context, client *Client, rawURL string) {
	h.watchMutation(ctx, client, func(room *internal.Room, _ *PlaybackAnchor) (*PlaybackAnchor, error) {
		u, err := url.Parse(rawURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return nil, fmt.Errorf("malformed video url")
		}
		log.Info().Str("room", room.Code).Str("url", rawURL).Msg("video set")
		return &PlaybackAnchor{
			VideoURL:           rawURL,
			IsPlaying:          false,
			PositionSeconds:    0,
			AnchoredAtEpochMs:  h.nowMs(),
			ControllerIdentity: client.Identity,
		}, nil
	})
}

// HandlePlayState resumes or freezes playback, carrying the extrapolated
// position over into the replacement anchor.
func (h *Hub) HandlePlayState(ctx context.Context, client *Client, playing bool) {
	h.watchMutation(ctx, client, func(room *internal.Room, prev *PlaybackAnchor) (*PlaybackAnchor, error) {
		if prev == nil {
			return nil, fmt.Errorf("no video has been set")
		}
		now := h.nowMs()
		return &PlaybackAnchor{
			VideoURL:           prev.VideoURL,
			IsPlaying:          playing,
			PositionSeconds:    prev.PositionAt(now),
			AnchoredAtEpochMs:  now,
			ControllerIdentity: client.Identity,
		}, nil
	})
}

// HandleSeek jumps to an absolute position, preserving the play state.
func (h *Hub) HandleSeek(ctx context.Context, client *Client, position float64) {
	h.watchMutation(ctx, client, func(room *internal.Room, prev *PlaybackAnchor) (*PlaybackAnchor, error) {
		if prev == nil {
			return nil, fmt.Errorf("no video has been set")
		}
		if position < 0 {
			position = 0
		}
		return &PlaybackAnchor{
			VideoURL:           prev.VideoURL,
			IsPlaying:          prev.IsPlaying,
			PositionSeconds:    position,
			AnchoredAtEpochMs:  h.nowMs(),
			ControllerIdentity: client.Identity,
		}, nil
	})
}

// watchStateFor answers a joiner directly from the anchor; watch rooms are
// server-authoritative so no peer round-trip is needed.
func (h *Hub) watchStateFor(code string) (internal.WatchStateData, bool) {
	rt := h.runtime.Peek(code)
	if rt == nil {
		return internal.WatchStateData{}, false
	}
	a := rt.getAnchor()
	if a == nil {
		return internal.WatchStateData{}, false
	}
	now := h.nowMs()
	return internal.WatchStateData{
		URL:             a.VideoURL,
		IsPlaying:       a.IsPlaying,
		PositionSeconds: a.PositionAt(now),
		AsOfEpochMs:     now,
	}, true
}
