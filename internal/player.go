package internal

// PlayerSnapshot is the broadcast-safe view of a player. Connection handles
// never leave the server; clients only ever see this shape.
type PlayerSnapshot struct {
	ConnectionID string `json:"connection_id"`
	Identity     string `json:"identity"`
	Avatar       string `json:"avatar"`
	Score        int    `json:"score"`
	Ordinal      int    `json:"ordinal"`
	HasActed     bool   `json:"has_acted"`
	Connected    bool   `json:"connected"`
	IsHost       bool   `json:"is_host"`
}

func (p *Player) Snapshot(hostConn string) PlayerSnapshot {
	return PlayerSnapshot{
		ConnectionID: p.ConnectionID,
		Identity:     p.Identity,
		Avatar:       p.Avatar,
		Score:        p.Score,
		Ordinal:      p.Ordinal,
		HasActed:     p.HasActed,
		Connected:    p.Connected,
		IsHost:       p.ConnectionID == hostConn,
	}
}

// Snapshots returns broadcast-safe views of every player, preserving the
// Players slice order (index 0 is host-adjacent in the UI).
func (r *Room) Snapshots() []PlayerSnapshot {
	out := make([]PlayerSnapshot, 0, len(r.Players))
	for _, p := range r.Players {
		if p == nil {
			continue
		}
		out = append(out, p.Snapshot(r.HostConn))
	}
	return out
}
