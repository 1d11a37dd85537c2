package internal

import (
	"slices"
	"time"
)

const (
	RoundEndDelay        = 4 * time.Second
	HostTransferWindow   = 10 * time.Second
	HintRevealInterval   = 20 * time.Second
	DefaultRoundDuration = 80 * time.Second
	DefaultTotalRounds   = 3
	DefaultMaxPlayers    = 8
	MinPlayersScored     = 2
)

type GameMode string

const (
	ModeDrawing       GameMode = "drawing"
	ModeTruthOrDare   GameMode = "truth_or_dare"
	ModeBottleSpin    GameMode = "bottle_spin"
	ModeWatchTogether GameMode = "watch_together"
)

// Endless reports whether the mode rotates turns forever and never
// produces a leaderboard.
func (m GameMode) Endless() bool {
	return m == ModeTruthOrDare || m == ModeBottleSpin
}

// Scored reports whether the mode awards points and therefore needs at
// least two players to start.
func (m GameMode) Scored() bool {
	return m != ModeWatchTogether
}

// LetterHints reports whether the mode's turn content is obfuscated
// letter-by-letter and revealed on a timer cadence.
func (m GameMode) LetterHints() bool {
	return m == ModeDrawing
}

func (m GameMode) Valid() bool {
	switch m {
	case ModeDrawing, ModeTruthOrDare, ModeBottleSpin, ModeWatchTogether:
		return true
	}
	return false
}

type RoomStatus string

const (
	StatusWaiting  RoomStatus = "waiting"
	StatusPlaying  RoomStatus = "playing"
	StatusEndless  RoomStatus = "endless"
	StatusFinished RoomStatus = "finished"
)

type TurnOutcome string

const (
	OutcomeComplete TurnOutcome = "complete"
	OutcomeSkip     TurnOutcome = "skip"
	OutcomeRefuse   TurnOutcome = "refuse"
)

type Player struct {
	ConnectionID string `json:"connection_id"`
	Identity     string `json:"identity"`
	Avatar       string `json:"avatar"`
	Score        int    `json:"score"`
	Ordinal      int    `json:"ordinal"`
	HasActed     bool   `json:"has_acted"`
	Connected    bool   `json:"connected"`

	JoinedAt time.Time `json:"joined_at"`
}

type SuccessRecord struct {
	Identity   string `json:"identity"`
	Points     int    `json:"points"`
	TimeLeftMs int64  `json:"time_left_ms"`
}

type RoundRecord struct {
	Round     int             `json:"round"`
	Content   string          `json:"content"`
	ActorName string          `json:"actor_name"`
	Successes []SuccessRecord `json:"successes"`
	StartedAt time.Time       `json:"started_at"`
	EndedAt   time.Time       `json:"ended_at"`
}

// Room is the persisted session record, owned by the RoomStore. Everything
// runtime-only (timers, playback anchor, pending host transfer) lives in
// game.RuntimeRegistry keyed by Code.
type Room struct {
	Code     string     `json:"code"`
	Name     string     `json:"name"`
	Mode     GameMode   `json:"mode"`
	Status   RoomStatus `json:"status"`
	IsPublic bool       `json:"is_public"`

	Players    []*Player `json:"players"`
	MaxPlayers int       `json:"max_players"`

	TotalRounds          int `json:"total_rounds"`
	RoundDurationSeconds int `json:"round_duration_seconds"`
	CurrentRound         int `json:"current_round"`

	CurrentTurnContent string `json:"current_turn_content"`
	CurrentActorConn   string `json:"current_actor_conn"`
	CurrentTargetConn  string `json:"current_target_conn"`
	HostConn           string `json:"host_conn"`

	// NextOrdinal backs the stable per-player turn order. Host promotion
	// reorders Players but never touches ordinals.
	NextOrdinal int `json:"next_ordinal"`

	RoundHistory []*RoundRecord `json:"round_history"`

	CreatedAt time.Time `json:"created_at"`
}

// InProgress reports whether a round can be running right now.
func (r *Room) InProgress() bool {
	return r.Status == StatusPlaying || r.Status == StatusEndless
}

func (r *Room) PlayerByConn(connID string) *Player {
	for _, p := range r.Players {
		if p != nil && p.ConnectionID == connID {
			return p
		}
	}
	return nil
}

func (r *Room) PlayerByIdentity(identity string) *Player {
	for _, p := range r.Players {
		if p != nil && p.Identity == identity {
			return p
		}
	}
	return nil
}

func (r *Room) ConnectedCount() int {
	count := 0
	for _, p := range r.Players {
		if p != nil && p.Connected {
			count++
		}
	}
	return count
}

// ActorForRound selects the acting player for a 1-based round number by
// stable ordinal, independent of the Players slice order.
func (r *Room) ActorForRound(round int) *Player {
	eligible := make([]*Player, 0, len(r.Players))
	for _, p := range r.Players {
		if p != nil && p.Connected {
			eligible = append(eligible, p)
		}
	}
	if len(eligible) == 0 {
		return nil
	}
	slices.SortFunc(eligible, func(a, b *Player) int {
		return a.Ordinal - b.Ordinal
	})
	return eligible[(round-1)%len(eligible)]
}

// EveryoneActed reports whether every connected non-actor player has
// resolved their action this round.
func (r *Room) EveryoneActed() bool {
	for _, p := range r.Players {
		if p == nil || !p.Connected {
			continue
		}
		if p.ConnectionID == r.CurrentActorConn {
			continue
		}
		if !p.HasActed {
			return false
		}
	}
	return true
}

func (r *Room) ResetTurnState() {
	for _, p := range r.Players {
		if p != nil {
			p.HasActed = false
		}
	}
	r.CurrentTurnContent = ""
	r.CurrentTargetConn = ""
}

// CurrentRoundRecord returns the most recent round history entry, or nil.
func (r *Room) CurrentRoundRecord() *RoundRecord {
	if len(r.RoundHistory) == 0 {
		return nil
	}
	return r.RoundHistory[len(r.RoundHistory)-1]
}

// HealHostRef repoints a dangling host reference at the first remaining
// connected player. Returns true if the reference was changed.
func (r *Room) HealHostRef() bool {
	if r.HostConn != "" && r.PlayerByConn(r.HostConn) != nil {
		return false
	}
	for _, p := range r.Players {
		if p != nil && p.Connected {
			r.HostConn = p.ConnectionID
			return true
		}
	}
	r.HostConn = ""
	return false
}

// PromoteToFront moves the player with the given connection id to index 0.
// Index 0 carries host-adjacent meaning in the UI, so this runs whenever
// host authority moves.
func (r *Room) PromoteToFront(connID string) {
	idx := slices.IndexFunc(r.Players, func(p *Player) bool {
		return p != nil && p.ConnectionID == connID
	})
	if idx <= 0 {
		return
	}
	p := r.Players[idx]
	r.Players = slices.Delete(r.Players, idx, idx+1)
	r.Players = slices.Insert(r.Players, 0, p)
}

func (r *Room) RemovePlayer(connID string) *Player {
	idx := slices.IndexFunc(r.Players, func(p *Player) bool {
		return p != nil && p.ConnectionID == connID
	})
	if idx < 0 {
		return nil
	}
	p := r.Players[idx]
	r.Players = slices.Delete(r.Players, idx, idx+1)
	return p
}

// Clone deep-copies the room so store round-trips never alias live state.
func (r *Room) Clone() *Room {
	cp := *r
	cp.Players = make([]*Player, 0, len(r.Players))
	for _, p := range r.Players {
		if p == nil {
			continue
		}
		pc := *p
		cp.Players = append(cp.Players, &pc)
	}
	cp.RoundHistory = make([]*RoundRecord, 0, len(r.RoundHistory))
	for _, rec := range r.RoundHistory {
		if rec == nil {
			continue
		}
		rc := *rec
		rc.Successes = append([]SuccessRecord(nil), rec.Successes...)
		cp.RoundHistory = append(cp.RoundHistory, &rc)
	}
	return &cp
}
