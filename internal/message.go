package internal

// Message is the bidirectional websocket envelope. Data is kept generic so
// handlers can decode the payload lazily from json.RawMessage.
type Message[T any] struct {
	Type string `json:"type"`
	Data T      `json:"data"`
}

// Inbound event types.
const (
	EvtJoin                = "join"
	EvtStart               = "start"
	EvtActionAttempt       = "action:attempt"
	EvtHostRequestTransfer = "host:requestTransfer"
	EvtHostRespond         = "host:respond"
	EvtKick                = "kick"
	EvtTurnSelectTarget    = "turn:selectTarget"
	EvtTurnSetContent      = "turn:setContent"
	EvtTurnResolve         = "turn:resolve"
	EvtWatchSetVideo       = "watch:setVideo"
	EvtWatchPlay           = "watch:play"
	EvtWatchPause          = "watch:pause"
	EvtWatchSeek           = "watch:seek"
	EvtSyncState           = "sync:state"
)

// Outbound event types.
const (
	EvtJoined                = "joined"
	EvtStarting              = "starting"
	EvtRoundStart            = "round:start"
	EvtRoundTick             = "round:tick"
	EvtRoundHintReveal       = "round:hintReveal"
	EvtActionSuccess         = "action:success"
	EvtRoundEnd              = "round:end"
	EvtGameOver              = "game:over"
	EvtHostTransferRequested = "host:transferRequested"
	EvtHostTransferred       = "host:transferred"
	EvtTurnTargetSelected    = "turn:targetSelected"
	EvtTurnContent           = "turn:content"
	EvtTurnResolved          = "turn:resolved"
	EvtWatchState            = "watch:state"
	EvtSyncRequest           = "sync:request"
	EvtPlayerJoined          = "player:joined"
	EvtPlayerLeft            = "player:left"
	EvtSessionSuperseded     = "session:superseded"
	EvtError                 = "error"
)

type JoinData struct {
	RoomCode string `json:"room_code"`
	Identity string `json:"identity"`
	Avatar   string `json:"avatar"`
}

type RoundConfig struct {
	Mode          GameMode `json:"mode"`
	TotalRounds   int      `json:"total_rounds"`
	RoundDuration int      `json:"round_duration_seconds"`
}

type JoinedData struct {
	RoomCode string           `json:"room_code"`
	Players  []PlayerSnapshot `json:"players"`
	IsHost   bool             `json:"is_host"`
	Status   RoomStatus       `json:"status"`
	Config   RoundConfig      `json:"round_config"`
}

type PlayerJoinedData struct {
	Player      PlayerSnapshot `json:"player"`
	PlayerCount int            `json:"player_count"`
	Rejoined    bool           `json:"rejoined"`
}

type PlayerLeftData struct {
	Identity    string `json:"identity"`
	PlayerCount int    `json:"player_count"`
	NewHost     string `json:"new_host,omitempty"`
}

type RoundStartData struct {
	RoundNumber       int    `json:"round_number"`
	TotalRounds       int    `json:"total_rounds"`
	ActorIdentity     string `json:"actor_identity"`
	ObfuscatedContent string `json:"obfuscated_content"`
	TimeLeft          int    `json:"time_left"`
}

type RoundTickData struct {
	TimeLeft int `json:"time_left"`
}

type HintRevealData struct {
	PartialContent string `json:"partial_content"`
}

type ActionSuccessData struct {
	Identity string           `json:"identity"`
	Score    int              `json:"score"`
	Players  []PlayerSnapshot `json:"players"`
}

type RoundEndData struct {
	RoundNumber     int              `json:"round_number"`
	RevealedContent string           `json:"revealed_content"`
	Players         []PlayerSnapshot `json:"players"`
}

type LeaderboardEntry struct {
	Identity string `json:"identity"`
	Score    int    `json:"score"`
	Position int    `json:"position"`
}

type GameOverData struct {
	Leaderboard []LeaderboardEntry `json:"leaderboard"`
}

type HostTransferRequestedData struct {
	RequesterIdentity string `json:"requester_identity"`
	DeadlineEpochMs   int64  `json:"deadline_epoch_ms"`
}

type HostTransferredData struct {
	NewHostIdentity string           `json:"new_host_identity"`
	Players         []PlayerSnapshot `json:"players"`
}

type KickData struct {
	TargetConnectionID string `json:"target_connection_id"`
}

type SelectTargetData struct {
	TargetConnectionID string `json:"target_connection_id"`
}

type TargetSelectedData struct {
	ActorIdentity  string `json:"actor_identity"`
	TargetIdentity string `json:"target_identity"`
}

type SetContentData struct {
	Text       string `json:"text,omitempty"`
	FromPrompt bool   `json:"from_prompt"`
	Kind       string `json:"kind,omitempty"`
}

type TurnContentData struct {
	ActorIdentity string `json:"actor_identity"`
	Content       string `json:"content"`
	Kind          string `json:"kind,omitempty"`
}

type ResolveData struct {
	Outcome TurnOutcome `json:"outcome"`
}

type TurnResolvedData struct {
	TargetIdentity string           `json:"target_identity"`
	Outcome        TurnOutcome      `json:"outcome"`
	Delta          int              `json:"delta"`
	Players        []PlayerSnapshot `json:"players"`
}

type SetVideoData struct {
	URL string `json:"url"`
}

type SeekData struct {
	Time float64 `json:"time"`
}

type WatchStateData struct {
	URL             string  `json:"url"`
	IsPlaying       bool    `json:"is_playing"`
	PositionSeconds float64 `json:"position_seconds"`
	AsOfEpochMs     int64   `json:"as_of_epoch_ms"`
}

// SyncStateData relays a shared artifact (canvas, prompt board) from the
// current actor straight to one late joiner.
type SyncStateData struct {
	TargetConnectionID string `json:"target_connection_id"`
	Payload            any    `json:"payload"`
}

type SyncRequestData struct {
	JoinerConnectionID string `json:"joiner_connection_id"`
}

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
