package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/scythe504/partyhub-backend/internal"
	"github.com/scythe504/partyhub-backend/internal/utils"
)

const roomCodeLength = 6

// Response is the REST envelope with request timing, kept for the lobby
// clients that graph it.
type Response struct {
	StatusCode    int   `json:"status_code"`
	RespStartTime int64 `json:"resp_time_start_ms"`
	RespEndTime   int64 `json:"resp_time_end_ms"`
	NetRespTime   int64 `json:"net_resp_time_ms"`
	Data          any   `json:"data"`
}

func (s *Server) RegisterRoutes() http.Handler {
	r := mux.NewRouter()

	// Apply CORS middleware
	r.Use(s.corsMiddleware)

	r.HandleFunc("/", s.HealthHandler).Methods(http.MethodGet)
	r.HandleFunc("/rooms", s.CreateRoom).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/rooms-available", s.GetRoomsToJoin).Methods(http.MethodGet)
	r.HandleFunc("/ws", s.hub.HandleWebSocket)

	return r
}

// CORS middleware
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS, PATCH")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type")
		w.Header().Set("Access-Control-Allow-Credentials", "false")

		// If it's a websocket upgrade, skip further CORS checks
		if strings.ToLower(r.Header.Get("Upgrade")) == "websocket" {
			next.ServeHTTP(w, r)
			return
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeTimed(w, time.Now().UnixMilli(), http.StatusOK, map[string]string{"status": "ok"})
}

type createRoomRequest struct {
	Name          string            `json:"name"`
	Mode          internal.GameMode `json:"mode"`
	IsPublic      bool              `json:"is_public"`
	TotalRounds   int               `json:"total_rounds,omitempty"`
	RoundDuration int               `json:"round_duration_seconds,omitempty"`
	MaxPlayers    int               `json:"max_players,omitempty"`
}

// CreateRoom is the lobby-create flow: it mints a code, applies the
// per-mode defaults and persists the empty waiting room. The first joiner
// over the websocket becomes host.
func (s *Server) CreateRoom(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now().UnixMilli()

	var req createRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeTimed(w, startTime, http.StatusBadRequest, "invalid request body")
		return
	}
	if !req.Mode.Valid() {
		writeTimed(w, startTime, http.StatusBadRequest, "unknown game mode")
		return
	}

	settings := s.modes[req.Mode]
	room := &internal.Room{
		Code:                 utils.GenerateCode(roomCodeLength),
		Name:                 strings.TrimSpace(req.Name),
		Mode:                 req.Mode,
		Status:               internal.StatusWaiting,
		IsPublic:             req.IsPublic,
		Players:              make([]*internal.Player, 0),
		MaxPlayers:           settings.MaxPlayers,
		TotalRounds:          settings.TotalRounds,
		RoundDurationSeconds: settings.RoundSeconds,
		RoundHistory:         make([]*internal.RoundRecord, 0),
		CreatedAt:            time.Now(),
	}
	if req.TotalRounds > 0 && !req.Mode.Endless() {
		room.TotalRounds = req.TotalRounds
	}
	if req.RoundDuration > 0 {
		room.RoundDurationSeconds = req.RoundDuration
	}
	if req.MaxPlayers > 0 {
		room.MaxPlayers = req.MaxPlayers
	}
	if room.Name == "" {
		room.Name = room.Code
	}

	if err := s.store.Create(r.Context(), room); err != nil {
		log.Error().Err(err).Str("room", room.Code).Msg("room create failed")
		writeTimed(w, startTime, http.StatusInternalServerError, "could not create room")
		return
	}

	log.Info().Str("room", room.Code).Str("mode", string(room.Mode)).Msg("room created")
	writeTimed(w, startTime, http.StatusCreated, map[string]any{
		"code":                   room.Code,
		"name":                   room.Name,
		"mode":                   room.Mode,
		"max_players":            room.MaxPlayers,
		"total_rounds":           room.TotalRounds,
		"round_duration_seconds": room.RoundDurationSeconds,
	})
}

type availableRoom struct {
	Code        string            `json:"code"`
	Name        string            `json:"name"`
	Mode        internal.GameMode `json:"mode"`
	PlayerCount int               `json:"player_count"`
	MaxPlayers  int               `json:"max_players"`
}

// GetRoomsToJoin lists public rooms still waiting for players.
func (s *Server) GetRoomsToJoin(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now().UnixMilli()

	rooms, err := s.store.FindWaitingPublic(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("waiting-room listing failed")
		writeTimed(w, startTime, http.StatusInternalServerError, "could not list rooms")
		return
	}

	out := make([]availableRoom, 0, len(rooms))
	for _, room := range rooms {
		out = append(out, availableRoom{
			Code:        room.Code,
			Name:        room.Name,
			Mode:        room.Mode,
			PlayerCount: len(room.Players),
			MaxPlayers:  room.MaxPlayers,
		})
	}

	status := http.StatusOK
	if len(out) == 0 {
		status = http.StatusNotFound
	}
	writeTimed(w, startTime, status, out)
}

func writeTimed(w http.ResponseWriter, startTime int64, status int, data any) {
	endTime := time.Now().UnixMilli()
	resp := Response{
		StatusCode:    status,
		RespStartTime: startTime,
		RespEndTime:   endTime,
		NetRespTime:   endTime - startTime,
		Data:          data,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Error().Err(err).Msg("error encoding response")
	}
}
