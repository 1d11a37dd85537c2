package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/scythe504/partyhub-backend/internal/config"
	"github.com/scythe504/partyhub-backend/internal/game"
	"github.com/scythe504/partyhub-backend/internal/store"
)

type Server struct {
	port  int
	hub   *game.Hub
	store store.RoomStore
	modes config.Modes
}

func NewServer(port int, hub *game.Hub, st store.RoomStore, modes config.Modes) *http.Server {
	s := &Server{
		port:  port,
		hub:   hub,
		store: st,
		modes: modes,
	}
	return &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}
