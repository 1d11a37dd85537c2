package game

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/scythe504/partyhub-backend/internal"
)

func TestScore(t *testing.T) {
	tests := []struct {
		name     string
		timeLeft int
		total    int
		want     int
	}{
		{"instant success", 80, 80, 500},
		{"last second", 0, 80, 50},
		{"halfway", 40, 80, 250},
		{"near-zero time still floors", 1, 80, 50},
		{"negative time clamps to floor", -5, 80, 50},
		{"time above total clamps to max", 90, 80, 500},
		{"zero total duration", 30, 0, 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Score(tt.timeLeft, tt.total))
		})
	}
}

func TestActorBonus(t *testing.T) {
	assert.Equal(t, 200, ActorBonus(500))
	assert.Equal(t, 100, ActorBonus(250))
	assert.Equal(t, 20, ActorBonus(50))
	assert.Equal(t, 1, ActorBonus(3))
	assert.Equal(t, 0, ActorBonus(0))
}

func TestLeaderboard(t *testing.T) {
	room := &internal.Room{
		Players: []*internal.Player{
			{ConnectionID: "a", Identity: "amy", Score: 120},
			{ConnectionID: "b", Identity: "ben", Score: 740},
			{ConnectionID: "c", Identity: "cal", Score: -3},
		},
	}
	entries := Leaderboard(room)
	assert.Equal(t, []internal.LeaderboardEntry{
		{Identity: "ben", Score: 740, Position: 1},
		{Identity: "amy", Score: 120, Position: 2},
		{Identity: "cal", Score: -3, Position: 3},
	}, entries)
}
