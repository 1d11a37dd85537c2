package game

import (
	"math"
	"slices"

	"github.com/scythe504/partyhub-backend/internal"
)

const (
	maxActionScore = 500
	minActionScore = 50

	// Penalty deltas for declined negotiated turns. Scores are not floored
	// at zero; repeated refusals go negative.
	skipDelta   = -1
	refuseDelta = -2
)

// Score awards points for a successful action, scaled linearly by the time
// remaining. Every success is worth at least the floor.
func Score(timeLeftSeconds, totalSeconds int) int {
	if totalSeconds <= 0 {
		return minActionScore
	}
	if timeLeftSeconds < 0 {
		timeLeftSeconds = 0
	}
	if timeLeftSeconds > totalSeconds {
		timeLeftSeconds = totalSeconds
	}
	s := int(math.Round(maxActionScore * float64(timeLeftSeconds) / float64(totalSeconds)))
	if s < minActionScore {
		return minActionScore
	}
	return s
}

// ActorBonus is the fractional credit the current actor earns whenever
// another player succeeds against their turn.
func ActorBonus(score int) int {
	return int(math.Round(float64(score) * 0.4))
}

// Leaderboard returns players sorted by score descending with 1-based
// positions.
func Leaderboard(room *internal.Room) []internal.LeaderboardEntry {
	entries := make([]internal.LeaderboardEntry, 0, len(room.Players))
	for _, p := range room.Players {
		if p == nil {
			continue
		}
		entries = append(entries, internal.LeaderboardEntry{
			Identity: p.Identity,
			Score:    p.Score,
		})
	}
	slices.SortFunc(entries, func(a, b internal.LeaderboardEntry) int {
		return b.Score - a.Score
	})
	for i := range entries {
		entries[i].Position = i + 1
	}
	return entries
}
