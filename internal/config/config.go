package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/scythe504/partyhub-backend/internal"
)

// Config is the process-level configuration, loaded from the environment
// (godotenv is applied in main before this runs).
type Config struct {
	Port        int
	DatabaseURL string
	LogLevel    string
	ModesFile   string
}

func Load() Config {
	return Config{
		Port:        getEnvAsInt("PORT", 8080),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		ModesFile:   getEnv("MODES_FILE", ""),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// ModeSettings are the per-mode round defaults applied at room creation.
type ModeSettings struct {
	RoundSeconds int `yaml:"round_seconds"`
	TotalRounds  int `yaml:"total_rounds"`
	MaxPlayers   int `yaml:"max_players"`
	MinPlayers   int `yaml:"min_players"`
}

type Modes map[internal.GameMode]ModeSettings

// DefaultModes returns the built-in settings. Endless modes carry
// TotalRounds 0: the orchestrator never compares against it.
func DefaultModes() Modes {
	return Modes{
		internal.ModeDrawing: {
			RoundSeconds: int(internal.DefaultRoundDuration.Seconds()),
			TotalRounds:  internal.DefaultTotalRounds,
			MaxPlayers:   internal.DefaultMaxPlayers,
			MinPlayers:   internal.MinPlayersScored,
		},
		internal.ModeTruthOrDare: {
			RoundSeconds: 60,
			MaxPlayers:   internal.DefaultMaxPlayers,
			MinPlayers:   internal.MinPlayersScored,
		},
		internal.ModeBottleSpin: {
			RoundSeconds: 60,
			MaxPlayers:   internal.DefaultMaxPlayers,
			MinPlayers:   internal.MinPlayersScored,
		},
		internal.ModeWatchTogether: {
			MaxPlayers: 12,
			MinPlayers: 1,
		},
	}
}

// LoadModes overlays settings from a yaml file onto the defaults. An empty
// path returns the defaults unchanged.
func LoadModes(path string) (Modes, error) {
	modes := DefaultModes()
	if path == "" {
		return modes, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read modes file: %w", err)
	}
	var overlay Modes
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return nil, fmt.Errorf("failed to parse modes file: %w", err)
	}
	for mode, settings := range overlay {
		if !mode.Valid() {
			return nil, fmt.Errorf("unknown game mode %q in modes file", mode)
		}
		base := modes[mode]
		if settings.RoundSeconds > 0 {
			base.RoundSeconds = settings.RoundSeconds
		}
		if settings.TotalRounds > 0 {
			base.TotalRounds = settings.TotalRounds
		}
		if settings.MaxPlayers > 0 {
			base.MaxPlayers = settings.MaxPlayers
		}
		if settings.MinPlayers > 0 {
			base.MinPlayers = settings.MinPlayers
		}
		modes[mode] = base
	}
	return modes, nil
}
