// internal/config/config.go
//
// Process configuration for the matchup binaries.
// Responsibilities:
//   - Load .env (if present) and read settings from the environment.
//   - Load the optional YAML tuning file (step timings).
//
// Environment variables:
//   PORT=5175                     HTTP listen port
//   LOG_LEVEL=info                zerolog level
//   CLIENT_ORIGIN=http://localhost:5173
//   JWT_SECRET=...                session token signing key
//   JWT_EXPIRES_HOURS=12          session token lifetime
//   DAILY_SALT=...                daily challenge seed salt
//   THEMES_FILE=/path/themes.txt  catalog file (default: embedded)
//   THEMES_DB=./data/themes.db    SQLite catalog (seeded on first run)
//   TUNING_FILE=/path/tuning.yaml step timings

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/robalobadob/matchup/internal/game"
)

// Config is the resolved process configuration.
type Config struct {
	Port         string
	LogLevel     string
	ClientOrigin string
	JWTSecret    string
	JWTExpires   time.Duration
	DailySalt    string
	ThemesFile   string
	ThemesDB     string
	TuningFile   string
	Timings      game.Timings
}

// Tuning is the YAML tuning file layout. Omitted durations keep their
// defaults; durations use Go syntax ("1.5s", "500ms").
type Tuning struct {
	Timings game.Timings `yaml:"timings"`
}

// Load reads .env files (missing files are ignored) and the environment.
func Load(envFiles ...string) (Config, error) {
	_ = godotenv.Load(envFiles...)

	c := Config{
		Port:         getEnv("PORT", "5175"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		ClientOrigin: getEnv("CLIENT_ORIGIN", "http://localhost:5173"),
		JWTSecret:    getEnv("JWT_SECRET", "dev_secret_change_me"),
		DailySalt:    getEnv("DAILY_SALT", "local_dev_salt"),
		ThemesFile:   os.Getenv("THEMES_FILE"),
		ThemesDB:     os.Getenv("THEMES_DB"),
		TuningFile:   os.Getenv("TUNING_FILE"),
		Timings:      game.DefaultTimings(),
	}

	hours := 12
	if v := os.Getenv("JWT_EXPIRES_HOURS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return Config{}, fmt.Errorf("config: JWT_EXPIRES_HOURS %q: want a positive integer", v)
		}
		hours = n
	}
	c.JWTExpires = time.Duration(hours) * time.Hour

	if c.TuningFile != "" {
		t, err := LoadTuning(c.TuningFile)
		if err != nil {
			return Config{}, err
		}
		c.Timings = t
	}
	return c, nil
}

// LoadTuning reads step timings from a YAML file on top of the defaults.
func LoadTuning(path string) (game.Timings, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return game.Timings{}, fmt.Errorf("config: read tuning: %w", err)
	}
	t := Tuning{Timings: game.DefaultTimings()}
	if err := yaml.Unmarshal(b, &t); err != nil {
		return game.Timings{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return t.Timings, nil
}

// getEnv returns the value of k or def if unset/empty.
func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
