// internal/game/types.go
//
// Core type definitions for the match-up game engine.
// Defines:
//   - Difficulty: used both as the super mode and as the per-level mode.
//   - LevelState: current level (1..9) plus super mode.
//   - Verdict: outcome of a pick.
//   - Package-level game constants (row count, tray size, level bounds).

package game

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Difficulty is an ordered difficulty tier.
type Difficulty int

const (
	Easy Difficulty = iota
	Medium
	Hard
)

func (d Difficulty) String() string {
	switch d {
	case Easy:
		return "easy"
	case Medium:
		return "medium"
	case Hard:
		return "hard"
	}
	return fmt.Sprintf("difficulty(%d)", int(d))
}

// ParseDifficulty accepts "easy", "medium" or "hard" in any case.
func ParseDifficulty(s string) (Difficulty, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "easy", "":
		return Easy, nil
	case "medium":
		return Medium, nil
	case "hard":
		return Hard, nil
	}
	return Easy, fmt.Errorf("unknown difficulty %q", s)
}

// MarshalJSON encodes a Difficulty as its lowercase name.
func (d Difficulty) MarshalJSON() ([]byte, error) { return json.Marshal(d.String()) }

// UnmarshalJSON decodes a Difficulty from its name.
func (d *Difficulty) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	v, err := ParseDifficulty(s)
	if err != nil {
		return err
	}
	*d = v
	return nil
}

const (
	MinLevel = 1
	MaxLevel = 9

	// RowsPerLevel is the fixed number of rows built for every level.
	RowsPerLevel = 5
	// TraySize is the number of candidates offered for the active row.
	TraySize = 4
	// GridWidth is the shared slot grid every difficulty aligns to.
	GridWidth = 5
)

// LevelState is the player's position in the progression.
type LevelState struct {
	Level     int        `json:"level"`
	SuperMode Difficulty `json:"superMode"`
}

// Validate reports ErrInvalidLevel when Level is outside 1..9.
func (s LevelState) Validate() error {
	if s.Level < MinLevel || s.Level > MaxLevel {
		return fmt.Errorf("%w: %d", ErrInvalidLevel, s.Level)
	}
	if s.SuperMode < Easy || s.SuperMode > Hard {
		return fmt.Errorf("%w: super mode %d", ErrInvalidLevel, int(s.SuperMode))
	}
	return nil
}

func (s LevelState) String() string {
	return fmt.Sprintf("%s/%d", s.SuperMode, s.Level)
}

// Verdict is the result of judging a pick.
type Verdict string

const (
	Correct   Verdict = "correct"
	Incorrect Verdict = "incorrect"
)
