// internal/game/session.go
//
// GameSession: everything one player's run owns.
// Responsibilities:
//   - Hold the level state, the 5 rows of the current level, the active
//     row index, the current tray and the reel.
//   - Rebuild the level (pick distinct themes, lay out every row, clear
//     the reel).
//
// Notes:
//   - The session is plain data plus rebuild logic; sequencing lives in
//     the Controller, which is the only writer once play starts.

package game

import (
	"errors"
	"fmt"
	"math/rand/v2"
)

// Session is one player's game.
type Session struct {
	ID      string
	Level   LevelState
	Rows    []*Row
	Current int
	Tray    *SelectionSet
	Reel    Reel
	Themes  []string

	// counters for the current level
	Picks    int
	Mistakes int
	// LevelsCompleted counts finished levels across the session.
	LevelsCompleted int
}

// NewSession starts a session at the given level. An invalid level falls
// back to Easy level 1.
func NewSession(id string, level LevelState) *Session {
	if level.Validate() != nil {
		level = LevelState{Level: MinLevel, SuperMode: Easy}
	}
	return &Session{ID: id, Level: level}
}

// ActiveRow returns the row the player is working on, or nil before the
// first rebuild.
func (s *Session) ActiveRow() *Row {
	if s.Current < 0 || s.Current >= len(s.Rows) {
		return nil
	}
	return s.Rows[s.Current]
}

// IsLastRow reports whether the active row is the level's final row.
func (s *Session) IsLastRow() bool { return s.Current == len(s.Rows)-1 }

// Rebuild lays out a fresh level: clears the reel, picks RowsPerLevel
// distinct themes and generates one row per theme. Themes too small for
// the level's slot count are skipped in favour of another theme.
func (s *Session) Rebuild(src ThemeSource, rng *rand.Rand) error {
	if err := s.Level.Validate(); err != nil {
		return err
	}
	s.Reel.Clear()
	s.Rows = nil
	s.Themes = nil
	s.Current = 0
	s.Tray = nil
	s.Picks, s.Mistakes = 0, 0

	names := append([]string(nil), src.ListThemes()...)
	rng.Shuffle(len(names), func(i, j int) { names[i], names[j] = names[j], names[i] })

	var skipped []string
	for _, name := range names {
		if len(s.Rows) == RowsPerLevel {
			break
		}
		pool, err := src.ItemsForTheme(name)
		if err != nil {
			return fmt.Errorf("theme %q: %w", name, err)
		}
		layout, err := GenerateLayout(name, pool, s.Level, rng)
		if errors.Is(err, ErrInsufficientThemeItems) {
			skipped = append(skipped, name)
			continue
		}
		if err != nil {
			return err
		}
		if err := checkLayout(layout); err != nil {
			return fmt.Errorf("theme %q: %w", name, err)
		}
		s.Rows = append(s.Rows, NewRow(len(s.Rows), layout))
		s.Themes = append(s.Themes, name)
	}
	if len(s.Rows) < RowsPerLevel {
		n := len(s.Rows)
		s.Rows, s.Themes = nil, nil
		return fmt.Errorf("%w: have %d usable of %d (too small: %v)", ErrNotEnoughThemes, n, RowsPerLevel, skipped)
	}
	return nil
}

// snapshotActive builds the reel entry for the active row.
func (s *Session) snapshotActive(rng *rand.Rand) Snapshot {
	row := s.ActiveRow()
	return Snapshot{
		Row:   row.ID,
		Theme: row.Theme(),
		Item:  row.MissingItem(),
		Frame: rng.IntN(ReelFrames),
	}
}
