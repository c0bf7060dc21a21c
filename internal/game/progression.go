// internal/game/progression.go
//
// Level progression and difficulty policy. Everything here is a pure
// function of LevelState (plus a random source for the one randomized
// duplicate budget).
//
// Narrative:
//   - Easy/Medium super modes: levels 1-3 show 5 items, 4-6 show 4, 7-9
//     show 3. Within a band: all same, some variable, all different.
//   - Hard super mode reverses the bands (3, then 4, then 5 items), since
//     remembering 1 of 3 is easier than 1 of 5.

package game

import "math/rand/v2"

// AdvanceLevel returns the state after finishing a level. Past level 9 the
// level wraps to 1 and the super mode escalates (Hard stays Hard).
func AdvanceLevel(s LevelState) LevelState {
	s.Level++
	if s.Level > MaxLevel {
		s.Level = MinLevel
		switch s.SuperMode {
		case Easy:
			s.SuperMode = Medium
		case Medium:
			s.SuperMode = Hard
		}
	}
	return s
}

// ModeForLevel maps a level to its per-level difficulty.
func ModeForLevel(s LevelState) (Difficulty, error) {
	if err := s.Validate(); err != nil {
		return Easy, err
	}
	band := Difficulty((s.Level - 1) / 3) // 0,1,2
	if s.SuperMode == Hard {
		return Hard - band, nil
	}
	return band, nil
}

// VariabilityForLevel reports the fraction of distinct items for a level.
func VariabilityForLevel(s LevelState) (float64, error) {
	if err := s.Validate(); err != nil {
		return 0, err
	}
	if s.SuperMode == Hard {
		switch {
		case s.Level < 4:
			return 0, nil
		case s.Level < 7:
			return ItemsVariability, nil
		}
		return 1, nil
	}
	switch s.Level {
	case 1, 4:
		return 0, nil
	case 2, 5:
		return ItemsVariability, nil
	}
	return 1, nil
}

// SlotsForMode returns how many slots a row has and where they start on
// the shared grid, so every mode lines up right-aligned.
func SlotsForMode(d Difficulty) (count, offset int) {
	switch d {
	case Medium:
		return 4, 1
	case Hard:
		return 3, 2
	}
	return 5, 0
}

// DuplicateBudget is the number of extra slots that repeat the anchor
// item. Zero means every slot holds a distinct item.
func DuplicateBudget(s LevelState, slotCount int, rng *rand.Rand) (int, error) {
	mode, err := ModeForLevel(s)
	if err != nil {
		return 0, err
	}
	budget := 0
	switch {
	case s.SuperMode == Hard:
		switch {
		case s.Level < 4:
			budget = 0
		case s.Level < 7:
			budget = 1
		default:
			budget = 2
		}
	case mode == Hard, s.Level == 3, s.Level == 6:
		budget = 0
	case s.Level == 1, s.Level == 4:
		budget = slotCount - 1
	default:
		budget = 2 + rng.IntN(2)
	}
	if budget > slotCount-1 {
		budget = slotCount - 1
	}
	if budget < 0 {
		budget = 0
	}
	return budget, nil
}
