// internal/game/tray.go
//
// Selection tray: the 4 candidates offered for the active row.
// Responsibilities:
//   - Place the correct item at a uniformly random tray position.
//   - Draw 3 distractors by bounded rejection sampling under the tier's
//     uniqueness rules.
//   - Judge picks against the row's missing item.
//
// Tiers (tried in order by BuildSelectionTiered):
//   - Strict:  non-Hard, distractor themes differ from the row theme and
//              from each other; Hard, distractors come from the row theme.
//   - Relaxed: non-Hard, distractor themes only need to differ from the row
//              theme; Hard, distractors may come from any theme.
//   - Loose:   any theme.
// Every tier keeps the base invariants: exactly one candidate is the
// missing item, and no item identifier appears twice.

package game

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
)

// ThemeSource supplies theme names and their item pools.
type ThemeSource interface {
	ListThemes() []string
	ItemsForTheme(name string) ([]string, error)
}

// Candidate is one tray entry.
type Candidate struct {
	Item  string `json:"item"`
	Theme string `json:"theme"`
}

// Tier names how far the distractor constraints were relaxed.
type Tier int

const (
	TierStrict Tier = iota
	TierRelaxed
	TierLoose
)

func (t Tier) String() string {
	switch t {
	case TierStrict:
		return "strict"
	case TierRelaxed:
		return "relaxed"
	case TierLoose:
		return "loose"
	}
	return fmt.Sprintf("tier(%d)", int(t))
}

// SelectionSet is the tray for one row. Rebuilt each time a row activates.
type SelectionSet struct {
	Candidates   []Candidate `json:"candidates"`
	CorrectIndex int         `json:"-"`
	Tier         Tier        `json:"-"`
}

// Items lists the candidate identifiers in tray order.
func (s SelectionSet) Items() []string {
	out := make([]string, len(s.Candidates))
	for i, c := range s.Candidates {
		out[i] = c.Item
	}
	return out
}

// Contains reports whether item belongs to the tray: one of the generated
// candidates, or literally the row's missing item (an automatic placement
// may already have moved the correct candidate out of the tray).
func (s SelectionSet) Contains(item string, row *Row) bool {
	if row != nil && item == row.MissingItem() {
		return true
	}
	for _, c := range s.Candidates {
		if c.Item == item {
			return true
		}
	}
	return false
}

// Judge compares a pick with the row's missing item.
func Judge(pick string, row *Row) Verdict {
	if row != nil && pick == row.MissingItem() {
		return Correct
	}
	return Incorrect
}

// BuildSelection builds a strict-tier tray.
func BuildSelection(row *Row, src ThemeSource, super Difficulty, rng *rand.Rand) (SelectionSet, error) {
	return buildSelection(row, src, super, TierStrict, rng)
}

// BuildSelectionTiered tries each tier in turn and stops at the first that
// succeeds. Only exhaustion moves on to the next tier; any other error is
// returned as is.
func BuildSelectionTiered(row *Row, src ThemeSource, super Difficulty, rng *rand.Rand) (SelectionSet, error) {
	var lastErr error
	for _, tier := range []Tier{TierStrict, TierRelaxed, TierLoose} {
		set, err := buildSelection(row, src, super, tier, rng)
		if err == nil {
			return set, nil
		}
		if !errors.Is(err, ErrThemePoolExhausted) {
			return SelectionSet{}, err
		}
		lastErr = err
	}
	return SelectionSet{}, lastErr
}

func buildSelection(row *Row, src ThemeSource, super Difficulty, tier Tier, rng *rand.Rand) (SelectionSet, error) {
	themes := src.ListThemes()
	if len(themes) == 0 {
		return SelectionSet{}, fmt.Errorf("%w: catalog is empty", ErrThemePoolExhausted)
	}
	rowTheme := row.Theme()
	missing := row.MissingItem()

	set := SelectionSet{
		Candidates:   make([]Candidate, TraySize),
		CorrectIndex: rng.IntN(TraySize),
		Tier:         tier,
	}
	set.Candidates[set.CorrectIndex] = Candidate{Item: missing, Theme: rowTheme}

	usedItems := map[string]bool{missing: true}
	usedThemes := map[string]bool{}

	for i := range set.Candidates {
		if i == set.CorrectIndex {
			continue
		}
		c, err := drawDistractor(rowTheme, themes, src, super, tier, usedItems, usedThemes, rng)
		if err != nil {
			return SelectionSet{}, fmt.Errorf("%s tier, slot %d: %w", tier, i, err)
		}
		set.Candidates[i] = c
		usedItems[c.Item] = true
		usedThemes[c.Theme] = true
	}
	return set, nil
}

func drawDistractor(rowTheme string, themes []string, src ThemeSource, super Difficulty, tier Tier,
	usedItems, usedThemes map[string]bool, rng *rand.Rand) (Candidate, error) {

	for attempt := 0; attempt < MaxSelectionRetries; attempt++ {
		theme := themes[rng.IntN(len(themes))]
		switch {
		case super == Hard && tier == TierStrict:
			theme = rowTheme
		case super == Hard:
			// any theme
		case tier == TierStrict:
			if theme == rowTheme || usedThemes[theme] {
				continue
			}
		case tier == TierRelaxed:
			if theme == rowTheme {
				continue
			}
		}
		items, err := src.ItemsForTheme(theme)
		if err != nil {
			return Candidate{}, err
		}
		if len(items) == 0 {
			continue
		}
		item := items[rng.IntN(len(items))]
		if usedItems[item] {
			continue
		}
		return Candidate{Item: item, Theme: theme}, nil
	}
	return Candidate{}, ErrThemePoolExhausted
}

// validate checks the base tray invariants.
func (s SelectionSet) validate(row *Row) error {
	if len(s.Candidates) != TraySize {
		return fmt.Errorf("tray has %d candidates", len(s.Candidates))
	}
	items := s.Items()
	sorted := slices.Clone(items)
	slices.Sort(sorted)
	if len(slices.Compact(sorted)) != TraySize {
		return fmt.Errorf("duplicate item in tray %v", items)
	}
	correct := 0
	for _, c := range s.Candidates {
		if c.Item == row.MissingItem() && c.Theme == row.Theme() {
			correct++
		}
	}
	if correct != 1 {
		return fmt.Errorf("tray has %d correct candidates", correct)
	}
	return nil
}
