// internal/game/layout.go
//
// Row layout generation.
// Responsibilities:
//   - Pick which slots a row occupies (count and offset from the level mode).
//   - Decide how many slots repeat one anchor item (duplicate budget).
//   - Draw the remaining items from the theme pool without replacement.
//   - Scatter items over the slots and choose the missing slot.
//
// Notes:
//   - The caller's pool is never mutated; a private copy is consumed.
//   - The missing slot is a separate uniform draw over all filled slots,
//     independent of the order items were placed in.

package game

import (
	"fmt"
	"math/rand/v2"
	"sort"
)

// RowLayout is one generated row.
type RowLayout struct {
	Theme           string         `json:"theme"`
	SlotCount       int            `json:"slotCount"`
	StartOffset     int            `json:"startOffset"`
	ItemAt          map[int]string `json:"itemAt"` // visible slots only
	MissingSlot     int            `json:"-"`
	MissingItem     string         `json:"-"`
	Variability     float64        `json:"variability"`
	DuplicateBudget int            `json:"duplicateBudget"`
}

// Slots returns the row's slot indices in grid order.
func (l RowLayout) Slots() []int {
	out := make([]int, l.SlotCount)
	for i := range out {
		out[i] = l.StartOffset + i
	}
	return out
}

// Items returns every underlying item (visible plus missing) in slot order.
func (l RowLayout) Items() []string {
	out := make([]string, 0, l.SlotCount)
	for _, s := range l.Slots() {
		if s == l.MissingSlot {
			out = append(out, l.MissingItem)
			continue
		}
		out = append(out, l.ItemAt[s])
	}
	return out
}

// GenerateLayout builds a row for theme at the given level.
func GenerateLayout(theme string, pool []string, s LevelState, rng *rand.Rand) (RowLayout, error) {
	mode, err := ModeForLevel(s)
	if err != nil {
		return RowLayout{}, err
	}
	variability, err := VariabilityForLevel(s)
	if err != nil {
		return RowLayout{}, err
	}
	count, offset := SlotsForMode(mode)
	if len(pool) < count {
		return RowLayout{}, fmt.Errorf("%w: %q has %d, need %d", ErrInsufficientThemeItems, theme, len(pool), count)
	}
	budget, err := DuplicateBudget(s, count, rng)
	if err != nil {
		return RowLayout{}, err
	}

	remaining := append([]string(nil), pool...)
	draw := func() string {
		i := rng.IntN(len(remaining))
		item := remaining[i]
		remaining = append(remaining[:i], remaining[i+1:]...)
		return item
	}

	// anchor copies first, then distinct fill.
	items := make([]string, 0, count)
	if budget > 0 {
		anchor := draw()
		for i := 0; i <= budget; i++ {
			items = append(items, anchor)
		}
	}
	for len(items) < count {
		items = append(items, draw())
	}

	slots := make([]int, count)
	for i := range slots {
		slots[i] = offset + i
	}
	perm := rng.Perm(count)
	placed := make(map[int]string, count)
	for i, item := range items {
		placed[slots[perm[i]]] = item
	}

	missingSlot := slots[rng.IntN(count)]
	layout := RowLayout{
		Theme:           theme,
		SlotCount:       count,
		StartOffset:     offset,
		ItemAt:          make(map[int]string, count-1),
		MissingSlot:     missingSlot,
		MissingItem:     placed[missingSlot],
		Variability:     variability,
		DuplicateBudget: budget,
	}
	for slot, item := range placed {
		if slot != missingSlot {
			layout.ItemAt[slot] = item
		}
	}
	return layout, nil
}

// checkLayout verifies the row invariants; used by tests and by the
// session as a guard after generation.
func checkLayout(l RowLayout) error {
	if l.StartOffset+l.SlotCount != GridWidth {
		return fmt.Errorf("row does not end on grid edge: offset %d count %d", l.StartOffset, l.SlotCount)
	}
	if len(l.ItemAt) != l.SlotCount-1 {
		return fmt.Errorf("expected %d visible slots, got %d", l.SlotCount-1, len(l.ItemAt))
	}
	if _, ok := l.ItemAt[l.MissingSlot]; ok {
		return fmt.Errorf("missing slot %d is filled", l.MissingSlot)
	}
	if l.MissingSlot < l.StartOffset || l.MissingSlot >= l.StartOffset+l.SlotCount {
		return fmt.Errorf("missing slot %d outside row", l.MissingSlot)
	}
	counts := map[string]int{}
	for _, it := range l.Items() {
		counts[it]++
	}
	repeated := 0
	for _, c := range counts {
		if c > 1 {
			repeated++
		}
	}
	if repeated > 1 {
		keys := make([]string, 0, len(counts))
		for k := range counts {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return fmt.Errorf("more than one repeated item in %v", keys)
	}
	return nil
}
