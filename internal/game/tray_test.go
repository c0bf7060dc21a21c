package game

import (
	"errors"
	"testing"
)

func rowFor(t *testing.T, src mapThemes, theme string, s LevelState, seed uint64) *Row {
	t.Helper()
	l, err := GenerateLayout(theme, src[theme], s, testRand(seed))
	if err != nil {
		t.Fatal(err)
	}
	return NewRow(0, l)
}

func TestSelectionInvariants(t *testing.T) {
	src := newThemes(8, 8)
	rng := testRand(42)
	for _, super := range []Difficulty{Easy, Medium, Hard} {
		for trial := 0; trial < 100; trial++ {
			row := rowFor(t, src, "t3", LevelState{Level: 3, SuperMode: super}, uint64(trial))
			set, err := BuildSelection(row, src, super, rng)
			if err != nil {
				t.Fatalf("%s: %v", super, err)
			}
			if err := set.validate(row); err != nil {
				t.Fatalf("%s: %v", super, err)
			}
			if set.Candidates[set.CorrectIndex].Item != row.MissingItem() {
				t.Fatalf("%s: correct index %d points at %q", super, set.CorrectIndex, set.Candidates[set.CorrectIndex].Item)
			}
			themes := map[string]bool{}
			for i, c := range set.Candidates {
				if i == set.CorrectIndex {
					continue
				}
				if super == Hard {
					if c.Theme != row.Theme() {
						t.Fatalf("hard distractor from %q", c.Theme)
					}
					continue
				}
				if c.Theme == row.Theme() || themes[c.Theme] {
					t.Fatalf("%s: distractor theme %q repeats in %+v", super, c.Theme, set.Candidates)
				}
				themes[c.Theme] = true
			}
		}
	}
}

func TestCorrectPositionIsUniform(t *testing.T) {
	src := newThemes(8, 8)
	rng := testRand(8)
	row := rowFor(t, src, "t0", LevelState{Level: 3, SuperMode: Easy}, 1)
	hits := make([]int, TraySize)
	for i := 0; i < 400; i++ {
		set, err := BuildSelection(row, src, Easy, rng)
		if err != nil {
			t.Fatal(err)
		}
		hits[set.CorrectIndex]++
	}
	for i, h := range hits {
		if h < 50 {
			t.Errorf("position %d chosen only %d/400 times", i, h)
		}
	}
}

func TestTieredFallback(t *testing.T) {
	// Only 3 themes: strict non-Hard needs 3 other themes, so it exhausts.
	src := newThemes(3, 8)
	row := rowFor(t, src, "t0", LevelState{Level: 3, SuperMode: Easy}, 4)

	if _, err := BuildSelection(row, src, Easy, testRand(1)); !errors.Is(err, ErrThemePoolExhausted) {
		t.Fatalf("strict tier should exhaust, got %v", err)
	}
	set, err := BuildSelectionTiered(row, src, Easy, testRand(1))
	if err != nil {
		t.Fatal(err)
	}
	if set.Tier != TierRelaxed {
		t.Fatalf("want relaxed tier, got %s", set.Tier)
	}
	if err := set.validate(row); err != nil {
		t.Fatal(err)
	}
	for i, c := range set.Candidates {
		if i != set.CorrectIndex && c.Theme == row.Theme() {
			t.Fatalf("relaxed tier used the row theme: %+v", set.Candidates)
		}
	}
}

func TestHardTieredFallbackLeavesRowTheme(t *testing.T) {
	src := newThemes(5, 8)
	src["t0"] = []string{"a", "b", "c"} // too few for 3 distinct distractors
	row := rowFor(t, src, "t0", LevelState{Level: 1, SuperMode: Hard}, 2)
	set, err := BuildSelectionTiered(row, src, Hard, testRand(3))
	if err != nil {
		t.Fatal(err)
	}
	if set.Tier == TierStrict {
		t.Fatal("strict tier cannot fit 3 distractors in a 3 item theme")
	}
	if err := set.validate(row); err != nil {
		t.Fatal(err)
	}
}

func TestJudgeAndContains(t *testing.T) {
	src := newThemes(6, 8)
	row := rowFor(t, src, "t1", LevelState{Level: 3, SuperMode: Easy}, 6)
	set, err := BuildSelection(row, src, Easy, testRand(6))
	if err != nil {
		t.Fatal(err)
	}
	if Judge(row.MissingItem(), row) != Correct {
		t.Fatal("missing item should be correct")
	}
	for i, c := range set.Candidates {
		if i == set.CorrectIndex {
			continue
		}
		if Judge(c.Item, row) != Incorrect {
			t.Fatalf("distractor %q judged correct", c.Item)
		}
		if !set.Contains(c.Item, row) {
			t.Fatalf("distractor %q not contained", c.Item)
		}
	}
	if set.Contains("nope", row) {
		t.Fatal("foreign item contained")
	}
}
