package game

import (
	"fmt"
	"math/rand/v2"
	"sort"
	"testing"
	"time"
)

// mapThemes is an in-memory ThemeSource.
type mapThemes map[string][]string

func (m mapThemes) ListThemes() []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (m mapThemes) ItemsForTheme(name string) ([]string, error) {
	items, ok := m[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTheme, name)
	}
	return items, nil
}

// newThemes builds n themes of size items each, named t0..tn with items
// "t0-0", "t0-1", ...
func newThemes(n, size int) mapThemes {
	m := mapThemes{}
	for i := 0; i < n; i++ {
		name := fmt.Sprintf("t%d", i)
		for j := 0; j < size; j++ {
			m[name] = append(m[name], fmt.Sprintf("%s-%d", name, j))
		}
	}
	return m
}

func testRand(seed uint64) *rand.Rand { return rand.New(rand.NewPCG(seed, seed+1)) }

// newTestController returns a controller on a fresh session plus the
// recorder that sees its commands.
func newTestController(t *testing.T, level LevelState, src ThemeSource, seed uint64) (*Controller, *Recorder) {
	t.Helper()
	rec := NewRecorder()
	c := NewController(NewSession("test", level), src, WithPresenter(rec), WithSeed(seed))
	return c, rec
}

// advanceUntil steps virtual time in small increments until cond holds.
func advanceUntil(t *testing.T, c *Controller, limit time.Duration, cond func() bool) {
	t.Helper()
	const tick = 50 * time.Millisecond
	for waited := time.Duration(0); waited <= limit; waited += tick {
		if cond() {
			return
		}
		c.Advance(tick)
	}
	if !cond() {
		t.Fatalf("condition not met within %v (state %s, busy %v)", limit, c.State(), c.Busy())
	}
}

func wrongItem(t *testing.T, c *Controller) string {
	t.Helper()
	missing := c.Session().ActiveRow().MissingItem()
	for _, cand := range c.Session().Tray.Candidates {
		if cand.Item != missing {
			return cand.Item
		}
	}
	t.Fatal("tray has no distractor")
	return ""
}

func findKind(cmds []Command, kind CommandKind, from int) int {
	for i := from; i < len(cmds); i++ {
		if cmds[i].Kind == kind {
			return i
		}
	}
	return -1
}
