package store

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/robalobadob/matchup/internal/game"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) Now() time.Time { return f.t }

func themes() game.ThemeSource {
	m := themeMap{}
	for i := 0; i < 6; i++ {
		name := fmt.Sprintf("t%d", i)
		for j := 0; j < 6; j++ {
			m[name] = append(m[name], fmt.Sprintf("%s-%d", name, j))
		}
	}
	return m
}

type themeMap map[string][]string

func (m themeMap) ListThemes() []string {
	return []string{"t0", "t1", "t2", "t3", "t4", "t5"}
}

func (m themeMap) ItemsForTheme(name string) ([]string, error) {
	if items, ok := m[name]; ok {
		return items, nil
	}
	return nil, game.ErrUnknownTheme
}

func newEntry(id string, clock *fakeClock) *Entry {
	rec := game.NewRecorder()
	ctl := game.NewController(
		game.NewSession(id, game.LevelState{Level: 3, SuperMode: game.Easy}),
		themes(), game.WithPresenter(rec), game.WithSeed(1))
	return NewEntry(ctl, rec, clock.Now)
}

func TestEntryCatchesUpToWallClock(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	e := newEntry("a", clock)

	if err := e.Do(func(c *game.Controller) error { return c.Start() }); err != nil {
		t.Fatal(err)
	}
	if v := e.View(); !v.Locked {
		t.Fatal("reveal should hold the lock at t=0")
	}
	clock.t = clock.t.Add(10 * time.Second)
	v := e.View()
	if v.Locked || !v.TrayOpen || v.Now != 10*time.Second {
		t.Fatalf("after 10s: locked %v tray %v now %v", v.Locked, v.TrayOpen, v.Now)
	}
	if len(e.Events.All()) == 0 {
		t.Fatal("no commands recorded")
	}
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{t: time.Unix(0, 0)}
	st := &memory{sessions: map[string]*Entry{}, now: clock.Now}

	if _, err := st.Get(ctx, "x"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	a, b := newEntry("a", clock), newEntry("b", clock)
	_ = st.Save(ctx, a)
	_ = st.Save(ctx, b)
	if got, err := st.Get(ctx, "a"); err != nil || got != a {
		t.Fatalf("get a: %v %v", got, err)
	}

	clock.t = clock.t.Add(time.Hour)
	b.View() // touch b
	if n := st.Sweep(ctx, 30*time.Minute); n != 1 {
		t.Fatalf("swept %d", n)
	}
	if _, err := st.Get(ctx, "a"); !errors.Is(err, ErrNotFound) {
		t.Fatal("idle session survived sweep")
	}
	_ = st.Delete(ctx, "b")
	if _, err := st.Get(ctx, "b"); !errors.Is(err, ErrNotFound) {
		t.Fatal("delete failed")
	}
}
