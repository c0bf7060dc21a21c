package game

import (
	"errors"
	"slices"
	"testing"
	"time"
)

const patience = 30 * time.Second

func startSettled(t *testing.T, c *Controller) {
	t.Helper()
	if err := c.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	c.Settle()
	if c.State() != StatePlaying || c.Locked() || !c.TrayOpen() {
		t.Fatalf("after start: state %s locked %v tray %v", c.State(), c.Locked(), c.TrayOpen())
	}
}

func pickCorrect(t *testing.T, c *Controller) {
	t.Helper()
	v, err := c.Pick(c.Session().ActiveRow().MissingItem())
	if err != nil || v != Correct {
		t.Fatalf("pick: %v %v", v, err)
	}
}

func TestFullLevelEasy(t *testing.T) {
	c, rec := newTestController(t, LevelState{Level: 1, SuperMode: Easy}, newThemes(8, 8), 1)
	startSettled(t, c)

	for i := 0; i < RowsPerLevel; i++ {
		if got := c.Session().ActiveRow().ID; got != i {
			t.Fatalf("active row %d want %d", got, i)
		}
		pickCorrect(t, c)
		if !c.Locked() {
			t.Fatal("input should lock as soon as a pick lands")
		}
		if i == RowsPerLevel-1 {
			break
		}
		advanceUntil(t, c, patience, func() bool { return c.State() == StateShowImg })
		if c.Session().Reel.Len() != i+1 || c.Session().Reel.Cursor() != i {
			t.Fatalf("row %d: reel len %d cursor %d", i, c.Session().Reel.Len(), c.Session().Reel.Cursor())
		}
		// ShowImg leaves on its own after the dwell.
		advanceUntil(t, c, patience, func() bool {
			return c.State() == StatePlaying && !c.Busy() && c.TrayOpen()
		})
	}
	advanceUntil(t, c, patience, func() bool { return c.State() == StateShowReel && !c.Busy() })

	reel := c.Session().Reel.Items()
	if len(reel) != RowsPerLevel {
		t.Fatalf("reel has %d pictures", len(reel))
	}
	for i, s := range reel {
		if s.Row != i {
			t.Fatalf("reel out of solve order: %+v", reel)
		}
	}
	if c.Session().Reel.Cursor() != 0 {
		t.Fatal("final reel should open on the first picture")
	}
	if c.Session().Level != (LevelState{Level: 2, SuperMode: Easy}) {
		t.Fatalf("level not advanced: %s", c.Session().Level)
	}
	if c.Session().LevelsCompleted != 1 {
		t.Fatalf("levels completed %d", c.Session().LevelsCompleted)
	}

	var states []State
	for _, cmd := range rec.All() {
		if cmd.Kind == CmdState {
			states = append(states, cmd.State)
		}
	}
	want := []State{StatePlaying}
	for i := 0; i < RowsPerLevel-1; i++ {
		want = append(want, StateShowImg, StatePlaying)
	}
	want = append(want, StateShowReel)
	if !slices.Equal(states, want) {
		t.Fatalf("states %v\nwant %v", states, want)
	}
}

func TestCoverOrderingBetweenRows(t *testing.T) {
	c, rec := newTestController(t, LevelState{Level: 3, SuperMode: Easy}, newThemes(8, 8), 2)
	startSettled(t, c)
	rec.Reset()
	pickCorrect(t, c)
	advanceUntil(t, c, patience, func() bool { return c.State() == StatePlaying && !c.Busy() })

	cmds := rec.All()
	step := c.Timings().CoverStep()
	coverRow := findKind(cmds, CmdCoverRow, 0)
	coverTray := findKind(cmds, CmdCoverTray, 0)
	reveal := findKind(cmds, CmdRevealRow, 0)
	if coverRow < 0 || coverTray < 0 || reveal < 0 {
		t.Fatalf("missing commands: %v", rec.Kinds())
	}
	if !(coverRow < coverTray && coverTray < reveal) {
		t.Fatalf("bad order: %v", rec.Kinds())
	}
	if cmds[coverTray].At-cmds[coverRow].At < step {
		t.Fatalf("tray moved %v after row cover, want >= %v", cmds[coverTray].At-cmds[coverRow].At, step)
	}
	if cmds[reveal].At-cmds[coverTray].At < step {
		t.Fatalf("next row revealed %v after tray cover", cmds[reveal].At-cmds[coverTray].At)
	}
	if cmds[reveal].Row != 1 || cmds[coverRow].Row != 0 {
		t.Fatalf("rows: covered %d revealed %d", cmds[coverRow].Row, cmds[reveal].Row)
	}
}

func TestNextRowRejectedWhileBusy(t *testing.T) {
	c, _ := newTestController(t, LevelState{Level: 3, SuperMode: Easy}, newThemes(8, 8), 3)
	startSettled(t, c)

	pickCorrect(t, c)
	if err := c.NextRow(); !errors.Is(err, ErrTransitionInFlight) {
		t.Fatalf("NextRow during place: %v", err)
	}
	if _, err := c.Pick("anything"); !errors.Is(err, ErrInputLocked) {
		t.Fatalf("pick during transition: %v", err)
	}
	advanceUntil(t, c, patience, func() bool { return c.State() == StateShowImg && !c.Busy() })
	if c.Session().Current != 1 {
		t.Fatalf("index advanced to %d", c.Session().Current)
	}
	if err := c.NextRow(); !errors.Is(err, ErrBadTransition) {
		t.Fatalf("NextRow from show_img: %v", err)
	}
}

func TestNextRowNeedsASolvedRow(t *testing.T) {
	c, _ := newTestController(t, LevelState{Level: 3, SuperMode: Easy}, newThemes(8, 8), 3)
	startSettled(t, c)

	for i := 0; i < RowsPerLevel; i++ {
		if err := c.NextRow(); !errors.Is(err, ErrBadTransition) {
			t.Fatalf("NextRow %d on unsolved row: %v", i, err)
		}
		c.Settle()
	}
	s := c.Session()
	if c.State() != StatePlaying || s.Current != 0 || s.Reel.Len() != 0 {
		t.Fatalf("state %s current %d reel %d", c.State(), s.Current, s.Reel.Len())
	}
	if s.Level != (LevelState{Level: 3, SuperMode: Easy}) || s.LevelsCompleted != 0 {
		t.Fatalf("level moved to %s (%d completed)", s.Level, s.LevelsCompleted)
	}
}

func TestPickWhileTransitioningIsLocked(t *testing.T) {
	c, _ := newTestController(t, LevelState{Level: 3, SuperMode: Easy}, newThemes(8, 8), 4)
	startSettled(t, c)
	pickCorrect(t, c)
	if _, err := c.Pick(c.Session().ActiveRow().MissingItem()); !errors.Is(err, ErrInputLocked) {
		t.Fatalf("expected ErrInputLocked, got %v", err)
	}
	if err := c.NextRow(); !errors.Is(err, ErrTransitionInFlight) {
		t.Fatalf("expected ErrTransitionInFlight, got %v", err)
	}
}

func TestWrongPickReturnsItem(t *testing.T) {
	c, rec := newTestController(t, LevelState{Level: 3, SuperMode: Easy}, newThemes(8, 8), 5)
	startSettled(t, c)
	rec.Reset()

	v, err := c.Pick(wrongItem(t, c))
	if err != nil || v != Incorrect {
		t.Fatalf("pick: %v %v", v, err)
	}
	c.Settle()
	if c.State() != StatePlaying || c.Locked() || !c.TrayOpen() {
		t.Fatalf("after wrong pick: state %s locked %v", c.State(), c.Locked())
	}
	if c.Session().Mistakes != 1 || c.Session().Current != 0 {
		t.Fatalf("mistakes %d current %d", c.Session().Mistakes, c.Session().Current)
	}
	kinds := rec.Kinds()
	place := slices.Index(kinds, CmdPlaceItem)
	ret := slices.Index(kinds, CmdReturnItem)
	if place < 0 || ret < place {
		t.Fatalf("expected place then return: %v", kinds)
	}
	if _, err := c.Pick("not-in-tray"); !errors.Is(err, ErrNotInTray) {
		t.Fatalf("expected ErrNotInTray, got %v", err)
	}
}

func TestMediumRaisesClouds(t *testing.T) {
	c, rec := newTestController(t, LevelState{Level: 3, SuperMode: Medium}, newThemes(8, 8), 6)
	startSettled(t, c)

	tm := c.Timings()
	row := c.Session().ActiveRow()
	if row.State != RowObscured {
		t.Fatalf("row state %s", row.State)
	}
	if len(row.Visible()) != 0 {
		t.Fatal("items visible under clouds")
	}
	cmds := rec.All()
	clouds := findKind(cmds, CmdShowClouds, 0)
	uncover := findKind(cmds, CmdUncoverTray, 0)
	if clouds < 0 || uncover < clouds {
		t.Fatalf("clouds must rise before the tray opens: %v", rec.Kinds())
	}
	if d := cmds[clouds].Duration; d > tm.Cloud || d < tm.Cloud-tm.CloudRange {
		t.Fatalf("cloud rise %v outside window", d)
	}
	if cmds[uncover].At-cmds[clouds].At < tm.Cloud {
		t.Fatal("tray opened before clouds settled")
	}

	rec.Reset()
	pickCorrect(t, c)
	advanceUntil(t, c, patience, func() bool { return c.State() == StateShowImg })
	kinds := rec.Kinds()
	hide := slices.Index(kinds, CmdHideClouds)
	cover := slices.Index(kinds, CmdCoverRow)
	if hide < 0 || cover < hide {
		t.Fatalf("clouds should clear before the row covers: %v", kinds)
	}
}

func TestHardPreviewAndPeek(t *testing.T) {
	c, rec := newTestController(t, LevelState{Level: 1, SuperMode: Hard}, newThemes(8, 8), 7)
	if err := c.Start(); err != nil {
		t.Fatal(err)
	}
	if c.State() != StateTimer {
		t.Fatalf("hard start should enter timer, got %s", c.State())
	}
	row := c.Session().ActiveRow()
	advanceUntil(t, c, patience, func() bool { return row.MissingShown })
	if len(row.Visible()) != row.Layout.SlotCount {
		t.Fatalf("preview should show the full row: %v", row.Visible())
	}
	advanceUntil(t, c, patience, func() bool { return c.State() == StatePlaying && !c.Busy() })

	cmds := rec.All()
	first := findKind(cmds, CmdRevealRow, 0)
	if first < 0 || cmds[first].Item != row.MissingItem() {
		t.Fatal("preview reveal should carry the missing item")
	}
	cover := findKind(cmds, CmdCoverRow, first)
	remove := findKind(cmds, CmdRemoveItem, first)
	if cover < 0 || remove < cover {
		t.Fatalf("expected cover then remove: %v", rec.Kinds())
	}
	if cmds[cover].At-cmds[first].At < c.Timings().HardPreview {
		t.Fatal("preview window too short")
	}
	if !row.Covered || !c.TrayOpen() {
		t.Fatalf("after preview: covered %v tray %v", row.Covered, c.TrayOpen())
	}
	for _, cand := range c.Session().Tray.Candidates {
		if cand.Theme != row.Theme() {
			t.Fatalf("hard tray distractor from %q", cand.Theme)
		}
	}

	if err := c.Peek(); err != nil {
		t.Fatal(err)
	}
	c.Settle()
	if row.Covered || c.TrayOpen() {
		t.Fatal("peek should show the row and cover the tray")
	}
	if _, err := c.Pick(row.MissingItem()); !errors.Is(err, ErrTrayCovered) {
		t.Fatalf("expected ErrTrayCovered, got %v", err)
	}
	if err := c.Peek(); err != nil {
		t.Fatal(err)
	}
	c.Settle()
	if !row.Covered || !c.TrayOpen() {
		t.Fatal("second peek should restore the tray")
	}

	pickCorrect(t, c)
	advanceUntil(t, c, patience, func() bool { return c.State() == StateShowImg })
	advanceUntil(t, c, patience, func() bool { return c.State() == StateTimer })
	advanceUntil(t, c, patience, func() bool { return c.State() == StatePlaying && !c.Busy() })
	if c.Session().Current != 1 {
		t.Fatalf("current row %d", c.Session().Current)
	}
}

func TestPeekOutsideHard(t *testing.T) {
	c, _ := newTestController(t, LevelState{Level: 3, SuperMode: Easy}, newThemes(8, 8), 8)
	startSettled(t, c)
	if err := c.Peek(); !errors.Is(err, ErrBadTransition) {
		t.Fatalf("expected ErrBadTransition, got %v", err)
	}
}

func TestExitShowImgToMenu(t *testing.T) {
	c, _ := newTestController(t, LevelState{Level: 3, SuperMode: Easy}, newThemes(8, 8), 9)
	startSettled(t, c)
	pickCorrect(t, c)
	advanceUntil(t, c, patience, func() bool { return c.State() == StateShowImg && !c.Busy() })
	if err := c.ExitReel(false); err != nil {
		t.Fatal(err)
	}
	c.Settle()
	if c.State() != StateMenu || c.Locked() {
		t.Fatalf("state %s locked %v", c.State(), c.Locked())
	}
	if c.Session().Reel.Started() {
		t.Fatal("reel still showing")
	}
}

func playLevel(t *testing.T, c *Controller) {
	t.Helper()
	for i := 0; i < RowsPerLevel; i++ {
		pickCorrect(t, c)
		c.Settle()
	}
	if c.State() != StateShowReel {
		t.Fatalf("expected show_reel, got %s", c.State())
	}
}

func TestReelNavigationAndReplay(t *testing.T) {
	c, _ := newTestController(t, LevelState{Level: 3, SuperMode: Easy}, newThemes(8, 8), 10)
	startSettled(t, c)
	playLevel(t, c)

	moved, err := c.NavigateReel(Backward)
	if err != nil || moved {
		t.Fatalf("backward at start: moved=%v err=%v", moved, err)
	}
	moved, err = c.NavigateReel(Forward)
	if err != nil || !moved {
		t.Fatalf("forward: moved=%v err=%v", moved, err)
	}
	if _, err := c.NavigateReel(Forward); !errors.Is(err, ErrInputLocked) {
		t.Fatalf("expected ErrInputLocked during slide, got %v", err)
	}
	c.Advance(c.Timings().ReelMove)
	if c.Session().Reel.Cursor() != 1 || c.Locked() {
		t.Fatalf("cursor %d locked %v", c.Session().Reel.Cursor(), c.Locked())
	}

	if err := c.ExitReel(true); err != nil {
		t.Fatal(err)
	}
	c.Settle()
	s := c.Session()
	if c.State() != StatePlaying || s.Level != (LevelState{Level: 4, SuperMode: Easy}) {
		t.Fatalf("state %s level %s", c.State(), s.Level)
	}
	if s.Reel.Len() != 0 || s.Current != 0 || len(s.Rows) != RowsPerLevel {
		t.Fatalf("level not rebuilt: reel %d current %d rows %d", s.Reel.Len(), s.Current, len(s.Rows))
	}
	if s.Rows[0].Layout.SlotCount != 4 {
		t.Fatalf("level 4 should use 4 slots, got %d", s.Rows[0].Layout.SlotCount)
	}
}

func TestStartFailures(t *testing.T) {
	c, _ := newTestController(t, LevelState{Level: 1, SuperMode: Easy}, newThemes(3, 8), 11)
	if err := c.Start(); !errors.Is(err, ErrNotEnoughThemes) {
		t.Fatalf("expected ErrNotEnoughThemes, got %v", err)
	}
	if c.State() != StateMenu || c.Locked() {
		t.Fatalf("state %s locked %v", c.State(), c.Locked())
	}
	if _, err := c.Pick("x"); !errors.Is(err, ErrNotPlaying) {
		t.Fatalf("expected ErrNotPlaying, got %v", err)
	}

	c2, _ := newTestController(t, LevelState{Level: 1, SuperMode: Easy}, newThemes(8, 8), 12)
	if err := c2.Start(); err != nil {
		t.Fatal(err)
	}
	if err := c2.Start(); !errors.Is(err, ErrTransitionInFlight) {
		t.Fatalf("expected ErrTransitionInFlight, got %v", err)
	}
}

func TestQuitReturnsToMenu(t *testing.T) {
	c, _ := newTestController(t, LevelState{Level: 3, SuperMode: Easy}, newThemes(8, 8), 13)
	startSettled(t, c)
	if err := c.Quit(); err != nil {
		t.Fatal(err)
	}
	if c.State() != StateMenu || c.TrayOpen() {
		t.Fatalf("state %s tray %v", c.State(), c.TrayOpen())
	}
	startSettled(t, c)
}

func TestSeededRunsAreReproducible(t *testing.T) {
	a, _ := newTestController(t, LevelState{Level: 2, SuperMode: Easy}, newThemes(8, 8), 99)
	b, _ := newTestController(t, LevelState{Level: 2, SuperMode: Easy}, newThemes(8, 8), 99)
	startSettled(t, a)
	startSettled(t, b)
	for i := range a.Session().Rows {
		ra, rb := a.Session().Rows[i], b.Session().Rows[i]
		if ra.Theme() != rb.Theme() || ra.MissingItem() != rb.MissingItem() || ra.Layout.MissingSlot != rb.Layout.MissingSlot {
			t.Fatalf("row %d differs", i)
		}
	}
	if !slices.Equal(a.Session().Tray.Items(), b.Session().Tray.Items()) {
		t.Fatal("trays differ")
	}
}

func TestViewHidesMissingItem(t *testing.T) {
	c, _ := newTestController(t, LevelState{Level: 3, SuperMode: Easy}, newThemes(8, 8), 14)
	startSettled(t, c)
	v := c.View()
	if v.State != StatePlaying || len(v.Rows) != RowsPerLevel || len(v.Tray) != TraySize {
		t.Fatalf("view: %+v", v)
	}
	active := v.Rows[0]
	if active.MissingSlot == nil {
		t.Fatal("revealed row should expose its empty slot")
	}
	if _, ok := active.Visible[*active.MissingSlot]; ok {
		t.Fatal("missing item leaked into the view")
	}
	if len(v.Rows[1].Visible) != 0 || v.Rows[1].MissingSlot != nil {
		t.Fatal("hidden row leaked")
	}
}

// flakyThemes fails ItemsForTheme while failures is positive, counting down.
type flakyThemes struct {
	mapThemes
	failures int
}

var errBackend = errors.New("backend hiccup")

func (f *flakyThemes) ItemsForTheme(name string) ([]string, error) {
	if f.failures > 0 {
		f.failures--
		return nil, errBackend
	}
	return f.mapThemes.ItemsForTheme(name)
}

func TestTrayDealFailureRecovers(t *testing.T) {
	src := &flakyThemes{mapThemes: newThemes(8, 8)}
	c, _ := newTestController(t, LevelState{Level: 3, SuperMode: Easy}, src, 21)
	if err := c.Start(); err != nil {
		t.Fatal(err)
	}
	src.failures = 1 // the reveal's tray deal
	c.Settle()

	if !errors.Is(c.LastError(), errBackend) {
		t.Fatalf("last error %v", c.LastError())
	}
	if c.State() != StatePlaying || c.Locked() || c.Busy() {
		t.Fatalf("state %s locked %v busy %v", c.State(), c.Locked(), c.Busy())
	}
	if !c.TrayOpen() || c.Session().Tray == nil {
		t.Fatal("fell back to play without a tray")
	}
	pickCorrect(t, c)
	advanceUntil(t, c, patience, func() bool { return c.Session().Current == 1 && !c.Busy() })
}

func TestTrayDealFailureTwiceGoesToMenu(t *testing.T) {
	src := &flakyThemes{mapThemes: newThemes(8, 8)}
	c, _ := newTestController(t, LevelState{Level: 3, SuperMode: Easy}, src, 22)
	if err := c.Start(); err != nil {
		t.Fatal(err)
	}
	src.failures = 1 << 20
	c.Settle()

	if c.State() != StateMenu || c.Locked() || c.Busy() || c.TrayOpen() {
		t.Fatalf("state %s locked %v busy %v tray %v", c.State(), c.Locked(), c.Busy(), c.TrayOpen())
	}
	if !errors.Is(c.LastError(), errBackend) {
		t.Fatalf("last error %v", c.LastError())
	}

	src.failures = 0
	startSettled(t, c)
}

func TestReplayWithShrunkCatalogGoesToMenu(t *testing.T) {
	src := newThemes(8, 8)
	c, _ := newTestController(t, LevelState{Level: 3, SuperMode: Easy}, src, 23)
	startSettled(t, c)
	playLevel(t, c)

	for _, name := range []string{"t3", "t4", "t5", "t6", "t7"} {
		delete(src, name)
	}
	if err := c.ExitReel(true); err != nil {
		t.Fatal(err)
	}
	c.Settle()

	if c.State() != StateMenu || c.Locked() || c.Busy() {
		t.Fatalf("state %s locked %v busy %v", c.State(), c.Locked(), c.Busy())
	}
	if !errors.Is(c.LastError(), ErrNotEnoughThemes) {
		t.Fatalf("last error %v", c.LastError())
	}
	if c.View().LastError == "" {
		t.Fatal("view does not surface the error")
	}
	if _, err := c.Pick("t0-0"); !errors.Is(err, ErrNotPlaying) {
		t.Fatalf("pick in menu: %v", err)
	}
}
