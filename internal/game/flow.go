// internal/game/flow.go
//
// GameFlowController: the state machine that sequences play.
// Responsibilities:
//   - Own the game states (menu, playing, show_img, timer, show_reel) and
//     the legal transitions between them.
//   - Start multi-step sequences on the scheduler and hold the input lock
//     for their whole duration.
//   - Reject player input and new transitions while a sequence runs.
//   - Fall back to a stable state when a sequence step fails.
//
// Notes:
//   - Single-threaded: every method must be called from the goroutine that
//     advances the scheduler (hosts serialize access themselves).
//   - The sequences themselves live in flow_steps.go.

package game

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/looplab/fsm"
	"github.com/rs/zerolog"

	"github.com/robalobadob/matchup/internal/timeline"
)

// State is a game-flow state.
type State string

const (
	StateMenu     State = "menu"
	StatePlaying  State = "playing"
	StateShowImg  State = "show_img"
	StateTimer    State = "timer"
	StateShowReel State = "show_reel"
)

const (
	evStart       = "start"
	evStartTimed  = "start_timed"
	evRowDone     = "row_done"
	evLevelDone   = "level_done"
	evResume      = "resume"
	evCountdown   = "countdown"
	evTimerDone   = "timer_done"
	evReplay      = "replay"
	evReplayTimed = "replay_timed"
	evQuit        = "quit"
	evFallback    = "fallback"
)

func flowEvents() fsm.Events {
	menu, playing := string(StateMenu), string(StatePlaying)
	showImg, timer, showReel := string(StateShowImg), string(StateTimer), string(StateShowReel)
	return fsm.Events{
		{Name: evStart, Src: []string{menu}, Dst: playing},
		{Name: evStartTimed, Src: []string{menu}, Dst: timer},
		{Name: evRowDone, Src: []string{playing}, Dst: showImg},
		{Name: evLevelDone, Src: []string{playing}, Dst: showReel},
		{Name: evResume, Src: []string{showImg}, Dst: playing},
		{Name: evCountdown, Src: []string{showImg}, Dst: timer},
		{Name: evTimerDone, Src: []string{timer}, Dst: playing},
		{Name: evReplay, Src: []string{showReel}, Dst: playing},
		{Name: evReplayTimed, Src: []string{showReel}, Dst: timer},
		{Name: evQuit, Src: []string{playing, showImg, timer, showReel}, Dst: menu},
		{Name: evFallback, Src: []string{showImg, timer, showReel}, Dst: playing},
	}
}

// Controller drives one Session.
type Controller struct {
	sess    *Session
	themes  ThemeSource
	out     Presenter
	sched   *timeline.Scheduler
	rng     *rand.Rand
	timings Timings
	log     zerolog.Logger
	flow    *fsm.FSM

	busy     bool   // a top-level sequence is running
	locked   bool   // player input is gated
	running  string // name of the running sequence
	trayOpen bool
	rowShown bool // Hard: row uncovered instead of the tray
	dwell    *timeline.Timer
	seq      int
	lastErr  error
}

// Option configures a Controller.
type Option func(*Controller)

// WithTimings overrides the default step delays.
func WithTimings(t Timings) Option { return func(c *Controller) { c.timings = t.withDefaults() } }

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option { return func(c *Controller) { c.log = l } }

// WithPresenter sets where commands go.
func WithPresenter(p Presenter) Option { return func(c *Controller) { c.out = p } }

// WithScheduler shares an existing scheduler.
func WithScheduler(s *timeline.Scheduler) Option { return func(c *Controller) { c.sched = s } }

// WithRand injects the random source.
func WithRand(r *rand.Rand) Option { return func(c *Controller) { c.rng = r } }

// WithSeed seeds a fresh PCG source.
func WithSeed(seed uint64) Option {
	return func(c *Controller) { c.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)) }
}

// NewController wires a controller in the menu state.
func NewController(sess *Session, themes ThemeSource, opts ...Option) *Controller {
	c := &Controller{
		sess:    sess,
		themes:  themes,
		timings: DefaultTimings(),
		log:     zerolog.Nop(),
	}
	for _, o := range opts {
		o(c)
	}
	if c.sched == nil {
		c.sched = timeline.New()
	}
	if c.rng == nil {
		c.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if c.out == nil {
		c.out = PresenterFunc(func(Command) {})
	}
	c.log = c.log.With().Str("session", sess.ID).Logger()
	c.flow = fsm.NewFSM(string(StateMenu), flowEvents(), fsm.Callbacks{
		"enter_state": func(_ context.Context, e *fsm.Event) {
			c.log.Debug().Str("from", e.Src).Str("to", e.Dst).Str("event", e.Event).Msg("state")
			c.emit(Command{Kind: CmdState, State: State(e.Dst)})
		},
	})
	return c
}

// State reports the current flow state.
func (c *Controller) State() State { return State(c.flow.Current()) }

// Session exposes the controlled session.
func (c *Controller) Session() *Session { return c.sess }

// Locked reports whether player input is currently gated.
func (c *Controller) Locked() bool { return c.locked }

// Busy reports whether a transition sequence is running.
func (c *Controller) Busy() bool { return c.busy }

// TrayOpen reports whether the tray is uncovered and accepting picks.
func (c *Controller) TrayOpen() bool { return c.trayOpen }

// LastError returns the last sequence failure, if any.
func (c *Controller) LastError() error { return c.lastErr }

// Timings returns the active step delays.
func (c *Controller) Timings() Timings { return c.timings }

// Now reports scheduler time.
func (c *Controller) Now() time.Duration { return c.sched.Now() }

// Advance moves the scheduler forward by d.
func (c *Controller) Advance(d time.Duration) int { return c.sched.Advance(d) }

// AdvanceTo moves the scheduler to absolute time t.
func (c *Controller) AdvanceTo(t time.Duration) int { return c.sched.AdvanceTo(t) }

// Settle runs every pending step. Meant for tests and headless hosts.
func (c *Controller) Settle() int { return c.sched.Drain(10000) }

// Start builds the level and reveals its first row.
func (c *Controller) Start() error {
	if c.busy {
		return ErrTransitionInFlight
	}
	if c.State() != StateMenu {
		return fmt.Errorf("%w: start from %s", ErrBadTransition, c.State())
	}
	if err := c.sess.Rebuild(c.themes, c.rng); err != nil {
		c.log.Error().Err(err).Str("level", c.sess.Level.String()).Msg("build level")
		c.lastErr = err
		return err
	}
	c.log.Info().Str("level", c.sess.Level.String()).Strs("themes", c.sess.Themes).Msg("level built")
	if c.sess.Level.SuperMode == Hard {
		if err := c.fire(evStartTimed); err != nil {
			return err
		}
		c.run("preview", c.previewSteps(), nil)
		return nil
	}
	if err := c.fire(evStart); err != nil {
		return err
	}
	c.run("reveal", c.revealSteps(), nil)
	return nil
}

// Pick submits the player's choice for the active row. The verdict is
// returned immediately; the placement animation and any follow-up
// transition run on the scheduler.
func (c *Controller) Pick(item string) (Verdict, error) {
	if c.locked {
		return Incorrect, ErrInputLocked
	}
	if c.busy {
		return Incorrect, ErrTransitionInFlight
	}
	if c.State() != StatePlaying {
		return Incorrect, ErrNotPlaying
	}
	if !c.trayOpen || c.sess.Tray == nil {
		return Incorrect, ErrTrayCovered
	}
	row := c.sess.ActiveRow()
	if !c.sess.Tray.Contains(item, row) {
		return Incorrect, fmt.Errorf("%w: %q", ErrNotInTray, item)
	}
	c.sess.Picks++
	verdict := Judge(item, row)
	c.log.Debug().Str("item", item).Str("verdict", string(verdict)).Int("row", row.ID).Msg("pick")
	if verdict == Correct {
		c.run("place", c.placeSteps(item), c.runNextRow)
		return verdict, nil
	}
	c.sess.Mistakes++
	c.run("return", c.wrongSteps(item), nil)
	return verdict, nil
}

// NextRow closes the solved row and moves on: to the per-row picture when
// more rows remain, to the full reel after the last row. A call while
// another transition is running is rejected, as is one on a row that has
// not been solved.
func (c *Controller) NextRow() error {
	if c.busy {
		return ErrTransitionInFlight
	}
	if c.State() != StatePlaying {
		return fmt.Errorf("%w: next row from %s", ErrBadTransition, c.State())
	}
	if row := c.sess.ActiveRow(); row == nil || !row.Completed {
		return fmt.Errorf("%w: active row is not solved", ErrBadTransition)
	}
	c.runNextRow()
	return nil
}

func (c *Controller) runNextRow() {
	if c.sess.IsLastRow() {
		c.run("end_game", c.endGameSteps(), nil)
		return
	}
	c.run("close_row", c.closeRowSteps(), c.armDwell)
}

// Peek swaps which of row and tray is uncovered. Hard mode only.
func (c *Controller) Peek() error {
	if c.locked {
		return ErrInputLocked
	}
	if c.busy {
		return ErrTransitionInFlight
	}
	if c.sess.Level.SuperMode != Hard || c.State() != StatePlaying {
		return fmt.Errorf("%w: peek needs hard mode play", ErrBadTransition)
	}
	c.run("switch_covers", c.switchSteps(), nil)
	return nil
}

// NavigateReel slides the reel one picture in dir. It reports whether the
// reel moved; at either end it stays put without error.
func (c *Controller) NavigateReel(dir Direction) (bool, error) {
	if c.locked {
		return false, ErrInputLocked
	}
	if c.busy {
		return false, ErrTransitionInFlight
	}
	if st := c.State(); st != StateShowImg && st != StateShowReel {
		return false, ErrReelNotShown
	}
	moved, err := c.sess.Reel.Move(dir)
	if err != nil || !moved {
		return moved, err
	}
	c.run("slide_reel", []timeline.Step{
		{Name: "slide", Run: func() error {
			c.emit(Command{Kind: CmdSlideReel, Dir: dir, Cursor: c.sess.Reel.Cursor(), Duration: c.timings.ReelMove})
			return nil
		}, Wait: c.timings.ReelMove},
		timeline.Do("settle", func() error { c.sess.Reel.Settle(); return nil }),
	}, nil)
	return true, nil
}

// ExitReel leaves the reel. From the per-row picture, replay continues
// with the next row and !replay quits to the menu. From the full reel,
// replay builds the next level and !replay returns to the menu.
func (c *Controller) ExitReel(replay bool) error {
	if c.locked {
		return ErrInputLocked
	}
	if c.busy {
		return ErrTransitionInFlight
	}
	st := c.State()
	if st != StateShowImg && st != StateShowReel {
		return ErrReelNotShown
	}
	c.stopDwell()
	c.run("exit_reel", c.exitReelSteps(st, replay), func() { c.afterReel(st, replay) })
	return nil
}

// Quit abandons the level and returns to the menu.
func (c *Controller) Quit() error {
	if c.busy {
		return ErrTransitionInFlight
	}
	if c.State() == StateMenu {
		return nil
	}
	c.stopDwell()
	c.sess.Reel.End()
	c.trayOpen = false
	return c.fire(evQuit)
}

func (c *Controller) afterReel(from State, replay bool) {
	switch {
	case !replay:
		if err := c.fire(evQuit); err != nil {
			c.fail("exit_reel", err)
			return
		}
		c.end("exit_reel")
	case from == StateShowReel:
		if err := c.sess.Rebuild(c.themes, c.rng); err != nil {
			c.fail("rebuild", err)
			return
		}
		c.log.Info().Str("level", c.sess.Level.String()).Strs("themes", c.sess.Themes).Msg("level built")
		if c.sess.Level.SuperMode == Hard {
			c.chain(evReplayTimed, "preview", c.previewSteps())
			return
		}
		c.chain(evReplay, "reveal", c.revealSteps())
	default:
		if c.sess.Level.SuperMode == Hard {
			c.chain(evCountdown, "preview", c.previewSteps())
			return
		}
		c.chain(evResume, "reveal", c.revealSteps())
	}
}

func (c *Controller) chain(event, name string, steps []timeline.Step) {
	if err := c.fire(event); err != nil {
		c.fail(name, err)
		return
	}
	c.run(name, steps, nil)
}

// armDwell schedules the automatic exit from the per-row picture.
func (c *Controller) armDwell() {
	c.end("close_row")
	c.scheduleDwell(c.timings.ShowImgDwell)
}

func (c *Controller) scheduleDwell(d time.Duration) {
	c.dwell = c.sched.After(d, func() {
		c.dwell = nil
		if c.State() != StateShowImg {
			return
		}
		if c.busy {
			// a reel slide is still running; try again once it settles
			c.scheduleDwell(c.timings.ReelMove)
			return
		}
		if err := c.ExitReel(true); err != nil {
			c.log.Warn().Err(err).Msg("auto exit reel")
		}
	})
}

func (c *Controller) stopDwell() {
	if c.dwell != nil {
		c.sched.Stop(c.dwell)
		c.dwell = nil
	}
}

// run starts a sequence with input locked; done (or end) releases it.
// The lock goes on before the first step is issued.
func (c *Controller) run(name string, steps []timeline.Step, then func()) {
	c.begin(name)
	c.sched.Run(steps, func(err error) {
		if err != nil {
			c.fail(name, err)
			return
		}
		if then != nil {
			then()
			return
		}
		c.end(name)
	})
}

func (c *Controller) begin(name string) {
	c.busy = true
	c.running = name
	c.setLocked(true)
}

func (c *Controller) end(name string) {
	c.busy = false
	c.running = ""
	c.setLocked(false)
	c.log.Debug().Str("sequence", name).Dur("at", c.sched.Now()).Msg("settled")
}

func (c *Controller) setLocked(v bool) {
	if c.locked == v {
		return
	}
	c.locked = v
	c.emit(Command{Kind: CmdLock, Locked: v})
}

// fail handles a sequence error. Configuration errors drop back to the
// menu; anything else resumes play on the current row, dealing a fresh
// tray when the failed step left none. If that deal fails too the session
// goes to the menu as well.
func (c *Controller) fail(name string, err error) {
	c.lastErr = err
	c.log.Error().Err(err).Str("sequence", name).Msg("sequence failed")
	c.stopDwell()
	c.sess.Reel.End()

	if isConfigError(err) {
		c.toMenu(name)
		return
	}
	if c.State() != StatePlaying && c.flow.Can(evFallback) {
		_ = c.fire(evFallback)
	}
	row := c.sess.ActiveRow()
	if row == nil || row.State == RowClosed {
		c.trayOpen = c.sess.Tray != nil
		c.end(name)
		return
	}
	_ = row.Reveal()
	c.emit(Command{Kind: CmdRevealRow, Row: row.ID, Theme: row.Theme()})
	if !row.Completed && c.sess.Tray == nil {
		if err := c.dealTray(row); err != nil {
			c.lastErr = fmt.Errorf("redeal after %s: %w", name, err)
			c.log.Error().Err(err).Int("row", row.ID).Msg("tray redeal failed")
			c.toMenu(name)
			return
		}
	}
	if c.sess.Tray != nil && !c.trayOpen {
		c.openTray()
	}
	c.end(name)
}

func (c *Controller) toMenu(name string) {
	c.trayOpen = false
	if c.State() != StateMenu {
		c.flow.SetState(string(StateMenu))
		c.emit(Command{Kind: CmdState, State: StateMenu})
	}
	c.end(name)
}

func isConfigError(err error) bool {
	return errors.Is(err, ErrInvalidLevel) ||
		errors.Is(err, ErrInsufficientThemeItems) ||
		errors.Is(err, ErrNotEnoughThemes) ||
		errors.Is(err, ErrUnknownTheme)
}

func (c *Controller) fire(event string) error {
	if err := c.flow.Event(context.Background(), event); err != nil {
		return fmt.Errorf("%w: %s from %s: %v", ErrBadTransition, event, c.State(), err)
	}
	return nil
}

func (c *Controller) emit(cmd Command) {
	c.seq++
	cmd.Seq = c.seq
	cmd.At = c.sched.Now()
	c.out.Present(cmd)
}
