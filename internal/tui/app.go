package tui

import (
	"errors"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog"

	"github.com/robalobadob/matchup/internal/game"
)

// frame is the redraw and scheduler tick interval.
const frame = 16 * time.Millisecond

// flashFor is how long a banner stays up.
const flashFor = 900 * time.Millisecond

// App drives a controller from terminal input and draws its view.
// The controller must have been built with the App as (one of) its
// presenters so banners follow the game's commands.
type App struct {
	screen tcell.Screen
	ctl    *game.Controller
	log    zerolog.Logger

	flash      string
	flashUntil time.Duration
}

// New returns an App bound to screen. Call Attach before Run.
func New(screen tcell.Screen, log zerolog.Logger) *App {
	return &App{screen: screen, log: log}
}

// Attach binds the controller the App drives.
func (a *App) Attach(ctl *game.Controller) { a.ctl = ctl }

// Present implements game.Presenter.
func (a *App) Present(c game.Command) {
	switch {
	case c.Kind == game.CmdParticles:
		a.setFlash("match!", c.At)
	case c.Kind == game.CmdPlaySound && c.Clip == game.ClipWrong:
		a.setFlash("not that one", c.At)
	case c.Kind == game.CmdPlaySound && c.Clip == game.ClipEndGame:
		a.setFlash("level complete", c.At)
	}
}

func (a *App) setFlash(msg string, at time.Duration) {
	a.flash = msg
	a.flashUntil = at + flashFor
}

// Run polls input and ticks the controller on wall-clock time until the
// player quits from the menu.
func (a *App) Run() error {
	if a.ctl == nil {
		return errors.New("tui: no controller attached")
	}
	events := make(chan tcell.Event, 32)
	go func() {
		for {
			ev := a.screen.PollEvent()
			if ev == nil {
				close(events)
				return
			}
			events <- ev
		}
	}()

	tick := time.NewTicker(frame)
	defer tick.Stop()
	start := time.Now()

	a.draw()
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			switch e := ev.(type) {
			case *tcell.EventResize:
				a.screen.Sync()
			case *tcell.EventKey:
				if a.HandleKey(e) {
					return nil
				}
			}
		case <-tick.C:
			a.ctl.AdvanceTo(time.Since(start))
			a.draw()
		}
	}
}

func (a *App) draw() {
	flash := ""
	if a.ctl.Now() < a.flashUntil {
		flash = a.flash
	}
	Render(a.screen, a.ctl.View(), flash)
}

// HandleKey applies one key press. It reports whether the App should exit.
func (a *App) HandleKey(e *tcell.EventKey) bool {
	return a.handle(e.Key(), e.Rune())
}

func (a *App) handle(key tcell.Key, r rune) bool {
	if key == tcell.KeyCtrlC {
		return true
	}
	var err error
	switch a.ctl.State() {
	case game.StateMenu:
		switch {
		case key == tcell.KeyEscape, r == 'q', r == 'Q':
			return true
		case key == tcell.KeyEnter, r == 's', r == 'S':
			err = a.ctl.Start()
		}
	case game.StateShowImg, game.StateShowReel:
		switch key {
		case tcell.KeyLeft:
			_, err = a.ctl.NavigateReel(game.Backward)
		case tcell.KeyRight:
			_, err = a.ctl.NavigateReel(game.Forward)
		case tcell.KeyEnter:
			err = a.ctl.ExitReel(true)
		case tcell.KeyEscape:
			err = a.ctl.ExitReel(false)
		}
	default:
		switch {
		case key == tcell.KeyRune && r >= '1' && r < '1'+game.TraySize:
			err = a.pick(int(r - '1'))
		case key == tcell.KeyRune && (r == 'p' || r == 'P'):
			err = a.ctl.Peek()
		case key == tcell.KeyEscape, key == tcell.KeyRune && (r == 'q' || r == 'Q'):
			err = a.ctl.Quit()
		}
	}
	if err != nil {
		// rejected input is routine while animations run
		a.log.Debug().Err(err).Str("state", string(a.ctl.State())).Msg("input ignored")
	}
	return false
}

func (a *App) pick(i int) error {
	v := a.ctl.View()
	if !v.TrayOpen || i >= len(v.Tray) {
		return game.ErrTrayCovered
	}
	_, err := a.ctl.Pick(v.Tray[i].Item)
	return err
}
