// internal/game/presenter.go
//
// Contract with the presentation side (rendering, animation, audio).
// The core only issues declarative commands; each carries the duration the
// core will wait before its next step. A presenter must finish the
// animation within that duration. Nothing is reported back.

package game

import (
	"sort"
	"sync"
	"time"
)

// CommandKind names a presentation command.
type CommandKind string

const (
	CmdRevealRow   CommandKind = "reveal_row"
	CmdCoverRow    CommandKind = "cover_row"
	CmdShowClouds  CommandKind = "show_clouds"
	CmdHideClouds  CommandKind = "hide_clouds"
	CmdShowTray    CommandKind = "show_tray"
	CmdCoverTray   CommandKind = "cover_tray"
	CmdUncoverTray CommandKind = "uncover_tray"
	CmdPlaySound   CommandKind = "play_sound"
	CmdPlaceItem   CommandKind = "place_item"
	CmdReturnItem  CommandKind = "return_item"
	CmdRemoveItem  CommandKind = "remove_item"
	CmdParticles   CommandKind = "particles"
	CmdShowReel    CommandKind = "show_reel"
	CmdSlideReel   CommandKind = "slide_reel"
	CmdHideReel    CommandKind = "hide_reel"
	CmdState       CommandKind = "state"
	CmdLock        CommandKind = "lock"
)

// Clip identifies a sound cue.
type Clip string

const (
	ClipCover   Clip = "cover"
	ClipUncover Clip = "uncover"
	ClipSlide   Clip = "slide"
	ClipEndGame Clip = "end_game"
	ClipCorrect Clip = "correct"
	ClipWrong   Clip = "wrong"
)

// Command is one instruction to the presentation side.
type Command struct {
	Seq      int           `json:"seq"`
	At       time.Duration `json:"at"`
	Kind     CommandKind   `json:"kind"`
	Row      int           `json:"row"`
	Slot     int           `json:"slot,omitempty"`
	Item     string        `json:"item,omitempty"`
	Theme    string        `json:"theme,omitempty"`
	Clip     Clip          `json:"clip,omitempty"`
	Dir      Direction     `json:"dir,omitempty"`
	State    State         `json:"state,omitempty"`
	Locked   bool          `json:"locked,omitempty"`
	Tray     []Candidate   `json:"tray,omitempty"`
	Reel     []Snapshot    `json:"reel,omitempty"`
	Cursor   int           `json:"cursor,omitempty"`
	Duration time.Duration `json:"duration,omitempty"`
}

// Presenter receives commands in issue order.
type Presenter interface {
	Present(Command)
}

// PresenterFunc adapts a function to Presenter.
type PresenterFunc func(Command)

func (f PresenterFunc) Present(c Command) { f(c) }

// DefaultRecorderLimit bounds a Recorder built by NewRecorder.
const DefaultRecorderLimit = 4096

// Recorder keeps the most recent commands, oldest dropped first once the
// limit is reached. Clients acknowledge what they have read with Trim.
// Safe for concurrent readers.
type Recorder struct {
	mu    sync.Mutex
	cmds  []Command
	limit int
}

// NewRecorder returns an empty recorder holding up to DefaultRecorderLimit
// commands.
func NewRecorder() *Recorder { return NewBoundedRecorder(DefaultRecorderLimit) }

// NewBoundedRecorder returns an empty recorder holding up to limit
// commands; limit <= 0 means unbounded.
func NewBoundedRecorder(limit int) *Recorder { return &Recorder{limit: limit} }

func (r *Recorder) Present(c Command) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cmds = append(r.cmds, c)
	if r.limit > 0 && len(r.cmds) > r.limit {
		r.cmds = append(r.cmds[:0:0], r.cmds[len(r.cmds)-r.limit:]...)
	}
}

// All returns a copy of every retained command.
func (r *Recorder) All() []Command {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Command(nil), r.cmds...)
}

// Len is the number of retained commands.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.cmds)
}

// since is the index of the first command with Seq > after. Seq grows
// monotonically so the log is sorted.
func (r *Recorder) since(after int) int {
	return sort.Search(len(r.cmds), func(i int) bool { return r.cmds[i].Seq > after })
}

// Since returns commands with Seq > after.
func (r *Recorder) Since(after int) []Command {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Command{}, r.cmds[r.since(after):]...)
}

// Trim drops commands with Seq <= upTo.
func (r *Recorder) Trim(upTo int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i := r.since(upTo); i > 0 {
		r.cmds = append(r.cmds[:0:0], r.cmds[i:]...)
	}
}

// Kinds lists the retained command kinds in order.
func (r *Recorder) Kinds() []CommandKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]CommandKind, len(r.cmds))
	for i, c := range r.cmds {
		out[i] = c.Kind
	}
	return out
}

// Reset drops everything recorded so far.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cmds = nil
}

// multiPresenter fans out to several presenters.
type multiPresenter []Presenter

func (m multiPresenter) Present(c Command) {
	for _, p := range m {
		p.Present(c)
	}
}

// Tee returns a presenter that forwards to every non-nil p.
func Tee(ps ...Presenter) Presenter {
	out := multiPresenter{}
	for _, p := range ps {
		if p != nil {
			out = append(out, p)
		}
	}
	return out
}
