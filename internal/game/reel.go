// internal/game/reel.go
//
// Picture reel of solved rows.
// Responsibilities:
//   - Collect one snapshot per solved row, in solve order.
//   - Navigate with a clamped cursor; one slide at a time.
//   - Reset between levels.
//
// Notes:
//   - Snapshots added after the reel started showing are ignored, the
//     same way a carousel that is already on screen cannot grow.
//   - Rate limiting is driven by the controller's scheduler: the reel is
//     told when a slide starts and when it settles.

package game

// Snapshot is one solved row as shown in the reel.
type Snapshot struct {
	Row   int    `json:"row"`
	Theme string `json:"theme"`
	Item  string `json:"item"`
	Frame int    `json:"frame"` // decorative frame index
}

// Direction is a reel navigation direction.
type Direction int

const (
	Backward Direction = -1
	Forward  Direction = 1
)

func (d Direction) String() string {
	if d < 0 {
		return "backward"
	}
	return "forward"
}

// ReelFrames is the number of decorative frames a snapshot may use.
const ReelFrames = 5

// Reel is the ordered snapshot list plus its cursor.
type Reel struct {
	items   []Snapshot
	cursor  int
	started bool
	final   bool
	moving  bool
}

// Add appends a snapshot unless the reel is already showing.
func (r *Reel) Add(s Snapshot) bool {
	if r.started {
		return false
	}
	r.items = append(r.items, s)
	return true
}

// Begin starts showing. A final reel opens on the first picture; a
// per-row reel opens on the newest one.
func (r *Reel) Begin(final bool) {
	r.started = true
	r.final = final
	r.moving = false
	if final || len(r.items) == 0 {
		r.cursor = 0
		return
	}
	r.cursor = len(r.items) - 1
}

// End stops showing; further snapshots may be added again.
func (r *Reel) End() {
	r.started = false
	r.moving = false
}

// Move shifts the cursor by one in dir. It reports whether the cursor
// actually moved; at either end it stays put. A move while the previous
// slide has not settled returns ErrReelBusy.
func (r *Reel) Move(dir Direction) (bool, error) {
	if !r.started {
		return false, ErrReelNotShown
	}
	if r.moving {
		return false, ErrReelBusy
	}
	next := r.cursor + int(dir)
	if next < 0 || next > len(r.items)-1 {
		return false, nil
	}
	r.cursor = next
	r.moving = true
	return true, nil
}

// Advance moves forward one picture.
func (r *Reel) Advance() (bool, error) { return r.Move(Forward) }

// Retreat moves back one picture.
func (r *Reel) Retreat() (bool, error) { return r.Move(Backward) }

// Settle marks the running slide as finished.
func (r *Reel) Settle() { r.moving = false }

// Clear drops every snapshot and resets the cursor.
func (r *Reel) Clear() {
	r.items = nil
	r.cursor = 0
	r.started = false
	r.final = false
	r.moving = false
}

func (r *Reel) Cursor() int { return r.cursor }
func (r *Reel) Len() int { return len(r.items) }
func (r *Reel) Started() bool { return r.started }
func (r *Reel) Final() bool { return r.final }
func (r *Reel) Moving() bool { return r.moving }

// Items returns a copy of the snapshots in solve order.
func (r *Reel) Items() []Snapshot {
	return append([]Snapshot(nil), r.items...)
}

// Current returns the snapshot under the cursor.
func (r *Reel) Current() (Snapshot, bool) {
	if r.cursor < 0 || r.cursor >= len(r.items) {
		return Snapshot{}, false
	}
	return r.items[r.cursor], true
}
