package game

import "time"

// RowView is what a client may know about one row. The missing item is
// never included until the row is completed or previewed.
type RowView struct {
	ID          int            `json:"id"`
	Theme       string         `json:"theme"`
	State       RowState       `json:"state"`
	Covered     bool           `json:"covered"`
	SlotCount   int            `json:"slotCount"`
	StartOffset int            `json:"startOffset"`
	MissingSlot *int           `json:"missingSlot,omitempty"`
	Visible     map[int]string `json:"visible"`
	Completed   bool           `json:"completed"`
}

// View is a read-only snapshot of a controller and its session.
type View struct {
	SessionID       string        `json:"sessionId"`
	State           State         `json:"state"`
	Level           LevelState    `json:"level"`
	Locked          bool          `json:"locked"`
	Busy            bool          `json:"busy"`
	Sequence        string        `json:"sequence,omitempty"`
	Current         int           `json:"current"`
	Rows            []RowView     `json:"rows"`
	TrayOpen        bool          `json:"trayOpen"`
	Tray            []Candidate   `json:"tray,omitempty"`
	Reel            []Snapshot    `json:"reel,omitempty"`
	ReelCursor      int           `json:"reelCursor"`
	ReelShown       bool          `json:"reelShown"`
	Picks           int           `json:"picks"`
	Mistakes        int           `json:"mistakes"`
	LevelsCompleted int           `json:"levelsCompleted"`
	Now             time.Duration `json:"now"`
	LastError       string        `json:"lastError,omitempty"`
}

// View snapshots the controller for display.
func (c *Controller) View() View {
	s := c.sess
	v := View{
		SessionID:       s.ID,
		State:           c.State(),
		Level:           s.Level,
		Locked:          c.locked,
		Busy:            c.busy,
		Sequence:        c.running,
		Current:         s.Current,
		TrayOpen:        c.trayOpen,
		Reel:            s.Reel.Items(),
		ReelCursor:      s.Reel.Cursor(),
		ReelShown:       s.Reel.Started(),
		Picks:           s.Picks,
		Mistakes:        s.Mistakes,
		LevelsCompleted: s.LevelsCompleted,
		Now:             c.sched.Now(),
	}
	if c.lastErr != nil {
		v.LastError = c.lastErr.Error()
	}
	if s.Tray != nil {
		v.Tray = append([]Candidate(nil), s.Tray.Candidates...)
	}
	for _, r := range s.Rows {
		rv := RowView{
			ID:          r.ID,
			Theme:       r.Theme(),
			State:       r.State,
			Covered:     r.Covered,
			SlotCount:   r.Layout.SlotCount,
			StartOffset: r.Layout.StartOffset,
			Visible:     r.Visible(),
			Completed:   r.Completed,
		}
		if r.State != RowHidden {
			slot := r.Layout.MissingSlot
			rv.MissingSlot = &slot
		}
		v.Rows = append(v.Rows, rv)
	}
	return v
}
