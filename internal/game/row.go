package game

import "fmt"

// RowState is the lifecycle of one row on screen.
type RowState int

const (
	RowHidden RowState = iota
	RowRevealed
	RowObscured // clouds cover the items
	RowClosed
)

func (s RowState) String() string {
	switch s {
	case RowHidden:
		return "hidden"
	case RowRevealed:
		return "revealed"
	case RowObscured:
		return "obscured"
	case RowClosed:
		return "closed"
	}
	return fmt.Sprintf("row_state(%d)", int(s))
}

func (s RowState) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *RowState) UnmarshalText(b []byte) error {
	for v := RowHidden; v <= RowClosed; v++ {
		if v.String() == string(b) {
			*s = v
			return nil
		}
	}
	return fmt.Errorf("unknown row state %q", b)
}

// Row owns one generated layout and its on-screen state.
type Row struct {
	ID     int
	Layout RowLayout
	State  RowState

	// Covered tracks the physical cover, separate from State: Hard mode
	// re-covers a revealed row while the player looks at the tray.
	Covered bool
	// MissingShown is true while the Hard preview displays the full row.
	MissingShown bool
	// Completed is set once the missing item has been placed back.
	Completed bool
}

// NewRow wraps a layout in a hidden, covered row.
func NewRow(id int, l RowLayout) *Row {
	return &Row{ID: id, Layout: l, State: RowHidden, Covered: true}
}

// Theme is shorthand for the layout theme.
func (r *Row) Theme() string { return r.Layout.Theme }

// MissingItem is shorthand for the layout's withheld item.
func (r *Row) MissingItem() string { return r.Layout.MissingItem }

// Reveal uncovers a hidden row, or re-uncovers a revealed one.
func (r *Row) Reveal() error {
	switch r.State {
	case RowHidden, RowRevealed, RowObscured:
	default:
		return fmt.Errorf("%w: reveal from %s", ErrRowState, r.State)
	}
	if r.State == RowHidden {
		r.State = RowRevealed
	}
	r.Covered = false
	return nil
}

// Cover slides the cover over the row without closing it.
func (r *Row) Cover() { r.Covered = true }

// Obscure marks the row as hidden under clouds.
func (r *Row) Obscure() error {
	if r.State != RowRevealed {
		return fmt.Errorf("%w: obscure from %s", ErrRowState, r.State)
	}
	r.State = RowObscured
	return nil
}

// ClearClouds lifts the clouds again.
func (r *Row) ClearClouds() {
	if r.State == RowObscured {
		r.State = RowRevealed
	}
}

// Close covers the row for good once it is done.
func (r *Row) Close() error {
	if r.State == RowHidden {
		return fmt.Errorf("%w: close from %s", ErrRowState, r.State)
	}
	r.State = RowClosed
	r.Covered = true
	return nil
}

// Complete records that the missing item was placed.
func (r *Row) Complete() {
	r.Completed = true
	r.MissingShown = true
}

// Visible returns the items a player can see, keyed by slot.
func (r *Row) Visible() map[int]string {
	if r.Covered || r.State == RowHidden || r.State == RowObscured {
		return map[int]string{}
	}
	out := make(map[int]string, r.Layout.SlotCount)
	for k, v := range r.Layout.ItemAt {
		out[k] = v
	}
	if r.MissingShown {
		out[r.Layout.MissingSlot] = r.Layout.MissingItem
	}
	return out
}
