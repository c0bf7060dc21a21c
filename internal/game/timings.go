// internal/game/timings.go
//
// Durations and tuning knobs owned by the core. The presentation side must
// finish each animation within the duration it is handed; the core never
// waits on a completion signal.

package game

import "time"

// Timings holds every step delay used by the flow sequences.
type Timings struct {
	CoverMove        time.Duration `yaml:"cover_move" json:"coverMove"`
	InbetweenCovers  time.Duration `yaml:"inbetween_covers" json:"inbetweenCovers"`
	ItemMove         time.Duration `yaml:"item_move" json:"itemMove"`
	UnlockGrace      time.Duration `yaml:"unlock_grace" json:"unlockGrace"`
	Cloud            time.Duration `yaml:"cloud" json:"cloud"`
	CloudRange       time.Duration `yaml:"cloud_range" json:"cloudRange"`
	WaitBeforeClouds time.Duration `yaml:"wait_before_clouds" json:"waitBeforeClouds"`
	ReelMove         time.Duration `yaml:"reel_move" json:"reelMove"`
	InitWait         time.Duration `yaml:"init_wait" json:"initWait"`
	HardPreview      time.Duration `yaml:"hard_preview" json:"hardPreview"`
	ShowImgDwell     time.Duration `yaml:"show_img_dwell" json:"showImgDwell"`
}

// DefaultTimings mirrors the values the game was tuned with.
func DefaultTimings() Timings {
	return Timings{
		CoverMove:        1500 * time.Millisecond,
		InbetweenCovers:  -500 * time.Millisecond,
		ItemMove:         1500 * time.Millisecond,
		UnlockGrace:      2 * time.Second,
		Cloud:            5 * time.Second,
		CloudRange:       1500 * time.Millisecond,
		WaitBeforeClouds: 6 * time.Second,
		ReelMove:         time.Second,
		InitWait:         500 * time.Millisecond,
		HardPreview:      5 * time.Second,
		ShowImgDwell:     3 * time.Second,
	}
}

// CoverStep is the settle delay between consecutive cover movements.
func (t Timings) CoverStep() time.Duration {
	d := t.CoverMove + t.InbetweenCovers
	if d < 0 {
		return 0
	}
	return d
}

// withDefaults fills zero fields from DefaultTimings. InbetweenCovers is
// left alone since zero is a meaningful value for it.
func (t Timings) withDefaults() Timings {
	def := DefaultTimings()
	fill := func(v *time.Duration, d time.Duration) {
		if *v <= 0 {
			*v = d
		}
	}
	fill(&t.CoverMove, def.CoverMove)
	fill(&t.ItemMove, def.ItemMove)
	fill(&t.UnlockGrace, def.UnlockGrace)
	fill(&t.Cloud, def.Cloud)
	fill(&t.WaitBeforeClouds, def.WaitBeforeClouds)
	fill(&t.ReelMove, def.ReelMove)
	fill(&t.InitWait, def.InitWait)
	fill(&t.HardPreview, def.HardPreview)
	fill(&t.ShowImgDwell, def.ShowImgDwell)
	if t.CloudRange < 0 {
		t.CloudRange = 0
	}
	return t
}

const (
	// ItemsVariability is the fraction of distinct items on "variable" levels.
	ItemsVariability = 0.7
	// MaxSelectionRetries bounds every rejection-sampling loop in the tray.
	MaxSelectionRetries = 64
)
