// Package audio plays the game's sound cues through the system speaker.
package audio

import (
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"

	"github.com/robalobadob/matchup/internal/game"
)

const sampleRate = beep.SampleRate(44100)

// note is one tone of a cue; freq 0 is a rest.
type note struct {
	freq float64
	dur  time.Duration
}

// cues maps each clip to a short melody.
var cues = map[game.Clip][]note{
	game.ClipCover:   {{220, 90 * time.Millisecond}, {165, 120 * time.Millisecond}},
	game.ClipUncover: {{165, 90 * time.Millisecond}, {220, 120 * time.Millisecond}},
	game.ClipSlide:   {{330, 60 * time.Millisecond}, {392, 60 * time.Millisecond}, {440, 80 * time.Millisecond}},
	game.ClipCorrect: {{523, 100 * time.Millisecond}, {659, 100 * time.Millisecond}, {784, 200 * time.Millisecond}},
	game.ClipWrong:   {{196, 150 * time.Millisecond}, {0, 40 * time.Millisecond}, {147, 250 * time.Millisecond}},
	game.ClipEndGame: {
		{523, 120 * time.Millisecond}, {659, 120 * time.Millisecond}, {784, 120 * time.Millisecond},
		{0, 60 * time.Millisecond}, {1047, 400 * time.Millisecond},
	},
}

// Player mixes cues onto the speaker. It is a game.Presenter that only
// reacts to PlaySound commands.
type Player struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	initialized bool
	volume      float64
}

// NewPlayer returns an uninitialized player at the given volume (0..1).
func NewPlayer(volume float64) *Player {
	return &Player{mixer: &beep.Mixer{}, volume: math.Max(0, math.Min(1, volume))}
}

// Initialize opens the speaker.
func (p *Player) Initialize() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.initialized {
		return nil
	}
	if err := speaker.Init(sampleRate, sampleRate.N(100*time.Millisecond)); err != nil {
		return err
	}
	speaker.Play(p.mixer)
	p.initialized = true
	return nil
}

// Close silences the mixer and releases the speaker.
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.initialized {
		return
	}
	speaker.Lock()
	p.mixer.Clear()
	speaker.Unlock()
	speaker.Close()
	p.initialized = false
}

// Present implements game.Presenter.
func (p *Player) Present(c game.Command) {
	if c.Kind == game.CmdPlaySound {
		p.Play(c.Clip)
	}
}

// Play queues clip. Unknown clips and an uninitialized player are no-ops.
func (p *Player) Play(clip game.Clip) {
	notes, ok := cues[clip]
	if !ok {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.initialized {
		return
	}
	speaker.Lock()
	p.mixer.Add(newMelody(sampleRate, notes, p.volume))
	speaker.Unlock()
}

// Length is the playing time of clip.
func Length(clip game.Clip) time.Duration {
	var d time.Duration
	for _, n := range cues[clip] {
		d += n.dur
	}
	return d
}

// melody streams a note sequence with a short attack/release per note.
type melody struct {
	sr     beep.SampleRate
	notes  []note
	volume float64
	idx    int // current note
	pos    int // sample within the note
}

func newMelody(sr beep.SampleRate, notes []note, volume float64) *melody {
	return &melody{sr: sr, notes: notes, volume: volume}
}

func (m *melody) Stream(samples [][2]float64) (n int, ok bool) {
	for n < len(samples) {
		if m.idx >= len(m.notes) {
			return n, n > 0
		}
		cur := m.notes[m.idx]
		total := m.sr.N(cur.dur)
		if m.pos >= total {
			m.idx++
			m.pos = 0
			continue
		}
		v := 0.0
		if cur.freq > 0 {
			t := float64(m.pos) / float64(m.sr)
			edge := float64(m.sr.N(10 * time.Millisecond))
			env := math.Min(1, math.Min(float64(m.pos)/edge, float64(total-m.pos)/edge))
			v = math.Sin(2*math.Pi*cur.freq*t) * env * 0.3 * m.volume
		}
		samples[n][0] = v
		samples[n][1] = v
		m.pos++
		n++
	}
	return n, true
}

func (m *melody) Err() error { return nil }
