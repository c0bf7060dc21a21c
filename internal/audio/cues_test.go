package audio

import (
	"testing"
	"time"

	"github.com/gopxl/beep"

	"github.com/robalobadob/matchup/internal/game"
)

func TestEveryClipHasACue(t *testing.T) {
	for _, c := range []game.Clip{game.ClipCover, game.ClipUncover, game.ClipSlide, game.ClipEndGame, game.ClipCorrect, game.ClipWrong} {
		if Length(c) <= 0 {
			t.Errorf("clip %s has no cue", c)
		}
		// cues must fit inside the shortest step they accompany
		if Length(c) > time.Second {
			t.Errorf("clip %s runs %v", c, Length(c))
		}
	}
}

func TestMelodyStreamsItsLength(t *testing.T) {
	rate := beep.SampleRate(8000)
	notes := cues[game.ClipWrong]
	want := 0
	for _, n := range notes {
		want += rate.N(n.dur)
	}

	m := newMelody(rate, notes, 1)
	buf := make([][2]float64, 512)
	got := 0
	for {
		n, ok := m.Stream(buf)
		got += n
		for i := 0; i < n; i++ {
			if buf[i][0] < -1 || buf[i][0] > 1 || buf[i][0] != buf[i][1] {
				t.Fatalf("bad sample %v", buf[i])
			}
		}
		if !ok {
			break
		}
	}
	if got != want {
		t.Fatalf("streamed %d samples, want %d", got, want)
	}
	if m.Err() != nil {
		t.Fatal(m.Err())
	}
}

func TestPlayerIgnoresOtherCommands(t *testing.T) {
	p := NewPlayer(2)
	if p.volume != 1 {
		t.Fatalf("volume not clamped: %v", p.volume)
	}
	// not initialized: both are no-ops and must not touch the speaker
	p.Present(game.Command{Kind: game.CmdRevealRow})
	p.Present(game.Command{Kind: game.CmdPlaySound, Clip: game.ClipCorrect})
	p.Close()
}
