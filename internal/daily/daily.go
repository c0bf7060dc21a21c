// internal/daily/daily.go
//
// Daily challenge: every player gets the same level and the same random
// stream for a given UTC date.
//
// The seed is HMAC-SHA256(salt, YYYY-MM-DD); without the salt the day's
// layouts cannot be precomputed from the date alone.

package daily

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"time"

	"github.com/robalobadob/matchup/internal/game"
)

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// Seed returns the deterministic random seed for a date.
func Seed(date time.Time, salt string) uint64 {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(DateKey(date)))
	sum := h.Sum(nil)
	return binary.BigEndian.Uint64(sum[:8])
}

// Challenge is one day's shared starting point.
type Challenge struct {
	Date  string          `json:"date"`
	Seed  uint64          `json:"seed"`
	Level game.LevelState `json:"level"`
}

// For returns the challenge for date. The level and super mode come from
// the upper bits of the seed so they vary independently of the stream.
func For(date time.Time, salt string) Challenge {
	seed := Seed(date, salt)
	return Challenge{
		Date: DateKey(date),
		Seed: seed,
		Level: game.LevelState{
			Level:     game.MinLevel + int((seed>>32)%game.MaxLevel),
			SuperMode: game.Difficulty((seed >> 48) % 3),
		},
	}
}
