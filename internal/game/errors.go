package game

import "errors"

// Configuration errors: a content or caller defect, fatal to the build
// that hit them.
var (
	ErrInvalidLevel           = errors.New("level out of range")
	ErrInsufficientThemeItems = errors.New("theme has fewer items than slots")
	ErrUnknownTheme           = errors.New("unknown theme")
	ErrNotEnoughThemes        = errors.New("not enough themes for a level")
)

// Constraint exhaustion: bounded sampling gave up. Recoverable by relaxing
// a constraint tier or redrawing.
var ErrThemePoolExhausted = errors.New("theme pool exhausted")

// Sequencing conflicts: the request arrived at the wrong time.
var (
	ErrTransitionInFlight = errors.New("transition in flight")
	ErrInputLocked        = errors.New("input locked")
	ErrNotPlaying         = errors.New("not accepting picks")
	ErrNotInTray          = errors.New("item not in tray")
	ErrTrayCovered        = errors.New("tray is covered")
	ErrReelBusy           = errors.New("reel is moving")
	ErrReelNotShown       = errors.New("reel not shown")
	ErrBadTransition      = errors.New("transition not allowed from current state")
	ErrRowState           = errors.New("row state change not allowed")
)
