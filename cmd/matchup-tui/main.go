// Command matchup-tui plays the game in a terminal.
//
// Usage:
//
//	matchup-tui [-mode easy|medium|hard] [-level 1..9] [-seed n] [-daily] [-mute]
//
// Logs go to matchup-tui.log in the working directory since the terminal is
// owned by the game. Configuration comes from the same environment as the
// server (THEMES_FILE, THEMES_DB, TUNING_FILE, DAILY_SALT, LOG_LEVEL).
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand/v2"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/robalobadob/matchup/internal/audio"
	"github.com/robalobadob/matchup/internal/config"
	"github.com/robalobadob/matchup/internal/daily"
	"github.com/robalobadob/matchup/internal/game"
	"github.com/robalobadob/matchup/internal/themes"
	"github.com/robalobadob/matchup/internal/tui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "matchup-tui:", err)
		os.Exit(1)
	}
}

func run() error {
	mode := flag.String("mode", "easy", "super mode: easy, medium or hard")
	level := flag.Int("level", game.MinLevel, "starting level")
	seed := flag.Uint64("seed", 0, "random seed (0 picks one)")
	today := flag.Bool("daily", false, "play today's daily challenge")
	mute := flag.Bool("mute", false, "disable sound")
	volume := flag.Float64("volume", 0.6, "sound volume 0..1")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logFile, err := os.OpenFile("matchup-tui.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer logFile.Close()
	lvl, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	logger := zerolog.New(logFile).Level(lvl).With().Timestamp().Logger()

	sm, err := game.ParseDifficulty(*mode)
	if err != nil {
		return err
	}
	start := game.LevelState{Level: *level, SuperMode: sm}
	if *seed == 0 {
		*seed = rand.Uint64()
	}
	if *today {
		ch := daily.For(time.Now(), cfg.DailySalt)
		start, *seed = ch.Level, ch.Seed
		logger.Info().Str("date", ch.Date).Msg("daily challenge")
	}
	if err := start.Validate(); err != nil {
		return err
	}

	catalog, err := themes.Load(context.Background(), cfg.ThemesFile, cfg.ThemesDB)
	if err != nil {
		return err
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()
	screen.HideCursor()

	app := tui.New(screen, logger)
	presenters := []game.Presenter{app}
	if !*mute {
		player := audio.NewPlayer(*volume)
		if err := player.Initialize(); err != nil {
			logger.Warn().Err(err).Msg("no audio device, playing muted")
		} else {
			defer player.Close()
			presenters = append(presenters, player)
		}
	}

	ctl := game.NewController(
		game.NewSession(uuid.NewString(), start),
		catalog,
		game.WithPresenter(game.Tee(presenters...)),
		game.WithSeed(*seed),
		game.WithTimings(cfg.Timings),
		game.WithLogger(logger),
	)
	app.Attach(ctl)
	logger.Info().Str("level", start.String()).Uint64("seed", *seed).Msg("session started")
	return app.Run()
}
