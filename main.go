package main

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	_ "go.uber.org/automaxprocs"

	"github.com/robalobadob/matchup/internal/config"
	"github.com/robalobadob/matchup/internal/httpserver"
	"github.com/robalobadob/matchup/internal/store"
	"github.com/robalobadob/matchup/internal/themes"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("bad configuration")
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	catalog, err := themes.Load(context.Background(), cfg.ThemesFile, cfg.ThemesDB)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load themes")
	}

	srv := httpserver.New(store.NewMemoryStore(), catalog, httpserver.Options{
		ClientOrigin: cfg.ClientOrigin,
		JWTSecret:    cfg.JWTSecret,
		JWTExpires:   cfg.JWTExpires,
		DailySalt:    cfg.DailySalt,
		Timings:      cfg.Timings,
		Logger:       logger,
	})
	log.Info().Str("port", cfg.Port).Int("themes", catalog.Len()).Msg("starting matchup server")
	if err := srv.Start(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}
