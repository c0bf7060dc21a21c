// internal/httpserver/routes_daily.go
//
// HTTP routes for the "Daily Challenge" mode.
//   - GET  /daily     → today's date and starting level
//   - POST /daily/new → start a session on today's level and random stream
//
// Every player gets the same rows for a given UTC date. Selection is
// deterministic from date + salt; the seed itself is never returned.

package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/robalobadob/matchup/internal/daily"
	"github.com/robalobadob/matchup/internal/game"
)

// mountDaily registers all /daily routes.
func (s *Server) mountDaily(r chi.Router) {
	r.Route("/daily", func(r chi.Router) {
		r.Get("/", s.handleDailyInfo)
		r.Post("/new", s.handleDailyNew)
	})
}

type dailyInfoRes struct {
	Date  string          `json:"date"`
	Level game.LevelState `json:"level"`
}

func (s *Server) handleDailyInfo(w http.ResponseWriter, r *http.Request) {
	ch := daily.For(s.now(), s.opts.DailySalt)
	writeJSON(w, http.StatusOK, dailyInfoRes{Date: ch.Date, Level: ch.Level})
}

func (s *Server) handleDailyNew(w http.ResponseWriter, r *http.Request) {
	ch := daily.For(s.now(), s.opts.DailySalt)
	res, err := s.createSession(r, ch.Level, ch.Seed)
	if err != nil {
		s.writeError(w, err)
		return
	}
	res.Daily = ch.Date
	writeJSON(w, http.StatusCreated, res)
}
