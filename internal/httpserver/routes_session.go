// internal/httpserver/routes_session.go
//
// HTTP routes for hosted game sessions.
//   - POST /session/new            → create a session, returns ID + token
//   - GET  /session/{id}           → snapshot view
//   - POST /session/{id}/start     → Start
//   - POST /session/{id}/pick      → Pick {item}
//   - POST /session/{id}/peek      → Hard mode cover switch
//   - POST /session/{id}/reel/exit → ExitReel {replay}
//   - POST /session/{id}/reel/{dir}→ NavigateReel next|prev
//   - POST /session/{id}/quit      → back to the menu
//   - GET  /session/{id}/events    → presentation commands after ?after=n
//   - DELETE /session/{id}         → drop the session

package httpserver

import (
	"fmt"
	"math/rand/v2"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/robalobadob/matchup/internal/daily"
	"github.com/robalobadob/matchup/internal/game"
	"github.com/robalobadob/matchup/internal/store"
)

func (s *Server) mountSessions() {
	s.r.Route("/session/{id}", func(r chi.Router) {
		r.Use(s.requireSession)
		r.Get("/", s.handleView)
		r.Delete("/", s.handleDelete)
		r.Post("/start", s.act(func(c *game.Controller, _ *http.Request) (any, error) { return nil, c.Start() }))
		r.Post("/peek", s.act(func(c *game.Controller, _ *http.Request) (any, error) { return nil, c.Peek() }))
		r.Post("/quit", s.act(func(c *game.Controller, _ *http.Request) (any, error) { return nil, c.Quit() }))
		r.Post("/pick", s.handlePick)
		r.Post("/reel/exit", s.handleExitReel)
		r.Post("/reel/{dir}", s.handleNavigate)
		r.Get("/events", s.handleEvents)
	})
}

// newSessionReq is the request payload for POST /session/new.
type newSessionReq struct {
	SuperMode string  `json:"superMode"`
	Level     int     `json:"level"`
	Seed      *uint64 `json:"seed,omitempty"`
	Daily     bool    `json:"daily"`
}

type newSessionRes struct {
	SessionID string          `json:"sessionId"`
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expiresAt"`
	Level     game.LevelState `json:"level"`
	Daily     string          `json:"daily,omitempty"`
}

func (s *Server) handleNewSession(w http.ResponseWriter, r *http.Request) {
	var req newSessionReq
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorRes{Error: "bad_json"})
			return
		}
	}
	if req.Level == 0 {
		req.Level = game.MinLevel
	}
	mode, err := game.ParseDifficulty(req.SuperMode)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorRes{Error: "bad_request", Message: err.Error()})
		return
	}
	level := game.LevelState{Level: req.Level, SuperMode: mode}

	seed := rand.Uint64()
	if req.Seed != nil {
		seed = *req.Seed
	}
	var dailyDate string
	if req.Daily {
		ch := daily.For(s.now(), s.opts.DailySalt)
		level, seed, dailyDate = ch.Level, ch.Seed, ch.Date
	}
	if err := level.Validate(); err != nil {
		s.writeError(w, err)
		return
	}

	res, err := s.createSession(r, level, seed)
	if err != nil {
		s.writeError(w, err)
		return
	}
	res.Daily = dailyDate
	writeJSON(w, http.StatusCreated, res)
}

func (s *Server) createSession(r *http.Request, level game.LevelState, seed uint64) (newSessionRes, error) {
	id := uuid.NewString()
	rec := game.NewRecorder()
	ctl := game.NewController(
		game.NewSession(id, level),
		s.catalog,
		game.WithPresenter(rec),
		game.WithSeed(seed),
		game.WithTimings(s.opts.Timings),
		game.WithLogger(s.log),
	)
	if err := s.store.Save(r.Context(), store.NewEntry(ctl, rec, s.now)); err != nil {
		return newSessionRes{}, fmt.Errorf("save session: %w", err)
	}
	tok, exp, err := s.signToken(id)
	if err != nil {
		return newSessionRes{}, fmt.Errorf("sign token: %w", err)
	}
	s.log.Info().Str("session", id).Str("level", level.String()).Msg("session created")
	return newSessionRes{SessionID: id, Token: tok, ExpiresAt: exp, Level: level}, nil
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, entryFrom(r).View())
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	e := entryFrom(r)
	_ = s.store.Delete(r.Context(), e.ID)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// actionRes is returned by every session action: an optional result plus
// the view right after the action started.
type actionRes struct {
	Result any       `json:"result,omitempty"`
	View   game.View `json:"view"`
}

// act adapts a controller action into a handler.
func (s *Server) act(fn func(*game.Controller, *http.Request) (any, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var res actionRes
		err := entryFrom(r).Do(func(c *game.Controller) error {
			out, err := fn(c, r)
			if err != nil {
				return err
			}
			res = actionRes{Result: out, View: c.View()}
			return nil
		})
		if err != nil {
			s.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

type pickReq struct {
	Item string `json:"item"`
}

func (s *Server) handlePick(w http.ResponseWriter, r *http.Request) {
	var req pickReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Item == "" {
		writeJSON(w, http.StatusBadRequest, errorRes{Error: "bad_json"})
		return
	}
	s.act(func(c *game.Controller, _ *http.Request) (any, error) {
		v, err := c.Pick(req.Item)
		if err != nil {
			return nil, err
		}
		return map[string]game.Verdict{"verdict": v}, nil
	})(w, r)
}

type exitReelReq struct {
	Replay bool `json:"replay"`
}

func (s *Server) handleExitReel(w http.ResponseWriter, r *http.Request) {
	req := exitReelReq{Replay: true}
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorRes{Error: "bad_json"})
			return
		}
	}
	s.act(func(c *game.Controller, _ *http.Request) (any, error) {
		return nil, c.ExitReel(req.Replay)
	})(w, r)
}

func (s *Server) handleNavigate(w http.ResponseWriter, r *http.Request) {
	var dir game.Direction
	switch chi.URLParam(r, "dir") {
	case "next":
		dir = game.Forward
	case "prev":
		dir = game.Backward
	default:
		writeJSON(w, http.StatusBadRequest, errorRes{Error: "bad_request", Message: "dir must be next or prev"})
		return
	}
	s.act(func(c *game.Controller, _ *http.Request) (any, error) {
		moved, err := c.NavigateReel(dir)
		if err != nil {
			return nil, err
		}
		return map[string]bool{"moved": moved}, nil
	})(w, r)
}

type eventsRes struct {
	Events []game.Command `json:"events"`
	Next   int            `json:"next"`
}

// handleEvents returns the command log after ?after=n. Clients poll with
// the returned next cursor; polling with a cursor acknowledges, and drops,
// everything up to it.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	after := 0
	if v := r.URL.Query().Get("after"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, errorRes{Error: "bad_request", Message: "after must be a non-negative integer"})
			return
		}
		after = n
	}
	e := entryFrom(r)
	e.View() // catch the scheduler up before reading the log
	e.Events.Trim(after) // everything up to the cursor has been read
	events := e.Events.Since(after)
	next := after
	if len(events) > 0 {
		next = events[len(events)-1].Seq
	}
	writeJSON(w, http.StatusOK, eventsRes{Events: events, Next: next})
}
