// internal/httpserver/server.go
//
// HTTP server wiring for the matchup backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs,
//     access logging).
//   - Public endpoints: "/", "/health", "/themes".
//   - Session creation: POST /session/new returns an ID plus a bearer token.
//   - Session endpoints (token required): mounted under /session/{id}.
//   - Daily Challenge endpoints: mounted under /daily.
//
// Notes:
//   - CORS is origin-aware and credentials-enabled for the web client.
//   - Every session request catches that session's scheduler up to wall-clock
//     time before touching it, so animations "happen" between requests.
//   - Idle sessions are swept in the background while serving.

package httpserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog"

	"github.com/robalobadob/matchup/internal/game"
	"github.com/robalobadob/matchup/internal/store"
	"github.com/robalobadob/matchup/internal/themes"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Options configures a Server. Zero values fall back to development
// defaults.
type Options struct {
	ClientOrigin string
	JWTSecret    string
	JWTExpires   time.Duration
	DailySalt    string
	Timings      game.Timings
	SessionIdle  time.Duration
	Logger       zerolog.Logger
	Clock        func() time.Time
}

// Server bundles router, session store and theme catalog.
type Server struct {
	r       *chi.Mux
	store   store.Store
	catalog *themes.Catalog
	opts    Options
	log     zerolog.Logger
	now     func() time.Time
}

// New constructs a Server, installs middleware, and registers routes.
func New(st store.Store, catalog *themes.Catalog, opts Options) *Server {
	if opts.ClientOrigin == "" {
		opts.ClientOrigin = "http://localhost:5173"
	}
	if opts.JWTSecret == "" {
		opts.JWTSecret = "dev_secret_change_me"
	}
	if opts.JWTExpires <= 0 {
		opts.JWTExpires = 12 * time.Hour
	}
	if opts.SessionIdle <= 0 {
		opts.SessionIdle = time.Hour
	}
	if opts.Timings == (game.Timings{}) {
		opts.Timings = game.DefaultTimings()
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	s := &Server{
		r:       chi.NewRouter(),
		store:   st,
		catalog: catalog,
		opts:    opts,
		log:     opts.Logger,
		now:     opts.Clock,
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID)                 // add X-Request-ID
	s.r.Use(chimw.RealIP)                    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(s.accessLog)                     // one line per request
	s.r.Use(chimw.Recoverer)                 // recover from panics
	s.r.Use(chimw.Timeout(10 * time.Second)) // bound handler time
	s.r.Use(jsonContentType)                 // default JSON responses
	s.r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{opts.ClientOrigin},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"service":"matchup","endpoints":["/health","/themes","POST /session/new","/session/{id}/*","/daily"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
	s.r.Get("/themes", s.handleThemes)

	s.r.Post("/session/new", s.handleNewSession)
	s.mountSessions()
	s.mountDaily(s.r)

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
	})

	return s
}

// Start begins serving HTTP on addr and sweeps idle sessions until the
// server exits.
func (s *Server) Start(addr string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.sweep(ctx)
	return http.ListenAndServe(addr, s.r)
}

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

func (s *Server) sweep(ctx context.Context) {
	t := time.NewTicker(s.opts.SessionIdle / 4)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := s.store.Sweep(ctx, s.opts.SessionIdle); n > 0 {
				s.log.Info().Int("sessions", n).Msg("swept idle sessions")
			}
		}
	}
}

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// accessLog writes one zerolog line per request.
func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("took", time.Since(start)).
			Str("reqId", chimw.GetReqID(r.Context())).
			Msg("http")
	})
}

// ------------------------------ helpers ------------------------------------

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorRes struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// writeError maps game and store errors onto HTTP statuses.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status, code := http.StatusInternalServerError, "internal"
	switch {
	case errors.Is(err, store.ErrNotFound):
		status, code = http.StatusNotFound, "not_found"
	case errors.Is(err, game.ErrInputLocked):
		status, code = http.StatusLocked, "input_locked"
	case errors.Is(err, game.ErrTransitionInFlight):
		status, code = http.StatusConflict, "transition_in_flight"
	case errors.Is(err, game.ErrBadTransition),
		errors.Is(err, game.ErrNotPlaying),
		errors.Is(err, game.ErrTrayCovered),
		errors.Is(err, game.ErrReelBusy),
		errors.Is(err, game.ErrReelNotShown):
		status, code = http.StatusConflict, "conflict"
	case errors.Is(err, game.ErrNotInTray), errors.Is(err, game.ErrInvalidLevel):
		status, code = http.StatusBadRequest, "bad_request"
	case errors.Is(err, game.ErrNotEnoughThemes),
		errors.Is(err, game.ErrInsufficientThemeItems),
		errors.Is(err, game.ErrUnknownTheme),
		errors.Is(err, game.ErrThemePoolExhausted):
		status, code = http.StatusInternalServerError, "catalog"
	}
	if status >= 500 {
		s.log.Error().Err(err).Msg("request failed")
	}
	writeJSON(w, status, errorRes{Error: code, Message: err.Error()})
}

func (s *Server) handleThemes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"count":  s.catalog.Len(),
		"themes": s.catalog.Summaries(),
	})
}
