package httpserver

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"

	"github.com/robalobadob/matchup/internal/store"
)

// signToken creates an HS256 JWT binding the bearer to one session.
func (s *Server) signToken(sessionID string) (string, time.Time, error) {
	now := s.now()
	exp := now.Add(s.opts.JWTExpires)
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sid": sessionID,
		"exp": exp.Unix(),
		"iat": now.Unix(),
	})
	ss, err := t.SignedString([]byte(s.opts.JWTSecret))
	return ss, exp, err
}

// bearer extracts the token from "Authorization: Bearer <token>".
func bearer(r *http.Request) string {
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	return ""
}

// ctxEntryKey is the context key type for the authorized session.
type ctxEntryKey struct{}

func entryFrom(r *http.Request) *store.Entry {
	e, _ := r.Context().Value(ctxEntryKey{}).(*store.Entry)
	return e
}

// requireSession enforces a valid token for the {id} in the path and
// injects the session entry into the request context.
func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenStr := bearer(r)
		if tokenStr == "" {
			writeJSON(w, http.StatusUnauthorized, errorRes{Error: "unauthorized"})
			return
		}
		claims := jwt.MapClaims{}
		token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
			return []byte(s.opts.JWTSecret), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
		if err != nil || !token.Valid {
			writeJSON(w, http.StatusUnauthorized, errorRes{Error: "invalid_token"})
			return
		}
		id := chi.URLParam(r, "id")
		if sid, _ := claims["sid"].(string); sid == "" || sid != id {
			writeJSON(w, http.StatusForbidden, errorRes{Error: "wrong_session"})
			return
		}
		e, err := s.store.Get(r.Context(), id)
		if err != nil {
			s.writeError(w, err)
			return
		}
		ctx := context.WithValue(r.Context(), ctxEntryKey{}, e)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
