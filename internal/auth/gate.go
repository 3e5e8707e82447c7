package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ariefcatur/hospitality-pos/internal/apperr"
)

const CookieName = "session"

// SessionReader is satisfied by *Sessions.
type SessionReader interface {
	Get(ctx context.Context, token string) (Session, error)
}

// Gate resolves the caller's session and guards routes by role.
type Gate struct {
	Sessions SessionReader
	Log      zerolog.Logger

	// Deny writes the refusal; nil writes a bare JSON Forbidden body.
	Deny func(w http.ResponseWriter, r *http.Request, err error)
}

type sessionKey struct{}

// TokenFrom reads a bearer token from the Authorization header, then the session cookie.
func TokenFrom(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if tok, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(tok)
		}
	}
	if c, err := r.Cookie(CookieName); err == nil {
		return c.Value
	}
	return ""
}

func (g *Gate) CurrentSession(r *http.Request) (Session, bool) {
	if s, ok := r.Context().Value(sessionKey{}).(Session); ok {
		return s, true
	}
	tok := TokenFrom(r)
	if tok == "" {
		return Session{}, false
	}
	s, err := g.Sessions.Get(r.Context(), tok)
	if err != nil {
		if !errors.Is(err, apperr.ErrNotFound) {
			g.Log.Error().Err(err).Msg("session lookup")
		}
		return Session{}, false
	}
	return s, true
}

func (g *Gate) CurrentRole(r *http.Request) (Role, bool) {
	s, ok := g.CurrentSession(r)
	return s.Role, ok
}

// Require lets the request through only when the caller holds one of roles.
func (g *Gate) Require(roles ...Role) func(http.Handler) http.Handler {
	allowed := make(map[Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, ok := g.CurrentSession(r)
			if !ok || !allowed[s.Role] {
				g.deny(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey{}, s)))
		})
	}
}

// SessionFrom returns the session Require attached to ctx.
func SessionFrom(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(Session)
	return s, ok
}

func (g *Gate) deny(w http.ResponseWriter, r *http.Request) {
	err := apperr.Forbidden()
	if g.Deny != nil {
		g.Deny(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Kind.String(), "message": err.Message})
}
