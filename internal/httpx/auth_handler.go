package httpx

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ariefcatur/hospitality-pos/internal/apperr"
	"github.com/ariefcatur/hospitality-pos/internal/auth"
)

// LoginService is satisfied by *auth.Service.
type LoginService interface {
	Login(ctx context.Context, email, password string) (auth.Session, error)
	Logout(ctx context.Context, token string) error
}

type AuthHandler struct {
	Auth LoginService
	// SecureCookie marks the session cookie Secure; off for plain-HTTP dev setups.
	SecureCookie bool
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type whoamiResp struct {
	Role auth.Role `json:"role"`
}

func (h *AuthHandler) Register(r chi.Router, g *auth.Gate) {
	r.Post("/auth/login", h.login)
	r.Post("/auth/logout", h.logout)
	r.Get("/auth/role", func(w http.ResponseWriter, r *http.Request) {
		role, ok := g.CurrentRole(r)
		if !ok {
			writeError(w, r, apperr.Forbidden())
			return
		}
		writeJSON(w, http.StatusOK, whoamiResp{Role: role})
	})
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	sess, err := h.Auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    sess.Token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		Secure:   h.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, sess)
}

func (h *AuthHandler) logout(w http.ResponseWriter, r *http.Request) {
	if err := h.Auth.Logout(r.Context(), auth.TokenFrom(r)); err != nil {
		writeError(w, r, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
	})
	w.WriteHeader(http.StatusNoContent)
}
