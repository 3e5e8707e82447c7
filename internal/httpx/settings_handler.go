package httpx

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ariefcatur/hospitality-pos/internal/auth"
	"github.com/ariefcatur/hospitality-pos/internal/settings"
)

// SettingsService is satisfied by *settings.Service.
type SettingsService interface {
	List(ctx context.Context) ([]settings.Setting, error)
	Set(ctx context.Context, key, raw string) (settings.Setting, error)
}

type SettingsHandler struct {
	Settings SettingsService
}

type putSettingReq struct {
	Value string `json:"value"`
}

func (h *SettingsHandler) Register(r chi.Router, g *auth.Gate) {
	r.With(g.Require(rolesSettingsRead...)).Get("/settings", h.list)
	r.With(g.Require(rolesSettings...)).Put("/settings/{key}", h.put)
}

func (h *SettingsHandler) list(w http.ResponseWriter, r *http.Request) {
	list, err := h.Settings.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *SettingsHandler) put(w http.ResponseWriter, r *http.Request) {
	var req putSettingReq
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	st, err := h.Settings.Set(r.Context(), chi.URLParam(r, "key"), req.Value)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}
