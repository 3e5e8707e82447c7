package httpx

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ariefcatur/hospitality-pos/internal/auth"
	"github.com/ariefcatur/hospitality-pos/internal/staff"
)

// StaffService is satisfied by *staff.Service.
type StaffService interface {
	Create(ctx context.Context, in staff.NewUserInput) (staff.User, error)
	Get(ctx context.Context, id string) (staff.User, error)
	List(ctx context.Context, role string) ([]staff.User, error)
	Update(ctx context.Context, id string, in staff.UpdateUserInput) (staff.User, error)
	Delete(ctx context.Context, id string) error
}

type StaffHandler struct {
	Staff StaffService
}

func (h *StaffHandler) Register(r chi.Router, g *auth.Gate) {
	r.Route("/staff", func(r chi.Router) {
		r.Use(g.Require(rolesStaff...))
		r.Post("/", h.create)
		r.Get("/", h.list)
		r.Get("/{id}", h.get)
		r.Patch("/{id}", h.update)
		r.Delete("/{id}", h.delete)
	})
	r.With(g.Require(rolesAnyStaff...)).Get("/me", h.me)
}

func (h *StaffHandler) create(w http.ResponseWriter, r *http.Request) {
	var req staff.NewUserInput
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	u, err := h.Staff.Create(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

func (h *StaffHandler) list(w http.ResponseWriter, r *http.Request) {
	list, err := h.Staff.List(r.Context(), r.URL.Query().Get("role"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *StaffHandler) get(w http.ResponseWriter, r *http.Request) {
	u, err := h.Staff.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (h *StaffHandler) me(w http.ResponseWriter, r *http.Request) {
	s, _ := auth.SessionFrom(r.Context())
	u, err := h.Staff.Get(r.Context(), s.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (h *StaffHandler) update(w http.ResponseWriter, r *http.Request) {
	var req staff.UpdateUserInput
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	u, err := h.Staff.Update(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (h *StaffHandler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Staff.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
