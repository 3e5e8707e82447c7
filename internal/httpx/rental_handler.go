package httpx

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ariefcatur/hospitality-pos/internal/auth"
	"github.com/ariefcatur/hospitality-pos/internal/rental"
)

// RentalService is satisfied by *rental.Service.
type RentalService interface {
	CreateTenant(ctx context.Context, in rental.TenantInput) (rental.Tenant, error)
	ListTenants(ctx context.Context) ([]rental.Tenant, error)
	GetTenant(ctx context.Context, id string) (rental.Tenant, error)
	UpdateTenant(ctx context.Context, id string, in rental.TenantInput) (rental.Tenant, error)
	DeleteTenant(ctx context.Context, id string) error

	CreateLease(ctx context.Context, in rental.LeaseInput) (rental.Lease, error)
	ListLeases(ctx context.Context, tenantID, status string) ([]rental.Lease, error)
	GetLease(ctx context.Context, id string) (rental.Lease, error)
	TerminateLease(ctx context.Context, id, endDate string) (rental.Lease, error)

	RecordPayment(ctx context.Context, leaseID string, in rental.PaymentInput) (rental.Payment, error)
	ListPayments(ctx context.Context, leaseID string) ([]rental.Payment, error)
}

type RentalHandler struct {
	Rental RentalService
}

type terminateReq struct {
	EndDate string `json:"end_date"`
}

func (h *RentalHandler) Register(r chi.Router, g *auth.Gate) {
	r.Route("/tenants", func(r chi.Router) {
		r.With(g.Require(rolesRentalRead...)).Get("/", h.listTenants)
		r.With(g.Require(rolesRentalRead...)).Get("/{id}", h.getTenant)
		r.With(g.Require(rolesRental...)).Post("/", h.createTenant)
		r.With(g.Require(rolesRental...)).Put("/{id}", h.updateTenant)
		r.With(g.Require(rolesRental...)).Delete("/{id}", h.deleteTenant)
	})
	r.Route("/leases", func(r chi.Router) {
		r.With(g.Require(rolesRentalRead...)).Get("/", h.listLeases)
		r.With(g.Require(rolesRentalRead...)).Get("/{id}", h.getLease)
		r.With(g.Require(rolesRental...)).Post("/", h.createLease)
		r.With(g.Require(rolesRental...)).Post("/{id}/terminate", h.terminateLease)

		r.With(g.Require(rolesRentalRead...)).Get("/{id}/payments", h.listPayments)
		r.With(g.Require(rolesRentalDesk...)).Post("/{id}/payments", h.recordPayment)
	})
}

func (h *RentalHandler) createTenant(w http.ResponseWriter, r *http.Request) {
	var req rental.TenantInput
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	t, err := h.Rental.CreateTenant(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (h *RentalHandler) listTenants(w http.ResponseWriter, r *http.Request) {
	list, err := h.Rental.ListTenants(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *RentalHandler) getTenant(w http.ResponseWriter, r *http.Request) {
	t, err := h.Rental.GetTenant(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *RentalHandler) updateTenant(w http.ResponseWriter, r *http.Request) {
	var req rental.TenantInput
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	t, err := h.Rental.UpdateTenant(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *RentalHandler) deleteTenant(w http.ResponseWriter, r *http.Request) {
	if err := h.Rental.DeleteTenant(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *RentalHandler) createLease(w http.ResponseWriter, r *http.Request) {
	var req rental.LeaseInput
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	l, err := h.Rental.CreateLease(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, l)
}

func (h *RentalHandler) listLeases(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	list, err := h.Rental.ListLeases(r.Context(), q.Get("tenant_id"), q.Get("status"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *RentalHandler) getLease(w http.ResponseWriter, r *http.Request) {
	l, err := h.Rental.GetLease(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func (h *RentalHandler) terminateLease(w http.ResponseWriter, r *http.Request) {
	var req terminateReq
	// An empty body terminates as of today.
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
	}
	l, err := h.Rental.TerminateLease(r.Context(), chi.URLParam(r, "id"), req.EndDate)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func (h *RentalHandler) recordPayment(w http.ResponseWriter, r *http.Request) {
	var req rental.PaymentInput
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	p, err := h.Rental.RecordPayment(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *RentalHandler) listPayments(w http.ResponseWriter, r *http.Request) {
	list, err := h.Rental.ListPayments(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}
