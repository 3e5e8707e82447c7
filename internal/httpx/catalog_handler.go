package httpx

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ariefcatur/hospitality-pos/internal/auth"
	"github.com/ariefcatur/hospitality-pos/internal/catalog"
	"github.com/ariefcatur/hospitality-pos/internal/orders"
)

// CatalogService is satisfied by *catalog.Service.
type CatalogService interface {
	CreateProduct(ctx context.Context, in orders.NewProductInput) (orders.Product, error)
	ListProducts(ctx context.Context, kind, query string) ([]orders.Product, error)
	GetProduct(ctx context.Context, id string) (orders.Product, error)
	UpdateProduct(ctx context.Context, id string, patch catalog.ProductPatch) (orders.Product, error)
	DeleteProduct(ctx context.Context, id string) error

	CreateTable(ctx context.Context, in catalog.TableInput) (catalog.Table, error)
	ListTables(ctx context.Context, venue string) ([]catalog.Table, error)
	GetTable(ctx context.Context, id string) (catalog.Table, error)
	UpdateTable(ctx context.Context, id string, in catalog.TableInput) (catalog.Table, error)
	DeleteTable(ctx context.Context, id string) error
}

type CatalogHandler struct {
	Catalog CatalogService
}

func (h *CatalogHandler) Register(r chi.Router, g *auth.Gate) {
	r.Route("/products", func(r chi.Router) {
		r.With(g.Require(rolesAnyStaff...)).Get("/", h.listProducts)
		r.With(g.Require(rolesAnyStaff...)).Get("/{id}", h.getProduct)
		r.With(g.Require(rolesCatalog...)).Post("/", h.createProduct)
		r.With(g.Require(rolesCatalog...)).Patch("/{id}", h.updateProduct)
		r.With(g.Require(rolesCatalog...)).Delete("/{id}", h.deleteProduct)
	})
	r.Route("/tables", func(r chi.Router) {
		r.With(g.Require(rolesAnyStaff...)).Get("/", h.listTables)
		r.With(g.Require(rolesAnyStaff...)).Get("/{id}", h.getTable)
		r.With(g.Require(rolesTables...)).Post("/", h.createTable)
		r.With(g.Require(rolesTables...)).Put("/{id}", h.updateTable)
		r.With(g.Require(rolesTables...)).Delete("/{id}", h.deleteTable)
	})
}

func (h *CatalogHandler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req orders.NewProductInput
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	p, err := h.Catalog.CreateProduct(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *CatalogHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	list, err := h.Catalog.ListProducts(r.Context(), q.Get("kind"), q.Get("q"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *CatalogHandler) getProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.Catalog.GetProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *CatalogHandler) updateProduct(w http.ResponseWriter, r *http.Request) {
	var patch catalog.ProductPatch
	if err := decodeJSON(r, &patch); err != nil {
		writeError(w, r, err)
		return
	}
	p, err := h.Catalog.UpdateProduct(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *CatalogHandler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.Catalog.DeleteProduct(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CatalogHandler) createTable(w http.ResponseWriter, r *http.Request) {
	var req catalog.TableInput
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	t, err := h.Catalog.CreateTable(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (h *CatalogHandler) listTables(w http.ResponseWriter, r *http.Request) {
	list, err := h.Catalog.ListTables(r.Context(), r.URL.Query().Get("venue"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *CatalogHandler) getTable(w http.ResponseWriter, r *http.Request) {
	t, err := h.Catalog.GetTable(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *CatalogHandler) updateTable(w http.ResponseWriter, r *http.Request) {
	var req catalog.TableInput
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	t, err := h.Catalog.UpdateTable(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *CatalogHandler) deleteTable(w http.ResponseWriter, r *http.Request) {
	if err := h.Catalog.DeleteTable(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
