package httpx

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ariefcatur/hospitality-pos/internal/auth"
	"github.com/ariefcatur/hospitality-pos/internal/orders"
)

// OrderService is satisfied by *orders.Service.
type OrderService interface {
	CreateOrder(ctx context.Context, in orders.CreateOrderInput) (string, error)
	GetOrder(ctx context.Context, id string) (orders.Order, error)
	ListOrders(ctx context.Context, f orders.OrderFilter) ([]orders.Order, error)
	InvoiceOrder(ctx context.Context, orderID string) (orders.Invoice, error)
	GetInvoice(ctx context.Context, id string) (orders.Invoice, error)
	InvoiceForOrder(ctx context.Context, orderID string) (orders.Invoice, error)
	RecordMovement(ctx context.Context, in orders.MovementInput) (orders.StockMovement, error)
	ListMovements(ctx context.Context, f orders.MovementFilter) ([]orders.StockMovement, error)
}

type OrdersHandler struct {
	Orders OrderService
}

type CreateOrderResp struct {
	ID string `json:"id"`
}

type InvoiceResp struct {
	InvoiceID string `json:"invoice_id"`
	Total     string `json:"total"`
	Tax       string `json:"tax"`
}

func (h *OrdersHandler) Register(r chi.Router, g *auth.Gate) {
	r.With(g.Require(rolesOrdering...)).Post("/orders", h.createOrder)
	r.With(g.Require(rolesOrderRead...)).Get("/orders", h.listOrders)
	r.With(g.Require(rolesOrderRead...)).Get("/orders/{id}", h.getOrder)
	r.With(g.Require(rolesInvoicing...)).Post("/orders/{id}/invoice", h.invoiceOrder)
	r.With(g.Require(rolesInvoicing...)).Get("/orders/{id}/invoice", h.orderInvoice)
	r.With(g.Require(rolesInvoicing...)).Get("/invoices/{id}", h.getInvoice)

	r.With(g.Require(rolesStock...)).Post("/stock-movements", h.recordMovement)
	r.With(g.Require(rolesStockRead...)).Get("/stock-movements", h.listMovements)
}

func (h *OrdersHandler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req orders.CreateOrderInput
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	// The waiter taking the order is the default staff reference.
	if req.StaffID == nil {
		if s, ok := auth.SessionFrom(r.Context()); ok {
			req.StaffID = &s.UserID
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	id, err := h.Orders.CreateOrder(ctx, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, CreateOrderResp{ID: id})
}

func (h *OrdersHandler) invoiceOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	inv, err := h.Orders.InvoiceOrder(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, InvoiceResp{
		InvoiceID: inv.ID,
		Total:     inv.Total.StringFixed(2),
		Tax:       inv.Tax.StringFixed(2),
	})
}

func (h *OrdersHandler) getInvoice(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	inv, err := h.Orders.GetInvoice(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

func (h *OrdersHandler) orderInvoice(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	inv, err := h.Orders.InvoiceForOrder(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

func (h *OrdersHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	o, err := h.Orders.GetOrder(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *OrdersHandler) listOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	q := r.URL.Query()
	list, err := h.Orders.ListOrders(ctx, orders.OrderFilter{
		Status: orders.Status(q.Get("status")),
		Limit:  atoiOr(q.Get("limit"), 0),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *OrdersHandler) recordMovement(w http.ResponseWriter, r *http.Request) {
	var req orders.MovementInput
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	mv, err := h.Orders.RecordMovement(ctx, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, mv)
}

func (h *OrdersHandler) listMovements(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	q := r.URL.Query()
	list, err := h.Orders.ListMovements(ctx, orders.MovementFilter{
		ProductID: q.Get("product_id"),
		Limit:     atoiOr(q.Get("limit"), 0),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func atoiOr(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
