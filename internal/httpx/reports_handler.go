package httpx

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ariefcatur/hospitality-pos/internal/apperr"
	"github.com/ariefcatur/hospitality-pos/internal/auth"
	"github.com/ariefcatur/hospitality-pos/internal/reports"
)

// ReportService is satisfied by *reports.Service.
type ReportService interface {
	DailySummary(ctx context.Context, day time.Time) (reports.Summary, error)
	LiveCounters(ctx context.Context, day time.Time) (reports.Live, error)
	SalesWorkbook(ctx context.Context, from, to time.Time, w io.Writer) error
	ReceiptPDF(ctx context.Context, invoiceID string, w io.Writer) error
}

type ReportsHandler struct {
	Reports ReportService
}

func (h *ReportsHandler) Register(r chi.Router, g *auth.Gate) {
	r.With(g.Require(rolesReports...)).Get("/reports/daily", h.daily)
	r.With(g.Require(rolesReports...)).Get("/reports/live", h.live)
	r.With(g.Require(rolesReports...)).Get("/reports/sales.xlsx", h.salesWorkbook)
	r.With(g.Require(rolesInvoicing...)).Get("/invoices/{id}/receipt.pdf", h.receipt)
}

func (h *ReportsHandler) daily(w http.ResponseWriter, r *http.Request) {
	day, err := reports.ParseDay(r.URL.Query().Get("day"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	sum, err := h.Reports.DailySummary(r.Context(), day)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func (h *ReportsHandler) live(w http.ResponseWriter, r *http.Request) {
	day, err := reports.ParseDay(r.URL.Query().Get("day"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	live, err := h.Reports.LiveCounters(r.Context(), day)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, live)
}

// salesWorkbook covers whole days from..to inclusive; both default to today.
func (h *ReportsHandler) salesWorkbook(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, err := reports.ParseDay(q.Get("from"))
	if err != nil {
		writeError(w, r, apperr.Validation("from", "from must be YYYY-MM-DD"))
		return
	}
	to, err := reports.ParseDay(q.Get("to"))
	if err != nil {
		writeError(w, r, apperr.Validation("to", "to must be YYYY-MM-DD"))
		return
	}
	if to.Before(from) {
		writeError(w, r, apperr.Validation("to", "to is before from"))
		return
	}

	var buf bytes.Buffer
	if err := h.Reports.SalesWorkbook(r.Context(), from, to.Add(24*time.Hour), &buf); err != nil {
		writeError(w, r, err)
		return
	}
	name := fmt.Sprintf("sales_%s_%s.xlsx", from.Format(reports.DayLayout), to.Format(reports.DayLayout))
	writeFile(w, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", name, buf.Bytes())
}

func (h *ReportsHandler) receipt(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var buf bytes.Buffer
	if err := h.Reports.ReceiptPDF(r.Context(), id, &buf); err != nil {
		writeError(w, r, err)
		return
	}
	writeFile(w, "application/pdf", "receipt_"+id+".pdf", buf.Bytes())
}

func writeFile(w http.ResponseWriter, contentType, name string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
