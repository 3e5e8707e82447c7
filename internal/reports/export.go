package reports

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/skip2/go-qrcode"
	"github.com/xuri/excelize/v2"

	"github.com/ariefcatur/hospitality-pos/internal/apperr"
)

const (
	sheetInvoices  = "Invoices"
	sheetMovements = "Stock Movements"
)

// ReceiptPDF renders an A5 receipt with a QR code of the invoice id.
func (s *Service) ReceiptPDF(ctx context.Context, invoiceID string, w io.Writer) error {
	r, err := s.Repo.Receipt(ctx, invoiceID)
	if err != nil {
		return err
	}
	qr, err := qrcode.Encode(r.Invoice.ID, qrcode.Medium, 256)
	if err != nil {
		return apperr.Internal("encode receipt qr", err)
	}

	pdf := fpdf.New("P", "mm", "A5", "")
	pdf.SetTitle("Receipt "+r.Invoice.ID, true)
	// Core fonts are cp1252; names and venue arrive as UTF-8.
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 8, tr(s.venue()), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 5, tr("Invoice "+r.Invoice.ID), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 5, r.Invoice.CreatedAt.Format("2006-01-02 15:04"), "", 1, "C", false, 0, "")
	if r.Table != "" || r.Staff != "" {
		pdf.CellFormat(0, 5, tr(fmt.Sprintf("Table %s  Served by %s", dash(r.Table), dash(r.Staff))), "", 1, "C", false, 0, "")
	}
	pdf.Ln(3)

	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(62, 6, "Item", "B", 0, "L", false, 0, "")
	pdf.CellFormat(14, 6, "Qty", "B", 0, "R", false, 0, "")
	pdf.CellFormat(26, 6, "Price", "B", 0, "R", false, 0, "")
	pdf.CellFormat(26, 6, "Amount", "B", 1, "R", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	for _, l := range r.Lines {
		pdf.CellFormat(62, 6, tr(l.Name), "", 0, "L", false, 0, "")
		pdf.CellFormat(14, 6, fmt.Sprint(l.Quantity), "", 0, "R", false, 0, "")
		pdf.CellFormat(26, 6, l.UnitPrice.StringFixed(2), "", 0, "R", false, 0, "")
		pdf.CellFormat(26, 6, l.LineTotal.StringFixed(2), "", 1, "R", false, 0, "")
	}
	pdf.Ln(2)

	rate := r.Invoice.TaxRate.Shift(2).StringFixed(0)
	totals := [][2]string{
		{"Subtotal", r.Invoice.Subtotal.StringFixed(2)},
		{"Tax (" + rate + "%)", r.Invoice.Tax.StringFixed(2)},
		{"Total", r.Invoice.Total.StringFixed(2)},
	}
	for i, row := range totals {
		style := ""
		if i == len(totals)-1 {
			style = "B"
		}
		pdf.SetFont("Helvetica", style, 10)
		pdf.CellFormat(102, 6, tr(row[0]), "", 0, "R", false, 0, "")
		pdf.CellFormat(26, 6, row[1], "", 1, "R", false, 0, "")
	}

	opt := fpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr", opt, bytes.NewReader(qr))
	pdf.ImageOptions("qr", 54, pdf.GetY()+6, 40, 40, false, opt, 0, "")

	if err := pdf.Output(w); err != nil {
		return apperr.Internal("render receipt", err)
	}
	return nil
}

// SalesWorkbook writes invoices and stock movements for [from, to) to an xlsx workbook.
func (s *Service) SalesWorkbook(ctx context.Context, from, to time.Time, w io.Writer) error {
	if !to.After(from) {
		return apperr.Validation("to", "to must be after from")
	}
	invoices, err := s.Repo.Invoices(ctx, from, to)
	if err != nil {
		return err
	}
	moves, err := s.Repo.Movements(ctx, from, to)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", sheetInvoices); err != nil {
		return apperr.Internal("build workbook", err)
	}
	if _, err := f.NewSheet(sheetMovements); err != nil {
		return apperr.Internal("build workbook", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return apperr.Internal("build workbook", err)
	}

	invRows := make([][]any, 0, len(invoices)+1)
	invRows = append(invRows, []any{"Invoice", "Order", "Date", "Subtotal", "Tax rate", "Tax", "Total"})
	for _, inv := range invoices {
		invRows = append(invRows, []any{
			inv.ID, inv.OrderID, inv.CreatedAt.Format("2006-01-02 15:04"),
			inv.Subtotal.InexactFloat64(), inv.TaxRate.InexactFloat64(), inv.Tax.InexactFloat64(), inv.Total.InexactFloat64(),
		})
	}
	mvRows := make([][]any, 0, len(moves)+1)
	mvRows = append(mvRows, []any{"Movement", "Product", "Name", "Type", "Quantity", "Reference", "Date"})
	for _, m := range moves {
		mvRows = append(mvRows, []any{
			m.ID, m.ProductID, m.ProductName, string(m.Direction), m.Quantity.InexactFloat64(), m.Reference,
			m.CreatedAt.Format("2006-01-02 15:04"),
		})
	}

	for sheet, rows := range map[string][][]any{sheetInvoices: invRows, sheetMovements: mvRows} {
		if err := writeRows(f, sheet, rows); err != nil {
			return apperr.Internal("build workbook", err)
		}
		if err := f.SetCellStyle(sheet, "A1", "G1", bold); err != nil {
			return apperr.Internal("build workbook", err)
		}
		if err := f.SetColWidth(sheet, "A", "G", 18); err != nil {
			return apperr.Internal("build workbook", err)
		}
	}

	if err := f.Write(w); err != nil {
		return apperr.Internal("write workbook", err)
	}
	s.Log.Info().Int("invoices", len(invoices)).Int("movements", len(moves)).Msg("sales workbook exported")
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) venue() string {
	if s.Venue == "" {
		return "Receipt"
	}
	return s.Venue
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
