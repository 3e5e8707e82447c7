package reports

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/ariefcatur/hospitality-pos/internal/apperr"
	"github.com/ariefcatur/hospitality-pos/internal/orders"
	"github.com/ariefcatur/hospitality-pos/internal/postgres"
)

// Store runs read-only queries; nothing here takes locks.
type Store struct{ DB postgres.Querier }

var _ Repository = (*Store)(nil)

func (s *Store) InvoiceTotals(ctx context.Context, from, to time.Time) (Totals, error) {
	var t Totals
	err := s.DB.QueryRow(ctx, `
		SELECT count(*), COALESCE(sum(subtotal), 0), COALESCE(sum(tax), 0), COALESCE(sum(total), 0)
		FROM invoices WHERE created_at >= $1 AND created_at < $2`, from, to).
		Scan(&t.Invoices, &t.Subtotal, &t.Tax, &t.Total)
	if err != nil {
		return Totals{}, apperr.Internal("invoice totals", err)
	}
	return t, nil
}

func (s *Store) TopProducts(ctx context.Context, from, to time.Time, limit int) ([]ProductSales, error) {
	rows, err := s.DB.Query(ctx, `
		SELECT p.id, p.name, sum(l.quantity), sum(l.line_total)
		FROM order_lines l
		JOIN orders o ON o.id = l.order_id
		JOIN products p ON p.id = l.product_id
		WHERE o.created_at >= $1 AND o.created_at < $2
		GROUP BY p.id, p.name
		ORDER BY sum(l.quantity) DESC, p.name
		LIMIT $3`, from, to, limit)
	if err != nil {
		return nil, apperr.Internal("top products", err)
	}
	defer rows.Close()

	out := []ProductSales{}
	for rows.Next() {
		var ps ProductSales
		if err := rows.Scan(&ps.ProductID, &ps.Name, &ps.Quantity, &ps.Revenue); err != nil {
			return nil, apperr.Internal("scan top product", err)
		}
		out = append(out, ps)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal("top products", err)
	}
	return out, nil
}

func (s *Store) MovementTotals(ctx context.Context, from, to time.Time) (in, out decimal.Decimal, err error) {
	err = s.DB.QueryRow(ctx, `
		SELECT COALESCE(sum(quantity) FILTER (WHERE direction = 'IN'), 0),
		       COALESCE(sum(quantity) FILTER (WHERE direction = 'OUT'), 0)
		FROM stock_movements WHERE created_at >= $1 AND created_at < $2`, from, to).
		Scan(&in, &out)
	if err != nil {
		return decimal.Zero, decimal.Zero, apperr.Internal("movement totals", err)
	}
	return in, out, nil
}

func (s *Store) Invoices(ctx context.Context, from, to time.Time) ([]orders.Invoice, error) {
	rows, err := s.DB.Query(ctx, `
		SELECT id, order_id, subtotal, tax_rate, tax, total, created_at
		FROM invoices WHERE created_at >= $1 AND created_at < $2
		ORDER BY created_at`, from, to)
	if err != nil {
		return nil, apperr.Internal("list invoices", err)
	}
	defer rows.Close()

	out := []orders.Invoice{}
	for rows.Next() {
		var inv orders.Invoice
		if err := rows.Scan(&inv.ID, &inv.OrderID, &inv.Subtotal, &inv.TaxRate, &inv.Tax, &inv.Total, &inv.CreatedAt); err != nil {
			return nil, apperr.Internal("scan invoice", err)
		}
		out = append(out, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal("list invoices", err)
	}
	return out, nil
}

func (s *Store) Movements(ctx context.Context, from, to time.Time) ([]MovementRow, error) {
	rows, err := s.DB.Query(ctx, `
		SELECT m.id, m.product_id, p.name, m.direction, m.quantity, m.reference, m.created_at
		FROM stock_movements m JOIN products p ON p.id = m.product_id
		WHERE m.created_at >= $1 AND m.created_at < $2
		ORDER BY m.created_at`, from, to)
	if err != nil {
		return nil, apperr.Internal("list movements", err)
	}
	defer rows.Close()

	out := []MovementRow{}
	for rows.Next() {
		var m MovementRow
		if err := rows.Scan(&m.ID, &m.ProductID, &m.ProductName, &m.Direction, &m.Quantity, &m.Reference, &m.CreatedAt); err != nil {
			return nil, apperr.Internal("scan movement", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal("list movements", err)
	}
	return out, nil
}

func (s *Store) Receipt(ctx context.Context, invoiceID string) (Receipt, error) {
	var r Receipt
	inv := &r.Invoice
	err := s.DB.QueryRow(ctx, `
		SELECT i.id, i.order_id, i.subtotal, i.tax_rate, i.tax, i.total, i.created_at,
		       COALESCE(t.label, ''), COALESCE(u.name, '')
		FROM invoices i
		JOIN orders o ON o.id = i.order_id
		LEFT JOIN dining_tables t ON t.id = o.table_id
		LEFT JOIN users u ON u.id = o.staff_id
		WHERE i.id = $1`, invoiceID).
		Scan(&inv.ID, &inv.OrderID, &inv.Subtotal, &inv.TaxRate, &inv.Tax, &inv.Total, &inv.CreatedAt, &r.Table, &r.Staff)
	if errors.Is(err, pgx.ErrNoRows) {
		return Receipt{}, apperr.NotFound("invoice", invoiceID)
	}
	if err != nil {
		return Receipt{}, apperr.Internal("load receipt", err)
	}

	rows, err := s.DB.Query(ctx, `
		SELECT p.name, l.quantity, l.unit_price, l.line_total
		FROM order_lines l JOIN products p ON p.id = l.product_id
		WHERE l.order_id = $1 ORDER BY p.name`, inv.OrderID)
	if err != nil {
		return Receipt{}, apperr.Internal("load receipt lines", err)
	}
	defer rows.Close()
	for rows.Next() {
		var l ReceiptLine
		if err := rows.Scan(&l.Name, &l.Quantity, &l.UnitPrice, &l.LineTotal); err != nil {
			return Receipt{}, apperr.Internal("scan receipt line", err)
		}
		r.Lines = append(r.Lines, l)
	}
	if err := rows.Err(); err != nil {
		return Receipt{}, apperr.Internal("load receipt lines", err)
	}
	return r, nil
}
