package orders

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/ariefcatur/hospitality-pos/internal/apperr"
	"github.com/ariefcatur/hospitality-pos/internal/postgres"
)

// DB is satisfied by *pgxpool.Pool.
type DB interface {
	postgres.Querier
	BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error)
}

type Repo struct{ DB DB }

var _ Gateway = (*Repo)(nil)

// ProductColumns is the select list ScanProduct reads.
const ProductColumns = `id, name, kind, category, purchase_price, sale_price, stock, unit, created_at, updated_at`

func (r *Repo) RunAtomic(ctx context.Context, fn func(tx Tx) error) error {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return apperr.Internal("begin tx", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(&pgTx{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return apperr.Internal("commit tx", err)
	}
	return nil
}

func (r *Repo) FindOrder(ctx context.Context, id string) (Order, error) {
	var o Order
	err := r.DB.QueryRow(ctx, `SELECT id, table_id, staff_id, status, created_at FROM orders WHERE id=$1`, id).
		Scan(&o.ID, &o.TableID, &o.StaffID, &o.Status, &o.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, apperr.NotFound("order", id)
	}
	if err != nil {
		return Order{}, apperr.Internal("find order", err)
	}

	rows, err := r.DB.Query(ctx, `
		SELECT id, order_id, product_id, quantity, unit_price, line_total
		FROM order_lines WHERE order_id=$1 ORDER BY id`, id)
	if err != nil {
		return Order{}, apperr.Internal("find order lines", err)
	}
	defer rows.Close()
	for rows.Next() {
		var l OrderLine
		if err := rows.Scan(&l.ID, &l.OrderID, &l.ProductID, &l.Quantity, &l.UnitPrice, &l.LineTotal); err != nil {
			return Order{}, apperr.Internal("scan order line", err)
		}
		o.Lines = append(o.Lines, l)
	}
	if err := rows.Err(); err != nil {
		return Order{}, apperr.Internal("find order lines", err)
	}
	return o, nil
}

func (r *Repo) ListOrders(ctx context.Context, f OrderFilter) ([]Order, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, table_id, staff_id, status, created_at
		FROM orders
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_at DESC
		LIMIT $2`, string(f.Status), limitOrDefault(f.Limit))
	if err != nil {
		return nil, apperr.Internal("list orders", err)
	}
	defer rows.Close()

	out := []Order{}
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.TableID, &o.StaffID, &o.Status, &o.CreatedAt); err != nil {
			return nil, apperr.Internal("scan order", err)
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal("list orders", err)
	}
	return out, nil
}

func (r *Repo) ListMovements(ctx context.Context, f MovementFilter) ([]StockMovement, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, product_id, direction, quantity, reference, created_at
		FROM stock_movements
		WHERE ($1 = '' OR product_id = $1)
		ORDER BY created_at DESC
		LIMIT $2`, f.ProductID, limitOrDefault(f.Limit))
	if err != nil {
		return nil, apperr.Internal("list movements", err)
	}
	defer rows.Close()

	out := []StockMovement{}
	for rows.Next() {
		var m StockMovement
		if err := rows.Scan(&m.ID, &m.ProductID, &m.Direction, &m.Quantity, &m.Reference, &m.CreatedAt); err != nil {
			return nil, apperr.Internal("scan movement", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal("list movements", err)
	}
	return out, nil
}

func (r *Repo) FindInvoice(ctx context.Context, id string) (Invoice, error) {
	return r.findInvoice(ctx, `WHERE id=$1`, id)
}

func (r *Repo) FindInvoiceByOrder(ctx context.Context, orderID string) (Invoice, error) {
	return r.findInvoice(ctx, `WHERE order_id=$1`, orderID)
}

func (r *Repo) findInvoice(ctx context.Context, where, arg string) (Invoice, error) {
	var inv Invoice
	err := r.DB.QueryRow(ctx, `
		SELECT id, order_id, subtotal, tax_rate, tax, total, created_at
		FROM invoices `+where, arg).
		Scan(&inv.ID, &inv.OrderID, &inv.Subtotal, &inv.TaxRate, &inv.Tax, &inv.Total, &inv.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Invoice{}, apperr.NotFound("invoice", arg)
	}
	if err != nil {
		return Invoice{}, apperr.Internal("find invoice", err)
	}
	return inv, nil
}

type pgTx struct{ tx pgx.Tx }

// LockProducts locks rows in id order so concurrent orders over the same
// products always queue in the same sequence.
func (t *pgTx) LockProducts(ctx context.Context, ids []string) (map[string]Product, error) {
	ids = slices.Sorted(slices.Values(ids))
	rows, err := t.tx.Query(ctx, `
		SELECT `+ProductColumns+`
		FROM products WHERE id = ANY($1)
		ORDER BY id
		FOR UPDATE`, ids)
	if err != nil {
		return nil, apperr.Internal("lock products", err)
	}
	defer rows.Close()

	out := make(map[string]Product, len(ids))
	for rows.Next() {
		p, err := ScanProduct(rows)
		if err != nil {
			return nil, apperr.Internal("scan product", err)
		}
		out[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal("lock products", err)
	}
	return out, nil
}

func (t *pgTx) LockOrder(ctx context.Context, id string) (Order, error) {
	var o Order
	err := t.tx.QueryRow(ctx, `
		SELECT id, table_id, staff_id, status, created_at
		FROM orders WHERE id=$1 FOR UPDATE`, id).
		Scan(&o.ID, &o.TableID, &o.StaffID, &o.Status, &o.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, apperr.NotFound("order", id)
	}
	if err != nil {
		return Order{}, apperr.Internal("lock order", err)
	}
	return o, nil
}

func (t *pgTx) InsertProduct(ctx context.Context, p *Product) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO products(id, name, kind, category, purchase_price, sale_price, stock, unit, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, 0, $7, $8, $8)`,
		p.ID, p.Name, string(p.Kind), p.Category, p.PurchasePrice, p.SalePrice, p.Unit, p.CreatedAt)
	if err != nil {
		return apperr.Internal("insert product", err)
	}
	return nil
}

func (t *pgTx) InsertOrder(ctx context.Context, o *Order) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO orders(id, table_id, staff_id, status, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		o.ID, o.TableID, o.StaffID, string(o.Status), o.CreatedAt)
	if postgres.IsForeignKeyViolation(err) {
		return apperr.NotFound("table or staff", deref(o.TableID)+deref(o.StaffID))
	}
	if err != nil {
		return apperr.Internal("insert order", err)
	}
	return nil
}

func (t *pgTx) InsertLine(ctx context.Context, l *OrderLine) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO order_lines(id, order_id, product_id, quantity, unit_price, line_total)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		l.ID, l.OrderID, l.ProductID, l.Quantity, l.UnitPrice, l.LineTotal)
	if err != nil {
		return apperr.Internal("insert order line", err)
	}
	return nil
}

// AdjustStock is guarded in SQL as well: the update only matches while the
// result stays non-negative.
func (t *pgTx) AdjustStock(ctx context.Context, productID string, delta decimal.Decimal) error {
	ct, err := t.tx.Exec(ctx, `
		UPDATE products SET stock = stock + $2, updated_at = now()
		WHERE id=$1 AND stock + $2 >= 0`, productID, delta)
	if postgres.IsCheckViolation(err) {
		return apperr.InsufficientStock(productID, delta.Neg(), decimal.Zero)
	}
	if err != nil {
		return apperr.Internal("adjust stock", err)
	}
	if ct.RowsAffected() == 1 {
		return nil
	}

	var stock decimal.Decimal
	err = t.tx.QueryRow(ctx, `SELECT stock FROM products WHERE id=$1`, productID).Scan(&stock)
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound("product", productID)
	}
	if err != nil {
		return apperr.Internal("read stock", err)
	}
	return apperr.InsufficientStock(productID, delta.Neg(), stock)
}

func (t *pgTx) InsertMovement(ctx context.Context, m *StockMovement) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO stock_movements(id, product_id, direction, quantity, reference, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		m.ID, m.ProductID, string(m.Direction), m.Quantity, m.Reference, m.CreatedAt)
	if err != nil {
		return apperr.Internal("insert stock movement", err)
	}
	return nil
}

func (t *pgTx) SumLines(ctx context.Context, orderID string) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := t.tx.QueryRow(ctx, `SELECT COALESCE(SUM(line_total), 0) FROM order_lines WHERE order_id=$1`, orderID).Scan(&sum)
	if err != nil {
		return decimal.Zero, apperr.Internal("sum order lines", err)
	}
	return sum, nil
}

func (t *pgTx) InsertInvoice(ctx context.Context, inv *Invoice) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO invoices(id, order_id, subtotal, tax_rate, tax, total, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		inv.ID, inv.OrderID, inv.Subtotal, inv.TaxRate, inv.Tax, inv.Total, inv.CreatedAt)
	if postgres.IsUniqueViolation(err) {
		return apperr.InvalidState("order must be in progress to be invoiced")
	}
	if err != nil {
		return apperr.Internal("insert invoice", err)
	}
	return nil
}

func (t *pgTx) SetOrderStatus(ctx context.Context, orderID string, from, to Status) error {
	if !CanTransition(from, to) {
		return apperr.InvalidState(fmt.Sprintf("order cannot move from %s to %s", from, to))
	}
	ct, err := t.tx.Exec(ctx, `UPDATE orders SET status=$3 WHERE id=$1 AND status=$2`, orderID, string(from), string(to))
	if err != nil {
		return apperr.Internal("update order status", err)
	}
	if ct.RowsAffected() != 1 {
		return apperr.InvalidState(fmt.Sprintf("order is no longer %s", from))
	}
	return nil
}

func ScanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Name, &p.Kind, &p.Category, &p.PurchasePrice, &p.SalePrice, &p.Stock, &p.Unit, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func limitOrDefault(n int) int {
	if n <= 0 || n > 500 {
		return 100
	}
	return n
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
