package catalog

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/ariefcatur/hospitality-pos/internal/apperr"
	"github.com/ariefcatur/hospitality-pos/internal/orders"
	"github.com/ariefcatur/hospitality-pos/internal/postgres"
)

type Store struct{ DB postgres.Querier }

var _ Repository = (*Store)(nil)

func (s *Store) ListProducts(ctx context.Context, f ProductFilter) ([]orders.Product, error) {
	rows, err := s.DB.Query(ctx, `
		SELECT `+orders.ProductColumns+` FROM products
		WHERE ($1 = '' OR kind = $1)
		  AND ($2 = '' OR name ILIKE '%' || $2 || '%')
		ORDER BY name`, string(f.Kind), f.Query)
	if err != nil {
		return nil, apperr.Internal("list products", err)
	}
	defer rows.Close()

	out := []orders.Product{}
	for rows.Next() {
		p, err := orders.ScanProduct(rows)
		if err != nil {
			return nil, apperr.Internal("scan product", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal("list products", err)
	}
	return out, nil
}

func (s *Store) GetProduct(ctx context.Context, id string) (orders.Product, error) {
	p, err := orders.ScanProduct(s.DB.QueryRow(ctx, `SELECT `+orders.ProductColumns+` FROM products WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return orders.Product{}, apperr.NotFound("product", id)
	}
	if err != nil {
		return orders.Product{}, apperr.Internal("get product", err)
	}
	return p, nil
}

// UpdateProduct never touches stock; that only moves through stock movements.
func (s *Store) UpdateProduct(ctx context.Context, p orders.Product) error {
	ct, err := s.DB.Exec(ctx, `
		UPDATE products
		SET name=$2, category=$3, purchase_price=$4, sale_price=$5, unit=$6, updated_at=$7
		WHERE id=$1`,
		p.ID, p.Name, p.Category, p.PurchasePrice, p.SalePrice, p.Unit, p.UpdatedAt)
	if err != nil {
		return apperr.Internal("update product", err)
	}
	if ct.RowsAffected() == 0 {
		return apperr.NotFound("product", p.ID)
	}
	return nil
}

func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	ct, err := s.DB.Exec(ctx, `DELETE FROM products WHERE id=$1`, id)
	if postgres.IsForeignKeyViolation(err) {
		return apperr.InvalidState("product is referenced by orders or stock movements")
	}
	if err != nil {
		return apperr.Internal("delete product", err)
	}
	if ct.RowsAffected() == 0 {
		return apperr.NotFound("product", id)
	}
	return nil
}

func (s *Store) InsertTable(ctx context.Context, t Table) error {
	_, err := s.DB.Exec(ctx, `
		INSERT INTO dining_tables(id, label, venue, seats, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		t.ID, t.Label, string(t.Venue), t.Seats, t.CreatedAt)
	if postgres.IsUniqueViolation(err) {
		return apperr.Validation("label", "a table with this label already exists in the venue")
	}
	if err != nil {
		return apperr.Internal("insert table", err)
	}
	return nil
}

func (s *Store) ListTables(ctx context.Context, venue Venue) ([]Table, error) {
	rows, err := s.DB.Query(ctx, `
		SELECT id, label, venue, seats, created_at FROM dining_tables
		WHERE ($1 = '' OR venue = $1)
		ORDER BY venue, label`, string(venue))
	if err != nil {
		return nil, apperr.Internal("list tables", err)
	}
	defer rows.Close()

	out := []Table{}
	for rows.Next() {
		var t Table
		if err := rows.Scan(&t.ID, &t.Label, &t.Venue, &t.Seats, &t.CreatedAt); err != nil {
			return nil, apperr.Internal("scan table", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal("list tables", err)
	}
	return out, nil
}

func (s *Store) GetTable(ctx context.Context, id string) (Table, error) {
	var t Table
	err := s.DB.QueryRow(ctx, `SELECT id, label, venue, seats, created_at FROM dining_tables WHERE id=$1`, id).
		Scan(&t.ID, &t.Label, &t.Venue, &t.Seats, &t.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Table{}, apperr.NotFound("table", id)
	}
	if err != nil {
		return Table{}, apperr.Internal("get table", err)
	}
	return t, nil
}

func (s *Store) UpdateTable(ctx context.Context, t Table) error {
	ct, err := s.DB.Exec(ctx, `UPDATE dining_tables SET label=$2, venue=$3, seats=$4 WHERE id=$1`,
		t.ID, t.Label, string(t.Venue), t.Seats)
	if postgres.IsUniqueViolation(err) {
		return apperr.Validation("label", "a table with this label already exists in the venue")
	}
	if err != nil {
		return apperr.Internal("update table", err)
	}
	if ct.RowsAffected() == 0 {
		return apperr.NotFound("table", t.ID)
	}
	return nil
}

func (s *Store) DeleteTable(ctx context.Context, id string) error {
	ct, err := s.DB.Exec(ctx, `DELETE FROM dining_tables WHERE id=$1`, id)
	if err != nil {
		return apperr.Internal("delete table", err)
	}
	if ct.RowsAffected() == 0 {
		return apperr.NotFound("table", id)
	}
	return nil
}
