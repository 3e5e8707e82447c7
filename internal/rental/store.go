package rental

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/ariefcatur/hospitality-pos/internal/apperr"
	"github.com/ariefcatur/hospitality-pos/internal/postgres"
)

type Store struct{ DB postgres.Querier }

var _ Repository = (*Store)(nil)

func (s *Store) InsertTenant(ctx context.Context, t Tenant) error {
	_, err := s.DB.Exec(ctx, `
		INSERT INTO tenants(id, name, phone, email, created_at) VALUES ($1, $2, $3, $4, $5)`,
		t.ID, t.Name, t.Phone, t.Email, t.CreatedAt)
	if err != nil {
		return apperr.Internal("insert tenant", err)
	}
	return nil
}

func (s *Store) ListTenants(ctx context.Context) ([]Tenant, error) {
	rows, err := s.DB.Query(ctx, `SELECT id, name, phone, email, created_at FROM tenants ORDER BY name`)
	if err != nil {
		return nil, apperr.Internal("list tenants", err)
	}
	defer rows.Close()

	out := []Tenant{}
	for rows.Next() {
		var t Tenant
		if err := rows.Scan(&t.ID, &t.Name, &t.Phone, &t.Email, &t.CreatedAt); err != nil {
			return nil, apperr.Internal("scan tenant", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal("list tenants", err)
	}
	return out, nil
}

func (s *Store) GetTenant(ctx context.Context, id string) (Tenant, error) {
	var t Tenant
	err := s.DB.QueryRow(ctx, `SELECT id, name, phone, email, created_at FROM tenants WHERE id=$1`, id).
		Scan(&t.ID, &t.Name, &t.Phone, &t.Email, &t.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Tenant{}, apperr.NotFound("tenant", id)
	}
	if err != nil {
		return Tenant{}, apperr.Internal("get tenant", err)
	}
	return t, nil
}

func (s *Store) UpdateTenant(ctx context.Context, t Tenant) error {
	ct, err := s.DB.Exec(ctx, `UPDATE tenants SET name=$2, phone=$3, email=$4 WHERE id=$1`,
		t.ID, t.Name, t.Phone, t.Email)
	if err != nil {
		return apperr.Internal("update tenant", err)
	}
	if ct.RowsAffected() == 0 {
		return apperr.NotFound("tenant", t.ID)
	}
	return nil
}

func (s *Store) DeleteTenant(ctx context.Context, id string) error {
	ct, err := s.DB.Exec(ctx, `DELETE FROM tenants WHERE id=$1`, id)
	if postgres.IsForeignKeyViolation(err) {
		return apperr.InvalidState("tenant still has leases")
	}
	if err != nil {
		return apperr.Internal("delete tenant", err)
	}
	if ct.RowsAffected() == 0 {
		return apperr.NotFound("tenant", id)
	}
	return nil
}

func (s *Store) InsertLease(ctx context.Context, l Lease) error {
	_, err := s.DB.Exec(ctx, `
		INSERT INTO leases(id, tenant_id, unit, monthly_rent, start_date, end_date, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		l.ID, l.TenantID, l.Unit, l.MonthlyRent, l.StartDate, l.EndDate, string(l.Status), l.CreatedAt)
	if postgres.IsForeignKeyViolation(err) {
		return apperr.NotFound("tenant", l.TenantID)
	}
	if err != nil {
		return apperr.Internal("insert lease", err)
	}
	return nil
}

const leaseColumns = `id, tenant_id, unit, monthly_rent, start_date, end_date, status, created_at`

func (s *Store) ListLeases(ctx context.Context, f LeaseFilter) ([]Lease, error) {
	rows, err := s.DB.Query(ctx, `
		SELECT `+leaseColumns+` FROM leases
		WHERE ($1 = '' OR tenant_id = $1)
		  AND ($2 = '' OR status = $2)
		ORDER BY start_date DESC`, f.TenantID, string(f.Status))
	if err != nil {
		return nil, apperr.Internal("list leases", err)
	}
	defer rows.Close()

	out := []Lease{}
	for rows.Next() {
		l, err := scanLease(rows)
		if err != nil {
			return nil, apperr.Internal("scan lease", err)
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal("list leases", err)
	}
	return out, nil
}

func (s *Store) GetLease(ctx context.Context, id string) (Lease, error) {
	l, err := scanLease(s.DB.QueryRow(ctx, `SELECT `+leaseColumns+` FROM leases WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Lease{}, apperr.NotFound("lease", id)
	}
	if err != nil {
		return Lease{}, apperr.Internal("get lease", err)
	}
	return l, nil
}

// SetLeaseStatus only moves a lease that is still in from.
func (s *Store) SetLeaseStatus(ctx context.Context, id string, from, to LeaseStatus, end time.Time) error {
	ct, err := s.DB.Exec(ctx, `
		UPDATE leases SET status=$3, end_date=$4 WHERE id=$1 AND status=$2`,
		id, string(from), string(to), end)
	if err != nil {
		return apperr.Internal("update lease status", err)
	}
	if ct.RowsAffected() == 0 {
		return apperr.InvalidState("lease is not " + string(from))
	}
	return nil
}

// InsertPayment writes the payment only while the lease is active.
func (s *Store) InsertPayment(ctx context.Context, p Payment) error {
	ct, err := s.DB.Exec(ctx, `
		INSERT INTO lease_payments(id, lease_id, amount, currency, amount_local, method, paid_at)
		SELECT $1, l.id, $3, $4, $5, $6, $7 FROM leases l
		WHERE l.id = $2 AND l.status = 'ACTIVE'`,
		p.ID, p.LeaseID, p.Amount, string(p.Currency), p.AmountLocal, p.Method, p.PaidAt)
	if err != nil {
		return apperr.Internal("insert payment", err)
	}
	if ct.RowsAffected() == 1 {
		return nil
	}
	var status string
	err = s.DB.QueryRow(ctx, `SELECT status FROM leases WHERE id=$1`, p.LeaseID).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound("lease", p.LeaseID)
	}
	if err != nil {
		return apperr.Internal("read lease status", err)
	}
	return apperr.InvalidState("payments can only be recorded on an active lease, lease is " + status)
}

func (s *Store) ListPayments(ctx context.Context, leaseID string) ([]Payment, error) {
	rows, err := s.DB.Query(ctx, `
		SELECT id, lease_id, amount, currency, amount_local, method, paid_at
		FROM lease_payments WHERE lease_id=$1 ORDER BY paid_at`, leaseID)
	if err != nil {
		return nil, apperr.Internal("list payments", err)
	}
	defer rows.Close()

	out := []Payment{}
	for rows.Next() {
		var p Payment
		if err := rows.Scan(&p.ID, &p.LeaseID, &p.Amount, &p.Currency, &p.AmountLocal, &p.Method, &p.PaidAt); err != nil {
			return nil, apperr.Internal("scan payment", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal("list payments", err)
	}
	return out, nil
}

func scanLease(row pgx.Row) (Lease, error) {
	var l Lease
	err := row.Scan(&l.ID, &l.TenantID, &l.Unit, &l.MonthlyRent, &l.StartDate, &l.EndDate, &l.Status, &l.CreatedAt)
	return l, err
}
