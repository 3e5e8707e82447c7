// Package rental runs the property side: tenants, their leases and the rent
// payments booked against them.
package rental

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/ariefcatur/hospitality-pos/internal/apperr"
)

const dateLayout = "2006-01-02"

type LeaseFilter struct {
	TenantID string
	Status   LeaseStatus
}

type Repository interface {
	InsertTenant(ctx context.Context, t Tenant) error
	ListTenants(ctx context.Context) ([]Tenant, error)
	GetTenant(ctx context.Context, id string) (Tenant, error)
	UpdateTenant(ctx context.Context, t Tenant) error
	DeleteTenant(ctx context.Context, id string) error

	InsertLease(ctx context.Context, l Lease) error
	ListLeases(ctx context.Context, f LeaseFilter) ([]Lease, error)
	GetLease(ctx context.Context, id string) (Lease, error)
	SetLeaseStatus(ctx context.Context, id string, from, to LeaseStatus, end time.Time) error

	InsertPayment(ctx context.Context, p Payment) error
	ListPayments(ctx context.Context, leaseID string) ([]Payment, error)
}

// ExchangeRateSource is satisfied by *settings.Service.
type ExchangeRateSource interface {
	ExchangeRate(ctx context.Context) (decimal.Decimal, error)
}

type Service struct {
	Repo  Repository
	Rates ExchangeRateSource
	Log   zerolog.Logger
	Now   func() time.Time
}

type TenantInput struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

type LeaseInput struct {
	TenantID    string          `json:"tenant_id"`
	Unit        string          `json:"unit"`
	MonthlyRent decimal.Decimal `json:"monthly_rent"`
	StartDate   string          `json:"start_date"`
	EndDate     string          `json:"end_date"`
}

type PaymentInput struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
	Method   string          `json:"method"`
}

func (s *Service) CreateTenant(ctx context.Context, in TenantInput) (Tenant, error) {
	t, err := tenantFrom(in)
	if err != nil {
		return Tenant{}, err
	}
	t.ID = uuid.NewString()
	t.CreatedAt = s.now()
	if err := s.Repo.InsertTenant(ctx, t); err != nil {
		return Tenant{}, err
	}
	return t, nil
}

func (s *Service) ListTenants(ctx context.Context) ([]Tenant, error) {
	return s.Repo.ListTenants(ctx)
}

func (s *Service) GetTenant(ctx context.Context, id string) (Tenant, error) {
	return s.Repo.GetTenant(ctx, id)
}

func (s *Service) UpdateTenant(ctx context.Context, id string, in TenantInput) (Tenant, error) {
	cur, err := s.Repo.GetTenant(ctx, id)
	if err != nil {
		return Tenant{}, err
	}
	t, err := tenantFrom(in)
	if err != nil {
		return Tenant{}, err
	}
	t.ID, t.CreatedAt = cur.ID, cur.CreatedAt
	if err := s.Repo.UpdateTenant(ctx, t); err != nil {
		return Tenant{}, err
	}
	return t, nil
}

func (s *Service) DeleteTenant(ctx context.Context, id string) error {
	return s.Repo.DeleteTenant(ctx, id)
}

func (s *Service) CreateLease(ctx context.Context, in LeaseInput) (Lease, error) {
	l := Lease{
		TenantID:    strings.TrimSpace(in.TenantID),
		Unit:        strings.TrimSpace(in.Unit),
		MonthlyRent: in.MonthlyRent,
		Status:      LeaseActive,
	}
	switch {
	case l.TenantID == "":
		return Lease{}, apperr.Validation("tenant_id", "tenant_id is required")
	case l.Unit == "":
		return Lease{}, apperr.Validation("unit", "unit is required")
	case !l.MonthlyRent.IsPositive():
		return Lease{}, apperr.Validation("monthly_rent", "monthly_rent must be positive")
	}
	start, err := parseDate("start_date", in.StartDate)
	if err != nil {
		return Lease{}, err
	}
	l.StartDate = start
	if strings.TrimSpace(in.EndDate) != "" {
		end, err := parseDate("end_date", in.EndDate)
		if err != nil {
			return Lease{}, err
		}
		if !end.After(start) {
			return Lease{}, apperr.Validation("end_date", "end_date must be after start_date")
		}
		l.EndDate = &end
	}

	l.ID = uuid.NewString()
	l.CreatedAt = s.now()
	if err := s.Repo.InsertLease(ctx, l); err != nil {
		return Lease{}, err
	}
	s.Log.Info().Str("lease_id", l.ID).Str("tenant_id", l.TenantID).Str("unit", l.Unit).Msg("lease created")
	return l, nil
}

func (s *Service) ListLeases(ctx context.Context, tenantID, status string) ([]Lease, error) {
	f := LeaseFilter{TenantID: strings.TrimSpace(tenantID)}
	if status = strings.TrimSpace(status); status != "" {
		f.Status = LeaseStatus(strings.ToUpper(status))
		if _, ok := validNext[f.Status]; !ok {
			return nil, apperr.Validation("status", "status must be ACTIVE or TERMINATED")
		}
	}
	return s.Repo.ListLeases(ctx, f)
}

func (s *Service) GetLease(ctx context.Context, id string) (Lease, error) {
	return s.Repo.GetLease(ctx, id)
}

// TerminateLease ends an active lease, today unless endDate is given.
func (s *Service) TerminateLease(ctx context.Context, id, endDate string) (Lease, error) {
	l, err := s.Repo.GetLease(ctx, id)
	if err != nil {
		return Lease{}, err
	}
	if !CanTransition(l.Status, LeaseTerminated) {
		return Lease{}, apperr.InvalidState("lease is already terminated")
	}
	end := s.now().Truncate(24 * time.Hour)
	if strings.TrimSpace(endDate) != "" {
		if end, err = parseDate("end_date", endDate); err != nil {
			return Lease{}, err
		}
	}
	if end.Before(l.StartDate) {
		return Lease{}, apperr.Validation("end_date", "end_date must not be before start_date")
	}
	if err := s.Repo.SetLeaseStatus(ctx, id, l.Status, LeaseTerminated, end); err != nil {
		return Lease{}, err
	}
	l.Status, l.EndDate = LeaseTerminated, &end
	s.Log.Info().Str("lease_id", id).Msg("lease terminated")
	return l, nil
}

// RecordPayment converts USD payments into local currency at the stored rate.
func (s *Service) RecordPayment(ctx context.Context, leaseID string, in PaymentInput) (Payment, error) {
	if !in.Amount.IsPositive() {
		return Payment{}, apperr.Validation("amount", "amount must be positive")
	}
	cur := Currency(strings.ToUpper(strings.TrimSpace(in.Currency)))
	if cur == "" {
		cur = CurrencyLocal
	}
	p := Payment{
		ID:          uuid.NewString(),
		LeaseID:     strings.TrimSpace(leaseID),
		Amount:      in.Amount,
		Currency:    cur,
		AmountLocal: in.Amount,
		Method:      strings.ToUpper(strings.TrimSpace(in.Method)),
		PaidAt:      s.now(),
	}
	if p.Method == "" {
		p.Method = "CASH"
	}
	switch cur {
	case CurrencyLocal:
	case CurrencyUSD:
		rate, err := s.Rates.ExchangeRate(ctx)
		if err != nil {
			return Payment{}, err
		}
		p.AmountLocal = in.Amount.Mul(rate).Round(2)
	default:
		return Payment{}, apperr.Validation("currency", "currency must be LOCAL or USD")
	}

	if err := s.Repo.InsertPayment(ctx, p); err != nil {
		return Payment{}, err
	}
	s.Log.Info().Str("lease_id", p.LeaseID).Str("amount_local", p.AmountLocal.StringFixed(2)).Msg("rent payment recorded")
	return p, nil
}

func (s *Service) ListPayments(ctx context.Context, leaseID string) ([]Payment, error) {
	if _, err := s.Repo.GetLease(ctx, leaseID); err != nil {
		return nil, err
	}
	return s.Repo.ListPayments(ctx, leaseID)
}

func tenantFrom(in TenantInput) (Tenant, error) {
	t := Tenant{
		Name:  strings.TrimSpace(in.Name),
		Phone: strings.TrimSpace(in.Phone),
		Email: strings.ToLower(strings.TrimSpace(in.Email)),
	}
	if t.Name == "" {
		return Tenant{}, apperr.Validation("name", "name is required")
	}
	return t, nil
}

func parseDate(field, raw string) (time.Time, error) {
	d, err := time.Parse(dateLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, apperr.Validation(field, field+" must be a date (YYYY-MM-DD)")
	}
	return d, nil
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}
