package httpx

import (
	"context"
	"io"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/ariefcatur/hospitality-pos/internal/auth"
	"github.com/ariefcatur/hospitality-pos/internal/catalog"
	"github.com/ariefcatur/hospitality-pos/internal/orders"
	"github.com/ariefcatur/hospitality-pos/internal/rental"
	"github.com/ariefcatur/hospitality-pos/internal/reports"
	"github.com/ariefcatur/hospitality-pos/internal/settings"
	"github.com/ariefcatur/hospitality-pos/internal/staff"
)

type ordersMock struct{ mock.Mock }

func (m *ordersMock) CreateOrder(ctx context.Context, in orders.CreateOrderInput) (string, error) {
	args := m.Called(ctx, in)
	return args.String(0), args.Error(1)
}

func (m *ordersMock) GetOrder(ctx context.Context, id string) (orders.Order, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(orders.Order), args.Error(1)
}

func (m *ordersMock) ListOrders(ctx context.Context, f orders.OrderFilter) ([]orders.Order, error) {
	args := m.Called(ctx, f)
	return args.Get(0).([]orders.Order), args.Error(1)
}

func (m *ordersMock) InvoiceOrder(ctx context.Context, orderID string) (orders.Invoice, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).(orders.Invoice), args.Error(1)
}

func (m *ordersMock) GetInvoice(ctx context.Context, id string) (orders.Invoice, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(orders.Invoice), args.Error(1)
}

func (m *ordersMock) InvoiceForOrder(ctx context.Context, orderID string) (orders.Invoice, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).(orders.Invoice), args.Error(1)
}

func (m *ordersMock) RecordMovement(ctx context.Context, in orders.MovementInput) (orders.StockMovement, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(orders.StockMovement), args.Error(1)
}

func (m *ordersMock) ListMovements(ctx context.Context, f orders.MovementFilter) ([]orders.StockMovement, error) {
	args := m.Called(ctx, f)
	return args.Get(0).([]orders.StockMovement), args.Error(1)
}

type catalogMock struct{ mock.Mock }

func (m *catalogMock) CreateProduct(ctx context.Context, in orders.NewProductInput) (orders.Product, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(orders.Product), args.Error(1)
}

func (m *catalogMock) ListProducts(ctx context.Context, kind, query string) ([]orders.Product, error) {
	args := m.Called(ctx, kind, query)
	return args.Get(0).([]orders.Product), args.Error(1)
}

func (m *catalogMock) GetProduct(ctx context.Context, id string) (orders.Product, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(orders.Product), args.Error(1)
}

func (m *catalogMock) UpdateProduct(ctx context.Context, id string, patch catalog.ProductPatch) (orders.Product, error) {
	args := m.Called(ctx, id, patch)
	return args.Get(0).(orders.Product), args.Error(1)
}

func (m *catalogMock) DeleteProduct(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *catalogMock) CreateTable(ctx context.Context, in catalog.TableInput) (catalog.Table, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(catalog.Table), args.Error(1)
}

func (m *catalogMock) ListTables(ctx context.Context, venue string) ([]catalog.Table, error) {
	args := m.Called(ctx, venue)
	return args.Get(0).([]catalog.Table), args.Error(1)
}

func (m *catalogMock) GetTable(ctx context.Context, id string) (catalog.Table, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(catalog.Table), args.Error(1)
}

func (m *catalogMock) UpdateTable(ctx context.Context, id string, in catalog.TableInput) (catalog.Table, error) {
	args := m.Called(ctx, id, in)
	return args.Get(0).(catalog.Table), args.Error(1)
}

func (m *catalogMock) DeleteTable(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type staffMock struct{ mock.Mock }

func (m *staffMock) Create(ctx context.Context, in staff.NewUserInput) (staff.User, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(staff.User), args.Error(1)
}

func (m *staffMock) Get(ctx context.Context, id string) (staff.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(staff.User), args.Error(1)
}

func (m *staffMock) List(ctx context.Context, role string) ([]staff.User, error) {
	args := m.Called(ctx, role)
	return args.Get(0).([]staff.User), args.Error(1)
}

func (m *staffMock) Update(ctx context.Context, id string, in staff.UpdateUserInput) (staff.User, error) {
	args := m.Called(ctx, id, in)
	return args.Get(0).(staff.User), args.Error(1)
}

func (m *staffMock) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type rentalMock struct{ mock.Mock }

func (m *rentalMock) CreateTenant(ctx context.Context, in rental.TenantInput) (rental.Tenant, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(rental.Tenant), args.Error(1)
}

func (m *rentalMock) ListTenants(ctx context.Context) ([]rental.Tenant, error) {
	args := m.Called(ctx)
	return args.Get(0).([]rental.Tenant), args.Error(1)
}

func (m *rentalMock) GetTenant(ctx context.Context, id string) (rental.Tenant, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(rental.Tenant), args.Error(1)
}

func (m *rentalMock) UpdateTenant(ctx context.Context, id string, in rental.TenantInput) (rental.Tenant, error) {
	args := m.Called(ctx, id, in)
	return args.Get(0).(rental.Tenant), args.Error(1)
}

func (m *rentalMock) DeleteTenant(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *rentalMock) CreateLease(ctx context.Context, in rental.LeaseInput) (rental.Lease, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(rental.Lease), args.Error(1)
}

func (m *rentalMock) ListLeases(ctx context.Context, tenantID, status string) ([]rental.Lease, error) {
	args := m.Called(ctx, tenantID, status)
	return args.Get(0).([]rental.Lease), args.Error(1)
}

func (m *rentalMock) GetLease(ctx context.Context, id string) (rental.Lease, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(rental.Lease), args.Error(1)
}

func (m *rentalMock) TerminateLease(ctx context.Context, id, endDate string) (rental.Lease, error) {
	args := m.Called(ctx, id, endDate)
	return args.Get(0).(rental.Lease), args.Error(1)
}

func (m *rentalMock) RecordPayment(ctx context.Context, leaseID string, in rental.PaymentInput) (rental.Payment, error) {
	args := m.Called(ctx, leaseID, in)
	return args.Get(0).(rental.Payment), args.Error(1)
}

func (m *rentalMock) ListPayments(ctx context.Context, leaseID string) ([]rental.Payment, error) {
	args := m.Called(ctx, leaseID)
	return args.Get(0).([]rental.Payment), args.Error(1)
}

type settingsMock struct{ mock.Mock }

func (m *settingsMock) List(ctx context.Context) ([]settings.Setting, error) {
	args := m.Called(ctx)
	return args.Get(0).([]settings.Setting), args.Error(1)
}

func (m *settingsMock) Set(ctx context.Context, key, raw string) (settings.Setting, error) {
	args := m.Called(ctx, key, raw)
	return args.Get(0).(settings.Setting), args.Error(1)
}

type reportsMock struct{ mock.Mock }

func (m *reportsMock) DailySummary(ctx context.Context, day time.Time) (reports.Summary, error) {
	args := m.Called(ctx, day)
	return args.Get(0).(reports.Summary), args.Error(1)
}

func (m *reportsMock) LiveCounters(ctx context.Context, day time.Time) (reports.Live, error) {
	args := m.Called(ctx, day)
	return args.Get(0).(reports.Live), args.Error(1)
}

func (m *reportsMock) SalesWorkbook(ctx context.Context, from, to time.Time, w io.Writer) error {
	return m.Called(ctx, from, to, w).Error(0)
}

func (m *reportsMock) ReceiptPDF(ctx context.Context, invoiceID string, w io.Writer) error {
	return m.Called(ctx, invoiceID, w).Error(0)
}

type loginMock struct{ mock.Mock }

func (m *loginMock) Login(ctx context.Context, email, password string) (auth.Session, error) {
	args := m.Called(ctx, email, password)
	return args.Get(0).(auth.Session), args.Error(1)
}

func (m *loginMock) Logout(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}
