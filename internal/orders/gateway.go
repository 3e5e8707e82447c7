package orders

import (
	"context"

	"github.com/shopspring/decimal"
)

// Gateway is the persistence surface the order core depends on. RunAtomic
// executes fn inside one transaction: fn's error rolls everything back.
type Gateway interface {
	FindOrder(ctx context.Context, id string) (Order, error)
	ListOrders(ctx context.Context, f OrderFilter) ([]Order, error)
	ListMovements(ctx context.Context, f MovementFilter) ([]StockMovement, error)
	FindInvoice(ctx context.Context, id string) (Invoice, error)
	FindInvoiceByOrder(ctx context.Context, orderID string) (Invoice, error)
	RunAtomic(ctx context.Context, fn func(tx Tx) error) error
}

// Tx is the set of writes allowed inside RunAtomic. Lock* methods take row
// locks that are held until the transaction ends.
type Tx interface {
	// LockProducts returns the products that exist; unknown ids are absent from the map.
	LockProducts(ctx context.Context, ids []string) (map[string]Product, error)
	LockOrder(ctx context.Context, id string) (Order, error)
	InsertProduct(ctx context.Context, p *Product) error
	InsertOrder(ctx context.Context, o *Order) error
	InsertLine(ctx context.Context, l *OrderLine) error
	// AdjustStock adds delta to the product's stock and refuses to go below zero.
	AdjustStock(ctx context.Context, productID string, delta decimal.Decimal) error
	InsertMovement(ctx context.Context, m *StockMovement) error
	SumLines(ctx context.Context, orderID string) (decimal.Decimal, error)
	InsertInvoice(ctx context.Context, inv *Invoice) error
	// SetOrderStatus moves the order from one status to another; it fails if the order is no longer in from.
	SetOrderStatus(ctx context.Context, orderID string, from, to Status) error
}

type OrderFilter struct {
	Status Status
	Limit  int
}

type MovementFilter struct {
	ProductID string
	Limit     int
}
