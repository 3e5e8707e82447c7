package orders

import (
	"time"

	"github.com/shopspring/decimal"
)

type ProductKind string

const (
	KindDrink    ProductKind = "DRINK"
	KindMeal     ProductKind = "MEAL"
	KindMedicine ProductKind = "MEDICINE"
)

func (k ProductKind) Valid() bool {
	switch k {
	case KindDrink, KindMeal, KindMedicine:
		return true
	}
	return false
}

// Product is a sellable item. Stock may be fractional (a bottle sold by the glass).
type Product struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Kind          ProductKind     `json:"kind"`
	Category      string          `json:"category"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	SalePrice     decimal.Decimal `json:"sale_price"`
	Stock         decimal.Decimal `json:"stock"`
	Unit          string          `json:"unit"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

type Order struct {
	ID        string      `json:"id"`
	TableID   *string     `json:"table_id,omitempty"`
	StaffID   *string     `json:"staff_id,omitempty"`
	Status    Status      `json:"status"`
	CreatedAt time.Time   `json:"created_at"`
	Lines     []OrderLine `json:"lines,omitempty"`
}

// Subtotal sums the line totals.
func (o Order) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, l := range o.Lines {
		sum = sum.Add(l.LineTotal)
	}
	return sum
}

// OrderLine keeps the unit price seen when the order was taken.
type OrderLine struct {
	ID        string          `json:"id"`
	OrderID   string          `json:"order_id"`
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

type Direction string

const (
	DirectionIn  Direction = "IN"
	DirectionOut Direction = "OUT"
)

type StockMovement struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product_id"`
	Direction Direction       `json:"type"`
	Quantity  decimal.Decimal `json:"quantity"`
	Reference string          `json:"reference,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// Delta is the signed stock change the movement represents.
func (m StockMovement) Delta() decimal.Decimal {
	if m.Direction == DirectionOut {
		return m.Quantity.Neg()
	}
	return m.Quantity
}

type Invoice struct {
	ID        string          `json:"id"`
	OrderID   string          `json:"order_id"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	TaxRate   decimal.Decimal `json:"tax_rate"`
	Tax       decimal.Decimal `json:"tax"`
	Total     decimal.Decimal `json:"total"`
	CreatedAt time.Time       `json:"created_at"`
}
