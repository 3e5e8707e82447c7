package orders

import (
	"context"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

const (
	EventOrderCreated  = "OrderCreated"
	EventOrderInvoiced = "OrderInvoiced"
	EventStockMoved    = "StockMoved"
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

type LinePayload struct {
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

type OrderCreatedPayload struct {
	OrderID  string          `json:"order_id"`
	TableID  *string         `json:"table_id,omitempty"`
	StaffID  *string         `json:"staff_id,omitempty"`
	Lines    []LinePayload   `json:"lines"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

type OrderInvoicedPayload struct {
	OrderID   string          `json:"order_id"`
	InvoiceID string          `json:"invoice_id"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Tax       decimal.Decimal `json:"tax"`
	Total     decimal.Decimal `json:"total"`
}

type StockMovedPayload struct {
	MovementID string          `json:"movement_id"`
	ProductID  string          `json:"product_id"`
	Direction  Direction       `json:"direction"`
	Quantity   decimal.Decimal `json:"quantity"`
	Reference  string          `json:"reference,omitempty"`
}

type traceKey struct{}

// WithTraceID attaches the request id that ends up in event envelopes.
func WithTraceID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, traceKey{}, id)
}

func TraceIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(traceKey{}).(string)
	return id
}
