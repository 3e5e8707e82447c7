package orders

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"

	"github.com/ariefcatur/hospitality-pos/internal/apperr"
	kafkax "github.com/ariefcatur/hospitality-pos/internal/kafka"
)

// EventPublisher is satisfied by *kafka.Producer.
type EventPublisher interface {
	Publish(topic string, key, value []byte, headers ...kafkago.Header)
}

// TaxRateSource is satisfied by *settings.Service.
type TaxRateSource interface {
	TaxRate(ctx context.Context) (decimal.Decimal, error)
}

type Service struct {
	Gateway     Gateway
	Rates       TaxRateSource
	Publisher   EventPublisher
	ServiceName string
	Log         zerolog.Logger

	Now   func() time.Time
	NewID func() string
}

type ItemInput struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type CreateOrderInput struct {
	TableID *string     `json:"table_id"`
	StaffID *string     `json:"staff_id"`
	Items   []ItemInput `json:"items"`
}

type MovementInput struct {
	ProductID string `json:"product_id"`
	Direction string `json:"type"`
	Quantity  int    `json:"quantity"`
}

type NewProductInput struct {
	Name          string          `json:"name"`
	Kind          ProductKind     `json:"kind"`
	Category      string          `json:"category"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	SalePrice     decimal.Decimal `json:"sale_price"`
	Unit          string          `json:"unit"`
	InitialStock  decimal.Decimal `json:"initial_stock"`
}

// CreateOrder records an order and takes its stock in one transaction. If
// any line would overdraw stock nothing is written.
func (s *Service) CreateOrder(ctx context.Context, in CreateOrderInput) (string, error) {
	need, err := validateItems(in.Items)
	if err != nil {
		return "", err
	}
	ids := make([]string, 0, len(need))
	for id := range need {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	now := s.now()
	order := Order{
		ID:        s.newID(),
		TableID:   blankToNil(in.TableID),
		StaffID:   blankToNil(in.StaffID),
		Status:    StatusInProgress,
		CreatedAt: now,
	}

	err = s.Gateway.RunAtomic(ctx, func(tx Tx) error {
		products, err := tx.LockProducts(ctx, ids)
		if err != nil {
			return err
		}
		for _, id := range ids {
			p, ok := products[id]
			if !ok {
				return apperr.NotFound("product", id)
			}
			if p.Stock.LessThan(need[id]) {
				return apperr.InsufficientStock(id, need[id], p.Stock)
			}
		}

		if err := tx.InsertOrder(ctx, &order); err != nil {
			return err
		}
		for _, it := range in.Items {
			p := products[it.ProductID]
			qty := decimal.NewFromInt(int64(it.Quantity))
			line := OrderLine{
				ID:        s.newID(),
				OrderID:   order.ID,
				ProductID: p.ID,
				Quantity:  it.Quantity,
				UnitPrice: p.SalePrice,
				LineTotal: p.SalePrice.Mul(qty),
			}
			if err := tx.InsertLine(ctx, &line); err != nil {
				return err
			}
			if err := tx.AdjustStock(ctx, p.ID, qty.Neg()); err != nil {
				return err
			}
			mv := StockMovement{
				ID:        s.newID(),
				ProductID: p.ID,
				Direction: DirectionOut,
				Quantity:  qty,
				Reference: order.ID,
				CreatedAt: now,
			}
			if err := tx.InsertMovement(ctx, &mv); err != nil {
				return err
			}
			order.Lines = append(order.Lines, line)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	s.Log.Info().Str("order_id", order.ID).Int("lines", len(order.Lines)).Msg("order created")
	lines := make([]LinePayload, 0, len(order.Lines))
	for _, l := range order.Lines {
		lines = append(lines, LinePayload{ProductID: l.ProductID, Quantity: l.Quantity, UnitPrice: l.UnitPrice, LineTotal: l.LineTotal})
	}
	s.emit(ctx, TopicOrderCreated, EventOrderCreated, order.ID, OrderCreatedPayload{
		OrderID:  order.ID,
		TableID:  order.TableID,
		StaffID:  order.StaffID,
		Lines:    lines,
		Subtotal: order.Subtotal(),
	})
	return order.ID, nil
}

// RecordMovement applies a standalone restock (IN) or write-off (OUT).
func (s *Service) RecordMovement(ctx context.Context, in MovementInput) (StockMovement, error) {
	dir, err := ParseDirection(in.Direction)
	if err != nil {
		return StockMovement{}, err
	}
	if strings.TrimSpace(in.ProductID) == "" {
		return StockMovement{}, apperr.Validation("product_id", "product_id is required")
	}
	if in.Quantity <= 0 {
		return StockMovement{}, apperr.Validation("quantity", "quantity must be a positive integer")
	}

	mv := StockMovement{
		ID:        s.newID(),
		ProductID: strings.TrimSpace(in.ProductID),
		Direction: dir,
		Quantity:  decimal.NewFromInt(int64(in.Quantity)),
		CreatedAt: s.now(),
	}
	err = s.Gateway.RunAtomic(ctx, func(tx Tx) error {
		products, err := tx.LockProducts(ctx, []string{mv.ProductID})
		if err != nil {
			return err
		}
		p, ok := products[mv.ProductID]
		if !ok {
			return apperr.NotFound("product", mv.ProductID)
		}
		if dir == DirectionOut && p.Stock.LessThan(mv.Quantity) {
			return apperr.InsufficientStock(p.ID, mv.Quantity, p.Stock)
		}
		if err := tx.InsertMovement(ctx, &mv); err != nil {
			return err
		}
		return tx.AdjustStock(ctx, p.ID, mv.Delta())
	})
	if err != nil {
		return StockMovement{}, err
	}

	s.Log.Info().Str("product_id", mv.ProductID).Str("direction", string(dir)).Str("quantity", mv.Quantity.String()).Msg("stock moved")
	s.emitMovement(ctx, mv)
	return mv, nil
}

// CreateProduct inserts a product with zero stock and books any initial
// stock as an IN movement in the same transaction.
func (s *Service) CreateProduct(ctx context.Context, in NewProductInput) (Product, error) {
	if err := validateProduct(in); err != nil {
		return Product{}, err
	}
	now := s.now()
	p := Product{
		ID:            s.newID(),
		Name:          strings.TrimSpace(in.Name),
		Kind:          in.Kind,
		Category:      strings.TrimSpace(in.Category),
		PurchasePrice: in.PurchasePrice,
		SalePrice:     in.SalePrice,
		Stock:         decimal.Zero,
		Unit:          defaultString(strings.TrimSpace(in.Unit), "unit"),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	var mv *StockMovement
	err := s.Gateway.RunAtomic(ctx, func(tx Tx) error {
		if err := tx.InsertProduct(ctx, &p); err != nil {
			return err
		}
		if !in.InitialStock.IsPositive() {
			return nil
		}
		mv = &StockMovement{
			ID:        s.newID(),
			ProductID: p.ID,
			Direction: DirectionIn,
			Quantity:  in.InitialStock,
			Reference: "initial stock",
			CreatedAt: now,
		}
		if err := tx.InsertMovement(ctx, mv); err != nil {
			return err
		}
		return tx.AdjustStock(ctx, p.ID, mv.Quantity)
	})
	if err != nil {
		return Product{}, err
	}
	if mv != nil {
		p.Stock = mv.Quantity
		s.emitMovement(ctx, *mv)
	}
	return p, nil
}

// InvoiceOrder bills an in-progress order and marks it validated. A second
// call for the same order fails with InvalidState.
func (s *Service) InvoiceOrder(ctx context.Context, orderID string) (Invoice, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return Invoice{}, apperr.Validation("id", "order id is required")
	}
	rate, err := s.taxRate(ctx)
	if err != nil {
		return Invoice{}, err
	}

	var inv Invoice
	err = s.Gateway.RunAtomic(ctx, func(tx Tx) error {
		o, err := tx.LockOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if !CanTransition(o.Status, StatusValidated) {
			return apperr.InvalidState("order must be in progress to be invoiced")
		}
		subtotal, err := tx.SumLines(ctx, orderID)
		if err != nil {
			return err
		}
		tax, total := ComputeTax(subtotal, rate)
		inv = Invoice{
			ID:        s.newID(),
			OrderID:   orderID,
			Subtotal:  subtotal,
			TaxRate:   rate,
			Tax:       tax,
			Total:     total,
			CreatedAt: s.now(),
		}
		if err := tx.InsertInvoice(ctx, &inv); err != nil {
			return err
		}
		return tx.SetOrderStatus(ctx, orderID, o.Status, StatusValidated)
	})
	if err != nil {
		return Invoice{}, err
	}

	s.Log.Info().Str("order_id", orderID).Str("invoice_id", inv.ID).Str("total", inv.Total.StringFixed(2)).Msg("order invoiced")
	s.emit(ctx, TopicOrderInvoiced, EventOrderInvoiced, orderID, OrderInvoicedPayload{
		OrderID:   orderID,
		InvoiceID: inv.ID,
		Subtotal:  inv.Subtotal,
		Tax:       inv.Tax,
		Total:     inv.Total,
	})
	return inv, nil
}

func (s *Service) GetOrder(ctx context.Context, id string) (Order, error) {
	return s.Gateway.FindOrder(ctx, id)
}

func (s *Service) ListOrders(ctx context.Context, f OrderFilter) ([]Order, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, apperr.Validation("status", fmt.Sprintf("unknown status %q", f.Status))
	}
	return s.Gateway.ListOrders(ctx, f)
}

func (s *Service) ListMovements(ctx context.Context, f MovementFilter) ([]StockMovement, error) {
	return s.Gateway.ListMovements(ctx, f)
}

func (s *Service) GetInvoice(ctx context.Context, id string) (Invoice, error) {
	return s.Gateway.FindInvoice(ctx, id)
}

func (s *Service) InvoiceForOrder(ctx context.Context, orderID string) (Invoice, error) {
	return s.Gateway.FindInvoiceByOrder(ctx, orderID)
}

// ParseDirection accepts IN/OUT in any case.
func ParseDirection(raw string) (Direction, error) {
	switch Direction(strings.ToUpper(strings.TrimSpace(raw))) {
	case DirectionIn:
		return DirectionIn, nil
	case DirectionOut:
		return DirectionOut, nil
	}
	return "", apperr.Validation("type", "type must be IN or OUT")
}

// validateItems returns the total requested quantity per product.
func validateItems(items []ItemInput) (map[string]decimal.Decimal, error) {
	if len(items) == 0 {
		return nil, apperr.Validation("items", "at least one item is required")
	}
	need := make(map[string]decimal.Decimal, len(items))
	for i := range items {
		items[i].ProductID = strings.TrimSpace(items[i].ProductID)
		it := items[i]
		if it.ProductID == "" {
			return nil, apperr.Validation(fmt.Sprintf("items[%d].product_id", i), "product_id is required")
		}
		if it.Quantity <= 0 {
			return nil, apperr.Validation(fmt.Sprintf("items[%d].quantity", i), "quantity must be a positive integer")
		}
		need[it.ProductID] = need[it.ProductID].Add(decimal.NewFromInt(int64(it.Quantity)))
	}
	return need, nil
}

func validateProduct(in NewProductInput) error {
	switch {
	case strings.TrimSpace(in.Name) == "":
		return apperr.Validation("name", "name is required")
	case !in.Kind.Valid():
		return apperr.Validation("kind", "kind must be DRINK, MEAL or MEDICINE")
	case in.SalePrice.IsNegative():
		return apperr.Validation("sale_price", "sale_price must not be negative")
	case in.PurchasePrice.IsNegative():
		return apperr.Validation("purchase_price", "purchase_price must not be negative")
	case in.InitialStock.IsNegative():
		return apperr.Validation("initial_stock", "initial_stock must not be negative")
	}
	return nil
}

func (s *Service) taxRate(ctx context.Context) (decimal.Decimal, error) {
	if s.Rates == nil {
		return DefaultTaxRate, nil
	}
	return s.Rates.TaxRate(ctx)
}

func (s *Service) emitMovement(ctx context.Context, mv StockMovement) {
	s.emit(ctx, TopicStockMoved, EventStockMoved, mv.ProductID, StockMovedPayload{
		MovementID: mv.ID,
		ProductID:  mv.ProductID,
		Direction:  mv.Direction,
		Quantity:   mv.Quantity,
		Reference:  mv.Reference,
	})
}

// emit is called after commit and never fails the caller.
func (s *Service) emit(ctx context.Context, topic, eventType, key string, payload any) {
	if s.Publisher == nil {
		return
	}
	ev := Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    s.now().UTC(),
		Producer:      s.ServiceName,
		TraceID:       TraceIDFrom(ctx),
		CorrelationID: key,
		Payload:       kafkax.MustMarshal(payload),
	}
	s.Publisher.Publish(topic, PartitionKey(key), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

func (s *Service) newID() string {
	if s.NewID != nil {
		return s.NewID()
	}
	return uuid.NewString()
}

func blankToNil(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

func defaultString(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
