package orders

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/ariefcatur/hospitality-pos/internal/apperr"
)

// memGateway serializes RunAtomic calls and only keeps the work of a
// transaction when fn returns nil.
type memGateway struct {
	mu sync.Mutex
	st memState

	// failOn makes the named Tx method fail once it has been called that many times.
	failOn    string
	failAfter int
}

type memState struct {
	products  map[string]Product
	orders    map[string]Order
	lines     []OrderLine
	movements []StockMovement
	invoices  map[string]Invoice
}

func newMemGateway(products ...Product) *memGateway {
	g := &memGateway{st: memState{
		products: map[string]Product{},
		orders:   map[string]Order{},
		invoices: map[string]Invoice{},
	}}
	for _, p := range products {
		g.st.products[p.ID] = p
	}
	return g
}

func (s memState) clone() memState {
	out := memState{
		products:  make(map[string]Product, len(s.products)),
		orders:    make(map[string]Order, len(s.orders)),
		lines:     append([]OrderLine(nil), s.lines...),
		movements: append([]StockMovement(nil), s.movements...),
		invoices:  make(map[string]Invoice, len(s.invoices)),
	}
	for k, v := range s.products {
		out.products[k] = v
	}
	for k, v := range s.orders {
		out.orders[k] = v
	}
	for k, v := range s.invoices {
		out.invoices[k] = v
	}
	return out
}

func (g *memGateway) RunAtomic(_ context.Context, fn func(tx Tx) error) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	work := g.st.clone()
	tx := &memTx{st: &work, g: g, calls: map[string]int{}}
	if err := fn(tx); err != nil {
		return err
	}
	g.st = work
	return nil
}

func (g *memGateway) FindOrder(_ context.Context, id string) (Order, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	o, ok := g.st.orders[id]
	if !ok {
		return Order{}, apperr.NotFound("order", id)
	}
	for _, l := range g.st.lines {
		if l.OrderID == id {
			o.Lines = append(o.Lines, l)
		}
	}
	return o, nil
}

func (g *memGateway) ListOrders(_ context.Context, f OrderFilter) ([]Order, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := []Order{}
	for _, o := range g.st.orders {
		if f.Status == "" || o.Status == f.Status {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (g *memGateway) ListMovements(_ context.Context, f MovementFilter) ([]StockMovement, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := []StockMovement{}
	for _, m := range g.st.movements {
		if f.ProductID == "" || m.ProductID == f.ProductID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (g *memGateway) FindInvoice(_ context.Context, id string) (Invoice, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, inv := range g.st.invoices {
		if inv.ID == id {
			return inv, nil
		}
	}
	return Invoice{}, apperr.NotFound("invoice", id)
}

func (g *memGateway) FindInvoiceByOrder(_ context.Context, orderID string) (Invoice, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	inv, ok := g.st.invoices[orderID]
	if !ok {
		return Invoice{}, apperr.NotFound("invoice", orderID)
	}
	return inv, nil
}

// stock reads committed stock outside any transaction.
func (g *memGateway) stock(id string) decimal.Decimal {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.st.products[id].Stock
}

func (g *memGateway) snapshot() memState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.st.clone()
}

var errInjected = errors.New("injected failure")

type memTx struct {
	st    *memState
	g     *memGateway
	calls map[string]int
}

func (t *memTx) hit(name string) error {
	t.calls[name]++
	if t.g.failOn == name && t.calls[name] > t.g.failAfter {
		return apperr.Internal(name, errInjected)
	}
	return nil
}

func (t *memTx) LockProducts(_ context.Context, ids []string) (map[string]Product, error) {
	if err := t.hit("LockProducts"); err != nil {
		return nil, err
	}
	out := map[string]Product{}
	for _, id := range ids {
		if p, ok := t.st.products[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (t *memTx) LockOrder(_ context.Context, id string) (Order, error) {
	if err := t.hit("LockOrder"); err != nil {
		return Order{}, err
	}
	o, ok := t.st.orders[id]
	if !ok {
		return Order{}, apperr.NotFound("order", id)
	}
	return o, nil
}

func (t *memTx) InsertProduct(_ context.Context, p *Product) error {
	if err := t.hit("InsertProduct"); err != nil {
		return err
	}
	cp := *p
	cp.Stock = decimal.Zero
	t.st.products[p.ID] = cp
	return nil
}

func (t *memTx) InsertOrder(_ context.Context, o *Order) error {
	if err := t.hit("InsertOrder"); err != nil {
		return err
	}
	cp := *o
	cp.Lines = nil
	t.st.orders[o.ID] = cp
	return nil
}

func (t *memTx) InsertLine(_ context.Context, l *OrderLine) error {
	if err := t.hit("InsertLine"); err != nil {
		return err
	}
	t.st.lines = append(t.st.lines, *l)
	return nil
}

func (t *memTx) AdjustStock(_ context.Context, productID string, delta decimal.Decimal) error {
	if err := t.hit("AdjustStock"); err != nil {
		return err
	}
	p, ok := t.st.products[productID]
	if !ok {
		return apperr.NotFound("product", productID)
	}
	next := p.Stock.Add(delta)
	if next.IsNegative() {
		return apperr.InsufficientStock(productID, delta.Neg(), p.Stock)
	}
	p.Stock = next
	t.st.products[productID] = p
	return nil
}

func (t *memTx) InsertMovement(_ context.Context, m *StockMovement) error {
	if err := t.hit("InsertMovement"); err != nil {
		return err
	}
	t.st.movements = append(t.st.movements, *m)
	return nil
}

func (t *memTx) SumLines(_ context.Context, orderID string) (decimal.Decimal, error) {
	if err := t.hit("SumLines"); err != nil {
		return decimal.Zero, err
	}
	sum := decimal.Zero
	for _, l := range t.st.lines {
		if l.OrderID == orderID {
			sum = sum.Add(l.LineTotal)
		}
	}
	return sum, nil
}

func (t *memTx) InsertInvoice(_ context.Context, inv *Invoice) error {
	if err := t.hit("InsertInvoice"); err != nil {
		return err
	}
	if _, dup := t.st.invoices[inv.OrderID]; dup {
		return apperr.InvalidState("order must be in progress to be invoiced")
	}
	t.st.invoices[inv.OrderID] = *inv
	return nil
}

func (t *memTx) SetOrderStatus(_ context.Context, orderID string, from, to Status) error {
	if err := t.hit("SetOrderStatus"); err != nil {
		return err
	}
	o, ok := t.st.orders[orderID]
	if !ok {
		return apperr.NotFound("order", orderID)
	}
	if o.Status != from || !CanTransition(from, to) {
		return apperr.InvalidState("order is no longer " + string(from))
	}
	o.Status = to
	t.st.orders[orderID] = o
	return nil
}
