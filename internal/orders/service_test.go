package orders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariefcatur/hospitality-pos/internal/apperr"
)

type published struct {
	topic   string
	key     string
	value   []byte
	headers []kafkago.Header
}

type recordingPublisher struct {
	mu   sync.Mutex
	msgs []published
}

func (p *recordingPublisher) Publish(topic string, key, value []byte, headers ...kafkago.Header) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgs = append(p.msgs, published{topic: topic, key: string(key), value: value, headers: headers})
}

func (p *recordingPublisher) topics() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.msgs))
	for _, m := range p.msgs {
		out = append(out, m.topic)
	}
	return out
}

type fixedRate struct {
	rate decimal.Decimal
	err  error
}

func (f fixedRate) TaxRate(context.Context) (decimal.Decimal, error) { return f.rate, f.err }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func assertDec(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	assert.Truef(t, dec(want).Equal(got), "want %s, got %s %v", want, got, msgAndArgs)
}

func product(id, price, stock string) Product {
	return Product{
		ID:        id,
		Name:      id,
		Kind:      KindDrink,
		SalePrice: dec(price),
		Stock:     dec(stock),
		Unit:      "bottle",
	}
}

func newTestService(g *memGateway) (*Service, *recordingPublisher) {
	pub := &recordingPublisher{}
	var n int
	var mu sync.Mutex
	return &Service{
		Gateway:     g,
		Publisher:   pub,
		ServiceName: "pos-test",
		Log:         zerolog.Nop(),
		Now:         func() time.Time { return time.Date(2026, 3, 14, 20, 0, 0, 0, time.UTC) },
		NewID: func() string {
			mu.Lock()
			defer mu.Unlock()
			n++
			return fmt.Sprintf("id-%03d", n)
		},
	}, pub
}

func TestColaOrderToInvoice(t *testing.T) {
	g := newMemGateway(product("cola", "2.00", "10"))
	svc, _ := newTestService(g)
	ctx := context.Background()

	orderID, err := svc.CreateOrder(ctx, CreateOrderInput{Items: []ItemInput{{ProductID: "cola", Quantity: 3}}})
	require.NoError(t, err)
	assertDec(t, "7", g.stock("cola"))

	o, err := svc.GetOrder(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, StatusInProgress, o.Status)
	require.Len(t, o.Lines, 1)
	assertDec(t, "2.00", o.Lines[0].UnitPrice)
	assertDec(t, "6.00", o.Lines[0].LineTotal)

	mv, err := svc.ListMovements(ctx, MovementFilter{ProductID: "cola"})
	require.NoError(t, err)
	require.Len(t, mv, 1)
	assert.Equal(t, DirectionOut, mv[0].Direction)
	assertDec(t, "3", mv[0].Quantity)
	assert.Equal(t, orderID, mv[0].Reference)

	inv, err := svc.InvoiceOrder(ctx, orderID)
	require.NoError(t, err)
	assertDec(t, "6.00", inv.Subtotal)
	assertDec(t, "1.08", inv.Tax)
	assertDec(t, "7.08", inv.Total)
	assertDec(t, "0.18", inv.TaxRate)
	assert.Equal(t, "7.08", inv.Total.StringFixed(2))

	o, err = svc.GetOrder(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, StatusValidated, o.Status)

	got, err := svc.InvoiceForOrder(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, inv.ID, got.ID)
}

func TestCreateOrderInsufficientStockChangesNothing(t *testing.T) {
	g := newMemGateway(product("cola", "2.00", "2"))
	svc, pub := newTestService(g)

	_, err := svc.CreateOrder(context.Background(), CreateOrderInput{Items: []ItemInput{{ProductID: "cola", Quantity: 5}}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrInsufficientStock))

	e := apperr.As(err)
	assert.Equal(t, "cola", e.Details["product_id"])
	assert.Equal(t, "5", e.Details["requested"])
	assert.Equal(t, "2", e.Details["available"])

	st := g.snapshot()
	assertDec(t, "2", st.products["cola"].Stock)
	assert.Empty(t, st.orders)
	assert.Empty(t, st.lines)
	assert.Empty(t, st.movements)
	assert.Empty(t, pub.topics())
}

func TestCreateOrderIsAllOrNothingAcrossLines(t *testing.T) {
	g := newMemGateway(product("beer", "3.50", "10"), product("wine", "12.00", "1"))
	svc, _ := newTestService(g)

	_, err := svc.CreateOrder(context.Background(), CreateOrderInput{Items: []ItemInput{
		{ProductID: "beer", Quantity: 4},
		{ProductID: "wine", Quantity: 2},
	}})
	require.ErrorIs(t, err, apperr.ErrInsufficientStock)
	assertDec(t, "10", g.stock("beer"))
	assertDec(t, "1", g.stock("wine"))
}

func TestCreateOrderTwoLinesPairsMovements(t *testing.T) {
	g := newMemGateway(product("beer", "3.50", "10"), product("fries", "4.25", "20"))
	svc, _ := newTestService(g)
	ctx := context.Background()

	orderID, err := svc.CreateOrder(ctx, CreateOrderInput{Items: []ItemInput{
		{ProductID: "beer", Quantity: 2},
		{ProductID: "fries", Quantity: 3},
	}})
	require.NoError(t, err)
	assertDec(t, "8", g.stock("beer"))
	assertDec(t, "17", g.stock("fries"))

	st := g.snapshot()
	require.Len(t, st.lines, 2)
	require.Len(t, st.movements, 2)
	for i, l := range st.lines {
		m := st.movements[i]
		assert.Equal(t, l.ProductID, m.ProductID)
		assert.Equal(t, DirectionOut, m.Direction)
		assertDec(t, decimal.NewFromInt(int64(l.Quantity)).String(), m.Quantity)
		assert.Equal(t, orderID, m.Reference)
	}

	inv, err := svc.InvoiceOrder(ctx, orderID)
	require.NoError(t, err)
	assertDec(t, "19.75", inv.Subtotal)
	assertDec(t, "3.56", inv.Tax)
	assertDec(t, "23.31", inv.Total)
}

func TestCreateOrderSumsDuplicateProducts(t *testing.T) {
	g := newMemGateway(product("cola", "2.00", "4"))
	svc, _ := newTestService(g)

	_, err := svc.CreateOrder(context.Background(), CreateOrderInput{Items: []ItemInput{
		{ProductID: "cola", Quantity: 3},
		{ProductID: "cola", Quantity: 3},
	}})
	require.ErrorIs(t, err, apperr.ErrInsufficientStock)
	assertDec(t, "4", g.stock("cola"))
}

func TestCreateOrderFractionalStock(t *testing.T) {
	g := newMemGateway(product("gin", "5.00", "1.5"))
	svc, _ := newTestService(g)

	_, err := svc.CreateOrder(context.Background(), CreateOrderInput{Items: []ItemInput{{ProductID: "gin", Quantity: 1}}})
	require.NoError(t, err)
	assertDec(t, "0.5", g.stock("gin"))

	_, err = svc.CreateOrder(context.Background(), CreateOrderInput{Items: []ItemInput{{ProductID: "gin", Quantity: 1}}})
	require.ErrorIs(t, err, apperr.ErrInsufficientStock)
	assertDec(t, "0.5", g.stock("gin"))
}

func TestCreateOrderUnknownProduct(t *testing.T) {
	g := newMemGateway(product("cola", "2.00", "10"))
	svc, _ := newTestService(g)

	_, err := svc.CreateOrder(context.Background(), CreateOrderInput{Items: []ItemInput{
		{ProductID: "cola", Quantity: 1},
		{ProductID: "ghost", Quantity: 1},
	}})
	require.ErrorIs(t, err, apperr.ErrNotFound)
	assertDec(t, "10", g.stock("cola"))
}

func TestCreateOrderValidation(t *testing.T) {
	tests := []struct {
		name  string
		items []ItemInput
		field string
	}{
		{"no items", nil, "items"},
		{"zero quantity", []ItemInput{{ProductID: "cola", Quantity: 0}}, "items[0].quantity"},
		{"negative quantity", []ItemInput{{ProductID: "cola", Quantity: 1}, {ProductID: "cola", Quantity: -2}}, "items[1].quantity"},
		{"blank product", []ItemInput{{ProductID: "  ", Quantity: 1}}, "items[0].product_id"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			g := newMemGateway(product("cola", "2.00", "10"))
			svc, _ := newTestService(g)

			_, err := svc.CreateOrder(context.Background(), CreateOrderInput{Items: tc.items})
			require.ErrorIs(t, err, apperr.ErrValidation)
			assert.Equal(t, tc.field, apperr.As(err).Details["field"])
			assertDec(t, "10", g.stock("cola"))
		})
	}
}

func TestCreateOrderRollsBackOnLateFailure(t *testing.T) {
	g := newMemGateway(product("beer", "3.50", "10"), product("fries", "4.25", "20"))
	g.failOn, g.failAfter = "InsertMovement", 1
	svc, pub := newTestService(g)

	_, err := svc.CreateOrder(context.Background(), CreateOrderInput{Items: []ItemInput{
		{ProductID: "beer", Quantity: 2},
		{ProductID: "fries", Quantity: 3},
	}})
	require.ErrorIs(t, err, apperr.ErrInternal)

	st := g.snapshot()
	assertDec(t, "10", st.products["beer"].Stock)
	assertDec(t, "20", st.products["fries"].Stock)
	assert.Empty(t, st.orders)
	assert.Empty(t, st.lines)
	assert.Empty(t, st.movements)
	assert.Empty(t, pub.topics())
}

func TestCreateOrderKeepsTableAndStaff(t *testing.T) {
	g := newMemGateway(product("cola", "2.00", "10"))
	svc, _ := newTestService(g)
	table, staff, blank := "T4", "u-1", " "

	id, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		TableID: &table,
		StaffID: &staff,
		Items:   []ItemInput{{ProductID: "cola", Quantity: 1}},
	})
	require.NoError(t, err)
	o, err := svc.GetOrder(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, o.TableID)
	assert.Equal(t, "T4", *o.TableID)
	assert.Equal(t, "u-1", *o.StaffID)

	id, err = svc.CreateOrder(context.Background(), CreateOrderInput{
		TableID: &blank,
		Items:   []ItemInput{{ProductID: "cola", Quantity: 1}},
	})
	require.NoError(t, err)
	o, err = svc.GetOrder(context.Background(), id)
	require.NoError(t, err)
	assert.Nil(t, o.TableID)
}

func TestConcurrentOrdersForLastUnit(t *testing.T) {
	g := newMemGateway(product("cola", "2.00", "1"))
	svc, _ := newTestService(g)

	const n = 16
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.CreateOrder(context.Background(), CreateOrderInput{Items: []ItemInput{{ProductID: "cola", Quantity: 1}}})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var ok, short int
	for err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, apperr.ErrInsufficientStock):
			short++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, n-1, short)
	assertDec(t, "0", g.stock("cola"))
	assert.Len(t, g.snapshot().movements, 1)
}

func TestInvoiceTwiceIsInvalidState(t *testing.T) {
	g := newMemGateway(product("cola", "2.00", "10"))
	svc, pub := newTestService(g)
	ctx := context.Background()

	orderID, err := svc.CreateOrder(ctx, CreateOrderInput{Items: []ItemInput{{ProductID: "cola", Quantity: 1}}})
	require.NoError(t, err)
	_, err = svc.InvoiceOrder(ctx, orderID)
	require.NoError(t, err)

	_, err = svc.InvoiceOrder(ctx, orderID)
	require.ErrorIs(t, err, apperr.ErrInvalidState)
	assert.Equal(t, "order must be in progress to be invoiced", apperr.As(err).Message)
	assert.Len(t, g.snapshot().invoices, 1)
	assert.Equal(t, []string{TopicOrderCreated, TopicOrderInvoiced}, pub.topics())
}

func TestConcurrentInvoiceCreatesOneInvoice(t *testing.T) {
	g := newMemGateway(product("cola", "2.00", "10"))
	svc, _ := newTestService(g)
	ctx := context.Background()
	orderID, err := svc.CreateOrder(ctx, CreateOrderInput{Items: []ItemInput{{ProductID: "cola", Quantity: 2}}})
	require.NoError(t, err)

	var wg sync.WaitGroup
	var mu sync.Mutex
	var ok int
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.InvoiceOrder(ctx, orderID); err == nil {
				mu.Lock()
				ok++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, ok)
	assert.Len(t, g.snapshot().invoices, 1)
}

func TestInvoiceUnknownOrder(t *testing.T) {
	svc, _ := newTestService(newMemGateway())

	_, err := svc.InvoiceOrder(context.Background(), "nope")
	require.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = svc.InvoiceOrder(context.Background(), " ")
	require.ErrorIs(t, err, apperr.ErrValidation)
}

func TestInvoiceUsesConfiguredRate(t *testing.T) {
	g := newMemGateway(product("cola", "2.00", "10"))
	svc, _ := newTestService(g)
	svc.Rates = fixedRate{rate: dec("0.10")}
	ctx := context.Background()

	orderID, err := svc.CreateOrder(ctx, CreateOrderInput{Items: []ItemInput{{ProductID: "cola", Quantity: 3}}})
	require.NoError(t, err)
	inv, err := svc.InvoiceOrder(ctx, orderID)
	require.NoError(t, err)
	assertDec(t, "0.60", inv.Tax)
	assertDec(t, "6.60", inv.Total)
}

func TestInvoiceRateFailureLeavesOrderOpen(t *testing.T) {
	g := newMemGateway(product("cola", "2.00", "10"))
	svc, _ := newTestService(g)
	ctx := context.Background()
	orderID, err := svc.CreateOrder(ctx, CreateOrderInput{Items: []ItemInput{{ProductID: "cola", Quantity: 1}}})
	require.NoError(t, err)

	svc.Rates = fixedRate{err: apperr.Internal("read setting", errors.New("redis down"))}
	_, err = svc.InvoiceOrder(ctx, orderID)
	require.ErrorIs(t, err, apperr.ErrInternal)

	o, err := svc.GetOrder(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, StatusInProgress, o.Status)
}

func TestRecordMovement(t *testing.T) {
	g := newMemGateway(product("aspirin", "1.20", "5"))
	svc, pub := newTestService(g)
	ctx := context.Background()

	mv, err := svc.RecordMovement(ctx, MovementInput{ProductID: "aspirin", Direction: "in", Quantity: 10})
	require.NoError(t, err)
	assert.Equal(t, DirectionIn, mv.Direction)
	assertDec(t, "15", g.stock("aspirin"))

	_, err = svc.RecordMovement(ctx, MovementInput{ProductID: "aspirin", Direction: "OUT", Quantity: 4})
	require.NoError(t, err)
	assertDec(t, "11", g.stock("aspirin"))

	_, err = svc.RecordMovement(ctx, MovementInput{ProductID: "aspirin", Direction: "OUT", Quantity: 12})
	require.ErrorIs(t, err, apperr.ErrInsufficientStock)
	assertDec(t, "11", g.stock("aspirin"))

	_, err = svc.RecordMovement(ctx, MovementInput{ProductID: "ghost", Direction: "IN", Quantity: 1})
	require.ErrorIs(t, err, apperr.ErrNotFound)

	assert.Len(t, g.snapshot().movements, 2)
	assert.Equal(t, []string{TopicStockMoved, TopicStockMoved}, pub.topics())
}

func TestRecordMovementValidation(t *testing.T) {
	svc, _ := newTestService(newMemGateway(product("aspirin", "1.20", "5")))
	tests := []struct {
		in    MovementInput
		field string
	}{
		{MovementInput{ProductID: "aspirin", Direction: "SIDEWAYS", Quantity: 1}, "type"},
		{MovementInput{ProductID: "aspirin", Direction: "IN", Quantity: 0}, "quantity"},
		{MovementInput{ProductID: "", Direction: "IN", Quantity: 1}, "product_id"},
	}
	for _, tc := range tests {
		_, err := svc.RecordMovement(context.Background(), tc.in)
		require.ErrorIs(t, err, apperr.ErrValidation)
		assert.Equal(t, tc.field, apperr.As(err).Details["field"])
	}
}

func TestCreateProductBooksInitialStock(t *testing.T) {
	g := newMemGateway()
	svc, pub := newTestService(g)

	p, err := svc.CreateProduct(context.Background(), NewProductInput{
		Name:          " Paracetamol 500mg ",
		Kind:          KindMedicine,
		PurchasePrice: dec("0.40"),
		SalePrice:     dec("1.00"),
		InitialStock:  dec("50"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Paracetamol 500mg", p.Name)
	assert.Equal(t, "unit", p.Unit)
	assertDec(t, "50", p.Stock)
	assertDec(t, "50", g.stock(p.ID))

	mv := g.snapshot().movements
	require.Len(t, mv, 1)
	assert.Equal(t, DirectionIn, mv[0].Direction)
	assert.Equal(t, []string{TopicStockMoved}, pub.topics())

	_, err = svc.CreateProduct(context.Background(), NewProductInput{Name: "x", Kind: "FURNITURE"})
	require.ErrorIs(t, err, apperr.ErrValidation)
}

func TestListOrdersRejectsUnknownStatus(t *testing.T) {
	g := newMemGateway(product("cola", "2.00", "10"))
	svc, _ := newTestService(g)
	ctx := context.Background()
	id, err := svc.CreateOrder(ctx, CreateOrderInput{Items: []ItemInput{{ProductID: "cola", Quantity: 1}}})
	require.NoError(t, err)

	got, err := svc.ListOrders(ctx, OrderFilter{Status: StatusInProgress})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, id, got[0].ID)

	_, err = svc.ListOrders(ctx, OrderFilter{Status: "PAID"})
	require.ErrorIs(t, err, apperr.ErrValidation)
}

func TestEventsCarryEnvelope(t *testing.T) {
	g := newMemGateway(product("cola", "2.00", "10"))
	svc, pub := newTestService(g)
	ctx := WithTraceID(context.Background(), "req-42")

	orderID, err := svc.CreateOrder(ctx, CreateOrderInput{Items: []ItemInput{{ProductID: "cola", Quantity: 3}}})
	require.NoError(t, err)
	_, err = svc.InvoiceOrder(ctx, orderID)
	require.NoError(t, err)

	require.Len(t, pub.msgs, 2)
	created := pub.msgs[0]
	assert.Equal(t, TopicOrderCreated, created.topic)
	assert.Equal(t, orderID, created.key)
	assert.Equal(t, "x-event-type", created.headers[0].Key)
	assert.Equal(t, EventOrderCreated, string(created.headers[0].Value))

	var env Envelope
	require.NoError(t, json.Unmarshal(created.value, &env))
	assert.Equal(t, EventOrderCreated, env.EventType)
	assert.Equal(t, "pos-test", env.Producer)
	assert.Equal(t, "req-42", env.TraceID)
	assert.NotEmpty(t, env.EventID)

	var payload OrderCreatedPayload
	require.NoError(t, json.Unmarshal(env.Payload, &payload))
	require.Len(t, payload.Lines, 1)
	assertDec(t, "6", payload.Subtotal)

	require.NoError(t, json.Unmarshal(pub.msgs[1].value, &env))
	var inv OrderInvoicedPayload
	require.NoError(t, json.Unmarshal(env.Payload, &inv))
	assertDec(t, "7.08", inv.Total)
}

func TestComputeTax(t *testing.T) {
	tests := []struct{ subtotal, rate, tax, total string }{
		{"6.00", "0.18", "1.08", "7.08"},
		{"0", "0.18", "0", "0"},
		{"19.75", "0.18", "3.56", "23.31"},
		{"0.05", "0.18", "0.01", "0.06"},
		{"100", "0", "0", "100"},
	}
	for _, tc := range tests {
		tax, total := ComputeTax(dec(tc.subtotal), dec(tc.rate))
		assertDec(t, tc.tax, tax, tc.subtotal)
		assertDec(t, tc.total, total, tc.subtotal)
	}
}

func TestStatusTransitions(t *testing.T) {
	assert.True(t, CanTransition(StatusInProgress, StatusValidated))
	assert.False(t, CanTransition(StatusValidated, StatusInProgress))
	assert.False(t, CanTransition(StatusValidated, StatusValidated))
	assert.False(t, Status("PAID").Valid())
}
