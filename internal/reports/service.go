// Package reports produces the read-only views over sales and stock: the
// daily summary, PDF receipts, Excel exports and the live counters the
// projector keeps in Redis.
package reports

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/ariefcatur/hospitality-pos/internal/apperr"
	"github.com/ariefcatur/hospitality-pos/internal/orders"
	"github.com/ariefcatur/hospitality-pos/internal/redisx"
)

const DayLayout = "2006-01-02"

type Totals struct {
	Invoices int             `json:"invoices"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

type ProductSales struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	Revenue   decimal.Decimal `json:"revenue"`
}

type MovementRow struct {
	ID          string           `json:"id"`
	ProductID   string           `json:"product_id"`
	ProductName string           `json:"product_name"`
	Direction   orders.Direction `json:"type"`
	Quantity    decimal.Decimal  `json:"quantity"`
	Reference   string           `json:"reference"`
	CreatedAt   time.Time        `json:"created_at"`
}

type ReceiptLine struct {
	Name      string
	Quantity  int
	UnitPrice decimal.Decimal
	LineTotal decimal.Decimal
}

type Receipt struct {
	Invoice orders.Invoice
	Table   string
	Staff   string
	Lines   []ReceiptLine
}

type Summary struct {
	Day         string          `json:"day"`
	Totals      Totals          `json:"totals"`
	TopProducts []ProductSales  `json:"top_products"`
	StockIn     decimal.Decimal `json:"stock_in"`
	StockOut    decimal.Decimal `json:"stock_out"`
}

// Live is what the projector has counted so far for a day.
type Live struct {
	Day      string                     `json:"day"`
	Revenue  decimal.Decimal            `json:"revenue"`
	Invoices int64                      `json:"invoices"`
	Units    []ProductUnits             `json:"units"`
	Flow     map[string]decimal.Decimal `json:"stock_flow"`
}

type ProductUnits struct {
	ProductID string `json:"product_id"`
	Units     int64  `json:"units"`
}

type Repository interface {
	InvoiceTotals(ctx context.Context, from, to time.Time) (Totals, error)
	TopProducts(ctx context.Context, from, to time.Time, limit int) ([]ProductSales, error)
	MovementTotals(ctx context.Context, from, to time.Time) (in, out decimal.Decimal, err error)
	Invoices(ctx context.Context, from, to time.Time) ([]orders.Invoice, error)
	Movements(ctx context.Context, from, to time.Time) ([]MovementRow, error)
	Receipt(ctx context.Context, invoiceID string) (Receipt, error)
}

type Service struct {
	Repo  Repository
	Redis redis.Cmdable
	Log   zerolog.Logger
	// Business name printed on receipts.
	Venue string
	TopN  int
}

// ParseDay reads YYYY-MM-DD; empty means today (UTC).
func ParseDay(raw string) (time.Time, error) {
	if raw == "" {
		return time.Now().UTC().Truncate(24 * time.Hour), nil
	}
	d, err := time.Parse(DayLayout, raw)
	if err != nil {
		return time.Time{}, apperr.Validation("day", "day must be YYYY-MM-DD")
	}
	return d, nil
}

// DailySummary runs its three queries concurrently.
func (s *Service) DailySummary(ctx context.Context, day time.Time) (Summary, error) {
	from := day.Truncate(24 * time.Hour)
	to := from.Add(24 * time.Hour)
	sum := Summary{Day: from.Format(DayLayout)}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		t, err := s.Repo.InvoiceTotals(gctx, from, to)
		sum.Totals = t
		return err
	})
	g.Go(func() error {
		top, err := s.Repo.TopProducts(gctx, from, to, s.topN())
		sum.TopProducts = top
		return err
	})
	g.Go(func() error {
		in, out, err := s.Repo.MovementTotals(gctx, from, to)
		sum.StockIn, sum.StockOut = in, out
		return err
	})
	if err := g.Wait(); err != nil {
		return Summary{}, err
	}
	return sum, nil
}

// LiveCounters reads the projector's counters; a day with no activity is all zeros.
func (s *Service) LiveCounters(ctx context.Context, day time.Time) (Live, error) {
	d := day.Format(DayLayout)
	live := Live{Day: d, Revenue: decimal.Zero, Units: []ProductUnits{}, Flow: map[string]decimal.Decimal{}}

	pipe := s.Redis.Pipeline()
	revCmd := pipe.Get(ctx, fmt.Sprintf(redisx.KeySalesRevenue, d))
	invCmd := pipe.Get(ctx, fmt.Sprintf(redisx.KeySalesInvoices, d))
	unitsCmd := pipe.ZRevRangeWithScores(ctx, fmt.Sprintf(redisx.KeySalesUnits, d), 0, int64(s.topN())-1)
	flowCmd := pipe.HGetAll(ctx, fmt.Sprintf(redisx.KeyStockFlow, d))
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return Live{}, apperr.Internal("read live counters", err)
	}

	if n, err := revCmd.Int64(); err == nil {
		live.Revenue = decimal.New(n, -centsExp)
	}
	if n, err := invCmd.Int64(); err == nil {
		live.Invoices = n
	}
	for _, z := range unitsCmd.Val() {
		id, _ := z.Member.(string)
		live.Units = append(live.Units, ProductUnits{ProductID: id, Units: int64(z.Score)})
	}
	for dir, raw := range flowCmd.Val() {
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
			live.Flow[dir] = decimal.New(n, -milliExp)
		}
	}
	return live, nil
}

func (s *Service) topN() int {
	if s.TopN <= 0 {
		return 10
	}
	return s.TopN
}
