package rental

import (
	"time"

	"github.com/shopspring/decimal"
)

type Tenant struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

type LeaseStatus string

const (
	LeaseActive     LeaseStatus = "ACTIVE"
	LeaseTerminated LeaseStatus = "TERMINATED"
)

var validNext = map[LeaseStatus]map[LeaseStatus]bool{
	LeaseActive:     {LeaseTerminated: true},
	LeaseTerminated: {},
}

func CanTransition(from, to LeaseStatus) bool {
	return validNext[from][to]
}

type Lease struct {
	ID          string          `json:"id"`
	TenantID    string          `json:"tenant_id"`
	Unit        string          `json:"unit"`
	MonthlyRent decimal.Decimal `json:"monthly_rent"`
	StartDate   time.Time       `json:"start_date"`
	EndDate     *time.Time      `json:"end_date,omitempty"`
	Status      LeaseStatus     `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
}

type Currency string

const (
	CurrencyLocal Currency = "LOCAL"
	CurrencyUSD   Currency = "USD"
)

// Payment stores both what was handed over and its local-currency value at
// the exchange rate of the day.
type Payment struct {
	ID          string          `json:"id"`
	LeaseID     string          `json:"lease_id"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    Currency        `json:"currency"`
	AmountLocal decimal.Decimal `json:"amount_local"`
	Method      string          `json:"method"`
	PaidAt      time.Time       `json:"paid_at"`
}
