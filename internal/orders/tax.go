package orders

import "github.com/shopspring/decimal"

// DefaultTaxRate applies when no tax_rate setting is stored.
var DefaultTaxRate = decimal.RequireFromString("0.18")

// ComputeTax rounds tax to cents; total is always subtotal + tax.
func ComputeTax(subtotal, rate decimal.Decimal) (tax, total decimal.Decimal) {
	tax = subtotal.Mul(rate).Round(2)
	return tax, subtotal.Add(tax)
}
