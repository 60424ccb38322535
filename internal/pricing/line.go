// Package pricing holds the pure money arithmetic of the cart: per-line
// breakdowns, menu unit prices and cart-level totals. Every amount is rounded
// to the currency minor unit after each arithmetic step.
package pricing

import (
	"github.com/shopspring/decimal"

	"storefront-cart/internal/domain"
)

var hundred = decimal.NewFromInt(100)

// LineInput is the raw material of one line breakdown.
type LineInput struct {
	Quantity  int
	UnitPrice decimal.Decimal
	Discount  decimal.Decimal
	TaxRate   decimal.Decimal
}

// LineBreakdown is the monetary result for one line.
type LineBreakdown struct {
	Net   decimal.Decimal `json:"net"`
	Tax   decimal.Decimal `json:"tax"`
	Total decimal.Decimal `json:"total"`
}

// CalcLine computes net, tax and total for a line.
func CalcLine(in LineInput) (LineBreakdown, error) {
	if in.Quantity < 0 {
		return LineBreakdown{}, domain.NewError(domain.KindInvalidInput, "quantity must not be negative")
	}
	if in.UnitPrice.IsNegative() {
		return LineBreakdown{}, domain.NewError(domain.KindInvalidInput, "unit price must not be negative")
	}
	if in.Discount.IsNegative() {
		return LineBreakdown{}, domain.NewError(domain.KindInvalidInput, "discount must not be negative")
	}
	if in.TaxRate.IsNegative() || in.TaxRate.GreaterThan(hundred) {
		return LineBreakdown{}, domain.NewError(domain.KindInvalidInput, "tax rate must be between 0 and 100")
	}

	gross := domain.RoundMoney(decimal.NewFromInt(int64(in.Quantity)).Mul(in.UnitPrice))
	net := domain.RoundMoney(gross.Sub(in.Discount))
	if net.IsNegative() {
		net = decimal.Zero
	}
	tax := domain.RoundMoney(net.Mul(in.TaxRate).Div(hundred))
	total := domain.RoundMoney(net.Add(tax))
	return LineBreakdown{Net: net, Tax: tax, Total: total}, nil
}

// LineAmount is quantity × unit price rounded; it is what a line contributes
// to the cart total.
func LineAmount(quantity int, unitPrice decimal.Decimal) decimal.Decimal {
	return domain.RoundMoney(decimal.NewFromInt(int64(quantity)).Mul(unitPrice))
}
