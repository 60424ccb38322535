package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type CouponKind string

const (
	CouponPercentage CouponKind = "percentage"
	CouponFixed      CouponKind = "fixed"
)

// Coupon is a discount rule resolved from a code.
type Coupon struct {
	Code      string          `json:"code"`
	Kind      CouponKind      `json:"kind"`
	Value     decimal.Decimal `json:"value"`
	Active    bool            `json:"active"`
	ExpiresAt *time.Time      `json:"expiresAt,omitempty"`
}

// Usable reports whether the coupon can be applied at now.
func (c Coupon) Usable(now time.Time) bool {
	if !c.Active {
		return false
	}
	if c.ExpiresAt != nil && !now.Before(*c.ExpiresAt) {
		return false
	}
	switch c.Kind {
	case CouponPercentage:
		return !c.Value.IsNegative() && c.Value.LessThanOrEqual(decimal.NewFromInt(100))
	case CouponFixed:
		return !c.Value.IsNegative()
	default:
		return false
	}
}

// Discount returns the amount taken off itemsTotal, never more than itemsTotal.
func (c Coupon) Discount(itemsTotal decimal.Decimal) decimal.Decimal {
	var d decimal.Decimal
	switch c.Kind {
	case CouponPercentage:
		d = RoundMoney(itemsTotal.Mul(c.Value).Div(decimal.NewFromInt(100)))
	case CouponFixed:
		d = RoundMoney(c.Value)
	default:
		return decimal.Zero
	}
	if d.GreaterThan(itemsTotal) {
		d = itemsTotal
	}
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
