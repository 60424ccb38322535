package pricing

import (
	"github.com/shopspring/decimal"

	"storefront-cart/internal/domain"
)

// Totals is the cart-level result of Compute.
type Totals struct {
	ItemsTotal decimal.Decimal
	Discount   decimal.Decimal
	TotalPrice decimal.Decimal
	Pricing    domain.PricingTotals
}

// Compute derives totals from the cart lines, coupon and fees. It reads the
// cart only, so calling it twice without a mutation in between yields the
// same result.
func Compute(c *domain.Cart) Totals {
	items := decimal.Zero
	for _, l := range c.Lines {
		items = domain.RoundMoney(items.Add(LineAmount(l.Quantity, l.UnitPrice)))
	}

	discount := decimal.Zero
	if c.Coupon != nil {
		discount = c.Coupon.Discount(items)
	}

	total := domain.RoundMoney(items.Sub(discount))
	if total.IsNegative() {
		total = decimal.Zero
	}

	grand := domain.RoundMoney(total.Add(c.DeliveryFee).Add(c.ServiceFee).Add(c.TipAmount))
	return Totals{
		ItemsTotal: items,
		Discount:   discount,
		TotalPrice: total,
		Pricing: domain.PricingTotals{
			ItemsTotal:  items,
			DeliveryFee: domain.RoundMoney(c.DeliveryFee),
			ServiceFee:  domain.RoundMoney(c.ServiceFee),
			TipAmount:   domain.RoundMoney(c.TipAmount),
			Discount:    discount,
			GrandTotal:  grand,
			Currency:    c.Currency,
		},
	}
}

// Recompute refreshes every derived field of the cart in place.
func Recompute(c *domain.Cart) {
	for i := range c.Lines {
		c.Lines[i].LineTotal = LineAmount(c.Lines[i].Quantity, c.Lines[i].UnitPrice)
	}
	t := Compute(c)
	c.Discount = t.Discount
	c.TotalPrice = t.TotalPrice
	pricing := t.Pricing
	c.Pricing = &pricing
}

// OrderLines snapshots the cart lines with a per-line breakdown at taxRate.
func OrderLines(c *domain.Cart, taxRate decimal.Decimal) ([]domain.OrderLine, error) {
	out := make([]domain.OrderLine, 0, len(c.Lines))
	for _, l := range c.Lines {
		b, err := CalcLine(LineInput{Quantity: l.Quantity, UnitPrice: l.UnitPrice, TaxRate: taxRate})
		if err != nil {
			return nil, err
		}
		var menu *domain.MenuSelection
		if l.Menu != nil {
			m := *l.Menu
			menu = &m
		}
		out = append(out, domain.OrderLine{
			ProductID:   l.ProductID,
			ProductType: l.ProductType,
			Name:        l.Name,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			Net:         b.Net,
			Tax:         b.Tax,
			Total:       b.Total,
			Menu:        menu,
		})
	}
	return out, nil
}
