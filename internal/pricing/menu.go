package pricing

import (
	"strings"

	"github.com/shopspring/decimal"

	"storefront-cart/internal/domain"
)

// MenuUnitPrice returns the unit price of a menu line. An explicit hint from
// the caller wins over the sum of the components.
func MenuUnitPrice(c domain.PriceComponents, depositIncluded bool, hint *decimal.Decimal) (decimal.Decimal, error) {
	if hint != nil {
		if hint.IsNegative() {
			return decimal.Zero, domain.NewError(domain.KindInvalidInput, "price hint must not be negative")
		}
		return domain.RoundMoney(*hint), nil
	}
	sum := domain.RoundMoney(c.Base.Add(c.ModifiersTotal))
	if depositIncluded {
		sum = domain.RoundMoney(sum.Add(c.Deposit))
	}
	return sum, nil
}

// MenuComponents derives the price components of a menu selection from the
// catalog definition. basePrice is used when no variant is chosen.
func MenuComponents(menu *domain.MenuPricing, basePrice decimal.Decimal, currency string, sel domain.MenuSelection) (domain.PriceComponents, error) {
	out := domain.PriceComponents{Base: domain.RoundMoney(basePrice), Currency: currency}
	if menu == nil {
		if sel.VariantCode != "" || len(sel.Modifiers) > 0 {
			return domain.PriceComponents{}, domain.NewError(domain.KindInvalidInput, "menu item has no configurable options")
		}
		return out, nil
	}
	out.Deposit = domain.RoundMoney(menu.Deposit)

	if code := strings.TrimSpace(sel.VariantCode); code != "" {
		found := false
		for _, v := range menu.Variants {
			if v.Code == code {
				out.Base = domain.RoundMoney(v.Price)
				found = true
				break
			}
		}
		if !found {
			return domain.PriceComponents{}, domain.Errorf(domain.KindInvalidInput, "unknown variant %q", code)
		}
	}

	total := decimal.Zero
	for _, pick := range sel.Modifiers {
		if pick.Quantity < 1 {
			return domain.PriceComponents{}, domain.Errorf(domain.KindInvalidInput, "modifier %s/%s quantity must be positive", pick.GroupCode, pick.OptionCode)
		}
		price, ok := modifierPrice(menu, pick.GroupCode, pick.OptionCode)
		if !ok {
			return domain.PriceComponents{}, domain.Errorf(domain.KindInvalidInput, "unknown modifier %s/%s", pick.GroupCode, pick.OptionCode)
		}
		total = domain.RoundMoney(total.Add(price.Mul(decimal.NewFromInt(int64(pick.Quantity)))))
	}
	out.ModifiersTotal = total
	return out, nil
}

func modifierPrice(menu *domain.MenuPricing, group, option string) (decimal.Decimal, bool) {
	for _, g := range menu.ModifierGroups {
		if g.Code != group {
			continue
		}
		for _, o := range g.Options {
			if o.Code == option {
				return o.Price, true
			}
		}
	}
	return decimal.Zero, false
}
