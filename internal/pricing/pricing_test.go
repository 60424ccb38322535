package pricing

import (
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-cart/internal/domain"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCalcLine_RoundsEachStep(t *testing.T) {
	got, err := CalcLine(LineInput{Quantity: 3, UnitPrice: dec("19.99"), TaxRate: dec("19")})
	require.NoError(t, err)
	assert.True(t, got.Net.Equal(dec("59.97")), "net=%s", got.Net)
	assert.True(t, got.Tax.Equal(dec("11.39")), "tax=%s", got.Tax)
	assert.True(t, got.Total.Equal(dec("71.36")), "total=%s", got.Total)
}

func TestCalcLine_HalfAwayFromZero(t *testing.T) {
	// 1 × 0.125 rounds up to 0.13, then 10% of 0.13 = 0.013 -> 0.01.
	got, err := CalcLine(LineInput{Quantity: 1, UnitPrice: dec("0.125"), TaxRate: dec("10")})
	require.NoError(t, err)
	assert.True(t, got.Net.Equal(dec("0.13")), "net=%s", got.Net)
	assert.True(t, got.Tax.Equal(dec("0.01")), "tax=%s", got.Tax)
	assert.True(t, got.Total.Equal(dec("0.14")), "total=%s", got.Total)
}

func TestCalcLine_DiscountFloorsAtZero(t *testing.T) {
	got, err := CalcLine(LineInput{Quantity: 1, UnitPrice: dec("5"), Discount: dec("8"), TaxRate: dec("20")})
	require.NoError(t, err)
	assert.True(t, got.Net.IsZero())
	assert.True(t, got.Tax.IsZero())
	assert.True(t, got.Total.IsZero())
}

func TestCalcLine_RejectsInvalidInput(t *testing.T) {
	cases := []struct {
		name string
		in   LineInput
	}{
		{"negative quantity", LineInput{Quantity: -1, UnitPrice: dec("1")}},
		{"negative price", LineInput{Quantity: 1, UnitPrice: dec("-0.01")}},
		{"negative discount", LineInput{Quantity: 1, UnitPrice: dec("1"), Discount: dec("-1")}},
		{"tax above 100", LineInput{Quantity: 1, UnitPrice: dec("1"), TaxRate: dec("101")}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := CalcLine(tc.in)
			assert.True(t, domain.IsKind(err, domain.KindInvalidInput), "got %v", err)
		})
	}
}

func TestCalcLine_ConcurrentCallsAgree(t *testing.T) {
	in := LineInput{Quantity: 7, UnitPrice: dec("3.333"), TaxRate: dec("7")}
	want, err := CalcLine(in)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := CalcLine(in)
			assert.NoError(t, err)
			assert.True(t, got.Total.Equal(want.Total))
		}()
	}
	wg.Wait()
}

func TestMenuUnitPrice(t *testing.T) {
	c := domain.PriceComponents{Base: dec("8.50"), ModifiersTotal: dec("1.20"), Deposit: dec("0.25")}

	got, err := MenuUnitPrice(c, false, nil)
	require.NoError(t, err)
	assert.True(t, got.Equal(dec("9.70")), "got %s", got)

	got, err = MenuUnitPrice(c, true, nil)
	require.NoError(t, err)
	assert.True(t, got.Equal(dec("9.95")), "got %s", got)

	hint := dec("7.00")
	got, err = MenuUnitPrice(c, true, &hint)
	require.NoError(t, err)
	assert.True(t, got.Equal(dec("7")), "explicit hint should win, got %s", got)

	neg := dec("-1")
	_, err = MenuUnitPrice(c, false, &neg)
	assert.True(t, domain.IsKind(err, domain.KindInvalidInput))
}

func TestMenuComponents(t *testing.T) {
	menu := &domain.MenuPricing{
		Variants: []domain.MenuVariant{{Code: "large", Price: dec("11.00")}},
		ModifierGroups: []domain.ModifierGroup{{
			Code:    "extras",
			Options: []domain.ModifierOption{{Code: "cheese", Price: dec("0.80")}, {Code: "bacon", Price: dec("1.10")}},
		}},
		Deposit: dec("0.25"),
	}
	sel := domain.MenuSelection{
		VariantCode: "large",
		Modifiers: []domain.ModifierPick{
			{GroupCode: "extras", OptionCode: "cheese", Quantity: 2},
			{GroupCode: "extras", OptionCode: "bacon", Quantity: 1},
		},
	}
	c, err := MenuComponents(menu, dec("9.00"), "EUR", sel)
	require.NoError(t, err)
	assert.True(t, c.Base.Equal(dec("11")))
	assert.True(t, c.ModifiersTotal.Equal(dec("2.70")))
	assert.True(t, c.Deposit.Equal(dec("0.25")))
	assert.Equal(t, "EUR", c.Currency)

	_, err = MenuComponents(menu, dec("9.00"), "EUR", domain.MenuSelection{VariantCode: "huge"})
	assert.True(t, domain.IsKind(err, domain.KindInvalidInput))

	_, err = MenuComponents(menu, dec("9.00"), "EUR", domain.MenuSelection{
		Modifiers: []domain.ModifierPick{{GroupCode: "extras", OptionCode: "olives", Quantity: 1}},
	})
	assert.True(t, domain.IsKind(err, domain.KindInvalidInput))
}

func TestCompute_IdempotentTotals(t *testing.T) {
	cart := &domain.Cart{
		Currency: "EUR",
		Status:   domain.CartOpen,
		Lines: []domain.CartLine{
			{Quantity: 3, UnitPrice: dec("19.99")},
			{Quantity: 1, UnitPrice: dec("0.335")},
		},
		Coupon:      &domain.Coupon{Code: "TEN", Kind: domain.CouponPercentage, Value: dec("10"), Active: true},
		DeliveryFee: dec("2.50"),
		TipAmount:   dec("1"),
	}
	first := Compute(cart)
	second := Compute(cart)
	assert.True(t, first.TotalPrice.Equal(second.TotalPrice))
	assert.True(t, first.Pricing.GrandTotal.Equal(second.Pricing.GrandTotal))

	// 59.97 + 0.34 = 60.31; 10% = 6.03; 54.28 + 2.50 + 1 = 57.78
	assert.True(t, first.ItemsTotal.Equal(dec("60.31")), "items=%s", first.ItemsTotal)
	assert.True(t, first.Discount.Equal(dec("6.03")), "discount=%s", first.Discount)
	assert.True(t, first.TotalPrice.Equal(dec("54.28")), "total=%s", first.TotalPrice)
	assert.True(t, first.Pricing.GrandTotal.Equal(dec("57.78")), "grand=%s", first.Pricing.GrandTotal)
}

func TestRecompute_FixedCouponCappedAtItems(t *testing.T) {
	cart := &domain.Cart{
		Currency: "EUR",
		Lines:    []domain.CartLine{{Quantity: 1, UnitPrice: dec("4.00")}},
		Coupon:   &domain.Coupon{Code: "FIVE", Kind: domain.CouponFixed, Value: dec("5"), Active: true},
	}
	Recompute(cart)
	assert.True(t, cart.Discount.Equal(dec("4")))
	assert.True(t, cart.TotalPrice.IsZero())
	require.NotNil(t, cart.Pricing)
	assert.True(t, cart.Lines[0].LineTotal.Equal(dec("4")))
}

func TestOrderLines_AppliesTaxRate(t *testing.T) {
	cart := &domain.Cart{Lines: []domain.CartLine{{ProductID: "p1", ProductType: domain.ProductBike, Quantity: 3, UnitPrice: dec("19.99")}}}
	lines, err := OrderLines(cart, dec("19"))
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.True(t, lines[0].Total.Equal(dec("71.36")))
}
