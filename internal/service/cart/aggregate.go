package cart

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"storefront-cart/internal/domain"
	"storefront-cart/internal/pricing"
)

// StockLimitWarning is the soft notice attached when a simple line goes past
// the stock the catalog reported.
const StockLimitWarning = "stock limit reached"

func ensureOpen(c *domain.Cart) error {
	if !c.IsOpen() {
		return domain.Errorf(domain.KindInvalidOperation, "cart is %s and can no longer be changed", c.Status)
	}
	return nil
}

// adoptCurrency lets an empty cart take over currency; a cart with lines
// rejects any other currency.
func adoptCurrency(c *domain.Cart, currency string) error {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" || currency == c.Currency {
		return nil
	}
	if len(c.Lines) == 0 {
		c.Currency = currency
		return nil
	}
	return domain.Errorf(domain.KindCurrencyMismatch, "cart is priced in %s, cannot add %s", c.Currency, currency)
}

func setQuantity(l *domain.CartLine, quantity int, now time.Time) {
	l.Quantity = quantity
	l.TotalPriceAtAddition = pricing.LineAmount(quantity, l.PriceAtAddition)
	l.UpdatedAt = now
}

// addLine merges line into an existing line with the same signature, keeping
// that line's unit price and joining its kitchen notes, or appends it. It
// returns the index of the line.
func addLine(c *domain.Cart, line domain.CartLine, now time.Time) (int, error) {
	if err := ensureOpen(c); err != nil {
		return -1, err
	}
	if line.Quantity < 1 {
		return -1, domain.NewError(domain.KindInvalidInput, "quantity must be at least 1")
	}
	if err := adoptCurrency(c, line.UnitCurrency); err != nil {
		return -1, err
	}

	sig := line.Signature()
	for i := range c.Lines {
		if c.Lines[i].Signature() == sig {
			setQuantity(&c.Lines[i], c.Lines[i].Quantity+line.Quantity, now)
			mergeNotes(&c.Lines[i], line)
			return i, nil
		}
	}

	line.AddedAt = now
	setQuantity(&line, line.Quantity, now)
	c.Lines = append(c.Lines, line)
	return len(c.Lines) - 1, nil
}

// mergeNotes appends from's notes to into's. Notes are not part of the line
// signature, so merged menu lines keep every instruction given.
func mergeNotes(into *domain.CartLine, from domain.CartLine) {
	if into.Menu == nil || from.Menu == nil {
		return
	}
	notes := strings.TrimSpace(from.Menu.Notes)
	if notes == "" || notes == into.Menu.Notes {
		return
	}
	sel := *into.Menu
	if sel.Notes == "" {
		sel.Notes = notes
	} else {
		sel.Notes += "; " + notes
	}
	into.Menu = &sel
}

func lineIndex(c *domain.Cart, key string) (int, error) {
	i, ok := c.FindLine(key)
	if !ok {
		return -1, domain.Errorf(domain.KindNotFound, "cart line %q not found", key)
	}
	return i, nil
}

func increaseLine(c *domain.Cart, key string, now time.Time) (int, error) {
	if err := ensureOpen(c); err != nil {
		return -1, err
	}
	i, err := lineIndex(c, key)
	if err != nil {
		return -1, err
	}
	setQuantity(&c.Lines[i], c.Lines[i].Quantity+1, now)
	return i, nil
}

// decreaseLine never removes: a line at quantity 1 must be removed explicitly.
func decreaseLine(c *domain.Cart, key string, now time.Time) error {
	if err := ensureOpen(c); err != nil {
		return err
	}
	i, err := lineIndex(c, key)
	if err != nil {
		return err
	}
	if c.Lines[i].Quantity <= 1 {
		return domain.NewError(domain.KindInvalidOperation, "quantity cannot go below 1; remove the line instead")
	}
	setQuantity(&c.Lines[i], c.Lines[i].Quantity-1, now)
	return nil
}

func removeLine(c *domain.Cart, key string) error {
	if err := ensureOpen(c); err != nil {
		return err
	}
	i, err := lineIndex(c, key)
	if err != nil {
		return err
	}
	c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
	return nil
}

func clearCart(c *domain.Cart) error {
	if err := ensureOpen(c); err != nil {
		return err
	}
	c.Lines = []domain.CartLine{}
	c.Coupon = nil
	c.CouponCode = ""
	c.Discount = decimal.Zero
	return nil
}

// mergeDuplicate folds the line at i into an earlier or later line with the
// same signature, if any. Used after a line was reconfigured.
func mergeDuplicate(c *domain.Cart, i int, now time.Time) int {
	sig := c.Lines[i].Signature()
	for j := range c.Lines {
		if j == i || c.Lines[j].Signature() != sig {
			continue
		}
		setQuantity(&c.Lines[j], c.Lines[j].Quantity+c.Lines[i].Quantity, now)
		mergeNotes(&c.Lines[j], c.Lines[i])
		c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
		if j > i {
			j--
		}
		return j
	}
	return i
}

func stockWarning(l domain.CartLine, snap *domain.ProductSnapshot) string {
	if snap == nil || snap.Type.IsMenu() || snap.Stock == nil {
		return ""
	}
	if l.Quantity > *snap.Stock {
		return StockLimitWarning
	}
	return ""
}
