package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// CartStatus is the lifecycle state of a cart.
type CartStatus string

const (
	CartOpen      CartStatus = "open"
	CartOrdered   CartStatus = "ordered"
	CartCancelled CartStatus = "cancelled"
)

type Cart struct {
	ID          string          `json:"id,omitempty"`
	ProjectID   string          `json:"-"`
	CustomerID  string          `json:"userId,omitempty"`
	Lines       []CartLine      `json:"items"`
	TotalPrice  decimal.Decimal `json:"totalPrice"`
	Currency    string          `json:"currency"`
	CouponCode  string          `json:"couponCode,omitempty"`
	Coupon      *Coupon         `json:"-"`
	Discount    decimal.Decimal `json:"discount"`
	DeliveryFee decimal.Decimal `json:"deliveryFee"`
	ServiceFee  decimal.Decimal `json:"serviceFee"`
	TipAmount   decimal.Decimal `json:"tipAmount"`
	Status      CartStatus      `json:"status"`
	IsActive    bool            `json:"isActive"`
	Pricing     *PricingTotals  `json:"pricing,omitempty"`
	CreatedAt   time.Time       `json:"createdAt,omitempty"`
	UpdatedAt   time.Time       `json:"updatedAt,omitempty"`
}

type CartLine struct {
	ID                   string           `json:"id"`
	ProductID            string           `json:"productId"`
	ProductType          ProductType      `json:"productType"`
	Name                 string           `json:"name,omitempty"`
	Quantity             int              `json:"quantity"`
	UnitPrice            decimal.Decimal  `json:"unitPrice"`
	PriceAtAddition      decimal.Decimal  `json:"priceAtAddition"`
	TotalPriceAtAddition decimal.Decimal  `json:"totalPriceAtAddition"`
	UnitCurrency         string           `json:"unitCurrency,omitempty"`
	PriceComponents      *PriceComponents `json:"priceComponents,omitempty"`
	Menu                 *MenuSelection   `json:"menu,omitempty"`
	LineTotal            decimal.Decimal  `json:"lineTotal"`
	AddedAt              time.Time        `json:"addedAt"`
	UpdatedAt            time.Time        `json:"updatedAt"`
}

// PriceComponents is the breakdown of a menu line unit price.
type PriceComponents struct {
	Base           decimal.Decimal `json:"base"`
	ModifiersTotal decimal.Decimal `json:"modifiersTotal"`
	Deposit        decimal.Decimal `json:"deposit"`
	Currency       string          `json:"currency,omitempty"`
}

type MenuSelection struct {
	VariantCode     string         `json:"variantCode,omitempty"`
	Modifiers       []ModifierPick `json:"modifiers,omitempty"`
	DepositIncluded bool           `json:"depositIncluded"`
	Notes           string         `json:"notes,omitempty"`
	DisplayName     string         `json:"displayName,omitempty"`
}

type ModifierPick struct {
	GroupCode  string `json:"groupCode"`
	OptionCode string `json:"optionCode"`
	Quantity   int    `json:"quantity"`
}

// PricingTotals is derived, never persisted as such.
type PricingTotals struct {
	ItemsTotal  decimal.Decimal `json:"itemsTotal"`
	DeliveryFee decimal.Decimal `json:"deliveryFee"`
	ServiceFee  decimal.Decimal `json:"serviceFee"`
	TipAmount   decimal.Decimal `json:"tipAmount"`
	Discount    decimal.Decimal `json:"discount"`
	GrandTotal  decimal.Decimal `json:"grandTotal"`
	Currency    string          `json:"currency"`
}

// EmptyCart is the canonical placeholder shown when no cart could be loaded
// and after a successful checkout.
func EmptyCart(currency string) *Cart {
	zero := decimal.Zero
	return &Cart{
		Lines:       []CartLine{},
		TotalPrice:  zero,
		Currency:    currency,
		Discount:    zero,
		DeliveryFee: zero,
		ServiceFee:  zero,
		TipAmount:   zero,
		Status:      CartOpen,
		IsActive:    true,
		Pricing: &PricingTotals{
			ItemsTotal:  zero,
			DeliveryFee: zero,
			ServiceFee:  zero,
			TipAmount:   zero,
			Discount:    zero,
			GrandTotal:  zero,
			Currency:    currency,
		},
	}
}

// IsOpen reports whether line-level mutations are allowed.
func (c *Cart) IsOpen() bool {
	return c.Status == CartOpen
}

// ItemCount sums line quantities.
func (c *Cart) ItemCount() int {
	n := 0
	for _, l := range c.Lines {
		n += l.Quantity
	}
	return n
}

// FindLine locates a line by line id first, then by product id.
func (c *Cart) FindLine(key string) (int, bool) {
	key = strings.TrimSpace(key)
	if key == "" {
		return -1, false
	}
	for i, l := range c.Lines {
		if l.ID == key {
			return i, true
		}
	}
	for i, l := range c.Lines {
		if l.ProductID == key {
			return i, true
		}
	}
	return -1, false
}

// Signature identifies lines that should merge on add.
func (l CartLine) Signature() string {
	return LineSignature(l.ProductID, l.ProductType, l.Menu)
}

// LineSignature builds the merge key for a product reference and optional
// menu configuration. Modifier order does not matter.
func LineSignature(productID string, t ProductType, menu *MenuSelection) string {
	var b strings.Builder
	b.WriteString(productID)
	b.WriteByte('|')
	b.WriteString(string(t))
	if !t.IsMenu() || menu == nil {
		return b.String()
	}
	b.WriteByte('|')
	b.WriteString(menu.VariantCode)
	picks := make([]string, 0, len(menu.Modifiers))
	for _, m := range menu.Modifiers {
		picks = append(picks, fmt.Sprintf("%s:%s:%d", m.GroupCode, m.OptionCode, m.Quantity))
	}
	sort.Strings(picks)
	b.WriteByte('|')
	b.WriteString(strings.Join(picks, ","))
	if menu.DepositIncluded {
		b.WriteString("|deposit")
	}
	return b.String()
}
