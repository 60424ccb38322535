package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ProductType tags which catalog a cart line points into.
type ProductType string

const (
	ProductBike        ProductType = "bike"
	ProductEnsotekProd ProductType = "ensotekprod"
	ProductSparePart   ProductType = "sparepart"
	ProductMenuItem    ProductType = "menuitem"
)

// ParseProductType validates a product type tag.
func ParseProductType(raw string) (ProductType, error) {
	switch t := ProductType(strings.ToLower(strings.TrimSpace(raw))); t {
	case ProductBike, ProductEnsotekProd, ProductSparePart, ProductMenuItem:
		return t, nil
	default:
		return "", Errorf(KindInvalidInput, "unknown product type %q", raw)
	}
}

// IsMenu reports whether lines of this type carry a MenuSelection.
func (t ProductType) IsMenu() bool {
	switch t {
	case ProductMenuItem:
		return true
	case ProductBike, ProductEnsotekProd, ProductSparePart:
		return false
	default:
		return false
	}
}

type Product struct {
	ID          string          `json:"id"`
	ProjectID   string          `json:"-"`
	Key         string          `json:"key"`
	SKU         string          `json:"sku"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Type        ProductType     `json:"productType"`
	Price       decimal.Decimal `json:"price"`
	Currency    string          `json:"currency"`
	Stock       *int            `json:"stock,omitempty"`
	Menu        *MenuPricing    `json:"menu,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// MenuPricing is the configurable part of a menu item.
type MenuPricing struct {
	Variants       []MenuVariant   `json:"variants,omitempty"`
	ModifierGroups []ModifierGroup `json:"modifierGroups,omitempty"`
	Deposit        decimal.Decimal `json:"deposit"`
}

// MenuVariant replaces the base price when selected.
type MenuVariant struct {
	Code  string          `json:"code"`
	Name  string          `json:"name,omitempty"`
	Price decimal.Decimal `json:"price"`
}

type ModifierGroup struct {
	Code    string           `json:"code"`
	Name    string           `json:"name,omitempty"`
	Options []ModifierOption `json:"options"`
}

type ModifierOption struct {
	Code  string          `json:"code"`
	Name  string          `json:"name,omitempty"`
	Price decimal.Decimal `json:"price"`
}

// ProductSnapshot is the pricing-relevant view the catalog resolver returns.
type ProductSnapshot struct {
	ID        string          `json:"id"`
	Type      ProductType     `json:"productType"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Currency  string          `json:"currency"`
	Stock     *int            `json:"stock,omitempty"`
	Menu      *MenuPricing    `json:"menu,omitempty"`
}

// Snapshot projects a catalog product onto its resolver view.
func (p Product) Snapshot() ProductSnapshot {
	return ProductSnapshot{
		ID:        p.ID,
		Type:      p.Type,
		Name:      p.Name,
		UnitPrice: p.Price,
		Currency:  p.Currency,
		Stock:     p.Stock,
		Menu:      p.Menu,
	}
}
