package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const OrderCreated = "created"

// OrderRequest is what checkout hands to the order collaborator.
type OrderRequest struct {
	ProjectID       string          `json:"-"`
	CustomerID      string          `json:"userId"`
	CartID          string          `json:"cartId"`
	ServiceType     string          `json:"serviceType"`
	PaymentMethod   string          `json:"paymentMethod"`
	ShippingAddress CustomerAddress `json:"shippingAddress"`
	Lines           []OrderLine     `json:"items"`
	Totals          PricingTotals   `json:"totals"`
	Currency        string          `json:"currency"`
}

type OrderLine struct {
	ProductID   string          `json:"productId"`
	ProductType ProductType     `json:"productType"`
	Name        string          `json:"name,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Net         decimal.Decimal `json:"net"`
	Tax         decimal.Decimal `json:"tax"`
	Total       decimal.Decimal `json:"total"`
	Menu        *MenuSelection  `json:"menu,omitempty"`
}

type Order struct {
	ID        string        `json:"orderId"`
	Status    string        `json:"status"`
	CartID    string        `json:"cartId,omitempty"`
	Totals    PricingTotals `json:"totals"`
	CreatedAt time.Time     `json:"createdAt"`
}
