package events

import (
	"github.com/shopspring/decimal"

	"storefront-cart/internal/domain"
)

type CartItem struct {
	ProductID   string             `json:"productId"`
	ProductType domain.ProductType `json:"productType"`
	Quantity    int                `json:"quantity"`
	UnitPrice   decimal.Decimal    `json:"unitPrice"`
	Total       decimal.Decimal    `json:"total"`
}

// CartCheckedOut is emitted once an order has been stored for a cart.
type CartCheckedOut struct {
	OrderID       string               `json:"orderId"`
	CartID        string               `json:"cartId"`
	UserID        string               `json:"userId"`
	ServiceType   string               `json:"serviceType"`
	PaymentMethod string               `json:"paymentMethod"`
	Items         []CartItem           `json:"items"`
	Totals        domain.PricingTotals `json:"totals"`
	Currency      string               `json:"currency"`
}

func cartCheckedOutFrom(o *domain.Order, req domain.OrderRequest) CartCheckedOut {
	items := make([]CartItem, 0, len(req.Lines))
	for _, l := range req.Lines {
		items = append(items, CartItem{
			ProductID:   l.ProductID,
			ProductType: l.ProductType,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			Total:       l.Total,
		})
	}
	return CartCheckedOut{
		OrderID:       o.ID,
		CartID:        req.CartID,
		UserID:        req.CustomerID,
		ServiceType:   req.ServiceType,
		PaymentMethod: req.PaymentMethod,
		Items:         items,
		Totals:        req.Totals,
		Currency:      req.Currency,
	}
}
