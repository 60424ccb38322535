// Package api holds the wire shapes shared by the HTTP server and the
// storefront client.
package api

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"storefront-cart/internal/domain"
)

// Envelope wraps every successful response. Data is the full cart, or the
// order for checkout. Warning carries soft notices only, never errors.
type Envelope struct {
	Success bool   `json:"success,omitempty"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data"`
	Warning string `json:"warning,omitempty"`
	Meta    *Meta  `json:"meta,omitempty"`
}

// RawEnvelope is Envelope as seen by a client that keeps data undecoded.
type RawEnvelope struct {
	Success bool            `json:"success,omitempty"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data"`
	Warning string          `json:"warning,omitempty"`
	Meta    *Meta           `json:"meta,omitempty"`
}

type Meta struct {
	ItemCount int `json:"itemCount"`
	LineCount int `json:"lineCount"`
}

// CartMeta summarises a cart for the envelope.
func CartMeta(c *domain.Cart) *Meta {
	if c == nil {
		return nil
	}
	return &Meta{ItemCount: c.ItemCount(), LineCount: len(c.Lines)}
}

// ErrorBody is the body of every non-2xx response.
type ErrorBody struct {
	Success  bool   `json:"success"`
	Kind     string `json:"kind"`
	Message  string `json:"message"`
	Redirect string `json:"redirect,omitempty"`
}

type AddItemRequest struct {
	ProductID   string `json:"productId"`
	ProductType string `json:"productType"`
	Quantity    int    `json:"quantity"`
	Currency    string `json:"currency,omitempty"`
}

type AddMenuItemRequest struct {
	MenuItemID      string                `json:"menuItemId"`
	Quantity        int                   `json:"quantity"`
	VariantCode     string                `json:"variantCode,omitempty"`
	Modifiers       []domain.ModifierPick `json:"modifiers,omitempty"`
	DepositIncluded bool                  `json:"depositIncluded,omitempty"`
	Notes           string                `json:"notes,omitempty"`
	PriceHint       *decimal.Decimal      `json:"unitPrice,omitempty"`
	Currency        string                `json:"currency,omitempty"`
}

// UpdateLineRequest uses pointers so absent fields stay unchanged.
type UpdateLineRequest struct {
	Quantity        *int                   `json:"quantity,omitempty"`
	VariantCode     *string                `json:"variantCode,omitempty"`
	Modifiers       *[]domain.ModifierPick `json:"modifiers,omitempty"`
	DepositIncluded *bool                  `json:"depositIncluded,omitempty"`
	Notes           *string                `json:"notes,omitempty"`
}

type PricingRequest struct {
	TipAmount   *decimal.Decimal `json:"tipAmount,omitempty"`
	DeliveryFee *decimal.Decimal `json:"deliveryFee,omitempty"`
	ServiceFee  *decimal.Decimal `json:"serviceFee,omitempty"`
	CouponCode  *string          `json:"couponCode,omitempty"`
	Currency    *string          `json:"currency,omitempty"`
}

type CheckoutRequest struct {
	ServiceType   string                  `json:"serviceType"`
	PaymentMethod string                  `json:"paymentMethod"`
	AddressID     string                  `json:"addressId,omitempty"`
	Address       *domain.CustomerAddress `json:"address,omitempty"`
}

type AddressRequest struct {
	AddressType string `json:"addressType"`
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	Street      string `json:"street"`
	City        string `json:"city"`
	PostalCode  string `json:"postalCode"`
	Country     string `json:"country"`
}

type SignupRequest struct {
	Email     string           `json:"email"`
	Password  string           `json:"password"`
	FirstName string           `json:"firstName"`
	LastName  string           `json:"lastName"`
	Addresses []AddressRequest `json:"addresses"`
}

// TokenResponse follows the OAuth password grant response.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	RefreshToken string `json:"refresh_token,omitempty"`
	Scope        string `json:"scope,omitempty"`
}
