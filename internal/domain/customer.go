package domain

import (
	"strings"
	"time"
)

const (
	AddressShipping = "shipping"
	AddressBilling  = "billing"
)

// CustomerAddress is owned by the customer profile and referenced by checkout.
type CustomerAddress struct {
	ID          string `json:"id"`
	AddressType string `json:"addressType"`
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	Street      string `json:"street"`
	City        string `json:"city"`
	PostalCode  string `json:"postalCode"`
	Country     string `json:"country"`
}

// Validate checks that every field needed to deliver to the address is set.
func (a CustomerAddress) Validate() error {
	switch strings.TrimSpace(a.AddressType) {
	case AddressShipping, AddressBilling:
	default:
		return Errorf(KindInvalidInput, "addressType must be %q or %q", AddressShipping, AddressBilling)
	}
	required := []struct {
		name  string
		value string
	}{
		{"name", a.Name},
		{"phone", a.Phone},
		{"street", a.Street},
		{"city", a.City},
		{"postalCode", a.PostalCode},
		{"country", a.Country},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return Errorf(KindInvalidInput, "address %s required", f.name)
		}
	}
	return nil
}

// Customer represents a registered user tied to a project.
type Customer struct {
	ID           string            `json:"id"`
	ProjectID    string            `json:"projectId"`
	Email        string            `json:"email"`
	PasswordHash string            `json:"-"`
	FirstName    string            `json:"firstName,omitempty"`
	LastName     string            `json:"lastName,omitempty"`
	Addresses    []CustomerAddress `json:"addresses,omitempty"`
	CreatedAt    time.Time         `json:"createdAt"`
}

// HasShippingAddress reports whether at least one address can receive orders.
func HasShippingAddress(addresses []CustomerAddress) bool {
	for _, a := range addresses {
		if a.AddressType == AddressShipping {
			return true
		}
	}
	return false
}
