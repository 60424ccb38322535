package customer

import (
	"context"

	"storefront-cart/internal/domain"
)

// Repository persists and fetches customers.
type Repository interface {
	Create(ctx context.Context, c domain.Customer) (*domain.Customer, error)
	GetByEmail(ctx context.Context, projectID, email string) (*domain.Customer, error)
	GetByID(ctx context.Context, projectID, id string) (*domain.Customer, error)
	// UpdateAddresses replaces the address book of a customer.
	UpdateAddresses(ctx context.Context, projectID, id string, addresses []domain.CustomerAddress) error
}
