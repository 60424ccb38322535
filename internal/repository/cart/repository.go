package cart

import (
	"context"

	"storefront-cart/internal/domain"
)

type CreateCartInput struct {
	ProjectID  string
	CustomerID string
	Currency   string
}

type Repository interface {
	Create(ctx context.Context, in CreateCartInput) (*domain.Cart, error)
	GetByID(ctx context.Context, projectID, id string) (*domain.Cart, error)
	GetOpenByCustomer(ctx context.Context, projectID, customerID string) (*domain.Cart, error)
	Save(ctx context.Context, cart *domain.Cart) error
	SetStatus(ctx context.Context, projectID, cartID string, status domain.CartStatus, active bool) error
}
