package order

import (
	"context"

	"storefront-cart/internal/domain"
)

type Repository interface {
	// Create stores the order and its lines atomically with status "created".
	Create(ctx context.Context, req domain.OrderRequest) (*domain.Order, error)
}
