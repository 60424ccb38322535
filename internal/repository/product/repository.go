package product

import (
	"context"

	"storefront-cart/internal/domain"
)

type Repository interface {
	// ListByProject returns the tenant catalog; an empty productType lists all types.
	ListByProject(ctx context.Context, projectID string, productType domain.ProductType) ([]domain.Product, error)
	GetByID(ctx context.Context, projectID, id string) (*domain.Product, error)
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
}
