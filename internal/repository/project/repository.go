package project

import (
	"context"

	"storefront-cart/internal/domain"
)

type Repository interface {
	GetByKey(ctx context.Context, key string) (*domain.Project, error)
	// Create inserts the project, or returns the existing one with the same key.
	Create(ctx context.Context, project domain.Project) (*domain.Project, error)
}
