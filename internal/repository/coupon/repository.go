package coupon

import (
	"context"

	"storefront-cart/internal/domain"
)

type Repository interface {
	// GetByCode looks the code up case-insensitively.
	GetByCode(ctx context.Context, projectID, code string) (*domain.Coupon, error)
	Upsert(ctx context.Context, projectID string, c domain.Coupon) error
}
