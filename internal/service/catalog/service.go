// Package catalog resolves product references for the cart and serves the
// storefront product listing.
package catalog

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"storefront-cart/internal/domain"
	productrepo "storefront-cart/internal/repository/product"
)

type Service struct {
	repo   productrepo.Repository
	logger *zap.Logger
}

func New(repo productrepo.Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, logger: logger}
}

// List returns the tenant catalog, optionally filtered by product type.
func (s *Service) List(ctx context.Context, projectID string, productType domain.ProductType) ([]domain.Product, error) {
	products, err := s.repo.ListByProject(ctx, projectID, productType)
	if err != nil {
		return nil, domain.WrapError(domain.KindUpstreamUnavailable, "catalog unavailable", err)
	}
	return products, nil
}

func (s *Service) Get(ctx context.Context, projectID, id string) (*domain.Product, error) {
	p, err := s.repo.GetByID(ctx, projectID, id)
	if err != nil {
		return nil, classify(err, id)
	}
	return p, nil
}

// Resolve returns the pricing snapshot of a product. A product stored under a
// different type than the line claims is treated as missing.
func (s *Service) Resolve(ctx context.Context, projectID, productID string, productType domain.ProductType) (*domain.ProductSnapshot, error) {
	p, err := s.repo.GetByID(ctx, projectID, productID)
	if err != nil {
		return nil, classify(err, productID)
	}
	if p.Type != productType {
		s.logger.Debug("catalog: type mismatch",
			zap.String("product_id", productID),
			zap.String("requested", string(productType)),
			zap.String("stored", string(p.Type)))
		return nil, domain.Errorf(domain.KindNotFound, "%s %s not found", productType, productID)
	}
	snap := p.Snapshot()
	return &snap, nil
}

func classify(err error, id string) error {
	if errors.Is(err, domain.ErrNotFound) {
		return domain.WrapError(domain.KindNotFound, "product "+id+" not found", err)
	}
	return domain.WrapError(domain.KindUpstreamUnavailable, "catalog unavailable", err)
}
