// Package order is the order collaborator used by checkout.
package order

import (
	"context"

	"go.uber.org/zap"

	"storefront-cart/internal/domain"
	orderrepo "storefront-cart/internal/repository/order"
)

// EventPublisher announces stored orders. *events.Publisher implements it.
type EventPublisher interface {
	PublishCartCheckedOut(ctx context.Context, o *domain.Order, req domain.OrderRequest) error
}

type Service struct {
	repo      orderrepo.Repository
	publisher EventPublisher
	logger    *zap.Logger
}

// New builds the service. publisher may be nil when no broker is configured.
func New(repo orderrepo.Repository, publisher EventPublisher, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, publisher: publisher, logger: logger}
}

// CreateOrder stores the order. Event publication is best effort: a broker
// failure is logged and the stored order is still returned.
func (s *Service) CreateOrder(ctx context.Context, req domain.OrderRequest) (*domain.Order, error) {
	if len(req.Lines) == 0 {
		return nil, domain.NewError(domain.KindEmptyCart, "order has no lines")
	}
	o, err := s.repo.Create(ctx, req)
	if err != nil {
		return nil, domain.WrapError(domain.KindUpstreamUnavailable, "order could not be placed", err)
	}
	if s.publisher != nil {
		if err := s.publisher.PublishCartCheckedOut(ctx, o, req); err != nil {
			s.logger.Warn("publish cart checked out failed",
				zap.String("order_id", o.ID),
				zap.String("cart_id", req.CartID),
				zap.Error(err))
		}
	}
	return o, nil
}
