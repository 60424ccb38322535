package cart

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"storefront-cart/internal/domain"
	"storefront-cart/internal/pricing"
)

// AddressesRedirect is where the storefront sends customers without a
// shipping address.
const AddressesRedirect = "/account/addresses"

type CheckoutInput struct {
	ServiceType   string
	PaymentMethod string
	AddressID     string
	Address       *domain.CustomerAddress
}

// CartNotClosedWarning accompanies a successful checkout whose cart could not
// be marked ordered. The old cart may still show up as open.
const CartNotClosedWarning = "order placed but the cart could not be closed; reload it before ordering again"

type CheckoutResult struct {
	Order   *domain.Order
	Cart    *domain.Cart
	Warning string
}

// Checkout turns the open cart into an order. Preconditions are checked in a
// fixed order: lines, shipping address, then the request fields.
func (s *Service) Checkout(ctx context.Context, owner Owner, in CheckoutInput) (*CheckoutResult, error) {
	unlock := s.locks.Lock(owner.key())
	defer unlock()

	c, err := s.loadOrCreate(ctx, owner)
	if err != nil {
		return nil, err
	}
	if err := ensureOpen(c); err != nil {
		return nil, err
	}
	if len(c.Lines) == 0 {
		return nil, domain.NewError(domain.KindEmptyCart, "cart is empty")
	}

	addresses, err := s.addresses.Addresses(ctx, owner.ProjectID, owner.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("load addresses: %w", err)
	}
	if !domain.HasShippingAddress(addresses) {
		return nil, &domain.Error{
			Kind:     domain.KindMissingShippingAddress,
			Message:  "add a shipping address before checking out",
			Redirect: AddressesRedirect,
		}
	}

	serviceType := strings.TrimSpace(in.ServiceType)
	paymentMethod := strings.TrimSpace(in.PaymentMethod)
	if serviceType == "" {
		return nil, domain.NewError(domain.KindInvalidInput, "serviceType required")
	}
	if paymentMethod == "" {
		return nil, domain.NewError(domain.KindInvalidInput, "paymentMethod required")
	}

	shipping, err := chooseAddress(addresses, in)
	if err != nil {
		return nil, err
	}

	pricing.Recompute(c)
	lines, err := pricing.OrderLines(c, s.settings.TaxRate)
	if err != nil {
		return nil, err
	}
	order, err := s.orders.CreateOrder(ctx, domain.OrderRequest{
		ProjectID:       owner.ProjectID,
		CustomerID:      owner.CustomerID,
		CartID:          c.ID,
		ServiceType:     serviceType,
		PaymentMethod:   paymentMethod,
		ShippingAddress: shipping,
		Lines:           lines,
		Totals:          *c.Pricing,
		Currency:        c.Currency,
	})
	if err != nil {
		return nil, err
	}

	// The order exists at this point; a failed status flip must not report
	// the checkout as failed.
	res := &CheckoutResult{Order: order, Cart: domain.EmptyCart(c.Currency)}
	if err := s.repo.SetStatus(ctx, owner.ProjectID, c.ID, domain.CartOrdered, false); err != nil {
		s.logger.Error("mark cart ordered", zap.String("cart_id", c.ID), zap.String("order_id", order.ID), zap.Error(err))
		res.Warning = CartNotClosedWarning
	}
	s.logger.Info("cart checked out",
		zap.String("cart_id", c.ID),
		zap.String("order_id", order.ID),
		zap.String("grand_total", c.Pricing.GrandTotal.StringFixed(domain.MinorUnits)),
	)

	return res, nil
}

func chooseAddress(addresses []domain.CustomerAddress, in CheckoutInput) (domain.CustomerAddress, error) {
	if id := strings.TrimSpace(in.AddressID); id != "" {
		for _, a := range addresses {
			if a.ID != id {
				continue
			}
			if a.AddressType != domain.AddressShipping {
				return domain.CustomerAddress{}, domain.Errorf(domain.KindInvalidInput, "address %s is not a shipping address", id)
			}
			return a, nil
		}
		return domain.CustomerAddress{}, domain.Errorf(domain.KindNotFound, "address %s not found", id)
	}
	if in.Address != nil {
		a := *in.Address
		a.AddressType = strings.ToLower(strings.TrimSpace(a.AddressType))
		if a.AddressType == "" {
			a.AddressType = domain.AddressShipping
		}
		if err := a.Validate(); err != nil {
			return domain.CustomerAddress{}, err
		}
		if a.AddressType != domain.AddressShipping {
			return domain.CustomerAddress{}, domain.Errorf(domain.KindInvalidInput, "inline address has type %s, a shipping address is required", a.AddressType)
		}
		return a, nil
	}
	for _, a := range addresses {
		if a.AddressType == domain.AddressShipping {
			return a, nil
		}
	}
	return domain.CustomerAddress{}, domain.NewError(domain.KindMissingShippingAddress, "no shipping address")
}
