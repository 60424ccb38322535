// Package seed loads a demo tenant for manual testing.
package seed

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"storefront-cart/internal/domain"
	customersvc "storefront-cart/internal/service/customer"
)

const (
	DemoProjectKey = "demo"
	DemoEmail      = "demo@example.com"
	DemoPassword   = "Demo12345"
)

type ProjectWriter interface {
	Create(ctx context.Context, project domain.Project) (*domain.Project, error)
}

type ProductWriter interface {
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
}

type CouponWriter interface {
	Upsert(ctx context.Context, projectID string, c domain.Coupon) error
}

type CustomerSignup interface {
	Signup(ctx context.Context, projectID string, in customersvc.SignupInput) (*domain.Customer, error)
}

type Deps struct {
	Projects  ProjectWriter
	Products  ProductWriter
	Coupons   CouponWriter
	Customers CustomerSignup
}

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func intPtr(v int) *int {
	return &v
}

func demoProducts() []domain.Product {
	return []domain.Product{
		{Key: "demo-bike", SKU: "BK-DEMO", Name: "Demo Roadster", Description: "Steel city bike", Type: domain.ProductBike, Price: money("499.00"), Currency: "EUR", Stock: intPtr(2)},
		{Key: "demo-filter", SKU: "EN-FILTER", Name: "Water Filter", Type: domain.ProductEnsotekProd, Price: money("19.99"), Currency: "EUR", Stock: intPtr(25)},
		{Key: "demo-chain", SKU: "SP-CHAIN", Name: "Bike Chain", Type: domain.ProductSparePart, Price: money("12.50"), Currency: "EUR"},
		{
			Key: "demo-burger", SKU: "MN-BURGER", Name: "Burger", Type: domain.ProductMenuItem, Price: money("8.50"), Currency: "EUR",
			Menu: &domain.MenuPricing{
				Variants: []domain.MenuVariant{
					{Code: "regular", Name: "Regular", Price: money("8.50")},
					{Code: "large", Name: "Large", Price: money("10.50")},
				},
				ModifierGroups: []domain.ModifierGroup{{
					Code: "extras",
					Name: "Extras",
					Options: []domain.ModifierOption{
						{Code: "cheese", Name: "Cheese", Price: money("0.60")},
						{Code: "bacon", Name: "Bacon", Price: money("1.20")},
					},
				}},
				Deposit: money("0.25"),
			},
		},
	}
}

func demoCoupons() []domain.Coupon {
	return []domain.Coupon{
		{Code: "SAVE10", Kind: domain.CouponPercentage, Value: decimal.NewFromInt(10), Active: true},
		{Code: "FIVEOFF", Kind: domain.CouponFixed, Value: decimal.NewFromInt(5), Active: true},
		{Code: "RETIRED", Kind: domain.CouponFixed, Value: decimal.NewFromInt(5), Active: false},
	}
}

// Apply inserts the demo tenant. Running it again updates products and
// coupons and keeps the existing demo customer.
func Apply(ctx context.Context, deps Deps, logger *zap.Logger) (*domain.Project, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	project, err := deps.Projects.Create(ctx, domain.Project{Key: DemoProjectKey, Name: "Demo Storefront"})
	if err != nil {
		return nil, fmt.Errorf("ensure project: %w", err)
	}

	for _, p := range demoProducts() {
		p.ProjectID = project.ID
		if _, err := deps.Products.Upsert(ctx, p); err != nil {
			return nil, fmt.Errorf("upsert product %s: %w", p.Key, err)
		}
	}
	for _, c := range demoCoupons() {
		if err := deps.Coupons.Upsert(ctx, project.ID, c); err != nil {
			return nil, fmt.Errorf("upsert coupon %s: %w", c.Code, err)
		}
	}

	_, err = deps.Customers.Signup(ctx, project.ID, customersvc.SignupInput{
		Email:     DemoEmail,
		Password:  DemoPassword,
		FirstName: "Demo",
		LastName:  "Customer",
		Addresses: []customersvc.AddressInput{{
			AddressType: domain.AddressShipping,
			Name:        "Demo Customer",
			Phone:       "+49 30 123456",
			Street:      "Musterstrasse 1",
			City:        "Berlin",
			PostalCode:  "10115",
			Country:     "DE",
		}},
	})
	switch {
	case err == nil:
		logger.Info("demo customer created", zap.String("email", DemoEmail))
	case domain.IsKind(err, domain.KindInvalidOperation):
		logger.Info("demo customer already present", zap.String("email", DemoEmail))
	default:
		return nil, fmt.Errorf("create demo customer: %w", err)
	}

	logger.Info("seed applied", zap.String("project_key", project.Key), zap.String("project_id", project.ID))
	return project, nil
}
