package seed

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-cart/internal/domain"
	customersvc "storefront-cart/internal/service/customer"
)

type recorder struct {
	products  []domain.Product
	coupons   []domain.Coupon
	signups   []customersvc.SignupInput
	signupErr error
}

func (r *recorder) Create(_ context.Context, p domain.Project) (*domain.Project, error) {
	p.ID = "proj-1"
	return &p, nil
}

func (r *recorder) Upsert(_ context.Context, p domain.Product) (*domain.Product, error) {
	r.products = append(r.products, p)
	return &p, nil
}

type couponRecorder struct{ r *recorder }

func (c couponRecorder) Upsert(_ context.Context, _ string, coupon domain.Coupon) error {
	c.r.coupons = append(c.r.coupons, coupon)
	return nil
}

type signupRecorder struct{ r *recorder }

func (s signupRecorder) Signup(_ context.Context, _ string, in customersvc.SignupInput) (*domain.Customer, error) {
	s.r.signups = append(s.r.signups, in)
	if s.r.signupErr != nil {
		return nil, s.r.signupErr
	}
	return &domain.Customer{ID: "cust-1", Email: in.Email}, nil
}

func deps(r *recorder) Deps {
	return Deps{Projects: r, Products: r, Coupons: couponRecorder{r}, Customers: signupRecorder{r}}
}

func TestApply(t *testing.T) {
	r := &recorder{}
	project, err := Apply(context.Background(), deps(r), nil)
	require.NoError(t, err)
	assert.Equal(t, DemoProjectKey, project.Key)

	types := map[domain.ProductType]int{}
	for _, p := range r.products {
		assert.Equal(t, "proj-1", p.ProjectID)
		types[p.Type]++
	}
	assert.Len(t, types, 4, "every product type is seeded")
	assert.Len(t, r.coupons, 3)
	require.Len(t, r.signups, 1)
	assert.True(t, domain.HasShippingAddress([]domain.CustomerAddress{r.signups[0].Addresses[0].ToAddress()}))
}

func TestApplyToleratesExistingCustomer(t *testing.T) {
	r := &recorder{signupErr: domain.WrapError(domain.KindInvalidOperation, "email already registered", domain.ErrAlreadyExists)}
	_, err := Apply(context.Background(), deps(r), nil)
	require.NoError(t, err)

	r.signupErr = errors.New("db down")
	_, err = Apply(context.Background(), deps(r), nil)
	require.Error(t, err)
}

func TestDemoProductsAreConsistent(t *testing.T) {
	for _, p := range demoProducts() {
		if p.Type.IsMenu() {
			assert.Nil(t, p.Stock, p.Key)
			assert.NotNil(t, p.Menu, p.Key)
			continue
		}
		assert.Nil(t, p.Menu, p.Key)
	}
}
