package httpserver

import (
	"context"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront-cart/internal/domain"
	cartsvc "storefront-cart/internal/service/cart"
	customersvc "storefront-cart/internal/service/customer"
)

type stubCatalogService struct {
	products []domain.Product
	err      error
	lastType domain.ProductType
}

func (s *stubCatalogService) List(_ context.Context, _ string, t domain.ProductType) ([]domain.Product, error) {
	s.lastType = t
	return s.products, s.err
}

func (s *stubCatalogService) Get(_ context.Context, _, id string) (*domain.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	for _, p := range s.products {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, domain.ErrNotFound
}

type stubCustomerAuthSvc struct {
	customer  *domain.Customer
	addresses []domain.CustomerAddress
	loginErr  error
	refresh   string
	signErr   error
	meErr     error
	lastToken string
}

func (s *stubCustomerAuthSvc) Signup(_ context.Context, _ string, _ customersvc.SignupInput) (*domain.Customer, error) {
	return s.customer, s.signErr
}

func (s *stubCustomerAuthSvc) Login(_ context.Context, _ string, _ string, _ string) (*domain.Customer, string, string, error) {
	return s.customer, "access", "refresh", s.loginErr
}

func (s *stubCustomerAuthSvc) Refresh(_ context.Context, _ string, token string) (string, error) {
	if token != s.refresh || token == "" {
		return "", customersvc.ErrInvalidToken
	}
	return "access-2", nil
}

func (s *stubCustomerAuthSvc) Logout(_ context.Context, token string) error {
	s.lastToken = token
	return nil
}

func (s *stubCustomerAuthSvc) LookupByToken(_ context.Context, _ string, token string) (*domain.Customer, error) {
	s.lastToken = token
	if s.meErr != nil {
		return nil, s.meErr
	}
	if s.customer == nil {
		return nil, customersvc.ErrInvalidToken
	}
	return s.customer, nil
}

func (s *stubCustomerAuthSvc) Addresses(context.Context, string, string) ([]domain.CustomerAddress, error) {
	return s.addresses, nil
}

func (s *stubCustomerAuthSvc) AddAddress(_ context.Context, _, _ string, in customersvc.AddressInput) ([]domain.CustomerAddress, error) {
	a := in.ToAddress()
	if err := a.Validate(); err != nil {
		return nil, err
	}
	s.addresses = append(s.addresses, a)
	return s.addresses, nil
}

func (s *stubCustomerAuthSvc) AccessTTLSeconds() int {
	return 3600
}

// stubCartService answers every call with result/err and records the owner
// and inputs it saw.
type stubCartService struct {
	result    *cartsvc.Result
	checkout  *cartsvc.CheckoutResult
	err       error
	owner     cartsvc.Owner
	key       string
	addSimple cartsvc.AddSimpleInput
	addMenu   cartsvc.AddMenuInput
	changes   cartsvc.LineChanges
	pricing   cartsvc.PricingInput
	checkIn   cartsvc.CheckoutInput
	called    string
}

func (s *stubCartService) done(name string, owner cartsvc.Owner) (*cartsvc.Result, error) {
	s.called = name
	s.owner = owner
	return s.result, s.err
}

func (s *stubCartService) Fetch(_ context.Context, o cartsvc.Owner) (*cartsvc.Result, error) {
	return s.done("fetch", o)
}

func (s *stubCartService) AddSimple(_ context.Context, o cartsvc.Owner, in cartsvc.AddSimpleInput) (*cartsvc.Result, error) {
	s.addSimple = in
	return s.done("addSimple", o)
}

func (s *stubCartService) AddMenuLine(_ context.Context, o cartsvc.Owner, in cartsvc.AddMenuInput) (*cartsvc.Result, error) {
	s.addMenu = in
	return s.done("addMenuLine", o)
}

func (s *stubCartService) UpdateLine(_ context.Context, o cartsvc.Owner, key string, ch cartsvc.LineChanges) (*cartsvc.Result, error) {
	s.key = key
	s.changes = ch
	return s.done("updateLine", o)
}

func (s *stubCartService) Increase(_ context.Context, o cartsvc.Owner, key string) (*cartsvc.Result, error) {
	s.key = key
	return s.done("increase", o)
}

func (s *stubCartService) Decrease(_ context.Context, o cartsvc.Owner, key string) (*cartsvc.Result, error) {
	s.key = key
	return s.done("decrease", o)
}

func (s *stubCartService) Remove(_ context.Context, o cartsvc.Owner, key string) (*cartsvc.Result, error) {
	s.key = key
	return s.done("remove", o)
}

func (s *stubCartService) Clear(_ context.Context, o cartsvc.Owner) (*cartsvc.Result, error) {
	return s.done("clear", o)
}

func (s *stubCartService) UpdatePricing(_ context.Context, o cartsvc.Owner, in cartsvc.PricingInput) (*cartsvc.Result, error) {
	s.pricing = in
	return s.done("updatePricing", o)
}

func (s *stubCartService) Cancel(_ context.Context, o cartsvc.Owner) (*cartsvc.Result, error) {
	return s.done("cancel", o)
}

func (s *stubCartService) Checkout(_ context.Context, o cartsvc.Owner, in cartsvc.CheckoutInput) (*cartsvc.CheckoutResult, error) {
	s.called = "checkout"
	s.owner = o
	s.checkIn = in
	return s.checkout, s.err
}

type testDeps struct {
	project  *stubProjectRepo
	catalog  *stubCatalogService
	customer *stubCustomerAuthSvc
	cart     *stubCartService
}

func newTestRouter(t *testing.T) (*gin.Engine, *testDeps) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	d := &testDeps{
		project:  &stubProjectRepo{project: &domain.Project{ID: "proj-id", Key: "proj-key"}},
		catalog:  &stubCatalogService{},
		customer: &stubCustomerAuthSvc{customer: &domain.Customer{ID: "cust-id", ProjectID: "proj-id", Email: "me@example.com"}},
		cart:     &stubCartService{},
	}
	router, err := buildRouter(zap.NewNop(), nil, Deps{
		ProjectRepo: d.project,
		CatalogSvc:  d.catalog,
		CustomerSvc: d.customer,
		CartSvc:     d.cart,
	}, nil)
	if err != nil {
		t.Fatalf("build router: %v", err)
	}
	return router, d
}
