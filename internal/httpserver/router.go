package httpserver

import (
	"context"
	"errors"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront-cart/internal/domain"
	cartsvc "storefront-cart/internal/service/cart"
	customersvc "storefront-cart/internal/service/customer"
)

type ProjectRepository interface {
	GetByKey(ctx context.Context, key string) (*domain.Project, error)
}

type CatalogService interface {
	List(ctx context.Context, projectID string, productType domain.ProductType) ([]domain.Product, error)
	Get(ctx context.Context, projectID, id string) (*domain.Product, error)
}

type CustomerService interface {
	Signup(ctx context.Context, projectID string, in customersvc.SignupInput) (*domain.Customer, error)
	Login(ctx context.Context, projectID, email, password string) (*domain.Customer, string, string, error)
	Refresh(ctx context.Context, projectID, refreshToken string) (string, error)
	Logout(ctx context.Context, token string) error
	LookupByToken(ctx context.Context, projectID, token string) (*domain.Customer, error)
	Addresses(ctx context.Context, projectID, customerID string) ([]domain.CustomerAddress, error)
	AddAddress(ctx context.Context, projectID, customerID string, in customersvc.AddressInput) ([]domain.CustomerAddress, error)
	AccessTTLSeconds() int
}

type CartService interface {
	Fetch(ctx context.Context, owner cartsvc.Owner) (*cartsvc.Result, error)
	AddSimple(ctx context.Context, owner cartsvc.Owner, in cartsvc.AddSimpleInput) (*cartsvc.Result, error)
	AddMenuLine(ctx context.Context, owner cartsvc.Owner, in cartsvc.AddMenuInput) (*cartsvc.Result, error)
	UpdateLine(ctx context.Context, owner cartsvc.Owner, key string, ch cartsvc.LineChanges) (*cartsvc.Result, error)
	Increase(ctx context.Context, owner cartsvc.Owner, key string) (*cartsvc.Result, error)
	Decrease(ctx context.Context, owner cartsvc.Owner, key string) (*cartsvc.Result, error)
	Remove(ctx context.Context, owner cartsvc.Owner, key string) (*cartsvc.Result, error)
	Clear(ctx context.Context, owner cartsvc.Owner) (*cartsvc.Result, error)
	UpdatePricing(ctx context.Context, owner cartsvc.Owner, in cartsvc.PricingInput) (*cartsvc.Result, error)
	Cancel(ctx context.Context, owner cartsvc.Owner) (*cartsvc.Result, error)
	Checkout(ctx context.Context, owner cartsvc.Owner, in cartsvc.CheckoutInput) (*cartsvc.CheckoutResult, error)
}

// Deps are the collaborators the handlers call into.
type Deps struct {
	ProjectRepo ProjectRepository
	CatalogSvc  CatalogService
	CustomerSvc CustomerService
	CartSvc     CartService
}

func (d Deps) validate() error {
	switch {
	case d.ProjectRepo == nil:
		return errors.New("httpserver: project repository required")
	case d.CatalogSvc == nil:
		return errors.New("httpserver: catalog service required")
	case d.CustomerSvc == nil:
		return errors.New("httpserver: customer service required")
	case d.CartSvc == nil:
		return errors.New("httpserver: cart service required")
	}
	return nil
}

// buildRouter wires routes for the API.
func buildRouter(logger *zap.Logger, db Pinger, deps Deps, allowedOrigins []string) (*gin.Engine, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.UseRawPath = true
	router.Use(requestLogger(logger), gin.Recovery(), cors.New(corsConfig(allowedOrigins)))

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	h := &handlers{deps: deps, logger: logger}

	router.POST("/oauth/:projectKey/customers/token", projectMiddleware(deps.ProjectRepo), h.token)

	project := router.Group("/:projectKey", projectMiddleware(deps.ProjectRepo))
	project.POST("/customers", h.signup)
	project.GET("/products", h.listProducts)
	project.GET("/products/:id", h.getProduct)

	me := project.Group("/me", authMiddleware(deps.CustomerSvc))
	me.GET("", h.me)
	me.POST("/logout", h.logout)
	me.GET("/addresses", h.listAddresses)
	me.POST("/addresses", h.addAddress)

	cart := me.Group("/cart")
	cart.GET("", h.fetchCart)
	cart.DELETE("", h.cancelCart)
	cart.POST("/items", h.addItem)
	cart.POST("/menu-items", h.addMenuItem)
	cart.PATCH("/lines/:key", h.updateLine)
	cart.DELETE("/lines/:key", h.removeLine)
	cart.POST("/lines/:key/increase", h.increaseLine)
	cart.POST("/lines/:key/decrease", h.decreaseLine)
	cart.POST("/clear", h.clearCart)
	cart.PATCH("/pricing", h.updatePricing)
	cart.POST("/checkout", h.checkout)

	return router, nil
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}
