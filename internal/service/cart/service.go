package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"storefront-cart/internal/domain"
	"storefront-cart/internal/pricing"
	cartrepo "storefront-cart/internal/repository/cart"
)

// CatalogResolver returns pricing snapshots for product references.
type CatalogResolver interface {
	Resolve(ctx context.Context, projectID, productID string, productType domain.ProductType) (*domain.ProductSnapshot, error)
}

type CouponLookup interface {
	GetByCode(ctx context.Context, projectID, code string) (*domain.Coupon, error)
}

type AddressBook interface {
	Addresses(ctx context.Context, projectID, customerID string) ([]domain.CustomerAddress, error)
}

type OrderCreator interface {
	CreateOrder(ctx context.Context, req domain.OrderRequest) (*domain.Order, error)
}

type Settings struct {
	// Currency of implicitly created carts.
	Currency string
	// TaxRate in percent, applied to order lines at checkout.
	TaxRate decimal.Decimal
}

type Service struct {
	repo      cartrepo.Repository
	catalog   CatalogResolver
	coupons   CouponLookup
	addresses AddressBook
	orders    OrderCreator
	settings  Settings
	logger    *zap.Logger
	locks     *keyedMutex
	now       func() time.Time
	newID     func() string
}

func New(repo cartrepo.Repository, catalog CatalogResolver, coupons CouponLookup, addresses AddressBook, orders OrderCreator, settings Settings, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if settings.Currency == "" {
		settings.Currency = "EUR"
	}
	return &Service{
		repo:      repo,
		catalog:   catalog,
		coupons:   coupons,
		addresses: addresses,
		orders:    orders,
		settings:  settings,
		logger:    logger,
		locks:     newKeyedMutex(),
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.NewString,
	}
}

// Owner identifies whose cart an operation targets.
type Owner struct {
	ProjectID  string
	CustomerID string
}

func (o Owner) key() string {
	return o.ProjectID + "/" + o.CustomerID
}

// Result is what every cart operation hands back: the full cart plus the
// optional soft warning and success message.
type Result struct {
	Cart    *domain.Cart
	Warning string
	Message string
}

type AddSimpleInput struct {
	ProductID   string
	ProductType domain.ProductType
	Quantity    int
	Currency    string
}

type AddMenuInput struct {
	MenuItemID      string
	Quantity        int
	VariantCode     string
	Modifiers       []domain.ModifierPick
	DepositIncluded bool
	Notes           string
	PriceHint       *decimal.Decimal
	Currency        string
}

// LineChanges lists the fields UpdateLine may touch; nil means unchanged.
type LineChanges struct {
	Quantity        *int
	VariantCode     *string
	Modifiers       *[]domain.ModifierPick
	DepositIncluded *bool
	Notes           *string
}

func (c LineChanges) reconfiguresMenu() bool {
	return c.VariantCode != nil || c.Modifiers != nil || c.DepositIncluded != nil
}

type PricingInput struct {
	TipAmount   *decimal.Decimal
	DeliveryFee *decimal.Decimal
	ServiceFee  *decimal.Decimal
	CouponCode  *string
	Currency    *string
}

// Fetch returns the open cart of the owner, creating an empty one if needed.
func (s *Service) Fetch(ctx context.Context, owner Owner) (*Result, error) {
	unlock := s.locks.Lock(owner.key())
	defer unlock()

	c, err := s.loadOrCreate(ctx, owner)
	if err != nil {
		return nil, err
	}
	pricing.Recompute(c)
	return &Result{Cart: c}, nil
}

func (s *Service) AddSimple(ctx context.Context, owner Owner, in AddSimpleInput) (*Result, error) {
	productID := strings.TrimSpace(in.ProductID)
	if productID == "" {
		return nil, domain.NewError(domain.KindInvalidInput, "productId required")
	}
	if in.ProductType.IsMenu() {
		return nil, domain.NewError(domain.KindInvalidInput, "menu items are added with their configuration")
	}
	if _, err := domain.ParseProductType(string(in.ProductType)); err != nil {
		return nil, err
	}
	if in.Quantity < 1 {
		return nil, domain.NewError(domain.KindInvalidInput, "quantity must be at least 1")
	}

	snap, err := s.catalog.Resolve(ctx, owner.ProjectID, productID, in.ProductType)
	if err != nil {
		return nil, err
	}
	if err := matchCurrency(in.Currency, snap.Currency); err != nil {
		return nil, err
	}

	now := s.now()
	unit := domain.RoundMoney(snap.UnitPrice)
	line := domain.CartLine{
		ID:              s.newID(),
		ProductID:       productID,
		ProductType:     in.ProductType,
		Name:            snap.Name,
		Quantity:        in.Quantity,
		UnitPrice:       unit,
		PriceAtAddition: unit,
		UnitCurrency:    snap.Currency,
	}
	return s.mutate(ctx, owner, func(c *domain.Cart) (string, string, error) {
		i, err := addLine(c, line, now)
		if err != nil {
			return "", "", err
		}
		return stockWarning(c.Lines[i], snap), "item added to cart", nil
	})
}

func (s *Service) AddMenuLine(ctx context.Context, owner Owner, in AddMenuInput) (*Result, error) {
	menuItemID := strings.TrimSpace(in.MenuItemID)
	if menuItemID == "" {
		return nil, domain.NewError(domain.KindInvalidInput, "menuItemId required")
	}
	if in.Quantity < 1 {
		return nil, domain.NewError(domain.KindInvalidInput, "quantity must be at least 1")
	}

	snap, err := s.catalog.Resolve(ctx, owner.ProjectID, menuItemID, domain.ProductMenuItem)
	if err != nil {
		return nil, err
	}
	if err := matchCurrency(in.Currency, snap.Currency); err != nil {
		return nil, err
	}

	sel := domain.MenuSelection{
		VariantCode:     strings.TrimSpace(in.VariantCode),
		Modifiers:       in.Modifiers,
		DepositIncluded: in.DepositIncluded,
		Notes:           strings.TrimSpace(in.Notes),
		DisplayName:     snap.Name,
	}
	components, unit, err := priceMenu(snap, sel, in.PriceHint)
	if err != nil {
		return nil, err
	}

	now := s.now()
	line := domain.CartLine{
		ID:              s.newID(),
		ProductID:       menuItemID,
		ProductType:     domain.ProductMenuItem,
		Name:            snap.Name,
		Quantity:        in.Quantity,
		UnitPrice:       unit,
		PriceAtAddition: unit,
		UnitCurrency:    snap.Currency,
		PriceComponents: &components,
		Menu:            &sel,
	}
	return s.mutate(ctx, owner, func(c *domain.Cart) (string, string, error) {
		if _, err := addLine(c, line, now); err != nil {
			return "", "", err
		}
		return "", "item added to cart", nil
	})
}

func (s *Service) UpdateLine(ctx context.Context, owner Owner, key string, ch LineChanges) (*Result, error) {
	if ch.Quantity != nil && *ch.Quantity < 1 {
		return nil, domain.NewError(domain.KindInvalidInput, "quantity must be at least 1")
	}
	return s.mutate(ctx, owner, func(c *domain.Cart) (string, string, error) {
		if err := ensureOpen(c); err != nil {
			return "", "", err
		}
		i, err := lineIndex(c, key)
		if err != nil {
			return "", "", err
		}
		now := s.now()
		line := c.Lines[i]

		if ch.reconfiguresMenu() {
			if !line.ProductType.IsMenu() {
				return "", "", domain.NewError(domain.KindInvalidInput, "only menu lines can be reconfigured")
			}
			sel := domain.MenuSelection{}
			if line.Menu != nil {
				sel = *line.Menu
			}
			if ch.VariantCode != nil {
				sel.VariantCode = strings.TrimSpace(*ch.VariantCode)
			}
			if ch.Modifiers != nil {
				sel.Modifiers = *ch.Modifiers
			}
			if ch.DepositIncluded != nil {
				sel.DepositIncluded = *ch.DepositIncluded
			}
			snap, err := s.catalog.Resolve(ctx, owner.ProjectID, line.ProductID, line.ProductType)
			if err != nil {
				return "", "", err
			}
			components, unit, err := priceMenu(snap, sel, nil)
			if err != nil {
				return "", "", err
			}
			line.Menu = &sel
			line.PriceComponents = &components
			line.UnitPrice = unit
			line.PriceAtAddition = unit
		}
		if ch.Notes != nil {
			if line.Menu == nil {
				return "", "", domain.NewError(domain.KindInvalidInput, "notes are only kept on menu lines")
			}
			m := *line.Menu
			m.Notes = strings.TrimSpace(*ch.Notes)
			line.Menu = &m
		}
		quantity := line.Quantity
		if ch.Quantity != nil {
			quantity = *ch.Quantity
		}
		setQuantity(&line, quantity, now)
		c.Lines[i] = line
		i = mergeDuplicate(c, i, now)

		warning := ""
		if ch.Quantity != nil {
			warning = s.checkStock(ctx, owner, c.Lines[i])
		}
		return warning, "cart line updated", nil
	})
}

func (s *Service) Increase(ctx context.Context, owner Owner, key string) (*Result, error) {
	return s.mutate(ctx, owner, func(c *domain.Cart) (string, string, error) {
		i, err := increaseLine(c, key, s.now())
		if err != nil {
			return "", "", err
		}
		return s.checkStock(ctx, owner, c.Lines[i]), "quantity increased", nil
	})
}

func (s *Service) Decrease(ctx context.Context, owner Owner, key string) (*Result, error) {
	return s.mutate(ctx, owner, func(c *domain.Cart) (string, string, error) {
		if err := decreaseLine(c, key, s.now()); err != nil {
			return "", "", err
		}
		return "", "quantity decreased", nil
	})
}

func (s *Service) Remove(ctx context.Context, owner Owner, key string) (*Result, error) {
	return s.mutate(ctx, owner, func(c *domain.Cart) (string, string, error) {
		if err := removeLine(c, key); err != nil {
			return "", "", err
		}
		return "", "item removed from cart", nil
	})
}

func (s *Service) Clear(ctx context.Context, owner Owner) (*Result, error) {
	return s.mutate(ctx, owner, func(c *domain.Cart) (string, string, error) {
		if err := clearCart(c); err != nil {
			return "", "", err
		}
		return "", "cart cleared", nil
	})
}

// UpdatePricing sets fees, tip and coupon. An unknown or unusable coupon
// fails the whole call and leaves the stored cart untouched.
func (s *Service) UpdatePricing(ctx context.Context, owner Owner, in PricingInput) (*Result, error) {
	fees := []struct {
		name  string
		value *decimal.Decimal
	}{
		{"tipAmount", in.TipAmount},
		{"deliveryFee", in.DeliveryFee},
		{"serviceFee", in.ServiceFee},
	}
	for _, f := range fees {
		if f.value != nil && f.value.IsNegative() {
			return nil, domain.Errorf(domain.KindInvalidInput, "%s must not be negative", f.name)
		}
	}
	return s.mutate(ctx, owner, func(c *domain.Cart) (string, string, error) {
		if err := ensureOpen(c); err != nil {
			return "", "", err
		}
		if in.Currency != nil {
			if err := adoptCurrency(c, *in.Currency); err != nil {
				return "", "", err
			}
		}
		if in.CouponCode != nil {
			if err := s.applyCoupon(ctx, owner, c, *in.CouponCode); err != nil {
				return "", "", err
			}
		}
		if in.TipAmount != nil {
			c.TipAmount = domain.RoundMoney(*in.TipAmount)
		}
		if in.DeliveryFee != nil {
			c.DeliveryFee = domain.RoundMoney(*in.DeliveryFee)
		}
		if in.ServiceFee != nil {
			c.ServiceFee = domain.RoundMoney(*in.ServiceFee)
		}
		return "", "pricing updated", nil
	})
}

// Cancel abandons the open cart. The next Fetch starts a fresh one.
func (s *Service) Cancel(ctx context.Context, owner Owner) (*Result, error) {
	unlock := s.locks.Lock(owner.key())
	defer unlock()

	c, err := s.repo.GetOpenByCustomer(ctx, owner.ProjectID, owner.CustomerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NewError(domain.KindNotFound, "no open cart")
		}
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if err := s.repo.SetStatus(ctx, owner.ProjectID, c.ID, domain.CartCancelled, false); err != nil {
		return nil, fmt.Errorf("cancel cart: %w", err)
	}
	c.Status = domain.CartCancelled
	c.IsActive = false
	pricing.Recompute(c)
	s.logger.Info("cart cancelled", zap.String("cart_id", c.ID), zap.String("customer_id", owner.CustomerID))
	return &Result{Cart: c, Message: "cart cancelled"}, nil
}

func (s *Service) applyCoupon(ctx context.Context, owner Owner, c *domain.Cart, code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		c.Coupon = nil
		c.CouponCode = ""
		return nil
	}
	coupon, err := s.coupons.GetByCode(ctx, owner.ProjectID, code)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Errorf(domain.KindInvalidCoupon, "coupon %q is not valid", code)
		}
		return fmt.Errorf("lookup coupon: %w", err)
	}
	if !coupon.Usable(s.now()) {
		return domain.Errorf(domain.KindInvalidCoupon, "coupon %q is not valid", code)
	}
	c.Coupon = coupon
	c.CouponCode = coupon.Code
	return nil
}

// checkStock re-reads the catalog for a stock warning. Failures only cost the
// warning, the mutation itself does not need the catalog.
func (s *Service) checkStock(ctx context.Context, owner Owner, l domain.CartLine) string {
	if l.ProductType.IsMenu() {
		return ""
	}
	snap, err := s.catalog.Resolve(ctx, owner.ProjectID, l.ProductID, l.ProductType)
	if err != nil {
		s.logger.Warn("stock check skipped", zap.String("product_id", l.ProductID), zap.Error(err))
		return ""
	}
	return stockWarning(l, snap)
}

// mutate serialises load, change and save for one owner. fn returns the soft
// warning and success message; an error from fn discards the change.
func (s *Service) mutate(ctx context.Context, owner Owner, fn func(c *domain.Cart) (string, string, error)) (*Result, error) {
	unlock := s.locks.Lock(owner.key())
	defer unlock()

	c, err := s.loadOrCreate(ctx, owner)
	if err != nil {
		return nil, err
	}
	warning, message, err := fn(c)
	if err != nil {
		return nil, err
	}
	pricing.Recompute(c)
	if err := s.repo.Save(ctx, c); err != nil {
		s.logger.Error("save cart", zap.String("cart_id", c.ID), zap.Error(err))
		return nil, fmt.Errorf("save cart: %w", err)
	}
	if warning != "" {
		s.logger.Info("cart warning", zap.String("cart_id", c.ID), zap.String("warning", warning))
	}
	return &Result{Cart: c, Warning: warning, Message: message}, nil
}

func (s *Service) loadOrCreate(ctx context.Context, owner Owner) (*domain.Cart, error) {
	if owner.CustomerID == "" {
		return nil, domain.NewError(domain.KindNotAuthenticated, "login required")
	}
	c, err := s.repo.GetOpenByCustomer(ctx, owner.ProjectID, owner.CustomerID)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	c, err = s.repo.Create(ctx, cartrepo.CreateCartInput{
		ProjectID:  owner.ProjectID,
		CustomerID: owner.CustomerID,
		Currency:   s.settings.Currency,
	})
	if err != nil {
		return nil, fmt.Errorf("create cart: %w", err)
	}
	s.logger.Info("cart created", zap.String("cart_id", c.ID), zap.String("customer_id", owner.CustomerID))
	return c, nil
}

func matchCurrency(requested, product string) error {
	requested = strings.ToUpper(strings.TrimSpace(requested))
	if requested == "" || requested == strings.ToUpper(product) {
		return nil
	}
	return domain.Errorf(domain.KindCurrencyMismatch, "product is priced in %s, not %s", product, requested)
}

func priceMenu(snap *domain.ProductSnapshot, sel domain.MenuSelection, hint *decimal.Decimal) (domain.PriceComponents, decimal.Decimal, error) {
	components, err := pricing.MenuComponents(snap.Menu, snap.UnitPrice, snap.Currency, sel)
	if err != nil {
		return domain.PriceComponents{}, decimal.Zero, err
	}
	unit, err := pricing.MenuUnitPrice(components, sel.DepositIncluded, hint)
	if err != nil {
		return domain.PriceComponents{}, decimal.Zero, err
	}
	return components, unit, nil
}
