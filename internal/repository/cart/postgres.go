package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"storefront-cart/internal/db"
	"storefront-cart/internal/domain"
)

type postgresRepo struct {
	pool   db.DBTX
	logger *zap.Logger
}

func NewPostgres(pool db.DBTX, logger *zap.Logger) Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &postgresRepo{pool: pool, logger: logger}
}

const cartColumns = `id::text, project_id::text, customer_id::text, currency, status, is_active,
       COALESCE(coupon_code, ''), coupon, discount_cents, total_cents,
       delivery_fee_cents, service_fee_cents, tip_cents, created_at, updated_at`

func (r *postgresRepo) Create(ctx context.Context, in CreateCartInput) (*domain.Cart, error) {
	const q = `
INSERT INTO carts (project_id, customer_id, currency, status, is_active)
VALUES ($1, $2, $3, 'open', TRUE)
ON CONFLICT (project_id, customer_id) WHERE status = 'open' DO NOTHING
RETURNING ` + cartColumns
	cart, err := scanCart(r.pool.QueryRow(ctx, q, in.ProjectID, in.CustomerID, in.Currency))
	if errors.Is(err, domain.ErrNotFound) {
		// Lost the race against a concurrent create; use the winner.
		return r.GetOpenByCustomer(ctx, in.ProjectID, in.CustomerID)
	}
	if err != nil {
		r.logger.Error("cart repo: create", zap.String("project_id", in.ProjectID), zap.String("customer_id", in.CustomerID), zap.Error(err))
		return nil, err
	}
	cart.Lines = []domain.CartLine{}
	return cart, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, projectID, id string) (*domain.Cart, error) {
	const q = `
SELECT ` + cartColumns + `
FROM carts
WHERE project_id = $1 AND id = $2
`
	return r.fetchCart(ctx, q, projectID, id)
}

func (r *postgresRepo) GetOpenByCustomer(ctx context.Context, projectID, customerID string) (*domain.Cart, error) {
	const q = `
SELECT ` + cartColumns + `
FROM carts
WHERE project_id = $1 AND customer_id = $2 AND status = 'open'
ORDER BY created_at DESC
LIMIT 1
`
	return r.fetchCart(ctx, q, projectID, customerID)
}

func (r *postgresRepo) Save(ctx context.Context, cart *domain.Cart) error {
	couponJSON, err := marshalNullable(cart.Coupon)
	if err != nil {
		return fmt.Errorf("encode coupon: %w", err)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if cart.ID == "" {
		err = tx.QueryRow(ctx, `
INSERT INTO carts (project_id, customer_id, currency, status, is_active, coupon_code, coupon,
                   discount_cents, total_cents, delivery_fee_cents, service_fee_cents, tip_cents)
VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7, $8, $9, $10, $11, $12)
RETURNING id::text, created_at, updated_at
`,
			cart.ProjectID, cart.CustomerID, cart.Currency, string(cart.Status), cart.IsActive,
			cart.CouponCode, couponJSON,
			domain.ToCents(cart.Discount), domain.ToCents(cart.TotalPrice),
			domain.ToCents(cart.DeliveryFee), domain.ToCents(cart.ServiceFee), domain.ToCents(cart.TipAmount),
		).Scan(&cart.ID, &cart.CreatedAt, &cart.UpdatedAt)
	} else {
		err = tx.QueryRow(ctx, `
UPDATE carts
SET currency = $3,
    status = $4,
    is_active = $5,
    coupon_code = NULLIF($6, ''),
    coupon = $7,
    discount_cents = $8,
    total_cents = $9,
    delivery_fee_cents = $10,
    service_fee_cents = $11,
    tip_cents = $12,
    updated_at = now()
WHERE project_id = $1 AND id = $2 AND status = 'open'
RETURNING updated_at
`,
			cart.ProjectID, cart.ID, cart.Currency, string(cart.Status), cart.IsActive,
			cart.CouponCode, couponJSON,
			domain.ToCents(cart.Discount), domain.ToCents(cart.TotalPrice),
			domain.ToCents(cart.DeliveryFee), domain.ToCents(cart.ServiceFee), domain.ToCents(cart.TipAmount),
		).Scan(&cart.UpdatedAt)
	}
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return notOpen(ctx, tx, cart.ProjectID, cart.ID)
		}
		r.logger.Error("cart repo: save header", zap.String("cart_id", cart.ID), zap.Error(err))
		return err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM cart_lines WHERE cart_id = $1`, cart.ID); err != nil {
		return err
	}

	for i, line := range cart.Lines {
		components, err := marshalNullable(line.PriceComponents)
		if err != nil {
			return fmt.Errorf("encode price components: %w", err)
		}
		menu, err := marshalNullable(line.Menu)
		if err != nil {
			return fmt.Errorf("encode menu selection: %w", err)
		}
		if _, err := tx.Exec(ctx, `
INSERT INTO cart_lines (id, cart_id, position, product_id, product_type, name, quantity,
                        unit_price_cents, price_at_addition_cents, total_at_addition_cents,
                        unit_currency, price_components, menu_selection, added_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
`,
			line.ID, cart.ID, i, line.ProductID, string(line.ProductType), line.Name, line.Quantity,
			domain.ToCents(line.UnitPrice), domain.ToCents(line.PriceAtAddition), domain.ToCents(line.TotalPriceAtAddition),
			line.UnitCurrency, components, menu, line.AddedAt, line.UpdatedAt,
		); err != nil {
			r.logger.Error("cart repo: save line", zap.String("cart_id", cart.ID), zap.String("line_id", line.ID), zap.Error(err))
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *postgresRepo) SetStatus(ctx context.Context, projectID, cartID string, status domain.CartStatus, active bool) error {
	cmd, err := r.pool.Exec(ctx, `
UPDATE carts
SET status = $1, is_active = $2, updated_at = now()
WHERE project_id = $3 AND id = $4 AND status = 'open'
`, string(status), active, projectID, cartID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return notOpen(ctx, r.pool, projectID, cartID)
	}
	return nil
}

type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// notOpen explains why a write guarded by status = 'open' matched no row:
// the cart is gone, or another writer already closed it.
func notOpen(ctx context.Context, q rowQuerier, projectID, cartID string) error {
	var status string
	err := q.QueryRow(ctx, `SELECT status FROM carts WHERE project_id = $1 AND id = $2`, projectID, cartID).Scan(&status)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return domain.ErrNotFound
	case err != nil:
		return err
	}
	return domain.Errorf(domain.KindInvalidOperation, "cart %s is %s and can no longer be changed", cartID, status)
}

func (r *postgresRepo) fetchCart(ctx context.Context, cartQuery string, args ...interface{}) (*domain.Cart, error) {
	cart, err := scanCart(r.pool.QueryRow(ctx, cartQuery, args...))
	if err != nil {
		return nil, err
	}

	const linesQuery = `
SELECT id::text, product_id, product_type, name, quantity, unit_price_cents, price_at_addition_cents,
       total_at_addition_cents, unit_currency, price_components, menu_selection, added_at, updated_at
FROM cart_lines
WHERE cart_id = $1
ORDER BY position ASC
`
	rows, err := r.pool.Query(ctx, linesQuery, cart.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cart.Lines = []domain.CartLine{}
	for rows.Next() {
		var (
			line                       domain.CartLine
			productType                string
			unit, atAddition, totalAdd int64
			componentsJSON, menuJSON   []byte
		)
		if err := rows.Scan(
			&line.ID,
			&line.ProductID,
			&productType,
			&line.Name,
			&line.Quantity,
			&unit,
			&atAddition,
			&totalAdd,
			&line.UnitCurrency,
			&componentsJSON,
			&menuJSON,
			&line.AddedAt,
			&line.UpdatedAt,
		); err != nil {
			return nil, err
		}
		line.ProductType = domain.ProductType(productType)
		line.UnitPrice = domain.FromCents(unit)
		line.PriceAtAddition = domain.FromCents(atAddition)
		line.TotalPriceAtAddition = domain.FromCents(totalAdd)
		if len(componentsJSON) > 0 {
			var c domain.PriceComponents
			if err := json.Unmarshal(componentsJSON, &c); err != nil {
				r.logger.Error("cart repo: decode price components", zap.String("line_id", line.ID), zap.Error(err))
				return nil, err
			}
			line.PriceComponents = &c
		}
		if len(menuJSON) > 0 {
			var m domain.MenuSelection
			if err := json.Unmarshal(menuJSON, &m); err != nil {
				r.logger.Error("cart repo: decode menu selection", zap.String("line_id", line.ID), zap.Error(err))
				return nil, err
			}
			line.Menu = &m
		}
		cart.Lines = append(cart.Lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return cart, nil
}

func scanCart(row pgx.Row) (*domain.Cart, error) {
	var (
		cart                                    domain.Cart
		status                                  string
		couponJSON                              []byte
		discount, total, delivery, service, tip int64
	)
	err := row.Scan(
		&cart.ID,
		&cart.ProjectID,
		&cart.CustomerID,
		&cart.Currency,
		&status,
		&cart.IsActive,
		&cart.CouponCode,
		&couponJSON,
		&discount,
		&total,
		&delivery,
		&service,
		&tip,
		&cart.CreatedAt,
		&cart.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	cart.Status = domain.CartStatus(status)
	cart.Discount = domain.FromCents(discount)
	cart.TotalPrice = domain.FromCents(total)
	cart.DeliveryFee = domain.FromCents(delivery)
	cart.ServiceFee = domain.FromCents(service)
	cart.TipAmount = domain.FromCents(tip)
	if len(couponJSON) > 0 {
		var c domain.Coupon
		if err := json.Unmarshal(couponJSON, &c); err != nil {
			return nil, fmt.Errorf("decode coupon: %w", err)
		}
		cart.Coupon = &c
	}
	return &cart, nil
}

// marshalNullable encodes v as JSON, or nil (SQL NULL) when v is a nil pointer.
func marshalNullable[T any](v *T) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}
