package order

import (
	"context"
	"encoding/json"
	"fmt"

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

func (r *postgresRepo) Create(ctx context.Context, req domain.OrderRequest) (*domain.Order, error) {
	addrJSON, err := json.Marshal(req.ShippingAddress)
	if err != nil {
		return nil, fmt.Errorf("encode shipping address: %w", err)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	out := &domain.Order{Status: domain.OrderCreated, CartID: req.CartID, Totals: req.Totals}
	t := req.Totals
	err = tx.QueryRow(ctx, `
INSERT INTO orders (project_id, customer_id, cart_id, status, service_type, payment_method, shipping_address,
                    currency, items_total_cents, discount_cents, delivery_fee_cents, service_fee_cents,
                    tip_cents, grand_total_cents)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
RETURNING id::text, created_at
`,
		req.ProjectID, req.CustomerID, req.CartID, domain.OrderCreated, req.ServiceType, req.PaymentMethod, addrJSON,
		req.Currency, domain.ToCents(t.ItemsTotal), domain.ToCents(t.Discount), domain.ToCents(t.DeliveryFee),
		domain.ToCents(t.ServiceFee), domain.ToCents(t.TipAmount), domain.ToCents(t.GrandTotal),
	).Scan(&out.ID, &out.CreatedAt)
	if err != nil {
		r.logger.Error("order repo: insert order", zap.String("cart_id", req.CartID), zap.Error(err))
		return nil, err
	}

	for i, l := range req.Lines {
		var menuJSON []byte
		if l.Menu != nil {
			if menuJSON, err = json.Marshal(l.Menu); err != nil {
				return nil, fmt.Errorf("encode menu selection: %w", err)
			}
		}
		if _, err := tx.Exec(ctx, `
INSERT INTO order_lines (order_id, position, product_id, product_type, name, quantity,
                         unit_price_cents, net_cents, tax_cents, total_cents, menu_selection)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
`,
			out.ID, i, l.ProductID, string(l.ProductType), l.Name, l.Quantity,
			domain.ToCents(l.UnitPrice), domain.ToCents(l.Net), domain.ToCents(l.Tax), domain.ToCents(l.Total), menuJSON,
		); err != nil {
			r.logger.Error("order repo: insert line", zap.String("order_id", out.ID), zap.Int("position", i), zap.Error(err))
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	r.logger.Info("order created", zap.String("order_id", out.ID), zap.String("cart_id", req.CartID), zap.Int("lines", len(req.Lines)))
	return out, nil
}
