package product

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
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

const productColumns = `id::text, project_id::text, key, sku, name, COALESCE(description, ''), product_type,
       price_cents, currency, stock, menu_pricing, created_at`

func (r *postgresRepo) ListByProject(ctx context.Context, projectID string, productType domain.ProductType) ([]domain.Product, error) {
	const q = `
SELECT ` + productColumns + `
FROM products
WHERE project_id = $1 AND ($2 = '' OR product_type = $2)
ORDER BY created_at DESC
`
	rows, err := r.pool.Query(ctx, q, projectID, string(productType))
	if err != nil {
		r.logger.Error("product repo: list", zap.String("project_id", projectID), zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	result := []domain.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *p)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error("product repo: list rows", zap.String("project_id", projectID), zap.Error(err))
		return nil, err
	}
	r.logger.Debug("product repo: list", zap.String("project_id", projectID), zap.Int("count", len(result)))
	return result, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, projectID, id string) (*domain.Product, error) {
	// Cart lines carry free-form product references; anything that is not a
	// uuid cannot be in the catalog.
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	const q = `
SELECT ` + productColumns + `
FROM products
WHERE project_id = $1 AND id = $2
`
	p, err := scanProduct(r.pool.QueryRow(ctx, q, projectID, id))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			r.logger.Debug("product repo: get not found", zap.String("project_id", projectID), zap.String("id", id))
			return nil, err
		}
		r.logger.Error("product repo: get", zap.String("project_id", projectID), zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return p, nil
}

func (r *postgresRepo) Upsert(ctx context.Context, product domain.Product) (*domain.Product, error) {
	menuJSON, err := encodeMenu(product.Menu)
	if err != nil {
		return nil, err
	}
	const q = `
INSERT INTO products (id, project_id, key, sku, name, description, product_type, price_cents, currency, stock, menu_pricing)
VALUES (COALESCE(NULLIF($1, '')::uuid, gen_random_uuid()), $2, $3, $4, $5, NULLIF($6, ''), $7, $8, $9, $10, $11)
ON CONFLICT (project_id, key) DO UPDATE SET
    sku = EXCLUDED.sku,
    name = EXCLUDED.name,
    description = EXCLUDED.description,
    product_type = EXCLUDED.product_type,
    price_cents = EXCLUDED.price_cents,
    currency = EXCLUDED.currency,
    stock = EXCLUDED.stock,
    menu_pricing = EXCLUDED.menu_pricing
RETURNING id::text, created_at
`
	res := product
	err = r.pool.QueryRow(ctx, q,
		product.ID,
		product.ProjectID,
		product.Key,
		product.SKU,
		product.Name,
		product.Description,
		string(product.Type),
		domain.ToCents(product.Price),
		product.Currency,
		product.Stock,
		menuJSON,
	).Scan(&res.ID, &res.CreatedAt)
	if err != nil {
		r.logger.Error("product repo: upsert", zap.String("key", product.Key), zap.String("project_id", product.ProjectID), zap.Error(err))
		return nil, err
	}
	if product.ID != "" && res.ID != product.ID {
		return nil, fmt.Errorf("product repo: id mismatch for key=%s project_id=%s existing_id=%s import_id=%s", product.Key, product.ProjectID, res.ID, product.ID)
	}
	res.Price = domain.RoundMoney(product.Price)
	r.logger.Debug("product repo: upserted", zap.String("key", res.Key), zap.String("id", res.ID), zap.String("type", string(res.Type)))
	return &res, nil
}

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var (
		p           domain.Product
		productType string
		priceCents  int64
		menuJSON    []byte
	)
	err := row.Scan(&p.ID, &p.ProjectID, &p.Key, &p.SKU, &p.Name, &p.Description, &productType,
		&priceCents, &p.Currency, &p.Stock, &menuJSON, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	p.Type = domain.ProductType(productType)
	p.Price = domain.FromCents(priceCents)
	if len(menuJSON) > 0 {
		var m domain.MenuPricing
		if err := json.Unmarshal(menuJSON, &m); err != nil {
			return nil, fmt.Errorf("decode menu pricing for %s: %w", p.ID, err)
		}
		p.Menu = &m
	}
	return &p, nil
}

func encodeMenu(m *domain.MenuPricing) ([]byte, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}
