package coupon

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"storefront-cart/internal/db"
	"storefront-cart/internal/domain"
)

type postgresRepo struct {
	pool db.DBTX
}

func NewPostgres(pool db.DBTX) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) GetByCode(ctx context.Context, projectID, code string) (*domain.Coupon, error) {
	const q = `
SELECT code, kind, value::text, active, expires_at
FROM coupons
WHERE project_id = $1 AND upper(code) = upper($2)
`
	var (
		c     domain.Coupon
		kind  string
		value string
	)
	err := r.pool.QueryRow(ctx, q, projectID, strings.TrimSpace(code)).Scan(&c.Code, &kind, &value, &c.Active, &c.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	c.Kind = domain.CouponKind(kind)
	c.Value, err = decimal.NewFromString(value)
	if err != nil {
		return nil, fmt.Errorf("coupon %s: bad value %q: %w", c.Code, value, err)
	}
	return &c, nil
}

func (r *postgresRepo) Upsert(ctx context.Context, projectID string, c domain.Coupon) error {
	const q = `
INSERT INTO coupons (project_id, code, kind, value, active, expires_at)
VALUES ($1, $2, $3, $4::numeric, $5, $6)
ON CONFLICT (project_id, upper(code)) DO UPDATE SET
    kind = EXCLUDED.kind,
    value = EXCLUDED.value,
    active = EXCLUDED.active,
    expires_at = EXCLUDED.expires_at
`
	_, err := r.pool.Exec(ctx, q, projectID, c.Code, string(c.Kind), c.Value.String(), c.Active, c.ExpiresAt)
	return err
}
