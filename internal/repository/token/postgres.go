package token

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"storefront-cart/internal/db"
	"storefront-cart/internal/domain"
)

const tokenColumns = `token, project_id::text, customer_id::text, kind, expires_at, created_at`

type postgresRepo struct {
	pool db.DBTX
}

func NewPostgres(pool db.DBTX) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) Create(ctx context.Context, t Token) error {
	_, err := r.pool.Exec(ctx, `
INSERT INTO tokens (token, project_id, customer_id, kind, expires_at)
VALUES ($1, $2, $3, $4, $5)
`, t.Token, t.ProjectID, t.CustomerID, t.Kind, t.ExpiresAt)
	if db.IsUniqueViolation(err) {
		return domain.ErrAlreadyExists
	}
	return err
}

func (r *postgresRepo) Get(ctx context.Context, token string) (*Token, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+tokenColumns+` FROM tokens WHERE token = $1`, token)
	var t Token
	err := row.Scan(&t.Token, &t.ProjectID, &t.CustomerID, &t.Kind, &t.ExpiresAt, &t.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *postgresRepo) Delete(ctx context.Context, token string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM tokens WHERE token = $1`, token)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) PurgeExpired(ctx context.Context, customerID string, now time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM tokens WHERE customer_id = $1 AND expires_at <= $2`, customerID, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
