package customer

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"storefront-cart/internal/db"
	"storefront-cart/internal/domain"
)

type postgresRepo struct {
	pool   db.DBTX
	logger *zap.Logger
}

// NewPostgres returns a Repository backed by Postgres.
func NewPostgres(pool db.DBTX, logger *zap.Logger) Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &postgresRepo{pool: pool, logger: logger}
}

const customerColumns = `id::text, project_id::text, email, password_hash, first_name, last_name, addresses, created_at`

func (r *postgresRepo) Create(ctx context.Context, c domain.Customer) (*domain.Customer, error) {
	addresses := c.Addresses
	if addresses == nil {
		addresses = []domain.CustomerAddress{}
	}
	addrJSON, err := json.Marshal(addresses)
	if err != nil {
		return nil, err
	}

	const q = `
INSERT INTO customers (project_id, email, password_hash, first_name, last_name, addresses)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING ` + customerColumns
	return r.scanCustomer(r.pool.QueryRow(ctx, q,
		c.ProjectID,
		strings.ToLower(c.Email),
		c.PasswordHash,
		c.FirstName,
		c.LastName,
		addrJSON,
	))
}

func (r *postgresRepo) GetByEmail(ctx context.Context, projectID, email string) (*domain.Customer, error) {
	const q = `
SELECT ` + customerColumns + `
FROM customers
WHERE project_id = $1 AND lower(email) = lower($2)
LIMIT 1
`
	return r.scanCustomer(r.pool.QueryRow(ctx, q, projectID, email))
}

func (r *postgresRepo) GetByID(ctx context.Context, projectID, id string) (*domain.Customer, error) {
	const q = `
SELECT ` + customerColumns + `
FROM customers
WHERE project_id = $1 AND id = $2
LIMIT 1
`
	return r.scanCustomer(r.pool.QueryRow(ctx, q, projectID, id))
}

func (r *postgresRepo) UpdateAddresses(ctx context.Context, projectID, id string, addresses []domain.CustomerAddress) error {
	if addresses == nil {
		addresses = []domain.CustomerAddress{}
	}
	addrJSON, err := json.Marshal(addresses)
	if err != nil {
		return err
	}
	cmd, err := r.pool.Exec(ctx, `UPDATE customers SET addresses = $1 WHERE project_id = $2 AND id = $3`, addrJSON, projectID, id)
	if err != nil {
		r.logger.Error("customer repo: update addresses", zap.String("customer_id", id), zap.Error(err))
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) scanCustomer(row pgx.Row) (*domain.Customer, error) {
	var c domain.Customer
	var addrJSON []byte
	err := row.Scan(
		&c.ID,
		&c.ProjectID,
		&c.Email,
		&c.PasswordHash,
		&c.FirstName,
		&c.LastName,
		&addrJSON,
		&c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		if db.IsUniqueViolation(err) {
			return nil, domain.ErrAlreadyExists
		}
		r.logger.Error("customer repo: scan", zap.Error(err))
		return nil, err
	}
	if len(addrJSON) > 0 {
		if err := json.Unmarshal(addrJSON, &c.Addresses); err != nil {
			r.logger.Error("customer repo: decode addresses", zap.String("customer_id", c.ID), zap.Error(err))
			return nil, err
		}
	}
	return &c, nil
}
