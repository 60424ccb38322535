package project

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"storefront-cart/internal/db"
	"storefront-cart/internal/domain"
)

const projectColumns = `id::text, key, name, created_at`

type postgresRepo struct {
	pool db.DBTX
}

func NewPostgres(pool db.DBTX) Repository {
	return &postgresRepo{pool: pool}
}

func scanProject(row pgx.Row) (*domain.Project, error) {
	var p domain.Project
	if err := row.Scan(&p.ID, &p.Key, &p.Name, &p.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *postgresRepo) GetByKey(ctx context.Context, key string) (*domain.Project, error) {
	return scanProject(r.pool.QueryRow(ctx, `SELECT `+projectColumns+` FROM projects WHERE key = $1`, key))
}

func (r *postgresRepo) Create(ctx context.Context, project domain.Project) (*domain.Project, error) {
	key := strings.TrimSpace(project.Key)
	if key == "" {
		return nil, domain.NewError(domain.KindInvalidInput, "project key required")
	}
	name := strings.TrimSpace(project.Name)
	if name == "" {
		name = key
	}
	return scanProject(r.pool.QueryRow(ctx, `
INSERT INTO projects (key, name)
VALUES ($1, $2)
ON CONFLICT (key) DO UPDATE SET name = EXCLUDED.name
RETURNING `+projectColumns, key, name))
}
