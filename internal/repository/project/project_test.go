package project

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"

	"storefront-cart/internal/domain"
)

func TestPostgres_GetByKey(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("new mock: %v", err)
	}
	defer mock.Close()

	now := time.Now().UTC()
	mock.ExpectQuery("FROM projects").WithArgs("demo").
		WillReturnRows(mock.NewRows([]string{"id", "key", "name", "created_at"}).AddRow("p-1", "demo", "Demo", now))
	mock.ExpectQuery("FROM projects").WithArgs("missing").WillReturnError(pgx.ErrNoRows)

	repo := NewPostgres(mock)
	p, err := repo.GetByKey(context.Background(), "demo")
	if err != nil {
		t.Fatalf("GetByKey: %v", err)
	}
	if p.ID != "p-1" || p.Name != "Demo" {
		t.Fatalf("unexpected project %+v", p)
	}
	if _, err := repo.GetByKey(context.Background(), "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPostgres_CreateNormalizes(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("new mock: %v", err)
	}
	defer mock.Close()

	now := time.Now().UTC()
	mock.ExpectQuery("INSERT INTO projects").WithArgs("shop", "shop").
		WillReturnRows(mock.NewRows([]string{"id", "key", "name", "created_at"}).AddRow("p-2", "shop", "shop", now))

	repo := NewPostgres(mock)
	p, err := repo.Create(context.Background(), domain.Project{Key: " shop "})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if p.ID != "p-2" || p.Name != "shop" || !p.CreatedAt.Equal(now) {
		t.Fatalf("unexpected project %+v", p)
	}

	if _, err := repo.Create(context.Background(), domain.Project{Key: "  "}); !domain.IsKind(err, domain.KindInvalidInput) {
		t.Fatalf("expected InvalidInput for blank key, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
