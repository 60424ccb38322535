package coupon

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"

	"storefront-cart/internal/domain"
	"storefront-cart/internal/testutil"
)

func TestPostgres_GetByCodeNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("new mock: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery("FROM coupons").WithArgs("proj-1", "NOPE").WillReturnError(pgx.ErrNoRows)

	_, err = NewPostgres(mock).GetByCode(context.Background(), "proj-1", " NOPE ")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgres_UpsertAndGet(t *testing.T) {
	pool := testutil.Pool(t)
	ctx := context.Background()
	projectID := testutil.Project(t, pool)
	repo := NewPostgres(pool)

	exp := time.Now().Add(24 * time.Hour).UTC().Truncate(time.Second)
	if err := repo.Upsert(ctx, projectID, domain.Coupon{Code: "SAVE10", Kind: domain.CouponPercentage, Value: decimal.NewFromInt(10), Active: true, ExpiresAt: &exp}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	got, err := repo.GetByCode(ctx, projectID, "save10")
	if err != nil {
		t.Fatalf("GetByCode: %v", err)
	}
	if got.Kind != domain.CouponPercentage || !got.Value.Equal(decimal.NewFromInt(10)) || !got.Active {
		t.Fatalf("unexpected coupon %+v", got)
	}
	if got.ExpiresAt == nil || !got.ExpiresAt.Equal(exp) {
		t.Fatalf("unexpected expiry %v", got.ExpiresAt)
	}
}
