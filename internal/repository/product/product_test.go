package product

import (
	"context"
	"errors"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"

	"storefront-cart/internal/domain"
	"storefront-cart/internal/testutil"
)

func TestPostgres_GetByIDRejectsNonUUID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("new mock: %v", err)
	}
	defer mock.Close()

	_, err = NewPostgres(mock, nil).GetByID(context.Background(), "proj-1", "bike-42")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	// no query must have been issued
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unexpected db activity: %v", err)
	}
}

func TestPostgres_GetByIDPropagatesDBErrors(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("new mock: %v", err)
	}
	defer mock.Close()

	boom := errors.New("connection reset")
	id := "7f1d3c8e-0000-4000-8000-000000000001"
	mock.ExpectQuery("FROM products").WithArgs("proj-1", id).WillReturnError(boom)

	_, err = NewPostgres(mock, nil).GetByID(context.Background(), "proj-1", id)
	if !errors.Is(err, boom) {
		t.Fatalf("expected db error, got %v", err)
	}
}

func TestPostgres_ListGetUpsert(t *testing.T) {
	pool := testutil.Pool(t)
	ctx := context.Background()
	projectID := testutil.Project(t, pool)
	repo := NewPostgres(pool, nil)

	stock := 3
	bike, err := repo.Upsert(ctx, domain.Product{
		ProjectID: projectID,
		Key:       "bike-1",
		SKU:       "BK1",
		Name:      "Roadster",
		Type:      domain.ProductBike,
		Price:     decimal.RequireFromString("499.00"),
		Currency:  "EUR",
		Stock:     &stock,
	})
	if err != nil {
		t.Fatalf("Upsert bike: %v", err)
	}
	if bike.ID == "" {
		t.Fatalf("expected ID set")
	}

	burger, err := repo.Upsert(ctx, domain.Product{
		ProjectID: projectID,
		Key:       "burger",
		Name:      "Burger",
		Type:      domain.ProductMenuItem,
		Price:     decimal.RequireFromString("8.50"),
		Currency:  "EUR",
		Menu: &domain.MenuPricing{
			Variants: []domain.MenuVariant{{Code: "large", Price: decimal.RequireFromString("10.50")}},
			Deposit:  decimal.RequireFromString("0.25"),
		},
	})
	if err != nil {
		t.Fatalf("Upsert menu item: %v", err)
	}

	all, err := repo.ListByProject(ctx, projectID, "")
	if err != nil {
		t.Fatalf("ListByProject: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 products, got %d", len(all))
	}
	menus, err := repo.ListByProject(ctx, projectID, domain.ProductMenuItem)
	if err != nil {
		t.Fatalf("ListByProject menu: %v", err)
	}
	if len(menus) != 1 || menus[0].ID != burger.ID {
		t.Fatalf("unexpected filtered list %+v", menus)
	}

	got, err := repo.GetByID(ctx, projectID, bike.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Stock == nil || *got.Stock != 3 || !got.Price.Equal(decimal.RequireFromString("499")) {
		t.Fatalf("unexpected product %+v", got)
	}

	gotMenu, err := repo.GetByID(ctx, projectID, burger.ID)
	if err != nil {
		t.Fatalf("GetByID menu: %v", err)
	}
	if gotMenu.Stock != nil || gotMenu.Menu == nil || len(gotMenu.Menu.Variants) != 1 {
		t.Fatalf("unexpected menu product %+v", gotMenu)
	}

	updated, err := repo.Upsert(ctx, domain.Product{
		ProjectID: projectID,
		Key:       "bike-1",
		SKU:       "BK1-NEW",
		Name:      "Roadster 2",
		Type:      domain.ProductBike,
		Price:     decimal.RequireFromString("549.00"),
		Currency:  "EUR",
	})
	if err != nil {
		t.Fatalf("Upsert update: %v", err)
	}
	if updated.ID != bike.ID {
		t.Fatalf("expected same ID after update")
	}
}
