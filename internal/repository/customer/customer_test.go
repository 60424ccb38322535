package customer

import (
	"context"
	"errors"
	"testing"

	"github.com/pashagolub/pgxmock/v4"

	"storefront-cart/internal/domain"
	"storefront-cart/internal/testutil"
)

func TestPostgres_UpdateAddressesUnknownCustomer(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("new mock: %v", err)
	}
	defer mock.Close()

	mock.ExpectExec("UPDATE customers SET addresses").
		WithArgs(pgxmock.AnyArg(), "proj-1", "cust-x").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err = NewPostgres(mock, nil).UpdateAddresses(context.Background(), "proj-1", "cust-x", nil)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgres_CreateAndAddresses(t *testing.T) {
	pool := testutil.Pool(t)
	ctx := context.Background()
	projectID := testutil.Project(t, pool)
	repo := NewPostgres(pool, nil)

	created, err := repo.Create(ctx, domain.Customer{ProjectID: projectID, Email: "Jane@Example.com", PasswordHash: "hash"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.Email != "jane@example.com" || len(created.Addresses) != 0 {
		t.Fatalf("unexpected customer %+v", created)
	}

	if _, err := repo.Create(ctx, domain.Customer{ProjectID: projectID, Email: "jane@example.com", PasswordHash: "hash"}); !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}

	addr := domain.CustomerAddress{ID: "a1", AddressType: domain.AddressShipping, Name: "Jane", Phone: "1", Street: "Main 1", City: "Town", PostalCode: "12345", Country: "DE"}
	if err := repo.UpdateAddresses(ctx, projectID, created.ID, []domain.CustomerAddress{addr}); err != nil {
		t.Fatalf("UpdateAddresses: %v", err)
	}

	got, err := repo.GetByEmail(ctx, projectID, "JANE@example.com")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if len(got.Addresses) != 1 || got.Addresses[0] != addr {
		t.Fatalf("unexpected addresses %+v", got.Addresses)
	}
}
