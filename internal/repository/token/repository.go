package token

import (
	"context"
	"time"
)

// Token kinds. Only access tokens authenticate requests; refresh tokens
// are exchanged for new access tokens.
const (
	KindAccess  = "customer_access"
	KindRefresh = "customer_refresh"
)

type Token struct {
	Token      string
	ProjectID  string
	CustomerID string
	Kind       string
	ExpiresAt  time.Time
	CreatedAt  time.Time
}

// Expired reports whether the token is no longer valid at now.
func (t Token) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

type Repository interface {
	Create(ctx context.Context, token Token) error
	Get(ctx context.Context, token string) (*Token, error)
	Delete(ctx context.Context, token string) error
	// PurgeExpired drops a customer's tokens that expired before now.
	PurgeExpired(ctx context.Context, customerID string, now time.Time) (int64, error)
}
