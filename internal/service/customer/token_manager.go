package customer

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"storefront-cart/internal/domain"
	tokenrepo "storefront-cart/internal/repository/token"
)

const maxIssueAttempts = 5

// tokenManager issues opaque bearer tokens and checks them against the
// token store.
type tokenManager struct {
	store tokenrepo.Repository
	now   func() time.Time
}

func newTokenManager(store tokenrepo.Repository) *tokenManager {
	return &tokenManager{store: store, now: time.Now}
}

func (m *tokenManager) issue(ctx context.Context, projectID, customerID, kind string, ttl time.Duration) (string, error) {
	rec := tokenrepo.Token{
		ProjectID:  projectID,
		CustomerID: customerID,
		Kind:       kind,
		ExpiresAt:  m.now().Add(ttl),
	}
	for attempt := 0; attempt < maxIssueAttempts; attempt++ {
		value, err := opaqueToken()
		if err != nil {
			return "", err
		}
		rec.Token = value
		switch err := m.store.Create(ctx, rec); {
		case err == nil:
			return value, nil
		case !errors.Is(err, domain.ErrAlreadyExists):
			return "", fmt.Errorf("store %s token: %w", kind, err)
		}
	}
	return "", fmt.Errorf("issue %s token: %d collisions", kind, maxIssueAttempts)
}

// lookup returns the stored token when it exists, has the wanted kind and
// has not expired. Expired tokens are removed on sight.
func (m *tokenManager) lookup(ctx context.Context, value, kind string) (*tokenrepo.Token, bool) {
	rec, err := m.store.Get(ctx, value)
	if err != nil || rec.Kind != kind || rec.CustomerID == "" {
		return nil, false
	}
	if rec.Expired(m.now()) {
		_ = m.store.Delete(ctx, value)
		return nil, false
	}
	return rec, true
}

func (m *tokenManager) revoke(ctx context.Context, value string) error {
	if err := m.store.Delete(ctx, value); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	return nil
}

func (m *tokenManager) purge(ctx context.Context, customerID string) (int64, error) {
	return m.store.PurgeExpired(ctx, customerID, m.now())
}

func opaqueToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
