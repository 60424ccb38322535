package customer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"storefront-cart/internal/domain"
	custrepo "storefront-cart/internal/repository/customer"
	tokenrepo "storefront-cart/internal/repository/token"
)

var (
	// ErrInvalidCredentials is returned when email/password do not match.
	ErrInvalidCredentials = domain.NewError(domain.KindNotAuthenticated, "invalid credentials")
	// ErrInvalidToken indicates the provided token could not be validated.
	ErrInvalidToken = domain.NewError(domain.KindNotAuthenticated, "invalid token")
)

// Service handles customer login, token lookup and the address book.
type Service struct {
	repo        custrepo.Repository
	tokens      *tokenManager
	logger      *zap.Logger
	accessTTL   time.Duration
	refreshTTL  time.Duration
	passwordMin int
}

// New creates a Service with sane defaults.
func New(repo custrepo.Repository, tokens tokenrepo.Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:        repo,
		tokens:      newTokenManager(tokens),
		logger:      logger,
		accessTTL:   48 * time.Hour,
		refreshTTL:  30 * 24 * time.Hour,
		passwordMin: 8,
	}
}

// AddressInput mirrors incoming address payloads.
type AddressInput struct {
	AddressType string `json:"addressType"`
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	Street      string `json:"street"`
	City        string `json:"city"`
	PostalCode  string `json:"postalCode"`
	Country     string `json:"country"`
}

// ToAddress trims the input and assigns a fresh id.
func (a AddressInput) ToAddress() domain.CustomerAddress {
	return domain.CustomerAddress{
		ID:          uuid.NewString(),
		AddressType: strings.ToLower(strings.TrimSpace(a.AddressType)),
		Name:        strings.TrimSpace(a.Name),
		Phone:       strings.TrimSpace(a.Phone),
		Street:      strings.TrimSpace(a.Street),
		City:        strings.TrimSpace(a.City),
		PostalCode:  strings.TrimSpace(a.PostalCode),
		Country:     strings.ToUpper(strings.TrimSpace(a.Country)),
	}
}

// SignupInput captures fields expected by the signup endpoint.
type SignupInput struct {
	Email     string         `json:"email"`
	Password  string         `json:"password"`
	FirstName string         `json:"firstName"`
	LastName  string         `json:"lastName"`
	Addresses []AddressInput `json:"addresses"`
}

// Signup registers a new customer within the given project.
func (s *Service) Signup(ctx context.Context, projectID string, in SignupInput) (*domain.Customer, error) {
	email := strings.TrimSpace(strings.ToLower(in.Email))
	if email == "" {
		return nil, domain.NewError(domain.KindInvalidInput, "email required")
	}
	password := strings.TrimSpace(in.Password)
	if err := validatePassword(password, s.passwordMin); err != nil {
		return nil, domain.WrapError(domain.KindInvalidInput, "weak password", err)
	}
	addresses := make([]domain.CustomerAddress, 0, len(in.Addresses))
	for _, a := range in.Addresses {
		addr := a.ToAddress()
		if err := addr.Validate(); err != nil {
			return nil, err
		}
		addresses = append(addresses, addr)
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	c, err := s.repo.Create(ctx, domain.Customer{
		ProjectID:    projectID,
		Email:        email,
		PasswordHash: string(hashed),
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Addresses:    addresses,
	})
	if errors.Is(err, domain.ErrAlreadyExists) {
		return nil, domain.WrapError(domain.KindInvalidOperation, "email already registered", err)
	}
	if err != nil {
		return nil, err
	}
	s.logger.Info("customer signed up", zap.String("project_id", projectID), zap.String("customer_id", c.ID))
	return c, nil
}

// Login validates credentials and returns issued tokens plus the customer.
func (s *Service) Login(ctx context.Context, projectID, email, password string) (*domain.Customer, string, string, error) {
	password = strings.TrimSpace(password)
	c, err := s.repo.GetByEmail(ctx, projectID, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, "", "", ErrInvalidCredentials
		}
		return nil, "", "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(c.PasswordHash), []byte(password)); err != nil {
		return nil, "", "", ErrInvalidCredentials
	}

	if n, err := s.tokens.purge(ctx, c.ID); err != nil {
		s.logger.Warn("purge expired tokens", zap.String("customer_id", c.ID), zap.Error(err))
	} else if n > 0 {
		s.logger.Debug("purged expired tokens", zap.String("customer_id", c.ID), zap.Int64("count", n))
	}

	access, err := s.tokens.issue(ctx, c.ProjectID, c.ID, tokenrepo.KindAccess, s.accessTTL)
	if err != nil {
		return nil, "", "", err
	}
	refresh, err := s.tokens.issue(ctx, c.ProjectID, c.ID, tokenrepo.KindRefresh, s.refreshTTL)
	if err != nil {
		return nil, "", "", err
	}
	s.logger.Debug("customer logged in", zap.String("customer_id", c.ID))
	return c, access, refresh, nil
}

// Refresh exchanges a refresh token for a new access token. The refresh
// token stays valid until it expires or the customer logs out with it.
func (s *Service) Refresh(ctx context.Context, projectID, refreshToken string) (string, error) {
	rec, ok := s.tokens.lookup(ctx, refreshToken, tokenrepo.KindRefresh)
	if !ok || rec.ProjectID != projectID {
		return "", ErrInvalidToken
	}
	return s.tokens.issue(ctx, rec.ProjectID, rec.CustomerID, tokenrepo.KindAccess, s.accessTTL)
}

// Logout revokes the given token. Unknown tokens are ignored.
func (s *Service) Logout(ctx context.Context, token string) error {
	return s.tokens.revoke(ctx, token)
}

// LookupByToken returns the customer bound to a valid access token.
func (s *Service) LookupByToken(ctx context.Context, projectID, token string) (*domain.Customer, error) {
	rec, ok := s.tokens.lookup(ctx, token, tokenrepo.KindAccess)
	if !ok || rec.ProjectID != projectID {
		return nil, ErrInvalidToken
	}
	c, err := s.repo.GetByID(ctx, projectID, rec.CustomerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	return c, nil
}

// Addresses returns the address book of a customer.
func (s *Service) Addresses(ctx context.Context, projectID, customerID string) ([]domain.CustomerAddress, error) {
	c, err := s.repo.GetByID(ctx, projectID, customerID)
	if err != nil {
		return nil, err
	}
	if c.Addresses == nil {
		return []domain.CustomerAddress{}, nil
	}
	return c.Addresses, nil
}

// AddAddress validates and appends an address, returning the new book.
func (s *Service) AddAddress(ctx context.Context, projectID, customerID string, in AddressInput) ([]domain.CustomerAddress, error) {
	addr := in.ToAddress()
	if err := addr.Validate(); err != nil {
		return nil, err
	}
	c, err := s.repo.GetByID(ctx, projectID, customerID)
	if err != nil {
		return nil, err
	}
	book := append(append([]domain.CustomerAddress{}, c.Addresses...), addr)
	if err := s.repo.UpdateAddresses(ctx, projectID, customerID, book); err != nil {
		return nil, err
	}
	return book, nil
}

// AccessTTLSeconds exposes the access token lifetime in seconds.
func (s *Service) AccessTTLSeconds() int {
	return int(s.accessTTL.Seconds())
}

func validatePassword(p string, min int) error {
	trimmed := strings.TrimSpace(p)
	if len(trimmed) < min {
		return fmt.Errorf("password must be at least %d characters", min)
	}
	hasUpper := false
	hasLower := false
	hasDigit := false
	for _, r := range trimmed {
		switch {
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= '0' && r <= '9':
			hasDigit = true
		}
	}
	if !hasUpper || !hasLower || !hasDigit {
		return errors.New("password must contain at least 1 uppercase letter, 1 lowercase letter, and 1 number")
	}
	return nil
}
