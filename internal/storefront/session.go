package storefront

import (
	"context"
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"storefront-cart/internal/api"
	"storefront-cart/internal/domain"
)

// CartAPI is the server surface a Session talks to. *Client implements it.
type CartAPI interface {
	Fetch(ctx context.Context, token string) (*Response, error)
	AddSimple(ctx context.Context, token string, req api.AddItemRequest) (*Response, error)
	AddMenuLine(ctx context.Context, token string, req api.AddMenuItemRequest) (*Response, error)
	UpdateLine(ctx context.Context, token, key string, req api.UpdateLineRequest) (*Response, error)
	Increase(ctx context.Context, token, key string) (*Response, error)
	Decrease(ctx context.Context, token, key string) (*Response, error)
	Remove(ctx context.Context, token, key string) (*Response, error)
	Clear(ctx context.Context, token string) (*Response, error)
	UpdatePricing(ctx context.Context, token string, req api.PricingRequest) (*Response, error)
	Checkout(ctx context.Context, token string, req api.CheckoutRequest) (*Response, error)
}

// Op names a cart verb; each keeps its own loading/error state. Simple and
// menu adds share OpAdd.
type Op string

const (
	OpFetch    Op = "fetch"
	OpAdd      Op = "add"
	OpUpdate   Op = "update"
	OpIncrease Op = "increase"
	OpDecrease Op = "decrease"
	OpRemove   Op = "remove"
	OpClear    Op = "clear"
	OpPricing  Op = "pricing"
	OpCheckout Op = "checkout"
)

type Status string

const (
	StatusIdle      Status = "idle"
	StatusLoading   Status = "loading"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

type OpState struct {
	Status  Status
	Err     error
	Warning string
}

// Session holds one customer's view of the cart. The held cart is always the
// last cart the server returned; responses are applied in arrival order.
type Session struct {
	api      CartAPI
	currency string
	logger   *zap.Logger

	mu        sync.Mutex
	token     string
	cart      *domain.Cart
	raw       json.RawMessage
	lastOrder *domain.Order
	ops       map[Op]OpState
}

// NewSession builds a logged-out session. currency is used for the empty
// cart placeholder.
func NewSession(client CartAPI, currency string, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{api: client, currency: currency, logger: logger, ops: map[Op]OpState{}}
}

// Hydrate attaches the session to a logged-in customer and loads the cart.
func (s *Session) Hydrate(ctx context.Context, token string) error {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
	return s.Fetch(ctx)
}

// Reset forgets everything, as on logout.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.cart = nil
	s.raw = nil
	s.lastOrder = nil
	s.ops = map[Op]OpState{}
}

// Cart returns the held cart; nil when not authenticated.
func (s *Session) Cart() *domain.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart
}

// RawCart returns the held cart exactly as the server encoded it.
func (s *Session) RawCart() json.RawMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append(json.RawMessage(nil), s.raw...)
}

func (s *Session) LastOrder() *domain.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastOrder
}

func (s *Session) State(op Op) OpState {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.ops[op]
	if !ok {
		return OpState{Status: StatusIdle}
	}
	return st
}

func (s *Session) Fetch(ctx context.Context) error {
	return s.run(OpFetch, func(token string) (*Response, error) {
		return s.api.Fetch(ctx, token)
	})
}

func (s *Session) AddSimple(ctx context.Context, req api.AddItemRequest) error {
	return s.run(OpAdd, func(token string) (*Response, error) {
		return s.api.AddSimple(ctx, token, req)
	})
}

func (s *Session) AddMenuLine(ctx context.Context, req api.AddMenuItemRequest) error {
	return s.run(OpAdd, func(token string) (*Response, error) {
		return s.api.AddMenuLine(ctx, token, req)
	})
}

func (s *Session) UpdateLine(ctx context.Context, key string, req api.UpdateLineRequest) error {
	return s.run(OpUpdate, func(token string) (*Response, error) {
		return s.api.UpdateLine(ctx, token, key, req)
	})
}

func (s *Session) Increase(ctx context.Context, key string) error {
	return s.run(OpIncrease, func(token string) (*Response, error) {
		return s.api.Increase(ctx, token, key)
	})
}

func (s *Session) Decrease(ctx context.Context, key string) error {
	return s.run(OpDecrease, func(token string) (*Response, error) {
		return s.api.Decrease(ctx, token, key)
	})
}

func (s *Session) Remove(ctx context.Context, key string) error {
	return s.run(OpRemove, func(token string) (*Response, error) {
		return s.api.Remove(ctx, token, key)
	})
}

func (s *Session) Clear(ctx context.Context) error {
	return s.run(OpClear, func(token string) (*Response, error) {
		return s.api.Clear(ctx, token)
	})
}

func (s *Session) UpdatePricing(ctx context.Context, req api.PricingRequest) error {
	return s.run(OpPricing, func(token string) (*Response, error) {
		return s.api.UpdatePricing(ctx, token, req)
	})
}

func (s *Session) Checkout(ctx context.Context, req api.CheckoutRequest) error {
	return s.run(OpCheckout, func(token string) (*Response, error) {
		return s.api.Checkout(ctx, token, req)
	})
}

func (s *Session) run(op Op, call func(token string) (*Response, error)) error {
	token := s.begin(op)
	if token == "" {
		err := domain.NewError(domain.KindNotAuthenticated, "login required")
		s.fail(op, err)
		return err
	}

	resp, err := call(token)
	if err != nil {
		s.fail(op, err)
		return err
	}
	if op == OpCheckout {
		return s.checkedOut(resp)
	}
	return s.replace(op, resp)
}

// begin enters loading, which clears the op's previous error and warning.
func (s *Session) begin(op Op) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ops[op] = OpState{Status: StatusLoading}
	return s.token
}

func (s *Session) replace(op Op, resp *Response) error {
	var c domain.Cart
	if err := json.Unmarshal(resp.Data, &c); err != nil {
		err = domain.WrapError(domain.KindUpstreamUnavailable, "cart payload unreadable", err)
		s.fail(op, err)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart = &c
	s.raw = append(json.RawMessage(nil), resp.Data...)
	s.ops[op] = OpState{Status: StatusSucceeded, Warning: resp.Warning}
	return nil
}

func (s *Session) checkedOut(resp *Response) error {
	var o domain.Order
	if err := json.Unmarshal(resp.Data, &o); err != nil {
		s.logger.Warn("order payload unreadable", zap.Error(err))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastOrder = &o
	s.setEmpty()
	s.ops[OpCheckout] = OpState{Status: StatusSucceeded, Warning: resp.Warning}
	return nil
}

func (s *Session) fail(op Op, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case domain.IsKind(err, domain.KindNotAuthenticated):
		s.cart = nil
		s.raw = nil
	case op == OpFetch:
		s.setEmpty()
	}
	s.ops[op] = OpState{Status: StatusFailed, Err: err}
	s.logger.Debug("cart operation failed", zap.String("op", string(op)), zap.Error(err))
}

// setEmpty must be called with mu held.
func (s *Session) setEmpty() {
	empty := domain.EmptyCart(s.currency)
	raw, err := json.Marshal(empty)
	if err != nil {
		raw = nil
	}
	s.cart = empty
	s.raw = raw
}
