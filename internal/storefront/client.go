// Package storefront is the client side of the cart API: an HTTP client and
// a per-session store that always mirrors the server's last answer.
package storefront

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"storefront-cart/internal/api"
	"storefront-cart/internal/domain"
)

// Response is a decoded success envelope with data left raw.
type Response struct {
	Data    json.RawMessage
	Message string
	Warning string
	Meta    *api.Meta
}

type Client struct {
	baseURL    *url.URL
	projectKey string
	http       *http.Client
	logger     *zap.Logger
}

func NewClient(baseURL, projectKey string, httpClient *http.Client, logger *zap.Logger) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid cart api url %q: %w", baseURL, err)
	}
	if strings.TrimSpace(projectKey) == "" {
		return nil, fmt.Errorf("project key required")
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{baseURL: u, projectKey: projectKey, http: httpClient, logger: logger}, nil
}

func (c *Client) Fetch(ctx context.Context, token string) (*Response, error) {
	return c.do(ctx, token, http.MethodGet, "/me/cart", nil)
}

func (c *Client) AddSimple(ctx context.Context, token string, req api.AddItemRequest) (*Response, error) {
	return c.do(ctx, token, http.MethodPost, "/me/cart/items", req)
}

func (c *Client) AddMenuLine(ctx context.Context, token string, req api.AddMenuItemRequest) (*Response, error) {
	return c.do(ctx, token, http.MethodPost, "/me/cart/menu-items", req)
}

func (c *Client) UpdateLine(ctx context.Context, token, key string, req api.UpdateLineRequest) (*Response, error) {
	return c.do(ctx, token, http.MethodPatch, linePath(key, ""), req)
}

func (c *Client) Increase(ctx context.Context, token, key string) (*Response, error) {
	return c.do(ctx, token, http.MethodPost, linePath(key, "/increase"), nil)
}

func (c *Client) Decrease(ctx context.Context, token, key string) (*Response, error) {
	return c.do(ctx, token, http.MethodPost, linePath(key, "/decrease"), nil)
}

func (c *Client) Remove(ctx context.Context, token, key string) (*Response, error) {
	return c.do(ctx, token, http.MethodDelete, linePath(key, ""), nil)
}

func (c *Client) Clear(ctx context.Context, token string) (*Response, error) {
	return c.do(ctx, token, http.MethodPost, "/me/cart/clear", nil)
}

func (c *Client) UpdatePricing(ctx context.Context, token string, req api.PricingRequest) (*Response, error) {
	return c.do(ctx, token, http.MethodPatch, "/me/cart/pricing", req)
}

func (c *Client) Checkout(ctx context.Context, token string, req api.CheckoutRequest) (*Response, error) {
	return c.do(ctx, token, http.MethodPost, "/me/cart/checkout", req)
}

// linePath escapes key so ids holding '/', '?' or '#' stay one path segment.
func linePath(key, suffix string) string {
	return "/me/cart/lines/" + url.PathEscape(key) + suffix
}

// do sends path, which must already be escaped, below the project prefix.
func (c *Client) do(ctx context.Context, token, method, path string, body any) (*Response, error) {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, domain.WrapError(domain.KindInvalidInput, "encode request", err)
		}
		reader = bytes.NewReader(buf)
	}

	rel, err := url.Parse(strings.TrimSuffix(c.baseURL.EscapedPath(), "/") + "/" + url.PathEscape(c.projectKey) + path)
	if err != nil {
		return nil, domain.WrapError(domain.KindInvalidInput, "build request path", err)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.ResolveReference(rel).String(), reader)
	if err != nil {
		return nil, domain.WrapError(domain.KindInvalidInput, "build request", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("cart api unreachable", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return nil, domain.WrapError(domain.KindUpstreamUnavailable, "cart service unreachable", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.WrapError(domain.KindUpstreamUnavailable, "read cart response", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, decodeError(resp.StatusCode, raw)
	}

	var env api.RawEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, domain.WrapError(domain.KindUpstreamUnavailable, "malformed cart response", err)
	}
	return &Response{Data: env.Data, Message: env.Message, Warning: env.Warning, Meta: env.Meta}, nil
}

// decodeError keeps the server's message verbatim when it sent one.
func decodeError(status int, raw []byte) error {
	var body api.ErrorBody
	_ = json.Unmarshal(raw, &body)

	kind := domain.ErrorKind(body.Kind)
	switch {
	case status == http.StatusUnauthorized:
		kind = domain.KindNotAuthenticated
	case kind == "" || kind == "Internal":
		kind = domain.KindUpstreamUnavailable
	}
	message := body.Message
	if message == "" {
		message = fmt.Sprintf("cart service answered %d", status)
	}
	return &domain.Error{Kind: kind, Message: message, Redirect: body.Redirect}
}
