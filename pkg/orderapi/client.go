// Package orderapi is the HTTP client for the remote order-management API.
// The API is consumed as documented, never defined here: order creation is
// idempotent per (idem_scope, idem_key), payment intents are keyed by order
// code, and errors arrive as {error_code, message} payloads whose message is
// surfaced to the supporter verbatim.
package orderapi

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

	pkgerrors "github.com/ityouth/xtn-storefront/pkg/errors"
)

const responseBodyReadLimit int64 = 4096

// Client talks to the order API.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout overrides the default request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// NewClient builds an order API client for the given base URL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, fmt.Errorf("order api base url is required")
	}

	client := &Client{
		baseURL:    trimmed,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

// Checkout submits a new order.
func (c *Client) Checkout(ctx context.Context, req CheckoutRequest) (*Order, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "order api client not configured")
	}
	if req.IdemKey == "" || req.IdemScope == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "idempotency scope and key are required")
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marshal checkout request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.buildURL("orders/checkout"), bytes.NewReader(payload))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build checkout request")
	}
	httpReq.Header.Set("Content-Type", "application/json")

	var order Order
	if err := c.do(httpReq, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// PaymentIntent fetches the transfer instructions for the given order code.
func (c *Client) PaymentIntent(ctx context.Context, orderCode string) (*PaymentIntent, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "order api client not configured")
	}
	code := strings.TrimSpace(orderCode)
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order code is required")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.buildURL("orders/"+url.PathEscape(code)+"/payment-intent"), nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build payment intent request")
	}

	var intent PaymentIntent
	if err := c.do(httpReq, &intent); err != nil {
		return nil, err
	}
	return &intent, nil
}

// GetOrder fetches a single order by its backend code.
func (c *Client) GetOrder(ctx context.Context, orderCode string) (*Order, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "order api client not configured")
	}
	code := strings.TrimSpace(orderCode)
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order code is required")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.buildURL("orders/"+url.PathEscape(code)), nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build order request")
	}

	var order Order
	if err := c.do(httpReq, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// ListProducts fetches the product catalog.
func (c *Client) ListProducts(ctx context.Context) ([]Product, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "order api client not configured")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.buildURL("products"), nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build products request")
	}

	var products []Product
	if err := c.do(httpReq, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// Ping probes the catalog endpoint for readiness checks.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.ListProducts(ctx)
	return err
}

func (c *Client) do(req *http.Request, dest any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute order api request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode order api response")
	}
	return nil
}

// decodeError preserves the server's message so the UI can surface it
// verbatim; only when the body carries none does the caller fall back to a
// generic localized message.
func decodeError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))

	var apiErr errorResponse
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Message != "" {
		code := pkgerrors.CodeDependency
		switch resp.StatusCode {
		case http.StatusNotFound:
			code = pkgerrors.CodeNotFound
		case http.StatusBadRequest, http.StatusUnprocessableEntity:
			code = pkgerrors.CodeValidation
		case http.StatusConflict:
			code = pkgerrors.CodeConflict
		}
		return pkgerrors.New(code, apiErr.Message).WithDetails(map[string]any{
			"error_code": apiErr.ErrorCode,
			"status":     resp.StatusCode,
		})
	}

	msg := strings.TrimSpace(string(body))
	return pkgerrors.Wrap(pkgerrors.CodeDependency,
		fmt.Errorf("status %d: %s", resp.StatusCode, msg),
		"order api request failed")
}

func (c *Client) buildURL(path string) string {
	return fmt.Sprintf("%s/%s", c.baseURL, strings.TrimLeft(path, "/"))
}
