// Package vietqr talks to the VietQR image-generation service and builds the
// deterministic fallback image URLs used when generation fails.
package vietqr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	pkgerrors "github.com/ityouth/xtn-storefront/pkg/errors"
	"github.com/ityouth/xtn-storefront/pkg/orderapi"
)

const (
	defaultGenerateURL         = "https://api.vietqr.io/v2/generate"
	defaultImageBaseURL        = "https://img.vietqr.io/image"
	responseBodyReadLimit int64 = 2048
)

// Client calls the VietQR generate endpoint.
type Client struct {
	httpClient   *http.Client
	generateURL  string
	imageBaseURL string
	template     string
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

// WithGenerateURL overrides the generate endpoint.
func WithGenerateURL(rawURL string) Option {
	return func(c *Client) {
		if trimmed := strings.TrimSpace(rawURL); trimmed != "" {
			c.generateURL = trimmed
		}
	}
}

// WithImageBaseURL overrides the fallback image base URL.
func WithImageBaseURL(rawURL string) Option {
	return func(c *Client) {
		if trimmed := strings.TrimSpace(rawURL); trimmed != "" {
			c.imageBaseURL = strings.TrimRight(trimmed, "/")
		}
	}
}

// WithTemplate overrides the QR template.
func WithTemplate(template string) Option {
	return func(c *Client) {
		if template == TemplateQROnly || template == TemplateCompact {
			c.template = template
		}
	}
}

// NewClient builds a VietQR client.
func NewClient(opts ...Option) *Client {
	client := &Client{
		httpClient:   &http.Client{Timeout: 10 * time.Second},
		generateURL:  defaultGenerateURL,
		imageBaseURL: defaultImageBaseURL,
		template:     TemplateCompact,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client
}

type generateResponse struct {
	Code string `json:"code"`
	Desc string `json:"desc"`
	Data struct {
		QRDataURL string `json:"qrDataURL"`
		QRCode    string `json:"qrCode"`
	} `json:"data"`
}

// Generate renders the QR image for the intent and returns the image data
// URL. Missing intent fields fail fast without a network call; service
// failures return a descriptive dependency error so the caller can degrade
// to FallbackURL.
func (c *Client) Generate(ctx context.Context, intent *orderapi.PaymentIntent) (string, error) {
	payload := BuildPayload(intent, c.template)
	if payload == nil {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "thiếu thông tin để tạo mã VietQR")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marshal vietqr payload")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.generateURL, bytes.NewReader(body))
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build vietqr request")
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute vietqr request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency,
			fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))),
			"vietqr generate failed")
	}

	var decoded generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode vietqr response")
	}
	if decoded.Data.QRDataURL == "" {
		desc := decoded.Desc
		if desc == "" {
			desc = "không nhận được dữ liệu mã QR từ VietQR"
		}
		return "", pkgerrors.New(pkgerrors.CodeDependency, desc)
	}
	return decoded.Data.QRDataURL, nil
}

// FallbackURL builds the deterministic image URL for the intent.
func (c *Client) FallbackURL(intent *orderapi.PaymentIntent) string {
	return ImageURL(c.imageBaseURL, intent, c.template)
}
