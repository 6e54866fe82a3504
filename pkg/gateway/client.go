package gateway

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

	"github.com/kadapaimran/grocery-storefront/pkg/config"
	pkgerrors "github.com/kadapaimran/grocery-storefront/pkg/errors"
	"github.com/kadapaimran/grocery-storefront/pkg/types"
)

const responseBodyReadLimit int64 = 4096

// Client wraps the remote product/order/auth gateway REST endpoints. The
// storefront, admin, and auth surfaces can live under different base URLs.
type Client struct {
	httpClient   *http.Client
	baseURL      string
	adminBaseURL string
	authBaseURL  string
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

// NewClient builds a gateway client from configuration.
func NewClient(cfg config.GatewayConfig, opts ...Option) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("gateway base url is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client := &Client{
		baseURL:      base,
		adminBaseURL: strings.TrimRight(strings.TrimSpace(cfg.AdminBaseURL), "/"),
		authBaseURL:  strings.TrimRight(strings.TrimSpace(cfg.AuthBaseURL), "/"),
		httpClient:   &http.Client{Timeout: timeout},
	}
	if client.adminBaseURL == "" {
		client.adminBaseURL = base
	}
	if client.authBaseURL == "" {
		client.authBaseURL = base
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	return client, nil
}

// ListProducts fetches the full catalog.
func (c *Client) ListProducts(ctx context.Context) ([]types.Product, error) {
	var products []types.Product
	if err := c.do(ctx, http.MethodGet, c.baseURL+"/api/products", nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// ListProductsByCategory fetches the catalog filtered to one category.
func (c *Client) ListProductsByCategory(ctx context.Context, category string) ([]types.Product, error) {
	trimmed := strings.TrimSpace(category)
	if trimmed == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category is required")
	}
	var products []types.Product
	endpoint := fmt.Sprintf("%s/api/products/category/%s", c.baseURL, url.PathEscape(trimmed))
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// CreateProduct creates a product and returns the record with its assigned id.
func (c *Client) CreateProduct(ctx context.Context, input types.ProductInput) (*types.Product, error) {
	var created types.Product
	if err := c.do(ctx, http.MethodPost, c.adminBaseURL+"/api/products", input, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateProduct updates the product with the given id.
func (c *Client) UpdateProduct(ctx context.Context, id int64, input types.ProductInput) (*types.Product, error) {
	var updated types.Product
	endpoint := fmt.Sprintf("%s/api/products/%d", c.adminBaseURL, id)
	if err := c.do(ctx, http.MethodPut, endpoint, input, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteProduct removes the product with the given id.
func (c *Client) DeleteProduct(ctx context.Context, id int64) error {
	endpoint := fmt.Sprintf("%s/api/products/%d", c.adminBaseURL, id)
	return c.do(ctx, http.MethodDelete, endpoint, nil, nil)
}

// Credentials is the login/signup payload sent to the auth endpoints.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthResult mirrors the auth gateway response: a token on success, a message
// on error responses.
type AuthResult struct {
	Token   string `json:"token"`
	Message string `json:"message,omitempty"`
}

// Login exchanges credentials for a gateway token.
func (c *Client) Login(ctx context.Context, creds Credentials) (*AuthResult, error) {
	var result AuthResult
	if err := c.do(ctx, http.MethodPost, c.authBaseURL+"/api/auth/login", creds, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Signup registers a new account with the auth gateway.
func (c *Client) Signup(ctx context.Context, creds Credentials) (*AuthResult, error) {
	var result AuthResult
	if err := c.do(ctx, http.MethodPost, c.authBaseURL+"/api/auth/signup", creds, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, body, dest any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marshal gateway request")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build gateway request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute gateway request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return gatewayError(resp)
	}

	if dest == nil {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, responseBodyReadLimit))
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode gateway response")
	}
	return nil
}

func gatewayError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))

	message := ""
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &payload); err == nil {
		message = strings.TrimSpace(payload.Message)
	}
	if message == "" {
		message = strings.TrimSpace(string(raw))
	}
	if message == "" {
		message = http.StatusText(resp.StatusCode)
	}

	err := fmt.Errorf("gateway status %d: %s", resp.StatusCode, message)
	switch resp.StatusCode {
	case http.StatusBadRequest:
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, message)
	case http.StatusUnauthorized, http.StatusForbidden:
		return pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, message)
	case http.StatusNotFound:
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, message)
	case http.StatusConflict:
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, message)
	default:
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "gateway request failed")
	}
}
