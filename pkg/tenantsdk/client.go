package tenantsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"
)

// Client talks to the tenant auth service. It covers the unauthenticated
// surface: code exchange, token validation, refresh, and key discovery.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates a new auth service client. The client carries a cookie
// jar: the refresh token only ever travels in the rt_<slug> cookie, so the
// jar is what keeps a session refreshable.
func NewClient(baseURL string) *Client {
	jar, _ := cookiejar.New(nil)
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
			Jar:     jar,
		},
	}
}

func (c *Client) url(path string) string {
	return c.BaseURL + path
}

// postJSON sends a JSON body and decodes a JSON response into out.
// Non-2xx responses are returned as *APIError.
func (c *Client) postJSON(ctx context.Context, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("tenantsdk: encode request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(path), body)
	if err != nil {
		return fmt.Errorf("tenantsdk: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("tenantsdk: send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return parseAPIError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("tenantsdk: decode response: %w", err)
	}
	return nil
}

func parseAPIError(resp *http.Response) error {
	var er ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil || er.Error == "" {
		return &APIError{
			StatusCode:  resp.StatusCode,
			Code:        ErrorCodeServerError,
			Description: http.StatusText(resp.StatusCode),
		}
	}
	return &APIError{
		StatusCode:  resp.StatusCode,
		Code:        er.Error,
		Description: er.ErrorDescription,
	}
}

// ExchangeCode redeems a one-time access code for a token pair.
func (c *Client) ExchangeCode(ctx context.Context, slug, code string) (*TokenResponse, error) {
	var out TokenResponse
	in := map[string]string{"code": code}
	if err := c.postJSON(ctx, "/v1/exchange-tenant-code/"+slug, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Validate checks a tenant access token against the live auth service.
func (c *Client) Validate(ctx context.Context, token, slug string) (*Session, error) {
	var out Session
	in := ValidateRequest{Token: token, TenantSlug: slug}
	if err := c.postJSON(ctx, "/v1/validate-tenant-token", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Refresh rotates the refresh token held in the cookie jar and returns a
// fresh access token.
func (c *Client) Refresh(ctx context.Context, slug string) (*TokenResponse, error) {
	var out TokenResponse
	if err := c.postJSON(ctx, "/v1/refresh-tenant-token/"+slug, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// FetchJWKS retrieves the service's public keys for local verification.
func (c *Client) FetchJWKS(ctx context.Context) (*JWKSResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url("/.well-known/jwks.json"), nil)
	if err != nil {
		return nil, fmt.Errorf("tenantsdk: create request: %w", err)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tenantsdk: send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, parseAPIError(resp)
	}

	var jwks JWKSResponse
	if err := json.NewDecoder(resp.Body).Decode(&jwks); err != nil {
		return nil, fmt.Errorf("tenantsdk: decode jwks: %w", err)
	}
	return &jwks, nil
}
