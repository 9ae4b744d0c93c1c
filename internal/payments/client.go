package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// APIError is a non-2xx response from the provider.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("provider returned status %d: %s", e.StatusCode, e.Body)
}

// Client is an HTTP client for the payment provider's REST API. Each
// environment uses its own API key; connected merchant accounts are selected
// per request via a header.
type Client struct {
	httpClient *http.Client
	baseURL    string
	testKey    string
	liveKey    string
}

// NewClient creates a provider client. The timeout applies to every
// individual call so a stalled provider cannot hang the pipeline.
func NewClient(baseURL, testKey, liveKey string, timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		testKey:    testKey,
		liveKey:    liveKey,
	}
}

// CreateProduct creates a product in the given provider environment.
func (c *Client) CreateProduct(ctx context.Context, env Environment, accountID string, params ProductParams) (*ProductResult, error) {
	var result ProductResult
	if err := c.post(ctx, env, accountID, "/v1/products", params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CreatePrice creates a price attached to an existing provider product.
func (c *Client) CreatePrice(ctx context.Context, env Environment, accountID string, params PriceParams) (*PriceResult, error) {
	var result PriceResult
	if err := c.post(ctx, env, accountID, "/v1/prices", params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) post(ctx context.Context, env Environment, accountID, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.keyFor(env))
	if accountID != "" {
		req.Header.Set("Provider-Account", accountID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("provider request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode provider response: %w", err)
	}

	return nil
}

func (c *Client) keyFor(env Environment) string {
	if env == EnvironmentLive {
		return c.liveKey
	}
	return c.testKey
}
