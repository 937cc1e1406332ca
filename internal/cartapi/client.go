// Package cartapi is a thin client for the remote cart service, the
// authoritative cart in authenticated sessions. HTTP-level failures (4xx/5xx
// or an unsuccessful envelope) come back as *GatewayError; only transport
// failures are plain wrapped errors.
package cartapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

// ErrUnsupported reports that the remote side does not implement the
// operation. Callers degrade gracefully instead of surfacing it.
var ErrUnsupported = errors.New("cart api: operation not supported")

// DefaultTimeout matches the HTTP client default the storefront relies on
// for cart calls.
const DefaultTimeout = 20 * time.Second

type GatewayError struct {
	StatusCode int
	Message    string
}

func (e *GatewayError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("cart api: %s (status %d)", e.Message, e.StatusCode)
	}
	return fmt.Sprintf("cart api: status %d", e.StatusCode)
}

type RemoteLine struct {
	ItemID          string `json:"itemId"`
	ProductID       string `json:"productId"`
	Name            string `json:"name"`
	Quantity        int    `json:"quantity"`
	UnitPriceCents  int64  `json:"unitPriceCents"`
	DiscountPercent int    `json:"discountPercent"`
	MaxQuantity     int    `json:"maxQuantity"`
}

type RemoteCart struct {
	Lines []RemoteLine `json:"lineItems"`
}

type Gateway interface {
	GetCart(ctx context.Context) (*RemoteCart, error)
	AddItem(ctx context.Context, productID string, quantity int) error
	UpdateItem(ctx context.Context, itemID string, quantity int) error
	RemoveItem(ctx context.Context, itemID string) error
	ClearCart(ctx context.Context) error
	// SetToken installs the session's bearer token for subsequent calls.
	SetToken(token string)
}

type Client struct {
	httpClient *http.Client
	baseURL    string

	// The token is written on session transitions while other requests for
	// the same session may be mid-flight.
	mu    sync.Mutex
	token string
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
	}
}

func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) bearer() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

// envelope is the remote service's uniform response shape.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path string, body any) (json.RawMessage, error) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.bearer(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var env envelope
	// An undecodable body on a non-2xx status is still an HTTP-level failure.
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &GatewayError{StatusCode: resp.StatusCode, Message: env.Error}
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("decode response: %w", decodeErr)
	}
	if !env.Success {
		return nil, &GatewayError{StatusCode: resp.StatusCode, Message: env.Error}
	}
	return env.Data, nil
}

func (c *Client) GetCart(ctx context.Context) (*RemoteCart, error) {
	data, err := c.do(ctx, http.MethodGet, "/cart", nil)
	if err != nil {
		return nil, err
	}
	var cart RemoteCart
	if len(data) > 0 {
		if err := json.Unmarshal(data, &cart); err != nil {
			return nil, fmt.Errorf("decode cart: %w", err)
		}
	}
	return &cart, nil
}

func (c *Client) AddItem(ctx context.Context, productID string, quantity int) error {
	_, err := c.do(ctx, http.MethodPost, "/cart/items", map[string]any{
		"productId": productID,
		"quantity":  quantity,
	})
	return err
}

func (c *Client) UpdateItem(ctx context.Context, itemID string, quantity int) error {
	_, err := c.do(ctx, http.MethodPut, "/cart/"+itemID, map[string]any{
		"quantity": quantity,
	})
	return err
}

func (c *Client) RemoveItem(ctx context.Context, itemID string) error {
	_, err := c.do(ctx, http.MethodDelete, "/cart/"+itemID, nil)
	return err
}

func (c *Client) ClearCart(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodDelete, "/cart", nil)
	var gwErr *GatewayError
	if errors.As(err, &gwErr) && (gwErr.StatusCode == http.StatusNotFound || gwErr.StatusCode == http.StatusMethodNotAllowed) {
		return ErrUnsupported
	}
	return err
}
