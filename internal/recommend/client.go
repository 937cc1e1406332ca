package recommend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker/v2"

	"grocerfront/internal/domain"
)

// DefaultTimeout bounds a single recommendation lookup; recommendations are
// a non-critical enhancement and must never hold up the surrounding page.
const DefaultTimeout = 3 * time.Second

// Client calls the remote recommendation service. A circuit breaker shields
// the storefront from a struggling backend: once it opens, lookups fail fast
// and the caller degrades to random fill.
type Client struct {
	httpClient *http.Client
	baseURL    string
	breaker    *gobreaker.CircuitBreaker[[]domain.Product]
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		breaker: gobreaker.NewCircuitBreaker[[]domain.Product](gobreaker.Settings{
			Name:    "recommendations",
			Timeout: 30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 3
			},
		}),
	}
}

func (c *Client) ForProduct(ctx context.Context, productID string, limit int) ([]domain.Product, error) {
	return c.fetch(ctx, fmt.Sprintf("/recommendations/product/%s?limit=%d", url.PathEscape(productID), limit))
}

func (c *Client) ForUser(ctx context.Context, userID string, limit int) ([]domain.Product, error) {
	return c.fetch(ctx, fmt.Sprintf("/recommendations/user/%s?limit=%d", url.PathEscape(userID), limit))
}

func (c *Client) fetch(ctx context.Context, path string) ([]domain.Product, error) {
	return c.breaker.Execute(func() ([]domain.Product, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("GET %s: %w", path, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("recommendation api: status %d", resp.StatusCode)
		}
		var products []domain.Product
		if err := json.NewDecoder(resp.Body).Decode(&products); err != nil {
			return nil, fmt.Errorf("decode recommendations: %w", err)
		}
		return products, nil
	})
}
