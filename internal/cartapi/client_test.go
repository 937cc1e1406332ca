package cartapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
)

func TestGetCartDecodesEnvelope(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/cart" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok-1" {
			t.Fatalf("unexpected auth header %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data": map[string]any{
				"lineItems": []map[string]any{
					{"itemId": "l1", "productId": "p1", "name": "Milk", "quantity": 2, "unitPriceCents": 6400, "maxQuantity": 10},
				},
			},
		})
	}))
	defer ts.Close()

	client := NewClient(ts.URL, 0)
	client.SetToken("tok-1")

	cart, err := client.GetCart(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cart.Lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(cart.Lines))
	}
	line := cart.Lines[0]
	if line.ItemID != "l1" || line.ProductID != "p1" || line.Quantity != 2 || line.UnitPriceCents != 6400 {
		t.Fatalf("unexpected line: %+v", line)
	}
}

func TestServerFailureIsGatewayError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "error": "boom"})
	}))
	defer ts.Close()

	client := NewClient(ts.URL, 0)
	_, err := client.GetCart(context.Background())

	var gwErr *GatewayError
	if !errors.As(err, &gwErr) {
		t.Fatalf("expected GatewayError, got %v", err)
	}
	if gwErr.StatusCode != http.StatusInternalServerError || gwErr.Message != "boom" {
		t.Fatalf("unexpected gateway error: %+v", gwErr)
	}
}

func TestUnsuccessfulEnvelopeIsGatewayError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "error": "out of stock"})
	}))
	defer ts.Close()

	client := NewClient(ts.URL, 0)
	err := client.AddItem(context.Background(), "p1", 2)

	var gwErr *GatewayError
	if !errors.As(err, &gwErr) {
		t.Fatalf("expected GatewayError, got %v", err)
	}
	if gwErr.Message != "out of stock" {
		t.Fatalf("unexpected message %q", gwErr.Message)
	}
}

func TestClearCartUnsupported(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusMethodNotAllowed)
	}))
	defer ts.Close()

	client := NewClient(ts.URL, 0)
	if err := client.ClearCart(context.Background()); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
}

func TestConcurrentTokenUpdatesAndRequests(t *testing.T) {
	var badHeader atomic.Bool
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth := r.Header.Get("Authorization"); auth != "" && !strings.HasPrefix(auth, "Bearer tok-") {
			badHeader.Store(true)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "data": map[string]any{}})
	}))
	defer ts.Close()

	client := NewClient(ts.URL, 0)
	ctx := context.Background()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			client.SetToken(fmt.Sprintf("tok-%d", i))
		}
	}()
	for i := 0; i < 20; i++ {
		if _, err := client.GetCart(ctx); err != nil {
			t.Fatalf("get cart: %v", err)
		}
	}
	<-done

	if badHeader.Load() {
		t.Fatal("request carried a token that was never set")
	}
	if got := client.bearer(); got != "tok-199" {
		t.Fatalf("expected last token to win, got %q", got)
	}
}

func TestTransportErrorIsNotGatewayError(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", 0)
	_, err := client.GetCart(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	var gwErr *GatewayError
	if errors.As(err, &gwErr) {
		t.Fatalf("transport failure should not be a GatewayError: %v", err)
	}
}
