package recommend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sony/gobreaker/v2"
)

func TestClientDecodesRawArray(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/recommendations/product/p1" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("limit"); got != "4" {
			t.Fatalf("unexpected limit %q", got)
		}
		_ = json.NewEncoder(w).Encode([]map[string]any{
			{"id": "p2", "name": "Onion", "priceCents": 3000, "maxQuantity": 10},
			{"id": "p3", "name": "Tomato", "priceCents": 2000, "maxQuantity": 10},
		})
	}))
	defer ts.Close()

	client := NewClient(ts.URL, 0)
	got, err := client.ForProduct(context.Background(), "p1", 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0].ID != "p2" || got[1].Name != "Tomato" {
		t.Fatalf("unexpected products: %+v", got)
	}
}

func TestClientRejectsNon200(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer ts.Close()

	client := NewClient(ts.URL, 0)
	if _, err := client.ForUser(context.Background(), "u1", 4); err == nil {
		t.Fatal("expected error")
	}
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	var hits int
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	client := NewClient(ts.URL, 0)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := client.ForProduct(ctx, "p1", 4); err == nil {
			t.Fatal("expected failure")
		}
	}
	_, err := client.ForProduct(ctx, "p1", 4)
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Fatalf("expected open breaker, got %v", err)
	}
	if hits != 3 {
		t.Fatalf("expected fast failure without a request, hits=%d", hits)
	}
}
