package price

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestPricesMixedEncodings(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/aggregator/getPrices" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"bare": 1.5,
			"quoted": "2.25",
			"wrapped": {"price": 3},
			"nullish": null,
			"garbage": "not-a-number"
		}`))
	}))
	defer server.Close()

	oracle, err := NewOracle(server.URL, time.Second, nil)
	if err != nil {
		t.Fatalf("new oracle: %v", err)
	}

	prices, err := oracle.Prices(context.Background())
	if err != nil {
		t.Fatalf("prices: %v", err)
	}

	want := map[string]decimal.Decimal{
		"bare":    decimal.NewFromFloat(1.5),
		"quoted":  decimal.NewFromFloat(2.25),
		"wrapped": decimal.NewFromInt(3),
	}
	if len(prices) != len(want) {
		t.Fatalf("expected %d parsed prices, got %d: %v", len(want), len(prices), prices)
	}
	for id, value := range want {
		got, ok := prices[id]
		if !ok {
			t.Fatalf("missing price for %q", id)
		}
		if !got.Equal(value) {
			t.Fatalf("price %q: got %s, want %s", id, got, value)
		}
	}
}

func TestPricesServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	oracle, err := NewOracle(server.URL, time.Second, nil)
	if err != nil {
		t.Fatalf("new oracle: %v", err)
	}

	if _, err := oracle.Prices(context.Background()); err == nil {
		t.Fatalf("expected error on server failure")
	}
}

func TestNewOracleRequiresURL(t *testing.T) {
	if _, err := NewOracle("  ", time.Second, nil); err == nil {
		t.Fatalf("expected error for empty url")
	}
}
