package chain

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"puzzleETL/internal/registry"
)

func TestTransactionsEndpointFallback(t *testing.T) {
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	defer broken.Close()

	healthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/transactions/address/3PAddr/limit/2" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[[
			{"type":16,"id":"tx2","applicationStatus":"succeeded"},
			{"type":16,"id":"tx1","applicationStatus":"succeeded"}
		]]`))
	}))
	defer healthy.Close()

	client, err := NewClient([]string{broken.URL, healthy.URL}, time.Second, nil)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	txs, err := client.Transactions(context.Background(), "3PAddr", 2, "")
	if err != nil {
		t.Fatalf("transactions: %v", err)
	}
	if len(txs) != 2 || txs[0].ID != "tx2" || txs[1].ID != "tx1" {
		t.Fatalf("unexpected page: %+v", txs)
	}
}

func TestTransactionsAllEndpointsFail(t *testing.T) {
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	defer broken.Close()

	client, err := NewClient([]string{broken.URL}, time.Second, nil)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	if _, err := client.Transactions(context.Background(), "3PAddr", 10, ""); err == nil {
		t.Fatalf("expected error when every endpoint fails")
	}
}

func TestAssetInfoNativeAsset(t *testing.T) {
	// The native asset never hits the network.
	client, err := NewClient([]string{"http://127.0.0.1:1"}, time.Second, nil)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	details, err := client.AssetInfo(context.Background(), registry.WavesID)
	if err != nil {
		t.Fatalf("asset info: %v", err)
	}
	if details.AssetID != registry.WavesID || details.Decimals != 8 {
		t.Fatalf("unexpected details: %+v", details)
	}
}

func TestNewClientRequiresEndpoint(t *testing.T) {
	if _, err := NewClient([]string{" ", ""}, time.Second, nil); err == nil {
		t.Fatalf("expected error for empty endpoint list")
	}
}
