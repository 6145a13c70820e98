package chip

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/velure-commerce/velure/internal/config"
)

func TestCreatePurchase(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/purchases/" {
			t.Errorf("path = %q, want /purchases/", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("authorization = %q", got)
		}

		var body createPurchaseBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body.BrandID != "brand-1" {
			t.Errorf("brand id = %q", body.BrandID)
		}
		if body.Reference != "VLR-TEST123" {
			t.Errorf("reference = %q", body.Reference)
		}
		if len(body.Purchase.Products) != 1 || body.Purchase.Products[0].Price != 8900 {
			t.Errorf("products = %+v", body.Purchase.Products)
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(Purchase{
			ID:          "purchase-1",
			Status:      "created",
			CheckoutURL: "https://gate.chip-in.asia/p/purchase-1",
			Reference:   body.Reference,
		})
	}))
	t.Cleanup(server.Close)

	client := New(config.Payment{
		BaseURL: server.URL,
		APIKey:  "sk-test",
		BrandID: "brand-1",
	})

	purchase, err := client.CreatePurchase(context.Background(), CreatePurchaseRequest{
		Reference: "VLR-TEST123",
		Email:     "aina@example.com",
		Currency:  "MYR",
		Products:  []PurchaseProduct{{Name: "Hydra Barrier Serum", Price: 8900, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("CreatePurchase() error: %v", err)
	}
	if purchase.ID != "purchase-1" || purchase.CheckoutURL == "" {
		t.Fatalf("purchase = %+v", purchase)
	}
}

func TestCreatePurchaseMissingID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "created"})
	}))
	t.Cleanup(server.Close)

	client := New(config.Payment{BaseURL: server.URL, APIKey: "sk-test"})

	if _, err := client.CreatePurchase(context.Background(), CreatePurchaseRequest{}); err == nil {
		t.Fatal("CreatePurchase() accepted response without purchase id")
	}
}
