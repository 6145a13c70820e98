package easyparcel

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/velure-commerce/velure/internal/config"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return New(config.Courier{
		BaseURL:        server.URL,
		APIKey:         "test-key",
		ServiceID:      "EP-CS-SVC",
		RequestTimeout: 5 * time.Second,
	})
}

func decodeRequest(t *testing.T, r *http.Request) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		t.Fatalf("decode request body: %v", err)
	}
	return body
}

func TestPayOrderSendsAPIKeyAndAction(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("ac"); got != "EPPayOrderBulk" {
			t.Errorf("action = %q, want EPPayOrderBulk", got)
		}
		body := decodeRequest(t, r)
		if body["api"] != "test-key" {
			t.Errorf("api key = %v", body["api"])
		}
		bulk := body["bulk"].([]any)
		if len(bulk) != 1 || bulk[0].(map[string]any)["order_no"] != "EP-100" {
			t.Errorf("bulk = %v", bulk)
		}

		json.NewEncoder(w).Encode(Response{
			APIStatus: StatusSuccess,
			Result: []OrderResult{{
				Status:      StatusSuccess,
				OrderNumber: "EP-100",
				Parcels: []Parcel{{
					ParcelNumber: "PN1",
					AWB:          "AWB1",
					AWBPDFLink:   "https://cdn.example/awb1.pdf",
				}},
			}},
		})
	})

	result, err := client.PayOrder(context.Background(), "EP-100")
	if err != nil {
		t.Fatalf("PayOrder() error: %v", err)
	}
	if len(result.Parcels) != 1 || result.Parcels[0].AWB != "AWB1" {
		t.Fatalf("result = %+v", result)
	}
}

func TestPayOrderPendingAWBHasNoParcels(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(Response{
			APIStatus: StatusSuccess,
			Result:    []OrderResult{{Status: StatusSuccess, OrderNumber: "EP-100"}},
		})
	})

	result, err := client.PayOrder(context.Background(), "EP-100")
	if err != nil {
		t.Fatalf("PayOrder() error: %v", err)
	}
	if len(result.Parcels) != 0 {
		t.Fatalf("parcels = %+v, want none", result.Parcels)
	}
}

func TestParcelHasAWB(t *testing.T) {
	cases := []struct {
		parcel Parcel
		want   bool
	}{
		{Parcel{}, false},
		{Parcel{AWB: "AWB1"}, true},
		{Parcel{ParcelNumber: "PN1"}, true},
		{Parcel{AWB: "AWB1", ParcelNumber: "PN1"}, true},
	}
	for _, tc := range cases {
		if got := tc.parcel.HasAWB(); got != tc.want {
			t.Errorf("HasAWB(%+v) = %v, want %v", tc.parcel, got, tc.want)
		}
	}
}

func TestSubmitOrderRejectedByCarrier(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(Response{
			APIStatus: StatusSuccess,
			Result:    []OrderResult{{Status: "Fail", Remarks: "invalid postcode"}},
		})
	})

	_, err := client.SubmitOrder(context.Background(), SubmitOrderRequest{Reference: "ORD-1"})
	if err == nil {
		t.Fatal("SubmitOrder() returned nil error on carrier rejection")
	}
}

func TestTrackOrdersTopLevelFailureFailsWholeCall(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(Response{
			APIStatus:   "Fail",
			ErrorRemark: "api key expired",
		})
	})

	if _, err := client.TrackOrders(context.Background(), []string{"EP-100", "EP-200"}); err == nil {
		t.Fatal("TrackOrders() returned nil error on top-level failure")
	}
}

func TestTrackOrdersBulkRequestCoversAllOrders(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		body := decodeRequest(t, r)
		bulk := body["bulk"].([]any)
		if len(bulk) != 2 {
			t.Errorf("bulk size = %d, want 2", len(bulk))
		}
		json.NewEncoder(w).Encode(Response{
			APIStatus: StatusSuccess,
			Result: []OrderResult{
				{Status: StatusSuccess, OrderNumber: "EP-100", Parcels: []Parcel{{ShipStatus: "Out For Delivery"}}},
				{Status: StatusSuccess, OrderNumber: "EP-200", Parcels: []Parcel{{ShipStatus: "Successfully Delivered"}}},
			},
		})
	})

	results, err := client.TrackOrders(context.Background(), []string{"EP-100", "EP-200"})
	if err != nil {
		t.Fatalf("TrackOrders() error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("results = %d, want 2", len(results))
	}
}

func TestRateReturnsFirstOffer(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("ac"); got != "EPRateCheckingBulk" {
			t.Errorf("action = %q, want EPRateCheckingBulk", got)
		}
		json.NewEncoder(w).Encode(Response{
			APIStatus: StatusSuccess,
			Result:    []OrderResult{{Status: StatusSuccess, Price: 7.9}},
		})
	})

	price, err := client.Rate(context.Background(), RateRequest{Weight: 0.5, SendPostcode: "40150"})
	if err != nil {
		t.Fatalf("Rate() error: %v", err)
	}
	if price != 7.9 {
		t.Fatalf("price = %v, want 7.9", price)
	}
}

func TestPostParsesMislabelledResponse(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		// The live API has been seen answering JSON under text/plain.
		w.Header().Set("Content-Type", "text/plain")
		json.NewEncoder(w).Encode(Response{
			APIStatus: StatusSuccess,
			Result:    []OrderResult{{Status: StatusSuccess, OrderNumber: "EP-100"}},
		})
	})

	result, err := client.PayOrder(context.Background(), "EP-100")
	if err != nil {
		t.Fatalf("PayOrder() error: %v", err)
	}
	if result.OrderNumber != "EP-100" {
		t.Fatalf("order number = %q, want EP-100", result.OrderNumber)
	}
}

func TestPostNon200Status(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream error", http.StatusBadGateway)
	})

	if _, err := client.PayOrder(context.Background(), "EP-100"); err == nil {
		t.Fatal("PayOrder() returned nil error on 502")
	}
}
