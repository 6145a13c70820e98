package fulfillment

import (
	"context"
	"math"
	"testing"

	"github.com/velure-commerce/velure/internal/client/easyparcel"
	"github.com/velure-commerce/velure/internal/entity"
)

func paidOrder(id int64) *entity.Order {
	return &entity.Order{
		ID:            id,
		Number:        "ORD-1",
		CustomerName:  "Aina",
		CustomerEmail: "aina@example.com",
		PaymentStatus: entity.PaymentPaid,
		Items: []*entity.OrderItem{
			{Name: "Hydra Barrier Serum", Weight: 0.12, Length: 4, Width: 4, Height: 12, Quantity: 2, LineTotal: 178},
			{Name: "Gentle Oat Cleanser", Weight: 0.25, Length: 5, Width: 5, Height: 16, Quantity: 1, LineTotal: 49},
		},
	}
}

func TestBookCourierRecordsCarrierOrder(t *testing.T) {
	order := paidOrder(1)
	store := newFakeStore(order)

	var captured easyparcel.SubmitOrderRequest
	courier := &fakeCourier{
		submitFn: func(_ context.Context, req easyparcel.SubmitOrderRequest) (*easyparcel.OrderResult, error) {
			captured = req
			return &easyparcel.OrderResult{
				Status:      easyparcel.StatusSuccess,
				OrderNumber: "EP-100",
				Courier:     "J&T Express",
				TrackingNo:  "JT123",
			}, nil
		},
	}
	svc := newTestService(store, courier, &fakeMailer{}, nil)

	if err := svc.BookCourier(context.Background(), 1); err != nil {
		t.Fatalf("BookCourier() error: %v", err)
	}

	if order.CourierOrderNo != "EP-100" || order.CourierName != "J&T Express" {
		t.Fatalf("courier fields = %q/%q", order.CourierOrderNo, order.CourierName)
	}
	if order.WorkflowStatus != entity.WorkflowCourierCreated {
		t.Fatalf("workflow status = %q, want easyparcel_order_created", order.WorkflowStatus)
	}

	// One parcel: summed weight, largest dimensions, joined content.
	if math.Abs(captured.Weight-0.49) > 1e-9 {
		t.Fatalf("weight = %v, want 0.49", captured.Weight)
	}
	if captured.Length != 5 || captured.Width != 5 || captured.Height != 16 {
		t.Fatalf("dims = %v/%v/%v, want 5/5/16", captured.Length, captured.Width, captured.Height)
	}
	if captured.Content != "Hydra Barrier Serum, Gentle Oat Cleanser" {
		t.Fatalf("content = %q", captured.Content)
	}
	if captured.Value != 227 {
		t.Fatalf("value = %v, want 227", captured.Value)
	}
	if captured.Reference != "ORD-1" {
		t.Fatalf("reference = %q", captured.Reference)
	}
}

func TestBookCourierSkipsAlreadyBookedOrder(t *testing.T) {
	order := paidOrder(1)
	store := newFakeStore(order)

	submissions := 0
	courier := &fakeCourier{
		submitFn: func(context.Context, easyparcel.SubmitOrderRequest) (*easyparcel.OrderResult, error) {
			submissions++
			return &easyparcel.OrderResult{
				Status:      easyparcel.StatusSuccess,
				OrderNumber: "EP-100",
				Courier:     "J&T Express",
			}, nil
		},
	}
	svc := newTestService(store, courier, &fakeMailer{}, nil)

	// Redelivered paid event replays the booking call.
	for i := 0; i < 2; i++ {
		if err := svc.BookCourier(context.Background(), 1); err != nil {
			t.Fatalf("BookCourier() call %d error: %v", i+1, err)
		}
	}

	if submissions != 1 {
		t.Fatalf("carrier submissions = %d, want 1", submissions)
	}
	if order.CourierOrderNo != "EP-100" {
		t.Fatalf("courier order no = %q, want EP-100", order.CourierOrderNo)
	}
	if got := store.updateCount(); got != 1 {
		t.Fatalf("writes = %d, want 1", got)
	}
}

func TestBookCourierRejectsUnpaidOrder(t *testing.T) {
	order := paidOrder(1)
	order.PaymentStatus = entity.PaymentPending
	store := newFakeStore(order)
	svc := newTestService(store, &fakeCourier{}, &fakeMailer{}, nil)

	if err := svc.BookCourier(context.Background(), 1); err == nil {
		t.Fatal("BookCourier() on unpaid order returned nil error")
	}
	if got := store.updateCount(); got != 0 {
		t.Fatalf("unpaid order performed %d writes, want 0", got)
	}
}

func TestBookCourierRejectsAlreadyShippedOrder(t *testing.T) {
	order := paidOrder(1)
	order.WorkflowStatus = entity.WorkflowAWBGenerated
	store := newFakeStore(order)
	courier := &fakeCourier{
		submitFn: func(context.Context, easyparcel.SubmitOrderRequest) (*easyparcel.OrderResult, error) {
			return &easyparcel.OrderResult{Status: easyparcel.StatusSuccess, OrderNumber: "EP-101"}, nil
		},
	}
	svc := newTestService(store, courier, &fakeMailer{}, nil)

	if err := svc.BookCourier(context.Background(), 1); err == nil {
		t.Fatal("BookCourier() past awb generation returned nil error")
	}
	if got := store.updateCount(); got != 0 {
		t.Fatalf("rejected booking performed %d writes, want 0", got)
	}
}
