package fulfillment

import (
	"context"
	"errors"
	"testing"

	"github.com/velure-commerce/velure/internal/client/easyparcel"
	"github.com/velure-commerce/velure/internal/entity"
)

func trackableOrder(id int64, number, courierNo, deliveryStatus string) *entity.Order {
	return &entity.Order{
		ID:             id,
		Number:         number,
		PaymentStatus:  entity.PaymentPaid,
		WorkflowStatus: entity.WorkflowAWBGenerated,
		CourierOrderNo: courierNo,
		DeliveryStatus: deliveryStatus,
	}
}

func TestTrackDeliveriesUpdatesChangedStatus(t *testing.T) {
	order := trackableOrder(1, "ORD-1", "EP-100", "Pending Pickup")
	delivered := trackableOrder(2, "ORD-2", "EP-200", "Out For Delivery")
	store := newFakeStore(order, delivered)
	store.trackable = []*entity.Order{order, delivered}
	courier := &fakeCourier{
		trackFn: func(_ context.Context, orderNos []string) ([]easyparcel.OrderResult, error) {
			if len(orderNos) != 2 {
				t.Fatalf("TrackOrders called with %d orders, want 2", len(orderNos))
			}
			return []easyparcel.OrderResult{
				{
					Status:      easyparcel.StatusSuccess,
					OrderNumber: "EP-100",
					Parcels:     []easyparcel.Parcel{{ShipStatus: "Out For Delivery"}},
				},
				{
					Status:      easyparcel.StatusSuccess,
					OrderNumber: "EP-200",
					Parcels:     []easyparcel.Parcel{{ShipStatus: entity.DeliveredStatus}},
				},
			}, nil
		},
	}
	svc := newTestService(store, courier, &fakeMailer{}, nil)

	report, err := svc.TrackDeliveries(context.Background())
	if err != nil {
		t.Fatalf("TrackDeliveries() error: %v", err)
	}
	if report.Checked != 2 || report.Updated != 2 {
		t.Fatalf("report = %+v, want checked=2 updated=2", report)
	}
	if order.DeliveryStatus != "Out For Delivery" {
		t.Fatalf("delivery status = %q", order.DeliveryStatus)
	}
	if len(report.Delivered) != 1 || report.Delivered[0] != "ORD-2" {
		t.Fatalf("delivered = %v, want [ORD-2]", report.Delivered)
	}
}

func TestTrackDeliveriesTransportFailureAbortsSweep(t *testing.T) {
	order := trackableOrder(1, "ORD-1", "EP-100", "Pending Pickup")
	store := newFakeStore(order)
	store.trackable = []*entity.Order{order}
	courier := &fakeCourier{
		trackFn: func(context.Context, []string) ([]easyparcel.OrderResult, error) {
			return nil, errors.New("connection reset")
		},
	}
	svc := newTestService(store, courier, &fakeMailer{}, nil)

	if _, err := svc.TrackDeliveries(context.Background()); err == nil {
		t.Fatal("TrackDeliveries() returned nil error on transport failure")
	}
	if got := store.updateCount(); got != 0 {
		t.Fatalf("aborted sweep performed %d writes, want 0", got)
	}
	if order.DeliveryStatus != "Pending Pickup" {
		t.Fatalf("delivery status mutated: %q", order.DeliveryStatus)
	}
}

func TestTrackDeliveriesSkipsUnchangedStatus(t *testing.T) {
	order := trackableOrder(1, "ORD-1", "EP-100", "Out For Delivery")
	store := newFakeStore(order)
	store.trackable = []*entity.Order{order}
	courier := &fakeCourier{
		trackFn: func(context.Context, []string) ([]easyparcel.OrderResult, error) {
			return []easyparcel.OrderResult{{
				Status:      easyparcel.StatusSuccess,
				OrderNumber: "EP-100",
				Parcels:     []easyparcel.Parcel{{ShipStatus: "Out For Delivery"}},
			}}, nil
		},
	}
	svc := newTestService(store, courier, &fakeMailer{}, nil)

	report, err := svc.TrackDeliveries(context.Background())
	if err != nil {
		t.Fatalf("TrackDeliveries() error: %v", err)
	}
	if report.Updated != 0 {
		t.Fatalf("updated = %d, want 0", report.Updated)
	}
	if got := store.updateCount(); got != 0 {
		t.Fatalf("unchanged status performed %d writes, want 0", got)
	}
}

func TestTrackDeliveriesEmptyCandidateSetSkipsProviderCall(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &fakeCourier{}, &fakeMailer{}, nil)

	report, err := svc.TrackDeliveries(context.Background())
	if err != nil {
		t.Fatalf("TrackDeliveries() error: %v", err)
	}
	if report.Checked != 0 || report.Updated != 0 {
		t.Fatalf("report = %+v, want zero report", report)
	}
}

func TestTrackDeliveriesReportsPerOrderCarrierFailure(t *testing.T) {
	order := trackableOrder(1, "ORD-1", "EP-100", "Pending Pickup")
	store := newFakeStore(order)
	store.trackable = []*entity.Order{order}
	courier := &fakeCourier{
		trackFn: func(context.Context, []string) ([]easyparcel.OrderResult, error) {
			return []easyparcel.OrderResult{{Status: "Fail", OrderNumber: "EP-100"}}, nil
		},
	}
	svc := newTestService(store, courier, &fakeMailer{}, nil)

	report, err := svc.TrackDeliveries(context.Background())
	if err != nil {
		t.Fatalf("TrackDeliveries() error: %v", err)
	}
	if len(report.Failures) != 1 || report.Failures[0].OrderNumber != "ORD-1" {
		t.Fatalf("failures = %+v, want ORD-1", report.Failures)
	}
}
