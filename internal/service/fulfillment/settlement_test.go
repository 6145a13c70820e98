package fulfillment

import (
	"context"
	"errors"
	"testing"

	"github.com/velure-commerce/velure/internal/client/easyparcel"
	"github.com/velure-commerce/velure/internal/entity"
)

func settlementOrder(id int64) *entity.Order {
	return &entity.Order{
		ID:             id,
		Number:         "ORD-1",
		PaymentStatus:  entity.PaymentPaid,
		WorkflowStatus: entity.WorkflowCourierCreated,
		CourierOrderNo: "EP-100",
	}
}

func TestSettleMarksPendingWhenAWBNotIssued(t *testing.T) {
	order := settlementOrder(1)
	store := newFakeStore(order)
	courier := &fakeCourier{
		payFn: func(_ context.Context, orderNo string) (*easyparcel.OrderResult, error) {
			if orderNo != "EP-100" {
				t.Fatalf("PayOrder called with %q, want EP-100", orderNo)
			}
			return &easyparcel.OrderResult{Status: easyparcel.StatusSuccess, OrderNumber: orderNo}, nil
		},
	}
	svc := newTestService(store, courier, &fakeMailer{}, nil)

	report, err := svc.Settle(context.Background(), 1)
	if err != nil {
		t.Fatalf("Settle() error: %v", err)
	}
	if report.Pending != 1 || report.Updated != 0 {
		t.Fatalf("report = %+v, want pending=1 updated=0", report)
	}
	if order.WorkflowStatus != entity.WorkflowAWBPending {
		t.Fatalf("workflow status = %q, want payment_done_awb_pending", order.WorkflowStatus)
	}
}

func TestSettleStoresAWBWhenIssued(t *testing.T) {
	order := settlementOrder(1)
	store := newFakeStore(order)
	courier := &fakeCourier{
		payFn: func(context.Context, string) (*easyparcel.OrderResult, error) {
			return &easyparcel.OrderResult{
				Status:      easyparcel.StatusSuccess,
				OrderNumber: "EP-100",
				Parcels: []easyparcel.Parcel{{
					ParcelNumber: "PN1",
					AWB:          "AWB1",
					AWBPDFLink:   "https://cdn.example/awb1.pdf",
					TrackingURL:  "https://track.example/PN1",
					ShipStatus:   "Pending Pickup",
				}},
			}, nil
		},
	}
	svc := newTestService(store, courier, &fakeMailer{}, nil)

	report, err := svc.Settle(context.Background(), 1)
	if err != nil {
		t.Fatalf("Settle() error: %v", err)
	}
	if report.Updated != 1 {
		t.Fatalf("report = %+v, want updated=1", report)
	}
	if order.AWBNumber != "AWB1" || order.TrackingNumber != "PN1" {
		t.Fatalf("awb=%q tracking=%q, want AWB1/PN1", order.AWBNumber, order.TrackingNumber)
	}
	if order.AWBPDFURL != "https://cdn.example/awb1.pdf" {
		t.Fatalf("awb pdf url = %q", order.AWBPDFURL)
	}
	if order.DeliveryStatus != "Pending Pickup" {
		t.Fatalf("delivery status = %q", order.DeliveryStatus)
	}
	if order.WorkflowStatus != entity.WorkflowAWBGenerated {
		t.Fatalf("workflow status = %q, want awb_generated", order.WorkflowStatus)
	}
}

func TestSettleAllIsolatesFailures(t *testing.T) {
	broken := settlementOrder(1)
	healthy := settlementOrder(2)
	healthy.Number = "ORD-2"
	healthy.CourierOrderNo = "EP-200"

	store := newFakeStore(broken, healthy)
	store.awaitingSettlement = []*entity.Order{broken, healthy}
	courier := &fakeCourier{
		payFn: func(_ context.Context, orderNo string) (*easyparcel.OrderResult, error) {
			if orderNo == "EP-100" {
				return nil, errors.New("gateway timeout")
			}
			return &easyparcel.OrderResult{
				Status:  easyparcel.StatusSuccess,
				Parcels: []easyparcel.Parcel{{ParcelNumber: "PN2", AWB: "AWB2"}},
			}, nil
		},
	}
	svc := newTestService(store, courier, &fakeMailer{}, nil)

	report, err := svc.SettleAll(context.Background())
	if err != nil {
		t.Fatalf("SettleAll() error: %v", err)
	}
	if report.Processed != 2 {
		t.Fatalf("processed = %d, want 2", report.Processed)
	}
	if len(report.Failures) != 1 || report.Failures[0].OrderNumber != "ORD-1" {
		t.Fatalf("failures = %+v, want exactly ORD-1", report.Failures)
	}
	if report.Updated != 1 {
		t.Fatalf("updated = %d, want 1", report.Updated)
	}
	if healthy.WorkflowStatus != entity.WorkflowAWBGenerated {
		t.Fatalf("healthy order workflow = %q, want awb_generated", healthy.WorkflowStatus)
	}
}

func TestSettleUnknownOrder(t *testing.T) {
	svc := newTestService(newFakeStore(), &fakeCourier{}, &fakeMailer{}, nil)

	if _, err := svc.Settle(context.Background(), 99); err == nil {
		t.Fatal("Settle() on unknown order returned nil error")
	}
}
