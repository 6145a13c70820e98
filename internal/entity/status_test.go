package entity

import (
	"errors"
	"math"
	"testing"
)

func TestWorkflowStatusCanAdvance(t *testing.T) {
	cases := []struct {
		name string
		from WorkflowStatus
		to   WorkflowStatus
		want bool
	}{
		{"none to courier created", WorkflowNone, WorkflowCourierCreated, true},
		{"courier created to awb pending", WorkflowCourierCreated, WorkflowAWBPending, true},
		{"awb pending to awb generated", WorkflowAWBPending, WorkflowAWBGenerated, true},
		{"awb generated to email sent", WorkflowAWBGenerated, WorkflowEmailSent, true},
		{"skip a stage forward", WorkflowCourierCreated, WorkflowAWBGenerated, true},
		{"same stage is allowed", WorkflowAWBGenerated, WorkflowAWBGenerated, true},
		{"backward is rejected", WorkflowAWBGenerated, WorkflowAWBPending, false},
		{"email sent never regresses", WorkflowEmailSent, WorkflowNone, false},
		{"unknown target is rejected", WorkflowNone, WorkflowStatus("garbage"), false},
		{"unknown source can be repaired", WorkflowStatus("garbage"), WorkflowNone, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.from.CanAdvance(tc.to); got != tc.want {
				t.Fatalf("CanAdvance(%q -> %q) = %v, want %v", tc.from, tc.to, got, tc.want)
			}
		})
	}
}

func TestOrderAdvanceWorkflow(t *testing.T) {
	order := &Order{WorkflowStatus: WorkflowCourierCreated}

	if err := order.AdvanceWorkflow(WorkflowAWBPending); err != nil {
		t.Fatalf("forward transition failed: %v", err)
	}
	if order.WorkflowStatus != WorkflowAWBPending {
		t.Fatalf("workflow status = %q, want %q", order.WorkflowStatus, WorkflowAWBPending)
	}

	err := order.AdvanceWorkflow(WorkflowCourierCreated)
	if !errors.Is(err, ErrBackwardTransition) {
		t.Fatalf("backward transition error = %v, want ErrBackwardTransition", err)
	}
	if order.WorkflowStatus != WorkflowAWBPending {
		t.Fatalf("workflow status mutated on rejected transition: %q", order.WorkflowStatus)
	}
}

func TestIsTerminalDelivery(t *testing.T) {
	for _, status := range TerminalDeliveryStatuses {
		if !IsTerminalDelivery(status) {
			t.Errorf("IsTerminalDelivery(%q) = false, want true", status)
		}
	}
	for _, status := range []string{"", "processing", "Out For Delivery"} {
		if IsTerminalDelivery(status) {
			t.Errorf("IsTerminalDelivery(%q) = true, want false", status)
		}
	}
}

func TestOrderParcelAggregates(t *testing.T) {
	order := &Order{
		Items: []*OrderItem{
			{Weight: 0.2, Quantity: 2, LineTotal: 100},
			{Weight: 0.5, Quantity: 1, LineTotal: 49},
		},
	}

	if got := order.TotalWeight(); math.Abs(got-0.9) > 1e-9 {
		t.Fatalf("TotalWeight() = %v, want 0.9", got)
	}
	if got := order.DeclaredValue(); got != 149 {
		t.Fatalf("DeclaredValue() = %v, want 149", got)
	}
}
