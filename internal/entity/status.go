package entity

// PaymentStatus tracks whether money has been collected for an order.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentFailed  PaymentStatus = "failed"
)

// OrderStatus is the customer-facing order state.
type OrderStatus string

const (
	OrderPending         OrderStatus = "pending"
	OrderAwaitingPayment OrderStatus = "awaiting_payment"
	OrderProcessing      OrderStatus = "processing"
	OrderCancelledUnpaid OrderStatus = "cancelled_due_to_payment"
)

// WorkflowStatus tracks an order's position in the fulfillment pipeline,
// distinct from payment and delivery state. It only ever moves forward.
type WorkflowStatus string

const (
	WorkflowNone           WorkflowStatus = "none"
	WorkflowCourierCreated WorkflowStatus = "easyparcel_order_created"
	WorkflowAWBPending     WorkflowStatus = "payment_done_awb_pending"
	WorkflowAWBGenerated   WorkflowStatus = "awb_generated"
	WorkflowEmailSent      WorkflowStatus = "email_sent"
)

// workflowRank orders the pipeline stages. Unknown values rank below none so a
// corrupted column can still be repaired by the first legal transition.
var workflowRank = map[WorkflowStatus]int{
	WorkflowNone:           0,
	WorkflowCourierCreated: 1,
	WorkflowAWBPending:     2,
	WorkflowAWBGenerated:   3,
	WorkflowEmailSent:      4,
}

// String returns the string representation of the status.
func (s WorkflowStatus) String() string {
	return string(s)
}

// Valid reports whether the value is one of the enumerated pipeline stages.
func (s WorkflowStatus) Valid() bool {
	_, ok := workflowRank[s]
	return ok
}

// CanAdvance reports whether moving from s to next is a forward transition.
// The pipeline never moves backward; re-asserting the current stage is allowed
// so that re-entrant sweeps stay idempotent.
func (s WorkflowStatus) CanAdvance(next WorkflowStatus) bool {
	if !next.Valid() {
		return false
	}
	return workflowRank[next] >= workflowRank[s]
}

// TerminalDeliveryStatuses are carrier states after which an order is no longer
// polled by the tracking sweep.
var TerminalDeliveryStatuses = []string{
	"Successfully Delivered",
	"Cancel",
	"Cancel By Admin",
	"Returned",
}

// DeliveredStatus is the carrier value that marks an order as delivered.
const DeliveredStatus = "Successfully Delivered"

// IsTerminalDelivery reports whether the carrier status ends tracking.
func IsTerminalDelivery(status string) bool {
	for _, terminal := range TerminalDeliveryStatuses {
		if status == terminal {
			return true
		}
	}
	return false
}
