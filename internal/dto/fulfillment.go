package dto

// SweepFailure records one order that could not be processed during a sweep.
type SweepFailure struct {
	OrderID     int64  `json:"order_id"`
	OrderNumber string `json:"order_number"`
	Reason      string `json:"reason"`
}

// SweepReport summarizes a batch fulfillment pass. A sweep never aborts on a
// single order's failure; failures are collected here instead.
type SweepReport struct {
	Processed int            `json:"processed"`
	Updated   int            `json:"updated"`
	Pending   int            `json:"pending,omitempty"`
	Skipped   int            `json:"skipped,omitempty"`
	Failures  []SweepFailure `json:"failures,omitempty"`
}

// TrackingReport summarizes a delivery-tracking sweep. Delivered lists order
// numbers that newly reached the delivered state, for follow-up by callers.
type TrackingReport struct {
	Checked   int            `json:"checked"`
	Updated   int            `json:"updated"`
	Delivered []string       `json:"delivered,omitempty"`
	Failures  []SweepFailure `json:"failures,omitempty"`
}
