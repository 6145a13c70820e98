package chip

// Webhook purchase status values Chip delivers to the callback endpoint.
const (
	StatusPaid      = "paid"
	StatusError     = "error"
	StatusCancelled = "cancelled"
	StatusBlocked   = "blocked"
	StatusCreated   = "created"
	StatusViewed    = "viewed"
)

// WebhookPayload is the asynchronous purchase-status callback body.
type WebhookPayload struct {
	ID              string          `json:"id"`
	Reference       string          `json:"reference"`
	Status          string          `json:"status"`
	TransactionData TransactionData `json:"transaction_data"`
}

// TransactionData carries payment attempt metadata.
type TransactionData struct {
	PaymentMethod string    `json:"payment_method"`
	Attempts      []Attempt `json:"attempts"`
}

// Attempt is one payment attempt recorded by the gateway.
type Attempt struct {
	PaymentMethod string `json:"payment_method"`
	Successful    bool   `json:"successful"`
	Error         string `json:"error,omitempty"`
}

// ResolvedPaymentMethod returns the payload's payment method, falling back to
// the most recent successful attempt when the top-level field is empty.
func (p *WebhookPayload) ResolvedPaymentMethod() string {
	if p.TransactionData.PaymentMethod != "" {
		return p.TransactionData.PaymentMethod
	}
	for i := len(p.TransactionData.Attempts) - 1; i >= 0; i-- {
		if p.TransactionData.Attempts[i].Successful {
			return p.TransactionData.Attempts[i].PaymentMethod
		}
	}
	return ""
}
