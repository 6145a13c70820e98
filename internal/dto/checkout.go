package dto

// CheckoutItem is one cart line submitted at checkout.
type CheckoutItem struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	Quantity  int   `json:"quantity" validate:"required,gt=0"`
}

// CheckoutRequest is the checkout submission payload.
type CheckoutRequest struct {
	CustomerName  string         `json:"customer_name" validate:"required"`
	CustomerEmail string         `json:"customer_email" validate:"required,email"`
	CustomerPhone string         `json:"customer_phone" validate:"required"`
	AddressLine1  string         `json:"address_line1" validate:"required"`
	AddressLine2  string         `json:"address_line2"`
	City          string         `json:"city" validate:"required"`
	State         string         `json:"state" validate:"required"`
	Postcode      string         `json:"postcode" validate:"required"`
	Country       string         `json:"country" validate:"required,len=2"`
	Items         []CheckoutItem `json:"items" validate:"required,min=1,dive"`
}

// CheckoutResponse carries the created order and the hosted payment redirect.
type CheckoutResponse struct {
	OrderNumber string  `json:"order_number"`
	PurchaseID  string  `json:"purchase_id"`
	CheckoutURL string  `json:"checkout_url"`
	Subtotal    float64 `json:"subtotal"`
	ShippingFee float64 `json:"shipping_fee"`
	Total       float64 `json:"total"`
}
