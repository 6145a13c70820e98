package entity

import (
	"errors"
	"time"

	"github.com/uptrace/bun"
)

// ErrBackwardTransition is returned when a caller attempts to move an order's
// workflow status backward through the pipeline.
var ErrBackwardTransition = errors.New("workflow status cannot move backward")

// Order represents a purchase order stored in the relational database.
type Order struct {
	bun.BaseModel `bun:"table:orders,alias:o"`

	ID     int64  `bun:",pk,autoincrement"`
	Number string `bun:"number"`

	CustomerName  string `bun:"customer_name"`
	CustomerEmail string `bun:"customer_email"`
	CustomerPhone string `bun:"customer_phone"`
	AddressLine1  string `bun:"address_line1"`
	AddressLine2  string `bun:"address_line2"`
	City          string `bun:"city"`
	State         string `bun:"state"`
	Postcode      string `bun:"postcode"`
	Country       string `bun:"country"`

	Subtotal    float64 `bun:"subtotal"`
	ShippingFee float64 `bun:"shipping_fee"`
	Total       float64 `bun:"total"`

	PaymentStatus  PaymentStatus  `bun:"payment_status"`
	OrderStatus    OrderStatus    `bun:"order_status"`
	WorkflowStatus WorkflowStatus `bun:"workflow_status"`
	DeliveryStatus string         `bun:"delivery_status"`

	ChipPurchaseID string `bun:"chip_purchase_id"`
	PaymentMethod  string `bun:"payment_method"`

	CourierName    string `bun:"courier_name"`
	CourierOrderNo string `bun:"courier_order_no"`
	TrackingNumber string `bun:"tracking_number"`
	TrackingURL    string `bun:"tracking_url"`
	AWBNumber      string `bun:"awb_number"`
	AWBPDFURL      string `bun:"awb_pdf_url"`

	EmailSent bool `bun:"email_sent"`

	Items []*OrderItem `bun:"rel:has-many,join:id=order_id"`

	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `bun:"updated_at,nullzero"`
}

// AdvanceWorkflow moves the order to the next pipeline stage after validating
// the transition. Re-asserting the current stage is a no-op; a backward move
// is rejected with ErrBackwardTransition.
func (o *Order) AdvanceWorkflow(next WorkflowStatus) error {
	if !o.WorkflowStatus.CanAdvance(next) {
		return ErrBackwardTransition
	}
	o.WorkflowStatus = next
	return nil
}

// TotalWeight sums line item weight in kilograms, scaled by quantity.
func (o *Order) TotalWeight() float64 {
	var weight float64
	for _, item := range o.Items {
		weight += item.Weight * float64(item.Quantity)
	}
	return weight
}

// DeclaredValue is the insured value of the parcel: the merchandise subtotal.
func (o *Order) DeclaredValue() float64 {
	var value float64
	for _, item := range o.Items {
		value += item.LineTotal
	}
	return value
}

// OrderItem is a single purchased line, owned by exactly one order.
type OrderItem struct {
	bun.BaseModel `bun:"table:order_items,alias:oi"`

	ID        int64  `bun:",pk,autoincrement"`
	OrderID   int64  `bun:"order_id"`
	ProductID int64  `bun:"product_id"`
	VariantID int64  `bun:"variant_id,nullzero"`
	Name      string `bun:"name"`

	// Physical dimensions in cm, weight in kg. Used for shipping rates and
	// the courier booking payload.
	Weight float64 `bun:"weight"`
	Length float64 `bun:"length"`
	Width  float64 `bun:"width"`
	Height float64 `bun:"height"`

	UnitPrice float64 `bun:"unit_price"`
	Quantity  int     `bun:"quantity"`
	LineTotal float64 `bun:"line_total"`

	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP"`
}
