package dto

import (
	"time"

	"github.com/velure-commerce/velure/internal/entity"
)

// OrderResponse represents an order as exposed via transport layers.
type OrderResponse struct {
	ID             int64               `json:"id"`
	Number         string              `json:"number"`
	PaymentStatus  string              `json:"payment_status"`
	OrderStatus    string              `json:"order_status"`
	WorkflowStatus string              `json:"workflow_status"`
	DeliveryStatus string              `json:"delivery_status,omitempty"`
	CourierName    string              `json:"courier_name,omitempty"`
	TrackingNumber string              `json:"tracking_number,omitempty"`
	TrackingURL    string              `json:"tracking_url,omitempty"`
	AWBNumber      string              `json:"awb_number,omitempty"`
	Subtotal       float64             `json:"subtotal"`
	ShippingFee    float64             `json:"shipping_fee"`
	Total          float64             `json:"total"`
	Items          []OrderItemResponse `json:"items,omitempty"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

// OrderItemResponse is one purchased line in an order response.
type OrderItemResponse struct {
	ProductID int64   `json:"product_id"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unit_price"`
	Quantity  int     `json:"quantity"`
	LineTotal float64 `json:"line_total"`
}

// FromOrder maps a stored order onto its transport representation.
func FromOrder(order *entity.Order) OrderResponse {
	resp := OrderResponse{
		ID:             order.ID,
		Number:         order.Number,
		PaymentStatus:  string(order.PaymentStatus),
		OrderStatus:    string(order.OrderStatus),
		WorkflowStatus: string(order.WorkflowStatus),
		DeliveryStatus: order.DeliveryStatus,
		CourierName:    order.CourierName,
		TrackingNumber: order.TrackingNumber,
		TrackingURL:    order.TrackingURL,
		AWBNumber:      order.AWBNumber,
		Subtotal:       order.Subtotal,
		ShippingFee:    order.ShippingFee,
		Total:          order.Total,
		CreatedAt:      order.CreatedAt,
		UpdatedAt:      order.UpdatedAt,
	}
	for _, item := range order.Items {
		resp.Items = append(resp.Items, OrderItemResponse{
			ProductID: item.ProductID,
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
			LineTotal: item.LineTotal,
		})
	}
	return resp
}
