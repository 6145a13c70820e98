package mailer

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"github.com/velure-commerce/velure/internal/entity"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// TrackingEmailData feeds the customer-facing shipment tracking template.
type TrackingEmailData struct {
	ShopName       string
	CustomerName   string
	OrderNumber    string
	CourierName    string
	TrackingNumber string
	TrackingURL    string
	AWBNumber      string
}

// RenderTracking renders the shipment-tracking email body for an order.
func RenderTracking(shopName string, order *entity.Order) (string, error) {
	data := TrackingEmailData{
		ShopName:       shopName,
		CustomerName:   order.CustomerName,
		OrderNumber:    order.Number,
		CourierName:    order.CourierName,
		TrackingNumber: order.TrackingNumber,
		TrackingURL:    order.TrackingURL,
		AWBNumber:      order.AWBNumber,
	}
	return render("shipment_tracking.html", data)
}

// NewOrderEmailData feeds the internal operations notification template.
type NewOrderEmailData struct {
	ShopName    string
	Order       *entity.Order
	Items       []*entity.OrderItem
	TotalWeight float64
}

// RenderNewOrder renders the internal new-order notice with full order detail.
func RenderNewOrder(shopName string, order *entity.Order) (string, error) {
	data := NewOrderEmailData{
		ShopName:    shopName,
		Order:       order,
		Items:       order.Items,
		TotalWeight: order.TotalWeight(),
	}
	return render("new_order.html", data)
}

func render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}
