package fulfillment

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/velure-commerce/velure/internal/client/easyparcel"
	"github.com/velure-commerce/velure/internal/entity"
	"github.com/velure-commerce/velure/pkg/errorbank"
)

// BookCourier submits a single-parcel EasyParcel booking for a paid order.
// The sender is the fixed warehouse profile; receiver fields come from the
// order. On success the carrier order number is recorded and the workflow
// advances to easyparcel_order_created.
func (s *Service) BookCourier(ctx context.Context, orderID int64) error {
	ctx, span := serviceTracer.Start(ctx, "Fulfillment.BookCourier", trace.WithAttributes(attribute.Int64("order.id", orderID)))
	defer span.End()

	order, err := s.store.GetByID(ctx, orderID)
	if err != nil {
		return errorbank.NotFound("order not found", errorbank.WithCause(err))
	}
	// Kafka delivers at least once; a redelivered paid event must not submit
	// a second booking to the carrier.
	if order.CourierOrderNo != "" {
		s.logger.Info("courier order already booked, skipping",
			zap.String("order_number", order.Number),
			zap.String("courier_order_no", order.CourierOrderNo),
		)
		return nil
	}
	if order.PaymentStatus != entity.PaymentPaid {
		return errorbank.BadRequest("order is not paid", errorbank.WithDetail("order_number", order.Number))
	}

	result, err := s.courier.SubmitOrder(ctx, bookingRequest(order))
	if err != nil {
		return errorbank.Internal("courier booking failed", errorbank.WithCause(err))
	}

	order.CourierName = result.Courier
	order.CourierOrderNo = result.OrderNumber
	order.TrackingNumber = result.TrackingNo
	order.DeliveryStatus = "processing"
	if err := order.AdvanceWorkflow(entity.WorkflowCourierCreated); err != nil {
		return errorbank.Conflict("order is already past courier booking", errorbank.WithCause(err))
	}

	if err := s.store.Update(ctx, order,
		"courier_name", "courier_order_no", "tracking_number", "delivery_status", "workflow_status",
	); err != nil {
		return errorbank.Internal("failed to store booking", errorbank.WithCause(err))
	}

	s.logger.Info("courier order created",
		zap.String("order_number", order.Number),
		zap.String("courier_order_no", order.CourierOrderNo),
		zap.String("courier", order.CourierName),
	)
	return nil
}

// bookingRequest aggregates line items into one parcel: summed weight and
// declared value, with the largest item dimensions as the box size.
func bookingRequest(order *entity.Order) easyparcel.SubmitOrderRequest {
	var length, width, height float64
	names := make([]string, 0, len(order.Items))
	for _, item := range order.Items {
		length = max(length, item.Length)
		width = max(width, item.Width)
		height = max(height, item.Height)
		names = append(names, item.Name)
	}

	return easyparcel.SubmitOrderRequest{
		Weight:    order.TotalWeight(),
		Length:    length,
		Width:     width,
		Height:    height,
		Content:   strings.Join(names, ", "),
		Value:     order.DeclaredValue(),
		Reference: order.Number,
		Receiver: easyparcel.Receiver{
			Name:     order.CustomerName,
			Phone:    order.CustomerPhone,
			Email:    order.CustomerEmail,
			Address1: order.AddressLine1,
			Address2: order.AddressLine2,
			City:     order.City,
			State:    order.State,
			Postcode: order.Postcode,
			Country:  order.Country,
		},
	}
}
