package fulfillment

import (
	"context"
	"encoding/json"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/velure-commerce/velure/internal/config"
	"github.com/velure-commerce/velure/internal/messaging"
	fulfillmentsvc "github.com/velure-commerce/velure/internal/service/fulfillment"
	"github.com/velure-commerce/velure/internal/worker"
)

var workerTracer = otel.Tracer("github.com/velure-commerce/velure/worker/fulfillment")

// Module registers fulfillment worker handlers.
var Module = fx.Module("worker_fulfillment",
	fx.Provide(
		fx.Annotate(
			NewOrderPaidHandler,
			fx.ResultTags(`group:"worker.handlers"`),
		),
	),
)

// NewOrderPaidHandler sets up a worker handler that books the courier
// shipment for orders confirmed as paid. Booking is idempotent, so redelivery
// of the same event is harmless.
func NewOrderPaidHandler(svc *fulfillmentsvc.Service, logger *zap.Logger, cfg config.Config) worker.HandlerRegistration {
	handler := func(ctx context.Context, msg messaging.Message) error {
		ctx, span := workerTracer.Start(ctx, "worker.fulfillment.book", trace.WithAttributes(
			attribute.String("messaging.topic", msg.Topic),
		))
		defer span.End()

		var event fulfillmentsvc.OrderPaidEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			logger.Error("failed to decode order paid event", zap.Error(err))

			span.RecordError(err)
			span.SetStatus(codes.Error, "decode error")
			return err
		}

		span.SetAttributes(attribute.Int64("order.id", event.OrderID))

		if err := svc.BookCourier(ctx, event.OrderID); err != nil {
			logger.Error("courier booking failed",
				zap.Int64("id", event.OrderID),
				zap.String("number", event.OrderNumber),
				zap.Error(err),
			)

			span.RecordError(err)
			span.SetStatus(codes.Error, "booking error")
			return err
		}

		logger.Info("courier booked from order paid event",
			zap.Int64("id", event.OrderID),
			zap.String("number", event.OrderNumber),
		)

		return nil
	}

	return worker.HandlerRegistration{
		Topic:   cfg.Messaging.Kafka.Topic,
		Handler: handler,
	}
}
