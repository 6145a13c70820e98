package fulfillment

import (
	"context"

	"go.uber.org/zap"

	"github.com/velure-commerce/velure/internal/client/chip"
	"github.com/velure-commerce/velure/internal/entity"
)

// HandleWebhook processes an asynchronous payment-status callback from Chip.
// It never returns an error: the webhook endpoint must always acknowledge the
// provider to avoid retry storms, so every internal failure is only logged.
func (s *Service) HandleWebhook(ctx context.Context, payload chip.WebhookPayload) {
	ctx, span := serviceTracer.Start(ctx, "Fulfillment.HandleWebhook")
	defer span.End()

	log := s.logger.With(
		zap.String("purchase_id", payload.ID),
		zap.String("reference", payload.Reference),
		zap.String("status", payload.Status),
	)

	if payload.Reference == "" {
		log.Warn("payment callback without order reference; acknowledged")
		return
	}

	order, err := s.store.GetByNumber(ctx, payload.Reference)
	if err != nil {
		log.Warn("payment callback for unknown order; acknowledged", zap.Error(err))
		return
	}

	// Duplicate callbacks are expected; paid is monotonic.
	if order.PaymentStatus == entity.PaymentPaid {
		log.Info("payment callback ignored; order already paid")
		return
	}

	switch payload.Status {
	case chip.StatusPaid:
		order.ChipPurchaseID = payload.ID
		order.PaymentMethod = payload.ResolvedPaymentMethod()
		order.PaymentStatus = entity.PaymentPaid
		order.OrderStatus = entity.OrderProcessing
		if err := s.store.Update(ctx, order,
			"chip_purchase_id", "payment_method", "payment_status", "order_status",
		); err != nil {
			log.Error("failed to record payment", zap.Error(err))
			return
		}
		log.Info("order marked paid", zap.String("payment_method", order.PaymentMethod))
		s.publishOrderPaid(ctx, order)

	case chip.StatusError, chip.StatusCancelled, chip.StatusBlocked:
		order.PaymentStatus = entity.PaymentFailed
		order.OrderStatus = entity.OrderCancelledUnpaid
		if err := s.store.Update(ctx, order, "payment_status", "order_status"); err != nil {
			log.Error("failed to record payment failure", zap.Error(err))
			return
		}
		log.Info("order cancelled due to payment")

	case chip.StatusCreated, chip.StatusViewed:
		log.Info("payment callback is informational; no action")

	default:
		log.Warn("payment callback with unknown status; no action")
	}
}
