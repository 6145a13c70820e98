package fulfillment

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/velure-commerce/velure/internal/dto"
	"github.com/velure-commerce/velure/internal/entity"
	"github.com/velure-commerce/velure/pkg/errorbank"
)

// Settle runs the AWB settlement step for exactly one order.
func (s *Service) Settle(ctx context.Context, orderID int64) (*dto.SweepReport, error) {
	ctx, span := serviceTracer.Start(ctx, "Fulfillment.Settle", trace.WithAttributes(attribute.Int64("order.id", orderID)))
	defer span.End()

	order, err := s.store.GetByID(ctx, orderID)
	if err != nil {
		return nil, errorbank.NotFound("order not found", errorbank.WithCause(err))
	}

	report := &dto.SweepReport{}
	s.settleOne(ctx, order, report)
	return report, nil
}

// SettleAll runs the AWB settlement step over every order awaiting
// settlement. A single order's failure never aborts the batch.
func (s *Service) SettleAll(ctx context.Context) (*dto.SweepReport, error) {
	ctx, span := serviceTracer.Start(ctx, "Fulfillment.SettleAll")
	defer span.End()

	orders, err := s.store.ListAwaitingSettlement(ctx)
	if err != nil {
		return nil, errorbank.Internal("failed to load orders awaiting settlement", errorbank.WithCause(err))
	}

	report := &dto.SweepReport{}
	for _, order := range orders {
		s.settleOne(ctx, order, report)
	}

	s.logger.Info("settlement sweep finished",
		zap.Int("processed", report.Processed),
		zap.Int("updated", report.Updated),
		zap.Int("pending", report.Pending),
		zap.Int("failures", len(report.Failures)),
	)
	return report, nil
}

func (s *Service) settleOne(ctx context.Context, order *entity.Order, report *dto.SweepReport) {
	report.Processed++
	log := s.logger.With(zap.String("order_number", order.Number), zap.String("courier_order_no", order.CourierOrderNo))

	result, err := s.courier.PayOrder(ctx, order.CourierOrderNo)
	if err != nil {
		log.Error("settlement call failed", zap.Error(err))
		report.Failures = append(report.Failures, failure(order, err.Error()))
		return
	}

	// No parcel data yet means the AWB is still being issued. Expected
	// transient state; the reconciliation sweep picks it up later.
	if len(result.Parcels) == 0 || !result.Parcels[0].HasAWB() {
		if err := order.AdvanceWorkflow(entity.WorkflowAWBPending); err != nil {
			log.Warn("order already past awb settlement; skipping", zap.Error(err))
			report.Skipped++
			return
		}
		if err := s.store.Update(ctx, order, "workflow_status"); err != nil {
			log.Error("failed to mark awb pending", zap.Error(err))
			report.Failures = append(report.Failures, failure(order, err.Error()))
			return
		}
		log.Info("awb not yet issued; marked pending")
		report.Pending++
		return
	}

	parcel := result.Parcels[0]
	order.AWBNumber = parcel.AWB
	order.TrackingNumber = parcel.ParcelNumber
	order.TrackingURL = parcel.TrackingURL
	order.AWBPDFURL = parcel.AWBPDFLink
	order.DeliveryStatus = parcel.ShipStatus
	order.OrderStatus = entity.OrderProcessing
	if err := order.AdvanceWorkflow(entity.WorkflowAWBGenerated); err != nil {
		log.Warn("order already past awb generation; skipping", zap.Error(err))
		report.Skipped++
		return
	}

	if err := s.store.Update(ctx, order,
		"awb_number", "tracking_number", "tracking_url", "awb_pdf_url",
		"delivery_status", "order_status", "workflow_status",
	); err != nil {
		log.Error("failed to store awb data", zap.Error(err))
		report.Failures = append(report.Failures, failure(order, err.Error()))
		return
	}

	log.Info("awb generated", zap.String("awb", order.AWBNumber), zap.String("tracking_number", order.TrackingNumber))
	report.Updated++
}

func failure(order *entity.Order, reason string) dto.SweepFailure {
	return dto.SweepFailure{
		OrderID:     order.ID,
		OrderNumber: order.Number,
		Reason:      reason,
	}
}
