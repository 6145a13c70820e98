package fulfillment

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/velure-commerce/velure/internal/client/easyparcel"
	"github.com/velure-commerce/velure/internal/dto"
	"github.com/velure-commerce/velure/internal/entity"
	"github.com/velure-commerce/velure/pkg/errorbank"
)

// ReconcileAWB re-polls every order still waiting for its AWB and backfills
// tracking identifiers once the carrier has issued them. Multi-parcel orders
// get their parcel and AWB numbers joined into comma-separated strings.
func (s *Service) ReconcileAWB(ctx context.Context) (*dto.SweepReport, error) {
	ctx, span := serviceTracer.Start(ctx, "Fulfillment.ReconcileAWB")
	defer span.End()

	orders, err := s.store.ListAwaitingAWB(ctx)
	if err != nil {
		return nil, errorbank.Internal("failed to load orders awaiting awb", errorbank.WithCause(err))
	}

	report := &dto.SweepReport{}
	for _, order := range orders {
		s.reconcileOne(ctx, order, report)
	}

	s.logger.Info("awb reconciliation sweep finished",
		zap.Int("processed", report.Processed),
		zap.Int("updated", report.Updated),
		zap.Int("skipped", report.Skipped),
		zap.Int("failures", len(report.Failures)),
	)
	return report, nil
}

func (s *Service) reconcileOne(ctx context.Context, order *entity.Order, report *dto.SweepReport) {
	report.Processed++
	log := s.logger.With(zap.String("order_number", order.Number), zap.String("courier_order_no", order.CourierOrderNo))

	if order.CourierOrderNo == "" {
		log.Warn("order awaiting awb has no courier order number; skipping")
		report.Skipped++
		return
	}

	result, err := s.courier.OrderStatus(ctx, order.CourierOrderNo)
	if err != nil {
		log.Error("status call failed", zap.Error(err))
		report.Failures = append(report.Failures, failure(order, err.Error()))
		return
	}
	if !result.Success() {
		log.Error("carrier reported non-success status", zap.String("carrier_status", result.Status), zap.String("remarks", result.Remarks))
		report.Failures = append(report.Failures, failure(order, "carrier status: "+result.Status))
		return
	}

	// An empty parcel list is expected while a multi-item order is still
	// being processed by the carrier; soft skip.
	if len(result.Parcels) == 0 {
		log.Info("no parcels issued yet; skipping")
		report.Skipped++
		return
	}

	parcelNos, awbNos, first := collectIssuedParcels(result.Parcels)
	if len(parcelNos) == 0 {
		log.Info("parcels present but awb not issued yet; skipping")
		report.Skipped++
		return
	}

	order.TrackingNumber = strings.Join(parcelNos, ", ")
	order.AWBNumber = strings.Join(awbNos, ", ")
	order.AWBPDFURL = first.AWBPDFLink
	order.TrackingURL = first.TrackingURL
	order.DeliveryStatus = first.ShipStatus
	if err := order.AdvanceWorkflow(entity.WorkflowAWBGenerated); err != nil {
		log.Warn("order already past awb generation; skipping", zap.Error(err))
		report.Skipped++
		return
	}

	if err := s.store.Update(ctx, order,
		"tracking_number", "awb_number", "awb_pdf_url", "tracking_url",
		"delivery_status", "workflow_status",
	); err != nil {
		log.Error("failed to store awb data", zap.Error(err))
		report.Failures = append(report.Failures, failure(order, err.Error()))
		return
	}

	log.Info("awb backfilled", zap.String("awb", order.AWBNumber), zap.Int("parcels", len(parcelNos)))
	report.Updated++
}

// collectIssuedParcels aggregates every parcel carrying both an AWB and a
// parcel number. The first matching parcel's PDF link and ship status serve
// as the representative values for the order.
func collectIssuedParcels(parcels []easyparcel.Parcel) (parcelNos, awbNos []string, first easyparcel.Parcel) {
	for _, parcel := range parcels {
		if parcel.AWB == "" || parcel.ParcelNumber == "" {
			continue
		}
		if len(parcelNos) == 0 {
			first = parcel
		}
		parcelNos = append(parcelNos, parcel.ParcelNumber)
		awbNos = append(awbNos, parcel.AWB)
	}
	return parcelNos, awbNos, first
}
