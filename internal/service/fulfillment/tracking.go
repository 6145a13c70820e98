package fulfillment

import (
	"context"

	"go.uber.org/zap"

	"github.com/velure-commerce/velure/internal/dto"
	"github.com/velure-commerce/velure/internal/entity"
	"github.com/velure-commerce/velure/pkg/errorbank"
)

// TrackDeliveries polls delivery status for every order with an issued AWB
// that has not reached a terminal carrier state. One bulk provider call
// covers the whole candidate set: a transport failure or non-success
// top-level status aborts the entire sweep, with no per-order fallback.
// Orders that newly reach "Successfully Delivered" are reported for caller
// follow-up.
func (s *Service) TrackDeliveries(ctx context.Context) (*dto.TrackingReport, error) {
	ctx, span := serviceTracer.Start(ctx, "Fulfillment.TrackDeliveries")
	defer span.End()

	orders, err := s.store.ListTrackable(ctx)
	if err != nil {
		return nil, errorbank.Internal("failed to load trackable orders", errorbank.WithCause(err))
	}

	report := &dto.TrackingReport{}
	if len(orders) == 0 {
		return report, nil
	}

	byCourierNo := make(map[string]*entity.Order, len(orders))
	orderNos := make([]string, 0, len(orders))
	for _, order := range orders {
		byCourierNo[order.CourierOrderNo] = order
		orderNos = append(orderNos, order.CourierOrderNo)
	}

	results, err := s.courier.TrackOrders(ctx, orderNos)
	if err != nil {
		return nil, errorbank.Internal("bulk tracking call failed", errorbank.WithCause(err))
	}

	for _, result := range results {
		order, ok := byCourierNo[result.OrderNumber]
		if !ok {
			s.logger.Warn("tracking result for unknown courier order", zap.String("courier_order_no", result.OrderNumber))
			continue
		}
		report.Checked++
		log := s.logger.With(zap.String("order_number", order.Number), zap.String("courier_order_no", order.CourierOrderNo))

		if !result.Success() {
			log.Error("carrier reported non-success tracking status", zap.String("carrier_status", result.Status))
			report.Failures = append(report.Failures, failure(order, "carrier status: "+result.Status))
			continue
		}
		if len(result.Parcels) == 0 {
			continue
		}

		shipStatus := result.Parcels[0].ShipStatus
		if shipStatus == "" || shipStatus == order.DeliveryStatus {
			continue
		}

		order.DeliveryStatus = shipStatus
		if err := s.store.Update(ctx, order, "delivery_status"); err != nil {
			log.Error("failed to store delivery status", zap.Error(err))
			report.Failures = append(report.Failures, failure(order, err.Error()))
			continue
		}

		log.Info("delivery status updated", zap.String("delivery_status", shipStatus))
		report.Updated++
		if shipStatus == entity.DeliveredStatus {
			report.Delivered = append(report.Delivered, order.Number)
		}
	}

	s.logger.Info("tracking sweep finished",
		zap.Int("checked", report.Checked),
		zap.Int("updated", report.Updated),
		zap.Int("delivered", len(report.Delivered)),
		zap.Int("failures", len(report.Failures)),
	)
	return report, nil
}
