// Package fulfillment drives an order through the post-payment pipeline:
// courier booking, AWB settlement and reconciliation, delivery tracking, and
// transactional email notification. Every step reads the order's current
// status, calls exactly one external API, and writes a new status back, so
// each step is idempotent and safe to re-run from a timer.
package fulfillment

import (
	"context"
	"encoding/json"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/velure-commerce/velure/internal/client/easyparcel"
	"github.com/velure-commerce/velure/internal/config"
	"github.com/velure-commerce/velure/internal/entity"
	"github.com/velure-commerce/velure/internal/mailer"
	"github.com/velure-commerce/velure/internal/manifest"
	"github.com/velure-commerce/velure/internal/messaging"
	"github.com/velure-commerce/velure/pkg/errorbank"
)

var serviceTracer = otel.Tracer("github.com/velure-commerce/velure/service/fulfillment")

// OrderStore is the persistence surface the pipeline needs. Each sweep
// re-derives its candidate set from persisted status fields, never from
// in-memory state.
type OrderStore interface {
	GetByID(ctx context.Context, id int64) (*entity.Order, error)
	GetByNumber(ctx context.Context, number string) (*entity.Order, error)
	Update(ctx context.Context, order *entity.Order, columns ...string) error
	ListAwaitingSettlement(ctx context.Context) ([]*entity.Order, error)
	ListAwaitingAWB(ctx context.Context) ([]*entity.Order, error)
	ListTrackable(ctx context.Context) ([]*entity.Order, error)
	ListAwaitingNotification(ctx context.Context) ([]*entity.Order, error)
}

// CourierGateway is the EasyParcel surface the pipeline consumes.
type CourierGateway interface {
	SubmitOrder(ctx context.Context, req easyparcel.SubmitOrderRequest) (*easyparcel.OrderResult, error)
	PayOrder(ctx context.Context, orderNo string) (*easyparcel.OrderResult, error)
	OrderStatus(ctx context.Context, orderNo string) (*easyparcel.OrderResult, error)
	TrackOrders(ctx context.Context, orderNos []string) ([]easyparcel.OrderResult, error)
	FetchAWB(ctx context.Context, url string) ([]byte, error)
}

// Deps collects the collaborators of the fulfillment Service.
type Deps struct {
	Store     OrderStore
	Courier   CourierGateway
	Mailer    mailer.Sender
	Manifest  manifest.Renderer
	Publisher messaging.Client
	Config    config.Config
	Logger    *zap.Logger
}

// Service implements the fulfillment pipeline steps.
type Service struct {
	store     OrderStore
	courier   CourierGateway
	mailer    mailer.Sender
	manifest  manifest.Renderer
	publisher messaging.Client
	cfg       config.Config
	logger    *zap.Logger
}

// NewService wires a fulfillment Service.
func NewService(deps Deps) *Service {
	return &Service{
		store:     deps.Store,
		courier:   deps.Courier,
		mailer:    deps.Mailer,
		manifest:  deps.Manifest,
		publisher: deps.Publisher,
		cfg:       deps.Config,
		logger:    deps.Logger,
	}
}

// GetOrder returns one order by its external number, for the storefront's
// confirmation and tracking pages.
func (s *Service) GetOrder(ctx context.Context, number string) (*entity.Order, error) {
	order, err := s.store.GetByNumber(ctx, number)
	if err != nil {
		return nil, errorbank.NotFound("order not found", errorbank.WithCause(err))
	}
	return order, nil
}

// OrderPaidEvent is emitted when a payment callback confirms an order as
// paid. The background worker reacts by booking the courier shipment.
type OrderPaidEvent struct {
	OrderID     int64  `json:"order_id"`
	OrderNumber string `json:"order_number"`
	PurchaseID  string `json:"purchase_id"`
}

// publishOrderPaid hands the paid order to the background worker. When
// messaging is disabled the booking runs on a detached goroutine instead so
// the webhook response is never blocked on the courier provider.
func (s *Service) publishOrderPaid(ctx context.Context, order *entity.Order) {
	if s.cfg.Messaging.Enabled && s.publisher != nil {
		event := OrderPaidEvent{
			OrderID:     order.ID,
			OrderNumber: order.Number,
			PurchaseID:  order.ChipPurchaseID,
		}
		payload, err := json.Marshal(event)
		if err != nil {
			s.logger.Error("marshal order paid event", zap.Error(err))
			return
		}
		key := []byte(fmt.Sprintf("order-%d", order.ID))
		if err := s.publisher.Publish(ctx, key, payload); err == nil {
			return
		} else {
			// Fall back to the direct goroutine path below.
			s.logger.Error("publish order paid event", zap.Int64("order_id", order.ID), zap.Error(err))
		}
	}

	orderID := order.ID
	go func() {
		bookCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.Courier.RequestTimeout)
		defer cancel()
		if err := s.BookCourier(bookCtx, orderID); err != nil {
			s.logger.Error("courier booking after payment failed", zap.Int64("order_id", orderID), zap.Error(err))
		}
	}()
}
