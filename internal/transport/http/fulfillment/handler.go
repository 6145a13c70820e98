package fulfillment

import (
	"crypto/subtle"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/velure-commerce/velure/internal/config"
	"github.com/velure-commerce/velure/internal/presentation/http/response"
	service "github.com/velure-commerce/velure/internal/service/fulfillment"
	"github.com/velure-commerce/velure/pkg/errorbank"
)

// CronSecretHeader carries the shared secret the external timer sends on
// sweep invocations.
const CronSecretHeader = "X-Cron-Secret"

// Handler exposes the fulfillment pipeline steps as externally triggered,
// idempotent endpoints. Cron-style sweeps are re-invoked on a timer; there is
// no in-process scheduler and no overlap lock.
type Handler struct {
	svc *service.Service
	cfg config.Cron
}

// NewHandler constructs a fulfillment Handler.
func NewHandler(svc *service.Service, cfg config.Config) *Handler {
	return &Handler{svc: svc, cfg: cfg.Cron}
}

// Register routes with the provided Echo instance.
func Register(e *echo.Echo, h *Handler) {
	g := e.Group("/internal/fulfillment")
	g.POST("/book", h.book)
	g.POST("/settle", h.settle)
	g.POST("/reconcile", h.reconcile)
	g.POST("/track", h.track)
	g.GET("/track", h.track)
	g.POST("/notify", h.notify)
}

// book submits the courier booking for one paid order.
func (h *Handler) book(c echo.Context) error {
	b := response.New(c)

	orderID, err := orderIDParam(c)
	if err != nil {
		return b.WithError(err).Build()
	}

	if err := h.svc.BookCourier(c.Request().Context(), orderID); err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(map[string]bool{"booked": true}).Build()
}

// settle runs on-demand for one order when order_id is supplied, or as a
// secret-gated sweep over all orders awaiting settlement.
func (h *Handler) settle(c echo.Context) error {
	b := response.New(c)
	ctx := c.Request().Context()

	if raw := c.QueryParam("order_id"); raw != "" {
		orderID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return b.WithError(errorbank.BadRequest("invalid order id", errorbank.WithCause(err))).Build()
		}
		report, err := h.svc.Settle(ctx, orderID)
		if err != nil {
			return b.WithError(err).Build()
		}
		return b.WithData(report).Build()
	}

	if err := h.checkCronSecret(c); err != nil {
		return b.WithError(err).Build()
	}
	report, err := h.svc.SettleAll(ctx)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(report).Build()
}

// reconcile is timer-driven only.
func (h *Handler) reconcile(c echo.Context) error {
	b := response.New(c)

	if err := h.checkCronSecret(c); err != nil {
		return b.WithError(err).Build()
	}
	report, err := h.svc.ReconcileAWB(c.Request().Context())
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(report).Build()
}

// track is timer-driven only, gated by a bearer token. The GET route is a
// read-style trigger that performs the same authorization and delegates to
// the same sweep.
func (h *Handler) track(c echo.Context) error {
	b := response.New(c)

	if err := h.checkTrackingToken(c); err != nil {
		return b.WithError(err).Build()
	}
	report, err := h.svc.TrackDeliveries(c.Request().Context())
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(report).Build()
}

// notify runs on-demand for one order when order_id is supplied, or as a
// secret-gated sweep over all orders awaiting notification.
func (h *Handler) notify(c echo.Context) error {
	b := response.New(c)
	ctx := c.Request().Context()

	if raw := c.QueryParam("order_id"); raw != "" {
		orderID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return b.WithError(errorbank.BadRequest("invalid order id", errorbank.WithCause(err))).Build()
		}
		report, err := h.svc.Notify(ctx, orderID)
		if err != nil {
			return b.WithError(err).Build()
		}
		return b.WithData(report).Build()
	}

	if err := h.checkCronSecret(c); err != nil {
		return b.WithError(err).Build()
	}
	report, err := h.svc.NotifyAll(ctx)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(report).Build()
}

func (h *Handler) checkCronSecret(c echo.Context) error {
	secret := c.Request().Header.Get(CronSecretHeader)
	if h.cfg.Secret == "" || subtle.ConstantTimeCompare([]byte(secret), []byte(h.cfg.Secret)) != 1 {
		return errorbank.Unauthorized("invalid cron secret")
	}
	return nil
}

func (h *Handler) checkTrackingToken(c echo.Context) error {
	auth := c.Request().Header.Get(echo.HeaderAuthorization)
	token, ok := strings.CutPrefix(auth, "Bearer ")
	if !ok {
		return errorbank.Unauthorized("missing bearer token")
	}
	if h.cfg.TrackingToken == "" || subtle.ConstantTimeCompare([]byte(token), []byte(h.cfg.TrackingToken)) != 1 {
		return errorbank.Unauthorized("invalid bearer token")
	}
	return nil
}

func orderIDParam(c echo.Context) (int64, error) {
	raw := c.QueryParam("order_id")
	if raw == "" {
		return 0, errorbank.BadRequest("order_id is required")
	}
	orderID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, errorbank.BadRequest("invalid order id", errorbank.WithCause(err))
	}
	return orderID, nil
}
