package webhook

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/velure-commerce/velure/internal/client/chip"
	service "github.com/velure-commerce/velure/internal/service/fulfillment"
)

// Handler receives asynchronous payment-status callbacks from Chip.
type Handler struct {
	svc    *service.Service
	logger *zap.Logger
}

// NewHandler constructs a webhook Handler.
func NewHandler(svc *service.Service, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// Register routes with the provided Echo instance.
func Register(e *echo.Echo, h *Handler) {
	e.POST("/webhooks/chip", h.paymentCallback)
}

// paymentCallback always acknowledges the provider, whatever happens
// internally. Failing the response would make the gateway retry-storm a
// webhook whose side effects may already have been applied.
func (h *Handler) paymentCallback(c echo.Context) error {
	var payload chip.WebhookPayload
	if err := c.Bind(&payload); err != nil {
		h.logger.Warn("unparseable payment callback; acknowledged", zap.Error(err))
		return c.JSON(http.StatusOK, map[string]bool{"received": true})
	}

	h.svc.HandleWebhook(c.Request().Context(), payload)

	return c.JSON(http.StatusOK, map[string]bool{"received": true})
}
