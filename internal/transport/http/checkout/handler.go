package checkout

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/velure-commerce/velure/internal/dto"
	"github.com/velure-commerce/velure/internal/presentation/http/response"
	service "github.com/velure-commerce/velure/internal/service/checkout"
	"github.com/velure-commerce/velure/pkg/errorbank"
)

// Handler exposes the checkout endpoint over HTTP.
type Handler struct {
	svc *service.Service
}

// NewHandler constructs a checkout Handler.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Register routes with the provided Echo instance.
func Register(e *echo.Echo, h *Handler) {
	e.POST("/checkout", h.submit)
}

func (h *Handler) submit(c echo.Context) error {
	b := response.New(c)

	var payload dto.CheckoutRequest
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	result, err := h.svc.Submit(c.Request().Context(), payload)
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithStatus(http.StatusCreated).WithData(result).Build()
}
