package orders

import (
	"github.com/labstack/echo/v4"

	"github.com/velure-commerce/velure/internal/dto"
	"github.com/velure-commerce/velure/internal/presentation/http/response"
	service "github.com/velure-commerce/velure/internal/service/fulfillment"
	"github.com/velure-commerce/velure/pkg/errorbank"
)

// Handler exposes order lookup for the storefront's confirmation page.
type Handler struct {
	svc *service.Service
}

// NewHandler constructs an orders Handler.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Register routes with the provided Echo instance.
func Register(e *echo.Echo, h *Handler) {
	e.GET("/orders/:number", h.getByNumber)
}

func (h *Handler) getByNumber(c echo.Context) error {
	b := response.New(c)

	number := c.Param("number")
	if number == "" {
		return b.WithError(errorbank.BadRequest("order number is required")).Build()
	}

	order, err := h.svc.GetOrder(c.Request().Context(), number)
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithData(dto.FromOrder(order)).Build()
}
