package catalog

import (
	"github.com/labstack/echo/v4"

	"github.com/velure-commerce/velure/internal/dto"
	"github.com/velure-commerce/velure/internal/entity"
	"github.com/velure-commerce/velure/internal/presentation/http/response"
	service "github.com/velure-commerce/velure/internal/service/catalog"
	"github.com/velure-commerce/velure/pkg/errorbank"
)

// Handler exposes catalog endpoints over HTTP.
type Handler struct {
	svc *service.Service
}

// NewHandler constructs a catalog Handler.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Register routes with the provided Echo instance.
func Register(e *echo.Echo, h *Handler) {
	g := e.Group("/products")
	g.GET("", h.list)
	g.GET("/:slug", h.getBySlug)
}

func (h *Handler) list(c echo.Context) error {
	b := response.New(c)

	products, err := h.svc.List(c.Request().Context())
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithData(toDTOs(products)).Build()
}

func (h *Handler) getBySlug(c echo.Context) error {
	b := response.New(c)

	slug := c.Param("slug")
	if slug == "" {
		return b.WithError(errorbank.BadRequest("product slug is required")).Build()
	}

	product, err := h.svc.GetBySlug(c.Request().Context(), slug)
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithData(dto.FromProduct(product)).Build()
}

func toDTOs(products []*entity.Product) []dto.ProductResponse {
	out := make([]dto.ProductResponse, 0, len(products))
	for _, product := range products {
		out = append(out, dto.FromProduct(product))
	}
	return out
}
