package checkout

import (
	"context"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/velure-commerce/velure/internal/client/chip"
	"github.com/velure-commerce/velure/internal/client/easyparcel"
	"github.com/velure-commerce/velure/internal/config"
	"github.com/velure-commerce/velure/internal/dto"
	"github.com/velure-commerce/velure/internal/entity"
	"github.com/velure-commerce/velure/pkg/errorbank"
)

var serviceTracer = otel.Tracer("github.com/velure-commerce/velure/service/checkout")

// ProductCatalog resolves cart lines against the catalog.
type ProductCatalog interface {
	GetByIDs(ctx context.Context, ids []int64) (map[int64]*entity.Product, error)
}

// OrderWriter persists checkout results.
type OrderWriter interface {
	Create(ctx context.Context, order *entity.Order) error
	Update(ctx context.Context, order *entity.Order, columns ...string) error
}

// PaymentGateway registers purchases with the payment provider.
type PaymentGateway interface {
	CreatePurchase(ctx context.Context, req chip.CreatePurchaseRequest) (*chip.Purchase, error)
}

// ShippingRater quotes a shipping fee for one parcel.
type ShippingRater interface {
	Rate(ctx context.Context, req easyparcel.RateRequest) (float64, error)
}

// Deps collects the collaborators of the checkout Service.
type Deps struct {
	Products ProductCatalog
	Orders   OrderWriter
	Payment  PaymentGateway
	Shipping ShippingRater
	Config   config.Config
	Logger   *zap.Logger
}

// Service turns a validated cart submission into a pending order plus a
// hosted payment purchase.
type Service struct {
	products ProductCatalog
	orders   OrderWriter
	payment  PaymentGateway
	shipping ShippingRater
	cfg      config.Config
	logger   *zap.Logger
	validate *validator.Validate
}

// NewService wires a checkout Service.
func NewService(deps Deps) *Service {
	return &Service{
		products: deps.Products,
		orders:   deps.Orders,
		payment:  deps.Payment,
		shipping: deps.Shipping,
		cfg:      deps.Config,
		logger:   deps.Logger,
		validate: validator.New(),
	}
}

// Submit validates the cart, prices it server-side, persists the order with
// its items, and creates the Chip purchase the storefront redirects to.
func (s *Service) Submit(ctx context.Context, req dto.CheckoutRequest) (*dto.CheckoutResponse, error) {
	ctx, span := serviceTracer.Start(ctx, "CheckoutService.Submit")
	defer span.End()

	if err := s.validate.Struct(req); err != nil {
		return nil, errorbank.BadRequest("invalid checkout payload", errorbank.WithCause(err))
	}

	order, err := s.buildOrder(ctx, req)
	if err != nil {
		return nil, err
	}

	order.ShippingFee = s.quoteShipping(ctx, order)
	order.Total = round2(order.Subtotal + order.ShippingFee)

	if err := s.orders.Create(ctx, order); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to create order", errorbank.WithCause(err))
	}

	purchase, err := s.payment.CreatePurchase(ctx, purchaseRequest(order))
	if err != nil {
		// The order stays awaiting payment; checkout can be retried.
		span.RecordError(err)
		span.SetStatus(codes.Error, "payment provider error")
		return nil, errorbank.Internal("failed to create payment purchase", errorbank.WithCause(err))
	}

	order.ChipPurchaseID = purchase.ID
	if err := s.orders.Update(ctx, order, "chip_purchase_id"); err != nil {
		s.logger.Error("failed to store purchase id", zap.String("order_number", order.Number), zap.Error(err))
	}

	s.logger.Info("checkout submitted",
		zap.String("order_number", order.Number),
		zap.String("purchase_id", purchase.ID),
		zap.Float64("total", order.Total),
	)

	return &dto.CheckoutResponse{
		OrderNumber: order.Number,
		PurchaseID:  purchase.ID,
		CheckoutURL: purchase.CheckoutURL,
		Subtotal:    order.Subtotal,
		ShippingFee: order.ShippingFee,
		Total:       order.Total,
	}, nil
}

func (s *Service) buildOrder(ctx context.Context, req dto.CheckoutRequest) (*entity.Order, error) {
	ids := make([]int64, 0, len(req.Items))
	for _, item := range req.Items {
		ids = append(ids, item.ProductID)
	}

	products, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, errorbank.Internal("failed to resolve products", errorbank.WithCause(err))
	}

	order := &entity.Order{
		Number:         newOrderNumber(),
		CustomerName:   req.CustomerName,
		CustomerEmail:  req.CustomerEmail,
		CustomerPhone:  req.CustomerPhone,
		AddressLine1:   req.AddressLine1,
		AddressLine2:   req.AddressLine2,
		City:           req.City,
		State:          req.State,
		Postcode:       req.Postcode,
		Country:        strings.ToUpper(req.Country),
		PaymentStatus:  entity.PaymentPending,
		OrderStatus:    entity.OrderAwaitingPayment,
		WorkflowStatus: entity.WorkflowNone,
	}

	for _, line := range req.Items {
		product, ok := products[line.ProductID]
		if !ok {
			return nil, errorbank.Unprocessable("unknown product in cart", errorbank.WithDetail("product_id", line.ProductID))
		}
		if !product.InStock {
			return nil, errorbank.Unprocessable("product is out of stock", errorbank.WithDetail("product_id", line.ProductID))
		}
		lineTotal := round2(product.Price * float64(line.Quantity))
		order.Items = append(order.Items, &entity.OrderItem{
			ProductID: product.ID,
			Name:      product.Name,
			Weight:    product.Weight,
			Length:    product.Length,
			Width:     product.Width,
			Height:    product.Height,
			UnitPrice: product.Price,
			Quantity:  line.Quantity,
			LineTotal: lineTotal,
		})
		order.Subtotal = round2(order.Subtotal + lineTotal)
	}

	return order, nil
}

// quoteShipping asks the courier for a live rate, falling back to the
// configured flat fee when the provider is unavailable.
func (s *Service) quoteShipping(ctx context.Context, order *entity.Order) float64 {
	var length, width, height float64
	for _, item := range order.Items {
		length = max(length, item.Length)
		width = max(width, item.Width)
		height = max(height, item.Height)
	}

	fee, err := s.shipping.Rate(ctx, easyparcel.RateRequest{
		Weight:       order.TotalWeight(),
		Length:       length,
		Width:        width,
		Height:       height,
		PickPostcode: s.cfg.Courier.Sender.Postcode,
		PickState:    s.cfg.Courier.Sender.State,
		PickCountry:  s.cfg.Courier.Sender.Country,
		SendPostcode: order.Postcode,
		SendState:    order.State,
		SendCountry:  order.Country,
	})
	if err != nil {
		s.logger.Warn("shipping rate quote failed; using fallback fee",
			zap.String("order_number", order.Number),
			zap.Float64("fallback_fee", s.cfg.Courier.FallbackFee),
			zap.Error(err),
		)
		return s.cfg.Courier.FallbackFee
	}
	return round2(fee)
}

func purchaseRequest(order *entity.Order) chip.CreatePurchaseRequest {
	products := make([]chip.PurchaseProduct, 0, len(order.Items)+1)
	for _, item := range order.Items {
		products = append(products, chip.PurchaseProduct{
			Name:     item.Name,
			Price:    toCents(item.UnitPrice),
			Quantity: float64(item.Quantity),
		})
	}
	if order.ShippingFee > 0 {
		products = append(products, chip.PurchaseProduct{
			Name:     "Shipping",
			Price:    toCents(order.ShippingFee),
			Quantity: 1,
		})
	}
	return chip.CreatePurchaseRequest{
		Reference: order.Number,
		Email:     order.CustomerEmail,
		FullName:  order.CustomerName,
		Phone:     order.CustomerPhone,
		Products:  products,
		Currency:  "MYR",
	}
}

func newOrderNumber() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:10]
	return "VLR-" + suffix
}

func toCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

func round2(amount float64) float64 {
	return math.Round(amount*100) / 100
}
