package checkout

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/velure-commerce/velure/internal/client/chip"
	"github.com/velure-commerce/velure/internal/client/easyparcel"
	"github.com/velure-commerce/velure/internal/config"
	repoorder "github.com/velure-commerce/velure/internal/repository/order"
	repoproduct "github.com/velure-commerce/velure/internal/repository/product"
)

// Module provides the checkout service to Fx.
var Module = fx.Provide(
	func(cfg config.Config) *chip.Client {
		return chip.New(cfg.Payment)
	},
	func(
		products *repoproduct.Repository,
		orders *repoorder.Repository,
		payment *chip.Client,
		courier *easyparcel.Client,
		cfg config.Config,
		logger *zap.Logger,
	) *Service {
		return NewService(Deps{
			Products: products,
			Orders:   orders,
			Payment:  payment,
			Shipping: courier,
			Config:   cfg,
			Logger:   logger,
		})
	},
)
