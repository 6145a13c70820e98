package fulfillment

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/velure-commerce/velure/internal/client/easyparcel"
	"github.com/velure-commerce/velure/internal/config"
	"github.com/velure-commerce/velure/internal/mailer"
	"github.com/velure-commerce/velure/internal/manifest"
	"github.com/velure-commerce/velure/internal/messaging"
	repoorder "github.com/velure-commerce/velure/internal/repository/order"
)

// Module provides the fulfillment service to Fx.
var Module = fx.Provide(
	func(cfg config.Config) *easyparcel.Client {
		return easyparcel.New(cfg.Courier)
	},
	func(
		repo *repoorder.Repository,
		courier *easyparcel.Client,
		sender mailer.Sender,
		renderer manifest.Renderer,
		publisher messaging.Client,
		cfg config.Config,
		logger *zap.Logger,
	) *Service {
		return NewService(Deps{
			Store:     repo,
			Courier:   courier,
			Mailer:    sender,
			Manifest:  renderer,
			Publisher: publisher,
			Config:    cfg,
			Logger:    logger,
		})
	},
)
