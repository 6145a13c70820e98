package app

import (
	"go.uber.org/fx"

	"github.com/velure-commerce/velure/internal/cache"
	"github.com/velure-commerce/velure/internal/config"
	"github.com/velure-commerce/velure/internal/database"
	"github.com/velure-commerce/velure/internal/logger"
	"github.com/velure-commerce/velure/internal/mailer"
	"github.com/velure-commerce/velure/internal/manifest"
	"github.com/velure-commerce/velure/internal/messaging"
	"github.com/velure-commerce/velure/internal/observability"
	repositoryorder "github.com/velure-commerce/velure/internal/repository/order"
	repositoryproduct "github.com/velure-commerce/velure/internal/repository/product"
	grpcserver "github.com/velure-commerce/velure/internal/server/grpc"
	httpserver "github.com/velure-commerce/velure/internal/server/http"
	servicecatalog "github.com/velure-commerce/velure/internal/service/catalog"
	servicecheckout "github.com/velure-commerce/velure/internal/service/checkout"
	servicefulfillment "github.com/velure-commerce/velure/internal/service/fulfillment"
	transporthttp "github.com/velure-commerce/velure/internal/transport/http"
	"github.com/velure-commerce/velure/internal/worker"
	workerfulfillment "github.com/velure-commerce/velure/internal/worker/fulfillment"
)

// Core provides the foundational modules shared across executables.
var Core = fx.Options(
	config.Module,
	cache.Module,
	database.Module,
	logger.Module,
	messaging.Module,
	observability.Module,
	mailer.Module,
	manifest.Module,
	repositoryorder.Module,
	repositoryproduct.Module,
	servicecatalog.Module,
	servicecheckout.Module,
	servicefulfillment.Module,
)

// HTTP wires the HTTP and gRPC transports on top of the core modules.
var HTTP = fx.Options(
	Core,
	httpserver.Module,
	grpcserver.Module,
	transporthttp.Module,
)

// Worker exposes background worker processing.
var Worker = fx.Options(
	Core,
	worker.Module,
	workerfulfillment.Module,
)

// Module is the default application wiring (HTTP only).
var Module = HTTP
