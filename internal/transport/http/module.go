package http

import (
	"go.uber.org/fx"

	catalogtransport "github.com/velure-commerce/velure/internal/transport/http/catalog"
	checkouttransport "github.com/velure-commerce/velure/internal/transport/http/checkout"
	fulfillmenttransport "github.com/velure-commerce/velure/internal/transport/http/fulfillment"
	orderstransport "github.com/velure-commerce/velure/internal/transport/http/orders"
	webhooktransport "github.com/velure-commerce/velure/internal/transport/http/webhook"
)

// Module aggregates all HTTP transport handlers.
var Module = fx.Options(
	catalogtransport.Module,
	checkouttransport.Module,
	orderstransport.Module,
	webhooktransport.Module,
	fulfillmenttransport.Module,
)
