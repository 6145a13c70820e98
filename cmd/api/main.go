package main

import (
	"go.uber.org/fx"

	"github.com/velure-commerce/velure/internal/app"
)

func main() {
	fx.New(app.Module).Run()
}
