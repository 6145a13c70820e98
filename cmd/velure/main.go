package main

import (
	"os"

	"github.com/velure-commerce/velure/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
