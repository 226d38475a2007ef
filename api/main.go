package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rogerio-castellano/order-tracker/internal/cli"
)

// @title Order Tracker API
// @version 1.0
// @description REST API for store catalogs, stock and the order lifecycle.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.NewRootCommand().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
