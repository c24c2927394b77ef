package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/Apurer/go-order-saga/internal/app/inventory"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := inventory.Run(ctx); err != nil {
		log.Fatalf("inventory exited: %v", err)
	}
}
