package application

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/Apurer/go-order-saga/internal/domains/inventory/ports"
)

// DefaultCatalog is provisioned for local runs and contract verification.
var DefaultCatalog = []ports.ProvisionInput{
	{ProductID: 1, Name: "Laptop", Price: decimal.RequireFromString("999.99"), Quantity: 10},
	{ProductID: 2, Name: "Mouse", Price: decimal.RequireFromString("25.50"), Quantity: 50},
	{ProductID: 3, Name: "Keyboard", Price: decimal.RequireFromString("75.00"), Quantity: 30},
}

// Seed provisions every catalogue entry that is not already known to the ledger.
func Seed(ctx context.Context, svc ports.Service, catalog []ports.ProvisionInput) error {
	for _, item := range catalog {
		if _, err := svc.GetProduct(ctx, item.ProductID); err == nil {
			continue
		}
		if _, err := svc.Provision(ctx, item); err != nil {
			return err
		}
	}
	return nil
}
