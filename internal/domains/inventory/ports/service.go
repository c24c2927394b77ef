package ports

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/Apurer/go-order-saga/internal/domains/inventory/domain"
)

// ProvisionInput describes a product added to the catalogue.
type ProvisionInput struct {
	ProductID int64
	Name      string
	Price     decimal.Decimal
	Quantity  int32
}

// Service exposes stock use cases to adapters.
type Service interface {
	Reserve(ctx context.Context, productID int64, quantity int32) (domain.Result, error)
	Release(ctx context.Context, productID int64, quantity int32) (domain.Result, error)
	GetProduct(ctx context.Context, productID int64) (*domain.StockEntry, error)
	ListProducts(ctx context.Context) ([]*domain.StockEntry, error)
	Provision(ctx context.Context, input ProvisionInput) (*domain.StockEntry, error)
}
