package ports

import (
	"context"
	"errors"

	"github.com/Apurer/go-order-saga/internal/domains/inventory/domain"
)

var ErrNotFound = errors.New("product not found")

// Ledger is the authoritative stock store. Reserve must check and decrement as one atomic step per product.
type Ledger interface {
	Reserve(ctx context.Context, productID int64, quantity int32) (domain.Result, error)
	Release(ctx context.Context, productID int64, quantity int32) (domain.Result, error)
	Get(ctx context.Context, productID int64) (*domain.StockEntry, error)
	List(ctx context.Context) ([]*domain.StockEntry, error)
	// Provision creates an entry, assigning an id when ProductID is zero.
	Provision(ctx context.Context, entry *domain.StockEntry) (*domain.StockEntry, error)
}
