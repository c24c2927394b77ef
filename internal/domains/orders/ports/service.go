package ports

import (
	"context"

	types "github.com/Apurer/go-order-saga/internal/domains/orders/application/types"
	"github.com/Apurer/go-order-saga/internal/domains/orders/domain"
)

// Service exposes order use cases to adapters.
type Service interface {
	CreateOrder(ctx context.Context, input types.CreateOrderInput) (*types.CreateOrderResult, error)
	GetOrderByID(ctx context.Context, id int64) (*domain.Order, error)
	GetUserOrders(ctx context.Context, userID string) ([]*domain.Order, error)
}
