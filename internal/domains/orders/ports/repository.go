package ports

import (
	"context"
	"errors"

	"github.com/Apurer/go-order-saga/internal/domains/orders/domain"
)

var ErrNotFound = errors.New("order not found")

// Repository persists order aggregates. Add assigns order and line item identifiers.
type Repository interface {
	Add(ctx context.Context, order *domain.Order) (*domain.Order, error)
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Order, error)
}
