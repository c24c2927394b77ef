package ports

import (
	"context"

	"github.com/Apurer/go-order-saga/internal/domains/orders/domain"
)

// EventPublisher announces orders that were confirmed and persisted.
type EventPublisher interface {
	PublishOrderConfirmed(ctx context.Context, order *domain.Order) error
}
