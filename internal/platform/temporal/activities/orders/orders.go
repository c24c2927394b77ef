package orders

import (
	"context"
	"errors"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	ordersapp "github.com/Apurer/go-order-saga/internal/domains/orders/application"
	types "github.com/Apurer/go-order-saga/internal/domains/orders/application/types"
	ordersports "github.com/Apurer/go-order-saga/internal/domains/orders/ports"
)

const (
	// CreateOrderActivityName runs the order creation saga once.
	CreateOrderActivityName = "orders.activities.CreateOrder"

	// Application error types surfaced to workflow callers.
	ErrTypeIdempotencyConflict = "orders.IdempotencyConflict"
	ErrTypeInvalidInput        = "orders.InvalidInput"
)

// Activities groups activities that operate on the orders bounded context.
type Activities struct {
	service ordersports.Service
}

func NewActivities(service ordersports.Service) *Activities {
	return &Activities{service: service}
}

// CreateOrder executes the saga. Business rejections are returned as results, not activity failures.
func (a *Activities) CreateOrder(ctx context.Context, input types.CreateOrderInput) (*types.CreateOrderResult, error) {
	logger := activity.GetLogger(ctx)
	if a == nil || a.service == nil {
		logger.Error("order activity not initialized", "userId", input.UserID)
		return nil, errors.New("order activity not initialized")
	}
	logger.Info("CreateOrder activity started", "userId", input.UserID, "items", len(input.Items))
	result, err := a.service.CreateOrder(ctx, input)
	if err != nil {
		logger.Error("CreateOrder activity failed", "userId", input.UserID, "error", err)
		return nil, classify(err)
	}
	if result.Success && result.Order != nil {
		logger.Info("CreateOrder activity completed", "orderId", result.Order.ID, "replayed", result.Replayed)
	} else {
		logger.Info("CreateOrder activity rejected", "reason", string(result.Failure), "compensations", result.Compensations)
	}
	return result, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, ordersports.ErrIdempotencyConflict):
		return temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeIdempotencyConflict, err)
	case errors.Is(err, ordersapp.ErrInvalidInput):
		return temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeInvalidInput, err)
	default:
		return err
	}
}
