package ports

import (
	"context"

	types "github.com/Apurer/go-order-saga/internal/domains/orders/application/types"
)

// WorkflowOrchestrator dispatches order creation either inline or to a workflow engine.
type WorkflowOrchestrator interface {
	CreateOrder(ctx context.Context, input types.CreateOrderInput) (*types.CreateOrderResult, error)
}
