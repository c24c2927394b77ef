package sequences

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	types "github.com/Apurer/go-order-saga/internal/domains/orders/application/types"
	orderactivities "github.com/Apurer/go-order-saga/internal/platform/temporal/activities/orders"
)

// CreateOrderActivityOptions runs the saga at most once. A retry would re-reserve stock the
// first attempt may still hold.
var CreateOrderActivityOptions = workflow.ActivityOptions{
	StartToCloseTimeout: 2 * time.Minute,
	RetryPolicy: &temporal.RetryPolicy{
		MaximumAttempts: 1,
	},
}

// RunOrderCreationSequence executes the saga activity and returns its result.
func RunOrderCreationSequence(ctx workflow.Context, input types.CreateOrderInput) (*types.CreateOrderResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("order creation sequence started", "userId", input.UserID, "items", len(input.Items))

	var result types.CreateOrderResult
	err := workflow.ExecuteActivity(
		workflow.WithActivityOptions(ctx, CreateOrderActivityOptions),
		orderactivities.CreateOrderActivityName,
		input,
	).Get(ctx, &result)
	if err != nil {
		logger.Error("order creation sequence failed", "userId", input.UserID, "error", err)
		return nil, err
	}
	if result.Success && result.Order != nil {
		logger.Info("order creation sequence confirmed", "orderId", result.Order.ID)
	} else {
		logger.Info("order creation sequence rejected", "reason", string(result.Failure))
	}
	return &result, nil
}
