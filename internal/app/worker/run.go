package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	"github.com/Apurer/go-order-saga/internal/app/ordering"
	platformobservability "github.com/Apurer/go-order-saga/internal/platform/observability"
	orderactivities "github.com/Apurer/go-order-saga/internal/platform/temporal/activities/orders"
	orderworkflows "github.com/Apurer/go-order-saga/internal/platform/temporal/workflows/orders"
)

const serviceName = "orders-worker"

// Run starts the Temporal worker that executes order creation workflows until ctx is cancelled.
func Run(ctx context.Context) error {
	cfg, err := ordering.LoadConfig()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if cfg.TemporalDisabled {
		return ordering.ErrTemporalDisabled
	}
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	components, err := ordering.Build(ctx, cfg, instruments)
	if err != nil {
		return err
	}
	defer components.Close()

	temporalClient, err := ordering.DialTemporal(cfg, instruments, "temporal-worker")
	if err != nil {
		return fmt.Errorf("failed to create Temporal client: %w", err)
	}
	defer temporalClient.Close()

	w := worker.New(temporalClient, orderworkflows.OrderCreationTaskQueue, worker.Options{})
	Register(w, orderactivities.NewActivities(components.Service))

	logger.Info("worker listening", slog.String("taskQueue", orderworkflows.OrderCreationTaskQueue), slog.String("namespace", cfg.TemporalNamespace))
	interrupt := make(chan interface{})
	go func() {
		<-ctx.Done()
		close(interrupt)
	}()
	if err := w.Run(interrupt); err != nil {
		logger.Error("Temporal worker exited with error", slog.String("error", err.Error()))
		return err
	}
	logger.Info("Temporal worker stopped")
	return nil
}

// Register binds the order workflow and activities under their public names.
func Register(r worker.Registry, activities *orderactivities.Activities) {
	r.RegisterWorkflowWithOptions(orderworkflows.OrderCreationWorkflow, workflow.RegisterOptions{Name: orderworkflows.OrderCreationWorkflowName})
	r.RegisterActivityWithOptions(activities.CreateOrder, activity.RegisterOptions{Name: orderactivities.CreateOrderActivityName})
}
