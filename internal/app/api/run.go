package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/Apurer/go-order-saga/internal/app/ordering"
	ordershandler "github.com/Apurer/go-order-saga/internal/domains/orders/adapters/http/handler"
	ordersworkflows "github.com/Apurer/go-order-saga/internal/domains/orders/adapters/workflows"
	ordersports "github.com/Apurer/go-order-saga/internal/domains/orders/ports"
	platformobservability "github.com/Apurer/go-order-saga/internal/platform/observability"
)

const serviceName = "orders-api"

// Run boots the orders HTTP API and blocks until ctx is cancelled or the server fails.
func Run(ctx context.Context) error {
	cfg, err := LoadConfig()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
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

	components, err := ordering.Build(ctx, cfg.Orders, instruments)
	if err != nil {
		return err
	}
	defer components.Close()

	var orderWorkflows ordersports.WorkflowOrchestrator = ordersworkflows.NewInlineOrderWorkflows(components.Service)
	if temporalClient, err := ordering.DialTemporal(cfg.Orders, instruments, "temporal-client"); err != nil {
		logger.Warn("Temporal workflows unavailable, running order saga inline", slog.String("error", err.Error()))
	} else {
		defer temporalClient.Close()
		orderWorkflows = ordersworkflows.NewTemporalOrderWorkflows(temporalClient)
		logger.Info("Temporal workflows enabled", slog.String("namespace", cfg.Orders.TemporalNamespace))
	}

	router := NewRouter(ordershandler.NewOrdersAPI(components.Service, orderWorkflows))
	return serve(ctx, logger, ":"+cfg.Port, router)
}

// NewRouter mounts the orders routes with tracing and panic recovery.
func NewRouter(orders *ordershandler.OrdersAPI) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), otelgin.Middleware(serviceName))
	orders.RegisterRoutes(router)
	return router
}

func serve(ctx context.Context, logger *slog.Logger, addr string, handler http.Handler) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("orders API listening", slog.String("addr", addr))
		errCh <- server.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		logger.Error("orders API server exited", slog.String("addr", addr), slog.String("error", err.Error()))
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	logger.Info("orders API shutting down")
	return server.Shutdown(shutdownCtx)
}
