package inventory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	inventoryhandler "github.com/Apurer/go-order-saga/internal/domains/inventory/adapters/http/handler"
	inventorymemory "github.com/Apurer/go-order-saga/internal/domains/inventory/adapters/memory"
	inventorypostgres "github.com/Apurer/go-order-saga/internal/domains/inventory/adapters/persistence/postgres"
	inventoryapp "github.com/Apurer/go-order-saga/internal/domains/inventory/application"
	inventoryports "github.com/Apurer/go-order-saga/internal/domains/inventory/ports"
	"github.com/Apurer/go-order-saga/internal/platform/migrations"
	platformobservability "github.com/Apurer/go-order-saga/internal/platform/observability"
	platformpostgres "github.com/Apurer/go-order-saga/internal/platform/postgres"
)

const serviceName = "inventory-api"

// Run boots the inventory authority HTTP API over the stock ledger.
func Run(ctx context.Context) error {
	cfg := LoadConfig()
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

	ledger, cleanup, err := buildLedger(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	service := inventoryapp.NewService(ledger, logger)
	if cfg.SeedCatalog {
		if err := inventoryapp.Seed(ctx, service, inventoryapp.DefaultCatalog); err != nil {
			return fmt.Errorf("seed catalog: %w", err)
		}
		logger.Info("inventory catalog seeded", slog.Int("products", len(inventoryapp.DefaultCatalog)))
	}

	router := NewRouter(inventoryhandler.NewInventoryAPI(service))
	server := &http.Server{Addr: ":" + cfg.Port, Handler: router, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("inventory API listening", slog.String("addr", server.Addr))
		errCh <- server.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// NewRouter mounts the inventory routes with tracing and panic recovery.
func NewRouter(api *inventoryhandler.InventoryAPI) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), otelgin.Middleware(serviceName))
	api.RegisterRoutes(router)
	return router
}

func buildLedger(ctx context.Context, cfg Config, logger *slog.Logger) (inventoryports.Ledger, func(), error) {
	db, cleanup := platformpostgres.ConnectOrFallback(ctx, cfg.PostgresDSN, logger)
	if db == nil {
		return inventorymemory.NewLedger(), cleanup, nil
	}
	if err := migrations.Run(db); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("migrate inventory schema: %w", err)
	}
	logger.Info("stock ledger configured with postgres")
	return inventorypostgres.NewLedger(db), cleanup, nil
}
