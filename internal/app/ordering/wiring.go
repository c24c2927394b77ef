package ordering

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	inventoryclient "github.com/Apurer/go-order-saga/internal/clients/http/inventory"
	inventorygw "github.com/Apurer/go-order-saga/internal/domains/orders/adapters/external/inventory"
	ordersmemory "github.com/Apurer/go-order-saga/internal/domains/orders/adapters/memory"
	"github.com/Apurer/go-order-saga/internal/domains/orders/adapters/messaging"
	ordersobs "github.com/Apurer/go-order-saga/internal/domains/orders/adapters/observability"
	orderspostgres "github.com/Apurer/go-order-saga/internal/domains/orders/adapters/persistence/postgres"
	ordersredis "github.com/Apurer/go-order-saga/internal/domains/orders/adapters/persistence/redis"
	ordersapp "github.com/Apurer/go-order-saga/internal/domains/orders/application"
	ordersports "github.com/Apurer/go-order-saga/internal/domains/orders/ports"
	"github.com/Apurer/go-order-saga/internal/platform/migrations"
	platformobservability "github.com/Apurer/go-order-saga/internal/platform/observability"
	platformpostgres "github.com/Apurer/go-order-saga/internal/platform/postgres"
	"github.com/Apurer/go-order-saga/internal/platform/redisx"
)

// Components is the wired orders context.
type Components struct {
	Service ordersports.Service
	closers []func()
}

// Close releases connections in reverse order of acquisition.
func (c *Components) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}

// Build wires the orders service with whichever backing stores are reachable, falling back to memory.
func Build(ctx context.Context, cfg Config, instruments *platformobservability.Instruments) (*Components, error) {
	logger := instruments.Logger
	components := &Components{}

	repo, err := buildRepository(ctx, cfg, logger, components)
	if err != nil {
		components.Close()
		return nil, err
	}
	idempotency := buildIdempotencyStore(ctx, cfg, logger, components)
	publisher := buildPublisher(cfg, logger, components)

	client, err := inventoryclient.NewInventoryClient(cfg.InventoryURL, &http.Client{Timeout: cfg.InventoryTimeout})
	if err != nil {
		components.Close()
		return nil, fmt.Errorf("inventory client: %w", err)
	}
	gateway := inventorygw.NewGateway(client,
		inventorygw.WithLogger(logger),
		inventorygw.WithReleaseMode(cfg.ReleaseMode),
	)
	if cfg.ReleaseMode == inventorygw.ReleaseModeNoop {
		logger.Warn("inventory release disabled, compensations will not return stock")
	}

	core := ordersapp.NewService(repo, gateway,
		ordersapp.WithIdempotencyStore(idempotency),
		ordersapp.WithEventPublisher(publisher),
		ordersapp.WithLogger(logger),
		ordersapp.WithSagaOptions(ordersapp.WithRollbackTimeout(cfg.RollbackTimeout)),
	)
	components.Service = ordersobs.New(core,
		ordersobs.WithLogger(logger),
		ordersobs.WithTracer(instruments.Tracer("internal.orders.application")),
		ordersobs.WithMeter(instruments.Meter("internal.orders.application")),
	)
	return components, nil
}

func buildRepository(ctx context.Context, cfg Config, logger *slog.Logger, c *Components) (ordersports.Repository, error) {
	db, cleanup := platformpostgres.ConnectOrFallback(ctx, cfg.PostgresDSN, logger)
	c.closers = append(c.closers, cleanup)
	if db == nil {
		return ordersmemory.NewRepository(), nil
	}
	if err := migrations.Run(db); err != nil {
		return nil, fmt.Errorf("migrate orders schema: %w", err)
	}
	logger.Info("order repository configured with postgres")
	return orderspostgres.NewRepository(db), nil
}

func buildIdempotencyStore(ctx context.Context, cfg Config, logger *slog.Logger, c *Components) ordersports.IdempotencyStore {
	rdb, cleanup := redisx.ConnectOrFallback(ctx, cfg.RedisAddr, logger)
	c.closers = append(c.closers, cleanup)
	if rdb == nil {
		return ordersmemory.NewIdempotencyStore(cfg.IdempotencyTTL)
	}
	return ordersredis.NewIdempotencyStore(rdb, cfg.IdempotencyTTL)
}

func buildPublisher(cfg Config, logger *slog.Logger, c *Components) ordersports.EventPublisher {
	if len(cfg.KafkaBrokers) == 0 {
		logger.Info("KAFKA_BROKERS not set, order events written to the log")
		return messaging.NewLogPublisher(logger)
	}
	publisher := messaging.NewKafkaPublisher(messaging.NewKafkaWriter(cfg.KafkaBrokers, cfg.KafkaOrderTopic))
	c.closers = append(c.closers, func() {
		if err := publisher.Close(); err != nil {
			logger.Warn("failed to close kafka writer", slog.String("error", err.Error()))
		}
	})
	logger.Info("order events published to kafka", slog.String("topic", cfg.KafkaOrderTopic))
	return publisher
}
