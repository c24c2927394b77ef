package messaging

import (
	"context"
	"log/slog"
	"time"

	"github.com/Apurer/go-order-saga/internal/domains/orders/domain"
	"github.com/Apurer/go-order-saga/internal/domains/orders/ports"
)

var _ ports.EventPublisher = (*LogPublisher)(nil)

// LogPublisher records events in the log when no broker is configured.
type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) PublishOrderConfirmed(ctx context.Context, order *domain.Order) error {
	env, err := newOrderConfirmedEnvelope(ctx, order, time.Now())
	if err != nil {
		return err
	}
	p.logger.LogAttrs(ctx, slog.LevelInfo, "order event",
		slog.String("event_type", env.EventType),
		slog.String("event_id", env.EventID),
		slog.Int64("order_id", order.ID),
		slog.String("payload", string(env.Payload)),
	)
	return nil
}
