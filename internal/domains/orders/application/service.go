package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	types "github.com/Apurer/go-order-saga/internal/domains/orders/application/types"
	"github.com/Apurer/go-order-saga/internal/domains/orders/domain"
	"github.com/Apurer/go-order-saga/internal/domains/orders/ports"
)

// Service orchestrates the orders bounded context use cases.
type Service struct {
	repo        ports.Repository
	saga        *Saga
	idempotency ports.IdempotencyStore
	events      ports.EventPublisher
	logger      *slog.Logger
	sagaOpts    []SagaOption
}

// Option customises the Service.
type Option func(*Service)

// WithIdempotencyStore enables replay of create-order requests carrying an idempotency key.
func WithIdempotencyStore(store ports.IdempotencyStore) Option {
	return func(s *Service) { s.idempotency = store }
}

// WithEventPublisher announces confirmed orders.
func WithEventPublisher(publisher ports.EventPublisher) Option {
	return func(s *Service) { s.events = publisher }
}

// WithLogger sets the logger for the service and its saga.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
			s.sagaOpts = append(s.sagaOpts, WithSagaLogger(logger))
		}
	}
}

// WithSagaOptions forwards options to the underlying saga.
func WithSagaOptions(opts ...SagaOption) Option {
	return func(s *Service) { s.sagaOpts = append(s.sagaOpts, opts...) }
}

// NewService wires the orders service with its dependencies.
func NewService(repo ports.Repository, inventory ports.InventoryGateway, opts ...Option) *Service {
	s := &Service{repo: repo, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	s.saga = NewSaga(inventory, repo, s.sagaOpts...)
	return s
}

// CreateOrder runs the saga. Business failures come back on the result; errors are reserved for
// idempotency conflicts and infrastructure faults that occur before the saga starts.
func (s *Service) CreateOrder(ctx context.Context, input types.CreateOrderInput) (*types.CreateOrderResult, error) {
	key := strings.TrimSpace(input.IdempotencyKey)
	useIdempotency := key != "" && s.idempotency != nil

	var requestHash string
	if useIdempotency {
		var err error
		requestHash, err = FingerprintCreateOrder(input)
		if err != nil {
			return nil, err
		}
		replayed, err := s.replay(ctx, key, requestHash)
		if err != nil || replayed != nil {
			return replayed, err
		}
	}

	result := s.saga.Execute(ctx, input.UserID, input.Items)
	if !result.Success {
		return result, nil
	}

	if useIdempotency {
		_, err := s.idempotency.Save(ctx, ports.IdempotencyRecord{
			Key:         key,
			RequestHash: requestHash,
			OrderID:     result.Order.ID,
		})
		if err != nil {
			s.logger.LogAttrs(ctx, slog.LevelWarn, "failed to record idempotency key",
				slog.Int64("order_id", result.Order.ID),
				slog.String("error", err.Error()),
			)
		}
	}
	s.publish(ctx, result.Order)
	return result, nil
}

func (s *Service) replay(ctx context.Context, key, requestHash string) (*types.CreateOrderResult, error) {
	record, err := s.idempotency.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, nil
	}
	if record.RequestHash != requestHash {
		return nil, fmt.Errorf("%w: key %q was used with a different request", ports.ErrIdempotencyConflict, key)
	}
	order, err := s.repo.GetByID(ctx, record.OrderID)
	if err != nil {
		return nil, err
	}
	result := types.Succeeded(order)
	result.Replayed = true
	return result, nil
}

func (s *Service) publish(ctx context.Context, order *domain.Order) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishOrderConfirmed(ctx, order); err != nil {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "failed to publish order confirmed event",
			slog.Int64("order_id", order.ID),
			slog.String("error", err.Error()),
		)
	}
}

// GetOrderByID loads a single order.
func (s *Service) GetOrderByID(ctx context.Context, id int64) (*domain.Order, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: order id must be greater than zero", ErrInvalidInput)
	}
	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapError(err)
	}
	return order, nil
}

// GetUserOrders lists the orders placed by a user, newest first.
func (s *Service) GetUserOrders(ctx context.Context, userID string) ([]*domain.Order, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, mapError(domain.ErrEmptyUserID)
	}
	orders, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, mapError(err)
	}
	return orders, nil
}

var _ ports.Service = (*Service)(nil)
