package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	types "github.com/Apurer/go-order-saga/internal/domains/orders/application/types"
	"github.com/Apurer/go-order-saga/internal/domains/orders/domain"
	"github.com/Apurer/go-order-saga/internal/domains/orders/ports"
)

// DefaultRollbackTimeout bounds the compensation sweep once the caller context is gone.
const DefaultRollbackTimeout = 10 * time.Second

// Saga coordinates stock reservation, order construction and persistence with compensating releases.
// It holds no per-call state, so one Saga may serve concurrent requests.
type Saga struct {
	inventory       ports.InventoryGateway
	orders          ports.Repository
	logger          *slog.Logger
	now             func() time.Time
	rollbackTimeout time.Duration
}

// SagaOption customises a Saga.
type SagaOption func(*Saga)

// WithSagaLogger sets the logger used for compensation diagnostics.
func WithSagaLogger(logger *slog.Logger) SagaOption {
	return func(s *Saga) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the time source stamped on new orders.
func WithClock(now func() time.Time) SagaOption {
	return func(s *Saga) {
		if now != nil {
			s.now = now
		}
	}
}

// WithRollbackTimeout bounds the detached context used for releases.
func WithRollbackTimeout(timeout time.Duration) SagaOption {
	return func(s *Saga) {
		if timeout > 0 {
			s.rollbackTimeout = timeout
		}
	}
}

// NewSaga wires the saga with its gateway and order store.
func NewSaga(inventory ports.InventoryGateway, orders ports.Repository, opts ...SagaOption) *Saga {
	s := &Saga{
		inventory:       inventory,
		orders:          orders,
		logger:          slog.Default(),
		now:             time.Now,
		rollbackTimeout: DefaultRollbackTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Execute runs one order creation. It never returns an error: every failure is described by the result
// and every reservation taken before a failure has been released (best effort) by the time it returns.
// A panic during the saga is re-raised after the same release sweep.
func (s *Saga) Execute(ctx context.Context, userID string, items []types.LineItemRequest) *types.CreateOrderResult {
	if len(items) == 0 {
		return types.Failed(types.FailureEmptyOrder, domain.ErrEmptyOrder.Error(), 0)
	}
	if strings.TrimSpace(userID) == "" {
		return types.Failed(types.FailureInvalidRequest, domain.ErrEmptyUserID.Error(), 0)
	}
	for i, item := range items {
		if err := domain.ValidateLine(item.ProductID, item.Quantity, item.UnitPrice); err != nil {
			return types.Failed(types.FailureInvalidRequest, fmt.Sprintf("item %d: %v", i, err), 0)
		}
	}

	reservations := make([]types.ReservationRecord, 0, len(items))
	committed := false
	defer func() {
		if r := recover(); r != nil {
			if !committed {
				s.rollback(ctx, reservations)
			}
			panic(r)
		}
	}()

	for _, item := range items {
		if !s.inventory.ReserveStock(ctx, item.ProductID, item.Quantity) {
			released := s.rollback(ctx, reservations)
			if err := ctx.Err(); err != nil {
				return types.Failed(types.FailureCancelled, fmt.Sprintf("order creation cancelled: %v", err), released)
			}
			return types.Failed(types.FailureStockUnavailable,
				fmt.Sprintf("Failed to reserve stock for product %s", describeProduct(item)), released)
		}
		reservations = append(reservations, types.ReservationRecord{ProductID: item.ProductID, Quantity: item.Quantity})
	}

	order, err := s.buildOrder(userID, items)
	if err != nil {
		released := s.rollback(ctx, reservations)
		s.logger.LogAttrs(ctx, slog.LevelError, "order aggregate rejected reserved items",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
		return types.Failed(types.FailureInvariantViolation, err.Error(), released)
	}

	saved, err := s.orders.Add(ctx, order)
	if err != nil {
		released := s.rollback(ctx, reservations)
		if ctx.Err() != nil {
			return types.Failed(types.FailureCancelled, fmt.Sprintf("order creation cancelled: %v", err), released)
		}
		return types.Failed(types.FailurePersistence, fmt.Sprintf("failed to save order: %v", err), released)
	}
	committed = true
	return types.Succeeded(saved)
}

func (s *Saga) buildOrder(userID string, items []types.LineItemRequest) (*domain.Order, error) {
	order, err := domain.NewOrder(userID, s.now())
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		if err := order.AddItem(item.ProductID, item.ProductName, item.Quantity, item.UnitPrice); err != nil {
			return nil, err
		}
	}
	if err := order.Confirm(); err != nil {
		return nil, err
	}
	return order, nil
}

// rollback releases every recorded reservation and returns the number of release attempts.
// Failures are logged and never stop the sweep.
func (s *Saga) rollback(ctx context.Context, reservations []types.ReservationRecord) int {
	if len(reservations) == 0 {
		return 0
	}
	sweepCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.rollbackTimeout)
	defer cancel()

	for _, record := range reservations {
		if err := s.inventory.ReleaseStock(sweepCtx, record.ProductID, record.Quantity); err != nil {
			s.logger.LogAttrs(ctx, slog.LevelError, "failed to release reserved stock",
				slog.Int64("product_id", record.ProductID),
				slog.Int("quantity", int(record.Quantity)),
				slog.String("error", err.Error()),
			)
		}
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "order saga compensated",
		slog.Int("released", len(reservations)),
	)
	return len(reservations)
}

func describeProduct(item types.LineItemRequest) string {
	if name := strings.TrimSpace(item.ProductName); name != "" {
		return name
	}
	return fmt.Sprintf("%d", item.ProductID)
}
