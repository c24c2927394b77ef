package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Apurer/go-order-saga/internal/domains/inventory/domain"
	"github.com/Apurer/go-order-saga/internal/domains/inventory/ports"
)

// ErrInvalidInput signals the request violated a ledger invariant.
var ErrInvalidInput = errors.New("invalid inventory input")

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrInvalidQuantity) ||
		errors.Is(err, domain.ErrInvalidProductID) ||
		errors.Is(err, domain.ErrEmptyName) ||
		errors.Is(err, domain.ErrNegativePrice) ||
		errors.Is(err, domain.ErrNegativeStock) ||
		errors.Is(err, domain.ErrStockOverflow) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return err
}

// Service fronts the stock ledger.
type Service struct {
	ledger ports.Ledger
	logger *slog.Logger
}

func NewService(ledger ports.Ledger, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{ledger: ledger, logger: logger}
}

func (s *Service) Reserve(ctx context.Context, productID int64, quantity int32) (domain.Result, error) {
	if quantity <= 0 {
		return domain.Result{}, mapError(domain.ErrInvalidQuantity)
	}
	result, err := s.ledger.Reserve(ctx, productID, quantity)
	if err != nil {
		return domain.Result{}, mapError(err)
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "stock reservation",
		slog.Int64("product_id", productID),
		slog.Int("quantity", int(quantity)),
		slog.String("outcome", string(result.Outcome)),
		slog.Int("available", int(result.Available)),
	)
	return result, nil
}

func (s *Service) Release(ctx context.Context, productID int64, quantity int32) (domain.Result, error) {
	if quantity <= 0 {
		return domain.Result{}, mapError(domain.ErrInvalidQuantity)
	}
	result, err := s.ledger.Release(ctx, productID, quantity)
	if err != nil {
		return domain.Result{}, mapError(err)
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "stock release",
		slog.Int64("product_id", productID),
		slog.Int("quantity", int(quantity)),
		slog.String("outcome", string(result.Outcome)),
	)
	return result, nil
}

func (s *Service) GetProduct(ctx context.Context, productID int64) (*domain.StockEntry, error) {
	return s.ledger.Get(ctx, productID)
}

func (s *Service) ListProducts(ctx context.Context) ([]*domain.StockEntry, error) {
	return s.ledger.List(ctx)
}

func (s *Service) Provision(ctx context.Context, input ports.ProvisionInput) (*domain.StockEntry, error) {
	entry, err := domain.NewStockEntry(input.ProductID, input.Name, input.Price, input.Quantity)
	if err != nil {
		return nil, mapError(err)
	}
	saved, err := s.ledger.Provision(ctx, entry)
	if err != nil {
		return nil, mapError(err)
	}
	return saved, nil
}

var _ ports.Service = (*Service)(nil)
