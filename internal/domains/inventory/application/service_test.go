package application

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/go-order-saga/internal/domains/inventory/adapters/memory"
	"github.com/Apurer/go-order-saga/internal/domains/inventory/domain"
	"github.com/Apurer/go-order-saga/internal/domains/inventory/ports"
)

func seeded(t *testing.T) *Service {
	t.Helper()
	svc := NewService(memory.NewLedger(), nil)
	require.NoError(t, Seed(context.Background(), svc, DefaultCatalog))
	return svc
}

func TestSeed_IsRepeatable(t *testing.T) {
	svc := seeded(t)
	require.NoError(t, Seed(context.Background(), svc, DefaultCatalog))

	products, err := svc.ListProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 3)
	require.Equal(t, "Laptop", products[0].Name)
}

func TestReserve_RejectsNonPositiveQuantity(t *testing.T) {
	svc := seeded(t)

	_, err := svc.Reserve(context.Background(), 1, 0)
	require.ErrorIs(t, err, ErrInvalidInput)
	require.ErrorIs(t, err, domain.ErrInvalidQuantity)

	_, err = svc.Release(context.Background(), 1, -1)
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestReserve_ReportsOutcomes(t *testing.T) {
	svc := seeded(t)

	result, err := svc.Reserve(context.Background(), 1, 2)
	require.NoError(t, err)
	require.Equal(t, domain.OutcomeReserved, result.Outcome)
	require.Equal(t, int32(8), result.Available)

	result, err = svc.Reserve(context.Background(), 1, 100)
	require.NoError(t, err)
	require.Equal(t, domain.OutcomeInsufficientStock, result.Outcome)

	result, err = svc.Reserve(context.Background(), 99, 1)
	require.NoError(t, err)
	require.Equal(t, domain.OutcomeNotFound, result.Outcome)
}

func TestProvision_Validates(t *testing.T) {
	svc := seeded(t)

	_, err := svc.Provision(context.Background(), ports.ProvisionInput{Name: "", Price: decimal.NewFromInt(1), Quantity: 1})
	require.ErrorIs(t, err, ErrInvalidInput)

	entry, err := svc.Provision(context.Background(), ports.ProvisionInput{Name: "Monitor", Price: decimal.NewFromInt(150), Quantity: 4})
	require.NoError(t, err)
	require.Equal(t, int64(4), entry.ProductID)
}
