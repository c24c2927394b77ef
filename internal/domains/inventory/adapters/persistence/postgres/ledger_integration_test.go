//go:build integration

package postgres

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/go-order-saga/internal/domains/inventory/domain"
	"github.com/Apurer/go-order-saga/internal/domains/inventory/ports"
	"github.com/Apurer/go-order-saga/internal/platform/postgres/pgtest"
)

func provisioned(t *testing.T, available int32) (*Ledger, int64) {
	t.Helper()
	ledger := NewLedger(pgtest.Start(t))
	entry, err := domain.NewStockEntry(1, "Laptop", decimal.RequireFromString("999.99"), available)
	require.NoError(t, err)
	saved, err := ledger.Provision(context.Background(), entry)
	require.NoError(t, err)
	return ledger, saved.ProductID
}

func TestLedger_ReserveAndRelease(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ledger, id := provisioned(t, 5)
	ctx := context.Background()

	result, err := ledger.Reserve(ctx, id, 2)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeReserved, result.Outcome)
	assert.Equal(t, int32(3), result.Available)

	result, err = ledger.Reserve(ctx, id, 4)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeInsufficientStock, result.Outcome)
	assert.Equal(t, int32(3), result.Available)

	result, err = ledger.Release(ctx, id, 2)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeReleased, result.Outcome)
	assert.Equal(t, int32(5), result.Available)

	result, err = ledger.Reserve(ctx, 999, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeNotFound, result.Outcome)

	_, err = ledger.Get(ctx, 999)
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestLedger_ConcurrentReservationsNeverOversell(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ledger, id := provisioned(t, 10)
	var granted atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := ledger.Reserve(context.Background(), id, 1)
			assert.NoError(t, err)
			if result.OK() {
				granted.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(10), granted.Load())
	entry, err := ledger.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Zero(t, entry.Available)
}

func TestLedger_ProvisionAfterExplicitIDs(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ledger, _ := provisioned(t, 1)
	entry, err := domain.NewStockEntry(0, "Cable", decimal.NewFromInt(3), 7)
	require.NoError(t, err)

	saved, err := ledger.Provision(context.Background(), entry)
	require.NoError(t, err)
	assert.Equal(t, int64(2), saved.ProductID)

	list, err := ledger.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 2)
}
