package memory

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/go-order-saga/internal/domains/orders/domain"
	"github.com/Apurer/go-order-saga/internal/domains/orders/ports"
)

func confirmedOrder(t *testing.T, user string, createdAt time.Time) *domain.Order {
	t.Helper()
	order, err := domain.NewOrder(user, createdAt)
	require.NoError(t, err)
	require.NoError(t, order.AddItem(1, "Laptop", 1, decimal.NewFromInt(10)))
	require.NoError(t, order.AddItem(2, "Mouse", 2, decimal.NewFromInt(1)))
	require.NoError(t, order.Confirm())
	return order
}

func TestRepository_AddAssignsIdentifiers(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()

	first, err := repo.Add(ctx, confirmedOrder(t, "alice", time.Now()))
	require.NoError(t, err)
	second, err := repo.Add(ctx, confirmedOrder(t, "alice", time.Now()))
	require.NoError(t, err)

	require.Equal(t, int64(1), first.ID)
	require.Equal(t, int64(2), second.ID)
	require.Equal(t, []int64{1, 2}, []int64{first.Items()[0].ID, first.Items()[1].ID})
	require.Equal(t, int64(3), second.Items()[0].ID)
}

func TestRepository_GetByIDReturnsCopy(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()
	saved, err := repo.Add(ctx, confirmedOrder(t, "alice", time.Now()))
	require.NoError(t, err)

	loaded, err := repo.GetByID(ctx, saved.ID)
	require.NoError(t, err)
	require.NoError(t, loaded.Cancel())

	again, err := repo.GetByID(ctx, saved.ID)
	require.NoError(t, err)
	require.Equal(t, domain.StatusConfirmed, again.Status)
	require.True(t, again.TotalAmount().Equal(decimal.NewFromInt(12)))

	_, err = repo.GetByID(ctx, 404)
	require.ErrorIs(t, err, ports.ErrNotFound)
}

func TestRepository_ListByUserNewestFirst(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	older, err := repo.Add(ctx, confirmedOrder(t, "alice", base))
	require.NoError(t, err)
	newer, err := repo.Add(ctx, confirmedOrder(t, "alice", base.Add(time.Hour)))
	require.NoError(t, err)
	_, err = repo.Add(ctx, confirmedOrder(t, "bob", base))
	require.NoError(t, err)

	orders, err := repo.ListByUser(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, orders, 2)
	require.Equal(t, newer.ID, orders[0].ID)
	require.Equal(t, older.ID, orders[1].ID)

	none, err := repo.ListByUser(ctx, "carol")
	require.NoError(t, err)
	require.Empty(t, none)
}
