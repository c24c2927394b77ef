package application

import (
	"context"
	"errors"
	"sync"

	types "github.com/Apurer/go-order-saga/internal/domains/orders/application/types"
	"github.com/Apurer/go-order-saga/internal/domains/orders/domain"
	"github.com/Apurer/go-order-saga/internal/domains/orders/ports"
)

type fakeGateway struct {
	mu         sync.Mutex
	stock      map[int64]int32
	attempts   []int64
	released   []types.ReservationRecord
	releaseErr error
	onReserve  func(productID int64)
}

func newFakeGateway(stock map[int64]int32) *fakeGateway {
	return &fakeGateway{stock: stock}
}

func (g *fakeGateway) ReserveStock(ctx context.Context, productID int64, quantity int32) bool {
	if g.onReserve != nil {
		g.onReserve(productID)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.attempts = append(g.attempts, productID)
	if ctx.Err() != nil {
		return false
	}
	available, ok := g.stock[productID]
	if !ok || available < quantity {
		return false
	}
	g.stock[productID] = available - quantity
	return true
}

func (g *fakeGateway) ReleaseStock(ctx context.Context, productID int64, quantity int32) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.released = append(g.released, types.ReservationRecord{ProductID: productID, Quantity: quantity})
	if err := ctx.Err(); err != nil {
		return err
	}
	if g.releaseErr != nil {
		return g.releaseErr
	}
	g.stock[productID] += quantity
	return nil
}

func (g *fakeGateway) available(productID int64) int32 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.stock[productID]
}

type fakeRepo struct {
	mu     sync.Mutex
	nextID int64
	orders map[int64]*domain.Order
	addErr error
	onAdd  func()
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{orders: map[int64]*domain.Order{}}
}

func (r *fakeRepo) Add(_ context.Context, order *domain.Order) (*domain.Order, error) {
	if r.onAdd != nil {
		r.onAdd()
	}
	if r.addErr != nil {
		return nil, r.addErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	stored := order.Clone()
	itemIDs := make([]int64, len(stored.Items()))
	for i := range itemIDs {
		itemIDs[i] = r.nextID*100 + int64(i)
	}
	stored.AssignIdentity(r.nextID, itemIDs)
	r.orders[stored.ID] = stored
	return stored.Clone(), nil
}

func (r *fakeRepo) GetByID(_ context.Context, id int64) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return order.Clone(), nil
}

func (r *fakeRepo) ListByUser(_ context.Context, userID string) ([]*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*domain.Order
	for _, order := range r.orders {
		if order.UserID == userID {
			result = append(result, order.Clone())
		}
	}
	return result, nil
}

func (r *fakeRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.orders)
}

type fakeIdempotencyStore struct {
	records map[string]ports.IdempotencyRecord
}

func newFakeIdempotencyStore() *fakeIdempotencyStore {
	return &fakeIdempotencyStore{records: map[string]ports.IdempotencyRecord{}}
}

func (s *fakeIdempotencyStore) Get(_ context.Context, key string) (*ports.IdempotencyRecord, error) {
	record, ok := s.records[key]
	if !ok {
		return nil, nil
	}
	return &record, nil
}

func (s *fakeIdempotencyStore) Save(_ context.Context, record ports.IdempotencyRecord) (*ports.IdempotencyRecord, error) {
	if existing, ok := s.records[record.Key]; ok {
		if existing.RequestHash != record.RequestHash || existing.OrderID != record.OrderID {
			return &existing, ports.ErrIdempotencyConflict
		}
		return &existing, nil
	}
	s.records[record.Key] = record
	return &record, nil
}

type fakePublisher struct {
	published []int64
	err       error
}

func (p *fakePublisher) PublishOrderConfirmed(_ context.Context, order *domain.Order) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, order.ID)
	return nil
}

var errStoreDown = errors.New("database unavailable")
