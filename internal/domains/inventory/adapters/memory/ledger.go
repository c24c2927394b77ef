package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/Apurer/go-order-saga/internal/domains/inventory/domain"
	"github.com/Apurer/go-order-saga/internal/domains/inventory/ports"
)

var _ ports.Ledger = (*Ledger)(nil)

// Ledger keeps stock in memory. A single mutex serialises every check-and-decrement.
type Ledger struct {
	mu      sync.Mutex
	entries map[int64]*domain.StockEntry
	nextID  int64
}

func NewLedger() *Ledger {
	return &Ledger{entries: map[int64]*domain.StockEntry{}}
}

func (l *Ledger) Reserve(_ context.Context, productID int64, quantity int32) (domain.Result, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	entry, ok := l.entries[productID]
	if !ok {
		return domain.NotFound(productID, quantity), nil
	}
	return entry.Reserve(quantity)
}

func (l *Ledger) Release(_ context.Context, productID int64, quantity int32) (domain.Result, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	entry, ok := l.entries[productID]
	if !ok {
		return domain.NotFound(productID, quantity), nil
	}
	return entry.Release(quantity)
}

func (l *Ledger) Get(_ context.Context, productID int64) (*domain.StockEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	entry, ok := l.entries[productID]
	if !ok {
		return nil, ports.ErrNotFound
	}
	clone := *entry
	return &clone, nil
}

func (l *Ledger) List(_ context.Context) ([]*domain.StockEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	list := make([]*domain.StockEntry, 0, len(l.entries))
	for _, entry := range l.entries {
		clone := *entry
		list = append(list, &clone)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ProductID < list[j].ProductID })
	return list, nil
}

func (l *Ledger) Provision(_ context.Context, entry *domain.StockEntry) (*domain.StockEntry, error) {
	if entry == nil {
		return nil, errors.New("stock entry is nil")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	clone := *entry
	if clone.ProductID == 0 {
		l.nextID++
		for l.entries[l.nextID] != nil {
			l.nextID++
		}
		clone.ProductID = l.nextID
	} else if _, exists := l.entries[clone.ProductID]; exists {
		return nil, fmt.Errorf("product %d already provisioned", clone.ProductID)
	} else if clone.ProductID > l.nextID {
		l.nextID = clone.ProductID
	}
	l.entries[clone.ProductID] = &clone
	saved := clone
	return &saved, nil
}
