package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/go-order-saga/internal/domains/inventory/domain"
	"github.com/Apurer/go-order-saga/internal/domains/inventory/ports"
)

var _ ports.Ledger = (*Ledger)(nil)

// Ledger keeps stock in PostgreSQL. Each reservation is a single conditional UPDATE, so the row
// lock taken by PostgreSQL serialises concurrent reservations of the same product.
type Ledger struct {
	db *gorm.DB
}

func NewLedger(db *gorm.DB) *Ledger {
	return &Ledger{db: db}
}

type stockRecord struct {
	ID                int64           `gorm:"primaryKey;column:id"`
	Name              string          `gorm:"column:name"`
	Price             decimal.Decimal `gorm:"column:price;type:numeric"`
	AvailableQuantity int32           `gorm:"column:available_quantity;check:chk_stock_available_non_negative,available_quantity >= 0"`
	CreatedAt         time.Time       `gorm:"column:created_at"`
	UpdatedAt         time.Time       `gorm:"column:updated_at"`
}

func (stockRecord) TableName() string { return "stock_items" }

func (l *Ledger) Reserve(ctx context.Context, productID int64, quantity int32) (domain.Result, error) {
	if err := l.ensureDB(); err != nil {
		return domain.Result{}, err
	}
	if quantity <= 0 {
		return domain.Result{}, domain.ErrInvalidQuantity
	}
	var updated stockRecord
	res := l.db.WithContext(ctx).Model(&updated).
		Clauses(clause.Returning{}).
		Where("id = ? AND available_quantity >= ?", productID, quantity).
		Updates(map[string]any{"available_quantity": gorm.Expr("available_quantity - ?", quantity)})
	if res.Error != nil {
		return domain.Result{}, res.Error
	}
	if res.RowsAffected == 1 {
		return domain.Result{
			Outcome:     domain.OutcomeReserved,
			ProductID:   productID,
			ProductName: updated.Name,
			Requested:   quantity,
			Available:   updated.AvailableQuantity,
		}, nil
	}

	var current stockRecord
	if err := l.db.WithContext(ctx).First(&current, "id = ?", productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.NotFound(productID, quantity), nil
		}
		return domain.Result{}, err
	}
	return domain.Insufficient(current.ID, current.Name, current.AvailableQuantity, quantity), nil
}

func (l *Ledger) Release(ctx context.Context, productID int64, quantity int32) (domain.Result, error) {
	if err := l.ensureDB(); err != nil {
		return domain.Result{}, err
	}
	if quantity <= 0 {
		return domain.Result{}, domain.ErrInvalidQuantity
	}
	var updated stockRecord
	res := l.db.WithContext(ctx).Model(&updated).
		Clauses(clause.Returning{}).
		Where("id = ?", productID).
		Updates(map[string]any{"available_quantity": gorm.Expr("available_quantity + ?", quantity)})
	if res.Error != nil {
		return domain.Result{}, res.Error
	}
	if res.RowsAffected == 0 {
		return domain.NotFound(productID, quantity), nil
	}
	return domain.Result{
		Outcome:     domain.OutcomeReleased,
		ProductID:   productID,
		ProductName: updated.Name,
		Requested:   quantity,
		Available:   updated.AvailableQuantity,
	}, nil
}

func (l *Ledger) Get(ctx context.Context, productID int64) (*domain.StockEntry, error) {
	if err := l.ensureDB(); err != nil {
		return nil, err
	}
	var record stockRecord
	if err := l.db.WithContext(ctx).First(&record, "id = ?", productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

func (l *Ledger) List(ctx context.Context) ([]*domain.StockEntry, error) {
	if err := l.ensureDB(); err != nil {
		return nil, err
	}
	var records []stockRecord
	if err := l.db.WithContext(ctx).Order("id ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	entries := make([]*domain.StockEntry, 0, len(records))
	for i := range records {
		entries = append(entries, records[i].toDomain())
	}
	return entries, nil
}

// Provision inserts a product. Explicit ids advance the id sequence so later generated ids do not collide.
func (l *Ledger) Provision(ctx context.Context, entry *domain.StockEntry) (*domain.StockEntry, error) {
	if err := l.ensureDB(); err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, errors.New("stock entry is nil")
	}
	record := stockRecord{
		ID:                entry.ProductID,
		Name:              entry.Name,
		Price:             entry.Price,
		AvailableQuantity: entry.Available,
	}
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&record).Error; err != nil {
			return err
		}
		if entry.ProductID == 0 {
			return nil
		}
		return tx.Exec(
			"SELECT setval(pg_get_serial_sequence('stock_items', 'id'), (SELECT MAX(id) FROM stock_items))",
		).Error
	})
	if err != nil {
		return nil, err
	}
	return record.toDomain(), nil
}

func (l *Ledger) ensureDB() error {
	if l == nil || l.db == nil {
		return errors.New("postgres stock ledger not configured")
	}
	return nil
}

func (r stockRecord) toDomain() *domain.StockEntry {
	return &domain.StockEntry{
		ProductID: r.ID,
		Name:      r.Name,
		Price:     r.Price,
		Available: r.AvailableQuantity,
	}
}
