package migrations

import (
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Run applies the schema for the orders and inventory contexts. Adapters do not migrate on their own.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	return db.AutoMigrate(
		&orderRecord{},
		&orderItemRecord{},
		&stockRecord{},
	)
}

// Order schema mirrors the orders Postgres adapter.
type orderRecord struct {
	ID          int64             `gorm:"primaryKey;column:id"`
	UserID      string            `gorm:"column:user_id;size:255;index:idx_orders_user_created"`
	Status      string            `gorm:"column:status;type:varchar(32)"`
	TotalAmount decimal.Decimal   `gorm:"column:total_amount;type:numeric"`
	ProductIDs  pq.Int64Array     `gorm:"column:product_ids;type:bigint[]"`
	Items       []orderItemRecord `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time         `gorm:"column:created_at;index:idx_orders_user_created"`
	UpdatedAt   time.Time         `gorm:"column:updated_at"`
}

func (orderRecord) TableName() string { return "orders" }

type orderItemRecord struct {
	ID          int64           `gorm:"primaryKey;column:id"`
	OrderID     int64           `gorm:"column:order_id;index"`
	ProductID   int64           `gorm:"column:product_id"`
	ProductName string          `gorm:"column:product_name"`
	Quantity    int32           `gorm:"column:quantity;check:chk_order_items_quantity_positive,quantity > 0"`
	UnitPrice   decimal.Decimal `gorm:"column:unit_price;type:numeric"`
}

func (orderItemRecord) TableName() string { return "order_items" }

// Stock schema mirrors the inventory Postgres ledger. The check constraint backs the no-oversell rule.
type stockRecord struct {
	ID                int64           `gorm:"primaryKey;column:id"`
	Name              string          `gorm:"column:name"`
	Price             decimal.Decimal `gorm:"column:price;type:numeric"`
	AvailableQuantity int32           `gorm:"column:available_quantity;check:chk_stock_available_non_negative,available_quantity >= 0"`
	CreatedAt         time.Time       `gorm:"column:created_at"`
	UpdatedAt         time.Time       `gorm:"column:updated_at"`
}

func (stockRecord) TableName() string { return "stock_items" }
