package domain

import (
	"encoding/json"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Status enumerates order progression.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusShipped   Status = "shipped"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

var (
	ErrEmptyUserID       = errors.New("user id must not be empty")
	ErrInvalidProductID  = errors.New("product id must be greater than zero")
	ErrInvalidQuantity   = errors.New("quantity must be greater than zero")
	ErrQuantityOverflow  = errors.New("merged quantity exceeds the maximum line quantity")
	ErrNegativeUnitPrice = errors.New("unit price must not be negative")
	ErrInvalidStatus     = errors.New("order status is invalid")
	ErrOrderNotPending   = errors.New("cannot modify an order that is no longer pending")
	ErrEmptyOrder        = errors.New("cannot confirm an empty order")
	ErrCannotCancel      = errors.New("cannot cancel an order that has shipped")
)

// LineItem is a product row inside an order.
type LineItem struct {
	ID          int64           `json:"id"`
	ProductID   int64           `json:"productId"`
	ProductName string          `json:"productName"`
	Quantity    int32           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
}

// TotalPrice is derived from quantity and unit price, never stored.
func (li LineItem) TotalPrice() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt32(li.Quantity))
}

// Order models the purchase order aggregate.
type Order struct {
	ID        int64
	UserID    string
	CreatedAt time.Time
	Status    Status

	items []LineItem
	total decimal.Decimal
}

// NewOrder starts a pending order for the given user.
func NewOrder(userID string, createdAt time.Time) (*Order, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrEmptyUserID
	}
	return &Order{
		UserID:    userID,
		CreatedAt: createdAt.UTC(),
		Status:    StatusPending,
		total:     decimal.Zero,
	}, nil
}

// Rehydrate rebuilds a persisted order. Items are taken as stored and not merged.
func Rehydrate(id int64, userID string, createdAt time.Time, status Status, items []LineItem) (*Order, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrEmptyUserID
	}
	if !isValidStatus(status) {
		return nil, ErrInvalidStatus
	}
	order := &Order{
		ID:        id,
		UserID:    userID,
		CreatedAt: createdAt,
		Status:    status,
		items:     append([]LineItem(nil), items...),
	}
	for _, item := range order.items {
		if err := ValidateLine(item.ProductID, item.Quantity, item.UnitPrice); err != nil {
			return nil, err
		}
	}
	order.recalculateTotal()
	return order, nil
}

// ValidateLine checks the invariants of a single line before it touches an order.
func ValidateLine(productID int64, quantity int32, unitPrice decimal.Decimal) error {
	if productID <= 0 {
		return ErrInvalidProductID
	}
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if unitPrice.IsNegative() {
		return ErrNegativeUnitPrice
	}
	return nil
}

// AddItem appends a line or merges it into an existing line for the same product.
func (o *Order) AddItem(productID int64, productName string, quantity int32, unitPrice decimal.Decimal) error {
	if o.Status != StatusPending {
		return ErrOrderNotPending
	}
	if err := ValidateLine(productID, quantity, unitPrice); err != nil {
		return err
	}
	for i := range o.items {
		if o.items[i].ProductID == productID {
			if quantity > math.MaxInt32-o.items[i].Quantity {
				return ErrQuantityOverflow
			}
			o.items[i].Quantity += quantity
			o.recalculateTotal()
			return nil
		}
	}
	o.items = append(o.items, LineItem{
		ProductID:   productID,
		ProductName: productName,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
	})
	o.recalculateTotal()
	return nil
}

// Confirm moves a pending order with at least one item to confirmed.
func (o *Order) Confirm() error {
	if o.Status != StatusPending {
		return ErrOrderNotPending
	}
	if len(o.items) == 0 {
		return ErrEmptyOrder
	}
	o.Status = StatusConfirmed
	return nil
}

// Cancel marks the order cancelled unless it already left the warehouse.
func (o *Order) Cancel() error {
	if o.Status == StatusShipped || o.Status == StatusDelivered {
		return ErrCannotCancel
	}
	o.Status = StatusCancelled
	return nil
}

// Items returns a copy of the order lines in insertion order.
func (o *Order) Items() []LineItem {
	return append([]LineItem(nil), o.items...)
}

// TotalAmount is the sum of the line totals.
func (o *Order) TotalAmount() decimal.Decimal {
	return o.total
}

// AssignIdentity records identifiers handed out by the order store.
func (o *Order) AssignIdentity(id int64, itemIDs []int64) {
	o.ID = id
	for i := range o.items {
		if i < len(itemIDs) {
			o.items[i].ID = itemIDs[i]
		}
	}
}

// Clone returns a deep copy, used by stores that must not share aggregates.
func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	clone := *o
	clone.items = o.Items()
	return &clone
}

// Snapshot is the serialisable form of an order, used when an aggregate crosses a process boundary.
type Snapshot struct {
	ID          int64           `json:"id"`
	UserID      string          `json:"userId"`
	CreatedAt   time.Time       `json:"createdAt"`
	Status      Status          `json:"status"`
	Items       []LineItem      `json:"items"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
}

// Snapshot captures the current state of the order.
func (o *Order) Snapshot() Snapshot {
	return Snapshot{
		ID:          o.ID,
		UserID:      o.UserID,
		CreatedAt:   o.CreatedAt,
		Status:      o.Status,
		Items:       o.Items(),
		TotalAmount: o.total,
	}
}

// MarshalJSON encodes the order through its snapshot.
func (o *Order) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.Snapshot())
}

// UnmarshalJSON rebuilds the order and recomputes the total from the items.
func (o *Order) UnmarshalJSON(data []byte) error {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return err
	}
	restored, err := Rehydrate(snap.ID, snap.UserID, snap.CreatedAt, snap.Status, snap.Items)
	if err != nil {
		return err
	}
	*o = *restored
	return nil
}

func (o *Order) recalculateTotal() {
	total := decimal.Zero
	for _, item := range o.items {
		total = total.Add(item.TotalPrice())
	}
	o.total = total
}

func isValidStatus(status Status) bool {
	switch status {
	case StatusPending, StatusConfirmed, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	default:
		return false
	}
}
