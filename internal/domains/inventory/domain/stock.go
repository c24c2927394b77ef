package domain

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Outcome classifies the result of a ledger mutation.
type Outcome string

const (
	OutcomeReserved          Outcome = "reserved"
	OutcomeReleased          Outcome = "released"
	OutcomeInsufficientStock Outcome = "insufficient_stock"
	OutcomeNotFound          Outcome = "not_found"
)

var (
	ErrInvalidProductID = errors.New("product id must be greater than zero")
	ErrInvalidQuantity  = errors.New("quantity must be greater than zero")
	ErrEmptyName        = errors.New("product name must not be empty")
	ErrNegativePrice    = errors.New("price must not be negative")
	ErrNegativeStock    = errors.New("stock quantity must not be negative")
	ErrStockOverflow    = errors.New("release would exceed the maximum stock quantity")
)

// StockEntry is the authoritative available quantity for one product.
type StockEntry struct {
	ProductID int64
	Name      string
	Price     decimal.Decimal
	Available int32
}

// NewStockEntry validates a product at provisioning time. A zero id asks the ledger to assign one.
func NewStockEntry(productID int64, name string, price decimal.Decimal, available int32) (*StockEntry, error) {
	entry := &StockEntry{
		ProductID: productID,
		Name:      strings.TrimSpace(name),
		Price:     price,
		Available: available,
	}
	if err := entry.Validate(); err != nil {
		return nil, err
	}
	return entry, nil
}

// Validate enforces the entry invariants.
func (e *StockEntry) Validate() error {
	if e.ProductID < 0 {
		return ErrInvalidProductID
	}
	if e.Name == "" {
		return ErrEmptyName
	}
	if e.Price.IsNegative() {
		return ErrNegativePrice
	}
	if e.Available < 0 {
		return ErrNegativeStock
	}
	return nil
}

// Reserve decrements the available quantity or leaves it untouched.
func (e *StockEntry) Reserve(quantity int32) (Result, error) {
	if quantity <= 0 {
		return Result{}, ErrInvalidQuantity
	}
	if quantity > e.Available {
		return Insufficient(e.ProductID, e.Name, e.Available, quantity), nil
	}
	e.Available -= quantity
	return Result{Outcome: OutcomeReserved, ProductID: e.ProductID, Requested: quantity, Available: e.Available}, nil
}

// Release returns quantity to the entry. It is not checked against earlier reservations,
// only against the int32 range.
func (e *StockEntry) Release(quantity int32) (Result, error) {
	if quantity <= 0 {
		return Result{}, ErrInvalidQuantity
	}
	if quantity > math.MaxInt32-e.Available {
		return Result{}, ErrStockOverflow
	}
	e.Available += quantity
	return Result{Outcome: OutcomeReleased, ProductID: e.ProductID, Requested: quantity, Available: e.Available}, nil
}

// Result describes a reserve or release outcome without using errors for expected rejections.
type Result struct {
	Outcome     Outcome
	ProductID   int64
	ProductName string
	Requested   int32
	Available   int32
}

// OK reports whether the ledger applied the mutation.
func (r Result) OK() bool {
	return r.Outcome == OutcomeReserved || r.Outcome == OutcomeReleased
}

// Message renders a human readable explanation of a rejection.
func (r Result) Message() string {
	switch r.Outcome {
	case OutcomeNotFound:
		return fmt.Sprintf("Product with ID %d not found", r.ProductID)
	case OutcomeInsufficientStock:
		return fmt.Sprintf("Insufficient stock for product '%s' (ID: %d). Available: %d, Requested: %d",
			r.ProductName, r.ProductID, r.Available, r.Requested)
	default:
		return string(r.Outcome)
	}
}

// NotFound builds the rejection for an unknown product.
func NotFound(productID int64, requested int32) Result {
	return Result{Outcome: OutcomeNotFound, ProductID: productID, Requested: requested}
}

// Insufficient builds the rejection for a reservation larger than the available stock.
func Insufficient(productID int64, name string, available, requested int32) Result {
	return Result{
		Outcome:     OutcomeInsufficientStock,
		ProductID:   productID,
		ProductName: name,
		Requested:   requested,
		Available:   available,
	}
}
