package types

import (
	"github.com/shopspring/decimal"

	"github.com/Apurer/go-order-saga/internal/domains/orders/domain"
)

// LineItemRequest is one requested product line. It is input only.
type LineItemRequest struct {
	ProductID   int64           `json:"productId"`
	ProductName string          `json:"productName"`
	Quantity    int32           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
}

// CreateOrderInput carries a create-order command. IdempotencyKey is optional.
type CreateOrderInput struct {
	UserID         string            `json:"userId"`
	Items          []LineItemRequest `json:"items"`
	IdempotencyKey string            `json:"idempotencyKey,omitempty"`
}

// FailureKind discriminates why order creation did not succeed.
type FailureKind string

const (
	FailureNone               FailureKind = "none"
	FailureEmptyOrder         FailureKind = "empty_order"
	FailureStockUnavailable   FailureKind = "stock_unavailable"
	FailureInvalidRequest     FailureKind = "invalid_request"
	FailureInvariantViolation FailureKind = "invariant_violation"
	FailurePersistence        FailureKind = "persistence"
	FailureCancelled          FailureKind = "cancelled"
)

// CreateOrderResult is the outcome of one saga run. Business failures are reported here, not as errors.
type CreateOrderResult struct {
	Success      bool          `json:"success"`
	Order        *domain.Order `json:"order,omitempty"`
	ErrorMessage string        `json:"errorMessage,omitempty"`
	Failure      FailureKind   `json:"failure"`
	// Compensations counts release calls issued by the rollback sweep.
	Compensations int `json:"compensations"`
	// Replayed is set when the result was served from an idempotency record.
	Replayed bool `json:"replayed,omitempty"`
}

// Succeeded builds a successful result.
func Succeeded(order *domain.Order) *CreateOrderResult {
	return &CreateOrderResult{Success: true, Order: order, Failure: FailureNone}
}

// Failed builds a failed result.
func Failed(kind FailureKind, message string, compensations int) *CreateOrderResult {
	return &CreateOrderResult{Failure: kind, ErrorMessage: message, Compensations: compensations}
}

// ReservationRecord remembers one confirmed reservation for the lifetime of a saga run.
type ReservationRecord struct {
	ProductID int64
	Quantity  int32
}
