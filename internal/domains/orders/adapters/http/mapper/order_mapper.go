package mapper

import (
	"time"

	"github.com/shopspring/decimal"

	types "github.com/Apurer/go-order-saga/internal/domains/orders/application/types"
	"github.com/Apurer/go-order-saga/internal/domains/orders/domain"
)

// CreateOrderRequest is the body of POST /api/orders.
type CreateOrderRequest struct {
	Items []LineItemRequest `json:"items"`
}

type LineItemRequest struct {
	ProductID   int64           `json:"productId"`
	ProductName string          `json:"productName"`
	Quantity    int32           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
}

// Order is the transport shape of the order aggregate.
type Order struct {
	ID          int64           `json:"id"`
	UserID      string          `json:"userId"`
	CreatedAt   time.Time       `json:"createdAt"`
	Status      string          `json:"status"`
	Items       []LineItem      `json:"items"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
}

type LineItem struct {
	ID          int64           `json:"id"`
	ProductID   int64           `json:"productId"`
	ProductName string          `json:"productName"`
	Quantity    int32           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	TotalPrice  decimal.Decimal `json:"totalPrice"`
}

// CreateOrderResponse is returned when the saga succeeded.
type CreateOrderResponse struct {
	Success bool  `json:"success"`
	Order   Order `json:"order"`
}

// ToCreateOrderInput converts a transport request into the application command.
func ToCreateOrderInput(userID, idempotencyKey string, req CreateOrderRequest) types.CreateOrderInput {
	items := make([]types.LineItemRequest, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, types.LineItemRequest{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		})
	}
	return types.CreateOrderInput{UserID: userID, Items: items, IdempotencyKey: idempotencyKey}
}

// FromDomainOrder converts a domain order to the transport representation.
func FromDomainOrder(order *domain.Order) Order {
	if order == nil {
		return Order{}
	}
	items := order.Items()
	out := Order{
		ID:          order.ID,
		UserID:      order.UserID,
		CreatedAt:   order.CreatedAt,
		Status:      string(order.Status),
		Items:       make([]LineItem, 0, len(items)),
		TotalAmount: order.TotalAmount(),
	}
	for _, item := range items {
		out.Items = append(out.Items, LineItem{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			TotalPrice:  item.TotalPrice(),
		})
	}
	return out
}

func FromDomainOrders(orders []*domain.Order) []Order {
	out := make([]Order, 0, len(orders))
	for _, order := range orders {
		out = append(out, FromDomainOrder(order))
	}
	return out
}
