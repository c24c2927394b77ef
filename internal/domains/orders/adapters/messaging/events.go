package messaging

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	oteltrace "go.opentelemetry.io/otel/trace"

	"github.com/Apurer/go-order-saga/internal/domains/orders/domain"
)

const (
	EventOrderConfirmed = "order.confirmed"
	producerName        = "orders-api"
)

// Envelope wraps every published event.
type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

type OrderConfirmedPayload struct {
	OrderID     int64           `json:"order_id"`
	UserID      string          `json:"user_id"`
	Items       []ItemLine      `json:"items"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	CreatedAt   time.Time       `json:"created_at"`
}

type ItemLine struct {
	ProductID int64           `json:"product_id"`
	Quantity  int32           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

func newOrderConfirmedEnvelope(ctx context.Context, order *domain.Order, now time.Time) (Envelope, error) {
	items := order.Items()
	payload := OrderConfirmedPayload{
		OrderID:     order.ID,
		UserID:      order.UserID,
		Items:       make([]ItemLine, 0, len(items)),
		TotalAmount: order.TotalAmount(),
		CreatedAt:   order.CreatedAt,
	}
	for _, item := range items {
		payload.Items = append(payload.Items, ItemLine{ProductID: item.ProductID, Quantity: item.Quantity, UnitPrice: item.UnitPrice})
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}
	env := Envelope{
		EventID:       uuid.NewString(),
		EventType:     EventOrderConfirmed,
		EventVersion:  1,
		OccurredAt:    now.UTC(),
		Producer:      producerName,
		CorrelationID: payloadKey(order),
		Payload:       raw,
	}
	if spanCtx := oteltrace.SpanContextFromContext(ctx); spanCtx.HasTraceID() {
		env.TraceID = spanCtx.TraceID().String()
	}
	return env, nil
}
