package application

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"

	types "github.com/Apurer/go-order-saga/internal/domains/orders/application/types"
)

type normalizedCreateOrderInput struct {
	UserID string                `json:"userId"`
	Items  []normalizedLineInput `json:"items"`
}

type normalizedLineInput struct {
	ProductID   int64  `json:"productId"`
	ProductName string `json:"productName"`
	Quantity    int32  `json:"quantity"`
	UnitPrice   string `json:"unitPrice"`
}

// FingerprintCreateOrder builds a deterministic hash of the create-order payload (excluding the idempotency key).
// Line order is kept because it drives reservation order.
func FingerprintCreateOrder(input types.CreateOrderInput) (string, error) {
	normalized := normalizedCreateOrderInput{
		UserID: strings.TrimSpace(input.UserID),
		Items:  make([]normalizedLineInput, 0, len(input.Items)),
	}
	for _, item := range input.Items {
		normalized.Items = append(normalized.Items, normalizedLineInput{
			ProductID:   item.ProductID,
			ProductName: strings.TrimSpace(item.ProductName),
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice.String(),
		})
	}
	payload, err := json.Marshal(normalized)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}
