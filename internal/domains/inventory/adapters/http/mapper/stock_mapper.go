package mapper

import (
	"github.com/shopspring/decimal"

	"github.com/Apurer/go-order-saga/internal/domains/inventory/domain"
	"github.com/Apurer/go-order-saga/internal/domains/inventory/ports"
)

// Product is the wire shape of a stock entry.
type Product struct {
	ID                int64           `json:"id"`
	Name              string          `json:"name"`
	Price             decimal.Decimal `json:"price"`
	AvailableQuantity int32           `json:"availableQuantity"`
}

// StockRequest is the body of reserve and release calls.
type StockRequest struct {
	ProductID int64 `json:"productId" binding:"required"`
	Quantity  int32 `json:"quantity"`
}

// StockResponse acknowledges an applied reserve or release.
type StockResponse struct {
	ProductID         int64  `json:"productId"`
	Quantity          int32  `json:"quantity"`
	AvailableQuantity int32  `json:"availableQuantity"`
	Status            string `json:"status"`
}

// ProvisionRequest adds a product to the catalogue.
type ProvisionRequest struct {
	ID       int64           `json:"id"`
	Name     string          `json:"name" binding:"required"`
	Price    decimal.Decimal `json:"price"`
	Quantity int32           `json:"availableQuantity"`
}

func FromDomain(entry *domain.StockEntry) Product {
	if entry == nil {
		return Product{}
	}
	return Product{
		ID:                entry.ProductID,
		Name:              entry.Name,
		Price:             entry.Price,
		AvailableQuantity: entry.Available,
	}
}

func FromDomainList(entries []*domain.StockEntry) []Product {
	out := make([]Product, 0, len(entries))
	for _, entry := range entries {
		out = append(out, FromDomain(entry))
	}
	return out
}

func FromResult(result domain.Result) StockResponse {
	return StockResponse{
		ProductID:         result.ProductID,
		Quantity:          result.Requested,
		AvailableQuantity: result.Available,
		Status:            string(result.Outcome),
	}
}

func ToProvisionInput(req ProvisionRequest) ports.ProvisionInput {
	return ports.ProvisionInput{
		ProductID: req.ID,
		Name:      req.Name,
		Price:     req.Price,
		Quantity:  req.Quantity,
	}
}
