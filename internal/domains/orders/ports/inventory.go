package ports

import "context"

// InventoryGateway talks to the stock authority on behalf of the saga.
type InventoryGateway interface {
	// ReserveStock reports true only when the authority explicitly confirmed the reservation.
	ReserveStock(ctx context.Context, productID int64, quantity int32) bool
	// ReleaseStock returns previously reserved quantity to the authority.
	ReleaseStock(ctx context.Context, productID int64, quantity int32) error
}
