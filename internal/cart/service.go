// internal/cart/service.go
package cart

import (
	"context"

	"github.com/google/uuid"
)

// Service defines the interface for the cart aggregate.
type Service interface {
	GetOrCreateOpenCart(ctx context.Context, userID uuid.UUID) (*Cart, error)
	ActiveCartView(ctx context.Context, userID uuid.UUID) (*View, error)
	SetLineItemQuantity(ctx context.Context, userID, cartID, productID uuid.UUID, quantity int) (*Cart, error)
	RemoveLineItem(ctx context.Context, userID, cartID, productID uuid.UUID) error
}
