// internal/cart/domain.go
package cart

import (
	"time"

	"github.com/google/uuid"
)

// Cart is the mutable pre-checkout collection of line items for one user.
// A user has at most one cart with Processed=false at any time; checkout is
// the only path that flips Processed.
type Cart struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	Total     int64     `json:"total"`
	Processed bool      `json:"processed"`
}

// LineItem is one (cart, product) row. Quantity is always > 0; setting a
// line to zero deletes the row instead.
type LineItem struct {
	ID        uuid.UUID `json:"id"`
	CartID    uuid.UUID `json:"cart_id"`
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

// ViewLine is a line item joined with its product for display.
type ViewLine struct {
	ProductID   uuid.UUID `json:"product_id"`
	Name        string    `json:"name"`
	Price       int64     `json:"price"`
	Stock       int       `json:"stock"`
	Description string    `json:"description"`
	ImageRef    string    `json:"image_ref,omitempty"`
	Quantity    int       `json:"quantity"`
}

// View is the active cart with its product-enriched lines.
type View struct {
	CartID uuid.UUID  `json:"cart_id"`
	Total  int64      `json:"total"`
	Lines  []ViewLine `json:"products"`
}
