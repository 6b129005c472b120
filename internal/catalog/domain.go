// internal/catalog/domain.go
package catalog

import (
	"github.com/google/uuid"
)

// Product represents an item for sale. Price is in integer currency units;
// stock is mutated only through the inventory ledger and checkout.
type Product struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Price       int64     `json:"price"`
	Stock       int       `json:"stock"`
	Description string    `json:"description"`
	ImageRef    string    `json:"image_ref,omitempty"`
	CategoryID  uuid.UUID `json:"category_id"`
}

// Category groups products for browsing.
type Category struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// lowStockThreshold marks products that need restocking.
const lowStockThreshold = 10
