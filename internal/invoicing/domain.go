// internal/invoicing/domain.go
package invoicing

import (
	"time"

	"github.com/google/uuid"
)

// Invoice is the immutable post-payment record of a purchase. Total always
// equals the sum of its line totals, and exactly one invoice exists per
// payment.
type Invoice struct {
	ID        uuid.UUID `json:"id"`
	PaymentID uuid.UUID `json:"payment_id"`
	IssuedAt  time.Time `json:"issued_at"`
	Total     int64     `json:"total"`
}

// Line freezes one purchased product at invoice time. UnitPrice is the
// product price at that moment, decoupled from later price changes.
type Line struct {
	ID        uuid.UUID `json:"id"`
	InvoiceID uuid.UUID `json:"invoice_id"`
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
	UnitPrice int64     `json:"unit_price"`
	LineTotal int64     `json:"line_total"`
}

// DetailRow is a line joined with the product's current display name.
type DetailRow struct {
	Line
	ProductName string `json:"product_name"`
}
