// internal/invoicing/service.go
package invoicing

import (
	"context"

	"github.com/google/uuid"
)

// Service defines the interface for the invoicing service.
type Service interface {
	// CreateInvoice persists the invoice and its lines, then sends the
	// invoice email. If only the notification fails, the invoice is still
	// returned alongside a notify error; it is already durable.
	CreateInvoice(ctx context.Context, paymentID uuid.UUID) (*Invoice, error)
	GetLatestInvoice(ctx context.Context, userID uuid.UUID) (*Invoice, error)
	ListInvoices(ctx context.Context) ([]*Invoice, error)
	InvoiceDetails(ctx context.Context, invoiceID uuid.UUID) ([]*DetailRow, error)
}
