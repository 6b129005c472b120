// internal/checkout/service.go
package checkout

import (
	"context"

	"github.com/google/uuid"
)

// Service defines the interface for the checkout process.
type Service interface {
	Checkout(ctx context.Context, userID uuid.UUID, method Method) (*Payment, error)
	GetPayment(ctx context.Context, id uuid.UUID) (*Payment, error)
	ListPayments(ctx context.Context) ([]*Payment, error)

	AttachCardDetail(ctx context.Context, paymentID uuid.UUID, number, holder, cvv, expiry string) (*CardDetail, error)
	AttachPaypalDetail(ctx context.Context, paymentID uuid.UUID, email, confirmationID string) (*PaypalDetail, error)
	AttachTransferDetail(ctx context.Context, paymentID uuid.UUID, holder, bank, account, receiptRef string) (*TransferDetail, error)

	GetCardDetail(ctx context.Context, paymentID uuid.UUID) (*CardDetail, error)
	GetPaypalDetail(ctx context.Context, paymentID uuid.UUID) (*PaypalDetail, error)
	GetTransferDetail(ctx context.Context, paymentID uuid.UUID) (*TransferDetail, error)
}
