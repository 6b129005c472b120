// internal/checkout/domain.go
package checkout

import (
	"time"

	"github.com/google/uuid"
)

// Method is the payment method recorded at checkout.
type Method string

const (
	MethodCard     Method = "card"
	MethodPaypal   Method = "paypal"
	MethodTransfer Method = "bank_transfer"
)

// ValidMethod reports whether m is one of the accepted payment methods.
func ValidMethod(m Method) bool {
	return m == MethodCard || m == MethodPaypal || m == MethodTransfer
}

// Status is the settlement state of a payment. There is no gateway
// integration; payments are recorded as completed synchronously.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusRejected  Status = "rejected"
)

// Payment finalizes exactly one cart. Amount equals the cart total at the
// moment of checkout; the record is immutable afterwards.
type Payment struct {
	ID     uuid.UUID `json:"id"`
	CartID uuid.UUID `json:"cart_id"`
	Amount int64     `json:"amount"`
	Method Method    `json:"method"`
	Status Status    `json:"status"`
	PaidAt time.Time `json:"paid_at"`
}

// CardDetail stores card material for a payment. Only hashes of the card
// number and CVV are ever persisted.
type CardDetail struct {
	ID         uuid.UUID `json:"id"`
	PaymentID  uuid.UUID `json:"payment_id"`
	CardNumber Secret    `json:"-"`
	CVV        Secret    `json:"-"`
	HolderName string    `json:"holder_name"`
	Expiry     string    `json:"expiry"`
}

// PaypalDetail records a PayPal confirmation for a payment.
type PaypalDetail struct {
	ID             uuid.UUID `json:"id"`
	PaymentID      uuid.UUID `json:"payment_id"`
	Email          string    `json:"email"`
	ConfirmationID string    `json:"confirmation_id"`
}

// TransferDetail records a bank transfer for a payment.
type TransferDetail struct {
	ID            uuid.UUID `json:"id"`
	PaymentID     uuid.UUID `json:"payment_id"`
	HolderName    string    `json:"holder_name"`
	BankName      string    `json:"bank_name"`
	AccountNumber string    `json:"account_number"`
	ReceiptRef    string    `json:"receipt_ref"`
	TransferredAt time.Time `json:"transferred_at"`
}
