// internal/checkout/implementation.go
package checkout

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"phstore/internal/inventory"
	"phstore/internal/platform/apperr"
	"phstore/internal/platform/postgres"
)

// service implements the Service interface.
type service struct {
	db     *sql.DB
	ledger *inventory.Ledger
}

// NewService creates a new checkout service instance.
func NewService(db *sql.DB, ledger *inventory.Ledger) Service {
	return &service{db: db, ledger: ledger}
}

// Checkout turns the user's open cart into a completed payment. All steps
// run in one serializable transaction: the payment insert, one conditional
// stock decrement per line, the cart close and the rollover to a fresh
// empty cart. Any insufficient line rolls back the whole checkout, so
// stock is never partially decremented.
func (s *service) Checkout(ctx context.Context, userID uuid.UUID, method Method) (*Payment, error) {
	if !ValidMethod(method) {
		return nil, apperr.Newf(apperr.KindInvalidArgument, "unknown payment method %q", method)
	}

	payment := &Payment{
		ID:     uuid.New(),
		Method: method,
		Status: StatusCompleted,
		PaidAt: time.Now().UTC(),
	}

	err := postgres.Serializable(ctx, s.db, func(tx *sql.Tx) error {
		var cartID uuid.UUID
		var total int64
		err := tx.QueryRowContext(ctx, `
			SELECT id, total FROM carts
			WHERE user_id = $1 AND NOT processed
			FOR UPDATE
		`, userID).Scan(&cartID, &total)
		if err == sql.ErrNoRows {
			return apperr.New(apperr.KindInvalidState, "no cart found or already processed")
		}
		if err != nil {
			return fmt.Errorf("lock open cart: %w", err)
		}

		payment.CartID = cartID
		payment.Amount = total

		_, err = tx.ExecContext(ctx, `
			INSERT INTO payments (id, cart_id, amount, method, status, paid_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, payment.ID, payment.CartID, payment.Amount, payment.Method, payment.Status, payment.PaidAt)
		if err != nil {
			return fmt.Errorf("insert payment: %w", err)
		}

		rows, err := tx.QueryContext(ctx, `
			SELECT product_id, quantity FROM cart_items WHERE cart_id = $1
		`, cartID)
		if err != nil {
			return fmt.Errorf("load cart lines: %w", err)
		}
		type line struct {
			productID uuid.UUID
			quantity  int
		}
		var lines []line
		for rows.Next() {
			var l line
			if err := rows.Scan(&l.productID, &l.quantity); err != nil {
				rows.Close()
				return fmt.Errorf("scan cart line: %w", err)
			}
			lines = append(lines, l)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return fmt.Errorf("iterate cart lines: %w", err)
		}

		for _, l := range lines {
			if err := s.ledger.DecrementForSale(ctx, tx, l.productID, l.quantity); err != nil {
				return err
			}
		}

		if _, err := tx.ExecContext(ctx, `UPDATE carts SET processed = TRUE WHERE id = $1`, cartID); err != nil {
			return fmt.Errorf("close cart: %w", err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO carts (id, user_id, created_at, total, processed)
			VALUES ($1, $2, $3, 0, FALSE)
		`, uuid.New(), userID, time.Now().UTC())
		if err != nil {
			return fmt.Errorf("open fresh cart: %w", err)
		}

		return nil
	})
	if err != nil {
		var appErr *apperr.Error
		if errors.As(err, &appErr) {
			return nil, err
		}
		return nil, apperr.Internal(err)
	}

	return payment, nil
}

// GetPayment retrieves a payment by ID.
func (s *service) GetPayment(ctx context.Context, id uuid.UUID) (*Payment, error) {
	p := &Payment{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, cart_id, amount, method, status, paid_at
		FROM payments
		WHERE id = $1
	`, id).Scan(&p.ID, &p.CartID, &p.Amount, &p.Method, &p.Status, &p.PaidAt)
	if err == sql.ErrNoRows {
		return nil, apperr.Newf(apperr.KindNotFound, "payment %s not found", id)
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return p, nil
}

// ListPayments returns all payments, newest first.
func (s *service) ListPayments(ctx context.Context) ([]*Payment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, cart_id, amount, method, status, paid_at
		FROM payments
		ORDER BY paid_at DESC
	`)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	defer rows.Close()

	var payments []*Payment
	for rows.Next() {
		p := &Payment{}
		if err := rows.Scan(&p.ID, &p.CartID, &p.Amount, &p.Method, &p.Status, &p.PaidAt); err != nil {
			return nil, apperr.Internal(err)
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

// AttachCardDetail stores card material for a card payment. The number and
// CVV are hashed before they touch the database; the plaintext is gone by
// the time this returns.
func (s *service) AttachCardDetail(ctx context.Context, paymentID uuid.UUID, number, holder, cvv, expiry string) (*CardDetail, error) {
	payment, err := s.GetPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment.Method != MethodCard {
		return nil, apperr.New(apperr.KindInvalidState, "payment was not made by card")
	}

	detail := &CardDetail{
		ID:         uuid.New(),
		PaymentID:  paymentID,
		HolderName: holder,
		Expiry:     expiry,
	}
	if err := detail.CardNumber.Set(number); err != nil {
		return nil, fmt.Errorf("hash card number: %w", err)
	}
	if err := detail.CVV.Set(cvv); err != nil {
		return nil, fmt.Errorf("hash cvv: %w", err)
	}

	numberHash, numberSalt := detail.CardNumber.stored()
	cvvHash, cvvSalt := detail.CVV.stored()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO card_details (id, payment_id, number_hash, number_salt, cvv_hash, cvv_salt, holder_name, expiry)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, detail.ID, detail.PaymentID, numberHash, numberSalt, cvvHash, cvvSalt, detail.HolderName, detail.Expiry)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return nil, apperr.New(apperr.KindConflict, "payment already has card details")
		}
		return nil, apperr.Internal(err)
	}

	return detail, nil
}

// AttachPaypalDetail records a PayPal confirmation for a payment.
func (s *service) AttachPaypalDetail(ctx context.Context, paymentID uuid.UUID, email, confirmationID string) (*PaypalDetail, error) {
	payment, err := s.GetPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment.Method != MethodPaypal {
		return nil, apperr.New(apperr.KindInvalidState, "payment was not made by paypal")
	}
	if email == "" || confirmationID == "" {
		return nil, apperr.New(apperr.KindInvalidArgument, "email and confirmation id are required")
	}

	detail := &PaypalDetail{
		ID:             uuid.New(),
		PaymentID:      paymentID,
		Email:          email,
		ConfirmationID: confirmationID,
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO paypal_details (id, payment_id, email, confirmation_id)
		VALUES ($1, $2, $3, $4)
	`, detail.ID, detail.PaymentID, detail.Email, detail.ConfirmationID)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return nil, apperr.New(apperr.KindConflict, "payment already has paypal details")
		}
		return nil, apperr.Internal(err)
	}

	return detail, nil
}

// AttachTransferDetail records a bank transfer for a payment.
func (s *service) AttachTransferDetail(ctx context.Context, paymentID uuid.UUID, holder, bank, account, receiptRef string) (*TransferDetail, error) {
	payment, err := s.GetPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment.Method != MethodTransfer {
		return nil, apperr.New(apperr.KindInvalidState, "payment was not made by bank transfer")
	}
	if holder == "" || bank == "" || account == "" {
		return nil, apperr.New(apperr.KindInvalidArgument, "holder, bank and account number are required")
	}

	detail := &TransferDetail{
		ID:            uuid.New(),
		PaymentID:     paymentID,
		HolderName:    holder,
		BankName:      bank,
		AccountNumber: account,
		ReceiptRef:    receiptRef,
		TransferredAt: time.Now().UTC(),
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO transfer_details (id, payment_id, holder_name, bank_name, account_number, receipt_ref, transferred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, detail.ID, detail.PaymentID, detail.HolderName, detail.BankName, detail.AccountNumber, detail.ReceiptRef, detail.TransferredAt)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return nil, apperr.New(apperr.KindConflict, "payment already has transfer details")
		}
		return nil, apperr.Internal(err)
	}

	return detail, nil
}

// GetCardDetail loads card details for a payment. The hashes stay inside
// the Secret values; callers can only Verify against them.
func (s *service) GetCardDetail(ctx context.Context, paymentID uuid.UUID) (*CardDetail, error) {
	detail := &CardDetail{}
	var numberHash, numberSalt, cvvHash, cvvSalt string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, payment_id, number_hash, number_salt, cvv_hash, cvv_salt, holder_name, expiry
		FROM card_details
		WHERE payment_id = $1
	`, paymentID).Scan(&detail.ID, &detail.PaymentID, &numberHash, &numberSalt, &cvvHash, &cvvSalt, &detail.HolderName, &detail.Expiry)
	if err == sql.ErrNoRows {
		return nil, apperr.New(apperr.KindNotFound, "card details not found")
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}

	detail.CardNumber = restoreSecret(numberHash, numberSalt)
	detail.CVV = restoreSecret(cvvHash, cvvSalt)
	return detail, nil
}

// GetPaypalDetail loads PayPal details for a payment.
func (s *service) GetPaypalDetail(ctx context.Context, paymentID uuid.UUID) (*PaypalDetail, error) {
	detail := &PaypalDetail{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, payment_id, email, confirmation_id
		FROM paypal_details
		WHERE payment_id = $1
	`, paymentID).Scan(&detail.ID, &detail.PaymentID, &detail.Email, &detail.ConfirmationID)
	if err == sql.ErrNoRows {
		return nil, apperr.New(apperr.KindNotFound, "paypal details not found")
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return detail, nil
}

// GetTransferDetail loads bank transfer details for a payment.
func (s *service) GetTransferDetail(ctx context.Context, paymentID uuid.UUID) (*TransferDetail, error) {
	detail := &TransferDetail{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, payment_id, holder_name, bank_name, account_number, receipt_ref, transferred_at
		FROM transfer_details
		WHERE payment_id = $1
	`, paymentID).Scan(&detail.ID, &detail.PaymentID, &detail.HolderName, &detail.BankName, &detail.AccountNumber, &detail.ReceiptRef, &detail.TransferredAt)
	if err == sql.ErrNoRows {
		return nil, apperr.New(apperr.KindNotFound, "transfer details not found")
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return detail, nil
}
