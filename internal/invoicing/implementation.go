// internal/invoicing/implementation.go
package invoicing

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"phstore/internal/notify"
	"phstore/internal/platform/apperr"
	"phstore/internal/platform/postgres"
)

// Invoices are stamped in the store's home timezone, a business
// requirement; everything else in the system uses UTC.
const invoiceTimezone = "America/Bogota"

// service implements the Service interface.
type service struct {
	db       *sql.DB
	notifier notify.Notifier
	location *time.Location
}

// NewService creates a new invoicing service instance.
func NewService(db *sql.DB, notifier notify.Notifier) (Service, error) {
	location, err := time.LoadLocation(invoiceTimezone)
	if err != nil {
		return nil, fmt.Errorf("load invoice timezone: %w", err)
	}
	return &service{db: db, notifier: notifier, location: location}, nil
}

// CreateInvoice builds the authoritative invoice for a payment from its
// cart's line items. The invoice header and lines are committed in one
// transaction; the email goes out only after that commit, so a notify
// failure never rolls the invoice back.
func (s *service) CreateInvoice(ctx context.Context, paymentID uuid.UUID) (*Invoice, error) {
	var cartID, userID uuid.UUID
	var userEmail string
	err := s.db.QueryRowContext(ctx, `
		SELECT c.id, u.id, u.email
		FROM payments p
		JOIN carts c ON c.id = p.cart_id
		JOIN users u ON u.id = c.user_id
		WHERE p.id = $1
	`, paymentID).Scan(&cartID, &userID, &userEmail)
	if err == sql.ErrNoRows {
		return nil, apperr.Newf(apperr.KindNotFound, "payment %s not found", paymentID)
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}

	invoice := &Invoice{
		ID:        uuid.New(),
		PaymentID: paymentID,
		IssuedAt:  time.Now().In(s.location),
	}
	var emailLines []notify.InvoiceLine

	err = postgres.WithTx(ctx, s.db, nil, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, `
			SELECT ci.product_id, ci.quantity, p.price, p.name
			FROM cart_items ci
			JOIN products p ON p.id = ci.product_id
			WHERE ci.cart_id = $1
		`, cartID)
		if err != nil {
			return fmt.Errorf("load cart lines: %w", err)
		}

		var lines []*Line
		for rows.Next() {
			line := &Line{ID: uuid.New(), InvoiceID: invoice.ID}
			var productName string
			if err := rows.Scan(&line.ProductID, &line.Quantity, &line.UnitPrice, &productName); err != nil {
				rows.Close()
				return fmt.Errorf("scan cart line: %w", err)
			}
			line.LineTotal = int64(line.Quantity) * line.UnitPrice
			lines = append(lines, line)
			emailLines = append(emailLines, notify.InvoiceLine{
				ProductName: productName,
				Quantity:    line.Quantity,
				UnitPrice:   line.UnitPrice,
				LineTotal:   line.LineTotal,
			})
			invoice.Total += line.LineTotal
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return fmt.Errorf("iterate cart lines: %w", err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO invoices (id, payment_id, issued_at, total)
			VALUES ($1, $2, $3, $4)
		`, invoice.ID, invoice.PaymentID, invoice.IssuedAt, invoice.Total)
		if err != nil {
			if postgres.IsUniqueViolation(err) {
				return apperr.New(apperr.KindConflict, "payment already has an invoice")
			}
			return fmt.Errorf("insert invoice: %w", err)
		}

		for _, line := range lines {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO invoice_items (id, invoice_id, product_id, quantity, unit_price, line_total)
				VALUES ($1, $2, $3, $4, $5, $6)
			`, line.ID, line.InvoiceID, line.ProductID, line.Quantity, line.UnitPrice, line.LineTotal)
			if err != nil {
				return fmt.Errorf("insert invoice line: %w", err)
			}
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

	// Invoice is durable from here on. A notification failure is reported
	// as a partial success, never as an invoice failure.
	email := notify.InvoiceEmail{
		InvoiceID:      invoice.ID.String(),
		FormattedDate:  invoice.IssuedAt.Format("2006-01-02 15:04:05"),
		FormattedTotal: fmt.Sprintf("$%d", invoice.Total),
		Lines:          emailLines,
	}
	if err := s.notifier.SendInvoiceEmail(ctx, userEmail, email); err != nil {
		return invoice, apperr.Wrap(apperr.KindNotifyFailed, "invoice created but the email could not be sent", err)
	}

	return invoice, nil
}

// GetLatestInvoice returns the newest invoice belonging to the user.
func (s *service) GetLatestInvoice(ctx context.Context, userID uuid.UUID) (*Invoice, error) {
	invoice := &Invoice{}
	err := s.db.QueryRowContext(ctx, `
		SELECT i.id, i.payment_id, i.issued_at, i.total
		FROM invoices i
		JOIN payments p ON p.id = i.payment_id
		JOIN carts c ON c.id = p.cart_id
		WHERE c.user_id = $1
		ORDER BY i.issued_at DESC
		LIMIT 1
	`, userID).Scan(&invoice.ID, &invoice.PaymentID, &invoice.IssuedAt, &invoice.Total)
	if err == sql.ErrNoRows {
		return nil, apperr.New(apperr.KindNotFound, "no invoices found for this user")
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return invoice, nil
}

// ListInvoices returns all invoices, newest first.
func (s *service) ListInvoices(ctx context.Context) ([]*Invoice, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, payment_id, issued_at, total
		FROM invoices
		ORDER BY issued_at DESC
	`)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	defer rows.Close()

	var invoices []*Invoice
	for rows.Next() {
		invoice := &Invoice{}
		if err := rows.Scan(&invoice.ID, &invoice.PaymentID, &invoice.IssuedAt, &invoice.Total); err != nil {
			return nil, apperr.Internal(err)
		}
		invoices = append(invoices, invoice)
	}
	return invoices, rows.Err()
}

// InvoiceDetails returns the invoice's lines joined with product names.
func (s *service) InvoiceDetails(ctx context.Context, invoiceID uuid.UUID) ([]*DetailRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT ii.id, ii.invoice_id, ii.product_id, ii.quantity, ii.unit_price, ii.line_total, p.name
		FROM invoice_items ii
		JOIN products p ON p.id = ii.product_id
		WHERE ii.invoice_id = $1
	`, invoiceID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	defer rows.Close()

	var details []*DetailRow
	for rows.Next() {
		row := &DetailRow{}
		if err := rows.Scan(&row.ID, &row.InvoiceID, &row.ProductID, &row.Quantity, &row.UnitPrice, &row.LineTotal, &row.ProductName); err != nil {
			return nil, apperr.Internal(err)
		}
		details = append(details, row)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal(err)
	}
	if len(details) == 0 {
		return nil, apperr.New(apperr.KindNotFound, "no details found for this invoice")
	}
	return details, nil
}
