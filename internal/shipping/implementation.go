// internal/shipping/implementation.go
package shipping

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"phstore/internal/identity"
	"phstore/internal/platform/apperr"
	"phstore/internal/platform/postgres"
)

// Shipments are stamped in the store's home timezone, like invoices.
const shipmentTimezone = "America/Bogota"

// service implements the Service interface.
type service struct {
	db       *sql.DB
	location *time.Location
}

// NewService creates a new shipping service instance.
func NewService(db *sql.DB) (Service, error) {
	location, err := time.LoadLocation(shipmentTimezone)
	if err != nil {
		return nil, fmt.Errorf("load shipment timezone: %w", err)
	}
	return &service{db: db, location: location}, nil
}

// CreateShipment creates the shipment and its order record for an invoice.
// The order total is recomputed from the stored invoice lines and checked
// against the invoice header; a mismatch means the data is corrupt and the
// shipment is refused.
func (s *service) CreateShipment(ctx context.Context, userID, invoiceID uuid.UUID, address Address) (*Shipment, *Order, error) {
	if !address.complete() {
		return nil, nil, apperr.New(apperr.KindInvalidArgument, "all address fields are required")
	}

	var invoiceTotal int64
	var paymentID uuid.UUID
	err := s.db.QueryRowContext(ctx, `
		SELECT i.total, p.id
		FROM invoices i
		JOIN payments p ON p.id = i.payment_id
		JOIN carts c ON c.id = p.cart_id
		WHERE i.id = $1
	`, invoiceID).Scan(&invoiceTotal, &paymentID)
	if err == sql.ErrNoRows {
		return nil, nil, apperr.Newf(apperr.KindNotFound, "invoice %s not found", invoiceID)
	}
	if err != nil {
		return nil, nil, apperr.Internal(err)
	}

	var lineSum sql.NullInt64
	err = s.db.QueryRowContext(ctx, `
		SELECT SUM(line_total) FROM invoice_items WHERE invoice_id = $1
	`, invoiceID).Scan(&lineSum)
	if err != nil {
		return nil, nil, apperr.Internal(err)
	}
	if lineSum.Int64 != invoiceTotal {
		return nil, nil, apperr.Newf(apperr.KindInconsistent,
			"invoice total %d does not match its line items (%d)", invoiceTotal, lineSum.Int64)
	}

	now := time.Now().In(s.location)
	shipment := &Shipment{
		ID:        uuid.New(),
		Address:   address,
		Status:    StatusPacking,
		CreatedAt: now,
		UserID:    userID,
		InvoiceID: invoiceID,
	}
	order := &Order{
		ID:        uuid.New(),
		UserID:    userID,
		InvoiceID: invoiceID,
		CreatedAt: now,
		Total:     lineSum.Int64,
		Status:    OrderShipped,
	}

	err = postgres.WithTx(ctx, s.db, nil, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO shipments (id, street, city, region, postal_code, country, status, created_at, user_id, invoice_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`, shipment.ID, address.Street, address.City, address.Region, address.PostalCode, address.Country,
			shipment.Status, shipment.CreatedAt, shipment.UserID, shipment.InvoiceID)
		if err != nil {
			return fmt.Errorf("insert shipment: %w", err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO orders (id, user_id, invoice_id, created_at, total, status)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, order.ID, order.UserID, order.InvoiceID, order.CreatedAt, order.Total, order.Status)
		if err != nil {
			return fmt.Errorf("insert order: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, apperr.Internal(err)
	}

	return shipment, order, nil
}

// UpdateShipmentStatus sets a shipment's delivery state. Admin only; the
// target must be a member of the valid set but no ordering is enforced.
func (s *service) UpdateShipmentStatus(ctx context.Context, role identity.Role, shipmentID uuid.UUID, newStatus ShipmentStatus) error {
	if role != identity.RoleAdmin {
		return apperr.New(apperr.KindForbidden, "admin role required")
	}
	if !ValidStatus(newStatus) {
		return apperr.Newf(apperr.KindInvalidArgument, "invalid status %q", newStatus)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE shipments SET status = $1, updated_at = $2 WHERE id = $3
	`, newStatus, time.Now().UTC(), shipmentID)
	if err != nil {
		return apperr.Internal(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.Newf(apperr.KindNotFound, "shipment %s not found", shipmentID)
	}
	return nil
}

// GetShipmentStatus returns the tracking view for an order. Customers are
// scoped to their own shipments; a foreign or missing shipment surfaces as
// the same generic not-found error so existence is not leaked.
func (s *service) GetShipmentStatus(ctx context.Context, userID uuid.UUID, role identity.Role, orderID uuid.UUID) (*StatusView, error) {
	query := `
		SELECT sh.id, sh.status, sh.created_at, sh.updated_at,
		       sh.street, sh.city, sh.region, sh.postal_code, sh.country,
		       sh.invoice_id, sh.user_id, u.name
		FROM shipments sh
		JOIN invoices i ON i.id = sh.invoice_id
		JOIN orders o ON o.invoice_id = i.id
		JOIN users u ON u.id = sh.user_id
		WHERE o.id = $1
	`
	args := []interface{}{orderID}
	if role != identity.RoleAdmin {
		query += ` AND sh.user_id = $2`
		args = append(args, userID)
	}

	view := &StatusView{}
	var updatedAt sql.NullTime
	err := s.db.QueryRowContext(ctx, query, args...).Scan(
		&view.ShipmentID,
		&view.Status,
		&view.CreatedAt,
		&updatedAt,
		&view.Address.Street,
		&view.Address.City,
		&view.Address.Region,
		&view.Address.PostalCode,
		&view.Address.Country,
		&view.InvoiceID,
		&view.UserID,
		&view.UserName,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.New(apperr.KindNotFound, "shipment not found or no permission")
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if updatedAt.Valid {
		view.UpdatedAt = &updatedAt.Time
	}
	view.AvailableStatuses = ValidStatuses

	return view, nil
}

// ListShipments returns every shipment with its user's display name.
func (s *service) ListShipments(ctx context.Context) ([]*AdminRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT sh.id, sh.user_id, u.name, sh.status, sh.created_at, sh.invoice_id
		FROM shipments sh
		JOIN users u ON u.id = sh.user_id
		ORDER BY sh.created_at DESC
	`)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	defer rows.Close()

	var shipments []*AdminRow
	for rows.Next() {
		row := &AdminRow{}
		if err := rows.Scan(&row.ShipmentID, &row.UserID, &row.UserName, &row.Status, &row.CreatedAt, &row.InvoiceID); err != nil {
			return nil, apperr.Internal(err)
		}
		shipments = append(shipments, row)
	}
	return shipments, rows.Err()
}
