// internal/shipping/domain.go
package shipping

import (
	"time"

	"github.com/google/uuid"
)

// Address is the delivery destination of a shipment.
type Address struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	Region     string `json:"region"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

func (a Address) complete() bool {
	return a.Street != "" && a.City != "" && a.Region != "" && a.PostalCode != "" && a.Country != ""
}

// Shipment tracks delivery of one invoice. UpdatedAt stays nil until the
// first status transition.
type Shipment struct {
	ID        uuid.UUID      `json:"id"`
	Address   Address        `json:"address"`
	Status    ShipmentStatus `json:"status"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt *time.Time     `json:"updated_at,omitempty"`
	UserID    uuid.UUID      `json:"user_id"`
	InvoiceID uuid.UUID      `json:"invoice_id"`
}

// Order is the purchase record created alongside a shipment. Its total is
// recomputed from the invoice lines as a cross-check, never copied.
type Order struct {
	ID        uuid.UUID   `json:"id"`
	UserID    uuid.UUID   `json:"user_id"`
	InvoiceID uuid.UUID   `json:"invoice_id"`
	CreatedAt time.Time   `json:"created_at"`
	Total     int64       `json:"total"`
	Status    OrderStatus `json:"status"`
}

// StatusView is the full tracking picture returned to a customer or admin.
type StatusView struct {
	ShipmentID        uuid.UUID      `json:"shipment_id"`
	Status            ShipmentStatus `json:"status"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         *time.Time     `json:"updated_at,omitempty"`
	Address           Address        `json:"address"`
	InvoiceID         uuid.UUID      `json:"invoice_id"`
	UserID            uuid.UUID      `json:"user_id"`
	UserName          string         `json:"user_name"`
	AvailableStatuses []ShipmentStatus `json:"available_statuses"`
}

// AdminRow is one shipment in the admin listing.
type AdminRow struct {
	ShipmentID uuid.UUID      `json:"shipment_id"`
	UserID     uuid.UUID      `json:"user_id"`
	UserName   string         `json:"user_name"`
	Status     ShipmentStatus `json:"status"`
	CreatedAt  time.Time      `json:"created_at"`
	InvoiceID  uuid.UUID      `json:"invoice_id"`
}
