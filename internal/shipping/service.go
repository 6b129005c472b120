// internal/shipping/service.go
package shipping

import (
	"context"

	"github.com/google/uuid"

	"phstore/internal/identity"
)

// Service defines the interface for shipment and order tracking.
type Service interface {
	CreateShipment(ctx context.Context, userID, invoiceID uuid.UUID, address Address) (*Shipment, *Order, error)
	UpdateShipmentStatus(ctx context.Context, role identity.Role, shipmentID uuid.UUID, newStatus ShipmentStatus) error
	GetShipmentStatus(ctx context.Context, userID uuid.UUID, role identity.Role, orderID uuid.UUID) (*StatusView, error)
	ListShipments(ctx context.Context) ([]*AdminRow, error)
}
