// internal/shipping/status.go
package shipping

// ShipmentStatus is the delivery state of a shipment. Transitions are
// admin-only and unordered: any member of the valid set can be assigned
// from any current state, which allows manual correction.
type ShipmentStatus string

const (
	StatusPacking      ShipmentStatus = "Packing"
	StatusValidating   ShipmentStatus = "Validating"
	StatusOnTheWayHome ShipmentStatus = "OnTheWayHome"
	StatusDelivered    ShipmentStatus = "Delivered"
)

// ValidStatuses lists the accepted shipment states in their usual order.
var ValidStatuses = []ShipmentStatus{
	StatusPacking,
	StatusValidating,
	StatusOnTheWayHome,
	StatusDelivered,
}

// ValidStatus reports whether s is a member of the valid set.
func ValidStatus(s ShipmentStatus) bool {
	for _, v := range ValidStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// OrderStatus is the lifecycle state of an order record.
type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderPaid       OrderStatus = "paid"
	OrderShipped    OrderStatus = "shipped"
	OrderCancelled  OrderStatus = "cancelled"
)
