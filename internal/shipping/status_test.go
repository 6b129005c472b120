// internal/shipping/status_test.go
package shipping

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidStatus(t *testing.T) {
	for _, s := range ValidStatuses {
		assert.True(t, ValidStatus(s), "status %s", s)
	}

	assert.False(t, ValidStatus(ShipmentStatus("Shipped")))
	assert.False(t, ValidStatus(ShipmentStatus("packing")))
	assert.False(t, ValidStatus(ShipmentStatus("")))
}

func TestAddressComplete(t *testing.T) {
	full := Address{Street: "Calle 10 #5-51", City: "Bogota", Region: "Cundinamarca", PostalCode: "110111", Country: "CO"}
	assert.True(t, full.complete())

	partial := full
	partial.PostalCode = ""
	assert.False(t, partial.complete())

	assert.False(t, Address{}.complete())
}
