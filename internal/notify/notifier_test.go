// internal/notify/notifier_test.go
package notify

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testMailer() *Mailer {
	return NewMailer(SMTPConfig{
		Host: "localhost",
		Port: "2525",
		From: "store@phstore.local",
	}, zap.NewNop())
}

func TestRenderInvoiceEmail(t *testing.T) {
	m := testMailer()
	msg := string(m.render("buyer@example.com", InvoiceEmail{
		InvoiceID:      "inv-1",
		FormattedDate:  "2026-09-01 10:30:00",
		FormattedTotal: "$3200",
		Lines: []InvoiceLine{
			{ProductName: "Aspirin", Quantity: 3, UnitPrice: 800, LineTotal: 2400},
			{ProductName: "Gauze", Quantity: 2, UnitPrice: 400, LineTotal: 800},
		},
	}))

	assert.True(t, strings.HasPrefix(msg, "From: store@phstore.local\r\n"))
	assert.Contains(t, msg, "To: buyer@example.com\r\n")
	assert.Contains(t, msg, "Subject: Purchase Invoice inv-1\r\n")
	assert.Contains(t, msg, "3 x Aspirin @ 800 = 2400")
	assert.Contains(t, msg, "2 x Gauze @ 400 = 800")
	assert.Contains(t, msg, "Total: $3200")
}

func TestMailerBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	m := testMailer() // nothing listens on the configured port

	email := InvoiceEmail{InvoiceID: "inv-2"}
	for i := 0; i < 3; i++ {
		require.Error(t, m.SendInvoiceEmail(context.Background(), "buyer@example.com", email))
	}

	// After three straight failures the breaker rejects without dialing.
	err := m.SendInvoiceEmail(context.Background(), "buyer@example.com", email)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "circuit breaker is open")
}
