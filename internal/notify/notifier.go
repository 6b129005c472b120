// internal/notify/notifier.go
package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// InvoiceLine is one row of the invoice email.
type InvoiceLine struct {
	ProductName string
	Quantity    int
	UnitPrice   int64
	LineTotal   int64
}

// InvoiceEmail is the rendered content of an invoice notification.
type InvoiceEmail struct {
	InvoiceID      string
	FormattedDate  string
	FormattedTotal string
	Lines          []InvoiceLine
}

// Notifier sends transactional messages to customers. Implementations must
// not be able to roll back the record that triggered the notification;
// failures are reported, not retried here.
type Notifier interface {
	SendInvoiceEmail(ctx context.Context, toAddress string, email InvoiceEmail) error
}

// SMTPConfig locates the outbound mail relay.
type SMTPConfig struct {
	Host     string
	Port     string
	From     string
	Username string
	Password string
}

// Mailer sends invoice emails over SMTP behind a circuit breaker, so a
// dead relay fails fast instead of stalling checkout responses.
type Mailer struct {
	cfg     SMTPConfig
	breaker *gobreaker.CircuitBreaker
	logger  *zap.Logger
}

func NewMailer(cfg SMTPConfig, logger *zap.Logger) *Mailer {
	return &Mailer{
		cfg:    cfg,
		logger: logger,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "invoice-mailer",
			Timeout: 30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 3
			},
		}),
	}
}

func (m *Mailer) SendInvoiceEmail(ctx context.Context, toAddress string, email InvoiceEmail) error {
	_, err := m.breaker.Execute(func() (interface{}, error) {
		msg := m.render(toAddress, email)
		addr := m.cfg.Host + ":" + m.cfg.Port

		var auth smtp.Auth
		if m.cfg.Username != "" {
			auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
		}
		return nil, smtp.SendMail(addr, auth, m.cfg.From, []string{toAddress}, msg)
	})
	if err != nil {
		m.logger.Warn("invoice email failed",
			zap.String("invoice_id", email.InvoiceID),
			zap.Error(err),
		)
		return fmt.Errorf("send invoice email: %w", err)
	}

	m.logger.Info("invoice email sent", zap.String("invoice_id", email.InvoiceID))
	return nil
}

func (m *Mailer) render(toAddress string, email InvoiceEmail) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", m.cfg.From)
	fmt.Fprintf(&b, "To: %s\r\n", toAddress)
	fmt.Fprintf(&b, "Subject: Purchase Invoice %s\r\n", email.InvoiceID)
	b.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")

	fmt.Fprintf(&b, "Invoice %s\nDate: %s\n\n", email.InvoiceID, email.FormattedDate)
	for _, line := range email.Lines {
		fmt.Fprintf(&b, "%d x %s @ %d = %d\n", line.Quantity, line.ProductName, line.UnitPrice, line.LineTotal)
	}
	fmt.Fprintf(&b, "\nTotal: %s\n", email.FormattedTotal)

	return []byte(b.String())
}
