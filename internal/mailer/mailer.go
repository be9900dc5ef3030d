package mailer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/bandera-print/backoffice-api/internal/config"
	"github.com/bandera-print/backoffice-api/internal/domain"
)

// ErrNoRecipient is returned when the quote has no client email
var ErrNoRecipient = errors.New("client has no email address")

// Sender delivers composed messages. *gomail.Dialer satisfies it.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// Mailer sends quote summaries to clients over SMTP
type Mailer struct {
	sender   Sender
	from     string
	fromName string
	enabled  bool
	logger   *zap.Logger
}

// New creates a Mailer from the SMTP configuration
func New(cfg *config.MailConfig, logger *zap.Logger) *Mailer {
	dialer := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	return NewWithSender(dialer, cfg.From, cfg.FromName, cfg.Enabled, logger)
}

// NewWithSender creates a Mailer around an arbitrary Sender
func NewWithSender(sender Sender, from, fromName string, enabled bool, logger *zap.Logger) *Mailer {
	return &Mailer{sender: sender, from: from, fromName: fromName, enabled: enabled, logger: logger}
}

// Enabled reports whether mail delivery is configured
func (m *Mailer) Enabled() bool {
	return m != nil && m.enabled
}

// SendQuote emails the quote summary to the client. Internal comments are never included.
func (m *Mailer) SendQuote(ctx context.Context, q *domain.Quote) error {
	if !m.Enabled() {
		return nil
	}
	if q.ClientEmail == "" {
		return ErrNoRecipient
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", m.from, m.fromName)
	msg.SetAddressHeader("To", q.ClientEmail, q.ClientName)
	msg.SetHeader("Subject", fmt.Sprintf("Presupuesto %s", q.Number))
	msg.SetBody("text/plain", QuoteBody(q))

	if err := m.sender.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send quote %s: %w", q.Number, err)
	}
	m.logger.Info("quote emailed",
		zap.String("quoteID", q.ID.String()),
		zap.String("number", q.Number),
		zap.String("to", q.ClientEmail))
	return nil
}

// QuoteBody renders the plain text summary of a quote
func QuoteBody(q *domain.Quote) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hola %s,\n\n", q.ClientName)
	fmt.Fprintf(&b, "Le enviamos el presupuesto %s.\n\n", q.Number)
	for _, it := range q.Items {
		fmt.Fprintf(&b, "- %s x%d: %s\n", it.Description, it.Quantity, domain.FormatARS(it.Subtotal))
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "Subtotal: %s\n", domain.FormatARS(q.Subtotal))
	if q.Discount.IsPositive() {
		fmt.Fprintf(&b, "Descuento: %s\n", domain.FormatARS(q.Discount))
	}
	fmt.Fprintf(&b, "IVA: %s\n", domain.FormatARS(q.TaxAmount))
	fmt.Fprintf(&b, "Total: %s\n", domain.FormatARS(q.Total))
	if q.ValidUntil != nil {
		fmt.Fprintf(&b, "\nVálido hasta: %s\n", q.ValidUntil.Format("02/01/2006"))
	}
	if q.Notes != "" {
		fmt.Fprintf(&b, "\n%s\n", q.Notes)
	}
	public := q.PublicComments()
	if len(public) > 0 {
		b.WriteString("\nComentarios:\n")
		for _, c := range public {
			fmt.Fprintf(&b, "- %s\n", c.Text)
		}
	}
	return b.String()
}
