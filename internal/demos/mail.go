package demos

import (
	"context"
	"errors"
	"io"
	"net/mail"
	"strings"

	"github.com/a-h/templ"
	"github.com/conneroisu/practicals/internal/logging"
)

// Message is one outgoing email.
type Message struct {
	From    string
	To      string
	Subject string
	Body    string
	Headers map[string]string
}

// Mailer delivers messages. Delivery is best effort.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// ErrNoMailer is returned when a demo sends without a configured Mailer.
var ErrNoMailer = errors.New("no mailer configured")

// LogMailer records messages in the log instead of delivering them.
type LogMailer struct {
	logger logging.Logger
}

func NewLogMailer(logger logging.Logger) *LogMailer {
	return &LogMailer{logger: logger.WithComponent("mailer")}
}

func (m *LogMailer) Send(ctx context.Context, msg Message) error {
	m.logger.Info(ctx, "Mail accepted",
		"from", msg.From,
		"to", msg.To,
		"subject", msg.Subject,
		"bytes", len(msg.Body))
	return nil
}

// emailSpecials are the non-alphanumeric characters kept by SanitizeEmail.
const emailSpecials = "!#$%&'*+-=?^_`{|}~@.[]"

// SanitizeEmail trims the input and drops every character that cannot
// appear in an address: anything but ASCII letters, digits and
// !#$%&'*+-=?^_`{|}~@.[]
func SanitizeEmail(email string) string {
	email = strings.TrimSpace(email)
	var b strings.Builder
	b.Grow(len(email))
	for _, r := range email {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case strings.ContainsRune(emailSpecials, r):
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ValidEmail reports whether email is a single bare address.
func ValidEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return false
	}
	return addr.Name == "" && addr.Address == email && strings.Contains(addr.Address[strings.LastIndex(addr.Address, "@")+1:], ".")
}

func hasLineBreak(s string) bool {
	return strings.ContainsAny(s, "\r\n")
}

// SendSafeEmail sanitises and validates the recipient, rejects header
// injection and sends the message. It returns the sentence shown to the
// reader.
func SendSafeEmail(ctx context.Context, mailer Mailer, from, email, subject, message string) string {
	email = SanitizeEmail(email)

	if !ValidEmail(email) {
		return "Invalid email format."
	}

	if hasLineBreak(email) || hasLineBreak(subject) {
		return "Email headers contain invalid characters."
	}

	msg := Message{
		From:    from,
		To:      email,
		Subject: subject,
		Body:    message,
		Headers: map[string]string{
			"From":         from,
			"Reply-To":     from,
			"MIME-Version": "1.0",
			"Content-Type": "text/plain; charset=UTF-8",
		},
	}

	if err := send(ctx, mailer, msg); err != nil {
		return "Failed to send email."
	}
	return "Email sent successfully to " + email + "."
}

func send(ctx context.Context, mailer Mailer, msg Message) error {
	if mailer == nil {
		return ErrNoMailer
	}
	return mailer.Send(ctx, msg)
}

// SafeEmail sends a welcome message through SendSafeEmail.
func SafeEmail() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		env := EnvFrom(ctx)
		p := newPrinter(w)
		result := SendSafeEmail(ctx, env.Mailer, env.From, "test@example.com", "Welcome!", "Hello, welcome to our platform!")

		p.raw(`<div class="row">` + "\n" + `<div class="col-6 text-center">` + "\n")
		p.para("%s", result)
		p.raw("</div>\n</div>\n")
		return p.err
	})
}

// TestMail sends a plain test message.
func TestMail() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		env := EnvFrom(ctx)
		p := newPrinter(w)
		to := "recipient@example.com"
		msg := Message{
			From:    "sender@example.com",
			To:      to,
			Subject: "Test Email",
			Body:    "This is a test email sent from a Go program.",
			Headers: map[string]string{"From": "sender@example.com"},
		}

		if err := send(ctx, env.Mailer, msg); err != nil {
			p.para("Email sending failed.")
			return p.err
		}
		p.para("Email successfully sent to %s", to)
		return p.err
	})
}
