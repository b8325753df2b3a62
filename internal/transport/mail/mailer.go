package mail

import (
	"context"
	"errors"
	"strings"

	"gopkg.in/gomail.v2"
)

var ErrNotConfigured = errors.New("mailer missing configuration")

// Message is a single plain text email.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender delivers a message; implementations report transport failures.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPMailer sends through an SMTP relay. gomail upgrades the connection with
// STARTTLS whenever the server offers it; port 465 uses implicit TLS.
type SMTPMailer struct {
	dialer dialer
	from   string
	host   string
}

func NewSMTPMailer(host string, port int, username, password, from string) *SMTPMailer {
	host = strings.TrimSpace(host)
	return &SMTPMailer{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   strings.TrimSpace(from),
		host:   host,
	}
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if m == nil || m.host == "" || m.from == "" {
		return ErrNotConfigured
	}
	if strings.TrimSpace(msg.To) == "" {
		return errors.New("mail: empty recipient")
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	gm := gomail.NewMessage()
	gm.SetHeader("From", m.from)
	gm.SetHeader("To", msg.To)
	gm.SetHeader("Subject", msg.Subject)
	gm.SetBody("text/plain", msg.Body)

	return m.dialer.DialAndSend(gm)
}
