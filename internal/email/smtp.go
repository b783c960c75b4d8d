package email

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/mail"

	"github.com/google/uuid"
	"gopkg.in/gomail.v2"
)

// ErrInvalidSMTPConfig is returned by NewSMTPSender for incomplete settings.
var ErrInvalidSMTPConfig = errors.New("email: invalid smtp configuration")

// SMTPConfig holds the settings for the SMTP sender.
type SMTPConfig struct {
	// Host is the SMTP relay hostname.
	Host string
	// Port is 465 for implicit TLS; any other port upgrades with STARTTLS.
	Port int
	// Username for SMTP AUTH.
	Username string
	// Password for SMTP AUTH.
	Password string
}

// Dialer opens an SMTP session and transmits messages over it.
// *gomail.Dialer satisfies it.
type Dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPSender implements Sender over an authenticated, encrypted SMTP session.
// Every Send dials a fresh connection.
type SMTPSender struct {
	dialer Dialer
	host   string
}

// NewSMTPSender creates a new SMTPSender.
func NewSMTPSender(cfg SMTPConfig) (*SMTPSender, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("%w: host is required", ErrInvalidSMTPConfig)
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("%w: port must be between 1 and 65535", ErrInvalidSMTPConfig)
	}
	if cfg.Username == "" || cfg.Password == "" {
		return nil, fmt.Errorf("%w: username and password are required", ErrInvalidSMTPConfig)
	}

	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	d.TLSConfig = &tls.Config{
		ServerName: cfg.Host,
		MinVersion: tls.VersionTLS12,
	}

	return NewSMTPSenderWithDialer(d, cfg.Host), nil
}

// NewSMTPSenderWithDialer creates an SMTPSender on top of an existing dialer.
// host is used as the Message-ID domain.
func NewSMTPSenderWithDialer(d Dialer, host string) *SMTPSender {
	return &SMTPSender{
		dialer: d,
		host:   host,
	}
}

// Send builds the MIME message and transmits it.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m, err := s.build(msg)
	if err != nil {
		return err
	}

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("email: failed to send email: %w", err)
	}

	return nil
}

func (s *SMTPSender) build(msg Message) (*gomail.Message, error) {
	from, err := mail.ParseAddress(msg.From)
	if err != nil {
		return nil, fmt.Errorf("email: invalid sender %q: %w", msg.From, err)
	}
	to, err := mail.ParseAddress(msg.To)
	if err != nil {
		return nil, fmt.Errorf("email: invalid recipient %q: %w", msg.To, err)
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", from.Address, from.Name)
	m.SetAddressHeader("To", to.Address, to.Name)
	m.SetHeader("Subject", msg.Subject)
	m.SetHeader("Message-ID", fmt.Sprintf("<%s@%s>", uuid.NewString(), s.host))
	m.SetBody("text/plain", msg.TextBody)

	return m, nil
}
