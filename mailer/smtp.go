package mailer

import (
	"context"
	"crypto/tls"
	"net"
	"net/smtp"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// Sender delivers a message
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SenderFunc adapts a function to the Sender interface
type SenderFunc func(ctx context.Context, msg Message) error

func (f SenderFunc) Send(ctx context.Context, msg Message) error {
	return f(ctx, msg)
}

// SMTPSender sends mail through an authenticated SMTP submission server
type SMTPSender struct {
	cfg     Config
	server  Server
	timeout time.Duration
}

// NewSMTPSender validates cfg and returns a sender for it
func NewSMTPSender(cfg Config) (*SMTPSender, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	server, err := cfg.Server()
	if err != nil {
		return nil, err
	}

	return &SMTPSender{
		cfg:     cfg,
		server:  server,
		timeout: 30 * time.Second,
	}, nil
}

// Send opens a connection per message. Port 465 uses implicit TLS, every
// other port is upgraded with STARTTLS before authenticating.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if msg.From == "" {
		msg.From = s.cfg.From()
	}

	body, err := msg.Bytes()
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to encode email")
	}

	if err := s.deliver(ctx, msg.To, body); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryOperation, "failed to deliver email").
			WithTextCode("EMAIL_DELIVERY_FAILED").
			WithMetadata(map[string]any{
				"to":     msg.To,
				"server": s.server.Addr(),
			})
	}

	return nil
}

func (s *SMTPSender) deliver(ctx context.Context, to string, body []byte) error {
	dialer := &net.Dialer{Timeout: s.timeout}
	conn, err := dialer.DialContext(ctx, "tcp", s.server.Addr())
	if err != nil {
		return err
	}
	defer conn.Close()

	deadline := time.Now().Add(s.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := conn.SetDeadline(deadline); err != nil {
		return err
	}

	tlsConfig := &tls.Config{ServerName: s.server.Host}

	if s.server.ImplicitTLS() {
		conn = tls.Client(conn, tlsConfig)
	}

	client, err := smtp.NewClient(conn, s.server.Host)
	if err != nil {
		return err
	}
	defer client.Close()

	if !s.server.ImplicitTLS() {
		if err := client.StartTLS(tlsConfig); err != nil {
			return err
		}
	}

	auth := smtp.PlainAuth("", s.cfg.User, s.cfg.Password, s.server.Host)
	if err := client.Auth(auth); err != nil {
		return err
	}

	if err := client.Mail(s.cfg.User); err != nil {
		return err
	}
	if err := client.Rcpt(to); err != nil {
		return err
	}

	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(body); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}

	return client.Quit()
}
