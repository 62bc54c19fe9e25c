package mailer

import (
	"fmt"
	"net"
	"net/mail"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
)

// DefaultFromName is the display name used in the From header
const DefaultFromName = "NEXO TV"

// Server is an SMTP endpoint
type Server struct {
	Host string
	Port int
}

func (s Server) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// ImplicitTLS reports whether the connection starts with TLS instead of
// upgrading through STARTTLS.
func (s Server) ImplicitTLS() bool {
	return s.Port == 465
}

// wellKnown maps service names to their submission endpoints
var wellKnown = map[string]Server{
	"gmail":    {Host: "smtp.gmail.com", Port: 465},
	"outlook":  {Host: "smtp-mail.outlook.com", Port: 587},
	"hotmail":  {Host: "smtp-mail.outlook.com", Port: 587},
	"yahoo":    {Host: "smtp.mail.yahoo.com", Port: 465},
	"zoho":     {Host: "smtp.zoho.com", Port: 465},
	"mailtrap": {Host: "sandbox.smtp.mailtrap.io", Port: 587},
	"sendgrid": {Host: "smtp.sendgrid.net", Port: 587},
}

// Config holds the sender credentials
type Config struct {
	// Service is a well known provider name or an explicit host:port
	Service  string
	User     string
	Password string
	FromName string
}

// Validate checks the credentials are present and the service resolves
func (c Config) Validate() error {
	err := validation.ValidateStruct(&c,
		validation.Field(&c.Service, validation.Required, validation.By(func(any) error {
			_, err := c.Server()
			return err
		})),
		validation.Field(&c.User, validation.Required, is.Email),
		validation.Field(&c.Password, validation.Required),
	)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid email configuration")
	}
	return nil
}

// Server resolves Service to an SMTP endpoint
func (c Config) Server() (Server, error) {
	service := strings.ToLower(strings.TrimSpace(c.Service))
	if s, ok := wellKnown[service]; ok {
		return s, nil
	}

	host, port, err := net.SplitHostPort(service)
	if err != nil {
		return Server{}, fmt.Errorf("unknown email service %q", c.Service)
	}

	p, err := strconv.Atoi(port)
	if err != nil || p <= 0 || host == "" {
		return Server{}, fmt.Errorf("invalid email service address %q", c.Service)
	}

	return Server{Host: host, Port: p}, nil
}

// From returns the formatted From header value
func (c Config) From() string {
	name := c.FromName
	if name == "" {
		name = DefaultFromName
	}
	return (&mail.Address{Name: name, Address: c.User}).String()
}
