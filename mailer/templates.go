package mailer

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"strings"

	"github.com/gofiber/template/django/v3"

	auth "github.com/nexotv/nexo-auth"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// DefaultAppName is rendered into the email bodies
const DefaultAppName = "NexoTV"

var defaultSubjects = map[auth.NotificationKind]string{
	auth.NotificationWelcome: "Bienvenido a nuestra aplicación",
	auth.NotificationLogin:   "Inicio de sesión exitoso",
}

// Templates renders notification bodies from the embedded django templates.
// Each kind has a <kind>_text and a <kind>_html template.
type Templates struct {
	engine   *django.Engine
	subjects map[auth.NotificationKind]string
	appName  string
}

// NewTemplates loads the embedded templates
func NewTemplates(appName string) (*Templates, error) {
	sub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		return nil, err
	}

	engine := django.NewFileSystem(http.FS(sub), ".tmpl")
	if err := engine.Load(); err != nil {
		return nil, fmt.Errorf("load email templates: %w", err)
	}

	if appName == "" {
		appName = DefaultAppName
	}

	return &Templates{
		engine:   engine,
		subjects: defaultSubjects,
		appName:  appName,
	}, nil
}

// Render builds the message for a notification. From is left empty for
// the sender to fill in.
func (t *Templates) Render(n auth.Notification) (Message, error) {
	subject, ok := t.subjects[n.Kind]
	if !ok {
		return Message{}, fmt.Errorf("unknown notification kind %q", n.Kind)
	}

	binding := map[string]any{
		"app_name":   t.appName,
		"first_name": n.User.FirstName,
		"last_name":  n.User.LastName,
		"email":      n.User.Email,
	}

	text, err := t.render(string(n.Kind)+"_text", binding)
	if err != nil {
		return Message{}, err
	}

	html, err := t.render(string(n.Kind)+"_html", binding)
	if err != nil {
		return Message{}, err
	}

	return Message{
		To:      n.To(),
		Subject: subject,
		Text:    strings.TrimSpace(text),
		HTML:    html,
	}, nil
}

func (t *Templates) render(name string, binding map[string]any) (string, error) {
	var buf bytes.Buffer
	if err := t.engine.Render(&buf, name, binding); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}
