// Package notify delivers alert notifications by email.
package notify

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"strings"
	"time"

	gomail "gopkg.in/mail.v2"

	"github.com/starford/scholarsync/internal/models"
)

// Notifier tells a user about a new alert.
type Notifier interface {
	Notify(ctx context.Context, user models.User, alert models.Alert) error
}

// Nop discards notifications.
type Nop struct{}

// Notify implements Notifier.
func (Nop) Notify(context.Context, models.User, models.Alert) error { return nil }

// SMTPConfig holds SMTP settings for outgoing mail.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Timeout  time.Duration
}

// Message is a rendered notification.
type Message struct {
	Subject string
	Text    string
	HTML    string
}

// Email sends alerts over SMTP with an HTML body and plain text fallback.
type Email struct {
	cfg  SMTPConfig
	tmpl *template.Template
	send func(*gomail.Message) error
}

// NewEmail returns an Email notifier for cfg.
func NewEmail(cfg SMTPConfig) *Email {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	e := &Email{
		cfg:  cfg,
		tmpl: template.Must(template.New("alert").Parse(alertHTMLTemplate)),
	}
	e.send = e.dialAndSend
	return e
}

func (e *Email) dialAndSend(m *gomail.Message) error {
	d := gomail.NewDialer(e.cfg.Host, e.cfg.Port, e.cfg.Username, e.cfg.Password)
	d.Timeout = e.cfg.Timeout
	return d.DialAndSend(m)
}

// Render produces the subject and bodies for an alert.
func (e *Email) Render(user models.User, alert models.Alert) (*Message, error) {
	var buf bytes.Buffer
	data := struct {
		User  models.User
		Alert models.Alert
	}{user, alert}
	if err := e.tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("notify: render html: %w", err)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\n", alert.Title)
	sb.WriteString(strings.Repeat("=", 40) + "\n\n")
	fmt.Fprintf(&sb, "Urgency: %s\n", alert.Urgency)
	if alert.ClassName != "" {
		fmt.Fprintf(&sb, "Class: %s\n", alert.ClassName)
	}
	sb.WriteString("\n" + alert.Message + "\n")

	return &Message{
		Subject: "ScholarSync: " + alert.Title,
		Text:    sb.String(),
		HTML:    buf.String(),
	}, nil
}

// Notify implements Notifier.
func (e *Email) Notify(ctx context.Context, user models.User, alert models.Alert) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg, err := e.Render(user, alert)
	if err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", e.cfg.From)
	m.SetAddressHeader("To", user.Email, user.Name)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Text)
	m.AddAlternative("text/html", msg.HTML)

	if err := e.send(m); err != nil {
		return fmt.Errorf("notify: send to %s: %w", user.Email, err)
	}
	slog.Info("notification sent",
		slog.Int64("user_id", user.ID),
		slog.Int64("alert_id", alert.ID),
		slog.String("subject", msg.Subject))
	return nil
}

const alertHTMLTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8" />
  <title>{{.Alert.Title}}</title>
  <style>
    body { margin: 0; padding: 24px; background: #f3f4f6; font-family: -apple-system, "Segoe UI", Roboto, sans-serif; color: #111827; }
    .card { max-width: 560px; margin: 0 auto; background: #fff; border: 1px solid #e5e7eb; border-radius: 8px; padding: 20px 24px; }
    .urgency { display: inline-block; padding: 2px 8px; border-radius: 4px; font-size: 12px; text-transform: uppercase; }
    .high { background: #fee2e2; color: #991b1b; }
    .medium { background: #fef3c7; color: #92400e; }
    .low { background: #e0f2fe; color: #075985; }
  </style>
</head>
<body>
  <div class="card">
    <p>Hi {{.User.Name}},</p>
    <h2>{{.Alert.Title}}</h2>
    <span class="urgency {{.Alert.Urgency}}">{{.Alert.Urgency}}</span>
    {{if .Alert.ClassName}}<p><strong>Class:</strong> {{.Alert.ClassName}}</p>{{end}}
    <p>{{.Alert.Message}}</p>
  </div>
</body>
</html>
`
