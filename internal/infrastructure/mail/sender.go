// Package mail sends lead notifications over SMTP.
package mail

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"text/template"

	"gopkg.in/gomail.v2"

	"github.com/carbonwallet/leads-service/internal/core/ports"
)

// Dialer is satisfied by *gomail.Dialer.
type Dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// Config holds SMTP settings and the notification recipients.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	To       []string
}

var bodyTemplate = template.Must(template.New("lead").Funcs(template.FuncMap{"join": strings.Join}).Parse(`A new lead was submitted.

Name:      {{.Name}}
Email:     {{.Email}}
{{- if .Company}}
Company:   {{.Company}}
{{- end}}
{{- if .Source}}
Source:    {{.Source}}
{{- end}}
{{- if .Interests}}
Interests: {{join .Interests ", "}}
{{- end}}
Received:  {{.CreatedAt.Format "2006-01-02 15:04:05 MST"}}
Lead ID:   {{.LeadID}}
`))

// Notifier is a ports.LeadNotifier that emails the sales inbox.
type Notifier struct {
	dialer Dialer
	from   string
	to     []string
}

// NewNotifier builds a Notifier that dials cfg.Host for every message.
func NewNotifier(cfg Config) *Notifier {
	return newNotifier(gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password), cfg)
}

func newNotifier(d Dialer, cfg Config) *Notifier {
	return &Notifier{dialer: d, from: cfg.From, to: cfg.To}
}

func (n *Notifier) Name() string { return "email" }

// Notify sends one plain-text message for event.
func (n *Notifier) Notify(ctx context.Context, event ports.LeadCreatedEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m, err := n.message(event)
	if err != nil {
		return err
	}
	if err := n.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send lead email: %w", err)
	}
	return nil
}

func (n *Notifier) message(event ports.LeadCreatedEvent) (*gomail.Message, error) {
	body, err := renderBody(event)
	if err != nil {
		return nil, err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", n.to...)
	m.SetHeader("Reply-To", event.Email)
	m.SetHeader("Subject", fmt.Sprintf("New lead: %s", event.Name))
	m.SetBody("text/plain", body)
	return m, nil
}

func renderBody(event ports.LeadCreatedEvent) (string, error) {
	var buf bytes.Buffer
	if err := bodyTemplate.Execute(&buf, event); err != nil {
		return "", fmt.Errorf("render lead email: %w", err)
	}
	return buf.String(), nil
}
