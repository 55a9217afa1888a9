// Package notification sends the transactional emails of the identity flows.
package notification

import (
	"bytes"
	"context"
	"fmt"
	htmltemplate "html/template"
	"net/url"
	"strings"
	"time"

	identityapp "github.com/cultivo/backend/internal/application/identity"
	"github.com/cultivo/backend/internal/domain/identity"
	"go.uber.org/zap"
)

// Message is a rendered email
type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// Transport delivers rendered messages
type Transport interface {
	Deliver(ctx context.Context, msg Message) error
}

// Mailer renders identity emails with links into the frontend and hands them
// to a Transport.
type Mailer struct {
	transport   Transport
	frontendURL string
	product     string
}

// NewMailer creates a Mailer. frontendURL is the origin the links point at.
func NewMailer(transport Transport, frontendURL, product string) *Mailer {
	if product == "" {
		product = "Cultivo"
	}
	return &Mailer{
		transport:   transport,
		frontendURL: strings.TrimRight(frontendURL, "/"),
		product:     product,
	}
}

var _ identityapp.Notifier = (*Mailer)(nil)

// SendVerification emails the account verification link
func (m *Mailer) SendVerification(ctx context.Context, to, name, token string) error {
	link := m.link("/verify-email", token)
	return m.send(ctx, to, m.product+": verify your email", emailData{
		Greeting: greeting(name),
		Lines:    []string{"Confirm your email address to activate your account."},
		Action:   "Verify email",
		Link:     link,
	})
}

// SendPasswordReset emails the reset link
func (m *Mailer) SendPasswordReset(ctx context.Context, to, name, token string, expiresAt time.Time) error {
	return m.send(ctx, to, m.product+": reset your password", emailData{
		Greeting: greeting(name),
		Lines: []string{
			"A password reset was requested for your account.",
			"If this was not you, ignore this email.",
		},
		Action: "Reset password",
		Link:   m.link("/reset-password", token),
		Expiry: expiresAt.UTC().Format(time.RFC1123),
	})
}

// SendInvitation emails the signup link carrying the invitation token
func (m *Mailer) SendInvitation(ctx context.Context, to string, role identity.Role, token string, expiresAt time.Time) error {
	return m.send(ctx, to, "You have been invited to "+m.product, emailData{
		Greeting: "Hello,",
		Lines:    []string{fmt.Sprintf("You have been invited to join %s as %s.", m.product, strings.ReplaceAll(string(role), "_", " "))},
		Action:   "Accept invitation",
		Link:     m.link("/signup", token),
		Expiry:   expiresAt.UTC().Format(time.RFC1123),
	})
}

func (m *Mailer) link(path, token string) string {
	return m.frontendURL + path + "?token=" + url.QueryEscape(token)
}

func greeting(name string) string {
	if name == "" {
		return "Hello,"
	}
	return "Hello " + name + ","
}

type emailData struct {
	Product  string
	Greeting string
	Lines    []string
	Action   string
	Link     string
	Expiry   string
}

var htmlBody = htmltemplate.Must(htmltemplate.New("email").Parse(`<!DOCTYPE html>
<html lang="en"><body style="font-family:sans-serif;max-width:600px;margin:0 auto;padding:20px">
<h2>{{.Product}}</h2>
<p>{{.Greeting}}</p>
{{range .Lines}}<p>{{.}}</p>{{end}}
<p><a href="{{.Link}}" style="background:#2e7d32;color:#fff;padding:10px 18px;border-radius:4px;text-decoration:none">{{.Action}}</a></p>
{{if .Expiry}}<p style="color:#666">This link expires {{.Expiry}}.</p>{{end}}
</body></html>`))

func (m *Mailer) send(ctx context.Context, to, subject string, data emailData) error {
	data.Product = m.product

	var html bytes.Buffer
	if err := htmlBody.Execute(&html, data); err != nil {
		return fmt.Errorf("failed to render email: %w", err)
	}

	var text strings.Builder
	text.WriteString(data.Greeting + "\n\n")
	for _, line := range data.Lines {
		text.WriteString(line + "\n")
	}
	text.WriteString("\n" + data.Action + ": " + data.Link + "\n")
	if data.Expiry != "" {
		text.WriteString("This link expires " + data.Expiry + ".\n")
	}

	return m.transport.Deliver(ctx, Message{To: to, Subject: subject, Text: text.String(), HTML: html.String()})
}

// LogTransport writes messages to the log instead of sending them. Links are
// logged so local setups can complete the flows.
type LogTransport struct {
	logger *zap.Logger
}

// NewLogTransport creates a LogTransport
func NewLogTransport(logger *zap.Logger) *LogTransport {
	return &LogTransport{logger: logger}
}

// Deliver logs the message
func (t *LogTransport) Deliver(_ context.Context, msg Message) error {
	t.logger.Info("email not sent, mail disabled",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("text", msg.Text),
	)
	return nil
}
