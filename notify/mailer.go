// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/wneessen/go-mail"
)

var subjects = map[string]string{
	TemplateVotingCredential: "Your voting credential",
	TemplateCandidacyStatus:  "Your certificate of candidacy",
	TemplatePartyListStatus:  "Your party-list registration",
	TemplateElectionResults:  "Election results",
}

// Mailer delivers notifications over SMTP.
type Mailer struct {
	client *mail.Client
	from   string
}

// NewMailer builds an SMTP sender. Credentials are optional for
// unauthenticated relays.
func NewMailer(host string, port int, username, password, from string) (*Mailer, error) {
	opts := []mail.Option{mail.WithPort(port)}
	if username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(username),
			mail.WithPassword(password),
		)
	}

	client, err := mail.NewClient(host, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create SMTP client: %w", err)
	}

	return &Mailer{client: client, from: from}, nil
}

// Send delivers one message as a plain-text email.
func (m *Mailer) Send(ctx context.Context, msg Message) error {
	email := mail.NewMsg()
	if err := email.From(m.from); err != nil {
		return fmt.Errorf("invalid from address: %w", err)
	}
	if err := email.To(msg.Recipient); err != nil {
		return fmt.Errorf("invalid recipient address: %w", err)
	}

	subject := subjects[msg.Template]
	if subject == "" {
		subject = msg.Template
	}
	email.Subject(subject)
	email.SetBodyString(mail.TypeTextPlain, renderBody(msg))

	if err := m.client.DialAndSendWithContext(ctx, email); err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}
	return nil
}

// renderBody flattens the payload into stable key: value lines. Layout
// is intentionally plain; presentation belongs to the mail templates of
// the frontend system.
func renderBody(msg Message) string {
	keys := make([]string, 0, len(msg.Payload))
	for k := range msg.Payload {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k + ": " + msg.Payload[k] + "\n")
	}
	return b.String()
}

// LogSender logs deliveries instead of sending them. Used when SMTP is
// not configured (local development, tests).
type LogSender struct{}

func (LogSender) Send(_ context.Context, msg Message) error {
	slog.Info("notification (log sender)",
		"message_id", msg.ID, "recipient", msg.Recipient, "template", msg.Template)
	return nil
}
