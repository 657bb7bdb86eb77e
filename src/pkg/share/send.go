// Package share delivers finished reports by email through SES, Mailgun or
// SendGrid.
package share

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
	"github.com/tuumbleweed/xerr"
)

type Provider string

const (
	ProviderSES      Provider = "ses"
	ProviderMailgun  Provider = "mailgun"
	ProviderSendgrid Provider = "sendgrid"
)

// EnvVars lists the credentials each provider reads from the environment.
var EnvVars = map[Provider][]string{
	ProviderSES:      {"AWS_ACCESS_KEY_ID", "AWS_SECRET_ACCESS_KEY", "AWS_REGION"},
	ProviderMailgun:  {"MAILGUN_DOMAIN", "MAILGUN_API_KEY"},
	ProviderSendgrid: {"SENDGRID_API_KEY"},
}

type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// message is what every provider gets to send.
type message struct {
	sender      string
	recipients  []string
	subject     string
	text        string
	html        string
	attachments []Attachment
}

type sendFunc func(ctx context.Context, m message) error

// senders is swapped out in tests.
var senders = map[Provider]sendFunc{
	ProviderSES:      sendSES,
	ProviderMailgun:  sendMailgun,
	ProviderSendgrid: sendSendgrid,
}

/*
SendMessage emails text and html bodies plus attachments to recipients.

Nothing is sent unless sendEmails points to true; otherwise the message is
only logged. Blank recipients are dropped and at least one must remain.
*/
func SendMessage(provider Provider, sendEmails *bool, sender string, recipients []string, subject string, text string, html string, attachments []Attachment) (e *xerr.Error) {
	send, known := senders[provider]
	if !known {
		return xerr.NewError(errors.New("unknown email provider"), "pick email provider", string(provider))
	}
	if strings.TrimSpace(sender) == "" {
		return xerr.NewError(errors.New("sender is empty"), "validate email", subject)
	}
	if breaksHeader(sender) || breaksHeader(subject) {
		return xerr.NewError(errors.New("line break in sender or subject"), "validate email", strings.TrimSpace(sender))
	}

	cleaned := make([]string, 0, len(recipients))
	for _, recipient := range recipients {
		trimmed := strings.TrimSpace(recipient)
		if breaksHeader(trimmed) {
			return xerr.NewError(errors.New("line break in recipient"), "validate email", trimmed)
		}
		if trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	if len(cleaned) == 0 {
		return xerr.NewError(errors.New("no recipients"), "validate email", subject)
	}

	m := message{sender: sender, recipients: cleaned, subject: subject, text: text, html: html, attachments: attachments}

	if sendEmails == nil || !*sendEmails {
		tl.Log(
			tl.Notice, palette.Yellow, "Not sending '%s' to '%s' via '%s': %s",
			subject, strings.Join(cleaned, ", "), provider, "sending is disabled",
		)
		return nil
	}

	timeout := time.Duration(max(Cfg.TimeoutSeconds, 1)) * time.Second
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	tl.Log(tl.Info, palette.BlueBold, "Sending '%s' to '%s' via '%s'", subject, strings.Join(cleaned, ", "), provider)
	err := send(ctx, m)
	if err != nil {
		return xerr.NewError(err, "send email", fmt.Sprintf("via '%s' to '%s'", provider, strings.Join(cleaned, ", ")))
	}

	tl.Log(tl.Info1, palette.Green, "Sent '%s' to '%s' recipients", subject, len(cleaned))
	return nil
}

// breaksHeader reports whether s would end a header line early.
func breaksHeader(s string) bool {
	return strings.ContainsAny(s, "\r\n")
}
