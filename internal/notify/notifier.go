// Package notify is the outbound notification collaborator. Callers treat
// it as fire-and-forget: a failed send is logged by the caller, never
// surfaced to the end user.
package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/rs/zerolog"
)

type Message struct {
	To      string
	Subject string
	Body    string
}

// Notifier sends a single message.
type Notifier interface {
	Notify(ctx context.Context, msg Message) error
}

// LogNotifier writes the message to the log instead of delivering it.
// Default in dev and in tests.
type LogNotifier struct {
	Log zerolog.Logger
}

func (n LogNotifier) Notify(_ context.Context, msg Message) error {
	n.Log.Info().
		Str("to", msg.To).
		Str("subject", msg.Subject).
		Msg("notification (not delivered)")
	return nil
}

// SMTPNotifier delivers mail through a plain SMTP relay.
type SMTPNotifier struct {
	Addr string // host:port
	From string
}

func (n SMTPNotifier) Notify(_ context.Context, msg Message) error {
	if msg.To == "" {
		return fmt.Errorf("notify: empty recipient")
	}
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", n.From)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	b.WriteString("\r\n")
	b.WriteString(msg.Body)
	b.WriteString("\r\n")
	if err := smtp.SendMail(n.Addr, nil, n.From, []string{msg.To}, []byte(b.String())); err != nil {
		return fmt.Errorf("notify: send mail: %w", err)
	}
	return nil
}
