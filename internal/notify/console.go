package notify

import (
	"context"
	"fmt"
	"io"
)

// Compile-time interface check.
var _ Sink = (*ConsoleSink)(nil)

// ConsoleSink writes notifications to a writer instead of sending email.
// Used when email delivery is disabled.
type ConsoleSink struct {
	w io.Writer
}

// NewConsoleSink creates a console sink writing to w.
func NewConsoleSink(w io.Writer) *ConsoleSink {
	return &ConsoleSink{w: w}
}

// Send writes the message to the configured writer.
func (s *ConsoleSink) Send(_ context.Context, msg Message) error {
	recipient := msg.Recipient
	if recipient == "" {
		recipient = DefaultRecipient
	}
	subject := msg.Subject
	if subject == "" {
		subject = DefaultSubject
	}

	if _, err := fmt.Fprintf(s.w, "To: %s\nSubject: %s\n\n%s\n", recipient, subject, msg.Body); err != nil {
		return &NotificationError{Err: err}
	}
	return nil
}
