// Package notify delivers finished reports to compliance stakeholders.
package notify

import (
	"context"
	"fmt"
)

// DefaultSubject is the fixed subject line for regulatory change reports.
const DefaultSubject = "HHS/CMS Regulatory Change Summary"

// DefaultRecipient is used when no recipient is configured.
const DefaultRecipient = "compliance@example.com"

// Message is one notification: a fixed subject, a recipient, and the
// serialized report body.
type Message struct {
	Subject   string
	Recipient string
	Body      string
}

// Sink accepts finished reports. Implementations must not crash the
// caller on delivery failure; the caller surfaces the report to the
// console regardless and records the failure as a status string.
type Sink interface {
	Send(ctx context.Context, msg Message) error
}

// NotificationError is a delivery failure. It is recovered locally: the
// report is still emitted to the operator-visible channel and a failure
// status recorded, never raised as a fault.
type NotificationError struct {
	Err error
}

// Error implements the error interface.
func (e *NotificationError) Error() string {
	return fmt.Sprintf("notify: %v", e.Err)
}

// Unwrap returns the underlying cause.
func (e *NotificationError) Unwrap() error {
	return e.Err
}
