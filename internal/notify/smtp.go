package notify

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"net/textproto"
	"strconv"
	"strings"
	"time"

	"github.com/complianceops/regwatch/internal/retry"
)

// Compile-time interface check.
var _ Sink = (*SMTPSink)(nil)

// SMTPConfig holds the transport settings for the SMTP sink. Username and
// Password are required; their absence is a startup configuration error,
// not an in-flight one.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
}

// SMTPSink delivers reports over an authenticated SMTP session
// (STARTTLS, login, send). Sends are retried per the shared policy; a
// exhausted or permanent failure surfaces as a *NotificationError.
type SMTPSink struct {
	cfg     SMTPConfig
	timeout time.Duration
	policy  retry.Policy
}

// SMTPOption configures an SMTPSink.
type SMTPOption func(*SMTPSink)

// WithSendTimeout bounds each SMTP session attempt.
func WithSendTimeout(d time.Duration) SMTPOption {
	return func(s *SMTPSink) { s.timeout = d }
}

// WithRetryPolicy overrides the retry policy for sends.
func WithRetryPolicy(policy retry.Policy) SMTPOption {
	return func(s *SMTPSink) { s.policy = policy }
}

// NewSMTPSink creates an SMTP sink. It fails if credentials are missing
// so the process can refuse to start instead of degrading at send time.
func NewSMTPSink(cfg SMTPConfig, opts ...SMTPOption) (*SMTPSink, error) {
	if cfg.Username == "" || cfg.Password == "" {
		return nil, fmt.Errorf("notify: SMTP username and password are required")
	}
	if cfg.Host == "" {
		cfg.Host = "smtp.gmail.com"
	}
	if cfg.Port == 0 {
		cfg.Port = 587
	}

	s := &SMTPSink{
		cfg:     cfg,
		timeout: 30 * time.Second,
		policy:  retry.DefaultPolicy(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Send delivers one message, retrying transient failures with backoff.
func (s *SMTPSink) Send(ctx context.Context, msg Message) error {
	if msg.Recipient == "" {
		msg.Recipient = DefaultRecipient
	}
	if msg.Subject == "" {
		msg.Subject = DefaultSubject
	}

	err := retry.Do(ctx, s.policy, func(ctx context.Context) (bool, error) {
		sendErr := s.sendOnce(ctx, msg)
		if sendErr == nil {
			return false, nil
		}
		return isTransient(sendErr), sendErr
	})
	if err != nil {
		return &NotificationError{Err: err}
	}
	return nil
}

// sendOnce runs a single SMTP session: dial, STARTTLS, authenticate,
// send, quit.
func (s *SMTPSink) sendOnce(ctx context.Context, msg Message) error {
	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))

	dialer := net.Dialer{Timeout: s.timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}
	conn.SetDeadline(time.Now().Add(s.timeout))

	client, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: s.cfg.Host}); err != nil {
			return fmt.Errorf("starttls: %w", err)
		}
	}

	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("auth: %w", err)
	}

	if err := client.Mail(s.cfg.Username); err != nil {
		return fmt.Errorf("mail from: %w", err)
	}
	if err := client.Rcpt(msg.Recipient); err != nil {
		return fmt.Errorf("rcpt to: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("data: %w", err)
	}
	if _, err := w.Write(buildRFC822(s.cfg.Username, msg)); err != nil {
		return fmt.Errorf("write body: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close body: %w", err)
	}

	return client.Quit()
}

// buildRFC822 assembles the wire form of the message.
func buildRFC822(from string, msg Message) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", msg.Recipient)
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.Body)
	b.WriteString("\r\n")
	return []byte(b.String())
}

// isTransient classifies an SMTP failure. 4xx responses and transport
// errors are worth retrying; 5xx responses (auth rejection, bad
// recipient) are permanent.
func isTransient(err error) bool {
	var protoErr *textproto.Error
	if errors.As(err, &protoErr) {
		return protoErr.Code >= 400 && protoErr.Code < 500
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr)
}
