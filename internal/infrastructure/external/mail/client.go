// Package mail implements SMTP delivery of booking and reminder emails.
// It wraps the plain-text SMTP dialogue behind a small client with retries,
// and keeps the message templates next to it so every mail the system sends
// is rendered in one place.
package mail

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/mentorhub/mentor-scheduling/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// Config contains SMTP client configuration.
type Config struct {
	// Host is the SMTP server hostname.
	Host string

	// Port is the SMTP server port (default: 587).
	Port int

	// Username for SMTP AUTH. Empty disables authentication.
	Username string

	// Password for SMTP AUTH.
	Password string

	// From is the sender address on outgoing mail.
	From string

	// Timeout bounds one SMTP dialogue, dial included.
	Timeout time.Duration

	// RetryAttempts is the number of delivery attempts per message.
	RetryAttempts int

	// Disabled turns the client into a logging no-op. Useful for local
	// development without an SMTP server.
	Disabled bool

	// Logger for structured logging.
	Logger *slog.Logger
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Port:          587,
		Timeout:       10 * time.Second,
		RetryAttempts: 3,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.Disabled {
		return nil
	}
	if c.Host == "" {
		return errors.New("mail: host is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("mail: invalid port %d", c.Port)
	}
	if c.From == "" {
		return errors.New("mail: from address is required")
	}
	return nil
}

// Addr returns the host:port dial address.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, fmt.Sprintf("%d", c.Port))
}

// ══════════════════════════════════════════════════════════════════════════════
// CLIENT
// ══════════════════════════════════════════════════════════════════════════════

// Client sends plain-text email over SMTP. It is safe for concurrent use:
// each send opens its own connection, so the reminder fan-out can deliver
// in parallel without coordination.
type Client struct {
	config  Config
	retrier *retry.Retrier
	logger  *slog.Logger
}

// NewClient creates an SMTP client from config.
func NewClient(config Config) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}
	if config.RetryAttempts <= 0 {
		config.RetryAttempts = 3
	}

	return &Client{
		config: config,
		retrier: retry.New(
			retry.WithMaxAttempts(config.RetryAttempts),
			retry.WithInitialDelay(500*time.Millisecond),
			retry.WithMaxDelay(5*time.Second),
			retry.WithOnRetry(func(attempt int, err error, delay time.Duration) {
				logger.Warn("mail delivery retry",
					slog.Int("attempt", attempt),
					slog.Duration("delay", delay),
					slog.Any("error", err))
			}),
		),
		logger: logger,
	}, nil
}

// SendMail delivers one message. Transient SMTP failures are retried with
// backoff; malformed recipients fail immediately.
func (c *Client) SendMail(ctx context.Context, to, subject, body string) error {
	if to == "" {
		return retry.Permanent(errors.New("mail: empty recipient"))
	}
	if strings.ContainsAny(to, "\r\n") || strings.ContainsAny(subject, "\r\n") {
		return retry.Permanent(errors.New("mail: header fields must not contain line breaks"))
	}

	if c.config.Disabled {
		c.logger.Info("mail delivery disabled, dropping message",
			slog.String("to", to),
			slog.String("subject", subject))
		return nil
	}

	msg := c.buildMessage(to, subject, body)

	err := c.retrier.Do(ctx, func(ctx context.Context) error {
		return c.deliver(ctx, to, msg)
	})
	if err != nil {
		return fmt.Errorf("mail: send to %s: %w", to, err)
	}
	return nil
}

func (c *Client) buildMessage(to, subject, body string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", c.config.From)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	fmt.Fprintf(&b, "Date: %s\r\n", time.Now().UTC().Format(time.RFC1123Z))
	b.WriteString("\r\n")
	b.WriteString(body)
	return []byte(b.String())
}

// deliver runs one SMTP dialogue. The context deadline is enforced through
// the connection deadline, since net/smtp itself is not context-aware.
func (c *Client) deliver(ctx context.Context, to string, msg []byte) error {
	dialer := net.Dialer{Timeout: c.config.Timeout}
	conn, err := dialer.DialContext(ctx, "tcp", c.config.Addr())
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}

	deadline := time.Now().Add(c.config.Timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := conn.SetDeadline(deadline); err != nil {
		conn.Close()
		return fmt.Errorf("set deadline: %w", err)
	}

	client, err := smtp.NewClient(conn, c.config.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("handshake: %w", err)
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: c.config.Host}); err != nil {
			return fmt.Errorf("starttls: %w", err)
		}
	}

	if c.config.Username != "" {
		auth := smtp.PlainAuth("", c.config.Username, c.config.Password, c.config.Host)
		if err := client.Auth(auth); err != nil {
			return retry.Permanent(fmt.Errorf("auth: %w", err))
		}
	}

	if err := client.Mail(c.config.From); err != nil {
		return fmt.Errorf("mail from: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("rcpt to: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("data: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		w.Close()
		return fmt.Errorf("write body: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close body: %w", err)
	}

	return client.Quit()
}
