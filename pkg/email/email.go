package email

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gopkg.in/gomail.v2"
)

// Config holds SMTP settings.
type Config struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromEmail string
	FromName  string
}

// sender abstracts gomail's dialer so delivery can be faked in tests.
type sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// Dispatcher sends pre-rendered HTML mail over SMTP.
type Dispatcher struct {
	from   string
	domain string
	dialer sender
}

func NewDispatcher(cfg Config) *Dispatcher {
	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	from := cfg.FromEmail
	if cfg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", cfg.FromName, cfg.FromEmail)
	}
	return &Dispatcher{from: from, domain: domainOf(cfg.FromEmail), dialer: d}
}

// Send delivers one message and returns the Message-ID it was sent with.
func (d *Dispatcher) Send(ctx context.Context, to, subject, html string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	messageID := fmt.Sprintf("<%s@%s>", uuid.NewString(), d.domain)

	msg := gomail.NewMessage()
	msg.SetHeader("From", d.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetHeader("Message-ID", messageID)
	msg.SetDateHeader("Date", time.Now())
	msg.SetBody("text/html", html)

	done := make(chan error, 1)
	go func() { done <- d.dialer.DialAndSend(msg) }()

	select {
	case err := <-done:
		if err != nil {
			return "", fmt.Errorf("send mail to %s: %w", to, err)
		}
		return messageID, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func domainOf(addr string) string {
	for i := len(addr) - 1; i >= 0; i-- {
		if addr[i] == '@' {
			return addr[i+1:]
		}
	}
	return "localhost"
}
