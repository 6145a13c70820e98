package mailer

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/fx"
	"go.uber.org/zap"
	gomail "gopkg.in/gomail.v2"

	"github.com/velure-commerce/velure/internal/config"
)

// Attachment is a binary file attached to an outbound message.
type Attachment struct {
	Filename string
	Content  []byte
}

// Message is one outbound transactional email.
type Message struct {
	To          []string
	BCC         []string
	Subject     string
	HTML        string
	Attachments []Attachment
}

// Sender delivers transactional email.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Module provides the SMTP mailer to Fx.
var Module = fx.Provide(New)

// New builds a Sender from mail configuration. When mail is disabled a noop
// sender is returned so the notification step can still be exercised locally.
func New(cfg config.Config, logger *zap.Logger) Sender {
	if !cfg.Mail.Enabled {
		logger.Info("mail disabled; using noop sender")

		return noopSender{logger: logger}
	}
	return &smtpSender{cfg: cfg.Mail}
}

type noopSender struct {
	logger *zap.Logger
}

func (n noopSender) Send(_ context.Context, msg Message) error {
	n.logger.Info("mail suppressed", zap.Strings("to", msg.To), zap.String("subject", msg.Subject))

	return nil
}

type smtpSender struct {
	cfg config.Mail
}

func (s *smtpSender) Send(ctx context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return fmt.Errorf("mail: no recipients")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.From)
	m.SetHeader("To", msg.To...)
	if bcc := append(append([]string(nil), s.cfg.BCC...), msg.BCC...); len(bcc) > 0 {
		m.SetHeader("Bcc", bcc...)
	}
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/html", msg.HTML)

	for _, att := range msg.Attachments {
		content := att.Content
		m.Attach(att.Filename, gomail.SetCopyFunc(func(w io.Writer) error {
			_, err := w.Write(content)
			return err
		}))
	}

	dialer := gomail.NewDialer(s.cfg.Host, s.cfg.Port, s.cfg.Username, s.cfg.Password)
	if err := dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("mail: send failed: %w", err)
	}
	return nil
}
