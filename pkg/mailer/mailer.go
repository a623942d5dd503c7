// Package mailer sends transactional email over SMTP.
package mailer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"chauffeur-booking/pkg/utils"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

var ErrNotConfigured = errors.New("smtp is not configured")

type Attachment struct {
	Name    string
	Content []byte
}

type Message struct {
	To          string
	Subject     string
	HTML        string
	Attachments []Attachment
}

// Sender delivers one message; a nil error means the SMTP server accepted it.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type smtpSender struct {
	cfg     utils.EmailConfig
	timeout time.Duration
	log     *zap.Logger
}

// New returns an SMTP sender, or a sender that always fails with ErrNotConfigured when no host is set.
func New(cfg utils.EmailConfig, timeout time.Duration, log *zap.Logger) Sender {
	log = log.With(zap.String("component", "mailer"))
	if cfg.Host == "" || cfg.From == "" {
		log.Warn("SMTP host or sender address missing, outbound email disabled")
		return disabledSender{}
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &smtpSender{cfg: cfg, timeout: timeout, log: log}
}

func (s *smtpSender) Send(ctx context.Context, msg Message) error {
	m := mail.NewMsg()
	if err := m.From(s.cfg.From); err != nil {
		return fmt.Errorf("set sender %q: %w", s.cfg.From, err)
	}
	if err := m.To(msg.To); err != nil {
		return fmt.Errorf("set recipient %q: %w", msg.To, err)
	}
	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextHTML, msg.HTML)

	for _, a := range msg.Attachments {
		if err := m.AttachReader(a.Name, bytes.NewReader(a.Content)); err != nil {
			return fmt.Errorf("attach %s: %w", a.Name, err)
		}
	}

	opts := []mail.Option{
		mail.WithPort(s.cfg.Port),
		mail.WithTimeout(s.timeout),
	}
	if s.cfg.User != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.cfg.User),
			mail.WithPassword(s.cfg.Password),
		)
	}
	if s.cfg.Secure {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSOpportunistic))
	}

	client, err := mail.NewClient(s.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("create smtp client: %w", err)
	}

	sendCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := client.DialAndSendWithContext(sendCtx, m); err != nil {
		s.log.Error("Failed to send email",
			zap.String("to", msg.To),
			zap.String("subject", msg.Subject),
			zap.Error(err))
		return fmt.Errorf("send email to %s: %w", msg.To, err)
	}

	s.log.Info("Email sent", zap.String("to", msg.To), zap.String("subject", msg.Subject))
	return nil
}

type disabledSender struct{}

func (disabledSender) Send(context.Context, Message) error { return ErrNotConfigured }
