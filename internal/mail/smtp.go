// Package mail renders confirmation emails and delivers them over SMTP.
// It is the only package that knows about the mail transport; the rest of the
// application talks to it through the notify.Sender interface.
package mail

import (
	"context"
	"fmt"

	gomail "github.com/wneessen/go-mail"

	"github.com/mcardoso/planner/backend/internal/notify"
)

// SMTPConfig holds the connection and sender-identity settings for the
// outbound mail server.
type SMTPConfig struct {
	Host        string
	Port        int
	Username    string
	Password    string
	FromName    string
	FromAddress string
}

// SMTPSender implements notify.Sender over a go-mail SMTP client.
// It performs exactly one delivery attempt per call; retries are deliberately
// the caller's concern.
type SMTPSender struct {
	client   *gomail.Client
	fromName string
	fromAddr string
}

// compile-time check: SMTPSender must satisfy notify.Sender.
var _ notify.Sender = (*SMTPSender)(nil)

// NewSMTPSender constructs an SMTPSender from the given config.
// The client dials lazily — construction never touches the network.
func NewSMTPSender(cfg SMTPConfig) (*SMTPSender, error) {
	opts := []gomail.Option{
		gomail.WithPort(cfg.Port),
		gomail.WithTLSPolicy(gomail.TLSOpportunistic),
	}
	if cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.Username),
			gomail.WithPassword(cfg.Password),
		)
	}

	client, err := gomail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("mail.NewSMTPSender: %w", err)
	}

	return &SMTPSender{
		client:   client,
		fromName: cfg.FromName,
		fromAddr: cfg.FromAddress,
	}, nil
}

// Send delivers one rendered email and returns the generated message ID.
func (s *SMTPSender) Send(ctx context.Context, email notify.Email) (string, error) {
	msg := gomail.NewMsg()
	if err := msg.FromFormat(s.fromName, s.fromAddr); err != nil {
		return "", fmt.Errorf("mail.SMTPSender.Send: from: %w", err)
	}
	if email.RecipientName != "" {
		if err := msg.AddToFormat(email.RecipientName, email.RecipientAddr); err != nil {
			return "", fmt.Errorf("mail.SMTPSender.Send: to: %w", err)
		}
	} else {
		if err := msg.To(email.RecipientAddr); err != nil {
			return "", fmt.Errorf("mail.SMTPSender.Send: to: %w", err)
		}
	}
	msg.Subject(email.Subject)
	msg.SetBodyString(gomail.TypeTextHTML, email.HTML)
	msg.SetMessageID()

	if err := s.client.DialAndSendWithContext(ctx, msg); err != nil {
		return "", fmt.Errorf("mail.SMTPSender.Send: %w", err)
	}
	return msg.GetMessageID(), nil
}
