package mail

import (
	"bitwise74/taskcamp/config"
	"context"
	"errors"

	"gopkg.in/gomail.v2"
)

// SMTP delivers messages through a single SMTP server. A new connection is
// dialed for every message.
type SMTP struct {
	dialer *gomail.Dialer
}

func NewSMTP(cfg config.Mail) *SMTP {
	return &SMTP{dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)}
}

func (s *SMTP) Send(ctx context.Context, m *Message) error {
	if m.To == "" {
		return errors.New("message has no recipient")
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.From)
	msg.SetHeader("To", m.To)
	msg.SetHeader("Subject", m.Subject)
	msg.SetBody("text/plain", m.Text)

	if m.HTML != "" {
		msg.AddAlternative("text/html", m.HTML)
	}

	return s.dialer.DialAndSend(msg)
}
