package mailer

import (
	"context"
	"errors"
	"log"
	"vbs/src/lib"
)

type SMTPSender struct {
	Config   lib.SMTPConfig
	From     string
	FromName string
}

func NewSMTPSender(cfg lib.SMTPConfig, from string, fromName string) *SMTPSender {
	return &SMTPSender{Config: cfg, From: from, FromName: fromName}
}

func (s *SMTPSender) Send(ctx context.Context, m *Message) error {
	c, err := lib.NewSMTPClient(s.Config)
	if err != nil {
		if errors.Is(err, lib.ErrSMTPNotConfigured) {
			return errors.Join(ErrNotConfigured, err)
		}
		return err
	}
	msg, err := buildMsg(m, s.From, s.FromName)
	if err != nil {
		return err
	}
	if err := c.DialAndSendWithContext(ctx, msg); err != nil {
		log.Printf("[mailer] Failed to send email to %v: %s\n", m.To, err.Error())
		return err
	}
	return nil
}
