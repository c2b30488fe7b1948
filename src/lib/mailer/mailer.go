// Package mailer delivers booking confirmations. Senders share one Message
// shape so the transport (SMTP, SES, queue) is a wiring choice.
package mailer

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/wneessen/go-mail"
)

var ErrNotConfigured = errors.New("mail sender is not configured")

type Inline struct {
	Name      string
	ContentID string
	Data      []byte
}

type Message struct {
	From     string
	FromName string
	To       []string
	Subject  string
	HTML     string
	Inline   []Inline
}

type Sender interface {
	Send(ctx context.Context, m *Message) error
}

// buildMsg converts a Message to a MIME message, using the defaults when the
// message does not name a sender.
func buildMsg(m *Message, defaultFrom string, defaultFromName string) (*mail.Msg, error) {
	from, fromName := m.From, m.FromName
	if from == "" {
		from, fromName = defaultFrom, defaultFromName
	}
	if from == "" {
		return nil, ErrNotConfigured
	}
	msg := mail.NewMsg()
	if err := msg.FromFormat(fromName, from); err != nil {
		return nil, fmt.Errorf("failed to set From address: %w", err)
	}
	if err := msg.To(m.To...); err != nil {
		return nil, fmt.Errorf("failed to set To address: %w", err)
	}
	msg.Subject(m.Subject)
	msg.SetBodyString(mail.TypeTextHTML, m.HTML)
	for _, in := range m.Inline {
		if err := msg.EmbedReader(in.Name, bytes.NewReader(in.Data), mail.WithFileContentID(in.ContentID)); err != nil {
			return nil, fmt.Errorf("failed to embed %s: %w", in.Name, err)
		}
	}
	return msg, nil
}
