package mailer

import (
	"bytes"
	"context"
	awslib "vbs/src/lib/aws"
)

type SESSender struct {
	Client   awslib.SESAPI
	From     string
	FromName string
}

func NewSESSender(client awslib.SESAPI, from string, fromName string) *SESSender {
	return &SESSender{Client: client, From: from, FromName: fromName}
}

func (s *SESSender) Send(ctx context.Context, m *Message) error {
	msg, err := buildMsg(m, s.From, s.FromName)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if _, err := msg.WriteTo(&buf); err != nil {
		return err
	}
	from := m.From
	if from == "" {
		from = s.From
	}
	_, err = awslib.SESSendRawMessage(ctx, s.Client, from, m.To, buf.Bytes())
	return err
}
