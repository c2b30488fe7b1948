package mailer

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"vbs/src/lib"
	"vbs/src/types"

	"github.com/tidwall/gjson"
)

// QueueSender hands messages to a worker through a queue instead of
// talking to a mail server. Local environments publish to Kafka, every
// other environment to SQS.
type QueueSender struct {
	Queue       string
	From        string
	FromName    string
	SQS         lib.SQSAPI
	Local       bool
	KafkaBroker string
}

func (q *QueueSender) Send(ctx context.Context, m *Message) error {
	emailBody := NewEnvelope(m, q.From, q.FromName)
	if q.Local {
		if err := lib.KafkaProduceMessage(q.KafkaBroker, "mailer", q.Queue, emailBody); err != nil {
			return fmt.Errorf("error sending message to queue: %s", err.Error())
		}
		return nil
	}
	if q.SQS == nil {
		return ErrNotConfigured
	}
	body, err := json.Marshal(&emailBody)
	if err != nil {
		return err
	}
	if _, err := lib.SQSProduceMessage(ctx, q.SQS, q.Queue, string(body)); err != nil {
		return fmt.Errorf("error sending message to queue: %s", err.Error())
	}
	return nil
}

func NewEnvelope(m *Message, defaultFrom string, defaultFromName string) types.JSONB {
	from, fromName := m.From, m.FromName
	if from == "" {
		from, fromName = defaultFrom, defaultFromName
	}
	inline := make([]map[string]any, 0, len(m.Inline))
	for _, in := range m.Inline {
		inline = append(inline, map[string]any{
			"name": in.Name,
			"cid":  in.ContentID,
			"data": base64.StdEncoding.EncodeToString(in.Data),
		})
	}
	return types.JSONB{
		"from":      from,
		"from-name": fromName,
		"to":        m.To,
		"subject":   m.Subject,
		"body":      m.HTML,
		"html":      true,
		"inline":    inline,
	}
}

// ParseEnvelope reads a queued envelope back into a Message.
func ParseEnvelope(body string) (*Message, error) {
	if !gjson.Valid(body) {
		return nil, errors.New("received invalid json body")
	}
	env := gjson.Parse(body)
	m := &Message{
		From:     env.Get("from").String(),
		FromName: env.Get("from-name").String(),
		Subject:  env.Get("subject").String(),
		HTML:     env.Get("body").String(),
	}
	for _, to := range env.Get("to").Array() {
		m.To = append(m.To, to.String())
	}
	if len(m.To) == 0 {
		return nil, errors.New("envelope has no recipients")
	}
	for _, in := range env.Get("inline").Array() {
		data, err := base64.StdEncoding.DecodeString(in.Get("data").String())
		if err != nil {
			return nil, fmt.Errorf("invalid inline data for %s: %w", in.Get("name").String(), err)
		}
		m.Inline = append(m.Inline, Inline{
			Name:      in.Get("name").String(),
			ContentID: in.Get("cid").String(),
			Data:      data,
		})
	}
	return m, nil
}
