package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
	"vbs/src/lifecycle"
	"vbs/src/models"
	"vbs/src/types"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

type fakeSQS struct {
	mu   sync.Mutex
	sent []*sqs.SendMessageInput
	err  error
}

func (f *fakeSQS) GetQueueUrl(ctx context.Context, params *sqs.GetQueueUrlInput, optFns ...func(*sqs.Options)) (*sqs.GetQueueUrlOutput, error) {
	return &sqs.GetQueueUrlOutput{QueueUrl: aws.String("https://sqs.local/" + aws.ToString(params.QueueName))}, nil
}

func (f *fakeSQS) SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.sent = append(f.sent, params)
	return &sqs.SendMessageOutput{MessageId: aws.String("msg-1")}, nil
}

func (f *fakeSQS) ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
	return &sqs.ReceiveMessageOutput{}, nil
}

func (f *fakeSQS) DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
	return &sqs.DeleteMessageOutput{}, nil
}

type fakeSES struct {
	input *ses.SendRawEmailInput
}

func (f *fakeSES) SendRawEmail(ctx context.Context, params *ses.SendRawEmailInput, optFns ...func(*ses.Options)) (*ses.SendRawEmailOutput, error) {
	f.input = params
	return &ses.SendRawEmailOutput{MessageId: aws.String("ses-1")}, nil
}

type recordingSender struct {
	messages []*Message
	err      error
}

func (r *recordingSender) Send(ctx context.Context, m *Message) error {
	if r.err != nil {
		return r.err
	}
	r.messages = append(r.messages, m)
	return nil
}

type staticRenderer struct {
	png []byte
	err error
}

func (s staticRenderer) Render(ctx context.Context, payload string) ([]byte, error) {
	return s.png, s.err
}

func testMessage() *Message {
	return &Message{
		To:      []string{"visitor@example.com"},
		Subject: "Booking Confirmed",
		HTML:    "<p>hello</p>",
		Inline: []Inline{{
			Name:      "eticket.png",
			ContentID: ETicketContentID,
			Data:      []byte{0x89, 'P', 'N', 'G'},
		}},
	}
}

func completedView() *lifecycle.View {
	id, hash := "ATH2026101912345678", "ABCDEF12"
	return &lifecycle.View{
		Booking: models.Booking{
			Identity:         "visitor_at_example_com",
			Email:            "visitor@example.com",
			Tickets:          3,
			Amount:           450,
			Status:           types.BOOKING_COMPLETED,
			BookingID:        &id,
			VerificationHash: &hash,
		},
		IsValid:     true,
		ValidityStr: "19 Oct 2026, 18:00 (8h 30m remaining)",
		Credential:  "ATHENA-MUSEUM-" + id + "-" + hash,
	}
}

func TestEnvelopeRoundTrip(t *testing.T) {
	env := NewEnvelope(testMessage(), "museum@example.com", "Museum")
	raw, err := json.Marshal(&env)
	require.Nil(t, err)

	assert.Equal(t, "museum@example.com", gjson.GetBytes(raw, "from").String())
	assert.True(t, gjson.GetBytes(raw, "html").Bool())

	m, err := ParseEnvelope(string(raw))
	require.Nil(t, err)
	assert.Equal(t, []string{"visitor@example.com"}, m.To)
	assert.Equal(t, "Museum", m.FromName)
	assert.Equal(t, "<p>hello</p>", m.HTML)
	require.Len(t, m.Inline, 1)
	assert.Equal(t, ETicketContentID, m.Inline[0].ContentID)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, m.Inline[0].Data)
}

func TestParseEnvelopeRejectsInvalid(t *testing.T) {
	_, err := ParseEnvelope("not json")
	assert.NotNil(t, err)

	_, err = ParseEnvelope(`{"subject":"x","body":"y"}`)
	assert.NotNil(t, err)

	_, err = ParseEnvelope(`{"to":["a@b.com"],"inline":[{"name":"x","data":"%%%"}]}`)
	assert.NotNil(t, err)
}

func TestQueueSenderPublishesToSQS(t *testing.T) {
	client := &fakeSQS{}
	q := &QueueSender{Queue: "emails", From: "museum@example.com", SQS: client}

	err := q.Send(context.Background(), testMessage())
	require.Nil(t, err)
	require.Len(t, client.sent, 1)
	assert.Equal(t, "https://sqs.local/emails", aws.ToString(client.sent[0].QueueUrl))

	body := aws.ToString(client.sent[0].MessageBody)
	assert.Equal(t, "visitor@example.com", gjson.Get(body, "to.0").String())
	assert.Equal(t, ETicketContentID, gjson.Get(body, "inline.0.cid").String())
}

func TestQueueSenderErrors(t *testing.T) {
	q := &QueueSender{Queue: "emails"}
	assert.ErrorIs(t, q.Send(context.Background(), testMessage()), ErrNotConfigured)

	q.SQS = &fakeSQS{err: errors.New("throttled")}
	assert.NotNil(t, q.Send(context.Background(), testMessage()))
}

func TestSESSenderSendsRawMime(t *testing.T) {
	client := &fakeSES{}
	s := NewSESSender(client, "museum@example.com", "Museum")

	err := s.Send(context.Background(), testMessage())
	require.Nil(t, err)
	require.NotNil(t, client.input)
	assert.Equal(t, "museum@example.com", aws.ToString(client.input.Source))
	assert.Equal(t, []string{"visitor@example.com"}, client.input.Destinations)

	raw := string(client.input.RawMessage.Data)
	assert.Contains(t, raw, "Subject: Booking Confirmed")
	assert.Contains(t, strings.ToLower(raw), "content-id")
	assert.Contains(t, raw, "eticket.png")
}

func TestSendersRequireFromAddress(t *testing.T) {
	s := NewSESSender(&fakeSES{}, "", "")
	assert.ErrorIs(t, s.Send(context.Background(), testMessage()), ErrNotConfigured)

	smtp := &SMTPSender{}
	assert.ErrorIs(t, smtp.Send(context.Background(), testMessage()), ErrNotConfigured)
}

func TestBookingNotifier(t *testing.T) {
	sender := &recordingSender{}
	n := NewBookingNotifier(sender, staticRenderer{png: []byte("png")}, "Athena Museum")

	err := n.NotifyCompleted(context.Background(), completedView())
	require.Nil(t, err)
	require.Len(t, sender.messages, 1)

	m := sender.messages[0]
	assert.Equal(t, []string{"visitor@example.com"}, m.To)
	assert.Equal(t, DefaultConfirmationSubject, m.Subject)
	assert.Contains(t, m.HTML, "ATH2026101912345678")
	assert.Contains(t, m.HTML, "<strong>Tickets:</strong> 3")
	assert.Contains(t, m.HTML, "<strong>Amount:</strong> ₹450.00")
	assert.Contains(t, m.HTML, "8h 30m remaining")
	assert.Contains(t, m.HTML, `src="cid:eticket"`)
	require.Len(t, m.Inline, 1)
	assert.Equal(t, []byte("png"), m.Inline[0].Data)
}

func TestBookingNotifierCurrency(t *testing.T) {
	n := NewBookingNotifier(&recordingSender{}, staticRenderer{png: []byte("png")}, "Athena Museum")
	n.Currency = "€"
	m, err := n.Build(context.Background(), completedView())
	require.Nil(t, err)
	assert.Contains(t, m.HTML, "<strong>Amount:</strong> €450.00")
}

func TestBookingNotifierFailures(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	n := NewBookingNotifier(&recordingSender{}, staticRenderer{err: errors.New("qr failed")}, "")
	assert.NotNil(t, n.NotifyCompleted(ctx, completedView()))

	v := completedView()
	v.Booking.Email = ""
	n = NewBookingNotifier(&recordingSender{}, staticRenderer{png: []byte("png")}, "")
	assert.NotNil(t, n.NotifyCompleted(ctx, v))

	v = completedView()
	v.Credential = ""
	assert.NotNil(t, n.NotifyCompleted(ctx, v))

	n = NewBookingNotifier(&recordingSender{err: ErrNotConfigured}, staticRenderer{png: []byte("png")}, "")
	assert.ErrorIs(t, n.NotifyCompleted(ctx, completedView()), ErrNotConfigured)
}

func TestTemplateEscapesFields(t *testing.T) {
	v := completedView()
	v.ValidityStr = "<script>"
	m, err := NewBookingNotifier(&recordingSender{}, staticRenderer{png: []byte("png")}, "").Build(context.Background(), v)
	require.Nil(t, err)
	assert.False(t, strings.Contains(m.HTML, "<script>"))
}
