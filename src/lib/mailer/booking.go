package mailer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"vbs/src/credential"
	"vbs/src/lifecycle"
)

const (
	DefaultConfirmationSubject = "Athena Museum - Booking Confirmed"
	ETicketContentID           = "eticket"
	DefaultCurrency            = "₹"
)

var confirmationTmpl = template.Must(template.New("confirmation").Parse(`<html>
<head>
<style>
body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
.container { max-width: 600px; margin: 0 auto; padding: 20px; }
.header { background: #6c63ff; color: white; padding: 30px; text-align: center; }
.ticket { background: white; border: 2px dashed #ccc; padding: 20px; margin: 20px 0; text-align: center; }
</style>
</head>
<body>
<div class="container">
<div class="header">
<h1>{{.Venue}}</h1>
<h2>Booking Confirmed!</h2>
</div>
<p>Dear Visitor,</p>
<p>Your payment has been processed successfully! Here are your booking details:</p>
<div class="ticket">
<h3>Your E-Ticket</h3>
<img src="cid:{{.ContentID}}" alt="QR Code" style="max-width: 200px;">
<p><strong>Booking ID:</strong> {{.BookingID}}</p>
<p><strong>Tickets:</strong> {{.Tickets}}</p>
<p><strong>Amount:</strong> {{.Currency}}{{printf "%.2f" .Amount}}</p>
<p><strong>Valid Until:</strong> {{.ValidityStr}}</p>
</div>
<p>Present the QR code above at the entrance.</p>
<p>We look forward to your visit!</p>
</div>
</body>
</html>`))

type confirmationData struct {
	Venue       string
	ContentID   string
	BookingID   string
	Tickets     int
	Currency    string
	Amount      float64
	ValidityStr string
}

// BookingNotifier emails the visitor their e-ticket after payment.
type BookingNotifier struct {
	Sender   Sender
	Renderer credential.Renderer
	Subject  string
	Venue    string
	Currency string
}

func NewBookingNotifier(sender Sender, renderer credential.Renderer, venue string) *BookingNotifier {
	return &BookingNotifier{
		Sender:   sender,
		Renderer: renderer,
		Subject:  DefaultConfirmationSubject,
		Venue:    venue,
		Currency: DefaultCurrency,
	}
}

func (n *BookingNotifier) NotifyCompleted(ctx context.Context, v *lifecycle.View) error {
	b := v.Booking
	if b.Email == "" {
		return errors.New("booking has no email address")
	}
	if v.Credential == "" || b.BookingID == nil {
		return fmt.Errorf("booking %s has no credential", b.Identity)
	}
	m, err := n.Build(ctx, v)
	if err != nil {
		return err
	}
	return n.Sender.Send(ctx, m)
}

// Build renders the confirmation message without sending it.
func (n *BookingNotifier) Build(ctx context.Context, v *lifecycle.View) (*Message, error) {
	png, err := n.Renderer.Render(ctx, v.Credential)
	if err != nil {
		return nil, fmt.Errorf("could not render e-ticket: %w", err)
	}
	var body bytes.Buffer
	err = confirmationTmpl.Execute(&body, confirmationData{
		Venue:       n.Venue,
		ContentID:   ETicketContentID,
		BookingID:   *v.Booking.BookingID,
		Tickets:     v.Booking.Tickets,
		Currency:    n.Currency,
		Amount:      v.Booking.Amount,
		ValidityStr: v.ValidityStr,
	})
	if err != nil {
		return nil, err
	}
	subject := n.Subject
	if subject == "" {
		subject = DefaultConfirmationSubject
	}
	return &Message{
		To:      []string{v.Booking.Email},
		Subject: subject,
		HTML:    body.String(),
		Inline: []Inline{{
			Name:      "eticket.png",
			ContentID: ETicketContentID,
			Data:      png,
		}},
	}, nil
}
