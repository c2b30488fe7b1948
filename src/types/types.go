package types

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

type JSONB map[string]any

func (a JSONB) Value() (driver.Value, error) {
	valueString, err := json.Marshal(a)
	return string(valueString), err
}
func (a *JSONB) Scan(value any) error {
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	return nil
}

type BookingStatus string

const (
	BOOKING_PENDING   BookingStatus = "pending"
	BOOKING_COMPLETED BookingStatus = "completed"
)

type PaymentStatus string

const (
	PAYMENT_COMPLETED PaymentStatus = "completed"
)

type ValidateBookingRequestBody struct {
	Email string `json:"email" form:"email" binding:"required,bookingemail"`
}

type CompletePaymentRequestBody struct {
	Email string `json:"email" form:"email" binding:"required,bookingemail"`
}

type BookingURIParams struct {
	Email string `uri:"email" binding:"required,bookingemail"`
}

type CreateAdmissionRequestBody struct {
	Code string `json:"code" binding:"required"`
}

type HomeQuery struct {
	Email string `form:"email"`
}

type APIResponseBooking struct {
	Identity    string  `json:"identity"`
	Email       string  `json:"email"`
	Phone       string  `json:"phone,omitempty"`
	Tickets     int     `json:"tickets"`
	Amount      float64 `json:"amount"`
	Status      string  `json:"status"`
	ValidUntil  *string `json:"valid_until,omitempty"`
	ValidityStr string  `json:"validity_str"`
	IsValid     bool    `json:"is_valid"`
	Remaining   string  `json:"remaining,omitempty"`
	BookingID   string  `json:"booking_id,omitempty"`
	Hash        string  `json:"hash,omitempty"`
	Credential  string  `json:"qr_payload,omitempty"`
	UpdatedAt   *string `json:"updated_at,omitempty"`
	ETicketURL  string  `json:"eticket_url,omitempty"`
}

type APIResponsePayment struct {
	BookingID        string `json:"booking_id"`
	Hash             string `json:"hash"`
	AlreadyCompleted bool   `json:"already_completed"`
	Message          string `json:"message"`
}

// Handler processes one queued message body.
type Handler func(payload string) error
