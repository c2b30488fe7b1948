package controllers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"time"
	"vbs/src/credential"
	"vbs/src/lifecycle"
	"vbs/src/models"
	"vbs/src/types"
	"vbs/src/utils"

	"github.com/gin-gonic/gin"
)

var ErrNotCompleted = errors.New("booking payment is not completed")

// StatusFor maps lifecycle errors to HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, lifecycle.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, lifecycle.ErrExpired):
		return http.StatusGone
	case errors.Is(err, lifecycle.ErrInvalidCredential):
		return http.StatusForbidden
	case errors.Is(err, ErrNotCompleted):
		return http.StatusConflict
	case errors.Is(err, lifecycle.ErrStorage):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// ErrorMessage is the visitor facing text for err.
func ErrorMessage(err error) string {
	switch {
	case errors.Is(err, lifecycle.ErrNotFound):
		return "Booking not found"
	case errors.Is(err, lifecycle.ErrExpired):
		return "Booking has expired"
	case errors.Is(err, lifecycle.ErrInvalidCredential):
		return "Invalid ticket"
	case errors.Is(err, ErrNotCompleted):
		return "Payment not completed"
	case errors.Is(err, lifecycle.ErrStorage):
		return "Service temporarily unavailable"
	default:
		return "Something went wrong"
	}
}

func NewBookingResponse(v *lifecycle.View) *types.APIResponseBooking {
	b := v.Booking
	res := &types.APIResponseBooking{
		Identity:    b.Identity,
		Email:       b.Email,
		Phone:       b.Phone,
		Tickets:     b.Tickets,
		Amount:      b.Amount,
		Status:      string(b.Status),
		ValidityStr: v.ValidityStr,
		IsValid:     v.IsValid,
		Credential:  v.Credential,
	}
	if !b.ValidUntil.IsZero() {
		validUntil := b.ValidUntil.Format(time.RFC3339)
		res.ValidUntil = &validUntil
	}
	if v.IsValid {
		res.Remaining = utils.FormatRemaining(v.Remaining)
	}
	if !b.UpdatedAt.IsZero() {
		updatedAt := b.UpdatedAt.Format(time.RFC3339)
		res.UpdatedAt = &updatedAt
	}
	if b.HasCredential() {
		res.BookingID = *b.BookingID
		res.Hash = *b.VerificationHash
		if b.Email != "" {
			res.ETicketURL = fmt.Sprintf("/api/v1/bookings/%s/eticket", url.PathEscape(b.Email))
		}
	}
	return res
}

func BookingLookup(ctx *gin.Context, m *lifecycle.Manager, email string) (*types.APIResponseBooking, int, error) {
	v, err := m.Lookup(ctx.Request.Context(), models.IdentityFromEmail(email))
	if err != nil {
		return nil, StatusFor(err), err
	}
	return NewBookingResponse(v), http.StatusOK, nil
}

func BookingValidate(ctx *gin.Context, m *lifecycle.Manager, email string) (gin.H, int, error) {
	v, err := m.Lookup(ctx.Request.Context(), models.IdentityFromEmail(email))
	if err != nil {
		return nil, StatusFor(err), err
	}
	return gin.H{
		"identity": v.Booking.Identity,
		"status":   v.Booking.Status,
		"is_valid": v.IsValid,
	}, http.StatusOK, nil
}

// BookingETicket renders the entry QR code of a completed booking.
func BookingETicket(ctx *gin.Context, m *lifecycle.Manager, r credential.Renderer, email string) ([]byte, int, error) {
	v, err := m.Lookup(ctx.Request.Context(), models.IdentityFromEmail(email))
	if err != nil {
		return nil, StatusFor(err), err
	}
	if v.Credential == "" {
		return nil, http.StatusConflict, ErrNotCompleted
	}
	png, err := r.Render(ctx.Request.Context(), v.Credential)
	if err != nil {
		log.Printf("Error rendering e-ticket for %s: %s\n", v.Booking.Identity, err.Error())
		return nil, http.StatusInternalServerError, err
	}
	return png, http.StatusOK, nil
}

func PaymentComplete(ctx *gin.Context, m *lifecycle.Manager, email string) (*types.APIResponsePayment, int, error) {
	res, err := m.CompletePayment(ctx.Request.Context(), models.IdentityFromEmail(email))
	if err != nil {
		return nil, StatusFor(err), err
	}
	message := "Payment Successful!"
	if res.AlreadyCompleted {
		message = "Payment already completed"
	}
	return &types.APIResponsePayment{
		BookingID:        res.BookingID,
		Hash:             res.VerificationHash,
		AlreadyCompleted: res.AlreadyCompleted,
		Message:          message,
	}, http.StatusOK, nil
}

func AdmissionVerify(ctx *gin.Context, m *lifecycle.Manager, code string) (*types.APIResponseBooking, int, error) {
	v, err := m.VerifyCredential(ctx.Request.Context(), code)
	if err != nil {
		return nil, StatusFor(err), err
	}
	return NewBookingResponse(v), http.StatusOK, nil
}
