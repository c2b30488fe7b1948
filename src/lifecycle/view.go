package lifecycle

import (
	"time"
	"vbs/src/credential"
	"vbs/src/models"
	"vbs/src/utils"
)

// View is a booking plus the fields derived from one clock reading.
type View struct {
	Booking     models.Booking
	Now         time.Time
	IsValid     bool
	ValidityStr string
	Remaining   time.Duration
	// Credential is empty until the booking is completed.
	Credential string
}

func (m *Manager) view(b *models.Booking, now time.Time) *View {
	v := &View{
		Booking:     *b,
		Now:         now,
		IsValid:     b.IsValidAt(now),
		ValidityStr: utils.FormatValidity(b.ValidUntil, now, m.location),
	}
	if v.IsValid {
		v.Remaining = b.ValidUntil.Sub(now)
	}
	if b.IsCompleted() && b.HasCredential() {
		v.Credential = credential.Encode(m.namespace, *b.BookingID, *b.VerificationHash)
	}
	return v
}
