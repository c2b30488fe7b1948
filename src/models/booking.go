package models

import (
	"strings"
	"time"
	"vbs/src/types"
)

type Booking struct {
	Identity         string              `gorm:"primarykey" firestore:"-" json:"identity"`
	Email            string              `firestore:"email" json:"email"`
	Phone            string              `firestore:"phone" json:"phone,omitempty"`
	Tickets          int                 `firestore:"tickets" json:"tickets"`
	Amount           float64             `firestore:"amount" json:"amount"`
	ValidUntil       time.Time           `gorm:"column:validity" firestore:"validity" json:"valid_until"`
	Status           types.BookingStatus `gorm:"default:'pending';index" firestore:"status" json:"status"`
	BookingID        *string             `gorm:"uniqueIndex" firestore:"booking_id,omitempty" json:"booking_id,omitempty"`
	VerificationHash *string             `gorm:"column:hash" firestore:"hash,omitempty" json:"hash,omitempty"`
	UpdatedAt        time.Time           `firestore:"updated_at,omitempty" json:"updated_at,omitempty"`
}

func (b *Booking) IsCompleted() bool {
	return b.Status == types.BOOKING_COMPLETED
}

// HasCredential reports whether both halves of the entry credential are set.
func (b *Booking) HasCredential() bool {
	return b.BookingID != nil && *b.BookingID != "" && b.VerificationHash != nil && *b.VerificationHash != ""
}

// IsValidAt reports whether the booking is inside its validity window at now.
// A zero validity is never valid.
func (b *Booking) IsValidAt(now time.Time) bool {
	if b.ValidUntil.IsZero() {
		return false
	}
	return now.Before(b.ValidUntil)
}

// Completion is the set of fields written by the pending -> completed transition.
type Completion struct {
	BookingID        string
	VerificationHash string
	UpdatedAt        time.Time
}

// Apply copies the completion onto a booking.
func (c Completion) Apply(b *Booking) {
	id := c.BookingID
	hash := c.VerificationHash
	b.Status = types.BOOKING_COMPLETED
	b.BookingID = &id
	b.VerificationHash = &hash
	b.UpdatedAt = c.UpdatedAt
}

// IdentityFromEmail derives the store key for a visitor email.
func IdentityFromEmail(email string) string {
	id := strings.TrimSpace(email)
	id = strings.ReplaceAll(id, ".", "_")
	id = strings.ReplaceAll(id, "@", "_at_")
	return id
}
